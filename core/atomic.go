package core

import "golang.org/x/exp/constraints"

// Guarded is an integer whose every access runs inside a critical section.
// The Cortex-M0 has no exclusive load/store, so this is how read-modify-write
// operations stay atomic with respect to interrupt handlers. Each operation
// adds one load or store to worst-case interrupt latency.
//
// The zero value is ready to use.
type Guarded[T constraints.Unsigned] struct {
	v T
}

// Load returns the current value.
func (g *Guarded[T]) Load() T {
	cs := Enter()
	v := g.v
	cs.Exit()
	return v
}

// Store replaces the value.
func (g *Guarded[T]) Store(v T) {
	cs := Enter()
	g.v = v
	cs.Exit()
}

// Swap stores v and returns the previous value.
func (g *Guarded[T]) Swap(v T) (old T) {
	cs := Enter()
	old = g.v
	g.v = v
	cs.Exit()
	return old
}

// CompareAndSwap stores next if the current value equals expected.
func (g *Guarded[T]) CompareAndSwap(expected, next T) (swapped bool) {
	cs := Enter()
	if g.v == expected {
		g.v = next
		swapped = true
	}
	cs.Exit()
	return swapped
}

// Add adds delta and returns the new value.
func (g *Guarded[T]) Add(delta T) (updated T) {
	cs := Enter()
	g.v += delta
	updated = g.v
	cs.Exit()
	return updated
}

// And clears the bits not in mask and returns the previous value.
func (g *Guarded[T]) And(mask T) (old T) {
	cs := Enter()
	old = g.v
	g.v &= mask
	cs.Exit()
	return old
}

// Or sets the bits in mask and returns the previous value.
func (g *Guarded[T]) Or(mask T) (old T) {
	cs := Enter()
	old = g.v
	g.v |= mask
	cs.Exit()
	return old
}

// GuardedBool is a flag with the same critical-section discipline as Guarded.
type GuardedBool struct {
	v Guarded[uint32]
}

func b32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (b *GuardedBool) Load() bool {
	return b.v.Load() != 0
}

func (b *GuardedBool) Store(v bool) {
	b.v.Store(b32(v))
}

func (b *GuardedBool) Swap(v bool) bool {
	return b.v.Swap(b32(v)) != 0
}

func (b *GuardedBool) CompareAndSwap(expected, next bool) bool {
	return b.v.CompareAndSwap(b32(expected), b32(next))
}
