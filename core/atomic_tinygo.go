//go:build tinygo

package core

// Atomic types used by drivers. On the target they are critical-section
// backed; see Guarded.
type (
	Uint32 = Guarded[uint32]
	Uint64 = Guarded[uint64]
	Bool   = GuardedBool
)
