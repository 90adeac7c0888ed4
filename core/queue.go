package core

import "sync/atomic"

// Queue is a fixed-capacity single-producer, single-consumer ring.
//
// Exactly one context may call Push and exactly one context may call Pop;
// typically one of them is an interrupt handler. No locks are taken: the
// producer fills a slot before publishing the write counter and the consumer
// reads the counter before touching the slot. The counters are plain
// atomic words, never a critical section: on Cortex-M0 an aligned word load
// or store is a single LDR or STR, so neither side masks interrupts.
//
// Both counters run modulo twice the capacity, which keeps full and empty
// distinguishable for any capacity.
type Queue[T any] struct {
	buf  []T
	span uint32        // 2 * len(buf)
	rd   atomic.Uint32 // consumer counter
	wr   atomic.Uint32 // producer counter
}

// NewQueue allocates a queue holding up to n elements.
func NewQueue[T any](n int) *Queue[T] {
	q := &Queue[T]{}
	q.Init(make([]T, n))
	return q
}

// Init binds the queue to caller-owned storage. The capacity is len(storage).
// Init must run before either side uses the queue.
func (q *Queue[T]) Init(storage []T) {
	if len(storage) == 0 {
		panic("queue: zero capacity")
	}
	q.buf = storage
	q.span = 2 * uint32(len(storage))
	q.rd.Store(0)
	q.wr.Store(0)
}

func (q *Queue[T]) used(rd, wr uint32) uint32 {
	return (wr + q.span - rd) % q.span
}

func (q *Queue[T]) slot(counter uint32) *T {
	return &q.buf[counter%uint32(len(q.buf))]
}

// Push appends v. It returns false without blocking when the queue is full.
// Producer side only.
func (q *Queue[T]) Push(v T) bool {
	wr := q.wr.Load()
	if q.used(q.rd.Load(), wr) == uint32(len(q.buf)) {
		return false
	}
	*q.slot(wr) = v
	q.wr.Store((wr + 1) % q.span)
	return true
}

// PushWait retries Push until it succeeds, calling idle between attempts
// when idle is non-nil. It never returns if the consumer stalls.
func (q *Queue[T]) PushWait(v T, idle func()) {
	for !q.Push(v) {
		if idle != nil {
			idle()
		}
	}
}

// Pop removes the oldest element. It returns false when the queue is empty.
// Consumer side only.
func (q *Queue[T]) Pop() (v T, ok bool) {
	rd := q.rd.Load()
	if rd == q.wr.Load() {
		return v, false
	}
	p := q.slot(rd)
	v = *p
	var zero T
	*p = zero
	q.rd.Store((rd + 1) % q.span)
	return v, true
}

// Empty reports whether there is nothing to pop.
func (q *Queue[T]) Empty() bool {
	return q.rd.Load() == q.wr.Load()
}

// Full reports whether the next Push would fail.
func (q *Queue[T]) Full() bool {
	return q.used(q.rd.Load(), q.wr.Load()) == uint32(len(q.buf))
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	return int(q.used(q.rd.Load(), q.wr.Load()))
}

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// Clear discards everything queued. Consumer side only, and only while the
// producer is quiescent.
func (q *Queue[T]) Clear() {
	for {
		if _, ok := q.Pop(); !ok {
			return
		}
	}
}
