package core

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueCapacityAndWraparound(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7, 8, 64} {
		q := NewQueue[int](n)
		require.True(t, q.Empty())
		require.Equal(t, n, q.Cap())

		// run several laps so the counters wrap more than once
		next, want := 0, 0
		for lap := 0; lap < 5; lap++ {
			for q.Push(next) {
				next++
			}
			require.True(t, q.Full(), "capacity %d", n)
			require.Equal(t, n, q.Len())
			require.False(t, q.Push(-1))

			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, want, v)
			want++
			require.True(t, q.Push(next), "push after pop must succeed")
			next++

			for {
				v, ok := q.Pop()
				if !ok {
					break
				}
				require.Equal(t, want, v)
				want++
			}
			require.True(t, q.Empty())
			require.Equal(t, 0, q.Len())
		}
	}
}

func TestQueueEmptyPop(t *testing.T) {
	q := NewQueue[string](4)
	v, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestQueueStaticStorage(t *testing.T) {
	var storage [3]byte
	var q Queue[byte]
	q.Init(storage[:])

	assert.True(t, q.Push('a'))
	assert.True(t, q.Push('b'))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, byte('a'), storage[0])
}

func TestQueueClear(t *testing.T) {
	q := NewQueue[int](4)
	q.Push(1)
	q.Push(2)
	q.Clear()
	assert.True(t, q.Empty())
	assert.True(t, q.Push(3))
	v, _ := q.Pop()
	assert.Equal(t, 3, v)
}

func TestQueuePushWait(t *testing.T) {
	q := NewQueue[int](1)
	q.Push(1)

	idles := 0
	q.PushWait(2, func() {
		idles++
		if idles == 3 {
			q.Pop()
		}
	})
	assert.Equal(t, 3, idles)
	v, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueueZeroCapacityPanics(t *testing.T) {
	assert.Panics(t, func() { NewQueue[int](0) })
}

// One producer goroutine and one consumer goroutine: values must come out in
// order with nothing lost or repeated.
func TestQueueSPSCOrdering(t *testing.T) {
	const total = 200000
	q := NewQueue[uint32](13)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint32(0); i < total; i++ {
			for !q.Push(i) {
				runtime.Gosched()
			}
		}
	}()

	var errs []uint32
	expect := uint32(0)
	for expect < total {
		v, ok := q.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if v != expect && len(errs) < 10 {
			errs = append(errs, v)
		}
		expect++
	}
	wg.Wait()

	require.Empty(t, errs, "out-of-order values")
	require.True(t, q.Empty())
}

// Neither side of the queue may mask interrupts: the ISR end must never
// add to interrupt latency.
func TestQueueNeverMasksInterrupts(t *testing.T) {
	q := NewQueue[uint8](4)
	before := masks.Load()
	for i := 0; i < 10; i++ {
		q.Push(uint8(i))
		q.Full()
		q.Len()
		q.Pop()
		q.Empty()
	}
	q.PushWait(1, nil)
	q.Clear()
	assert.Equal(t, before, masks.Load())

	var g Guarded[uint32]
	g.Load()
	assert.Equal(t, before+1, masks.Load(), "Guarded does mask")
}
