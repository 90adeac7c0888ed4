package core

// Timer is a scheduled callback run from the foreground loop.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	next     *Timer
	queued   bool
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by wake time.
type Scheduler struct {
	clock *Timebase
	list  *Timer
}

// NewScheduler returns a scheduler driven by clock.
func NewScheduler(clock *Timebase) *Scheduler {
	return &Scheduler{clock: clock}
}

// before compares wake times across counter wrap
func before(a, b uint32) bool {
	return int32(a-b) < 0
}

// Add schedules t. Adding a timer that is already queued moves it.
func (s *Scheduler) Add(t *Timer) {
	cs := Enter()
	defer cs.Exit()
	s.remove(t)
	s.insert(t)
}

// Cancel removes t, reporting whether it was queued.
func (s *Scheduler) Cancel(t *Timer) bool {
	cs := Enter()
	defer cs.Exit()
	return s.remove(t)
}

func (s *Scheduler) insert(t *Timer) {
	t.queued = true
	if s.list == nil || before(t.WakeTime, s.list.WakeTime) {
		t.next = s.list
		s.list = t
		return
	}
	cur := s.list
	for cur.next != nil && !before(t.WakeTime, cur.next.WakeTime) {
		cur = cur.next
	}
	t.next = cur.next
	cur.next = t
}

func (s *Scheduler) remove(t *Timer) bool {
	if !t.queued {
		return false
	}
	for pp := &s.list; *pp != nil; pp = &(*pp).next {
		if *pp == t {
			*pp = t.next
			t.next = nil
			t.queued = false
			return true
		}
	}
	return false
}

// Dispatch runs every timer whose wake time has passed. Handlers run with
// interrupts enabled and may reschedule themselves by moving WakeTime past
// the current time and returning SF_RESCHEDULE.
func (s *Scheduler) Dispatch() int {
	now := s.clock.Ticks()
	ran := 0
	for {
		cs := Enter()
		t := s.list
		if t == nil || before(now, t.WakeTime) {
			cs.Exit()
			return ran
		}
		s.list = t.next
		t.next = nil
		t.queued = false
		cs.Exit()

		ran++
		if t.Handler(t) == SF_RESCHEDULE {
			s.Add(t)
		}
	}
}

// Pending returns the number of queued timers.
func (s *Scheduler) Pending() int {
	cs := Enter()
	defer cs.Exit()
	n := 0
	for t := s.list; t != nil; t = t.next {
		n++
	}
	return n
}
