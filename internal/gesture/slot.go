package gesture

import "sync/atomic"

// Slot holds the latest State for hand-off between the goroutine that
// produces gesture readings and the one that renders frames. Writers replace
// the whole value; readers never observe a partially written State.
type Slot struct {
	v atomic.Pointer[State]
}

// Store publishes s, replacing any previous value.
func (s *Slot) Store(st State) {
	s.v.Store(&st)
}

// Load returns the most recently stored State, or Absent if none.
func (s *Slot) Load() State {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return Absent()
}
