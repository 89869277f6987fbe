package app

// wakeSignal is a single-slot, auto-resetting notification.
// Any number of Set calls between two receives collapse into one wake.
type wakeSignal struct {
	c chan struct{}
}

func newWakeSignal() *wakeSignal {
	return &wakeSignal{c: make(chan struct{}, 1)}
}

// Set marks the signal. It never blocks.
func (s *wakeSignal) Set() {
	select {
	case s.c <- struct{}{}:
	default:
	}
}

// C returns the channel to wait on. Receiving from it resets the signal.
func (s *wakeSignal) C() <-chan struct{} {
	return s.c
}

// Pending reports whether the signal is set and not yet observed.
func (s *wakeSignal) Pending() bool {
	return len(s.c) > 0
}
