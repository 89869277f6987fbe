package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

// ShutdownTimeout is the default time allowed for draining the queue on Stop.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of a dispatcher service.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// transitions lists the states reachable from each state, and the error
// reported for any other target.
var transitions = map[State]struct {
	next []State
	err  error
}{
	StateStopped:  {[]State{StateStarting}, domain.ErrNotRunning},
	StateStarting: {[]State{StateRunning, StateStopping, StateCrashed}, domain.ErrAlreadyRunning},
	StateRunning:  {[]State{StateStopping, StateCrashed}, domain.ErrAlreadyRunning},
	StateStopping: {[]State{StateStopped, StateCrashed}, domain.ErrAlreadyRunning},
	StateCrashed:  {[]State{StateStarting}, domain.ErrNotRunning},
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards Start/Stop of the dispatcher loop and tracks its goroutine.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	wg      sync.WaitGroup
	tracked atomic.Int32
	logger  ports.Logger
	emitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateStopped.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:   StateStopped,
		logger:  logger,
		emitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to newState, or returns an error and leaves the state
// unchanged if the move is not allowed.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	rule := transitions[oldState]
	allowed := false
	for _, s := range rule.next {
		if s == newState {
			allowed = true
			break
		}
	}
	if !allowed {
		l.mu.Unlock()
		return rule.err
	}
	l.state = newState
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
	return nil
}

// CanStart returns true if Start() can be called.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateStopped || l.state == StateCrashed
}

// CanStop returns true if Stop() can be called.
func (l *Lifecycle) CanStop() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateRunning || l.state == StateStarting
}

// Go runs fn on a tracked goroutine.
func (l *Lifecycle) Go(fn func()) {
	l.wg.Add(1)
	l.tracked.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.tracked.Add(-1)
		fn()
	}()
}

// Busy reports whether a goroutine started with Go has not returned yet.
// It stays true after a WaitWithTimeout that timed out until the goroutine
// actually exits.
func (l *Lifecycle) Busy() bool {
	return l.tracked.Load() > 0
}

// WaitWithTimeout waits for tracked goroutines to finish.
// Returns ErrShutdownTimeout if the timeout expires first.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("shutdown timeout, queue not drained",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
