// Package call implements the cosmetic call simulator: a small state machine
// that fakes a call connecting and then counts elapsed time. No media or
// signaling is involved; the only output is status updates.
package call

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qmuntal/stateless"
)

// States
var (
	StateIdle       stateless.State = "idle"
	StateConnecting stateless.State = "connecting"
	StateInCall     stateless.State = "in_call"
)

// Triggers
var (
	triggerStart     stateless.Trigger = "start"
	triggerConnected stateless.Trigger = "connected"
	triggerEnd       stateless.Trigger = "end"
)

const (
	// ConnectDelay is how long the simulator pretends to be connecting.
	ConnectDelay = 2 * time.Second
	// TickInterval drives the elapsed-seconds counter while in a call.
	TickInterval = time.Second
)

// Status is one observable snapshot of the simulator.
type Status struct {
	State   string `json:"state"`
	Elapsed string `json:"elapsed"` // MM:SS, "00:00" outside a call
}

// Stopper cancels a pending timer or ticker.
type Stopper interface {
	Stop()
}

// Clock abstracts timer scheduling so tests can drive virtual time.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
	TickFunc(d time.Duration, f func()) Stopper
}

// SystemClock is the real-time Clock used outside tests.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return systemTimer{timer: time.AfterFunc(d, f)}
}

// systemTimer adapts *time.Timer to Stopper, discarding Stop's bool result.
type systemTimer struct {
	timer *time.Timer
}

func (t systemTimer) Stop() { t.timer.Stop() }

func (SystemClock) TickFunc(d time.Duration, f func()) Stopper {
	t := &systemTicker{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type systemTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *systemTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// Simulator runs the Idle -> Connecting -> InCall -> Idle machine for one
// client. The onUpdate callback fires on every observable change and runs
// with the simulator's lock held: it must not call back into the Simulator.
type Simulator struct {
	mu       sync.Mutex
	fsm      *stateless.StateMachine
	clock    Clock
	onUpdate func(Status)

	connect Stopper
	tick    Stopper
	seconds int
}

func NewSimulator(clock Clock, onUpdate func(Status)) *Simulator {
	s := &Simulator{
		clock:    clock,
		onUpdate: onUpdate,
	}

	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		Permit(triggerStart, StateConnecting).
		OnEntry(func(_ context.Context, _ ...any) error {
			s.stopTimers()
			s.seconds = 0
			s.emit()
			return nil
		})

	fsm.Configure(StateConnecting).
		Permit(triggerConnected, StateInCall).
		Permit(triggerEnd, StateIdle).
		OnEntry(func(_ context.Context, _ ...any) error {
			s.connect = s.clock.AfterFunc(ConnectDelay, s.onConnected)
			s.emit()
			return nil
		})

	fsm.Configure(StateInCall).
		Permit(triggerEnd, StateIdle).
		OnEntry(func(_ context.Context, _ ...any) error {
			s.tick = s.clock.TickFunc(TickInterval, s.onTick)
			s.emit()
			return nil
		})

	s.fsm = fsm
	return s
}

// Start begins a simulated call. No-op unless idle.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire(triggerStart)
}

// End tears the call down and cancels all timers. No-op when idle.
func (s *Simulator) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire(triggerEnd)
}

func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

func (s *Simulator) onConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fire(triggerConnected)
}

func (s *Simulator) onTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// A tick can race with End; count only while actually in the call.
	if s.fsm.MustState() != StateInCall {
		return
	}
	s.seconds++
	s.emit()
}

// fire swallows not-permitted triggers: Start during a call and End while
// idle are defined as no-ops.
func (s *Simulator) fire(trigger stateless.Trigger) {
	if ok, _ := s.fsm.CanFire(trigger); !ok {
		return
	}
	// Fire only errors on unpermitted triggers, checked above.
	_ = s.fsm.Fire(trigger)
}

func (s *Simulator) stopTimers() {
	if s.connect != nil {
		s.connect.Stop()
		s.connect = nil
	}
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
}

func (s *Simulator) status() Status {
	return Status{
		State:   fmt.Sprint(s.fsm.MustState()),
		Elapsed: formatElapsed(s.seconds),
	}
}

func (s *Simulator) emit() {
	if s.onUpdate != nil {
		s.onUpdate(s.status())
	}
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
