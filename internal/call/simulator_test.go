package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives the simulator with virtual time. Tests run on a single
// goroutine, so no locking is needed.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at       time.Duration
	interval time.Duration // 0 for one-shot timers
	f        func()
	stopped  bool
}

func (t *fakeTimer) Stop() { t.stopped = true }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) TickFunc(d time.Duration, f func()) Stopper {
	t := &fakeTimer{at: c.now + d, interval: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves virtual time forward, firing due timers in time order.
func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		next := c.nextDue(target)
		if next == nil {
			break
		}
		c.now = next.at
		if next.interval > 0 {
			next.at += next.interval
		} else {
			next.stopped = true
		}
		next.f()
	}
	c.now = target
}

func (c *fakeClock) nextDue(target time.Duration) *fakeTimer {
	var due *fakeTimer
	for _, t := range c.timers {
		if t.stopped || t.at > target {
			continue
		}
		if due == nil || t.at < due.at {
			due = t
		}
	}
	return due
}

func newTestSimulator() (*Simulator, *fakeClock, *[]Status) {
	clock := &fakeClock{}
	var updates []Status
	sim := NewSimulator(clock, func(s Status) {
		updates = append(updates, s)
	})
	return sim, clock, &updates
}

func TestSimulator_ConnectsAfterDelay(t *testing.T) {
	sim, clock, _ := newTestSimulator()

	require.Equal(t, "idle", sim.Status().State)

	sim.Start()
	require.Equal(t, "connecting", sim.Status().State)

	clock.Advance(1900 * time.Millisecond)
	require.Equal(t, "connecting", sim.Status().State)

	clock.Advance(100 * time.Millisecond)
	require.Equal(t, "in_call", sim.Status().State)
	require.Equal(t, "00:00", sim.Status().Elapsed)
}

func TestSimulator_TicksWhileInCall(t *testing.T) {
	sim, clock, _ := newTestSimulator()

	sim.Start()
	clock.Advance(2 * time.Second)
	require.Equal(t, "in_call", sim.Status().State)

	clock.Advance(time.Second)
	require.Equal(t, "00:01", sim.Status().Elapsed)

	clock.Advance(59 * time.Second)
	require.Equal(t, "01:00", sim.Status().Elapsed)

	clock.Advance(5 * time.Second)
	require.Equal(t, "01:05", sim.Status().Elapsed)
}

func TestSimulator_EndCancelsTimers(t *testing.T) {
	sim, clock, updates := newTestSimulator()

	sim.Start()
	clock.Advance(2 * time.Second)
	clock.Advance(3 * time.Second)
	require.Equal(t, "00:03", sim.Status().Elapsed)

	sim.End()
	require.Equal(t, "idle", sim.Status().State)
	require.Equal(t, "00:00", sim.Status().Elapsed)

	// No ticks after the call ended.
	before := len(*updates)
	clock.Advance(10 * time.Second)
	require.Equal(t, before, len(*updates))
}

func TestSimulator_EndWhileConnecting(t *testing.T) {
	sim, clock, _ := newTestSimulator()

	sim.Start()
	require.Equal(t, "connecting", sim.Status().State)

	sim.End()
	require.Equal(t, "idle", sim.Status().State)

	// The pending connect timer must not fire.
	clock.Advance(5 * time.Second)
	require.Equal(t, "idle", sim.Status().State)
}

func TestSimulator_RedundantTriggersAreNoOps(t *testing.T) {
	sim, clock, _ := newTestSimulator()

	// End while idle does nothing.
	sim.End()
	require.Equal(t, "idle", sim.Status().State)

	sim.Start()
	clock.Advance(2 * time.Second)

	// Start during a call does nothing.
	sim.Start()
	require.Equal(t, "in_call", sim.Status().State)

	clock.Advance(time.Second)
	require.Equal(t, "00:01", sim.Status().Elapsed)
}

func TestFormatElapsed(t *testing.T) {
	require.Equal(t, "00:00", formatElapsed(0))
	require.Equal(t, "00:59", formatElapsed(59))
	require.Equal(t, "01:00", formatElapsed(60))
	require.Equal(t, "12:34", formatElapsed(12*60+34))
}
