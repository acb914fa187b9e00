package debounce

import (
	"sync"
	"time"

	"github.com/pathsub/pathsub-go/pkg/clock"
)

// DefaultDelay is the quiet period used when no positive delay is given.
const DefaultDelay = 20 * time.Millisecond

// Stats counts what a Gate has done since it was created.
type Stats struct {
	// Armed is the number of accepted Arm calls.
	Armed uint64

	// Fired is the number of actions that ran.
	Fired uint64

	// Dropped is the number of actions superseded by a later Arm.
	Dropped uint64
}

// Gate is a counter-based debouncer. The zero value is not usable; create
// one with NewGate or NewGateWithClock.
type Gate struct {
	mu      sync.Mutex
	clock   clock.Clock
	delay   time.Duration
	pending int
	stopped bool
	nextID  uint64
	timers  map[uint64]*clock.Timer
	stats   Stats

	// latest is the action passed to the most recent Arm.
	latest func()
}

// NewGate creates a Gate on the real clock.
func NewGate(delay time.Duration) *Gate {
	return NewGateWithClock(delay, clock.Real())
}

// NewGateWithClock creates a Gate that schedules on c. A non-positive
// delay becomes DefaultDelay and a nil clock becomes clock.Real().
func NewGateWithClock(delay time.Duration, c clock.Clock) *Gate {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if c == nil {
		c = clock.Real()
	}
	return &Gate{
		clock:  c,
		delay:  delay,
		timers: make(map[uint64]*clock.Timer),
	}
}

// Delay returns the gate's quiet period.
func (g *Gate) Delay() time.Duration {
	return g.delay
}

// Arm schedules an action to run after the delay unless another Arm call
// is still in flight at that point. Whichever timer settles the gate runs
// the action passed to the most recent Arm, so the last action wins on
// any clock. It returns immediately. Arm on a stopped gate does nothing.
func (g *Gate) Arm(action func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	g.pending++
	g.stats.Armed++
	g.nextID++
	id := g.nextID
	g.latest = action
	// delay is always positive, so the callback never runs inside
	// AfterFunc and cannot contend for g.mu here.
	g.timers[id] = g.clock.AfterFunc(g.delay, func() {
		g.settle(id)
	})
}

// settle is the timer callback for one Arm call.
func (g *Gate) settle(id uint64) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	delete(g.timers, id)
	g.pending--
	var action func()
	if g.pending == 0 {
		action = g.latest
		g.latest = nil
		g.stats.Fired++
	} else {
		g.stats.Dropped++
	}
	g.mu.Unlock()

	if action != nil {
		action()
	}
}

// Pending returns the number of Arm calls whose timers have not fired.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Stats returns a snapshot of the gate's counters.
func (g *Gate) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stats
}

// Stop cancels every pending timer. Pending actions never run and later
// Arm calls are ignored. It is safe to call Stop more than once.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	g.stopped = true
	for id, timer := range g.timers {
		timer.Stop()
		delete(g.timers, id)
	}
	g.pending = 0
	g.latest = nil
}
