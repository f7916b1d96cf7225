// Package press turns a stream of presses on a single control into either a
// toggle or a skip. A second press inside the window cancels the pending
// toggle and fires a skip instead, so one physical double-press never
// produces both.
package press

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultWindow is the disambiguation window used when none is configured.
const DefaultWindow = 280 * time.Millisecond

// Intent is the action a press sequence resolves to.
type Intent int

const (
	// Toggle is a single press: play or pause.
	Toggle Intent = iota + 1
	// Skip is a double press within the window: next track.
	Skip
)

func (i Intent) String() string {
	switch i {
	case Toggle:
		return "toggle"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// State of the controller between presses.
type State int

const (
	// Idle means no press is pending.
	Idle State = iota
	// AwaitingSecondPress means a Toggle is scheduled and a second press
	// would turn it into a Skip.
	AwaitingSecondPress
)

func (s State) String() string {
	if s == AwaitingSecondPress {
		return "awaiting-second-press"
	}
	return "idle"
}

// Option configures a Controller.
type Option func(*Controller)

// WithWindow overrides the disambiguation window.
func WithWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithClock injects the clock used for timestamps and the deferred toggle.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// Controller classifies presses. Intents are delivered to the callback
// outside the controller's lock: Skip on the goroutine calling Press, Toggle
// on the timer goroutine.
type Controller struct {
	mu       sync.Mutex
	clock    clock.Clock
	window   time.Duration
	onIntent func(Intent)

	last    time.Time // zero after a resolved double-press
	pending *clock.Timer
	seq     uint64
}

// New returns a Controller that reports resolved intents to onIntent.
func New(onIntent func(Intent), opts ...Option) *Controller {
	c := &Controller{
		clock:    clock.New(),
		window:   DefaultWindow,
		onIntent: onIntent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the configured disambiguation window.
func (c *Controller) Window() time.Duration { return c.window }

// State reports whether a toggle is pending.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return AwaitingSecondPress
	}
	return Idle
}

// Press records one activation of the control.
func (c *Controller) Press() {
	now := c.clock.Now()

	c.mu.Lock()
	if c.pending != nil && !c.last.IsZero() && now.Sub(c.last) < c.window {
		c.pending.Stop()
		c.pending = nil
		c.last = time.Time{}
		c.seq++
		c.mu.Unlock()
		c.emit(Skip)
		return
	}

	// The window already ran out but the timer has not been delivered yet:
	// resolve the earlier press here so it is not lost.
	overdue := false
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
		overdue = true
	}

	c.last = now
	c.seq++
	seq := c.seq
	c.pending = c.clock.AfterFunc(c.window, func() { c.fire(seq) })
	c.mu.Unlock()

	if overdue {
		c.emit(Toggle)
	}
}

// Stop cancels a pending toggle without emitting it.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.last = time.Time{}
	c.seq++
}

func (c *Controller) fire(seq uint64) {
	c.mu.Lock()
	if c.pending == nil || c.seq != seq {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()
	c.emit(Toggle)
}

func (c *Controller) emit(i Intent) {
	if c.onIntent != nil {
		c.onIntent(i)
	}
}
