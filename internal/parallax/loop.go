package parallax

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs fn once on the next frame. The returned cancel must be
// safe to call after fn has run.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Renderer applies a frame's layer states to the presentation layer.
type Renderer interface {
	Render(cursor Vec2, states []LayerState)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(cursor Vec2, states []LayerState)

func (f RenderFunc) Render(cursor Vec2, states []LayerState) { f(cursor, states) }

// PointerSource delivers normalised pointer positions until cancelled.
type PointerSource interface {
	SubscribePointer(fn func(x, y float64)) (cancel func())
}

// Loop drives an Engine once per frame while mounted.
type Loop struct {
	engine  *Engine
	sched   Scheduler
	render  Renderer
	pointer PointerSource

	mu      sync.Mutex
	mounted bool
	gen     uint64
	cancel  func()
	unsub   func()
	frames  uint64
}

// NewLoop wires an engine to a scheduler and renderer. pointer may be nil.
func NewLoop(engine *Engine, sched Scheduler, render Renderer, pointer PointerSource) *Loop {
	return &Loop{engine: engine, sched: sched, render: render, pointer: pointer}
}

// Mount subscribes to pointer input and schedules the first frame. Calling
// Mount on a mounted loop is a no-op.
func (l *Loop) Mount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mounted {
		return
	}
	l.mounted = true
	l.gen++
	if l.pointer != nil {
		l.unsub = l.pointer.SubscribePointer(l.engine.Point)
	}
	l.scheduleLocked(l.gen)
}

// Unmount releases the frame subscription and the pointer listener. A frame
// already running when Unmount is called finishes but does not reschedule.
func (l *Loop) Unmount() {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return
	}
	l.mounted = false
	l.gen++
	cancel, unsub := l.cancel, l.unsub
	l.cancel, l.unsub = nil, nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsub != nil {
		unsub()
	}
}

// Mounted reports whether the loop is running.
func (l *Loop) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}

// Frames returns the number of frames rendered so far.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *Loop) scheduleLocked(gen uint64) {
	l.cancel = l.sched.RequestFrame(func() { l.frame(gen) })
}

func (l *Loop) frame(gen uint64) {
	l.mu.Lock()
	if !l.mounted || l.gen != gen {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	states := l.engine.Tick()
	if l.render != nil {
		l.render.Render(l.engine.Cursor(), states)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	if !l.mounted || l.gen != gen {
		return
	}
	l.scheduleLocked(gen)
}

// FrameTimer is a Scheduler backed by a clock, for hosts without a display
// refresh callback.
type FrameTimer struct {
	clock    clock.Clock
	interval time.Duration
}

// NewFrameTimer returns a scheduler firing at fps frames per second.
func NewFrameTimer(clk clock.Clock, fps int) *FrameTimer {
	if clk == nil {
		clk = clock.New()
	}
	if fps <= 0 {
		fps = 60
	}
	return &FrameTimer{clock: clk, interval: time.Second / time.Duration(fps)}
}

// Interval returns the time between frames.
func (f *FrameTimer) Interval() time.Duration { return f.interval }

func (f *FrameTimer) RequestFrame(fn func()) func() {
	t := f.clock.AfterFunc(f.interval, fn)
	return func() { t.Stop() }
}
