// Package parallax animates decorative background layers from pointer
// position and a frame-driven drift.
package parallax

import (
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Sample is one pointer position, normalised to [0,1] within the tracked
// region.
type Sample struct {
	X, Y float64
	At   time.Time
}

// Layer describes one decorative element.
type Layer struct {
	Base      Vec2    // resting position, fraction of the region
	Size      float64 // px
	Drift     float64 // phase speed multiplier
	Amplitude Vec2    // drift amplitude, px
	Parallax  float64 // px of travel across the full pointer range
	Opacity   float64
}

// LayerState is the per-frame output for one layer.
type LayerState struct {
	Base   Vec2
	Phase  float64
	Offset Vec2 // px translation to apply
}

// Config tunes the engine. Zero fields take the defaults.
type Config struct {
	Smoothing float64       // cursor easing factor per frame, in (0,1]
	PhaseStep float64       // phase advance per frame
	IdleAfter time.Duration // no sample for this long counts as idle

	// Directional mode adds pointer velocity (or IdleDrift while idle) to a
	// per-layer travel offset that wraps inside Wrap. The wrap is a jump of
	// one Wrap width, so a renderer enabling it has to hide the seam.
	Directional  bool
	IdleDrift    Vec2    // px per frame
	VelocityGain float64 // px per frame per unit of normalised movement
	MaxSpeed     float64 // px per frame
	Wrap         Vec2    // px
}

// DefaultConfig matches the cloud background.
func DefaultConfig() Config {
	return Config{
		Smoothing:    0.08,
		PhaseStep:    0.005,
		IdleAfter:    150 * time.Millisecond,
		IdleDrift:    Vec2{X: 0.35, Y: 0.1},
		VelocityGain: 120,
		MaxSpeed:     6,
		Wrap:         Vec2{X: 480, Y: 320},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		c.Smoothing = d.Smoothing
	}
	if c.PhaseStep <= 0 {
		c.PhaseStep = d.PhaseStep
	}
	if c.IdleAfter <= 0 {
		c.IdleAfter = d.IdleAfter
	}
	if c.VelocityGain <= 0 {
		c.VelocityGain = d.VelocityGain
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = d.MaxSpeed
	}
	return c
}

// Clouds is the default layer set.
var Clouds = []Layer{
	{Base: Vec2{0.15, 0.18}, Size: 360, Drift: 0.35, Amplitude: Vec2{12, 8}, Parallax: 40, Opacity: 0.5},
	{Base: Vec2{0.75, 0.22}, Size: 420, Drift: 0.25, Amplitude: Vec2{12, 8}, Parallax: 55, Opacity: 0.45},
	{Base: Vec2{0.48, 0.48}, Size: 480, Drift: 0.3, Amplitude: Vec2{12, 8}, Parallax: 50, Opacity: 0.4},
	{Base: Vec2{0.22, 0.72}, Size: 380, Drift: 0.28, Amplitude: Vec2{12, 8}, Parallax: 60, Opacity: 0.42},
	{Base: Vec2{0.82, 0.70}, Size: 520, Drift: 0.22, Amplitude: Vec2{12, 8}, Parallax: 45, Opacity: 0.38},
}

// Engine holds the animation state for a set of layers. It is safe to feed
// samples from one goroutine while another drives Tick.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	clock  clock.Clock
	layers []Layer
	states []LayerState
	travel []Vec2

	target Vec2
	cursor Vec2
	phase  float64

	last     Sample
	hasLast  bool
	velocity Vec2
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) EngineOption {
	return func(e *Engine) { e.cfg = cfg.withDefaults() }
}

// WithClock injects the clock used to timestamp samples.
func WithClock(clk clock.Clock) EngineOption {
	return func(e *Engine) {
		if clk != nil {
			e.clock = clk
		}
	}
}

// NewEngine returns an engine with the cursor centred.
func NewEngine(layers []Layer, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:    DefaultConfig(),
		clock:  clock.New(),
		layers: append([]Layer(nil), layers...),
		target: Vec2{0.5, 0.5},
		cursor: Vec2{0.5, 0.5},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.states = make([]LayerState, len(e.layers))
	e.travel = make([]Vec2, len(e.layers))
	for i, l := range e.layers {
		e.states[i].Base = l.Base
	}
	return e
}

// Layers returns the configured layers.
func (e *Engine) Layers() []Layer { return e.layers }

// Point records a pointer position, clamped to [0,1].
func (e *Engine) Point(x, y float64) {
	e.Observe(Sample{X: x, Y: y, At: e.clock.Now()})
}

// Observe records a pointer sample. Only the latest sample is kept.
func (e *Engine) Observe(s Sample) {
	s.X, s.Y = clamp01(s.X), clamp01(s.Y)

	e.mu.Lock()
	defer e.mu.Unlock()

	cur := Vec2{s.X, s.Y}
	if e.hasLast {
		delta := cur.Sub(Vec2{e.last.X, e.last.Y})
		speed := math.Min(delta.Len()*e.cfg.VelocityGain, e.cfg.MaxSpeed)
		e.velocity = delta.Normalize().Scale(speed)
	}
	e.target = cur
	e.last = s
	e.hasLast = true
}

// Cursor returns the eased cursor position.
func (e *Engine) Cursor() Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Idle reports whether no sample arrived within IdleAfter.
func (e *Engine) Idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idle(e.clock.Now())
}

func (e *Engine) idle(now time.Time) bool {
	return !e.hasLast || now.Sub(e.last.At) > e.cfg.IdleAfter
}

// Tick advances one frame and returns a copy of every layer's state.
func (e *Engine) Tick() []LayerState {
	now := e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cursor = e.cursor.Add(e.target.Sub(e.cursor).Scale(e.cfg.Smoothing))
	e.phase += e.cfg.PhaseStep

	var push Vec2
	if e.cfg.Directional {
		if e.idle(now) {
			push = e.cfg.IdleDrift
		} else {
			push = e.velocity
		}
	}

	for i, l := range e.layers {
		angle := e.phase*(1+l.Drift) + float64(i)
		drift := Vec2{
			X: math.Sin(angle) * l.Amplitude.X,
			Y: math.Cos(angle*0.9) * l.Amplitude.Y,
		}
		pointer := e.cursor.Sub(Vec2{0.5, 0.5}).Scale(l.Parallax)

		offset := drift.Add(pointer)
		if e.cfg.Directional {
			e.travel[i] = e.travel[i].Add(push.Scale(1 + l.Drift)).Wrap(e.cfg.Wrap)
			offset = offset.Add(e.travel[i])
		}

		e.states[i].Phase = angle
		e.states[i].Offset = offset
	}

	out := make([]LayerState, len(e.states))
	copy(out, e.states)
	return out
}
