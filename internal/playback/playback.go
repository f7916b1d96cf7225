// Package playback owns the single background-music element and keeps its
// observable state honest with respect to the host's autoplay rules.
package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/Zachkp/portfolio/internal/press"
)

// ErrEmptyPlaylist is returned by New when there is nothing to play.
var ErrEmptyPlaylist = errors.New("playback: empty playlist")

// Element is the audio resource being controlled. Play blocks until the host
// accepts or refuses playback.
type Element interface {
	SetSource(src string)
	Load()
	SetMuted(muted bool)
	Play(ctx context.Context) error
	Pause()
}

// State is the controller's view of the element.
type State struct {
	TrackIndex int  `json:"trackIndex"`
	IsPlaying  bool `json:"isPlaying"`
	IsMuted    bool `json:"isMuted"`
}

// Option configures a Controller.
type Option func(*Controller)

// OnChange registers a callback invoked with every new state.
func OnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller serialises transport operations on one Element.
type Controller struct {
	op sync.Mutex // held for the duration of a transport operation

	mu       sync.RWMutex
	state    State
	el       Element
	playlist []string
	onChange func(State)
}

// New binds a controller to el. The playlist is copied.
func New(el Element, playlist []string, opts ...Option) (*Controller, error) {
	if len(playlist) == 0 {
		return nil, ErrEmptyPlaylist
	}
	c := &Controller{
		el:       el,
		playlist: append([]string(nil), playlist...),
		state:    State{IsMuted: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Track returns the source of the current track.
func (c *Controller) Track() string {
	return c.playlist[c.State().TrackIndex]
}

// Initialize binds the first track and attempts muted autoplay. A refusal
// leaves the controller paused.
func (c *Controller) Initialize(ctx context.Context) {
	c.op.Lock()
	defer c.op.Unlock()

	c.el.SetSource(c.playlist[0])
	c.el.SetMuted(true)
	c.update(func(s *State) {
		s.TrackIndex = 0
		s.IsMuted = true
		s.IsPlaying = false
	})

	err := c.el.Play(ctx)
	c.update(func(s *State) { s.IsPlaying = err == nil })
}

// EnableSound unmutes and starts playback. It is meant for the first user
// gesture and does nothing once sound is enabled.
func (c *Controller) EnableSound(ctx context.Context) {
	c.op.Lock()
	defer c.op.Unlock()

	if !c.State().IsMuted {
		return
	}
	c.unmute()
	if err := c.el.Play(ctx); err != nil {
		c.update(func(s *State) { s.IsPlaying = false })
		return
	}
	c.update(func(s *State) { s.IsPlaying = true })
}

// ToggleTransport pauses when playing, otherwise unmutes and plays.
func (c *Controller) ToggleTransport(ctx context.Context) {
	c.op.Lock()
	defer c.op.Unlock()

	if c.State().IsPlaying {
		c.el.Pause()
		c.update(func(s *State) { s.IsPlaying = false })
		return
	}

	c.unmute()
	if err := c.el.Play(ctx); err != nil {
		c.update(func(s *State) { s.IsPlaying = false })
		return
	}
	c.update(func(s *State) { s.IsPlaying = true })
}

// SkipToNext advances to the next track, wrapping at the end of the
// playlist, and attempts to play it.
func (c *Controller) SkipToNext(ctx context.Context) {
	c.op.Lock()
	defer c.op.Unlock()
	c.skip(ctx)
}

// TrackEnded is called when the current track finishes.
func (c *Controller) TrackEnded(ctx context.Context) {
	c.op.Lock()
	defer c.op.Unlock()
	c.skip(ctx)
}

// ToggleMute flips the mute flag without touching transport.
func (c *Controller) ToggleMute() {
	c.op.Lock()
	defer c.op.Unlock()

	muted := !c.State().IsMuted
	c.el.SetMuted(muted)
	c.update(func(s *State) { s.IsMuted = muted })
}

// Apply maps a resolved press intent onto a transport operation.
func (c *Controller) Apply(ctx context.Context, intent press.Intent) {
	switch intent {
	case press.Toggle:
		c.ToggleTransport(ctx)
	case press.Skip:
		c.SkipToNext(ctx)
	}
}

// Close pauses the element.
func (c *Controller) Close() {
	c.op.Lock()
	defer c.op.Unlock()

	c.el.Pause()
	c.update(func(s *State) { s.IsPlaying = false })
}

func (c *Controller) skip(ctx context.Context) {
	next := (c.State().TrackIndex + 1) % len(c.playlist)

	c.el.Pause()
	c.el.SetSource(c.playlist[next])
	c.el.Load()
	c.update(func(s *State) {
		s.TrackIndex = next
		s.IsPlaying = false
	})

	c.unmute()
	if err := c.el.Play(ctx); err != nil {
		c.update(func(s *State) { s.IsPlaying = false })
		return
	}
	c.update(func(s *State) { s.IsPlaying = true })
}

func (c *Controller) unmute() {
	if !c.State().IsMuted {
		return
	}
	c.el.SetMuted(false)
	c.update(func(s *State) { s.IsMuted = false })
}

func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	before := c.state
	fn(&c.state)
	after := c.state
	c.mu.Unlock()

	if after != before && c.onChange != nil {
		c.onChange(after)
	}
}
