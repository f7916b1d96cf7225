//go:build js && wasm

package dom

import (
	"context"
	"syscall/js"
)

// Audio is an HTMLAudioElement as a playback.Element.
type Audio struct {
	el js.Value
}

// NewAudio wraps el.
func NewAudio(el js.Value) *Audio {
	el.Set("preload", "auto")
	el.Set("loop", false)
	return &Audio{el: el}
}

func (a *Audio) SetSource(src string) { a.el.Set("src", src) }

func (a *Audio) Load() { a.el.Call("load") }

func (a *Audio) SetMuted(muted bool) { a.el.Set("muted", muted) }

// Play resolves once the browser accepts or refuses playback. Refusal
// (NotAllowedError for unmuted autoplay) is returned, not thrown.
func (a *Audio) Play(ctx context.Context) error {
	_, err := Await(ctx, a.el.Call("play"))
	return err
}

func (a *Audio) Pause() { a.el.Call("pause") }

// OnEnded calls fn when the current track finishes.
func (a *Audio) OnEnded(fn func()) (cancel func()) {
	return Listen(a.el, "ended", func(js.Value) { fn() })
}
