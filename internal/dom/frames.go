//go:build js && wasm

package dom

import (
	"sync"
	"syscall/js"

	"github.com/Zachkp/portfolio/internal/event"
)

// Frames schedules on requestAnimationFrame.
type Frames struct{}

// RequestFrame runs fn on the next animation frame.
func (Frames) RequestFrame(fn func()) (cancel func()) {
	var once sync.Once
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) interface{} {
		once.Do(cb.Release)
		fn()
		return nil
	})
	id := Window().Call("requestAnimationFrame", cb)
	return func() {
		once.Do(func() {
			Window().Call("cancelAnimationFrame", id)
			cb.Release()
		})
	}
}

// Pointer reports pointermove positions normalised to the viewport.
type Pointer struct{}

func (Pointer) SubscribePointer(fn func(x, y float64)) (cancel func()) {
	win := Window()
	return Listen(win, "pointermove", func(ev js.Value) {
		w, h := win.Get("innerWidth").Float(), win.Get("innerHeight").Float()
		if w <= 0 || h <= 0 {
			return
		}
		fn(ev.Get("clientX").Float()/w, ev.Get("clientY").Float()/h)
	})
}

// EventSource is an event.Source for one event type on target.
func EventSource(target js.Value, typ string) event.Source {
	return event.SourceFunc(func(fn func()) func() {
		return Listen(target, typ, func(js.Value) { fn() })
	})
}
