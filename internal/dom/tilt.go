//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/Zachkp/portfolio/internal/parallax"
)

// BindTilt makes every element matching selector tilt toward the pointer
// and moves its glow. The returned cancel unbinds all of them.
func BindTilt(selector string, maxDeg float64) (cancel func()) {
	cards := Document().Call("querySelectorAll", selector)
	var cancels []func()
	for i := 0; i < cards.Length(); i++ {
		card := cards.Index(i)
		style := card.Get("style")
		cancels = append(cancels,
			Listen(card, "pointermove", func(ev js.Value) {
				r := card.Call("getBoundingClientRect")
				w, h := r.Get("width").Float(), r.Get("height").Float()
				if w <= 0 || h <= 0 {
					return
				}
				px := (ev.Get("clientX").Float() - r.Get("left").Float()) / w
				py := (ev.Get("clientY").Float() - r.Get("top").Float()) / h
				rx, ry := parallax.Tilt(px, py, maxDeg)
				style.Set("transform", fmt.Sprintf("perspective(800px) rotateX(%.2fdeg) rotateY(%.2fdeg)", rx, ry))
				gx, gy := parallax.Glow(parallax.Vec2{X: px, Y: py})
				style.Call("setProperty", "--gx", gx)
				style.Call("setProperty", "--gy", gy)
			}),
			Listen(card, "pointerleave", func(js.Value) {
				style.Set("transform", "")
			}),
		)
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}
