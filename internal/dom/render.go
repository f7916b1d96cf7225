//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/Zachkp/portfolio/internal/parallax"
)

// Clouds renders parallax layers as absolutely positioned divs.
type Clouds struct {
	container js.Value
	nodes     []js.Value
}

// NewClouds creates one node per layer inside container.
func NewClouds(container js.Value, layers []parallax.Layer) *Clouds {
	doc := Document()
	c := &Clouds{container: container}
	for _, l := range layers {
		n := doc.Call("createElement", "div")
		n.Set("className", "cloud")
		style := n.Get("style")
		style.Set("width", fmt.Sprintf("%.0fpx", l.Size))
		style.Set("height", fmt.Sprintf("%.0fpx", l.Size*0.6))
		style.Set("left", fmt.Sprintf("calc(%.2f%% - %.0fpx)", l.Base.X*100, l.Size/2))
		style.Set("top", fmt.Sprintf("calc(%.2f%% - %.0fpx)", l.Base.Y*100, l.Size*0.3))
		style.Set("opacity", l.Opacity)
		container.Call("appendChild", n)
		c.nodes = append(c.nodes, n)
	}
	return c
}

// Render applies one frame.
func (c *Clouds) Render(cursor parallax.Vec2, states []parallax.LayerState) {
	for i, s := range states {
		if i >= len(c.nodes) {
			break
		}
		c.nodes[i].Get("style").Set("transform", parallax.Transform(s.Offset))
	}
	mx, my := parallax.Glow(cursor)
	style := c.container.Get("style")
	style.Call("setProperty", "--gx", mx)
	style.Call("setProperty", "--gy", my)
}

// Remove detaches the nodes.
func (c *Clouds) Remove() {
	for _, n := range c.nodes {
		n.Call("remove")
	}
	c.nodes = nil
}
