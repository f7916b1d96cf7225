//go:build js && wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/Zachkp/portfolio/internal/effects"
)

// vanta wraps one window.VANTA effect instance.
type vanta struct {
	ctor     js.Value
	instance js.Value
}

// Vanta returns a factory for window.VANTA[kind], e.g. "CLOUDS". The
// factory fails when the library is not loaded.
func Vanta(kind string) effects.Factory {
	return func() (effects.Effect, error) {
		lib := Window().Get("VANTA")
		if !Present(lib) {
			return nil, fmt.Errorf("VANTA is not loaded")
		}
		ctor := lib.Get(kind)
		if ctor.Type() != js.TypeFunction {
			return nil, fmt.Errorf("VANTA.%s is not available", kind)
		}
		return &vanta{ctor: ctor}, nil
	}
}

func (v *vanta) Attach(container string) error {
	el := ByID(container)
	if !Present(el) {
		return fmt.Errorf("no element #%s", container)
	}
	v.instance = v.ctor.Invoke(map[string]interface{}{
		"el":            el,
		"mouseControls": true,
		"touchControls": true,
		"gyroControls":  false,
		"minHeight":     200.0,
		"minWidth":      200.0,
	})
	return nil
}

func (v *vanta) Destroy() {
	if Present(v.instance) && v.instance.Get("destroy").Type() == js.TypeFunction {
		v.instance.Call("destroy")
	}
}
