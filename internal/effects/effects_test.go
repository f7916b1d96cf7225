package effects

import (
	"errors"
	"testing"
)

type recordingEffect struct {
	attached  string
	destroyed int
	attachErr error
	panicMsg  string
}

func (r *recordingEffect) Attach(container string) error {
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	r.attached = container
	return r.attachErr
}

func (r *recordingEffect) Destroy() { r.destroyed++ }

func TestMountAttachesRegisteredEffect(t *testing.T) {
	reg := NewRegistry()
	eff := &recordingEffect{}
	reg.Register("clouds", func() (Effect, error) { return eff, nil })

	m := reg.Mount("clouds", "hero-bg")
	if m.Fallback {
		t.Fatal("expected real effect")
	}
	if eff.attached != "hero-bg" {
		t.Errorf("attached to %q", eff.attached)
	}

	m.Destroy()
	m.Destroy()
	if eff.destroyed != 1 {
		t.Errorf("destroyed %d times, want 1", eff.destroyed)
	}
}

func TestMountFallsBack(t *testing.T) {
	tests := []struct {
		name          string
		factory       Factory
		wantDestroyed int
	}{
		{"factory error", func() (Effect, error) { return nil, errors.New("three.js not loaded") }, 0},
		{"factory panic", func() (Effect, error) { panic("VANTA is undefined") }, 0},
		{"nil effect", func() (Effect, error) { return nil, nil }, 0},
		{"attach error", nil, 1},
		{"attach panic", nil, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := NewRegistry()
			eff := &recordingEffect{}
			switch tc.name {
			case "attach error":
				eff.attachErr = errors.New("container too small")
			case "attach panic":
				eff.panicMsg = "TypeError: el is null"
			}
			f := tc.factory
			if f == nil {
				f = func() (Effect, error) { return eff, nil }
			}
			reg.Register("globe", f)

			m := reg.Mount("globe", "bg")
			if !m.Fallback {
				t.Fatal("expected fallback")
			}
			if eff.destroyed != tc.wantDestroyed {
				t.Errorf("destroyed = %d, want %d", eff.destroyed, tc.wantDestroyed)
			}
			m.Destroy()
		})
	}
}

func TestMountUnknownEffect(t *testing.T) {
	m := NewRegistry().Mount("halo", "bg")
	if !m.Fallback || m.Name != "halo" {
		t.Fatalf("got %+v", m)
	}
	m.Destroy()
}
