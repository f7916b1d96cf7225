// Package effects loads optional heavyweight background renderers. A
// missing or broken effect never breaks the page: Mount always hands back
// something that can be destroyed.
package effects

import (
	"fmt"
	"log"
	"sync"
)

// Effect renders into a container element until destroyed.
type Effect interface {
	Attach(container string) error
	Destroy()
}

// Noop is the fallback effect.
type Noop struct{}

func (Noop) Attach(string) error { return nil }
func (Noop) Destroy()            {}

// Factory constructs an effect. Factories may fail when the backing library
// is unavailable.
type Factory func() (Effect, error)

// Registry maps effect names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names returns the registered effect names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Mounted is a live effect. Destroy is idempotent.
type Mounted struct {
	Name     string
	Fallback bool

	effect Effect
	once   sync.Once
}

func (m *Mounted) Destroy() {
	m.once.Do(m.effect.Destroy)
}

// Mount builds the named effect and attaches it to container. Any failure,
// including a panic from the effect, degrades to Noop.
func (r *Registry) Mount(name, container string) *Mounted {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		log.Printf("effects: %q not registered, using fallback", name)
		return &Mounted{Name: name, Fallback: true, effect: Noop{}}
	}

	eff, err := build(f)
	if err != nil {
		log.Printf("effects: %q unavailable: %v", name, err)
		return &Mounted{Name: name, Fallback: true, effect: Noop{}}
	}

	if err := attach(eff, container); err != nil {
		log.Printf("effects: %q failed to attach to #%s: %v", name, container, err)
		safeDestroy(eff)
		return &Mounted{Name: name, Fallback: true, effect: Noop{}}
	}
	return &Mounted{Name: name, effect: eff}
}

func build(f Factory) (eff Effect, err error) {
	defer func() {
		if p := recover(); p != nil {
			eff, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	eff, err = f()
	if err == nil && eff == nil {
		err = fmt.Errorf("factory returned no effect")
	}
	return eff, err
}

func attach(eff Effect, container string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return eff.Attach(container)
}

func safeDestroy(eff Effect) {
	defer func() { _ = recover() }()
	eff.Destroy()
}
