// Package event provides small subscription primitives shared by the
// browser bindings and their native tests.
package event

import "sync"

// Source is anything a handler can be attached to and later detached from.
type Source interface {
	Subscribe(fn func()) (cancel func())
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(fn func()) func()

func (f SourceFunc) Subscribe(fn func()) func() { return f(fn) }

// Emitter is an in-process Source. Handlers run synchronously on the
// goroutine calling Emit.
type Emitter struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]func()
}

func (e *Emitter) Subscribe(fn func()) func() {
	e.mu.Lock()
	if e.subs == nil {
		e.subs = make(map[uint64]func())
	}
	id := e.next
	e.next++
	e.subs[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Emit invokes every handler registered at the time of the call.
func (e *Emitter) Emit() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered handlers.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}

// OneShot runs a payload at most once, on the first firing of any of its
// sources. All sources are detached before the payload runs.
type OneShot struct {
	mu      sync.Mutex
	done    bool
	fired   bool
	cancels []func()
	payload func()
}

// Once subscribes payload to every source and returns the subscription.
func Once(payload func(), sources ...Source) *OneShot {
	o := &OneShot{payload: payload}
	for _, src := range sources {
		cancel := src.Subscribe(o.fire)

		o.mu.Lock()
		if o.done {
			o.mu.Unlock()
			cancel()
			continue
		}
		o.cancels = append(o.cancels, cancel)
		o.mu.Unlock()
	}
	return o
}

// Fired reports whether the payload has run (or is running).
func (o *OneShot) Fired() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fired
}

// Cancel detaches all sources without running the payload.
func (o *OneShot) Cancel() {
	for _, cancel := range o.detach() {
		cancel()
	}
}

func (o *OneShot) fire() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.fired = true
	cancels := o.cancels
	o.cancels = nil
	o.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if o.payload != nil {
		o.payload()
	}
}

// detach marks the subscription finished and hands back the cancel funcs
// exactly once.
func (o *OneShot) detach() []func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = true
	cancels := o.cancels
	o.cancels = nil
	return cancels
}
