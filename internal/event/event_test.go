package event

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestOnceFiresOnFirstSourceAndDetachesAll(t *testing.T) {
	var pointer, key, scroll Emitter
	var runs int32

	o := Once(func() { atomic.AddInt32(&runs, 1) }, &pointer, &key, &scroll)
	if pointer.Len() != 1 || key.Len() != 1 || scroll.Len() != 1 {
		t.Fatalf("expected one handler per source")
	}

	key.Emit()
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
	if !o.Fired() {
		t.Error("Fired() = false after emit")
	}
	for name, e := range map[string]*Emitter{"pointer": &pointer, "key": &key, "scroll": &scroll} {
		if e.Len() != 0 {
			t.Errorf("%s still has %d handlers", name, e.Len())
		}
	}

	pointer.Emit()
	scroll.Emit()
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs after later gestures = %d, want 1", got)
	}
}

func TestOnceSourcesDetachedBeforePayload(t *testing.T) {
	var a, b Emitter
	var seen int
	Once(func() { seen = a.Len() + b.Len() }, &a, &b)

	b.Emit()
	if seen != 0 {
		t.Errorf("payload saw %d live handlers, want 0", seen)
	}
}

func TestOnceConcurrentFiringRunsOnce(t *testing.T) {
	sources := make([]*Emitter, 6)
	args := make([]Source, len(sources))
	for i := range sources {
		sources[i] = &Emitter{}
		args[i] = sources[i]
	}

	var runs int32
	Once(func() { atomic.AddInt32(&runs, 1) }, args...)

	// Grab the handlers directly so every goroutine races on fire().
	var handlers []func()
	for _, s := range sources {
		s.mu.Lock()
		for _, fn := range s.subs {
			handlers = append(handlers, fn)
		}
		s.mu.Unlock()
	}

	var wg sync.WaitGroup
	for _, fn := range handlers {
		wg.Add(1)
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(fn)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestOnceCancel(t *testing.T) {
	var a Emitter
	var ran bool
	o := Once(func() { ran = true }, &a)
	o.Cancel()
	a.Emit()

	if ran || o.Fired() {
		t.Error("payload ran after Cancel")
	}
	if a.Len() != 0 {
		t.Errorf("handlers after Cancel = %d", a.Len())
	}
}

func TestOnceSourceFiringDuringSubscribe(t *testing.T) {
	eager := SourceFunc(func(fn func()) func() {
		fn()
		return func() {}
	})
	var late Emitter
	var runs int

	Once(func() { runs++ }, eager, &late)
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if late.Len() != 0 {
		t.Errorf("late source kept %d handlers", late.Len())
	}
}
