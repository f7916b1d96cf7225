//go:build js && wasm

// Package dom adapts browser objects to the interfaces of the effects
// packages.
package dom

import (
	"context"
	"errors"
	"sync"
	"syscall/js"
)

// Window returns the global window object.
func Window() js.Value { return js.Global() }

// Document returns window.document.
func Document() js.Value { return js.Global().Get("document") }

// ByID returns the element with id, or null.
func ByID(id string) js.Value {
	return Document().Call("getElementById", id)
}

// Present reports whether v is a usable object.
func Present(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

// Listen adds a passive event listener. The returned cancel removes it and
// is safe to call more than once, including from inside fn.
func Listen(target js.Value, typ string, fn func(ev js.Value)) (cancel func()) {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		fn(ev)
		return nil
	})
	opts := js.ValueOf(map[string]interface{}{"passive": true})
	target.Call("addEventListener", typ, cb, opts)

	var once sync.Once
	return func() {
		once.Do(func() {
			target.Call("removeEventListener", typ, cb, opts)
			cb.Release()
		})
	}
}

// Await blocks until promise settles or ctx is done. Non-promise values
// resolve immediately. It must not be called from a js callback.
func Await(ctx context.Context, promise js.Value) (js.Value, error) {
	if !Present(promise) || promise.Get("then").Type() != js.TypeFunction {
		return promise, nil
	}

	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)
	onOK := js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- result{v: v}
		return nil
	})
	onErr := js.FuncOf(func(_ js.Value, args []js.Value) interface{} {
		msg := "promise rejected"
		if len(args) > 0 {
			msg = errorText(args[0])
		}
		ch <- result{err: errors.New(msg)}
		return nil
	})
	release := func() {
		onOK.Release()
		onErr.Release()
	}
	promise.Call("then", onOK, onErr)

	select {
	case r := <-ch:
		release()
		return r.v, r.err
	case <-ctx.Done():
		// The callbacks stay live until the promise settles.
		go func() {
			<-ch
			release()
		}()
		return js.Undefined(), ctx.Err()
	}
}

func errorText(v js.Value) string {
	if !Present(v) {
		return "promise rejected"
	}
	if v.Type() == js.TypeObject {
		name, msg := v.Get("name"), v.Get("message")
		if name.Type() == js.TypeString && msg.Type() == js.TypeString {
			return name.String() + ": " + msg.String()
		}
	}
	return v.String()
}
