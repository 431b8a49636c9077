package corevm

import (
	"github.com/corevm/corevm/internal/gcroot"
	"github.com/corevm/corevm/internal/object"
	"github.com/corevm/corevm/internal/value"
)

// NewObject allocates a JSObject (internal/object) with the given
// prototype (nil for a null-prototype object) and wraps it as a Value,
// ready to be stored in a register, a Handle, or another object's
// property slot.
func (r *Runtime) NewObject(proto *object.Object) value.Value {
	return object.New(proto).AsValue()
}

// NewObjectPrototype allocates the one object every other object in a
// Runtime ultimately chains to, per spec.md §3.3's prototype-chain walk
// bottoming out at null. Embedders call this once per Runtime and pass
// its result as proto to every NewObject that should inherit from it.
func (r *Runtime) NewObjectPrototype() *object.Object {
	return object.New(nil)
}

// OpenScope opens a GCScope (internal/gcroot) rooted on this Runtime's
// arena. Callers that build up intermediate object graphs across
// multiple allocations — anything that could trigger a GC pass spec.md
// §3.5 requires rooting against — should hold every live reference as
// a Handle inside such a scope and Close it when done.
//
// Compiled script execution roots its own per-call scope internally
// (internal/interp.Interpreter.runCode); OpenScope is for embedder code
// that builds values outside of a CallFunction, e.g. constructing a
// global object before the first script runs.
func (r *Runtime) OpenScope() *gcroot.Scope {
	return gcroot.NewScope(r.arena)
}

// RootValue is a convenience for embedder code: open a scope, root v,
// run fn with the resulting Handle, then close the scope — the
// single-allocation analogue of OpenScope for callers that don't need
// the scope to span multiple values.
func (r *Runtime) RootValue(v value.Value, fn func(h gcroot.Handle)) {
	scope := r.OpenScope()
	defer scope.Close()
	fn(scope.NewHandle(v))
}
