// Package interp implements the Interpreter (spec.md §4.1): the
// register-based bytecode dispatch loop, its arithmetic fast/slow paths,
// GetById/PutById/TryGetById against internal/object and
// internal/propcache, and exception unwinding via a function's catch
// table.
//
// Grounded in wazero interpreter.go's dispatch loop
// (`func (ce *callEngine) callNativeFunc`'s `switch op.kind { case
// operationKindXxx: ... }`) and its deferred-recover fatal-error
// boundary. Unlike the teacher, a thrown *user* JavaScript exception
// never becomes a Go panic here — spec.md §4.1 requires ordinary,
// catchable control flow, so Throw/unwind is a plain value threaded
// through the loop's own return path; only truly fatal conditions
// (stack overflow, an internal invariant violation) use vmerr's
// panic-and-recover-once channel, exactly mirroring the teacher's split
// between wasmruntime sentinels and an ordinary trap value.
package interp

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"github.com/corevm/corevm/internal/buildoptions"
	"github.com/corevm/corevm/internal/bytecode"
	"github.com/corevm/corevm/internal/features"
	"github.com/corevm/corevm/internal/frame"
	"github.com/corevm/corevm/internal/gcroot"
	"github.com/corevm/corevm/internal/object"
	"github.com/corevm/corevm/internal/propcache"
	"github.com/corevm/corevm/internal/shape"
	"github.com/corevm/corevm/internal/strtab"
	"github.com/corevm/corevm/internal/value"
	"github.com/corevm/corevm/internal/vmerr"
	"github.com/corevm/corevm/internal/vmlog"
)

var log = vmlog.Root.New("component", "interp")

// NativeFunc is a host-implemented callable, invoked by OpCall exactly
// like a script function (spec.md §4.1 "Call dispatch": "native
// function, bytecode function, bound function, or not callable").
type NativeFunc func(it *Interpreter, this value.Value, args []value.Value) (value.Value, *ThrownError)

// Function is what OpCall actually invokes: a compiled CodeBlock (a
// script function), a NativeFunc (a host builtin), or a bound wrapper
// around another Function (spec.md's Supplemented Feature "full
// BoundFunction type with prepended-argument semantics") — never more
// than one of Code/Native/Target is set.
type Function struct {
	Name   string
	Code   *bytecode.CodeBlock
	Native NativeFunc

	Target    *Function
	BoundThis value.Value
	BoundArgs []value.Value
}

// AsValue wraps fn as a NativePointer Value so it can live in a
// register or a property slot; FunctionFromValue reverses this.
func (fn *Function) AsValue() value.Value {
	return value.NativePointer(unsafe.Pointer(fn))
}

// FunctionFromValue unwraps v, or returns (nil, false) if v does not
// hold a *Function (used by OpCall's "value is not callable" check).
func FunctionFromValue(v value.Value) (*Function, bool) {
	if v.Kind() != value.KindNativePointer {
		return nil, false
	}
	return (*Function)(v.AsPointer()), true
}

// ThrownError wraps a JavaScript exception value so it can travel as a
// Go error return without being mistaken for a fatal condition; callers
// that see one must consult Value rather than treat it like an
// ordinary error.
type ThrownError struct {
	Value value.Value
}

func (e *ThrownError) Error() string { return "corevm: uncaught JavaScript exception" }

// Interpreter holds everything a dispatch loop needs that outlives any
// single call: the symbol table, the GC root arena, and the shared
// register stack. One Interpreter is safely reused across many Call
// invocations, but is not safe for concurrent use from multiple
// goroutines (spec.md treats the interpreter as single-threaded, same
// as every mainstream JS engine).
type Interpreter struct {
	Strings *strtab.Table
	Arena   *gcroot.Arena

	stack         *frame.Stack
	dictThreshold uint32
	weakTable     *propcache.WeakTable
}

// New returns an Interpreter sharing the given symbol table and GC root
// arena with the rest of a Runtime, bounding its call stack at maxDepth
// (0 uses frame.DefaultMaxDepth) and its objects' dictionary-mode
// conversion at dictThreshold (0 uses shape.DictionaryConversionThreshold).
// A propcache.WeakTable is constructed only when features.WeakInlineCaches
// is enabled, per the Open Question resolution recorded in DESIGN.md.
func New(strings *strtab.Table, arena *gcroot.Arena, maxDepth int, dictThreshold uint32) *Interpreter {
	it := &Interpreter{
		Strings:       strings,
		Arena:         arena,
		stack:         frame.NewStack(maxDepth),
		dictThreshold: dictThreshold,
	}
	if features.Have(features.WeakInlineCaches) {
		it.weakTable = propcache.NewWeakTable()
		registerWeakTable(it.weakTable)
	}
	return it
}

// weakTablesMu/liveWeakTables back object.OnClassRetired: every
// Interpreter built with weak inline caches enabled registers its table
// here, so the single package-level hook (object's convertToDictionary
// has no reference to any particular Interpreter) can reach every live
// table to invalidate a retired class's cache entries. Same
// mutex-guarded-process-wide-list shape as internal/features's flag list.
var (
	weakTablesMu   sync.Mutex
	liveWeakTables []*propcache.WeakTable
)

func registerWeakTable(wt *propcache.WeakTable) {
	weakTablesMu.Lock()
	defer weakTablesMu.Unlock()
	liveWeakTables = append(liveWeakTables, wt)
}

func init() {
	object.OnClassRetired = func(cls *shape.Class) {
		weakTablesMu.Lock()
		defer weakTablesMu.Unlock()
		for _, wt := range liveWeakTables {
			wt.InvalidateClass(cls)
		}
	}
}

func (it *Interpreter) trackWeakCache(cls *shape.Class, entry *propcache.Entry) {
	if it.weakTable != nil {
		it.weakTable.Track(cls, entry)
	}
}

// Call invokes fn with this and args, recovering any fatal panic at this
// single boundary and turning it into a *vmerr.CallStackError — the
// teacher's moduleEngine.Call recover pattern, adapted so only fatal
// conditions (vmerr sentinels, an internal invariant panic) are ever
// seen here. A JS throw that unwinds past every catch table returns as
// an ordinary (value.Value, *ThrownError) pair, never as a panic.
func (it *Interpreter) Call(fn *Function, this value.Value, args []value.Value) (result value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			b := vmerr.NewBuilder()
			for _, f := range it.stack.Frames() {
				b.AddFrame(f.FunctionName, 0)
			}
			err = b.FromRecovered(r)
			result = value.Undefined
		}
	}()
	v, thrownErr := it.call(fn, this, args)
	if thrownErr != nil {
		return value.Undefined, thrownErr
	}
	return v, nil
}

func (it *Interpreter) call(fn *Function, this value.Value, args []value.Value) (value.Value, *ThrownError) {
	for fn.Target != nil { // unwrap any chain of bound functions
		args = append(append([]value.Value{}, fn.BoundArgs...), args...)
		this = fn.BoundThis
		fn = fn.Target
	}
	if fn.Native != nil {
		return fn.Native(it, this, args)
	}
	return it.runCode(fn.Code, this, args)
}

func (it *Interpreter) runCode(code *bytecode.CodeBlock, this value.Value, args []value.Value) (value.Value, *ThrownError) {
	if err := it.stack.Push(code.FrameSize, code.Name, this, code.Strict); err != nil {
		panic(err) // vmerr.ErrCallStackOverflow: fatal, caught by Call's recover
	}
	scope := gcroot.NewScope(it.Arena)
	defer func() {
		scope.Close()
		it.stack.Pop()
	}()

	for i, a := range args {
		if i >= code.FrameSize {
			break
		}
		it.stack.SetRegister(i, a)
	}

	return it.dispatch(code)
}

// dispatch runs code's instruction stream to completion, returning
// either a normal return value or a *ThrownError for an exception that
// propagated past every entry in code's own catch table; the caller
// decides whether it has a handler of its own.
func (it *Interpreter) dispatch(code *bytecode.CodeBlock) (value.Value, *ThrownError) {
	if buildoptions.DebugAssertionsEnabled {
		log.Debug("dispatch", "func", code.Name, "ops", len(code.Ops))
	}

	pc := uint32(0)
	for int(pc) < len(code.Ops) {
		op := code.Ops[pc]
		next := pc + 1

		switch op.Code {
		case bytecode.OpLoadConst:
			it.stack.SetRegister(int(op.A), it.constAsValue(code, op.Operand))
		case bytecode.OpLoadUndefined:
			it.stack.SetRegister(int(op.A), value.Undefined)
		case bytecode.OpLoadNull:
			it.stack.SetRegister(int(op.A), value.Null)
		case bytecode.OpMove:
			it.stack.SetRegister(int(op.A), it.stack.Register(int(op.B)))

		case bytecode.OpGetById:
			v, excVal, threw := it.getById(code, op)
			if threw {
				var done bool
				pc, done = it.unwindOrHandle(code, pc, excVal)
				if done {
					return value.Undefined, &ThrownError{Value: excVal}
				}
				continue
			}
			it.stack.SetRegister(int(op.A), v)
		case bytecode.OpGetByIdTry:
			v, excVal, threw := it.getByIdTry(code, op)
			if threw {
				var done bool
				pc, done = it.unwindOrHandle(code, pc, excVal)
				if done {
					return value.Undefined, &ThrownError{Value: excVal}
				}
				continue
			}
			it.stack.SetRegister(int(op.A), v)
		case bytecode.OpPutById:
			if excVal, threw := it.putById(code, op); threw {
				var done bool
				pc, done = it.unwindOrHandle(code, pc, excVal)
				if done {
					return value.Undefined, &ThrownError{Value: excVal}
				}
				continue
			}

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
			a := it.stack.Register(int(op.B))
			b := it.stack.Register(int(op.C))
			res, excVal, threw := it.arith(op.Code, a, b)
			if threw {
				var done bool
				pc, done = it.unwindOrHandle(code, pc, excVal)
				if done {
					return value.Undefined, &ThrownError{Value: excVal}
				}
				continue
			}
			it.stack.SetRegister(int(op.A), res)
		case bytecode.OpLess:
			a := it.stack.Register(int(op.B))
			b := it.stack.Register(int(op.C))
			res, excVal, threw := it.lessThan(a, b)
			if threw {
				var done bool
				pc, done = it.unwindOrHandle(code, pc, excVal)
				if done {
					return value.Undefined, &ThrownError{Value: excVal}
				}
				continue
			}
			it.stack.SetRegister(int(op.A), res)
		case bytecode.OpEqual, bytecode.OpStrictEqual:
			a := it.stack.Register(int(op.B))
			b := it.stack.Register(int(op.C))
			it.stack.SetRegister(int(op.A), value.Bool(value.SameValueZero(a, b)))

		case bytecode.OpJump:
			next = op.Operand
		case bytecode.OpJumpIfFalse:
			cond := it.stack.Register(int(op.A))
			if !truthy(cond) {
				next = op.Operand
			}

		case bytecode.OpCall:
			callee := it.stack.Register(int(op.B))
			fn, ok := FunctionFromValue(callee)
			if !ok {
				excVal := it.typeError("value is not a function")
				var done bool
				pc, done = it.unwindOrHandle(code, pc, excVal)
				if done {
					return value.Undefined, &ThrownError{Value: excVal}
				}
				continue
			}
			argc := int(op.C)
			callArgs := make([]value.Value, argc)
			for i := 0; i < argc; i++ {
				callArgs[i] = it.stack.Register(int(op.A) + 1 + i)
			}
			this := it.stack.Register(int(op.A))
			res, thrownErr := it.call(fn, this, callArgs)
			if thrownErr != nil {
				var done bool
				pc, done = it.unwindOrHandle(code, pc, thrownErr.Value)
				if done {
					return value.Undefined, &ThrownError{Value: thrownErr.Value}
				}
				continue
			}
			it.stack.SetRegister(int(op.A), res)

		case bytecode.OpReturn:
			return it.stack.Register(int(op.A)), nil
		case bytecode.OpThrow:
			excVal := it.stack.Register(int(op.A))
			var done bool
			pc, done = it.unwindOrHandle(code, pc, excVal)
			if done {
				return value.Undefined, &ThrownError{Value: excVal}
			}
			continue
		case bytecode.OpNewObject:
			o := object.NewWithThreshold(nil, it.dictThreshold)
			it.stack.SetRegister(int(op.A), o.AsValue())
		default:
			panic(vmerr.ErrInvariantViolation)
		}
		pc = next
	}
	return value.Undefined, nil
}

// unwindOrHandle looks up the catch table entry covering pc. If one
// exists, it writes excVal into the handler's expected register and
// returns the handler's pc with done=false, meaning "keep dispatching
// from there"; if none exists, it returns done=true, meaning the caller
// must propagate excVal to whatever invoked this CodeBlock.
func (it *Interpreter) unwindOrHandle(code *bytecode.CodeBlock, pc uint32, excVal value.Value) (newPC uint32, done bool) {
	entry, ok := code.FindCatchTarget(pc)
	if !ok {
		return pc, true
	}
	it.stack.SetRegister(entry.StackDepth, excVal)
	return entry.HandlerPC, false
}

func (it *Interpreter) constAsValue(code *bytecode.CodeBlock, idx uint32) value.Value {
	switch c := code.Constants[idx].(type) {
	case float64:
		return value.Number(c)
	case string:
		return object.NewString(c).AsValue()
	case value.Value:
		return c
	default:
		panic(vmerr.ErrInvariantViolation)
	}
}

// lookupById is the shared GetById/TryGetById algorithm: a
// property-cache hit reads the slot (or invokes its accessor getter)
// directly; a miss walks the prototype chain and, for a shape-mode
// receiver whose own property resolved the lookup, repopulates the
// cache (spec.md §8 "Cache soundness" — a cache entry is only ever
// populated from the class that actually owns the slot, never an
// ancestor's). found reports whether any binding existed at all,
// independent of whether its value happens to be undefined, which is
// what lets getByIdTry tell "absent" apart from "present but undefined".
func (it *Interpreter) lookupById(code *bytecode.CodeBlock, op bytecode.Op) (v, excVal value.Value, threw, found bool) {
	recv := it.stack.Register(int(op.B))
	sym := strtab.SymbolId(code.Symbols[op.Operand])

	if !recv.IsObject() {
		return it.getTransient(recv, sym)
	}

	obj := object.FromValue(recv)
	entry := &code.Caches[op.Operand]
	if slot, flags, hit := entry.Lookup(obj.Class()); hit {
		v, excVal, threw = it.resolvePropertyRead(obj.ReadSlot(slot), recv, flags)
		return v, excVal, threw, true
	}

	owner, d, val, ok := obj.Lookup(sym)
	if !ok {
		return value.Undefined, value.Undefined, false, false
	}
	if owner == obj && !obj.Class().IsDictionary() {
		entry.Populate(obj.Class(), d.Slot, d.Flags)
		it.trackWeakCache(obj.Class(), entry)
	}
	v, excVal, threw = it.resolvePropertyRead(val, recv, d.Flags)
	return v, excVal, threw, true
}

// resolvePropertyRead turns a raw slot value into the value a GetById
// caller actually sees: a data property's value unchanged, or an
// accessor property's getter invoked with this bound to receiver
// (spec.md's Supplemented Feature "accessor properties (getter/setter
// pairs)" — reading one with no getter yields undefined, never a throw).
func (it *Interpreter) resolvePropertyRead(slotVal, receiver value.Value, flags shape.PropertyFlags) (value.Value, value.Value, bool) {
	if flags&shape.FlagAccessor == 0 {
		return slotVal, value.Undefined, false
	}
	acc := object.AccessorFromValue(slotVal)
	getter, ok := FunctionFromValue(acc.Getter)
	if !ok {
		return value.Undefined, value.Undefined, false
	}
	res, thrownErr := it.call(getter, receiver, nil)
	if thrownErr != nil {
		return value.Undefined, thrownErr.Value, true
	}
	return res, value.Undefined, false
}

// getTransient implements property access on a non-object receiver
// (spec.md's Supplemented Feature "transient property access on
// primitives"): null/undefined throw TypeError, a string receiver
// exposes .length and indexed character access as if boxed, and every
// other primitive kind (no prototype object backs it in this engine)
// simply has no properties.
func (it *Interpreter) getTransient(recv value.Value, sym strtab.SymbolId) (v, excVal value.Value, threw, found bool) {
	switch recv.Kind() {
	case value.KindNull, value.KindUndefined:
		return value.Undefined, it.typeError("cannot read properties of " + recv.Kind().String()), true, false
	case value.KindString:
		cell := object.StringFromValue(recv)
		name := it.Strings.String(sym)
		if name == "length" {
			return value.Number(float64(cell.Len())), value.Undefined, false, true
		}
		if idx, ok := parseArrayIndex(name); ok {
			if ch := cell.CharAt(idx); ch != nil {
				return ch.AsValue(), value.Undefined, false, true
			}
		}
		return value.Undefined, value.Undefined, false, false
	default:
		return value.Undefined, value.Undefined, false, false
	}
}

func parseArrayIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// getById implements spec.md §4.1/§4.2's GetById: a missing property is
// an ordinary (non-throwing) undefined result; threw is true only for a
// TypeError reading off null/undefined or for an exception thrown by an
// accessor's getter.
func (it *Interpreter) getById(code *bytecode.CodeBlock, op bytecode.Op) (value.Value, value.Value, bool) {
	v, excVal, threw, _ := it.lookupById(code, op)
	return v, excVal, threw
}

// getByIdTry implements spec.md §4.2's TryGetById: unlike getById, a
// binding that does not exist at all is itself the error — it throws
// ReferenceError, matching an unresolved identifier reference rather
// than an ordinary property miss.
func (it *Interpreter) getByIdTry(code *bytecode.CodeBlock, op bytecode.Op) (value.Value, value.Value, bool) {
	v, excVal, threw, found := it.lookupById(code, op)
	if threw {
		return value.Undefined, excVal, true
	}
	if !found {
		sym := strtab.SymbolId(code.Symbols[op.Operand])
		name := it.Strings.String(sym)
		return value.Undefined, it.referenceError(name + " is not defined"), true
	}
	return v, value.Undefined, false
}

// putById implements spec.md §4.1's PutById slow path: an inherited
// accessor's setter is invoked (or, with no setter, a no-op outside
// strict mode / a TypeError inside it); otherwise an own data property
// is overwritten or a fresh one defined on the receiver, and a
// non-object receiver goes through putTransient instead.
func (it *Interpreter) putById(code *bytecode.CodeBlock, op bytecode.Op) (value.Value, bool) {
	recv := it.stack.Register(int(op.A))
	sym := strtab.SymbolId(code.Symbols[op.Operand])
	v := it.stack.Register(int(op.B))

	if !recv.IsObject() {
		return it.putTransient(recv, code.Strict)
	}
	obj := object.FromValue(recv)

	if _, d, ownerVal, found := obj.Lookup(sym); found && d.Flags&shape.FlagAccessor != 0 {
		acc := object.AccessorFromValue(ownerVal)
		setter, ok := FunctionFromValue(acc.Setter)
		if !ok {
			if code.Strict {
				return it.typeError("cannot set property which has only a getter"), true
			}
			return value.Undefined, false
		}
		if _, thrownErr := it.call(setter, recv, []value.Value{v}); thrownErr != nil {
			return thrownErr.Value, true
		}
		return value.Undefined, false
	}

	var ok bool
	if d, _, found := obj.GetOwn(sym); found {
		ok = obj.DefineOwn(sym, v, d.Flags)
	} else {
		ok = obj.DefineOwn(sym, v, defaultDataFlags)
	}
	if !ok && code.Strict {
		return it.typeError("cannot assign to property"), true
	}
	return value.Undefined, false
}

// putTransient implements assignment through a non-object receiver:
// null/undefined throw TypeError; every other primitive is boxed only
// for the duration of the write, so the write itself has no observable
// effect and is a silent no-op outside strict mode (spec.md's
// Supplemented Feature "transient property access on primitives").
func (it *Interpreter) putTransient(recv value.Value, strict bool) (value.Value, bool) {
	switch recv.Kind() {
	case value.KindNull, value.KindUndefined:
		return it.typeError("cannot set properties of " + recv.Kind().String()), true
	default:
		if strict {
			return it.typeError("cannot create property on " + recv.Kind().String()), true
		}
		return value.Undefined, false
	}
}

const defaultDataFlags = shape.FlagWritable | shape.FlagEnumerable | shape.FlagConfigurable

// fastArith is the pure numeric core shared by every arithmetic opcode
// once both operands are already plain float64s.
func fastArith(code bytecode.OpCode, x, y float64) float64 {
	switch code {
	case bytecode.OpAdd:
		return x + y
	case bytecode.OpSub:
		return x - y
	case bytecode.OpMul:
		return x * y
	case bytecode.OpDiv:
		return x / y
	case bytecode.OpMod:
		if features.Have(features.ModRoundToNearest) {
			return x - math.Round(x/y)*y
		}
		return math.Mod(x, y)
	default:
		panic(vmerr.ErrInvariantViolation)
	}
}

// arith implements spec.md §4.1's arithmetic opcodes with full ToNumber
// coercion: the all-number fast path never leaves float64, and anything
// else (a string, a boolean, an object with valueOf/toString) goes
// through toNumber instead of panicking the way a bare AsNumber() call
// would. OpAdd is handled separately by add, which additionally
// implements string concatenation per JS's "+" semantics.
func (it *Interpreter) arith(code bytecode.OpCode, a, b value.Value) (value.Value, value.Value, bool) {
	if code == bytecode.OpAdd {
		return it.add(a, b)
	}
	if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
		return value.Number(fastArith(code, a.AsNumber(), b.AsNumber())), value.Undefined, false
	}
	x, excVal, threw := it.toNumber(a)
	if threw {
		return value.Undefined, excVal, true
	}
	y, excVal, threw := it.toNumber(b)
	if threw {
		return value.Undefined, excVal, true
	}
	return value.Number(fastArith(code, x, y)), value.Undefined, false
}

// add implements the "+" operator's ToPrimitive-then-branch algorithm:
// concatenate if either primitive operand is a string, otherwise add
// as numbers (so `1 + "x"` becomes the string "1x" instead of either
// crashing or silently producing NaN).
func (it *Interpreter) add(a, b value.Value) (value.Value, value.Value, bool) {
	if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
		return value.Number(a.AsNumber() + b.AsNumber()), value.Undefined, false
	}
	pa, excVal, threw := it.toPrimitive(a)
	if threw {
		return value.Undefined, excVal, true
	}
	pb, excVal, threw := it.toPrimitive(b)
	if threw {
		return value.Undefined, excVal, true
	}
	if pa.Kind() == value.KindString || pb.Kind() == value.KindString {
		sa, excVal, threw := it.toJSString(pa)
		if threw {
			return value.Undefined, excVal, true
		}
		sb, excVal, threw := it.toJSString(pb)
		if threw {
			return value.Undefined, excVal, true
		}
		return object.NewString(sa + sb).AsValue(), value.Undefined, false
	}
	na, excVal, threw := it.toNumber(pa)
	if threw {
		return value.Undefined, excVal, true
	}
	nb, excVal, threw := it.toNumber(pb)
	if threw {
		return value.Undefined, excVal, true
	}
	return value.Number(na + nb), value.Undefined, false
}

// lessThan implements the "<" operator's abstract relational comparison:
// a lexicographic string compare when both primitives are strings,
// otherwise a numeric compare with NaN propagating to false.
func (it *Interpreter) lessThan(a, b value.Value) (value.Value, value.Value, bool) {
	if a.Kind() == value.KindNumber && b.Kind() == value.KindNumber {
		return value.Bool(a.AsNumber() < b.AsNumber()), value.Undefined, false
	}
	pa, excVal, threw := it.toPrimitive(a)
	if threw {
		return value.Undefined, excVal, true
	}
	pb, excVal, threw := it.toPrimitive(b)
	if threw {
		return value.Undefined, excVal, true
	}
	if pa.Kind() == value.KindString && pb.Kind() == value.KindString {
		return value.Bool(object.StringFromValue(pa).Go() < object.StringFromValue(pb).Go()), value.Undefined, false
	}
	na, excVal, threw := it.toNumber(pa)
	if threw {
		return value.Undefined, excVal, true
	}
	nb, excVal, threw := it.toNumber(pb)
	if threw {
		return value.Undefined, excVal, true
	}
	if math.IsNaN(na) || math.IsNaN(nb) {
		return value.Bool(false), value.Undefined, false
	}
	return value.Bool(na < nb), value.Undefined, false
}

// toNumber implements the ToNumber coercion of spec.md §4.1's
// arithmetic opcodes, recursing at most one extra level through
// toPrimitive for an object operand (valueOf/toString reentrancy).
func (it *Interpreter) toNumber(v value.Value) (float64, value.Value, bool) {
	switch v.Kind() {
	case value.KindNumber:
		return v.AsNumber(), value.Undefined, false
	case value.KindBool:
		if v.AsBool() {
			return 1, value.Undefined, false
		}
		return 0, value.Undefined, false
	case value.KindUndefined:
		return math.NaN(), value.Undefined, false
	case value.KindNull:
		return 0, value.Undefined, false
	case value.KindString:
		return parseJSNumber(object.StringFromValue(v).Go()), value.Undefined, false
	case value.KindObject:
		prim, excVal, threw := it.toPrimitive(v)
		if threw {
			return 0, excVal, true
		}
		return it.toNumber(prim)
	default:
		return math.NaN(), value.Undefined, false
	}
}

// toPrimitive implements ToPrimitive for the number/default hint: a
// non-object value passes through unchanged; an object tries its own
// valueOf then toString, each an ordinary (reentrant) function call
// that may itself throw, per spec.md's coercion-protocol Supplemented
// Feature.
func (it *Interpreter) toPrimitive(v value.Value) (value.Value, value.Value, bool) {
	if v.Kind() != value.KindObject {
		return v, value.Undefined, false
	}
	obj := object.FromValue(v)
	for _, name := range [...]string{"valueOf", "toString"} {
		sym, ok := it.Strings.Lookup(name)
		if !ok {
			continue
		}
		_, _, methodVal, found := obj.Lookup(sym)
		if !found {
			continue
		}
		fn, ok := FunctionFromValue(methodVal)
		if !ok {
			continue
		}
		res, thrownErr := it.call(fn, v, nil)
		if thrownErr != nil {
			return value.Undefined, thrownErr.Value, true
		}
		if res.Kind() != value.KindObject {
			return res, value.Undefined, false
		}
	}
	return value.Undefined, it.typeError("cannot convert object to primitive value"), true
}

// toJSString stringifies an already-primitive Value (the result of
// toPrimitive) for "+" concatenation.
func (it *Interpreter) toJSString(v value.Value) (string, value.Value, bool) {
	switch v.Kind() {
	case value.KindString:
		return object.StringFromValue(v).Go(), value.Undefined, false
	case value.KindNumber:
		return formatJSNumber(v.AsNumber()), value.Undefined, false
	case value.KindBool:
		if v.AsBool() {
			return "true", value.Undefined, false
		}
		return "false", value.Undefined, false
	case value.KindUndefined:
		return "undefined", value.Undefined, false
	case value.KindNull:
		return "null", value.Undefined, false
	default:
		return "", value.Undefined, false
	}
}

func parseJSNumber(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func formatJSNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
}

func truthy(v value.Value) bool {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		return false
	case value.KindBool:
		return v.AsBool()
	case value.KindNumber:
		n := v.AsNumber()
		return n != 0 && n == n // false for 0, -0, NaN
	case value.KindString:
		return object.StringFromValue(v).Len() > 0
	default:
		return true
	}
}

// typeError builds a real Error-shaped TypeError object (spec.md §6.3):
// a "name"/"message" data pair plus a "stack" accessor property whose
// getter lazily renders the call stack captured at construction time.
func (it *Interpreter) typeError(msg string) value.Value {
	return it.newErrorObject("TypeError", msg)
}

// referenceError builds a ReferenceError object the same way typeError
// builds a TypeError, used for an unresolved identifier binding
// (spec.md §4.2 TryGetById).
func (it *Interpreter) referenceError(msg string) value.Value {
	return it.newErrorObject("ReferenceError", msg)
}

// newErrorObject is the single choke point every engine-raised
// exception value goes through: it tags the object MarkAsError and
// records the live call stack at this exact moment, so StackString can
// render it later no matter how long the object survives.
func (it *Interpreter) newErrorObject(name, msg string) value.Value {
	o := object.NewWithThreshold(nil, it.dictThreshold)

	nameSym := it.Strings.Intern("name")
	msgSym := it.Strings.Intern("message")
	stackSym := it.Strings.Intern("stack")

	o.DefineOwn(nameSym, object.NewString(name).AsValue(), defaultDataFlags)
	o.DefineOwn(msgSym, object.NewString(msg).AsValue(), defaultDataFlags)

	getter := &Function{Name: "get stack", Native: stackGetter}
	acc := &object.Accessor{Getter: getter.AsValue(), Setter: value.Undefined}
	o.DefineOwn(stackSym, acc.AsValue(), shape.FlagConfigurable|shape.FlagAccessor)

	o.MarkAsError(it.captureFrames())
	return o.AsValue()
}

// captureFrames snapshots the live call stack innermost-first, the
// order a rendered stack trace reads top to bottom.
func (it *Interpreter) captureFrames() []object.ErrorFrame {
	frames := it.stack.Frames()
	out := make([]object.ErrorFrame, len(frames))
	for i, f := range frames {
		out[len(frames)-1-i] = object.ErrorFrame{FunctionName: f.FunctionName}
	}
	return out
}

// stackGetter is the native getter bound to every error object's
// "stack" accessor property; it defers the actual string-building work
// to Object.StackString, which caches its result after first render.
func stackGetter(it *Interpreter, this value.Value, args []value.Value) (value.Value, *ThrownError) {
	if !this.IsObject() {
		return object.NewString("").AsValue(), nil
	}
	return object.NewString(object.FromValue(this).StackString()).AsValue(), nil
}
