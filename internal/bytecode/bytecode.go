// Package bytecode defines the code-block contract interp.Interpreter
// dispatches against (spec.md §6.1): a flat byte stream, its register
// frame size, strict-mode flag, literal/symbol tables, inline-cache
// storage, a catch table for exception unwinding, and debug offset
// metadata.
//
// Grounded in wazero's compiled function representation in interpreter.go
// (code{body []interpreterOp}, function{..., source *wasm.FunctionInstance})
// — a flat, pre-decoded instruction stream paired with metadata the
// dispatch loop consults by index rather than re-parsing.
package bytecode

import "github.com/corevm/corevm/internal/propcache"

// Op is one interpreted instruction. The opcode set itself
// (spec.md §4.1's "register-based VM" opcodes: LoadConst, GetById,
// PutById, Call, Add, Jump, Return, Throw, ...) is enumerated below as
// OpCode; internal/interp owns dispatch over it.
type Op struct {
	Code    OpCode
	A, B, C int32 // operand registers/immediates; meaning is opcode-specific
	Operand uint32 // literal/symbol/inline-cache table index, when used
}

// OpCode discriminates an Op's behavior.
type OpCode uint8

const (
	OpLoadConst OpCode = iota
	OpLoadUndefined
	OpLoadNull
	OpMove
	OpGetById
	OpPutById
	OpGetByIdTry // spec.md §4.2 TryGetById: throws ReferenceError when the property/binding is absent
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLess
	OpEqual
	OpStrictEqual
	OpJump
	OpJumpIfFalse
	OpCall
	OpReturn
	OpThrow
	OpNewObject
)

// CatchEntry is one protected-range row of a function's catch table
// (spec.md §4.1 "exception unwinding... a per-function catch table"):
// [StartPC, EndPC) is the instruction range a thrown exception inside it
// should be caught by, landing execution at HandlerPC with the thrown
// value written into register StackDepth of the current frame.
type CatchEntry struct {
	StartPC    uint32
	EndPC      uint32
	HandlerPC  uint32
	StackDepth int
}

// CodeBlock is one function's compiled bytecode plus everything the
// interpreter needs to execute it without consulting the parser again.
type CodeBlock struct {
	Name        string
	Ops         []Op
	FrameSize   int // register count a CallFrame for this function must reserve
	Strict      bool
	Constants   []interface{} // float64 numbers, Go strings (boxed into string cells on load) or value.Values, indexed by Op.Operand
	Symbols     []uint32      // strtab.SymbolId values used by GetById/PutById, indexed by Op.Operand
	Caches      []propcache.Entry
	CatchTable  []CatchEntry
	DebugOffsets []uint32 // source byte offset per Op index, parallel to Ops; for stack traces
}

// NewCodeBlock returns an empty CodeBlock ready to be populated by a
// code generator (out of scope here; spec.md treats "how source compiles
// to bytecode" as the parser/codegen boundary, not part of this
// contract).
func NewCodeBlock(name string, frameSize int, strict bool) *CodeBlock {
	return &CodeBlock{Name: name, FrameSize: frameSize, Strict: strict}
}

// FindCatchTarget returns the innermost catch entry protecting pc, or
// !ok if pc is not covered by any entry. Catch entries for nested
// try/catch blocks are emitted innermost-last by the code generator, so
// scanning in reverse finds the innermost match first without needing
// entries to carry explicit nesting depth.
func (c *CodeBlock) FindCatchTarget(pc uint32) (CatchEntry, bool) {
	for i := len(c.CatchTable) - 1; i >= 0; i-- {
		e := c.CatchTable[i]
		if pc >= e.StartPC && pc < e.EndPC {
			return e, true
		}
	}
	return CatchEntry{}, false
}

// DebugOffsetFor returns the source byte offset recorded for the
// instruction at pc, or 0 if none was recorded (stripped debug build).
func (c *CodeBlock) DebugOffsetFor(pc uint32) uint32 {
	if int(pc) >= len(c.DebugOffsets) {
		return 0
	}
	return c.DebugOffsets[pc]
}
