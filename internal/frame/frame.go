// Package frame implements the interpreter's value stack and register
// call frames (spec.md §4.1, §6.1): a contiguous slice of value.Value
// shared by every nested call, with each CallFrame addressing its own
// window via a frame pointer and non-negative register indices from it;
// `this` is kept in the CallFrame itself rather than in a register.
//
// Grounded in wazero interpreter.go's callEngine{stack []uint64; frames
// []*callFrame}: one growable slice backs every call, frames are pushed
// and popped as a Go slice-of-pointers stack, and overflow is detected by
// comparing against a configured maximum depth before push rather than
// relying on a Go stack overflow.
package frame

import (
	"github.com/corevm/corevm/internal/value"
	"github.com/corevm/corevm/internal/vmerr"
)

// DefaultMaxDepth is the default call-stack depth limit (spec.md §4.1
// "bounded call stack"); RuntimeConfig can override it.
const DefaultMaxDepth = 4096

// CallFrame is one activation record: its function's register window
// within the shared Stack, its return address (instruction offset in the
// caller), its function name, `this` value and strictness.
type CallFrame struct {
	FramePointer int    // index into Stack.values where this frame's registers begin
	RegisterSize int    // number of registers/locals this frame owns
	ReturnOffset uint32 // bytecode offset to resume at in the caller, meaningless for frame 0
	FunctionName string // for vmerr.Frame rendering on unwind
	This         value.Value
	StrictMode   bool
}

// Stack is the interpreter's shared register stack (spec.md §4.1: "a
// single contiguous stack of frames, not per-call heap allocation").
type Stack struct {
	values  []value.Value
	frames  []CallFrame
	maxDepth int
}

// NewStack returns an empty Stack bounded at maxDepth call frames. A
// maxDepth of 0 uses DefaultMaxDepth.
func NewStack(maxDepth int) *Stack {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Stack{maxDepth: maxDepth}
}

// Depth returns the number of currently active call frames.
func (s *Stack) Depth() int { return len(s.frames) }

// Current returns a pointer to the innermost active frame. Panics if the
// stack is empty — callers only ever invoke this from within a bytecode
// dispatch loop that always has at least one frame.
func (s *Stack) Current() *CallFrame {
	return &s.frames[len(s.frames)-1]
}

// Push allocates a new CallFrame with registerSize fresh registers
// (initialized to value.Empty) above the current top of the stack, and
// returns it. Returns vmerr.ErrCallStackOverflow instead of pushing if
// doing so would exceed maxDepth — the bounded-stack invariant of
// spec.md §4.1, checked explicitly rather than left to a Go runtime
// stack-overflow panic (Go goroutine stacks grow, but this interpreter's
// own notion of "stack" is this value array, which would otherwise grow
// without bound on unbounded JS recursion).
func (s *Stack) Push(registerSize int, functionName string, this value.Value, strict bool) error {
	if len(s.frames) >= s.maxDepth {
		return vmerr.ErrCallStackOverflow
	}
	fp := len(s.values)
	for i := 0; i < registerSize; i++ {
		s.values = append(s.values, value.Empty)
	}
	s.frames = append(s.frames, CallFrame{
		FramePointer: fp,
		RegisterSize: registerSize,
		FunctionName: functionName,
		This:         this,
		StrictMode:   strict,
	})
	return nil
}

// Pop discards the innermost frame and its registers. Panics if the
// stack is empty.
func (s *Stack) Pop() {
	f := s.frames[len(s.frames)-1]
	s.values = s.values[:f.FramePointer]
	s.frames = s.frames[:len(s.frames)-1]
}

// Register reads register i (0-based, within the current frame's
// window) of the innermost frame.
func (s *Stack) Register(i int) value.Value {
	f := s.Current()
	return s.values[f.FramePointer+i]
}

// SetRegister writes register i of the innermost frame.
func (s *Stack) SetRegister(i int, v value.Value) {
	f := s.Current()
	s.values[f.FramePointer+i] = v
}

// Frames returns a snapshot of every active frame, innermost last, for
// vmerr.Builder to render into a CallStackError on a fatal unwind.
func (s *Stack) Frames() []CallFrame {
	out := make([]CallFrame, len(s.frames))
	copy(out, s.frames)
	return out
}
