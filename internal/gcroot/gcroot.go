// Package gcroot implements the Handle / GCScope rooting discipline of
// spec.md §3.5: the only safe way to hold a heap pointer across an
// operation that may allocate.
//
// The teacher has no rooting discipline of its own (wazero's heap is
// Go-GC-managed throughout and never moves), so this package follows the
// spec's own §9 Design Notes guidance verbatim: "The C++ GCScope/Handle
// pattern maps cleanly to an arena with index-based handles: a scope holds
// (arena, top_on_entry) and drops to it on exit. Handles become
// (generation, index) and are dereferenced through the arena." The
// generation counter guards against use of a Handle after its owning Scope
// has closed and the slot has been reused by a later scope.
package gcroot

import (
	"fmt"

	"github.com/corevm/corevm/internal/buildoptions"
	"github.com/corevm/corevm/internal/value"
	"github.com/corevm/corevm/internal/vmlog"
)

// Arena is the thread-private root stack backing every Handle. Per
// spec.md §3.5, "the current thread owns its handle stack; handles are
// neither Send nor Sync" — an Arena must never be shared across
// goroutines, which is why it carries no synchronization.
type Arena struct {
	slots      []value.Value
	generation []uint32
	gen        uint32
}

// NewArena creates an empty root stack.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of live handle slots, i.e. the GC root count
// contributed by this arena.
func (a *Arena) Len() int { return len(a.slots) }

// ScanRoots visits every live handle slot. This is the handle-stack
// portion of the GC collaborator's root scan (spec.md §6.2): "iterates...
// the handle stack...".
func (a *Arena) ScanRoots(visit func(*value.Value)) {
	for i := range a.slots {
		visit(&a.slots[i])
	}
}

// Handle is a typed pointer-to-pointer-in-a-root-stack: a stable reference
// to one Arena slot, valid only while its owning Scope (and any enclosing
// scope) remains open and the generation hasn't advanced past it.
type Handle struct {
	arena *Arena
	index int
	gen   uint32
}

// Get dereferences the handle. Panics if the handle has outlived its scope
// (a use-after-close bug, analogous to a dangling C++ Handle<T>).
func (h Handle) Get() value.Value {
	h.checkLive()
	return h.arena.slots[h.index]
}

// Set stores a new Value into the handle's slot, keeping the same root
// identity — used when an operation updates what a rooted reference points
// to without re-rooting.
func (h Handle) Set(v value.Value) {
	h.checkLive()
	h.arena.slots[h.index] = v
}

func (h Handle) checkLive() {
	if h.index >= len(h.arena.slots) || h.arena.generation[h.index] != h.gen {
		panic("gcroot: use of Handle after its GCScope was closed")
	}
}

// Marker captures an Arena's current top, the analogue of
// spec.md §3.5's GCScopeMarker.
type Marker struct {
	index int
	gen   uint32
}

// Scope is a scoped window on an Arena's root stack. Every Handle
// allocated inside a Scope becomes unreachable once the Scope closes.
type Scope struct {
	arena    *Arena
	baseline int
	closed   bool
	log      *vmlog.Logger
}

// NewScope opens a scope on arena, recording its current top as the
// baseline that Close() restores and AssertBaseline checks against.
func NewScope(arena *Arena) *Scope {
	return &Scope{arena: arena, baseline: len(arena.slots), log: vmlog.Root.New("component", "gcscope")}
}

// NewHandle roots v, returning a Handle valid until this Scope (or an
// enclosing marker flush) releases it.
func (s *Scope) NewHandle(v value.Value) Handle {
	if s.closed {
		panic("gcroot: NewHandle called on a closed GCScope")
	}
	idx := len(s.arena.slots)
	s.arena.slots = append(s.arena.slots, v)
	s.arena.generation = append(s.arena.generation, s.arena.gen)
	return Handle{arena: s.arena, index: idx, gen: s.arena.gen}
}

// Marker captures the current top of this scope's arena, for later
// FlushToMarker calls. Used inside interpreter loops to bound root-set
// growth without closing the whole scope (spec.md §3.5).
func (s *Scope) Marker() Marker {
	return Marker{index: len(s.arena.slots), gen: s.arena.gen}
}

// FlushToMarker drops every handle created after m, invalidating them.
// Handles created before m remain valid.
func (s *Scope) FlushToMarker(m Marker) {
	a := s.arena
	if m.gen == a.gen {
		a.slots = a.slots[:m.index]
		a.generation = a.generation[:m.index]
	}
}

// Baseline returns the handle count this scope will restore to on Close,
// the value AssertBaseline checks against. The interpreter's dispatch
// loop does not call AssertBaseline.
func (s *Scope) Baseline() int { return s.baseline }

// AtBaseline reports whether the arena has returned to this scope's
// baseline handle count — true immediately after open, and whenever all
// handles created inside the scope have been flushed.
func (s *Scope) AtBaseline() bool { return len(s.arena.slots) == s.baseline }

// Close releases every handle allocated inside this scope and bumps the
// arena's generation so any Handle still referencing a released slot
// panics on use instead of silently reading stale or reused data.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	a := s.arena
	a.slots = a.slots[:s.baseline]
	a.generation = a.generation[:s.baseline]
	a.gen++
}

// AssertBaseline implements the debug-only check named in spec.md §4.1:
// "Every iteration begins by asserting (debug builds only) that the
// handle-scope is at its baseline count and that no stale temporary
// handle survives." It is a no-op unless built with -tags corevm_debug,
// mirroring the teacher's buildoptions.IstTest gate.
func AssertBaseline(s *Scope) {
	if !buildoptions.DebugAssertionsEnabled {
		return
	}
	if !s.AtBaseline() {
		s.log.Warn("handle-scope baseline violated",
			"baseline", s.baseline, "current", len(s.arena.slots))
		panic(fmt.Sprintf("gcroot: handle-scope baseline violated: baseline=%d current=%d",
			s.baseline, len(s.arena.slots)))
	}
}
