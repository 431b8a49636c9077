// Package propcache implements PropertyCache (spec.md §4.2, §8): a
// per-call-site monomorphic cache for GetById/PutById, storing the
// HiddenClass pointer last seen at that site plus the slot it resolved to.
//
// The teacher has no per-call-site cache (wazero's closest relative is its
// per-function compiled-code cache, a whole-function granularity, not a
// per-instruction one), so this package is grounded directly in spec.md
// §4.2's "Inline caches" paragraph and §8's "Cache soundness" invariant.
package propcache

import (
	"github.com/corevm/corevm/internal/features"
	"github.com/corevm/corevm/internal/shape"
)

// Entry is one inline cache slot, embedded directly in a bytecode
// instruction's operand space (spec.md §6.1: "inline-cache entries").
// The zero Entry is empty (its class pointer is nil, so Lookup misses
// and falls back to the slow path until Populate fills it); Disable
// turns a site off permanently.
type Entry struct {
	class    *shape.Class
	slot     uint32
	flags    shape.PropertyFlags
	disabled bool
}

// Lookup returns the cached slot for cls, or !ok on a cache miss
// (different class than last seen, or an explicitly disabled site).
// A hit is sound only when cls is bit-identical to the class pointer
// the cache was populated with (spec.md §8's "Cache soundness": "the
// value returned equals JSObject::read_slot(obj, s)" depends on this).
func (e *Entry) Lookup(cls *shape.Class) (slot uint32, flags shape.PropertyFlags, ok bool) {
	if e.disabled || e.class == nil || e.class != cls {
		return 0, 0, false
	}
	return e.slot, e.flags, true
}

// Populate fills (or overwrites) the cache with a fresh observation.
// A call site only ever holds one (class, slot) pair at a time — a
// second distinct class at the same site simply replaces the first,
// which is what makes the cache monomorphic rather than polymorphic.
func (e *Entry) Populate(cls *shape.Class, slot uint32, flags shape.PropertyFlags) {
	if e.disabled {
		return
	}
	e.class = cls
	e.slot = slot
	e.flags = flags
}

// Disable permanently turns off caching at this site, used once a site
// has been observed to see enough distinct classes that repopulating
// on every call would cost more than it saves (a megamorphic site).
func (e *Entry) Disable() {
	e.disabled = true
	e.class = nil
}

// Invalidate clears the cached observation without permanently
// disabling the site — used when the cached class itself becomes
// unreachable (see WeakTable below) rather than when the site has
// proven megamorphic.
func (e *Entry) Invalidate() {
	e.class = nil
}

// Disabled reports whether Disable has been called on this entry.
func (e *Entry) Disabled() bool { return e.disabled }

// WeakTable optionally tracks which live shape.Class pointers currently
// have at least one cache entry pointing at them, so a caller that owns
// class lifetime (the object graph's GC) can invalidate every entry
// referencing a class it is about to collect. It exists only when
// RuntimeConfig enables features.WeakInlineCaches — plain strong
// pointers (the default) need no such bookkeeping since the cache entry
// itself keeps the class alive, per the Open Question resolution
// recorded in DESIGN.md.
type WeakTable struct {
	byClass map[*shape.Class][]*Entry
}

// NewWeakTable returns an empty WeakTable. Callers should check
// features.Have(features.WeakInlineCaches) before bothering to
// construct and thread one through, since a disabled feature makes this
// bookkeeping pure overhead.
func NewWeakTable() *WeakTable {
	return &WeakTable{byClass: make(map[*shape.Class][]*Entry)}
}

// Track records that entry now references cls, if weak inline caches
// are enabled; a no-op otherwise so callers can call it unconditionally.
func (w *WeakTable) Track(cls *shape.Class, entry *Entry) {
	if !features.Have(features.WeakInlineCaches) || w == nil {
		return
	}
	w.byClass[cls] = append(w.byClass[cls], entry)
}

// InvalidateClass invalidates every tracked entry that currently
// references cls, called by the owning collaborator when cls is about
// to be collected.
func (w *WeakTable) InvalidateClass(cls *shape.Class) {
	if w == nil {
		return
	}
	for _, e := range w.byClass[cls] {
		e.Invalidate()
	}
	delete(w.byClass, cls)
}
