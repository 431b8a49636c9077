// Package shape implements HiddenClass (spec.md §3.3, §4.3): immutable
// shape nodes forming a transition tree, shared across every JSObject with
// the same property history, plus the one-way conversion to dictionary
// mode for objects that outgrow shape sharing.
//
// The teacher has no structurally similar cache (wazero's closest analogue
// is its per-function wazeroir signature, a flat, non-transitioning
// value), so this package is grounded directly in spec.md §3.3/§4.3. The
// transition-table overflow cache is wired to
// github.com/hashicorp/golang-lru/v2, following the caching idiom used
// throughout ethereum-go-ethereum's trie/state layer, per SPEC_FULL.md §B.
package shape

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corevm/corevm/internal/strtab"
)

// PropertyFlags describes a property's attributes plus, overloaded here,
// whether the slot holds an accessor pair rather than a data value.
type PropertyFlags uint8

const (
	FlagWritable PropertyFlags = 1 << iota
	FlagEnumerable
	FlagConfigurable
	FlagAccessor
)

// Descriptor is the result of a successful find(): the property's slot
// index and flags, per spec.md §4.3's `find` operation table.
type Descriptor struct {
	Slot  uint32
	Flags PropertyFlags
}

// notFoundDescriptor is the Descriptor with Slot set to an out-of-range
// sentinel, returned alongside ok=false by Find.
var notFoundDescriptor = Descriptor{Slot: ^uint32(0)}

// DictionaryConversionThreshold is K from spec.md §3.3: "If a class
// accumulates more than K (≈128) own properties... the object converts to
// dictionary mode."
const DictionaryConversionThreshold = 128

// inlineTransitionCapacity is how many child transitions a Class keeps in
// its own small map before spilling the long tail into the shared LRU.
// Most shapes have a handful of children (the common property-addition
// orders for a given constructor); pathological workloads that mint many
// distinct shapes off one parent (e.g. objects built with attacker-chosen
// key orders) are the ones the LRU protects against.
const inlineTransitionCapacity = 8

const transitionOverflowCacheSize = 4096

type transitionKey struct {
	sym   strtab.SymbolId
	flags PropertyFlags
}

// Class is a single node of the HiddenClass transition tree. Two objects
// with the same *Class have the same set of own property names and
// identical slot numbering (spec.md §3.3 invariant).
type Class struct {
	parent     *Class
	addedSym   strtab.SymbolId
	addedFlags PropertyFlags
	slot       uint32 // slot index assigned to addedSym; meaningless on the root
	ownCount   uint32

	transitions    map[transitionKey]*Class
	overflow       *lru.Cache[transitionKey, *Class]
	isDictionary   bool
	dictionaryTag  uint64 // opaque tag passed to ToDictionary and returned by DictionaryTag
}

// NewRoot returns the empty root HiddenClass: no own properties, no
// parent. Every object literal and every `new`-constructed object not
// sharing a prototype's class starts here.
func NewRoot() *Class {
	return &Class{}
}

// OwnCount returns the number of own properties this shape describes.
func (c *Class) OwnCount() uint32 { return c.ownCount }

// IsDictionary reports whether this class is a dictionary-mode class
// (spec.md §3.3: "one-way... once entered, no further shape sharing
// occurs for that object").
func (c *Class) IsDictionary() bool { return c.isDictionary }

// Find walks the parent chain looking for sym, per spec.md §4.3's `find`
// operation. Shapes are small trees in practice (a handful of properties
// per constructor), so a linear walk up the parent chain is both what the
// spec describes ("its parent shape, the property it adds...") and fast
// enough; no flattened per-shape descriptor cache is maintained, which
// keeps AddProperty O(1) with no copying.
func (c *Class) Find(sym strtab.SymbolId) (Descriptor, bool) {
	for n := c; n != nil; n = n.parent {
		if n.slotValid() && n.addedSym == sym {
			return Descriptor{Slot: n.slot, Flags: n.addedFlags}, true
		}
	}
	return notFoundDescriptor, false
}

func (c *Class) slotValid() bool {
	// The root class has ownCount==0 and never added a property; every
	// non-root class's slot equals its parent's ownCount at the time of
	// transition, which is always < c.ownCount.
	return c.parent != nil
}

// AddProperty creates (or reuses, if already transitioned) a child class
// that adds sym with the given flags, per spec.md §4.3's `add_property`.
// It is an error to call this on a dictionary-mode class; dictionary-mode
// property addition mutates the DictPropertyMap directly instead
// (spec.md §4.3: "If an object in dictionary mode adds a property, no
// transition occurs").
func (c *Class) AddProperty(sym strtab.SymbolId, flags PropertyFlags) (*Class, uint32) {
	if c.isDictionary {
		panic("shape: AddProperty called on a dictionary-mode class")
	}
	if child, ok := c.childTransition(sym, flags); ok {
		return child, child.slot
	}
	child := &Class{
		parent:     c,
		addedSym:   sym,
		addedFlags: flags,
		slot:       c.ownCount,
		ownCount:   c.ownCount + 1,
	}
	c.setChildTransition(sym, flags, child)
	return child, child.slot
}

// Transition is an alias for AddProperty kept to mirror the operation
// table of spec.md §4.3 exactly ("transition(class, sym, flags)"); the
// teacher's add_property and transition share one implementation there
// too since both cases reduce to "reuse if cached, else create".
func (c *Class) Transition(sym strtab.SymbolId, flags PropertyFlags) (*Class, uint32) {
	return c.AddProperty(sym, flags)
}

func (c *Class) childTransition(sym strtab.SymbolId, flags PropertyFlags) (*Class, bool) {
	key := transitionKey{sym: sym, flags: flags}
	if c.transitions != nil {
		if child, ok := c.transitions[key]; ok {
			return child, true
		}
	}
	if c.overflow != nil {
		if child, ok := c.overflow.Get(key); ok {
			return child, true
		}
	}
	return nil, false
}

func (c *Class) setChildTransition(sym strtab.SymbolId, flags PropertyFlags, child *Class) {
	key := transitionKey{sym: sym, flags: flags}
	if c.transitions == nil {
		c.transitions = make(map[transitionKey]*Class, inlineTransitionCapacity)
	}
	if len(c.transitions) < inlineTransitionCapacity {
		c.transitions[key] = child
		return
	}
	if c.overflow == nil {
		// lru.New only errors on a non-positive size, which
		// transitionOverflowCacheSize never is.
		c.overflow, _ = lru.New[transitionKey, *Class](transitionOverflowCacheSize)
	}
	c.overflow.Add(key, child)
}

// ToDictionary converts c into a fresh dictionary-mode class, per
// spec.md §4.3's `to_dictionary`. The returned class shares no transition
// state with c — dictionary mode is one-way (spec.md §3.3 invariant).
// dictionaryTag is an opaque handle the caller (internal/object) uses to
// correlate this class with the DictPropertyMap it now owns; shape itself
// has no dependency on internal/dictmap, keeping the two packages
// independently testable.
func (c *Class) ToDictionary(dictionaryTag uint64) *Class {
	return &Class{
		isDictionary:  true,
		ownCount:      c.ownCount,
		dictionaryTag: dictionaryTag,
	}
}

// DictionaryTag returns the opaque tag passed to ToDictionary. Valid only
// when IsDictionary() is true.
func (c *Class) DictionaryTag() uint64 {
	if !c.isDictionary {
		panic("shape: DictionaryTag called on a non-dictionary class")
	}
	return c.dictionaryTag
}

// OwnProperty pairs a symbol with the descriptor a shape chain assigned to
// it, returned by OwnProperties for dictionary-mode conversion.
type OwnProperty struct {
	Sym        strtab.SymbolId
	Descriptor Descriptor
}

// OwnProperties enumerates every property named along the path from c up
// to the root, oldest-first. Used exactly once per object lifetime: when
// internal/object converts a shape-mode object to dictionary mode and
// needs to seed a DictPropertyMap with the object's full property set.
func (c *Class) OwnProperties() []OwnProperty {
	out := make([]OwnProperty, c.ownCount)
	for n := c; n.parent != nil; n = n.parent {
		out[n.slot] = OwnProperty{Sym: n.addedSym, Descriptor: Descriptor{Slot: n.slot, Flags: n.addedFlags}}
	}
	return out
}

// ShouldConvertToDictionary reports whether adding one more own property
// to c would cross the spec.md §3.3 threshold.
func ShouldConvertToDictionary(c *Class) bool {
	return ShouldConvertToDictionaryWithThreshold(c, DictionaryConversionThreshold)
}

// ShouldConvertToDictionaryWithThreshold is ShouldConvertToDictionary
// with K overridden, wiring RuntimeConfig.WithDictionaryThreshold through
// to the conversion check instead of always consulting the package
// default.
func ShouldConvertToDictionaryWithThreshold(c *Class, threshold uint32) bool {
	return c.ownCount+1 > threshold
}
