// Package object implements JSObject (spec.md §3.3): property storage
// (inline + overflow), a prototype link, and a HiddenClass/DictPropertyMap
// pointer, plus the GetById/PutById slow-path algorithm of spec.md §4.1.
package object

import (
	"unsafe"

	"github.com/corevm/corevm/internal/cell"
	"github.com/corevm/corevm/internal/dictmap"
	"github.com/corevm/corevm/internal/shape"
	"github.com/corevm/corevm/internal/strtab"
	"github.com/corevm/corevm/internal/value"
)

// InlineSlotCapacity is the fixed number of property slots stored
// directly in the object cell before spilling to the overflow array
// (spec.md §3.3: "a small inline region (fixed capacity, e.g. 4–8 slots)").
const InlineSlotCapacity = 8

// Object is a JSObject: a HiddenClass/DictPropertyMap pointer, a
// prototype link, and property storage.
type Object struct {
	cell.Header

	class    *shape.Class
	dictMap  *dictmap.Map // non-nil iff class.IsDictionary()
	nextSlot uint32       // next free slot index once in dictionary mode

	proto *Object

	inline   [InlineSlotCapacity]value.Value
	overflow []value.Value

	// extensible is false once Object.PreventExtensions has been called;
	// new own properties are then rejected (strict-mode callers throw
	// TypeError, matching spec.md §4.1's primitive-write behavior).
	extensible bool

	// dictThreshold overrides shape.DictionaryConversionThreshold for
	// this object, wired from RuntimeConfig.WithDictionaryThreshold; 0
	// means "use the package default".
	dictThreshold uint32

	errInfo *ErrorInfo // non-nil once MarkAsError has tagged this object
}

var dictionaryTagCounter uint64

// New allocates an object with the empty root shape and the given
// prototype (nil means a null prototype).
func New(proto *Object) *Object {
	return NewWithThreshold(proto, 0)
}

// NewWithThreshold is New with the dictionary-mode conversion threshold
// overridden (0 keeps shape.DictionaryConversionThreshold).
func NewWithThreshold(proto *Object, dictThreshold uint32) *Object {
	o := &Object{
		Header:        cell.NewHeader(cell.KindObject, uint32(unsafe.Sizeof(Object{}))),
		class:         shape.NewRoot(),
		proto:         proto,
		extensible:    true,
		dictThreshold: dictThreshold,
	}
	for i := range o.inline {
		o.inline[i] = value.Empty
	}
	return o
}

// effectiveDictThreshold returns o's configured threshold, falling back
// to the package default.
func (o *Object) effectiveDictThreshold() uint32 {
	if o.dictThreshold == 0 {
		return shape.DictionaryConversionThreshold
	}
	return o.dictThreshold
}

// AsValue wraps o as a pointer-kind Value.
func (o *Object) AsValue() value.Value {
	return value.ObjectPtr(unsafe.Pointer(o))
}

// FromValue unwraps an object Value back to its *Object. Panics if v is
// not KindObject.
func FromValue(v value.Value) *Object {
	if !v.IsObject() {
		panic("object: FromValue on non-object Value kind " + v.Kind().String())
	}
	return (*Object)(v.AsPointer())
}

// Class returns the object's current HiddenClass (or dictionary-mode
// class).
func (o *Object) Class() *shape.Class { return o.class }

// Prototype returns the object's prototype link, or nil for a null
// prototype.
func (o *Object) Prototype() *Object { return o.proto }

// SetPrototype replaces the prototype link.
func (o *Object) SetPrototype(p *Object) { o.proto = p }

// ReadSlot reads raw storage by slot index, used both by the ordinary
// property-lookup path and directly by a PropertyCache fast-path hit
// (spec.md §8 "Cache soundness": "the value returned equals
// JSObject::read_slot(obj, s)").
func (o *Object) ReadSlot(slot uint32) value.Value {
	if slot < InlineSlotCapacity {
		return o.inline[slot]
	}
	idx := slot - InlineSlotCapacity
	if idx >= uint32(len(o.overflow)) {
		return value.Empty
	}
	return o.overflow[idx]
}

// WriteSlot writes raw storage by slot index, growing the overflow array
// if needed. Slot numbers never shift once assigned (spec.md §3.3
// invariant), so growth only ever appends.
func (o *Object) WriteSlot(slot uint32, v value.Value) {
	if slot < InlineSlotCapacity {
		o.inline[slot] = v
		return
	}
	idx := slot - InlineSlotCapacity
	for uint32(len(o.overflow)) <= idx {
		o.overflow = append(o.overflow, value.Empty)
	}
	o.overflow[idx] = v
}

// Accessor is what a slot holds when its descriptor's FlagAccessor bit is
// set: the slot's Value is a KindNativePointer wrapping one of these,
// rather than a data value directly. A single slot is still assigned per
// property regardless of whether it is a data property or an accessor
// pair, preserving spec.md §3.3's one-slot-per-property invariant.
type Accessor struct {
	Getter value.Value // Undefined if absent
	Setter value.Value // Undefined if absent
}

// AsValue wraps acc as the NativePointer-kind Value an accessor slot
// stores.
func (acc *Accessor) AsValue() value.Value {
	return value.NativePointer(unsafe.Pointer(acc))
}

// AccessorFromValue unwraps a slot Value previously produced by
// Accessor.AsValue. Callers must only do this when the slot's descriptor
// has shape.FlagAccessor set.
func AccessorFromValue(v value.Value) *Accessor {
	return (*Accessor)(v.AsPointer())
}

// GetOwn looks up sym among o's own properties only (no prototype walk),
// returning its descriptor and current storage value.
func (o *Object) GetOwn(sym strtab.SymbolId) (shape.Descriptor, value.Value, bool) {
	d, ok := o.findOwn(sym)
	if !ok {
		return shape.Descriptor{}, value.Undefined, false
	}
	return d, o.ReadSlot(d.Slot), true
}

func (o *Object) findOwn(sym strtab.SymbolId) (shape.Descriptor, bool) {
	if o.class.IsDictionary() {
		return o.dictMap.Find(sym)
	}
	return o.class.Find(sym)
}

// Lookup implements the prototype-chain read of spec.md §4.1's GetById
// slow path step 4: search o, then o.Prototype(), and so on. It returns
// the value, the object that actually owns the property (needed by
// accessor invocation to bind `this` to the receiver, not the owner), and
// whether anything was found.
func (o *Object) Lookup(sym strtab.SymbolId) (owner *Object, d shape.Descriptor, v value.Value, found bool) {
	for cur := o; cur != nil; cur = cur.proto {
		if dsc, ok := cur.findOwn(sym); ok {
			return cur, dsc, cur.ReadSlot(dsc.Slot), true
		}
	}
	return nil, shape.Descriptor{}, value.Undefined, false
}

// DefineOwn creates-or-overwrites an own data property. It performs the
// shape transition (or dictionary-mode insert) and the slot write.
// Reports false (and leaves the object unchanged) if the object is
// non-extensible and sym is not already present.
func (o *Object) DefineOwn(sym strtab.SymbolId, v value.Value, flags shape.PropertyFlags) bool {
	if o.class.IsDictionary() {
		return o.defineOwnDictionary(sym, v, flags)
	}

	if d, ok := o.class.Find(sym); ok {
		o.WriteSlot(d.Slot, v)
		return true
	}
	if !o.extensible {
		return false
	}
	if shape.ShouldConvertToDictionaryWithThreshold(o.class, o.effectiveDictThreshold()) {
		o.convertToDictionary()
		return o.defineOwnDictionary(sym, v, flags)
	}
	child, slot := o.class.AddProperty(sym, flags)
	o.class = child
	o.WriteSlot(slot, v)
	return true
}

func (o *Object) defineOwnDictionary(sym strtab.SymbolId, v value.Value, flags shape.PropertyFlags) bool {
	if d, ok := o.dictMap.Find(sym); ok {
		o.dictMap.Insert(sym, shape.Descriptor{Slot: d.Slot, Flags: flags})
		o.WriteSlot(d.Slot, v)
		return true
	}
	if !o.extensible {
		return false
	}
	slot := o.nextSlot
	o.nextSlot++
	o.dictMap.Insert(sym, shape.Descriptor{Slot: slot, Flags: flags})
	o.WriteSlot(slot, v)
	return true
}

// Delete removes an own property, converting the object to dictionary
// mode first if it is not already (spec.md §3.3: "a property is deleted"
// is one of the two dictionary-mode triggers). Returns false if sym was
// not an own property, or if it is non-configurable.
func (o *Object) Delete(sym strtab.SymbolId) bool {
	if !o.class.IsDictionary() {
		d, ok := o.class.Find(sym)
		if !ok {
			return false
		}
		if d.Flags&shape.FlagConfigurable == 0 {
			return false
		}
		o.convertToDictionary()
	}
	d, ok := o.dictMap.Find(sym)
	if ok && d.Flags&shape.FlagConfigurable == 0 {
		return false
	}
	return o.dictMap.Delete(sym)
}

// PreventExtensions stops further own-property addition; existing
// properties are unaffected.
func (o *Object) PreventExtensions() { o.extensible = false }

// IsExtensible reports whether new own properties may still be added.
func (o *Object) IsExtensible() bool { return o.extensible }

// convertToDictionary performs the one-way conversion of spec.md §3.3 /
// §4.3's to_dictionary: seed a fresh DictPropertyMap from the object's
// full own-property set (storage slots are untouched — numbering never
// shifts) and swap in a dictionary-mode class.
func (o *Object) convertToDictionary() {
	retired := o.class
	props := retired.OwnProperties()
	m := dictmap.New()
	for _, p := range props {
		m.Insert(p.Sym, p.Descriptor)
	}
	dictionaryTagCounter++
	o.class = retired.ToDictionary(dictionaryTagCounter)
	o.dictMap = m
	o.nextSlot = uint32(len(props))

	if OnClassRetired != nil {
		OnClassRetired(retired)
	}
}

// OnClassRetired, if non-nil, is called whenever convertToDictionary
// retires a shape-mode Class in favor of a dictionary-mode one — the
// only point in this package where a HiddenClass an inline cache might
// reference becomes permanently unreachable from any object. A package
// level hook rather than a constructor parameter because Class values
// flow freely between objects sharing shape state; internal/interp
// wires this to propcache.WeakTable.InvalidateClass when weak inline
// caches are enabled (same package-level-hook style as
// internal/features's process-wide flag list).
var OnClassRetired func(cls *shape.Class)

// ErrorFrame is one captured call-frame line for an error's stack
// trace, recorded at throw time from internal/frame.Stack.Frames.
type ErrorFrame struct {
	FunctionName string
	Offset       uint32
}

// ErrorInfo is the extra bookkeeping an object tagged MarkAsError
// carries: the frames captured at throw time, and the lazily-rendered
// multi-line string built from them on first StackString call (spec.md
// §6.3 "Error objects... a lazily-rendered stack trace": captured once,
// formatted once, cached after that).
type ErrorInfo struct {
	frames   []ErrorFrame
	rendered string
	built    bool
}

// MarkAsError tags o as an Error-shaped object and records its captured
// call stack. Called once, at construction/throw time.
func (o *Object) MarkAsError(frames []ErrorFrame) {
	o.errInfo = &ErrorInfo{frames: frames}
}

// IsError reports whether MarkAsError has tagged this object.
func (o *Object) IsError() bool { return o.errInfo != nil }

// HasRecordedStack reports whether this error has any captured frames
// to render (an error thrown with an empty call stack legitimately has
// none).
func (o *Object) HasRecordedStack() bool {
	return o.errInfo != nil && len(o.errInfo.frames) > 0
}

// StackString renders o's captured frames into a multi-line trace the
// first time it is called, then returns the cached string on every
// subsequent call — the "lazy rendering" spec.md §6.3 calls for, so a
// caught-and-ignored error never pays the string-building cost.
func (o *Object) StackString() string {
	if o.errInfo == nil {
		return ""
	}
	if o.errInfo.built {
		return o.errInfo.rendered
	}
	var b []byte
	for _, f := range o.errInfo.frames {
		b = append(b, "    at "...)
		b = append(b, f.FunctionName...)
		b = append(b, '\n')
	}
	o.errInfo.rendered = string(b)
	o.errInfo.built = true
	return o.errInfo.rendered
}
