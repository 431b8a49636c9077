package object

import (
	"testing"
	"unsafe"

	"github.com/corevm/corevm/internal/shape"
	"github.com/corevm/corevm/internal/strtab"
	"github.com/corevm/corevm/internal/value"
	"github.com/stretchr/testify/require"
)

func dataFlags() shape.PropertyFlags {
	return shape.FlagWritable | shape.FlagEnumerable | shape.FlagConfigurable
}

func TestDefineOwnAndGetOwn(t *testing.T) {
	tbl := strtab.New()
	x := tbl.Intern("x")

	o := New(nil)
	ok := o.DefineOwn(x, value.Number(42), dataFlags())
	require.True(t, ok)

	d, v, found := o.GetOwn(x)
	require.True(t, found)
	require.Equal(t, float64(42), v.AsNumber())
	require.Equal(t, dataFlags(), d.Flags)
}

func TestDefineOwnOverwriteReusesSlot(t *testing.T) {
	tbl := strtab.New()
	x := tbl.Intern("x")

	o := New(nil)
	o.DefineOwn(x, value.Number(1), dataFlags())
	d1, _ := o.class.Find(x)

	o.DefineOwn(x, value.Number(2), dataFlags())
	d2, _ := o.class.Find(x)

	require.Equal(t, d1.Slot, d2.Slot)
	_, v, _ := o.GetOwn(x)
	require.Equal(t, float64(2), v.AsNumber())
}

// TestShapeSharingAtObjectLevel mirrors spec.md §8 scenario 3: two objects
// built by defining the same properties in the same order share a
// HiddenClass.
func TestShapeSharingAtObjectLevel(t *testing.T) {
	tbl := strtab.New()
	a, b := tbl.Intern("a"), tbl.Intern("b")

	o1 := New(nil)
	o1.DefineOwn(a, value.Number(1), dataFlags())
	o1.DefineOwn(b, value.Number(2), dataFlags())

	o2 := New(nil)
	o2.DefineOwn(a, value.Number(10), dataFlags())
	o2.DefineOwn(b, value.Number(20), dataFlags())

	require.Same(t, o1.Class(), o2.Class())
}

func TestLookupWalksPrototypeChain(t *testing.T) {
	tbl := strtab.New()
	greet := tbl.Intern("greet")

	proto := New(nil)
	proto.DefineOwn(greet, value.Number(7), dataFlags())

	child := New(proto)
	_, found := child.GetOwn(greet)
	require.False(t, found, "greet is not an own property of child")

	owner, _, v, found := child.Lookup(greet)
	require.True(t, found)
	require.Same(t, proto, owner)
	require.Equal(t, float64(7), v.AsNumber())
}

func TestLookupOwnPropertyShadowsPrototype(t *testing.T) {
	tbl := strtab.New()
	greet := tbl.Intern("greet")

	proto := New(nil)
	proto.DefineOwn(greet, value.Number(7), dataFlags())

	child := New(proto)
	child.DefineOwn(greet, value.Number(99), dataFlags())

	owner, _, v, found := child.Lookup(greet)
	require.True(t, found)
	require.Same(t, child, owner)
	require.Equal(t, float64(99), v.AsNumber())
}

func TestOverflowSlotsBeyondInlineCapacity(t *testing.T) {
	tbl := strtab.New()
	o := New(nil)
	for i := 0; i < InlineSlotCapacity+5; i++ {
		sym := tbl.Intern(string(rune('a' + i)))
		o.DefineOwn(sym, value.Number(float64(i)), dataFlags())
	}
	for i := 0; i < InlineSlotCapacity+5; i++ {
		sym, _ := tbl.Lookup(string(rune('a' + i)))
		_, v, found := o.GetOwn(sym)
		require.True(t, found)
		require.Equal(t, float64(i), v.AsNumber())
	}
}

// TestDictionaryConversionAtObjectLevel mirrors spec.md §8 scenario 4:
// exceeding the conversion threshold switches the object to dictionary
// mode, and a later delete does not disturb unrelated properties.
func TestDictionaryConversionAtObjectLevel(t *testing.T) {
	tbl := strtab.New()
	o := New(nil)
	var syms []strtab.SymbolId
	for i := 0; i < shape.DictionaryConversionThreshold+1; i++ {
		sym := tbl.Intern("k" + string(rune(i)))
		syms = append(syms, sym)
		o.DefineOwn(sym, value.Number(float64(i)), dataFlags())
	}
	require.True(t, o.Class().IsDictionary())

	require.True(t, o.Delete(syms[10]))
	_, _, found := o.GetOwn(syms[10])
	require.False(t, found)

	_, v, found := o.GetOwn(syms[11])
	require.True(t, found)
	require.Equal(t, float64(11), v.AsNumber())
}

func TestDeleteNonConfigurableFails(t *testing.T) {
	tbl := strtab.New()
	x := tbl.Intern("x")
	o := New(nil)
	o.DefineOwn(x, value.Number(1), shape.FlagWritable|shape.FlagEnumerable)

	require.False(t, o.Delete(x))
	_, _, found := o.GetOwn(x)
	require.True(t, found)
}

func TestDeleteTriggersDictionaryConversionForShapeModeObject(t *testing.T) {
	tbl := strtab.New()
	a, b := tbl.Intern("a"), tbl.Intern("b")
	o := New(nil)
	o.DefineOwn(a, value.Number(1), dataFlags())
	o.DefineOwn(b, value.Number(2), dataFlags())
	require.False(t, o.Class().IsDictionary())

	require.True(t, o.Delete(a))
	require.True(t, o.Class().IsDictionary())

	_, v, found := o.GetOwn(b)
	require.True(t, found)
	require.Equal(t, float64(2), v.AsNumber())
}

func TestPreventExtensionsRejectsNewProperties(t *testing.T) {
	tbl := strtab.New()
	x, y := tbl.Intern("x"), tbl.Intern("y")
	o := New(nil)
	o.DefineOwn(x, value.Number(1), dataFlags())
	o.PreventExtensions()

	require.False(t, o.IsExtensible())
	require.False(t, o.DefineOwn(y, value.Number(2), dataFlags()))
	require.True(t, o.DefineOwn(x, value.Number(99), dataFlags()), "overwriting an existing own property is still allowed")
}

func TestAsValueRoundTrip(t *testing.T) {
	o := New(nil)
	v := o.AsValue()
	require.True(t, v.IsObject())
	require.Same(t, o, FromValue(v))
}

func TestAccessorSlotStoresGetterSetterPair(t *testing.T) {
	tbl := strtab.New()
	sym := tbl.Intern("x")
	o := New(nil)

	getter := value.Number(1)
	setter := value.Number(2)
	acc := &Accessor{Getter: getter, Setter: setter}
	ok := o.DefineOwn(sym, value.NativePointer(unsafe.Pointer(acc)), shape.FlagEnumerable|shape.FlagConfigurable|shape.FlagAccessor)
	require.True(t, ok)

	d, v, found := o.GetOwn(sym)
	require.True(t, found)
	require.NotZero(t, d.Flags&shape.FlagAccessor)
	got := (*Accessor)(v.AsPointer())
	require.Equal(t, getter, got.Getter)
	require.Equal(t, setter, got.Setter)
}
