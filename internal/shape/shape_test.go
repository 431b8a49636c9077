package shape

import (
	"testing"

	"github.com/corevm/corevm/internal/strtab"
	"github.com/stretchr/testify/require"
)

func TestShapeSharingAcrossTwoObjects(t *testing.T) {
	tbl := strtab.New()
	a := tbl.Intern("a")
	b := tbl.Intern("b")

	root := NewRoot()
	c1, slotA1 := root.AddProperty(a, FlagWritable|FlagEnumerable|FlagConfigurable)
	c1, slotB1 := c1.AddProperty(b, FlagWritable|FlagEnumerable|FlagConfigurable)

	c2, slotA2 := root.AddProperty(a, FlagWritable|FlagEnumerable|FlagConfigurable)
	c2, slotB2 := c2.AddProperty(b, FlagWritable|FlagEnumerable|FlagConfigurable)

	require.Same(t, c1, c2, "two objects built the same way must share a HiddenClass")
	require.Equal(t, slotA1, slotA2)
	require.Equal(t, slotB1, slotB2)
	require.Equal(t, uint32(2), c1.OwnCount())
}

func TestShapeMonotonicity(t *testing.T) {
	tbl := strtab.New()
	root := NewRoot()
	c1, _ := root.AddProperty(tbl.Intern("a"), FlagWritable)
	c2, _ := c1.AddProperty(tbl.Intern("b"), FlagWritable)

	_, aOk := c2.Find(tbl.Intern("a"))
	_, bOk := c2.Find(tbl.Intern("b"))
	require.True(t, aOk)
	require.True(t, bOk)

	_, aOkParent := c1.Find(tbl.Intern("b"))
	require.False(t, aOkParent, "child-only property must not be visible on the parent")
}

func TestFindReturnsSlotAndFlags(t *testing.T) {
	tbl := strtab.New()
	sym := tbl.Intern("x")
	root := NewRoot()
	child, slot := root.AddProperty(sym, FlagWritable|FlagEnumerable)

	d, ok := child.Find(sym)
	require.True(t, ok)
	require.Equal(t, slot, d.Slot)
	require.Equal(t, FlagWritable|FlagEnumerable, d.Flags)

	_, ok = child.Find(tbl.Intern("missing"))
	require.False(t, ok)
}

func TestDifferentPropertyOrderYieldsDifferentShapes(t *testing.T) {
	tbl := strtab.New()
	a, b := tbl.Intern("a"), tbl.Intern("b")
	root := NewRoot()

	ab, _ := root.AddProperty(a, FlagWritable)
	ab, _ = ab.AddProperty(b, FlagWritable)

	ba, _ := root.AddProperty(b, FlagWritable)
	ba, _ = ba.AddProperty(a, FlagWritable)

	require.NotSame(t, ab, ba)
}

func TestToDictionaryIsOneWay(t *testing.T) {
	tbl := strtab.New()
	root := NewRoot()
	c, _ := root.AddProperty(tbl.Intern("a"), FlagWritable)
	require.False(t, c.IsDictionary())

	dict := c.ToDictionary(99)
	require.True(t, dict.IsDictionary())
	require.Equal(t, uint64(99), dict.DictionaryTag())
	require.Equal(t, c.OwnCount(), dict.OwnCount())

	require.Panics(t, func() { dict.AddProperty(tbl.Intern("b"), FlagWritable) })
}

func TestShouldConvertToDictionaryThreshold(t *testing.T) {
	tbl := strtab.New()
	c := NewRoot()
	for i := 0; i < DictionaryConversionThreshold; i++ {
		require.False(t, ShouldConvertToDictionary(c))
		c, _ = c.AddProperty(tbl.Intern(string(rune('a'+i%26))+string(rune(i))), FlagWritable)
	}
	require.True(t, ShouldConvertToDictionary(c))
}

func TestOwnPropertiesEnumeratesFullChain(t *testing.T) {
	tbl := strtab.New()
	a, b := tbl.Intern("a"), tbl.Intern("b")
	root := NewRoot()
	c, _ := root.AddProperty(a, FlagWritable)
	c, _ = c.AddProperty(b, FlagEnumerable)

	props := c.OwnProperties()
	require.Len(t, props, 2)
	require.Equal(t, a, props[0].Sym)
	require.Equal(t, b, props[1].Sym)
	require.Equal(t, uint32(0), props[0].Descriptor.Slot)
	require.Equal(t, uint32(1), props[1].Descriptor.Slot)
}

func TestTransitionOverflowSpillsToLRU(t *testing.T) {
	tbl := strtab.New()
	root := NewRoot()
	// Mint more children off root than inlineTransitionCapacity to force
	// overflow into the LRU, then verify all remain reachable.
	var syms []strtab.SymbolId
	for i := 0; i < inlineTransitionCapacity+50; i++ {
		syms = append(syms, tbl.Intern(string(rune('A'+i))))
	}
	children := make([]*Class, len(syms))
	for i, s := range syms {
		children[i], _ = root.AddProperty(s, FlagWritable)
	}
	for i, s := range syms {
		again, _ := root.AddProperty(s, FlagWritable)
		require.Same(t, children[i], again, "transition must be reused even from the LRU overflow tail")
	}
}
