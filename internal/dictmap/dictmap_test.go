package dictmap

import (
	"fmt"
	"testing"

	"github.com/corevm/corevm/internal/shape"
	"github.com/corevm/corevm/internal/strtab"
	"github.com/stretchr/testify/require"
)

func TestInsertFindDelete(t *testing.T) {
	m := New()
	tbl := strtab.New()
	x := tbl.Intern("x")

	_, ok := m.Find(x)
	require.False(t, ok)

	m.Insert(x, shape.Descriptor{Slot: 1, Flags: shape.FlagWritable})
	d, ok := m.Find(x)
	require.True(t, ok)
	require.Equal(t, uint32(1), d.Slot)

	require.True(t, m.Delete(x))
	_, ok = m.Find(x)
	require.False(t, ok)
	require.False(t, m.Delete(x))
}

func TestDictionaryTransitionScenario(t *testing.T) {
	// Mirrors spec.md §8 scenario 4: 500 inserts then delete one key.
	tbl := strtab.New()
	m := New()
	for i := 0; i < 500; i++ {
		sym := tbl.Intern(fmt.Sprintf("k%d", i))
		m.Insert(sym, shape.Descriptor{Slot: uint32(i), Flags: shape.FlagWritable | shape.FlagEnumerable | shape.FlagConfigurable})
	}
	require.Equal(t, 500, m.Len())

	k250 := tbl.Intern("k250")
	require.True(t, m.Delete(k250))

	_, ok := m.Find(k250)
	require.False(t, ok)

	k249, _ := tbl.Lookup("k249")
	d249, ok := m.Find(k249)
	require.True(t, ok)
	require.Equal(t, uint32(249), d249.Slot)

	k251, _ := tbl.Lookup("k251")
	d251, ok := m.Find(k251)
	require.True(t, ok)
	require.Equal(t, uint32(251), d251.Slot)
}

func TestSlotReuseAfterDelete(t *testing.T) {
	tbl := strtab.New()
	m := New()
	a, b, c := tbl.Intern("a"), tbl.Intern("b"), tbl.Intern("c")

	m.Insert(a, shape.Descriptor{Slot: 0})
	m.Insert(b, shape.Descriptor{Slot: 1})
	before := m.DescriptorSlotsUsed()

	require.True(t, m.Delete(a))
	m.Insert(c, shape.Descriptor{Slot: 2})

	require.Equal(t, before, m.DescriptorSlotsUsed(), "reinsert after delete must reuse the freed slot, not grow")
	require.Equal(t, 1, m.Reuses())
}

func TestGrowthRehashesAllLiveEntries(t *testing.T) {
	tbl := strtab.New()
	m := New()
	var syms []strtab.SymbolId
	for i := 0; i < 64; i++ {
		s := tbl.Intern(fmt.Sprintf("key-%d", i))
		syms = append(syms, s)
		m.Insert(s, shape.Descriptor{Slot: uint32(i)})
	}
	for i, s := range syms {
		d, ok := m.Find(s)
		require.True(t, ok)
		require.Equal(t, uint32(i), d.Slot)
	}
}

func TestInsertOverwritesExistingDescriptor(t *testing.T) {
	m := New()
	tbl := strtab.New()
	x := tbl.Intern("x")
	m.Insert(x, shape.Descriptor{Slot: 0, Flags: shape.FlagWritable})
	m.Insert(x, shape.Descriptor{Slot: 0, Flags: shape.FlagEnumerable})

	d, ok := m.Find(x)
	require.True(t, ok)
	require.Equal(t, shape.FlagEnumerable, d.Flags)
	require.Equal(t, 1, m.Len())
}

func TestKeysExcludesDeletedAndIsSorted(t *testing.T) {
	tbl := strtab.New()
	m := New()
	a, b, c := tbl.Intern("a"), tbl.Intern("b"), tbl.Intern("c")
	m.Insert(c, shape.Descriptor{Slot: 0})
	m.Insert(a, shape.Descriptor{Slot: 1})
	m.Insert(b, shape.Descriptor{Slot: 2})
	m.Delete(b)

	keys := m.Keys()
	require.Len(t, keys, 2)
	require.True(t, keys[0] < keys[1], "Keys must return a sorted order")
	require.NotContains(t, keys, b)
}
