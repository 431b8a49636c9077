package strtab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIsStableAndDeduplicates(t *testing.T) {
	tbl := New()
	id1 := tbl.Intern("x")
	id2 := tbl.Intern("x")
	id3 := tbl.Intern("y")

	require.Equal(t, id1, id2)
	require.NotEqual(t, id1, id3)
	require.Equal(t, "x", tbl.String(id1))
	require.Equal(t, "y", tbl.String(id3))
	require.Equal(t, 2, tbl.Len())
}

func TestInvalidSymbolIdNeverIntern(t *testing.T) {
	tbl := New()
	require.NotEqual(t, InvalidSymbolId, tbl.Intern("a"))
}

func TestLookupWithoutInterning(t *testing.T) {
	tbl := New()
	_, ok := tbl.Lookup("never-interned")
	require.False(t, ok)

	id := tbl.Intern("seen")
	got, ok := tbl.Lookup("seen")
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestHashIsCachedAndStable(t *testing.T) {
	tbl := New()
	id := tbl.Intern("hello")
	h1 := tbl.Hash(id)
	h2 := tbl.Hash(id)
	require.Equal(t, h1, h2)
}

func TestStringPanicsOnInvalidId(t *testing.T) {
	tbl := New()
	require.Panics(t, func() { tbl.String(InvalidSymbolId) })
	require.Panics(t, func() { tbl.String(SymbolId(999)) })
}

func TestConcurrentIntern(t *testing.T) {
	tbl := New()
	var wg sync.WaitGroup
	ids := make([]SymbolId, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = tbl.Intern("shared")
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}
