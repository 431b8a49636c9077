// Package dictmap implements DictPropertyMap (spec.md §3.4): the
// open-addressing hash map backing dictionary-mode objects, with a
// parallel descriptor array and a free-slot list so deletions don't waste
// storage.
//
// Grounded in spec.md §3.4 directly; the free-slot-list-over-a-dense-array
// technique is the same shape as the teacher's internal/descriptor.Table
// (a masked, page-based free-slot table used for WASI file descriptors) —
// only that package's _test.go survived retrieval, but its test fixtures
// (Test_sizeOfTable, insert/delete-then-reinsert-without-growth) describe
// exactly the "push deleted entries onto a free list, reuse on next
// insert" behavior this map needs, so the shape of its test suite is
// reused here as the basis for TestSlotReuseAfterDelete in dictmap_test.go.
package dictmap

import (
	"golang.org/x/exp/slices"

	"github.com/corevm/corevm/internal/shape"
	"github.com/corevm/corevm/internal/strtab"
)

const (
	sentinelEmpty   = strtab.InvalidSymbolId
	sentinelDeleted = strtab.SymbolId(^uint32(0))
)

const initialTableSize = 8 // must be a power of two for the quadratic probe mask

// slot is one open-addressing table entry: a symbol id (with the two
// sentinel values above) and an index into the parallel descriptor array.
type slot struct {
	sym        strtab.SymbolId
	descriptor int32
}

// Map is an open-addressing hash table with quadratic probing, used by
// every dictionary-mode JSObject. Distinct from shape.Class: a Map is
// mutated in place (spec.md §3.4), never shared between objects.
type Map struct {
	table       []slot
	descriptors []shape.Descriptor
	freeList    []int32 // free-slot list; LIFO reuse of descriptor slots
	size        int     // number of live (non-deleted) entries
	reuses      int     // count of inserts satisfied from freeList instead of growing descriptors
}

// New returns an empty DictPropertyMap.
func New() *Map {
	return &Map{table: make([]slot, initialTableSize)}
}

// Len returns the number of live entries.
func (m *Map) Len() int { return m.size }

// Find looks up sym, mirroring shape.Class.Find's signature so callers
// (internal/object) can treat shape-mode and dictionary-mode lookups
// uniformly.
func (m *Map) Find(sym strtab.SymbolId) (shape.Descriptor, bool) {
	idx, found := m.probe(sym)
	if !found {
		return shape.Descriptor{}, false
	}
	return m.descriptors[m.table[idx].descriptor], true
}

// Insert adds or overwrites sym's descriptor.
func (m *Map) Insert(sym strtab.SymbolId, d shape.Descriptor) {
	if idx, found := m.probe(sym); found {
		m.descriptors[m.table[idx].descriptor] = d
		return
	}
	if m.size*2 >= len(m.table) { // keep load factor <= 0.5 for short probe chains
		m.grow()
	}

	var descIdx int32
	if n := len(m.freeList); n > 0 {
		descIdx = m.freeList[n-1]
		m.freeList = m.freeList[:n-1]
		m.descriptors[descIdx] = d
		m.reuses++
	} else {
		descIdx = int32(len(m.descriptors))
		m.descriptors = append(m.descriptors, d)
	}

	m.insertSlot(sym, descIdx)
	m.size++
}

// Delete removes sym, pushing its descriptor slot onto the free list so a
// later insert reuses it without growing descriptor storage (spec.md §3.4,
// §8 "Dictionary slot reuse").
func (m *Map) Delete(sym strtab.SymbolId) bool {
	idx, found := m.probe(sym)
	if !found {
		return false
	}
	descIdx := m.table[idx].descriptor
	m.freeList = append(m.freeList, descIdx)
	m.table[idx].sym = sentinelDeleted
	m.table[idx].descriptor = 0
	m.size--
	return true
}

// DescriptorSlotsUsed returns the current size of the descriptor array —
// the quantity spec.md §8's "Dictionary slot reuse" invariant bounds as
// max(inserted_at_any_time) - deleted_free_list_reuses. It only grows when
// an Insert cannot be satisfied from the free list.
func (m *Map) DescriptorSlotsUsed() int {
	return len(m.descriptors)
}

// Reuses returns how many inserts were satisfied by popping the free list
// instead of growing the descriptor array.
func (m *Map) Reuses() int {
	return m.reuses
}

// Keys returns the live symbol ids in a stable, sorted order. Dictionary
// mode has no shape chain to supply a natural enumeration order, so a
// debugger or heap snapshot that needs one (rather than the arbitrary
// order a bucket scan would produce) calls this instead.
func (m *Map) Keys() []strtab.SymbolId {
	out := make([]strtab.SymbolId, 0, m.size)
	for _, e := range m.table {
		if e.sym != sentinelEmpty && e.sym != sentinelDeleted {
			out = append(out, e.sym)
		}
	}
	slices.Sort(out)
	return out
}

// probe runs the quadratic probe sequence for sym, returning the table
// index of a matching live entry.
func (m *Map) probe(sym strtab.SymbolId) (int, bool) {
	mask := uint64(len(m.table) - 1)
	h := hashSymbol(sym)
	for i := uint64(0); i < uint64(len(m.table)); i++ {
		idx := (h + (i+i*i)/2) & mask
		e := m.table[idx]
		if e.sym == sentinelEmpty {
			return 0, false
		}
		if e.sym == sym {
			return int(idx), true
		}
		// sentinelDeleted: keep probing past tombstones.
	}
	return 0, false
}

// insertSlot finds the first empty-or-deleted slot for sym via the same
// probe sequence and writes it.
func (m *Map) insertSlot(sym strtab.SymbolId, descIdx int32) int {
	mask := uint64(len(m.table) - 1)
	h := hashSymbol(sym)
	for i := uint64(0); i < uint64(len(m.table)); i++ {
		idx := (h + (i+i*i)/2) & mask
		e := m.table[idx]
		if e.sym == sentinelEmpty || e.sym == sentinelDeleted {
			m.table[idx] = slot{sym: sym, descriptor: descIdx}
			return int(idx)
		}
	}
	panic("dictmap: no free slot found; grow() invariant violated")
}

// grow doubles the table capacity and rehashes every live entry.
func (m *Map) grow() {
	old := m.table
	m.table = make([]slot, len(old)*2)
	for _, e := range old {
		if e.sym != sentinelEmpty && e.sym != sentinelDeleted {
			m.insertSlot(e.sym, e.descriptor)
		}
	}
}

func hashSymbol(sym strtab.SymbolId) uint64 {
	// SymbolIds are already densely-allocated small integers; a
	// multiplicative (Fibonacci) hash spreads them well across the table
	// without needing the interned string's own cached hash.
	x := uint64(sym)
	x *= 0x9E3779B97F4A7C15
	return x
}
