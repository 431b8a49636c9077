package gcroot

import (
	"testing"

	"github.com/corevm/corevm/internal/value"
	"github.com/stretchr/testify/require"
)

func TestHandleRoundTrip(t *testing.T) {
	a := NewArena()
	s := NewScope(a)
	defer s.Close()

	h := s.NewHandle(value.Number(42))
	require.Equal(t, float64(42), h.Get().AsNumber())

	h.Set(value.Number(43))
	require.Equal(t, float64(43), h.Get().AsNumber())
}

func TestScopeCloseInvalidatesHandles(t *testing.T) {
	a := NewArena()
	s := NewScope(a)
	h := s.NewHandle(value.Undefined)
	s.Close()

	require.Panics(t, func() { h.Get() })
	require.Equal(t, 0, a.Len())
}

func TestNestedScopesUnwindToParentBaseline(t *testing.T) {
	a := NewArena()
	outer := NewScope(a)
	outer.NewHandle(value.Number(1))

	inner := NewScope(a)
	inner.NewHandle(value.Number(2))
	inner.NewHandle(value.Number(3))
	require.Equal(t, 3, a.Len())

	inner.Close()
	require.Equal(t, 1, a.Len())
	require.True(t, outer.AtBaseline())

	outer.Close()
	require.Equal(t, 0, a.Len())
}

func TestFlushToMarkerBoundsRootGrowth(t *testing.T) {
	a := NewArena()
	s := NewScope(a)
	defer s.Close()

	m := s.Marker()
	for i := 0; i < 1000; i++ {
		s.NewHandle(value.Number(float64(i)))
	}
	require.Equal(t, 1000, a.Len())

	s.FlushToMarker(m)
	require.True(t, s.AtBaseline())
}

func TestScanRootsVisitsEverySlot(t *testing.T) {
	a := NewArena()
	s := NewScope(a)
	defer s.Close()

	s.NewHandle(value.Number(1))
	s.NewHandle(value.Number(2))

	var seen []float64
	a.ScanRoots(func(v *value.Value) {
		seen = append(seen, v.AsNumber())
	})
	require.Equal(t, []float64{1, 2}, seen)
}

func TestAssertBaselineIsNoOpWithoutDebugTag(t *testing.T) {
	a := NewArena()
	s := NewScope(a)
	defer s.Close()
	s.NewHandle(value.Undefined)
	// Without the corevm_debug build tag this must not panic even though
	// the scope is not at baseline.
	AssertBaseline(s)
}
