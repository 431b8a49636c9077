package value

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestSingletonsAreStable(t *testing.T) {
	require.Equal(t, KindUndefined, Undefined.Kind())
	require.Equal(t, KindNull, Null.Kind())
	require.True(t, True.AsBool())
	require.False(t, False.AsBool())
	require.True(t, Empty.IsEmpty())
}

func TestNumberRoundTrip(t *testing.T) {
	for _, f := range []float64{0, -0, 1, -1, 3.14159, math.Inf(1), math.Inf(-1), math.NaN()} {
		v := Number(f)
		require.True(t, v.IsNumber())
		if math.IsNaN(f) {
			require.True(t, math.IsNaN(v.AsNumber()))
		} else {
			require.Equal(t, f, v.AsNumber())
		}
	}
}

func TestPointerRoundTrip(t *testing.T) {
	x := 42
	p := unsafe.Pointer(&x)

	ov := ObjectPtr(p)
	require.True(t, ov.IsObject())
	require.True(t, ov.IsPointer())
	require.Equal(t, p, ov.AsPointer())

	sv := StringPtr(p)
	require.True(t, sv.IsString())
	require.Equal(t, p, sv.AsPointer())

	symv := SymbolPtr(p)
	require.True(t, symv.IsSymbol())
}

func TestAsPointerPanicsOnNonPointerKind(t *testing.T) {
	require.Panics(t, func() { Undefined.AsPointer() })
}

func TestAsBoolPanicsOnWrongKind(t *testing.T) {
	require.Panics(t, func() { Number(1).AsBool() })
}

func TestSameValueZero(t *testing.T) {
	require.True(t, SameValueZero(Undefined, Undefined))
	require.True(t, SameValueZero(Number(math.NaN()), Number(math.NaN())))
	require.False(t, SameValueZero(Number(0), Number(1)))
	require.False(t, SameValueZero(Undefined, Null))

	x := 1
	p := unsafe.Pointer(&x)
	require.True(t, SameValueZero(ObjectPtr(p), ObjectPtr(p)))

	y := 1
	p2 := unsafe.Pointer(&y)
	require.False(t, SameValueZero(ObjectPtr(p), ObjectPtr(p2)))
}

func TestNativePointerAndInt(t *testing.T) {
	x := 7
	nv := NativePointer(unsafe.Pointer(&x))
	require.Equal(t, KindNativePointer, nv.Kind())

	iv := NativeInt(-5)
	require.Equal(t, int64(-5), iv.AsNativeInt())
}
