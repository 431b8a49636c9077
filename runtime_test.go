package corevm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corevm/corevm/internal/ast"
	"github.com/corevm/corevm/internal/bytecode"
	"github.com/corevm/corevm/internal/frame"
	"github.com/corevm/corevm/internal/gcroot"
	"github.com/corevm/corevm/internal/interp"
	"github.com/corevm/corevm/internal/object"
	"github.com/corevm/corevm/internal/shape"
	"github.com/corevm/corevm/internal/value"
)

func TestNewRuntimeDefaultConfig(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	require.NotNil(t, rt.Strings())
	require.Equal(t, frame.DefaultMaxDepth, rt.config.maxCallStackDepth)
}

func TestParseProgramReturnsAST(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	prog, err := rt.ParseProgram("var x = 1 + 2;")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	_, ok := prog.Body[0].(*ast.VariableStatement)
	require.True(t, ok)
}

func TestCallFunctionInvokesNativeFunction(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	double := NewNativeFunction("double", func(it *interp.Interpreter, this value.Value, args []value.Value) (value.Value, *interp.ThrownError) {
		return value.Number(args[0].AsNumber() * 2), nil
	})
	result, err := rt.CallFunction(double, value.Undefined, []value.Value{value.Number(21)})
	require.NoError(t, err)
	require.Equal(t, float64(42), result.AsNumber())
}

func TestCallFunctionRunsCompiledCodeBlock(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	code := bytecode.NewCodeBlock("addOne", 2, false)
	code.Constants = append(code.Constants, float64(1))
	code.Ops = []bytecode.Op{
		{Code: bytecode.OpLoadConst, A: 1, Operand: 0},
		{Code: bytecode.OpAdd, A: 0, B: 0, C: 1},
		{Code: bytecode.OpReturn, A: 0},
	}
	fn := &interp.Function{Name: "addOne", Code: code}

	result, err := rt.CallFunction(fn, value.Undefined, []value.Value{value.Number(41)})
	require.NoError(t, err)
	require.Equal(t, float64(42), result.AsNumber())
}

func TestNewObjectChainsToGivenPrototype(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	protoObj := rt.NewObjectPrototype()
	sym := rt.Strings().Intern("greeting")
	require.True(t, protoObj.DefineOwn(sym, value.Number(1), shape.FlagWritable|shape.FlagEnumerable|shape.FlagConfigurable))

	childVal := rt.NewObject(protoObj)
	owner, _, v, found := object.FromValue(childVal).Lookup(sym)
	require.True(t, found)
	require.Same(t, protoObj, owner)
	require.Equal(t, float64(1), v.AsNumber())
}

func TestRootValueRootsAcrossScope(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	obj := rt.NewObject(nil)
	rt.RootValue(obj, func(h gcroot.Handle) {
		require.Equal(t, obj, h.Get())
	})
}

func TestNewBoundFunctionPrependsBoundArgs(t *testing.T) {
	rt := NewRuntime(NewRuntimeConfig())
	sum := NewNativeFunction("sum", func(it *interp.Interpreter, this value.Value, args []value.Value) (value.Value, *interp.ThrownError) {
		total := 0.0
		for _, a := range args {
			total += a.AsNumber()
		}
		return value.Number(total), nil
	})
	bound := NewBoundFunction(sum, value.Undefined, []value.Value{value.Number(10), value.Number(20)})

	result, err := rt.CallFunction(bound, value.Undefined, []value.Value{value.Number(12)})
	require.NoError(t, err)
	require.Equal(t, float64(42), result.AsNumber())
}
