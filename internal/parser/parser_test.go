package parser

import (
	"testing"

	"github.com/corevm/corevm/internal/ast"
	"github.com/corevm/corevm/internal/token"
	"github.com/stretchr/testify/require"
)

func TestParseVariableStatement(t *testing.T) {
	prog, err := New("var x = 1 + 2;").ParseProgram()
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)

	s, ok := prog.Body[0].(*ast.VariableStatement)
	require.True(t, ok)
	require.Equal(t, token.Var, s.Kind)
	require.Len(t, s.Declarations, 1)
	require.Equal(t, "x", s.Declarations[0].Name.Name)

	bin, ok := s.Declarations[0].Init.(*ast.BinaryExpression)
	require.True(t, ok)
	require.Equal(t, token.Plus, bin.Operator)
}

func TestOperatorPrecedence(t *testing.T) {
	prog, err := New("1 + 2 * 3;").ParseProgram()
	require.NoError(t, err)
	es := prog.Body[0].(*ast.ExpressionStatement)
	bin := es.Expression.(*ast.BinaryExpression)
	require.Equal(t, token.Plus, bin.Operator)

	rhs, ok := bin.Right.(*ast.BinaryExpression)
	require.True(t, ok, "2 * 3 must bind tighter than +, making it the right operand")
	require.Equal(t, token.Star, rhs.Operator)
}

func TestASIInsertsSemicolonOnNewline(t *testing.T) {
	prog, err := New("var x = 1\nvar y = 2\n").ParseProgram()
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
}

func TestMissingSemicolonSameLineIsAnError(t *testing.T) {
	_, err := New("var x = 1 var y = 2").ParseProgram()
	require.Error(t, err)
}

func TestIfElseStatement(t *testing.T) {
	prog, err := New("if (x) { return 1; } else { return 2; }").ParseProgram()
	require.NoError(t, err)
	ifs := prog.Body[0].(*ast.IfStatement)
	require.NotNil(t, ifs.Alternate)
}

func TestCallExpressionWithArguments(t *testing.T) {
	prog, err := New("f(1, 2, x);").ParseProgram()
	require.NoError(t, err)
	es := prog.Body[0].(*ast.ExpressionStatement)
	call := es.Expression.(*ast.CallExpression)
	require.Len(t, call.Arguments, 3)
}

func TestMemberExpressionDottedAndComputed(t *testing.T) {
	prog, err := New("a.b[c];").ParseProgram()
	require.NoError(t, err)
	es := prog.Body[0].(*ast.ExpressionStatement)
	outer := es.Expression.(*ast.MemberExpression)
	require.True(t, outer.Computed)

	inner, ok := outer.Object.(*ast.MemberExpression)
	require.True(t, ok)
	require.False(t, inner.Computed)
}

func TestTryCatchFinally(t *testing.T) {
	prog, err := New("try { throw 1; } catch (e) { x = e; } finally { y = 1; }").ParseProgram()
	require.NoError(t, err)
	ts := prog.Body[0].(*ast.TryStatement)
	require.NotNil(t, ts.CatchParam)
	require.Equal(t, "e", ts.CatchParam.Name)
	require.NotNil(t, ts.Finalizer)
}

func TestFunctionDeclarationShortBodyParsedEagerly(t *testing.T) {
	prog, err := New("function f(a, b) { return a + b; }").ParseProgram()
	require.NoError(t, err)
	fd := prog.Body[0].(*ast.FunctionDeclaration)
	require.NotNil(t, fd.Body, "a body shorter than LazyParseThreshold must be parsed eagerly")
	require.Len(t, fd.Params, 2)
}

func TestFunctionDeclarationLongBodyDeferredAndLazyParsed(t *testing.T) {
	padding := ""
	for i := 0; i < 20; i++ {
		padding += "var pad = 1; "
	}
	src := "function f() { " + padding + "return 42; }"
	p := New(src)
	prog, err := p.ParseProgram()
	require.NoError(t, err)

	fd := prog.Body[0].(*ast.FunctionDeclaration)
	require.Nil(t, fd.Body, "a body longer than LazyParseThreshold must be deferred")
	require.Greater(t, fd.SourceEnd-fd.Source, LazyParseThreshold)

	body, err := LazyParse(fd, src)
	require.NoError(t, err)
	require.NotEmpty(t, body.Body)
}

func TestErrorListAccumulatesMultipleErrors(t *testing.T) {
	_, err := New("var ; var ;").ParseProgram()
	require.Error(t, err)
	list, ok := err.(ErrorList)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(list), 2)
}

func TestDeeplyNestedParensReportsErrorInsteadOfCrashing(t *testing.T) {
	src := ""
	for i := 0; i < maxRecursionDepth+100; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < maxRecursionDepth+100; i++ {
		src += ")"
	}
	src += ";"

	require.NotPanics(t, func() {
		_, _ = New(src).ParseProgram()
	})
}
