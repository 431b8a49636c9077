package parser

import (
	"github.com/corevm/corevm/internal/ast"
	"github.com/corevm/corevm/internal/token"
)

// precedence gives each binary operator its binding strength for the
// precedence-climbing loop in parseBinary; higher binds tighter. Ported
// from the classic operator-precedence table used throughout the
// example pack's recursive-descent parsers, trimmed to the operators
// this grammar supports.
func precedence(k token.Kind) int {
	switch k {
	case token.LogicalOr:
		return 1
	case token.LogicalAnd:
		return 2
	case token.Equal, token.NotEqual, token.StrictEqual, token.StrictNotEqual:
		return 3
	case token.Less, token.Greater, token.LessEq, token.GreaterEq, token.In:
		return 4
	case token.Plus, token.Minus:
		return 5
	case token.Star, token.Slash, token.Percent:
		return 6
	default:
		return 0
	}
}

// parseExpression parses a full expression in an "in"-allowed context.
func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment(false)
}

// parseExpressionNoIn parses an expression with the noIn restriction in
// effect for its top-level binary chain (spec.md §7 "in operator / noIn
// context"): used for a for-statement's init clause, where a bare "in"
// must be read as introducing a ForInStatement rather than as the
// relational operator.
func (p *Parser) parseExpressionNoIn() ast.Expression {
	return p.parseAssignment(true)
}

func (p *Parser) parseAssignment(noIn bool) ast.Expression {
	left := p.parseBinary(0, noIn)
	if p.tok.Kind == token.Assign {
		pos := p.tok.Pos
		p.advance()
		right := p.parseAssignment(noIn)
		return &ast.AssignmentExpression{Position: pos, Operator: token.Assign, Left: left, Right: right}
	}
	return left
}

// parseBinary implements precedence climbing: it parses a unary
// operand, then repeatedly consumes an operator whose precedence is at
// least minPrec, recursing with that operator's precedence+1 to build
// left-associative chains (spec.md §7 "a fixed-size operator-precedence
// stack of at least 16 levels" — expressed here as recursion depth
// instead of an explicit stack, since Go's own call stack plays that
// role and maxRecursionDepth already guards it). When noIn is set, a
// bare "in" token is treated as not an operator at all, so parsing
// stops there instead of consuming it.
func (p *Parser) parseBinary(minPrec int, noIn bool) ast.Expression {
	done := p.trackRecursion(p.tok.Pos)
	defer done()

	left := p.parseUnary()
	for {
		if noIn && p.tok.Kind == token.In {
			return left
		}
		prec := precedence(p.tok.Kind)
		if prec == 0 || prec < minPrec {
			return left
		}
		op := p.tok.Kind
		pos := p.tok.Pos
		p.advance()
		right := p.parseBinary(prec+1, noIn)
		left = &ast.BinaryExpression{Position: pos, Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.tok.Kind {
	case token.Bang, token.Minus, token.Plus, token.Typeof:
		pos := p.tok.Pos
		op := p.tok.Kind
		p.advance()
		arg := p.parseUnary()
		return &ast.UnaryExpression{Position: pos, Operator: op, Argument: arg}
	case token.PlusPlus, token.MinusMinus:
		pos := p.tok.Pos
		op := p.tok.Kind
		p.advance()
		arg := p.parseUnary()
		return &ast.UpdateExpression{Position: pos, Operator: op, Argument: arg, Prefix: true}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parseCallOrMember()
	if (p.tok.Kind == token.PlusPlus || p.tok.Kind == token.MinusMinus) && !p.tok.NewlineBefore {
		pos := p.tok.Pos
		op := p.tok.Kind
		p.advance()
		return &ast.UpdateExpression{Position: pos, Operator: op, Argument: expr, Prefix: false}
	}
	return expr
}

func (p *Parser) parseCallOrMember() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.tok.Kind {
		case token.Dot:
			pos := p.tok.Pos
			p.advance()
			name := p.expect(token.Ident)
			expr = &ast.MemberExpression{
				Position: pos, Object: expr,
				Property: ast.Identifier{Position: name.Pos, Name: name.Literal},
			}
		case token.LBracket:
			pos := p.tok.Pos
			p.advance()
			prop := p.parseExpression()
			p.expect(token.RBracket)
			expr = &ast.MemberExpression{Position: pos, Object: expr, Property: prop, Computed: true}
		case token.LParen:
			pos := p.tok.Pos
			expr = &ast.CallExpression{Position: pos, Callee: expr, Arguments: p.parseArguments()}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(token.LParen)
	var args []ast.Expression
	for p.tok.Kind != token.RParen && p.tok.Kind != token.EOF {
		args = append(args, p.parseAssignment(false))
		if p.tok.Kind == token.Comma {
			p.advance()
		}
	}
	p.expect(token.RParen)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	t := p.tok
	switch t.Kind {
	case token.Number:
		p.advance()
		return &ast.NumberLiteral{Position: t.Pos, Value: parseNumberLiteral(t.Literal)}
	case token.String:
		p.advance()
		return &ast.StringLiteral{Position: t.Pos, Value: t.Literal}
	case token.True, token.False:
		p.advance()
		return &ast.BooleanLiteral{Position: t.Pos, Value: t.Kind == token.True}
	case token.Null:
		p.advance()
		return &ast.NullLiteral{Position: t.Pos}
	case token.Undefined:
		p.advance()
		return &ast.UndefinedLiteral{Position: t.Pos}
	case token.This:
		p.advance()
		return &ast.ThisExpression{Position: t.Pos}
	case token.Ident:
		p.advance()
		return ast.Identifier{Position: t.Pos, Name: t.Literal}
	case token.LParen:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RParen)
		return expr
	case token.Function:
		return p.parseFunctionExpression()
	case token.LBrace:
		return p.parseObjectExpression()
	default:
		p.errorf(t.Pos, "unexpected token %q in expression", t.Literal)
		p.advance()
		return &ast.UndefinedLiteral{Position: t.Pos}
	}
}

func (p *Parser) parseFunctionExpression() *ast.FunctionExpression {
	pos := p.tok.Pos
	p.advance()
	fe := &ast.FunctionExpression{Position: pos, Strict: p.strict}
	if p.tok.Kind == token.Ident {
		name := p.tok
		p.advance()
		id := ast.Identifier{Position: name.Pos, Name: name.Literal}
		fe.Name = &id
	}
	fe.Params = p.parseParams()
	fe.Body = p.parseFunctionBody()
	fe.Strict = fe.Body.Strict
	return fe
}

func (p *Parser) parseObjectExpression() *ast.ObjectExpression {
	pos := p.tok.Pos
	p.expect(token.LBrace)
	obj := &ast.ObjectExpression{Position: pos}
	for p.tok.Kind != token.RBrace && p.tok.Kind != token.EOF {
		prop := ast.ObjectProperty{}
		if p.tok.Kind == token.LBracket {
			p.advance()
			prop.Key = p.parseAssignment(false)
			prop.Computed = true
			p.expect(token.RBracket)
		} else if p.tok.Kind == token.String {
			prop.Key = &ast.StringLiteral{Position: p.tok.Pos, Value: p.tok.Literal}
			p.advance()
		} else {
			name := p.expect(token.Ident)
			id := ast.Identifier{Position: name.Pos, Name: name.Literal}
			prop.Key = id
		}
		p.expect(token.Colon)
		prop.Value = p.parseAssignment(false)
		obj.Properties = append(obj.Properties, prop)
		if p.tok.Kind == token.Comma {
			p.advance()
		}
	}
	p.expect(token.RBrace)
	return obj
}
