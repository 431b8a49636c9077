// Package ast defines the syntax tree internal/parser builds (spec.md
// §7). Each node records its source Position for diagnostics and for
// internal/bytecode's DebugOffsets table.
package ast

import "github.com/corevm/corevm/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression-level node.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of a parsed source file or function body.
type Program struct {
	Body   []Statement
	Strict bool // true if a "use strict" directive propagated to this scope
}

func (p *Program) Pos() token.Position {
	if len(p.Body) == 0 {
		return token.Position{Line: 1, Column: 1}
	}
	return p.Body[0].Pos()
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Position   token.Position
	Expression Expression
}

func (s *ExpressionStatement) Pos() token.Position { return s.Position }
func (*ExpressionStatement) statementNode()        {}

// VariableStatement is var/let/const x = init, y, z = init2;
type VariableStatement struct {
	Position  token.Position
	Kind      token.Kind // Var, Let, or Const
	Declarations []VariableDeclarator
}

func (s *VariableStatement) Pos() token.Position { return s.Position }
func (*VariableStatement) statementNode()        {}

// VariableDeclarator is one name[=init] pair within a VariableStatement.
type VariableDeclarator struct {
	Name Identifier
	Init Expression // nil if no initializer
}

// BlockStatement is a { ... } sequence of statements.
type BlockStatement struct {
	Position token.Position
	Body     []Statement
}

func (s *BlockStatement) Pos() token.Position { return s.Position }
func (*BlockStatement) statementNode()        {}

// IfStatement is if (Test) Consequent [else Alternate].
type IfStatement struct {
	Position    token.Position
	Test        Expression
	Consequent  Statement
	Alternate   Statement // nil if no else clause
}

func (s *IfStatement) Pos() token.Position { return s.Position }
func (*IfStatement) statementNode()        {}

// WhileStatement is while (Test) Body.
type WhileStatement struct {
	Position token.Position
	Test     Expression
	Body     Statement
}

func (s *WhileStatement) Pos() token.Position { return s.Position }
func (*WhileStatement) statementNode()        {}

// ReturnStatement is return [Argument];
type ReturnStatement struct {
	Position token.Position
	Argument Expression // nil for a bare "return;"
}

func (s *ReturnStatement) Pos() token.Position { return s.Position }
func (*ReturnStatement) statementNode()        {}

// ThrowStatement is throw Argument;
type ThrowStatement struct {
	Position token.Position
	Argument Expression
}

func (s *ThrowStatement) Pos() token.Position { return s.Position }
func (*ThrowStatement) statementNode()        {}

// TryStatement is try Block [catch (Param) Handler] [finally Finalizer].
type TryStatement struct {
	Position  token.Position
	Block     *BlockStatement
	CatchParam *Identifier // nil if no catch clause
	Handler   *BlockStatement
	Finalizer *BlockStatement // nil if no finally clause
}

func (s *TryStatement) Pos() token.Position { return s.Position }
func (*TryStatement) statementNode()        {}

// LabeledStatement is Label: Body, per spec.md §7 "Labels vs
// expressions": an identifier-only expression statement immediately
// followed by ':' promotes to this node instead.
type LabeledStatement struct {
	Position token.Position
	Label    Identifier
	Body     Statement
}

func (s *LabeledStatement) Pos() token.Position { return s.Position }
func (*LabeledStatement) statementNode()        {}

// ForStatement is the classic for (Init; Test; Update) Body. Init may be
// a *VariableStatement or an expression, or nil for an omitted clause.
type ForStatement struct {
	Position token.Position
	Init     Node // *VariableStatement, Expression, or nil
	Test     Expression
	Update   Expression
	Body     Statement
}

func (s *ForStatement) Pos() token.Position { return s.Position }
func (*ForStatement) statementNode()        {}

// ForInStatement is for (Left in Right) Body. Left is a *VariableStatement
// (for "for (var k in o)") or an Expression (for "for (k in o)").
type ForInStatement struct {
	Position token.Position
	Left     Node
	Right    Expression
	Body     Statement
}

func (s *ForInStatement) Pos() token.Position { return s.Position }
func (*ForInStatement) statementNode()        {}

// FunctionDeclaration is function Name(Params) Body, as a statement.
type FunctionDeclaration struct {
	Position token.Position
	Name     Identifier
	Params   []Identifier
	Body     *Program
	Strict   bool

	// Source and SourceEnd bound the raw text of Body for two-pass lazy
	// parsing (spec.md §7 "lazy parsing"): PreParse records these byte
	// offsets without building a body AST; LazyParse re-scans just this
	// span on first call.
	Source, SourceEnd int
}

func (s *FunctionDeclaration) Pos() token.Position { return s.Position }
func (*FunctionDeclaration) statementNode()        {}

// --- Expressions ---

// Identifier is a bare name reference.
type Identifier struct {
	Position token.Position
	Name     string
}

func (i Identifier) Pos() token.Position { return i.Position }
func (Identifier) expressionNode()       {}

// NumberLiteral is a numeric literal.
type NumberLiteral struct {
	Position token.Position
	Value    float64
}

func (n *NumberLiteral) Pos() token.Position { return n.Position }
func (*NumberLiteral) expressionNode()       {}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Position token.Position
	Value    string
}

func (n *StringLiteral) Pos() token.Position { return n.Position }
func (*StringLiteral) expressionNode()       {}

// BooleanLiteral is true/false.
type BooleanLiteral struct {
	Position token.Position
	Value    bool
}

func (n *BooleanLiteral) Pos() token.Position { return n.Position }
func (*BooleanLiteral) expressionNode()       {}

// NullLiteral is the null keyword.
type NullLiteral struct{ Position token.Position }

func (n *NullLiteral) Pos() token.Position { return n.Position }
func (*NullLiteral) expressionNode()       {}

// UndefinedLiteral is the undefined identifier used as a literal.
type UndefinedLiteral struct{ Position token.Position }

func (n *UndefinedLiteral) Pos() token.Position { return n.Position }
func (*UndefinedLiteral) expressionNode()       {}

// ThisExpression is the this keyword.
type ThisExpression struct{ Position token.Position }

func (n *ThisExpression) Pos() token.Position { return n.Position }
func (*ThisExpression) expressionNode()       {}

// BinaryExpression is Left Operator Right.
type BinaryExpression struct {
	Position token.Position
	Operator token.Kind
	Left     Expression
	Right    Expression
}

func (n *BinaryExpression) Pos() token.Position { return n.Position }
func (*BinaryExpression) expressionNode()       {}

// UnaryExpression is Operator Argument (prefix only; spec.md's postfix
// ++/-- is modeled as UpdateExpression below).
type UnaryExpression struct {
	Position token.Position
	Operator token.Kind
	Argument Expression
}

func (n *UnaryExpression) Pos() token.Position { return n.Position }
func (*UnaryExpression) expressionNode()       {}

// UpdateExpression is ++x / x++ / --x / x--.
type UpdateExpression struct {
	Position token.Position
	Operator token.Kind
	Argument Expression
	Prefix   bool
}

func (n *UpdateExpression) Pos() token.Position { return n.Position }
func (*UpdateExpression) expressionNode()       {}

// AssignmentExpression is Left = Right. The parser builds it only for
// plain '=' (Operator is token.Assign); compound assignment operators
// such as '+=' are not recognized by the lexer or the parser.
type AssignmentExpression struct {
	Position token.Position
	Operator token.Kind
	Left     Expression
	Right    Expression
}

func (n *AssignmentExpression) Pos() token.Position { return n.Position }
func (*AssignmentExpression) expressionNode()       {}

// MemberExpression is Object.Property or Object[Property].
type MemberExpression struct {
	Position token.Position
	Object   Expression
	Property Expression // Identifier for dotted access, any Expression for computed
	Computed bool
}

func (n *MemberExpression) Pos() token.Position { return n.Position }
func (*MemberExpression) expressionNode()       {}

// CallExpression is Callee(Arguments...).
type CallExpression struct {
	Position  token.Position
	Callee    Expression
	Arguments []Expression
}

func (n *CallExpression) Pos() token.Position { return n.Position }
func (*CallExpression) expressionNode()       {}

// FunctionExpression is a function literal used as an expression. The
// parser builds it only from the `function` keyword, so Arrow is always
// false: the lexer scans "=>" as token.Arrow but no production consumes it.
type FunctionExpression struct {
	Position token.Position
	Name     *Identifier // nil for an anonymous function expression
	Params   []Identifier
	Body     *Program
	Arrow    bool
	Strict   bool
}

func (n *FunctionExpression) Pos() token.Position { return n.Position }
func (*FunctionExpression) expressionNode()       {}

// ObjectExpression is an object literal: { key: value, ... }.
type ObjectExpression struct {
	Position   token.Position
	Properties []ObjectProperty
}

func (n *ObjectExpression) Pos() token.Position { return n.Position }
func (*ObjectExpression) expressionNode()       {}

// ObjectProperty is one key: value entry of an ObjectExpression.
type ObjectProperty struct {
	Key      Expression // Identifier or StringLiteral
	Value    Expression
	Computed bool
}
