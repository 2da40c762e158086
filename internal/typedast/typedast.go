// Package typedast defines the type checker's output: the AST
// annotated with a resolved semtype.Type (and original Span) on every
// node. Consumed by internal/ir and then discarded.
package typedast

import (
	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/registry"
	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

// TypedExpression is implemented by every typed expression node.
type TypedExpression interface {
	Span() ast.Span
	Type() semtype.Type
	typedExprNode()
}

type Base struct {
	SpanVal Span
	TypeVal semtype.Type
}

// Span is a thin alias to avoid importing ast in every literal; kept
// identical in shape to ast.Span.
type Span = ast.Span

func (b Base) Span() ast.Span    { return b.SpanVal }
func (b Base) Type() semtype.Type { return b.TypeVal }

// TVarRef is a resolved variable reference.
type TVarRef struct {
	Base
	Name string
}

func (*TVarRef) typedExprNode() {}

// TFunctionCall is a resolved module/function call.
type TFunctionCall struct {
	Base
	Name          string
	Signature     registry.Signature
	Args          []TypedExpression
	Options       []ast.Option // raw option expressions; normalized at IR build time
	TypedFallback TypedExpression
}

func (*TFunctionCall) typedExprNode() {}

// TMerge, TProjection, TFieldAccess mirror the AST forms, now typed.
type TMerge struct {
	Base
	Left, Right TypedExpression
}

func (*TMerge) typedExprNode() {}

type TProjection struct {
	Base
	Source TypedExpression
	Fields []string
}

func (*TProjection) typedExprNode() {}

type TFieldAccess struct {
	Base
	Source TypedExpression
	Field  string
}

func (*TFieldAccess) typedExprNode() {}

// TConditional is `if c then t else e`.
type TConditional struct {
	Base
	Cond, Then, Else TypedExpression
}

func (*TConditional) typedExprNode() {}

// TLiteral is a typed constant.
type TLiteral struct {
	Base
	Kind  ast.LiteralKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

func (*TLiteral) typedExprNode() {}

// TBoolBinary is `and`/`or`.
type TBoolBinary struct {
	Base
	Op          ast.BoolOp
	Left, Right TypedExpression
}

func (*TBoolBinary) typedExprNode() {}

// TNot is `not expr`.
type TNot struct {
	Base
	Operand TypedExpression
}

func (*TNot) typedExprNode() {}

// TCompare is a comparison operator; the resulting boolean is treated
// like BoolBinary for typing purposes (both operands must match).
type TCompare struct {
	Base
	Op          ast.CompareOp
	Left, Right TypedExpression
}

func (*TCompare) typedExprNode() {}

// TGuard is `expr when cond`; Type() is SOptional(expr's type).
type TGuard struct {
	Base
	Expr      TypedExpression
	Condition TypedExpression
}

func (*TGuard) typedExprNode() {}

// TCoalesce is `a ?? b`.
type TCoalesce struct {
	Base
	Left, Right TypedExpression
}

func (*TCoalesce) typedExprNode() {}

// TBranchCase is one arm of a TBranch.
type TBranchCase struct {
	Cond TypedExpression
	Body TypedExpression
}

// TBranch is the multi-way if/elif/else form.
type TBranch struct {
	Base
	Cases     []TBranchCase
	Otherwise TypedExpression
}

func (*TBranch) typedExprNode() {}

// TStringInterpolation is a typed interpolated string.
type TStringInterpolation struct {
	Base
	Parts []string
	Exprs []TypedExpression
}

func (*TStringInterpolation) typedExprNode() {}

// TListLiteral is a typed list literal.
type TListLiteral struct {
	Base
	Elements []TypedExpression
}

func (*TListLiteral) typedExprNode() {}

// TRecordLiteral is a typed record literal.
type TRecordLiteral struct {
	Base
	Names  []string
	Fields map[string]TypedExpression
}

func (*TRecordLiteral) typedExprNode() {}

// TLambda is valid only as an argument to a higher-order function call.
type TLambda struct {
	Base
	Params     []string
	ParamTypes []semtype.Type
	Body       TypedExpression
}

func (*TLambda) typedExprNode() {}

// TPattern is implemented by every typed match pattern.
type TPattern interface {
	Span() ast.Span
	typedPatternNode()
	// Bindings returns the names this pattern introduces in its body,
	// mapped to their narrowed types.
	Bindings() map[string]semtype.Type
}

type TRecordPattern struct {
	SpanVal  ast.Span
	Fields   []string
	BindingTypes map[string]semtype.Type
}

func (p *TRecordPattern) Span() ast.Span                    { return p.SpanVal }
func (*TRecordPattern) typedPatternNode()                   {}
func (p *TRecordPattern) Bindings() map[string]semtype.Type { return p.BindingTypes }

type TTypeTestPattern struct {
	SpanVal ast.Span
	Binding string
	Type_   semtype.Type
}

func (p *TTypeTestPattern) Span() ast.Span { return p.SpanVal }
func (*TTypeTestPattern) typedPatternNode() {}
func (p *TTypeTestPattern) Bindings() map[string]semtype.Type {
	if p.Binding == "" {
		return nil
	}
	return map[string]semtype.Type{p.Binding: p.Type_}
}

type TWildcardPattern struct {
	SpanVal ast.Span
}

func (p *TWildcardPattern) Span() ast.Span                    { return p.SpanVal }
func (*TWildcardPattern) typedPatternNode()                   {}
func (p *TWildcardPattern) Bindings() map[string]semtype.Type { return nil }

// TMatchCase is one arm of a TMatch.
type TMatchCase struct {
	Pattern TPattern
	Body    TypedExpression
}

// TMatch is `match scrutinee { ... }`.
type TMatch struct {
	Base
	Scrutinee TypedExpression
	Cases     []TMatchCase
}

func (*TMatch) typedExprNode() {}

// ---- Declarations --------------------------------------------------------

// TypedDeclaration is implemented by every typed top-level statement.
type TypedDeclaration interface {
	Span() ast.Span
	typedDeclNode()
}

type TTypeDef struct {
	SpanVal ast.Span
	Name    string
	Type    semtype.Type
}

func (d *TTypeDef) Span() ast.Span { return d.SpanVal }
func (*TTypeDef) typedDeclNode()   {}

type TInputDecl struct {
	SpanVal ast.Span
	Name    string
	Type    semtype.Type
}

func (d *TInputDecl) Span() ast.Span { return d.SpanVal }
func (*TInputDecl) typedDeclNode()   {}

type TAssignment struct {
	SpanVal ast.Span
	Name    string
	Value   TypedExpression
}

func (d *TAssignment) Span() ast.Span { return d.SpanVal }
func (*TAssignment) typedDeclNode()   {}

type TOutputDecl struct {
	SpanVal ast.Span
	Name    string
}

func (d *TOutputDecl) Span() ast.Span { return d.SpanVal }
func (*TOutputDecl) typedDeclNode()   {}

type TUseDecl struct {
	SpanVal   ast.Span
	Namespace string
}

func (d *TUseDecl) Span() ast.Span { return d.SpanVal }
func (*TUseDecl) typedDeclNode()   {}

// TypedPipeline is the type checker's full output.
type TypedPipeline struct {
	Declarations []TypedDeclaration
	Outputs      []string
	// VariableTypes records the resolved type of every bound variable,
	// keyed by name, for collaborators that want a flat view.
	VariableTypes map[string]semtype.Type
}

// NewBase is a constructor helper for embedding Base in node literals
// from outside this package (the checker lives in internal/typecheck).
func NewBase(span ast.Span, t semtype.Type) Base {
	return Base{SpanVal: span, TypeVal: t}
}
