// Package ast defines the parse-time tree for the pipeline language:
// declarations, expressions, type expressions and patterns, each
// carrying a source Span. The tree is produced by the parser and
// consumed (then discarded) by the type checker.
package ast

import "fmt"

// Span is a half-open byte-offset range into the source text, plus the
// 1-based line/column of each endpoint for diagnostics.
type Span struct {
	StartOffset, EndOffset int
	StartLine, StartCol    int
	EndLine, EndCol        int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// Merge returns the smallest span covering both a and b.
func Merge(a, b Span) Span {
	out := a
	if b.EndOffset > a.EndOffset {
		out.EndOffset = b.EndOffset
		out.EndLine = b.EndLine
		out.EndCol = b.EndCol
	}
	if b.StartOffset < a.StartOffset {
		out.StartOffset = b.StartOffset
		out.StartLine = b.StartLine
		out.StartCol = b.StartCol
	}
	return out
}

// Node is implemented by every AST node.
type Node interface {
	Span() Span
}

// Pipeline is the root of a parsed program: its declarations in source
// order, plus the set of declared `out` names.
type Pipeline struct {
	Declarations []Declaration
	Outputs      []*OutputDecl
}

// ---- Declarations ----------------------------------------------------

// Declaration is implemented by every top-level statement.
type Declaration interface {
	Node
	declNode()
}

// TypeDef is `type T = <TypeExpr>`.
type TypeDef struct {
	SpanVal Span
	Name    string
	Type    TypeExpr
}

func (d *TypeDef) Span() Span { return d.SpanVal }
func (*TypeDef) declNode()    {}

// InputDecl is `in X: <TypeExpr>`.
type InputDecl struct {
	SpanVal Span
	Name    string
	Type    TypeExpr
}

func (d *InputDecl) Span() Span { return d.SpanVal }
func (*InputDecl) declNode()    {}

// Assignment is `name = expression`.
type Assignment struct {
	SpanVal Span
	Name    string
	Value   Expression
}

func (d *Assignment) Span() Span { return d.SpanVal }
func (*Assignment) declNode()    {}

// OutputDecl is `out VarName`.
type OutputDecl struct {
	SpanVal Span
	Name    string
}

func (d *OutputDecl) Span() Span { return d.SpanVal }
func (*OutputDecl) declNode()    {}

// UseDecl is `use Namespace`.
type UseDecl struct {
	SpanVal   Span
	Namespace string
}

func (d *UseDecl) Span() Span { return d.SpanVal }
func (*UseDecl) declNode()    {}

// ---- Type expressions --------------------------------------------------

// TypeExpr is implemented by every source-level type expression.
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType is a primitive or a reference to a `type` declaration.
type NamedType struct {
	SpanVal Span
	Name    string
}

func (t *NamedType) Span() Span { return t.SpanVal }
func (*NamedType) typeNode()    {}

// RecordType is `{f1: T1, f2: T2}`.
type RecordType struct {
	SpanVal Span
	Names   []string
	Fields  map[string]TypeExpr
}

func (t *RecordType) Span() Span { return t.SpanVal }
func (*RecordType) typeNode()    {}

// ParamType is a parameterized type: `List<T>`, `Map<K,V>`,
// `Candidates<T>`, `Optional<T>`.
type ParamType struct {
	SpanVal Span
	Name    string // "List" | "Map" | "Candidates" | "Optional"
	Args    []TypeExpr
}

func (t *ParamType) Span() Span { return t.SpanVal }
func (*ParamType) typeNode()    {}

// MergeType is `T1 + T2` at the type level.
type MergeType struct {
	SpanVal     Span
	Left, Right TypeExpr
}

func (t *MergeType) Span() Span { return t.SpanVal }
func (*MergeType) typeNode()    {}

// ---- Expressions --------------------------------------------------------

// Expression is implemented by every source-level expression.
type Expression interface {
	Node
	exprNode()
}

// VarRef is a bare identifier reference.
type VarRef struct {
	SpanVal Span
	Name    string
}

func (e *VarRef) Span() Span { return e.SpanVal }
func (*VarRef) exprNode()    {}

// Option is one `with`-clause entry: `name: value`. Value is itself an
// expression so duration/priority/window literals parse through the
// normal literal grammar (see internal/options for the normalization).
type Option struct {
	SpanVal Span
	Name    string
	Value   Expression
}

// FunctionCall is `name(arg1, arg2, ...) with opt: v, ...`.
type FunctionCall struct {
	SpanVal Span
	Name    string
	Args    []Expression
	Options []Option
}

func (e *FunctionCall) Span() Span { return e.SpanVal }
func (*FunctionCall) exprNode()    {}

// Merge is `a + b`.
type Merge struct {
	SpanVal     Span
	Left, Right Expression
}

func (e *Merge) Span() Span { return e.SpanVal }
func (*Merge) exprNode()    {}

// Projection is `a[f1, f2]`.
type Projection struct {
	SpanVal Span
	Source  Expression
	Fields  []string
}

func (e *Projection) Span() Span { return e.SpanVal }
func (*Projection) exprNode()    {}

// FieldAccess is `a.f`.
type FieldAccess struct {
	SpanVal Span
	Source  Expression
	Field   string
}

func (e *FieldAccess) Span() Span { return e.SpanVal }
func (*FieldAccess) exprNode()    {}

// Conditional is `if c then t else e`.
type Conditional struct {
	SpanVal               Span
	Cond, Then, Else      Expression
}

func (e *Conditional) Span() Span { return e.SpanVal }
func (*Conditional) exprNode()    {}

// BranchCase is one `cond -> expr` arm of a Branch.
type BranchCase struct {
	Cond Expression
	Body Expression
}

// Branch is the multi-way `if/elif/.../else` form.
type Branch struct {
	SpanVal   Span
	Cases     []BranchCase
	Otherwise Expression
}

func (e *Branch) Span() Span { return e.SpanVal }
func (*Branch) exprNode()    {}

// LiteralKind tags a Literal's Go value type.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitInt
	LitFloat
	LitBool
	// LitDuration is a `with`-clause duration literal (100ms, 5s, 2min,
	// 1h, 1d); Str holds the raw text, normalized by internal/options.
	LitDuration
	// LitList and LitRecord never come out of the parser: they tag a
	// Literal folded by internal/optimizer from a list/record
	// construction whose elements were themselves already literal.
	LitList
	LitRecord
)

// Literal is a string/int/float/boolean constant.
type Literal struct {
	SpanVal Span
	Kind    LiteralKind
	Str     string
	Int     int64
	Float   float64
	Bool    bool
}

func (e *Literal) Span() Span { return e.SpanVal }
func (*Literal) exprNode()    {}

// BoolOp tags And/Or.
type BoolOp int

const (
	OpAnd BoolOp = iota
	OpOr
)

// BoolBinary is `a and b` / `a or b`.
type BoolBinary struct {
	SpanVal     Span
	Op          BoolOp
	Left, Right Expression
}

func (e *BoolBinary) Span() Span { return e.SpanVal }
func (*BoolBinary) exprNode()    {}

// Not is `not expr`.
type Not struct {
	SpanVal Span
	Operand Expression
}

func (e *Not) Span() Span { return e.SpanVal }
func (*Not) exprNode()    {}

// CompareOp tags ==, !=, <, >, <=, >=.
type CompareOp int

const (
	CmpEq CompareOp = iota
	CmpNeq
	CmpLt
	CmpGt
	CmpLte
	CmpGte
)

// Compare is a binary comparison.
type Compare struct {
	SpanVal     Span
	Op          CompareOp
	Left, Right Expression
}

func (e *Compare) Span() Span { return e.SpanVal }
func (*Compare) exprNode()    {}

// Guard is `expr when cond`.
type Guard struct {
	SpanVal   Span
	Expr      Expression
	Condition Expression
}

func (e *Guard) Span() Span { return e.SpanVal }
func (*Guard) exprNode()    {}

// Coalesce is `a ?? b`.
type Coalesce struct {
	SpanVal     Span
	Left, Right Expression
}

func (e *Coalesce) Span() Span { return e.SpanVal }
func (*Coalesce) exprNode()    {}

// StringInterpolation is a string literal with embedded `${...}` expressions.
type StringInterpolation struct {
	SpanVal Span
	Parts   []string     // literal text, len(Parts) == len(Exprs)+1
	Exprs   []Expression // interpolated `${...}` expressions
}

func (e *StringInterpolation) Span() Span { return e.SpanVal }
func (*StringInterpolation) exprNode()    {}

// ListLiteral is `[e1, e2, ...]`.
type ListLiteral struct {
	SpanVal  Span
	Elements []Expression
}

func (e *ListLiteral) Span() Span { return e.SpanVal }
func (*ListLiteral) exprNode()    {}

// RecordLiteral is `{f: e, ...}`.
type RecordLiteral struct {
	SpanVal Span
	Names   []string
	Fields  map[string]Expression
}

func (e *RecordLiteral) Span() Span { return e.SpanVal }
func (*RecordLiteral) exprNode()    {}

// Lambda is `\p -> body`, valid only as an argument to a higher-order
// function.
type Lambda struct {
	SpanVal Span
	Params  []string
	Body    Expression
}

func (e *Lambda) Span() Span { return e.SpanVal }
func (*Lambda) exprNode()    {}

// MatchCase is one `pattern -> body` arm of a Match.
type MatchCase struct {
	Pattern Pattern
	Body    Expression
}

// Match is `match scrutinee { pattern -> body ; ... }`.
type Match struct {
	SpanVal   Span
	Scrutinee Expression
	Cases     []MatchCase
}

func (e *Match) Span() Span { return e.SpanVal }
func (*Match) exprNode()    {}

// ---- Patterns -----------------------------------------------------------

// Pattern is implemented by every match-arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// RecordPattern matches any map-shaped value whose keys are a superset
// of Fields; each name in Fields becomes a binding in the case body.
type RecordPattern struct {
	SpanVal Span
	Fields  []string
}

func (p *RecordPattern) Span() Span { return p.SpanVal }
func (*RecordPattern) patternNode() {}

// TypeTestPattern narrows the scrutinee to a named primitive type, e.g.
// `x: Int`.
type TypeTestPattern struct {
	SpanVal Span
	Binding string
	Type    string
}

func (p *TypeTestPattern) Span() Span { return p.SpanVal }
func (*TypeTestPattern) patternNode() {}

// WildcardPattern is `_`; matches anything, binds nothing.
type WildcardPattern struct {
	SpanVal Span
}

func (p *WildcardPattern) Span() Span { return p.SpanVal }
func (*WildcardPattern) patternNode() {}
