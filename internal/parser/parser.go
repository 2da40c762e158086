// Package parser implements a recursive-descent parser over the
// pipeline language's token stream, producing an ast.Pipeline or a
// list of ParseErrors (spec.md §4.3).
package parser

import (
	"fmt"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/lexer"
)

// ParseError is a syntax error with a source span, independent of the
// compiler-wide error taxonomy so this package has no upward dependency.
type ParseError struct {
	Msg  string
	Span ast.Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.String(), e.Msg)
}

// Parser walks a token stream with one token of lookahead.
type Parser struct {
	l *lexer.Lexer

	curTok  lexer.Token
	peekTok lexer.Token

	errors []*ParseError
}

// New returns a Parser ready to parse tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// NewFromSource is a convenience constructor over raw source text,
// normalizing it at the lexer boundary first (BOM stripping, Unicode
// NFC) so encoding variations never produce different token streams.
func NewFromSource(src string) *Parser {
	return New(lexer.NewFromBytes([]byte(src)))
}

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) span(start lexer.Token) ast.Span {
	return ast.Span{
		StartOffset: start.StartOffset, EndOffset: p.curTok.EndOffset,
		StartLine: start.Line, StartCol: start.Col,
		EndLine: p.curTok.Line, EndCol: p.curTok.Col,
	}
}

func (p *Parser) tokSpan(t lexer.Token) ast.Span {
	return ast.Span{
		StartOffset: t.StartOffset, EndOffset: t.EndOffset,
		StartLine: t.Line, StartCol: t.Col,
		EndLine: t.Line, EndCol: t.Col,
	}
}

func (p *Parser) errorf(span ast.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{Msg: fmt.Sprintf(format, args...), Span: span})
}

func (p *Parser) expect(tt lexer.TokenType, what string) bool {
	if p.curTok.Type != tt {
		p.errorf(p.tokSpan(p.curTok), "expected %s, got %q", what, p.curTok.Literal)
		return false
	}
	return true
}

// Errors returns accumulated syntax errors.
func (p *Parser) Errors() []*ParseError { return p.errors }

// Parse parses a whole program, accumulating as many errors as possible
// rather than stopping at the first one (spec.md §7 propagation policy).
func (p *Parser) Parse() (*ast.Pipeline, []*ParseError) {
	pipeline := &ast.Pipeline{}

	for p.curTok.Type != lexer.EOF {
		before := p.curTok
		decl := p.parseDeclaration()
		if decl != nil {
			pipeline.Declarations = append(pipeline.Declarations, decl)
			if out, ok := decl.(*ast.OutputDecl); ok {
				pipeline.Outputs = append(pipeline.Outputs, out)
			}
		}
		// Guard against an unconsumed token causing an infinite loop.
		if p.curTok == before {
			p.errorf(p.tokSpan(p.curTok), "unexpected token %q", p.curTok.Literal)
			p.next()
		}
	}

	return pipeline, p.errors
}

func (p *Parser) parseDeclaration() ast.Declaration {
	switch p.curTok.Type {
	case lexer.TYPE:
		return p.parseTypeDef()
	case lexer.IN:
		return p.parseInputDecl()
	case lexer.OUT:
		return p.parseOutputDecl()
	case lexer.USE:
		return p.parseUseDecl()
	case lexer.IDENT:
		return p.parseAssignment()
	default:
		p.errorf(p.tokSpan(p.curTok), "expected a declaration, got %q", p.curTok.Literal)
		p.next()
		return nil
	}
}

func (p *Parser) parseTypeDef() ast.Declaration {
	start := p.curTok
	p.next() // consume 'type'
	if !p.expect(lexer.IDENT, "a type name") {
		return nil
	}
	name := p.curTok.Literal
	p.next()
	if !p.expect(lexer.ASSIGN, `"="`) {
		return nil
	}
	p.next()
	te := p.parseTypeExpr()
	return &ast.TypeDef{SpanVal: p.span(start), Name: name, Type: te}
}

func (p *Parser) parseInputDecl() ast.Declaration {
	start := p.curTok
	p.next() // consume 'in'
	if !p.expect(lexer.IDENT, "an input name") {
		return nil
	}
	name := p.curTok.Literal
	p.next()
	if !p.expect(lexer.COLON, `":"`) {
		return nil
	}
	p.next()
	te := p.parseTypeExpr()
	return &ast.InputDecl{SpanVal: p.span(start), Name: name, Type: te}
}

func (p *Parser) parseOutputDecl() ast.Declaration {
	start := p.curTok
	p.next() // consume 'out'
	if !p.expect(lexer.IDENT, "an output variable name") {
		return nil
	}
	name := p.curTok.Literal
	p.next()
	return &ast.OutputDecl{SpanVal: p.span(start), Name: name}
}

func (p *Parser) parseUseDecl() ast.Declaration {
	start := p.curTok
	p.next() // consume 'use'
	if !p.expect(lexer.IDENT, "a namespace name") {
		return nil
	}
	name := p.curTok.Literal
	p.next()
	return &ast.UseDecl{SpanVal: p.span(start), Namespace: name}
}

func (p *Parser) parseAssignment() ast.Declaration {
	start := p.curTok
	name := p.curTok.Literal
	p.next()
	if !p.expect(lexer.ASSIGN, `"="`) {
		return nil
	}
	p.next()
	val := p.parseExpression(LOWEST)
	return &ast.Assignment{SpanVal: p.span(start), Name: name, Value: val}
}
