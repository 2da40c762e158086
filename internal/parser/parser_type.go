package parser

import (
	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/lexer"
)

var paramTypeNames = map[string]bool{
	"List": true, "Map": true, "Candidates": true, "Optional": true,
}

// parseTypeExpr parses a type expression, including the `+` type-merge
// operator, which is left-associative and binds looser than everything
// else in the type grammar.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	left := p.parseTypeAtom()
	for p.curTok.Type == lexer.PLUS {
		start := p.curTok
		p.next()
		right := p.parseTypeAtom()
		left = &ast.MergeType{SpanVal: ast.Merge(left.Span(), right.Span()), Left: left, Right: right}
		_ = start
	}
	return left
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	switch p.curTok.Type {
	case lexer.LBRACE:
		return p.parseRecordType()
	case lexer.IDENT:
		name := p.curTok.Literal
		start := p.curTok
		p.next()
		if paramTypeNames[name] && p.curTok.Type == lexer.LT {
			return p.parseParamType(start, name)
		}
		return &ast.NamedType{SpanVal: p.tokSpan(start), Name: name}
	default:
		p.errorf(p.tokSpan(p.curTok), "expected a type, got %q", p.curTok.Literal)
		tok := p.curTok
		p.next()
		return &ast.NamedType{SpanVal: p.tokSpan(tok), Name: "Nothing"}
	}
}

func (p *Parser) parseRecordType() ast.TypeExpr {
	start := p.curTok
	p.next() // consume '{'
	names := []string{}
	fields := map[string]ast.TypeExpr{}
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		if !p.expect(lexer.IDENT, "a field name") {
			break
		}
		fname := p.curTok.Literal
		p.next()
		if !p.expect(lexer.COLON, `":"`) {
			break
		}
		p.next()
		ft := p.parseTypeExpr()
		names = append(names, fname)
		fields[fname] = ft
		if p.curTok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE, `"}"`)
	end := p.curTok
	if p.curTok.Type == lexer.RBRACE {
		p.next()
	}
	_ = end
	return &ast.RecordType{SpanVal: p.span(start), Names: names, Fields: fields}
}

// parseParamType handles `List<T>`, `Map<K,V>`, `Candidates<T>`,
// `Optional<T>`. Note: LT/GT are reused from the comparison operators;
// this is unambiguous here because we only reach this path right after
// seeing one of the four known parameterized-type names.
func (p *Parser) parseParamType(start lexer.Token, name string) ast.TypeExpr {
	p.next() // consume '<'
	var args []ast.TypeExpr
	args = append(args, p.parseTypeExpr())
	for p.curTok.Type == lexer.COMMA {
		p.next()
		args = append(args, p.parseTypeExpr())
	}
	if !p.expect(lexer.GT, `">"`) {
		return &ast.ParamType{SpanVal: p.span(start), Name: name, Args: args}
	}
	p.next() // consume '>'
	return &ast.ParamType{SpanVal: p.span(start), Name: name, Args: args}
}
