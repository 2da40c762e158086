package parser

import (
	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/lexer"
)

// parseMatch parses `match scrutinee { pattern -> body ... }`, with cases
// separated by newlines or by an optional `;`.
func (p *Parser) parseMatch() ast.Expression {
	start := p.curTok
	p.next() // consume 'match'
	scrutinee := p.parseExpression(LOWEST)
	p.expect(lexer.LBRACE, `"{"`)
	if p.curTok.Type == lexer.LBRACE {
		p.next()
	}

	var cases []ast.MatchCase
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		pat := p.parsePattern()
		p.expect(lexer.ARROW, `"->"`)
		if p.curTok.Type == lexer.ARROW {
			p.next()
		}
		body := p.parseExpression(LOWEST)
		cases = append(cases, ast.MatchCase{Pattern: pat, Body: body})
		if p.curTok.Type == lexer.SEMI {
			p.next()
		}
	}
	p.expect(lexer.RBRACE, `"}"`)
	end := p.curTok
	if p.curTok.Type == lexer.RBRACE {
		p.next()
	}
	return &ast.Match{SpanVal: ast.Merge(p.tokSpan(start), p.tokSpan(end)), Scrutinee: scrutinee, Cases: cases}
}

// parsePattern parses one match-arm pattern: a wildcard `_`, a
// type-test `x: Type`, or a record-structure `{f1, f2}`.
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curTok.Type {
	case lexer.UNDERSCORE:
		tok := p.curTok
		p.next()
		return &ast.WildcardPattern{SpanVal: p.tokSpan(tok)}
	case lexer.LBRACE:
		return p.parseRecordPattern()
	case lexer.IDENT:
		start := p.curTok
		binding := p.curTok.Literal
		p.next()
		if p.curTok.Type == lexer.COLON {
			p.next()
			if !p.expect(lexer.IDENT, "a type name") {
				return &ast.WildcardPattern{SpanVal: p.tokSpan(start)}
			}
			typeName := p.curTok.Literal
			end := p.curTok
			p.next()
			return &ast.TypeTestPattern{SpanVal: ast.Merge(p.tokSpan(start), p.tokSpan(end)), Binding: binding, Type: typeName}
		}
		// A bare identifier pattern binds the whole scrutinee under that
		// name; modeled as a single-field record pattern is wrong, so we
		// use a wildcard-with-binding via TypeTestPattern with an empty
		// type name meaning "no narrowing".
		return &ast.TypeTestPattern{SpanVal: p.tokSpan(start), Binding: binding, Type: ""}
	default:
		tok := p.curTok
		p.errorf(p.tokSpan(tok), "expected a pattern, got %q", tok.Literal)
		p.next()
		return &ast.WildcardPattern{SpanVal: p.tokSpan(tok)}
	}
}

func (p *Parser) parseRecordPattern() ast.Pattern {
	start := p.curTok
	p.next() // consume '{'
	var fields []string
	for p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		if !p.expect(lexer.IDENT, "a field name") {
			break
		}
		fields = append(fields, p.curTok.Literal)
		p.next()
		if p.curTok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	end := p.curTok
	p.expect(lexer.RBRACE, `"}"`)
	if p.curTok.Type == lexer.RBRACE {
		p.next()
	}
	return &ast.RecordPattern{SpanVal: ast.Merge(p.tokSpan(start), p.tokSpan(end)), Fields: fields}
}
