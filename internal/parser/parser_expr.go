package parser

import (
	"strconv"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/lexer"
)

// Precedence levels, loosest to tightest, per the policy recorded in
// SPEC_FULL.md §9 (the source spec leaves this ambiguous and asks
// implementers to pick and document a consistent order).
const (
	LOWEST int = iota
	GUARD      // when
	OR
	AND
	NOT
	EQUALITY // == !=
	COALESCE // ??
	COMPARE  // < > <= >=
	SUM      // +
)

func precedenceOf(tt lexer.TokenType) int {
	switch tt {
	case lexer.WHEN:
		return GUARD
	case lexer.OR:
		return OR
	case lexer.AND:
		return AND
	case lexer.EQ, lexer.NEQ:
		return EQUALITY
	case lexer.QUESTION2:
		return COALESCE
	case lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return COMPARE
	case lexer.PLUS:
		return SUM
	default:
		return LOWEST
	}
}

// parseExpression is a standard precedence-climbing parser: parse a
// prefix/primary term, then repeatedly absorb infix operators whose
// precedence exceeds minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()

	for {
		prec := precedenceOf(p.curTok.Type)
		if prec <= minPrec {
			break
		}
		left = p.parseInfix(left, prec)
	}
	return left
}

func (p *Parser) parseInfix(left ast.Expression, prec int) ast.Expression {
	op := p.curTok
	switch op.Type {
	case lexer.WHEN:
		p.next()
		cond := p.parseExpression(prec)
		return &ast.Guard{SpanVal: ast.Merge(left.Span(), cond.Span()), Expr: left, Condition: cond}
	case lexer.OR:
		p.next()
		right := p.parseExpression(prec)
		return &ast.BoolBinary{SpanVal: ast.Merge(left.Span(), right.Span()), Op: ast.OpOr, Left: left, Right: right}
	case lexer.AND:
		p.next()
		right := p.parseExpression(prec)
		return &ast.BoolBinary{SpanVal: ast.Merge(left.Span(), right.Span()), Op: ast.OpAnd, Left: left, Right: right}
	case lexer.EQ, lexer.NEQ:
		p.next()
		right := p.parseExpression(prec)
		cop := ast.CmpEq
		if op.Type == lexer.NEQ {
			cop = ast.CmpNeq
		}
		return &ast.Compare{SpanVal: ast.Merge(left.Span(), right.Span()), Op: cop, Left: left, Right: right}
	case lexer.QUESTION2:
		p.next()
		right := p.parseExpression(prec)
		return &ast.Coalesce{SpanVal: ast.Merge(left.Span(), right.Span()), Left: left, Right: right}
	case lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		p.next()
		right := p.parseExpression(prec)
		var cop ast.CompareOp
		switch op.Type {
		case lexer.LT:
			cop = ast.CmpLt
		case lexer.GT:
			cop = ast.CmpGt
		case lexer.LTE:
			cop = ast.CmpLte
		case lexer.GTE:
			cop = ast.CmpGte
		}
		return &ast.Compare{SpanVal: ast.Merge(left.Span(), right.Span()), Op: cop, Left: left, Right: right}
	case lexer.PLUS:
		p.next()
		right := p.parseExpression(prec)
		return &ast.Merge{SpanVal: ast.Merge(left.Span(), right.Span()), Left: left, Right: right}
	default:
		return left
	}
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curTok.Type {
	case lexer.NOT:
		start := p.curTok
		p.next()
		operand := p.parseExpression(NOT)
		return &ast.Not{SpanVal: ast.Merge(p.tokSpan(start), operand.Span()), Operand: operand}
	case lexer.IF:
		return p.parseConditionalOrBranch()
	case lexer.MATCH:
		return p.parseMatch()
	case lexer.BACKSLASH:
		return p.parseLambda()
	default:
		return p.parsePostfix(p.parseAtom())
	}
}

// parsePostfix absorbs field access (`.f`) and projection (`a[f1,f2]`)
// immediately following a primary expression, since these bind tighter
// than any binary operator.
func (p *Parser) parsePostfix(left ast.Expression) ast.Expression {
	for {
		switch p.curTok.Type {
		case lexer.DOT:
			p.next()
			if !p.expect(lexer.IDENT, "a field name") {
				return left
			}
			field := p.curTok.Literal
			fieldTok := p.curTok
			p.next()
			left = &ast.FieldAccess{SpanVal: ast.Merge(left.Span(), p.tokSpan(fieldTok)), Source: left, Field: field}
		case lexer.LBRACKET:
			start := p.curTok
			p.next()
			var fields []string
			for p.curTok.Type != lexer.RBRACKET && p.curTok.Type != lexer.EOF {
				if p.curTok.Type == lexer.IDENT {
					fields = append(fields, p.curTok.Literal)
					p.next()
				}
				if p.curTok.Type == lexer.COMMA {
					p.next()
					continue
				}
				break
			}
			end := p.curTok
			p.expect(lexer.RBRACKET, `"]"`)
			if p.curTok.Type == lexer.RBRACKET {
				p.next()
			}
			_ = start
			left = &ast.Projection{SpanVal: ast.Merge(left.Span(), p.tokSpan(end)), Source: left, Fields: fields}
		default:
			return left
		}
	}
}

func (p *Parser) parseAtom() ast.Expression {
	switch p.curTok.Type {
	case lexer.INT:
		tok := p.curTok
		v, _ := strconv.ParseInt(tok.Literal, 10, 64)
		p.next()
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitInt, Int: v}
	case lexer.FLOAT:
		tok := p.curTok
		v, _ := strconv.ParseFloat(tok.Literal, 64)
		p.next()
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitFloat, Float: v}
	case lexer.TRUE:
		tok := p.curTok
		p.next()
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitBool, Bool: true}
	case lexer.FALSE:
		tok := p.curTok
		p.next()
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitBool, Bool: false}
	case lexer.DURATION:
		tok := p.curTok
		p.next()
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitDuration, Str: tok.Literal}
	case lexer.STRING:
		return p.parseStringLiteral()
	case lexer.LBRACKET:
		return p.parseListLiteral()
	case lexer.LBRACE:
		return p.parseRecordLiteral()
	case lexer.LPAREN:
		p.next()
		inner := p.parseExpression(LOWEST)
		p.expect(lexer.RPAREN, `")"`)
		if p.curTok.Type == lexer.RPAREN {
			p.next()
		}
		return inner
	case lexer.IDENT:
		return p.parseIdentOrCall()
	default:
		tok := p.curTok
		p.errorf(p.tokSpan(tok), "unexpected token %q in expression", tok.Literal)
		p.next()
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitInt, Int: 0}
	}
}

func (p *Parser) parseIdentOrCall() ast.Expression {
	start := p.curTok
	name := p.curTok.Literal
	p.next()
	if p.curTok.Type != lexer.LPAREN {
		return &ast.VarRef{SpanVal: p.tokSpan(start), Name: name}
	}
	p.next() // consume '('
	var args []ast.Expression
	for p.curTok.Type != lexer.RPAREN && p.curTok.Type != lexer.EOF {
		if p.curTok.Type == lexer.BACKSLASH {
			args = append(args, p.parseLambda())
		} else {
			args = append(args, p.parseExpression(LOWEST))
		}
		if p.curTok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, `")"`)
	if p.curTok.Type == lexer.RPAREN {
		p.next()
	}
	var opts []ast.Option
	if p.curTok.Type == lexer.WITH {
		opts = p.parseWithClause()
	}
	end := p.curTok
	return &ast.FunctionCall{SpanVal: ast.Merge(p.tokSpan(start), p.tokSpan(end)), Name: name, Args: args, Options: opts}
}

func (p *Parser) parseWithClause() []ast.Option {
	p.next() // consume 'with'
	var opts []ast.Option
	for {
		if !p.expect(lexer.IDENT, "an option name") {
			break
		}
		name := p.curTok.Literal
		p.next()
		if !p.expect(lexer.COLON, `":"`) {
			break
		}
		p.next()
		val := p.parseExpression(SUM)
		opts = append(opts, ast.Option{SpanVal: val.Span(), Name: name, Value: val})
		if p.curTok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	return opts
}

func (p *Parser) parseListLiteral() ast.Expression {
	start := p.curTok
	p.next() // consume '['
	var elems []ast.Expression
	for p.curTok.Type != lexer.RBRACKET && p.curTok.Type != lexer.EOF {
		elems = append(elems, p.parseExpression(LOWEST))
		if p.curTok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET, `"]"`)
	end := p.curTok
	if p.curTok.Type == lexer.RBRACKET {
		p.next()
	}
	return &ast.ListLiteral{SpanVal: ast.Merge(p.tokSpan(start), p.tokSpan(end)), Elements: elems}
}

func (p *Parser) parseRecordLiteral() ast.Expression {
	start := p.curTok
	p.next() // consume '{'
	names := []string{}
	fields := map[string]ast.Expression{}
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
		fv := p.parseExpression(LOWEST)
		names = append(names, fname)
		fields[fname] = fv
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
	return &ast.RecordLiteral{SpanVal: ast.Merge(p.tokSpan(start), p.tokSpan(end)), Names: names, Fields: fields}
}

func (p *Parser) parseLambda() ast.Expression {
	start := p.curTok
	p.next() // consume '\'
	var params []string
	for p.curTok.Type == lexer.IDENT {
		params = append(params, p.curTok.Literal)
		p.next()
		if p.curTok.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.ARROW, `"->"`)
	if p.curTok.Type == lexer.ARROW {
		p.next()
	}
	body := p.parseExpression(LOWEST)
	return &ast.Lambda{SpanVal: ast.Merge(p.tokSpan(start), body.Span()), Params: params, Body: body}
}

func (p *Parser) parseConditionalOrBranch() ast.Expression {
	start := p.curTok
	p.next() // consume 'if'
	firstCond := p.parseExpression(LOWEST)
	p.expect(lexer.THEN, `"then"`)
	if p.curTok.Type == lexer.THEN {
		p.next()
	}
	firstBody := p.parseExpression(LOWEST)

	cases := []ast.BranchCase{{Cond: firstCond, Body: firstBody}}

	for p.curTok.Type == lexer.ELSE && p.peekTok.Type == lexer.IF {
		p.next() // consume 'else'
		p.next() // consume 'if'
		cond := p.parseExpression(LOWEST)
		p.expect(lexer.THEN, `"then"`)
		if p.curTok.Type == lexer.THEN {
			p.next()
		}
		body := p.parseExpression(LOWEST)
		cases = append(cases, ast.BranchCase{Cond: cond, Body: body})
	}

	p.expect(lexer.ELSE, `"else"`)
	if p.curTok.Type == lexer.ELSE {
		p.next()
	}
	otherwise := p.parseExpression(LOWEST)

	if len(cases) == 1 {
		c := cases[0]
		return &ast.Conditional{SpanVal: ast.Merge(p.tokSpan(start), otherwise.Span()), Cond: c.Cond, Then: c.Body, Else: otherwise}
	}
	return &ast.Branch{SpanVal: ast.Merge(p.tokSpan(start), otherwise.Span()), Cases: cases, Otherwise: otherwise}
}
