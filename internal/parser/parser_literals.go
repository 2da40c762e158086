package parser

import (
	"strings"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
)

// parseStringLiteral turns the raw STRING token into either a plain
// Literal (no `${...}` spans) or a StringInterpolation: the token's text
// is scanned for interpolation markers and each embedded expression is
// parsed by recursively invoking the parser over that substring.
func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.curTok
	raw := tok.Literal
	p.next()

	parts, exprs, ok := splitInterpolation(raw)
	if !ok || len(exprs) == 0 {
		return &ast.Literal{SpanVal: p.tokSpan(tok), Kind: ast.LitString, Str: raw}
	}

	parsedExprs := make([]ast.Expression, len(exprs))
	for i, src := range exprs {
		sub := NewFromSource(src)
		parsedExprs[i] = sub.parseExpression(LOWEST)
		for _, e := range sub.Errors() {
			// Re-anchor the nested parse error's span at the token.
			p.errorf(p.tokSpan(tok), "in string interpolation: %s", e.Msg)
		}
	}

	return &ast.StringInterpolation{SpanVal: p.tokSpan(tok), Parts: parts, Exprs: parsedExprs}
}

// splitInterpolation splits raw on `${...}` markers, respecting nested
// braces inside the expression text. Returns literal parts (len ==
// len(exprs)+1) and the raw expression source for each marker.
func splitInterpolation(raw string) (parts []string, exprs []string, ok bool) {
	var cur strings.Builder
	i := 0
	for i < len(raw) {
		if i+1 < len(raw) && raw[i] == '$' && raw[i+1] == '{' {
			parts = append(parts, cur.String())
			cur.Reset()
			depth := 1
			j := i + 2
			start := j
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						break
					}
				}
				if depth > 0 {
					j++
				}
			}
			if depth != 0 {
				return nil, nil, false
			}
			exprs = append(exprs, raw[start:j])
			i = j + 1
			continue
		}
		cur.WriteByte(raw[i])
		i++
	}
	parts = append(parts, cur.String())
	return parts, exprs, true
}
