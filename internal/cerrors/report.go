// Package cerrors is the compiler's structured error taxonomy
// (spec.md §7): every CompileError surfaced to a collaborator is a
// *Report, carrying a category, code, message, optional span, optional
// source snippet, and a list of suggestion strings from the suggestion
// engine (internal/suggest).
package cerrors

import (
	"fmt"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
)

// Category is one of the four top-level error buckets of spec.md §7.
type Category string

const (
	Syntax    Category = "syntax"
	Reference Category = "reference"
	TypeCat   Category = "type"
	Runtime   Category = "runtime" // IR/DAG-phase internal inconsistencies
)

// Report is the canonical structured compile error.
type Report struct {
	Category    Category
	Code        string
	Phase       string
	Message     string
	Span        *ast.Span
	Snippet     string
	Suggestions []string
}

// Error implements the error interface.
func (r *Report) Error() string {
	if r.Span != nil {
		return fmt.Sprintf("%s [%s] %s: %s", r.Phase, r.Code, r.Span.String(), r.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", r.Phase, r.Code, r.Message)
}

// Warning is a non-fatal diagnostic: collected and returned alongside a
// successful CompilationOutput, never causing failure.
type Warning struct {
	Code    string
	Phase   string
	Message string
	Span    *ast.Span
}

func (w *Warning) String() string {
	if w.Span != nil {
		return fmt.Sprintf("%s [%s] %s: %s", w.Phase, w.Code, w.Span.String(), w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Phase, w.Code, w.Message)
}

// New builds a Report, attaching a source snippet extracted from src
// when span is non-nil.
func New(category Category, code, phase, message string, span *ast.Span, src string) *Report {
	r := &Report{Category: category, Code: code, Phase: phase, Message: message, Span: span}
	if span != nil {
		r.Snippet = snippet(src, *span)
	}
	return r
}

// WithSuggestions attaches suggestion strings and returns the receiver
// for chaining at the call site.
func (r *Report) WithSuggestions(s []string) *Report {
	r.Suggestions = s
	return r
}

func snippet(src string, span ast.Span) string {
	if src == "" || span.StartOffset < 0 || span.EndOffset > len(src) || span.StartOffset > span.EndOffset {
		return ""
	}
	lineStart := span.StartOffset
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := span.EndOffset
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}
	return src[lineStart:lineEnd]
}
