// Package options normalizes a `with`-clause's raw AST option values
// into the scalar internal/ir.ModuleCallOptions record the DAG builder
// and downstream runtime consult (spec.md §4.8, §6).
package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vledicfranco/constellation-compiler/internal/ast"
	"github.com/vledicfranco/constellation-compiler/internal/ir"
)

// priorityNames maps the fixed priority-level vocabulary to its
// normalized int (spec.md §4.8).
var priorityNames = map[string]int{
	"critical": 100, "high": 80, "normal": 50, "low": 20, "background": 0,
}

var durationUnitsMs = map[string]int64{
	"ms": 1, "s": 1000, "min": 60_000, "h": 3_600_000, "d": 86_400_000,
}

// Normalize converts raw with-clause options plus an already IR-built
// fallback node ID (built by internal/ir in the outer graph) into a
// ModuleCallOptions record. Unknown option names are rejected; this
// mirrors the normative table in spec.md §6.
func Normalize(raw []ast.Option, fallbackNodeID string) (*ir.ModuleCallOptions, error) {
	out := &ir.ModuleCallOptions{}
	for _, opt := range raw {
		if err := applyOption(out, opt); err != nil {
			return nil, err
		}
	}
	if fallbackNodeID != "" {
		out.FallbackNodeID = fallbackNodeID
	}
	return out, nil
}

func applyOption(out *ir.ModuleCallOptions, opt ast.Option) error {
	switch opt.Name {
	case "retry":
		n, err := intValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with retry: %w", err)
		}
		out.Retry = &n
	case "timeout":
		ms, err := durationMs(opt.Value)
		if err != nil {
			return fmt.Errorf("with timeout: %w", err)
		}
		out.TimeoutMs = &ms
	case "delay":
		ms, err := durationMs(opt.Value)
		if err != nil {
			return fmt.Errorf("with delay: %w", err)
		}
		out.DelayMs = &ms
	case "backoff":
		name, err := identValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with backoff: %w", err)
		}
		if name != "fixed" && name != "linear" && name != "exponential" {
			return fmt.Errorf("with backoff: unknown strategy %q", name)
		}
		out.Backoff = name
	case "fallback":
		// Resolved by the caller from the already-typed fallback
		// expression; nothing to parse here.
	case "cache":
		ms, err := durationMs(opt.Value)
		if err != nil {
			return fmt.Errorf("with cache: %w", err)
		}
		out.CacheMs = &ms
	case "cache_backend":
		s, err := stringValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with cache_backend: %w", err)
		}
		out.CacheBackend = s
	case "throttle":
		count, perMs, err := throttleValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with throttle: %w", err)
		}
		out.ThrottleCount = &count
		out.ThrottlePerMs = &perMs
	case "concurrency":
		n, err := intValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with concurrency: %w", err)
		}
		out.Concurrency = &n
	case "on_error":
		name, err := identValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with on_error: %w", err)
		}
		switch name {
		case "propagate", "skip", "log", "wrap":
		default:
			return fmt.Errorf("with on_error: unknown strategy %q", name)
		}
		out.OnError = name
	case "lazy":
		b, err := boolValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with lazy: %w", err)
		}
		out.Lazy = &b
	case "priority":
		p, err := priorityValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with priority: %w", err)
		}
		out.Priority = &p
	case "batch":
		n, err := intValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with batch: %w", err)
		}
		out.Batch = &n
	case "batch_timeout":
		ms, err := durationMs(opt.Value)
		if err != nil {
			return fmt.Errorf("with batch_timeout: %w", err)
		}
		out.BatchTimeoutMs = &ms
	case "window":
		w, err := windowValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with window: %w", err)
		}
		out.Window = w
	case "checkpoint":
		ms, err := durationMs(opt.Value)
		if err != nil {
			return fmt.Errorf("with checkpoint: %w", err)
		}
		out.CheckpointMs = &ms
	case "join":
		j, err := joinValue(opt.Value)
		if err != nil {
			return fmt.Errorf("with join: %w", err)
		}
		out.Join = j
	default:
		return fmt.Errorf("unknown with-clause option %q", opt.Name)
	}
	return nil
}

func intValue(e ast.Expression) (int, error) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return 0, fmt.Errorf("expected an integer literal")
	}
	return int(lit.Int), nil
}

func boolValue(e ast.Expression) (bool, error) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitBool {
		return false, fmt.Errorf("expected a boolean literal")
	}
	return lit.Bool, nil
}

func stringValue(e ast.Expression) (string, error) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return "", fmt.Errorf("expected a string literal")
	}
	return lit.Str, nil
}

// identValue accepts a bare identifier (parsed as a VarRef since it has
// no call parens), used for the fixed-vocabulary option values like
// `backoff: exponential` and `on_error: skip`.
func identValue(e ast.Expression) (string, error) {
	if v, ok := e.(*ast.VarRef); ok {
		return v.Name, nil
	}
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.LitString {
		return lit.Str, nil
	}
	return "", fmt.Errorf("expected a bare identifier")
}

func durationMs(e ast.Expression) (int64, error) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitDuration {
		return 0, fmt.Errorf("expected a duration literal (e.g. 30s)")
	}
	return parseDurationLiteral(lit.Str)
}

// parseDurationLiteral converts the lexer's raw duration text (e.g.
// "100ms", "5s", "2min", "1h", "1d") into whole milliseconds. Unit
// order matters: "min" and "ms" must be tried before the bare "s"/"m"
// prefixes they contain.
func parseDurationLiteral(raw string) (int64, error) {
	for _, unit := range []string{"ms", "min", "s", "h", "d"} {
		if strings.HasSuffix(raw, unit) {
			numPart := strings.TrimSuffix(raw, unit)
			n, err := strconv.ParseInt(numPart, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", raw)
			}
			return n * durationUnitsMs[unit], nil
		}
	}
	return 0, fmt.Errorf("invalid duration %q", raw)
}

func priorityValue(e ast.Expression) (int, error) {
	if lit, ok := e.(*ast.Literal); ok && lit.Kind == ast.LitInt {
		if lit.Int < 0 || lit.Int > 100 {
			return 0, fmt.Errorf("priority int must be 0-100, got %d", lit.Int)
		}
		return int(lit.Int), nil
	}
	if v, ok := e.(*ast.VarRef); ok {
		if p, ok := priorityNames[v.Name]; ok {
			return p, nil
		}
		return 0, fmt.Errorf("unknown priority name %q", v.Name)
	}
	return 0, fmt.Errorf("expected a priority name or an int 0-100")
}

// throttleValue accepts `throttle: "N/duration"`, e.g. "10/1s", the
// concrete syntax this grammar uses for the N-per-duration rate form
// described in spec.md §6 (the language has no bare division operator
// to spell `N/duration` unquoted).
func throttleValue(e ast.Expression) (int, int64, error) {
	s, err := stringValue(e)
	if err != nil {
		return 0, 0, fmt.Errorf("expected \"N/duration\", e.g. \"10/1s\"")
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"N/duration\", got %q", s)
	}
	count, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid throttle count in %q", s)
	}
	ms, err := parseDurationLiteral(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid throttle duration in %q", s)
	}
	return count, ms, nil
}

// windowValue accepts the window-spec call forms `tumbling(d)`,
// `sliding(size, slide)`, `count(n)` and serializes per spec.md §4.8.
func windowValue(e ast.Expression) (string, error) {
	call, ok := e.(*ast.FunctionCall)
	if !ok {
		return "", fmt.Errorf("expected tumbling(...)/sliding(...)/count(...)")
	}
	switch call.Name {
	case "tumbling":
		if len(call.Args) != 1 {
			return "", fmt.Errorf("tumbling(duration) takes 1 argument")
		}
		ms, err := durationMs(call.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("tumbling:%d", ms), nil
	case "sliding":
		if len(call.Args) != 2 {
			return "", fmt.Errorf("sliding(size, slide) takes 2 arguments")
		}
		size, err := durationMs(call.Args[0])
		if err != nil {
			return "", err
		}
		slide, err := durationMs(call.Args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("sliding:%d:%d", size, slide), nil
	case "count":
		if len(call.Args) != 1 {
			return "", fmt.Errorf("count(n) takes 1 argument")
		}
		n, err := intValue(call.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("count:%d", n), nil
	}
	return "", fmt.Errorf("unknown window kind %q", call.Name)
}

// joinValue accepts `combineLatest`, `zip` (bare identifiers) or
// `buffer(duration)` and serializes per spec.md §4.8.
func joinValue(e ast.Expression) (string, error) {
	if v, ok := e.(*ast.VarRef); ok {
		switch v.Name {
		case "combineLatest":
			return "combine-latest", nil
		case "zip":
			return "zip", nil
		}
		return "", fmt.Errorf("unknown join strategy %q", v.Name)
	}
	if call, ok := e.(*ast.FunctionCall); ok && call.Name == "buffer" {
		if len(call.Args) != 1 {
			return "", fmt.Errorf("buffer(duration) takes 1 argument")
		}
		ms, err := durationMs(call.Args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("buffer:%d", ms), nil
	}
	return "", fmt.Errorf("expected combineLatest, zip, or buffer(duration)")
}
