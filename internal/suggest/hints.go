package suggest

import "fmt"

// defaultMaxDistance and defaultMaxSuggestions match spec.md §4.9's
// `findSimilar(target, candidates, maxDistance=2, maxSuggestions=3)`.
const (
	defaultMaxDistance    = 2
	defaultMaxSuggestions = 3
)

// DidYouMean formats the standard "Did you mean 'X'?" hints for the
// given target against a candidate pool, one string per match.
func DidYouMean(target string, candidates []string) []string {
	matches := FindSimilar(target, candidates, defaultMaxDistance, defaultMaxSuggestions)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = fmt.Sprintf("Did you mean '%s'?", m.Candidate)
	}
	return out
}

// UndefinedVariableHints implements spec.md §4.9's UndefinedVariable
// policy: near matches, or a bare declaration hint if none are found.
func UndefinedVariableHints(name string, known []string) []string {
	hints := DidYouMean(name, known)
	if len(hints) == 0 {
		hints = append(hints, fmt.Sprintf("'%s' is not declared; add an `in %s: <Type>` or an assignment for it", name, name))
	}
	return hints
}

// UndefinedFunctionHints adds "Try adding: use {namespace}" entries for
// every namespace in namespacesWithMatch, on top of the ordinary
// near-match hints.
func UndefinedFunctionHints(name string, known []string, namespacesWithMatch []string) []string {
	hints := DidYouMean(name, known)
	for _, ns := range namespacesWithMatch {
		hints = append(hints, fmt.Sprintf("Try adding: use %s", ns))
	}
	return hints
}

// UndefinedTypeHints matches against built-ins union user-defined types.
func UndefinedTypeHints(name string, builtins, defined []string) []string {
	all := append(append([]string{}, builtins...), defined...)
	return DidYouMean(name, all)
}

// FieldHints is used for InvalidProjection / InvalidFieldAccess: near
// matches plus the full list of available fields.
func FieldHints(name string, available []string) []string {
	hints := DidYouMean(name, available)
	hints = append(hints, fmt.Sprintf("available fields: %v", available))
	return hints
}

// TypeMismatchHints suggests common conversions between primitive
// types, plus Optional wrap/unwrap hints.
func TypeMismatchHints(expected, actual string) []string {
	var hints []string
	numericOrBool := func(s string) bool { return s == "Int" || s == "Float" || s == "Boolean" }
	if actual == "String" && numericOrBool(expected) {
		hints = append(hints, fmt.Sprintf("convert the string to %s first", expected))
	}
	if numericOrBool(actual) && expected == "String" {
		hints = append(hints, "convert the value to a String, e.g. via string interpolation")
	}
	if len(expected) > len("Optional<") && expected[:len("Optional<")] == "Optional<" {
		hints = append(hints, "wrap the value in an optional-producing expression, e.g. a `when` guard")
	}
	if len(actual) > len("Optional<") && actual[:len("Optional<")] == "Optional<" {
		hints = append(hints, "unwrap the optional with `??` before using it here")
	}
	return hints
}

// NamespaceHints matches UndefinedNamespace: near matches + full list.
func NamespaceHints(name string, known []string) []string {
	hints := DidYouMean(name, known)
	hints = append(hints, fmt.Sprintf("known namespaces: %v", known))
	return hints
}

// AmbiguousFunctionHints enumerates up to the top 3 candidates.
func AmbiguousFunctionHints(candidates []string) []string {
	n := len(candidates)
	if n > 3 {
		n = 3
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("candidate: %s", candidates[i]))
	}
	return out
}
