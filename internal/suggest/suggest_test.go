package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSimilarExcludesExactMatch(t *testing.T) {
	matches := FindSimilar("customer", []string{"customer", "custmer", "orders"}, 2, 3)
	for _, m := range matches {
		assert.NotEqual(t, "customer", m.Candidate, "did not expect exact match in results")
	}
}

func TestFindSimilarRespectsMaxDistance(t *testing.T) {
	matches := FindSimilar("abc", []string{"abcdefgh", "abd"}, 1, 5)
	for _, m := range matches {
		assert.LessOrEqualf(t, m.Distance, 1, "expected distance <= 1 for %q", m.Candidate)
	}
}

func TestFindSimilarSortedAscending(t *testing.T) {
	matches := FindSimilar("cat", []string{"cats", "cut", "cta"}, 2, 5)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqualf(t, matches[i].Distance, matches[i-1].Distance, "results not sorted ascending: %+v", matches)
	}
}

func TestUndefinedVariableHintsFallback(t *testing.T) {
	hints := UndefinedVariableHints("zzz_nope", []string{"customer", "orders"})
	require.Len(t, hints, 1, "expected a single fallback hint")
}

func TestDidYouMeanScenarioC(t *testing.T) {
	hints := DidYouMean("custmer", []string{"customer"})
	require.Len(t, hints, 1)
	assert.Equal(t, "Did you mean 'customer'?", hints[0])
}
