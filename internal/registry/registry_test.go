package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vledicfranco/constellation-compiler/internal/semtype"
)

func sig(name string) Signature {
	return Signature{
		Name:       name,
		Params:     []Param{{Name: "x", Type: semtype.SInt{}}},
		Returns:    semtype.SInt{},
		ModuleName: name,
	}
}

func TestRegisterLookupDeregister(t *testing.T) {
	r := New()
	r.Register(sig("Foo"))
	_, ok := r.Lookup("Foo")
	require.True(t, ok, "expected Foo to be registered")

	r.Deregister("Foo")
	_, ok = r.Lookup("Foo")
	assert.False(t, ok, "expected Foo to be gone")

	// deregistering an unknown name is a no-op, not an error
	r.Deregister("DoesNotExist")
}

func TestNamespaceRemovedWhenEmptied(t *testing.T) {
	r := New()
	s := sig("Bar")
	s.Namespace = "math"
	r.Register(s)

	assert.Contains(t, r.Namespaces(), "math")

	r.Deregister("math.Bar")
	assert.NotContains(t, r.Namespaces(), "math", "expected namespace math to be removed once emptied")
}

func TestConcurrentRegistration(t *testing.T) {
	r := New()
	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Register(sig(fmt.Sprintf("Fn%d", i)))
		}(i)
	}
	wg.Wait()

	all := r.All()
	assert.Len(t, all, n, "concurrent registration of n distinct signatures must lose none")
}

func TestLookupInNamespaces(t *testing.T) {
	r := New()
	a := sig("Transform")
	a.Namespace = "text"
	b := sig("Transform")
	b.Namespace = "image"
	r.Register(a)
	r.Register(b)

	matches := r.LookupInNamespaces("Transform", []string{"text"})
	require.Len(t, matches, 1)
	assert.Equal(t, "text", matches[0].Namespace)

	ambiguous := r.LookupInNamespaces("Transform", []string{"text", "image"})
	assert.Len(t, ambiguous, 2)
}
