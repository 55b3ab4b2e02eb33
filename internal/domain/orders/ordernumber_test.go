package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceGenerator(t *testing.T) {
	gen, err := NewReferenceGenerator("test-salt")
	require.NoError(t, err)

	ref, err := gen.Generate(42)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "PSL-"))
	// prefix plus the configured minimum code length
	assert.GreaterOrEqual(t, len(ref), 4+8)

	// codes must not contain ambiguous characters
	for _, c := range strings.TrimPrefix(ref, "PSL-") {
		assert.NotContains(t, "0O1I", string(c))
	}
}

func TestReferenceGeneratorIsDeterministic(t *testing.T) {
	a, err := NewReferenceGenerator("same-salt")
	require.NoError(t, err)
	b, err := NewReferenceGenerator("same-salt")
	require.NoError(t, err)

	refA, err := a.Generate(1001)
	require.NoError(t, err)
	refB, err := b.Generate(1001)
	require.NoError(t, err)

	assert.Equal(t, refA, refB)
}

func TestReferenceGeneratorDistinctIDs(t *testing.T) {
	gen, err := NewReferenceGenerator("test-salt")
	require.NoError(t, err)

	seen := map[string]bool{}
	for id := int64(1); id <= 50; id++ {
		ref, err := gen.Generate(id)
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s for id %d", ref, id)
		seen[ref] = true
	}
}

func TestReferenceGeneratorSaltChangesCodes(t *testing.T) {
	a, err := NewReferenceGenerator("salt-a")
	require.NoError(t, err)
	b, err := NewReferenceGenerator("salt-b")
	require.NoError(t, err)

	refA, err := a.Generate(7)
	require.NoError(t, err)
	refB, err := b.Generate(7)
	require.NoError(t, err)

	assert.NotEqual(t, refA, refB)
}
