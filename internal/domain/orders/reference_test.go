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

	a, err := gen.Generate(991)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a, "ORD-"))
	assert.GreaterOrEqual(t, len(a), len("ORD-")+6)

	// deterministic per id, distinct across ids
	b, err := gen.Generate(991)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := gen.Generate(992)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// different salt, different reference space
	other, err := NewReferenceGenerator("other-salt")
	require.NoError(t, err)
	d, err := other.Generate(991)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}
