package jsona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryKeysRoundTripsDotted(t *testing.T) {
	qk, err := ParseQueryKeys(".user.age")
	require.NoError(t, err)
	assert.Equal(t, ".user.age", qk.Dotted())
	assert.Equal(t, 2, qk.Len())
}

func TestParseQueryKeysBareLeadingIdent(t *testing.T) {
	qk, err := ParseQueryKeys("user.age")
	require.NoError(t, err)
	assert.Equal(t, 2, qk.Len())
}

func TestParseQueryKeysEmpty(t *testing.T) {
	qk, err := ParseQueryKeys("")
	require.NoError(t, err)
	assert.True(t, qk.IsEmpty())

	qk2, err := ParseQueryKeys(".")
	require.NoError(t, err)
	assert.True(t, qk2.IsEmpty())
}

func TestParseQueryKeysIndexAndGlobIndex(t *testing.T) {
	qk, err := ParseQueryKeys(".items[0]")
	require.NoError(t, err)
	assert.Equal(t, 2, qk.Len())

	qk2, err := ParseQueryKeys(".items[*]")
	require.NoError(t, err)
	assert.Equal(t, 2, qk2.Len())
}

func TestParseQueryKeysAnnotation(t *testing.T) {
	qk, err := ParseQueryKeys("@summary")
	require.NoError(t, err)
	assert.Equal(t, 1, qk.Len())
}

func TestParseQueryKeysAnyRecursive(t *testing.T) {
	qk, err := ParseQueryKeys("**.name")
	require.NoError(t, err)
	assert.Equal(t, 2, qk.Len())
}

func TestParseQueryKeysUnterminatedBracket(t *testing.T) {
	_, err := ParseQueryKeys(".items[0")
	assert.Error(t, err)
}

func TestQueryKeysIsMatchExact(t *testing.T) {
	qk, err := ParseQueryKeys(".user.age")
	require.NoError(t, err)

	target := Keys{
		PropertyKeyOf(NewKey("user", KeyProperty, 0, 0)),
		PropertyKeyOf(NewKey("age", KeyProperty, 0, 0)),
	}
	assert.True(t, qk.IsMatch(target, false))

	longer := target.Child(PropertyKeyOf(NewKey("extra", KeyProperty, 0, 0)))
	assert.False(t, qk.IsMatch(longer, false))
	assert.True(t, qk.IsMatch(longer, true), "matchChildren should allow a strict descendant")
}

func TestQueryKeysIsMatchGlobKey(t *testing.T) {
	qk, err := ParseQueryKeys(".x_*")
	require.NoError(t, err)
	target := Keys{PropertyKeyOf(NewKey("x_foo", KeyProperty, 0, 0))}
	assert.True(t, qk.IsMatch(target, false))

	targetNo := Keys{PropertyKeyOf(NewKey("y_foo", KeyProperty, 0, 0))}
	assert.False(t, qk.IsMatch(targetNo, false))
}

func TestQueryKeysIsMatchGlobIndex(t *testing.T) {
	qk, err := ParseQueryKeys(".items[*]")
	require.NoError(t, err)
	target := Keys{
		PropertyKeyOf(NewKey("items", KeyProperty, 0, 0)),
		IndexOf(5),
	}
	assert.True(t, qk.IsMatch(target, false))
}

func TestQueryKeysIsMatchAnyRecursiveMiddle(t *testing.T) {
	qk, err := ParseQueryKeys("**.name")
	require.NoError(t, err)

	deep := Keys{
		PropertyKeyOf(NewKey("a", KeyProperty, 0, 0)),
		PropertyKeyOf(NewKey("b", KeyProperty, 0, 0)),
		PropertyKeyOf(NewKey("name", KeyProperty, 0, 0)),
	}
	assert.True(t, qk.IsMatch(deep, false))

	shallow := Keys{PropertyKeyOf(NewKey("name", KeyProperty, 0, 0))}
	assert.True(t, qk.IsMatch(shallow, false))

	noMatch := Keys{PropertyKeyOf(NewKey("other", KeyProperty, 0, 0))}
	assert.False(t, qk.IsMatch(noMatch, false))
}

func TestQueryKeysIsMatchBareAnyRecursive(t *testing.T) {
	qk, err := ParseQueryKeys("**")
	require.NoError(t, err)
	assert.True(t, qk.IsMatch(Keys{IndexOf(0), IndexOf(1)}, false))
	assert.True(t, qk.IsMatch(nil, false))
}

func TestGlobMatching(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		want    bool
	}{
		{"*", "anything", true},
		{"x_*", "x_foo", true},
		{"x_*", "y_foo", false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"exact", "exact", true},
		{"exact", "other", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, glob(tt.pattern, tt.target), "pattern %q target %q", tt.pattern, tt.target)
	}
}
