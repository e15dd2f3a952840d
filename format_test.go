package jsona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDefaultTrailingCommaAndNewline(t *testing.T) {
	src := "{\n  a: 1,\n  b: 2\n}"
	out, err := Format(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "{\n  a: 1,\n  b: 2,\n}\n", out)
}

func TestFormatInlineContainerStaysInline(t *testing.T) {
	out, err := Format(`{a: 1, b: 2}`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "{ a: 1, b: 2 }\n", out)
}

func TestFormatEmptyContainers(t *testing.T) {
	out, err := Format(`{}`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)

	out, err = Format(`[]`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestFormatNoTrailingCommaOption(t *testing.T) {
	opts := DefaultOptions()
	opts.TrailingComma = false
	out, err := Format("{\n  a: 1,\n  b: 2,\n}\n", opts)
	require.NoError(t, err)
	assert.Equal(t, "{\n  a: 1,\n  b: 2\n}\n", out)
}

func TestFormatNoTrailingNewline(t *testing.T) {
	opts := DefaultOptions()
	opts.TrailingNewline = false
	out, err := Format(`1`, opts)
	require.NoError(t, err)
	assert.Equal(t, "1", out)
}

func TestFormatCRLFNewlines(t *testing.T) {
	opts := DefaultOptions()
	opts.CRLF = true
	out, err := Format(`{a:1,b:2}`, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "\r\n")
}

func TestFormatPreservesComments(t *testing.T) {
	src := "{\n  // leading\n  a: 1,\n}\n"
	out, err := Format(src, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "// leading")
}

func TestFormatKeyQuotingDropsUnneededQuotes(t *testing.T) {
	opts := DefaultOptions()
	opts.FormatKey = true
	out, err := Format(`{"plain": 1}`, opts)
	require.NoError(t, err)
	assert.Contains(t, out, "plain: 1")
}

func TestFormatKeyQuotingKeepsQuotesWhenNeeded(t *testing.T) {
	opts := DefaultOptions()
	opts.FormatKey = true
	out, err := Format(`{"has space": 1}`, opts)
	require.NoError(t, err)
	assert.Contains(t, out, `"has space": 1`)
}

func TestFormatMalformedSourcePassesThroughTaintedRange(t *testing.T) {
	src := `{a: }`
	out, err := Format(src, DefaultOptions())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatSyntaxUsesExistingCST(t *testing.T) {
	src := `{a:1}`
	p := ParseSource(src)
	out := FormatSyntax(src, p.Root, DefaultOptions())
	assert.Equal(t, "{ a: 1 }\n", out)
}

func TestFormatWithPathScopesAppliesPatchToMatchedSubtree(t *testing.T) {
	src := "{a: {\n  b: 1,\n  c: 2,\n}, d: 3}\n"
	p := ParseSource(src)
	require.Empty(t, p.Errors)
	dom := p.Dom()

	noTrailing := false
	out, err := FormatWithPathScopes(src, dom, DefaultOptions(), map[string]OptionsPatch{
		".a": {TrailingComma: &noTrailing},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "b: 1,\n  c: 2\n}")
}

func TestFormatAnnotationAttachedSameLine(t *testing.T) {
	out, err := Format(`1 @required`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "1 @required\n", out)
}

func TestNormalizeKeyQuotingPicksShortestSafeQuote(t *testing.T) {
	// Source key literal is "has\"quote" (a double-quoted string whose value
	// contains a literal double quote) - re-quoting with ' needs no escaping
	// while keeping " would, so ' wins as the shortest safe encoding.
	got := normalizeKeyQuoting(`"has\"quote"`, KindDoubleQuote)
	assert.Equal(t, `'has"quote'`, got)
}

func TestOptionsWithPatchOverridesOnlySetFields(t *testing.T) {
	base := DefaultOptions()
	indent := "    "
	patched := base.withPatch(OptionsPatch{IndentString: &indent})
	assert.Equal(t, "    ", patched.IndentString)
	assert.Equal(t, base.TrailingComma, patched.TrailingComma)
}
