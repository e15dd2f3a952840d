package jsona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceScalars(t *testing.T) {
	tests := []struct {
		src  string
		kind Kind
	}{
		{"null", KindNull},
		{"true", KindBool},
		{"false", KindBool},
		{"1", KindInteger},
		{"0x1F", KindIntegerHex},
		{"0o17", KindIntegerOct},
		{"0b101", KindIntegerBin},
		{"1.5", KindFloat},
		{`"hi"`, KindDoubleQuote},
		{"'hi'", KindSingleQuote},
		{"`hi`", KindBacktickQuote},
	}
	for _, tt := range tests {
		p := ParseSource(tt.src)
		require.Empty(t, p.Errors, "source %q", tt.src)
		scalar := p.Root.FirstChildNode(KindScalar)
		require.NotNil(t, scalar, "source %q", tt.src)
		tok, ok := firstValueToken(scalar)
		require.True(t, ok)
		assert.Equal(t, tt.kind, tok.Kind, "source %q", tt.src)
	}
}

func TestParseSourceObjectTrailingComma(t *testing.T) {
	p := ParseSource(`{a: 1, b: 2,}`)
	require.Empty(t, p.Errors)
	obj := p.Root.FirstChildNode(KindObject)
	require.NotNil(t, obj)
	assert.Len(t, obj.ChildNodes(), 2) // two PROPERTY nodes, comma/brace are tokens
}

func TestParseSourceArrayTrailingComma(t *testing.T) {
	p := ParseSource(`[1, 2, 3,]`)
	require.Empty(t, p.Errors)
	arr := p.Root.FirstChildNode(KindArray)
	require.NotNil(t, arr)
	assert.Len(t, arr.ChildNodes(), 3)
}

func TestParseSourceBareIdentifierKey(t *testing.T) {
	p := ParseSource(`{name: "bob"}`)
	require.Empty(t, p.Errors)
	dom := p.Dom()
	obj, ok := dom.(*ObjectNode)
	require.True(t, ok)
	require.Len(t, obj.Entries, 1)
	assert.Equal(t, "name", obj.Entries[0].Key.Value())
}

func TestParseSourceDuplicateKeysBothKept(t *testing.T) {
	p := ParseSource(`{a: 1, a: 2}`)
	dom := p.Dom()
	obj, ok := dom.(*ObjectNode)
	require.True(t, ok)
	require.Len(t, obj.Entries, 2)
	assert.Equal(t, float64(1), obj.Entries[0].Value.(*NumberNode).Value)
	assert.Equal(t, float64(2), obj.Entries[1].Value.(*NumberNode).Value)

	errs := dom.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, ErrConflictingKeys, errs[0].Kind)
}

func TestParseSourceAnnotation(t *testing.T) {
	p := ParseSource(`1 @required`)
	require.Empty(t, p.Errors)
	dom := p.Dom()
	val, ok := dom.Annotations().Get("required")
	require.True(t, ok)
	b, ok := val.(*BoolNode)
	require.True(t, ok)
	assert.True(t, b.Value)
}

func TestParseSourceAnnotationWithValue(t *testing.T) {
	p := ParseSource(`1 @schema({minimum: 0})`)
	require.Empty(t, p.Errors)
	dom := p.Dom()
	val, ok := dom.Annotations().Get("schema")
	require.True(t, ok)
	_, ok = val.(*ObjectNode)
	assert.True(t, ok)
}

func TestParseSourceNestedAnnotationFlagged(t *testing.T) {
	p := ParseSource(`1 @foo(@bar)`)
	found := false
	for _, e := range p.Errors {
		if e.Kind == ErrUnexpectedSyntax {
			found = true
		}
	}
	assert.True(t, found, "expected a nested-annotation syntax error")
}

func TestParseSourceNeverAborts(t *testing.T) {
	tests := []string{
		`{`,
		`[1, `,
		`{a: }`,
		`@@@`,
		``,
		`}}}`,
	}
	for _, src := range tests {
		p := ParseSource(src)
		require.NotNil(t, p.Root, "source %q", src)
		// Document always round-trips byte-for-byte via token reconstruction.
		assert.Equal(t, src, p.Root.Reconstruct(src), "source %q", src)
	}
}

func TestParseSourceTrailingGarbageReported(t *testing.T) {
	p := ParseSource(`1 2`)
	require.NotEmpty(t, p.Errors)
}

func TestParseDeduplicatesIdenticalConsecutiveErrors(t *testing.T) {
	// The stray `2` inside the annotation's parentheses is first reported as
	// a missing PARENTHESES_END and then, unconsumed, as unexpected trailing
	// content at the same range; error's dedup keeps only the first.
	p := ParseSource(`1 @x(1 2)`)
	require.NotEmpty(t, p.Errors)
	for i := 1; i < len(p.Errors); i++ {
		prev, cur := p.Errors[i-1], p.Errors[i]
		if prev.Kind == cur.Kind && prev.Start == cur.Start && prev.End == cur.End {
			t.Fatalf("adjacent duplicate error not deduped: %+v vs %+v", prev, cur)
		}
	}
}
