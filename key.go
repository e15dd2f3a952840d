package jsona

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// KeyKind distinguishes an object property key from an annotation key.
type KeyKind int

const (
	KeyProperty KeyKind = iota
	KeyAnnotation
)

// Key is a single property or annotation key: its raw source text, a
// lazily-unescaped value, its kind, and the CST range it came from.
type Key struct {
	raw     string
	kind    KeyKind
	start   int
	end     int
	once    sync.Once
	value   string
	invalid bool // true if unescaping failed; equality/hash then always miss
}

// NewKey builds a Key from raw source text (including any surrounding
// quotes or the leading '@') and its CST byte range.
func NewKey(raw string, kind KeyKind, start, end int) *Key {
	return &Key{raw: raw, kind: kind, start: start, end: end}
}

func (k *Key) Raw() string  { return k.raw }
func (k *Key) Kind() KeyKind { return k.kind }
func (k *Key) Range() (int, int) { return k.start, k.end }
func (k *Key) IsProperty() bool { return k.kind == KeyProperty }
func (k *Key) IsAnnotation() bool { return k.kind == KeyAnnotation }

// Value returns the unescaped, unquoted value of the key, decoding lazily
// on first access and memoizing the result (single-writer/many-reader via
// sync.Once, per spec.md §5's interior-mutability discipline).
func (k *Key) Value() string {
	k.once.Do(func() {
		k.value, k.invalid = decodeKeyValue(k.raw, k.kind)
	})
	return k.value
}

// Invalid reports whether decoding the key's value failed (e.g. a bad
// escape sequence). An invalid key never equals any other key.
func (k *Key) Invalid() bool {
	k.Value()
	return k.invalid
}

func decodeKeyValue(raw string, kind KeyKind) (string, bool) {
	if kind == KeyAnnotation {
		return strings.TrimPrefix(raw, "@"), false
	}
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'' || raw[0] == '`') {
		quote := raw[0]
		inner := raw[1 : len(raw)-1]
		if quote == '"' {
			unescaped, err := unescape(inner)
			if err != nil {
				return inner, true
			}
			return unescaped, false
		}
		unescaped, err := unescape(inner)
		if err != nil {
			return inner, true
		}
		return unescaped, false
	}
	return raw, false
}

// String renders the key the way it would need to appear as a bare JSONA
// key: quoted with a single quote unless the decoded value would already lex
// back as a plain identifier.
func (k *Key) String() string {
	v := k.Value()
	if k.kind == KeyAnnotation {
		return "@" + v
	}
	if isStrSafeIdent(v) {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
}

// Equal compares two keys by kind and decoded value; an invalid key never
// equals anything, including another invalid key with the same raw text.
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.Invalid() || other.Invalid() {
		return false
	}
	return k.kind == other.kind && k.Value() == other.Value()
}

// KeyOrIndexKind tags which alternative a KeyOrIndex holds.
type KeyOrIndexKind int

const (
	KeyOrIndexProperty KeyOrIndexKind = iota
	KeyOrIndexAnnotation
	KeyOrIndexIndex
)

// KeyOrIndex is one segment of a Keys path: a property key, an annotation
// key, or an array index.
type KeyOrIndex struct {
	Kind  KeyOrIndexKind
	Key   *Key
	Index int
}

func PropertyKeyOf(k *Key) KeyOrIndex   { return KeyOrIndex{Kind: KeyOrIndexProperty, Key: k} }
func AnnotationKeyOf(k *Key) KeyOrIndex { return KeyOrIndex{Kind: KeyOrIndexAnnotation, Key: k} }
func IndexOf(i int) KeyOrIndex          { return KeyOrIndex{Kind: KeyOrIndexIndex, Index: i} }

func (k KeyOrIndex) String() string {
	switch k.Kind {
	case KeyOrIndexIndex:
		return fmt.Sprintf("[%d]", k.Index)
	case KeyOrIndexAnnotation:
		return k.Key.String()
	default:
		return "." + k.Key.String()
	}
}

func (k KeyOrIndex) Equal(o KeyOrIndex) bool {
	if k.Kind != o.Kind {
		return false
	}
	if k.Kind == KeyOrIndexIndex {
		return k.Index == o.Index
	}
	return k.Key.Equal(o.Key)
}

// Keys is an ordered path of KeyOrIndex segments identifying a position in
// a DOM tree.
type Keys []KeyOrIndex

func (ks Keys) String() string {
	var sb strings.Builder
	for _, k := range ks {
		sb.WriteString(k.String())
	}
	return sb.String()
}

// Child returns a new Keys with seg appended.
func (ks Keys) Child(seg KeyOrIndex) Keys {
	out := make(Keys, len(ks)+1)
	copy(out, ks)
	out[len(ks)] = seg
	return out
}

func quoteIfNeeded(s string) string {
	if isStrSafeIdent(s) {
		return s
	}
	return strconv.Quote(s)
}
