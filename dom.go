package jsona

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"sync"

	json "github.com/goccy/go-json"
)

// ErrNotFound and ErrMismatchType are returned by TryGet when a path segment
// has no binding, or when its kind (property/annotation/index) cannot apply
// to the node being navigated (e.g. an index into an ObjectNode).
var (
	ErrNotFound     = errors.New("jsona: key or index not found")
	ErrMismatchType = errors.New("jsona: mismatched key/index kind for node")
)

// NodeKind tags which DOM value variant a Node holds.
type NodeKind int

const (
	NullKind NodeKind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
	InvalidKind // sentinel returned by failed navigation, never built by the parser
)

func (k NodeKind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	default:
		return "invalid"
	}
}

// Node is the tagged DOM value: Null | Bool | Number | String | Array |
// Object, plus an internal Invalid case returned by failed lookups.
type Node interface {
	Kind() NodeKind
	Syntax() SyntaxElement
	Annotations() *Annotations
	Validate() []Error
	Get(k KeyOrIndex) Node
	TryGet(k KeyOrIndex) (Node, error)
	Path(keys Keys) Node
	// FlatIter walks every descendant (including annotation values) as a
	// flat sequence of (path, node) pairs, depth-first: a node's annotation
	// values (and their descendants) come before its children, which follow
	// in document order.
	FlatIter() iter.Seq2[Keys, Node]
	ToPlainJSON() (any, error)
	ToJSON() (any, error)
	String() string
}

// Annotations is an insertion-ordered map from annotation Key to Node.
type Annotations struct {
	keys  []*Key
	vals  []Node
	index map[string]int
}

func NewAnnotations() *Annotations {
	return &Annotations{index: map[string]int{}}
}

// Set inserts the annotation for key unless one with the same name is
// already present. On a duplicate @name it leaves the first entry in place
// and returns that entry's key with duplicate=true, so the caller can record
// a ConflictingKeys error referencing both keys.
func (a *Annotations) Set(key *Key, value Node) (existing *Key, duplicate bool) {
	k := annotationIndexKey(key)
	if i, ok := a.index[k]; ok {
		return a.keys[i], true
	}
	a.index[k] = len(a.keys)
	a.keys = append(a.keys, key)
	a.vals = append(a.vals, value)
	return nil, false
}

func annotationIndexKey(k *Key) string {
	return k.Value()
}

func (a *Annotations) Get(name string) (Node, bool) {
	if a == nil {
		return nil, false
	}
	if i, ok := a.index[name]; ok {
		return a.vals[i], true
	}
	return nil, false
}

func (a *Annotations) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

func (a *Annotations) Each(fn func(*Key, Node)) {
	if a == nil {
		return
	}
	for i, k := range a.keys {
		fn(k, a.vals[i])
	}
}

func (a *Annotations) errors() []Error {
	var out []Error
	a.Each(func(k *Key, v Node) {
		out = append(out, v.Validate()...)
	})
	return out
}

// base is embedded by every concrete Node implementation; it carries the
// fields and lookup machinery common to all variants.
type base struct {
	syn         SyntaxElement
	annotations *Annotations
	ownErrs     []Error
	errOnce     sync.Once
	errs        []Error
	childErrs   func() []Error // supplied by the concrete type, nil for scalars
}

func (b *base) Syntax() SyntaxElement      { return b.syn }
func (b *base) Annotations() *Annotations  { return b.annotations }

func (b *base) Validate() []Error {
	b.errOnce.Do(func() {
		b.errs = append(b.errs, b.ownErrs...)
		if b.annotations != nil {
			b.errs = append(b.errs, b.annotations.errors()...)
		}
		if b.childErrs != nil {
			b.errs = append(b.errs, b.childErrs()...)
		}
	})
	return b.errs
}

var invalidSentinel = &InvalidNode{}

// InvalidNode is returned by Get/Path when the requested key or index does
// not resolve to a value; it carries no errors of its own.
type InvalidNode struct{ base }

func (n *InvalidNode) Kind() NodeKind { return InvalidKind }
func (n *InvalidNode) Get(KeyOrIndex) Node { return invalidSentinel }
func (n *InvalidNode) TryGet(k KeyOrIndex) (Node, error) {
	return invalidSentinel, ErrNotFound
}
func (n *InvalidNode) Path(Keys) Node                      { return invalidSentinel }
func (n *InvalidNode) FlatIter() iter.Seq2[Keys, Node]     { return func(func(Keys, Node) bool) {} }
func (n *InvalidNode) ToPlainJSON() (any, error)           { return nil, ErrNotFound }
func (n *InvalidNode) ToJSON() (any, error)                { return nil, ErrNotFound }
func (n *InvalidNode) String() string                      { return "<invalid>" }

// --- scalar nodes ---

type NullNode struct{ base }

func (n *NullNode) Kind() NodeKind              { return NullKind }
func (n *NullNode) Get(KeyOrIndex) Node         { return invalidSentinel }
func (n *NullNode) TryGet(KeyOrIndex) (Node, error) { return invalidSentinel, ErrMismatchType }
func (n *NullNode) Path(keys Keys) Node         { return pathDefault(n, keys) }
func (n *NullNode) FlatIter() iter.Seq2[Keys, Node] {
	return func(yield func(Keys, Node) bool) { flatIterDefault(n, nil, yield) }
}
func (n *NullNode) ToPlainJSON() (any, error)   { return nil, nil }
func (n *NullNode) ToJSON() (any, error)        { return wrapJSON(n, nil) }
func (n *NullNode) String() string              { return "null" }

type BoolNode struct {
	base
	Value bool
}

func (n *BoolNode) Kind() NodeKind              { return BoolKind }
func (n *BoolNode) Get(KeyOrIndex) Node         { return invalidSentinel }
func (n *BoolNode) TryGet(KeyOrIndex) (Node, error) { return invalidSentinel, ErrMismatchType }
func (n *BoolNode) Path(keys Keys) Node         { return pathDefault(n, keys) }
func (n *BoolNode) FlatIter() iter.Seq2[Keys, Node] {
	return func(yield func(Keys, Node) bool) { flatIterDefault(n, nil, yield) }
}
func (n *BoolNode) ToPlainJSON() (any, error)   { return n.Value, nil }
func (n *BoolNode) ToJSON() (any, error)        { return wrapJSON(n, n.Value) }
func (n *BoolNode) String() string              { return fmt.Sprintf("%t", n.Value) }

// NumberNode stores both the decoded float64 (used for comparisons and
// formatting-independent equality) and whether the source literal was an
// integer form, which matters for String() and schema type inference
// (`integer` vs `number`); the plain-JSON projection is always the float64.
type NumberNode struct {
	base
	Value     float64
	IsInteger bool
}

func (n *NumberNode) Kind() NodeKind              { return NumberKind }
func (n *NumberNode) Get(KeyOrIndex) Node         { return invalidSentinel }
func (n *NumberNode) TryGet(KeyOrIndex) (Node, error) { return invalidSentinel, ErrMismatchType }
func (n *NumberNode) Path(keys Keys) Node         { return pathDefault(n, keys) }
func (n *NumberNode) FlatIter() iter.Seq2[Keys, Node] {
	return func(yield func(Keys, Node) bool) { flatIterDefault(n, nil, yield) }
}
func (n *NumberNode) ToPlainJSON() (any, error)   { return n.Value, nil }
func (n *NumberNode) ToJSON() (any, error)        { return wrapJSON(n, n.Value) }
func (n *NumberNode) String() string {
	if n.IsInteger {
		return fmt.Sprintf("%d", int64(n.Value))
	}
	return fmt.Sprintf("%v", n.Value)
}

type StringNode struct {
	base
	Value string
}

func (n *StringNode) Kind() NodeKind              { return StringKind }
func (n *StringNode) Get(KeyOrIndex) Node         { return invalidSentinel }
func (n *StringNode) TryGet(KeyOrIndex) (Node, error) { return invalidSentinel, ErrMismatchType }
func (n *StringNode) Path(keys Keys) Node         { return pathDefault(n, keys) }
func (n *StringNode) FlatIter() iter.Seq2[Keys, Node] {
	return func(yield func(Keys, Node) bool) { flatIterDefault(n, nil, yield) }
}
func (n *StringNode) ToPlainJSON() (any, error)   { return n.Value, nil }
func (n *StringNode) ToJSON() (any, error)        { return wrapJSON(n, n.Value) }
func (n *StringNode) String() string              { return strconvQuote(n.Value) }

// --- composite nodes ---

type ArrayNode struct {
	base
	Items []Node
}

func (n *ArrayNode) Kind() NodeKind { return ArrayKind }

func (n *ArrayNode) Get(k KeyOrIndex) Node {
	v, err := n.TryGet(k)
	if err != nil {
		return invalidSentinel
	}
	return v
}

func (n *ArrayNode) TryGet(k KeyOrIndex) (Node, error) {
	if k.Kind != KeyOrIndexIndex {
		return invalidSentinel, ErrMismatchType
	}
	if k.Index < 0 || k.Index >= len(n.Items) {
		return invalidSentinel, ErrNotFound
	}
	return n.Items[k.Index], nil
}

func (n *ArrayNode) Path(keys Keys) Node { return pathDefault(n, keys) }

func (n *ArrayNode) FlatIter() iter.Seq2[Keys, Node] {
	return func(yield func(Keys, Node) bool) {
		flatIterDefault(n, func(yield func(Keys, Node) bool) bool {
			for i, item := range n.Items {
				if !yield(Keys{IndexOf(i)}, item) {
					return false
				}
				cont := true
				item.FlatIter()(func(ks Keys, nd Node) bool {
					cont = yield(append(Keys{IndexOf(i)}, ks...), nd)
					return cont
				})
				if !cont {
					return false
				}
			}
			return true
		}, yield)
	}
}

func (n *ArrayNode) ToPlainJSON() (any, error) {
	out := make([]any, len(n.Items))
	for i, item := range n.Items {
		v, err := item.ToPlainJSON()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (n *ArrayNode) ToJSON() (any, error) {
	items := make([]any, len(n.Items))
	for i, item := range n.Items {
		v, err := item.ToJSON()
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return wrapJSON(n, items)
}

func (n *ArrayNode) String() string {
	s := "["
	for i, item := range n.Items {
		if i > 0 {
			s += ","
		}
		s += item.String()
	}
	return s + "]"
}

// objectEntry is one (Key, Node) binding in an ObjectNode's insertion-ordered
// member list. Duplicate keys append a second entry rather than replacing
// the first, matching spec.md §3.2's "both entries are kept" invariant.
type objectEntry struct {
	Key   *Key
	Value Node
}

type ObjectNode struct {
	base
	Entries []objectEntry
}

func (n *ObjectNode) Get(k KeyOrIndex) Node {
	v, err := n.TryGet(k)
	if err != nil {
		return invalidSentinel
	}
	return v
}

// TryGet returns the *last* binding for a duplicated key, matching the
// plain-JSON projection rule "later key wins" (spec.md §8 scenario 1).
func (n *ObjectNode) TryGet(k KeyOrIndex) (Node, error) {
	if k.Kind != KeyOrIndexProperty {
		return invalidSentinel, ErrMismatchType
	}
	var found Node
	ok := false
	for _, e := range n.Entries {
		if e.Key.Equal(k.Key) {
			found = e.Value
			ok = true
		}
	}
	if !ok {
		return invalidSentinel, ErrNotFound
	}
	return found, nil
}

func (n *ObjectNode) Kind() NodeKind  { return ObjectKind }
func (n *ObjectNode) Path(keys Keys) Node { return pathDefault(n, keys) }

func (n *ObjectNode) FlatIter() iter.Seq2[Keys, Node] {
	return func(yield func(Keys, Node) bool) {
		flatIterDefault(n, func(yield func(Keys, Node) bool) bool {
			for _, e := range n.Entries {
				seg := PropertyKeyOf(e.Key)
				if !yield(Keys{seg}, e.Value) {
					return false
				}
				cont := true
				e.Value.FlatIter()(func(ks Keys, nd Node) bool {
					cont = yield(append(Keys{seg}, ks...), nd)
					return cont
				})
				if !cont {
					return false
				}
			}
			return true
		}, yield)
	}
}

func (n *ObjectNode) ToPlainJSON() (any, error) {
	out := map[string]any{}
	var order []string
	for _, e := range n.Entries {
		v, err := e.Value.ToPlainJSON()
		if err != nil {
			return nil, err
		}
		name := e.Key.Value()
		if _, seen := out[name]; !seen {
			order = append(order, name)
		}
		out[name] = v // later key wins
	}
	return &OrderedMap{Keys: order, Values: out}, nil
}

func (n *ObjectNode) ToJSON() (any, error) {
	out := map[string]any{}
	var order []string
	for _, e := range n.Entries {
		v, err := e.Value.ToJSON()
		if err != nil {
			return nil, err
		}
		name := e.Key.Value()
		if _, seen := out[name]; !seen {
			order = append(order, name)
		}
		out[name] = v
	}
	return wrapJSON(n, &OrderedMap{Keys: order, Values: out})
}

func (n *ObjectNode) String() string {
	s := "{"
	for i, e := range n.Entries {
		if i > 0 {
			s += ","
		}
		s += e.Key.String() + ":" + e.Value.String()
	}
	return s + "}"
}

// OrderedMap is the plain-JSON projection shape for an ObjectNode: it
// preserves object key order (spec.md §3.2: "key order is preserved")
// while still being encodable by a JSON library via MarshalJSON.
type OrderedMap struct {
	Keys   []string
	Values map[string]any
}

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	return marshalOrderedMap(m)
}

// marshalOrderedMap renders an OrderedMap preserving Keys order, since a
// plain map[string]any would lose it through encoding/json or goccy/go-json.
func marshalOrderedMap(m *OrderedMap) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// --- shared helpers ---

func pathDefault(n Node, keys Keys) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
		if cur.Kind() == InvalidKind {
			return invalidSentinel
		}
	}
	return cur
}

func flatIterDefault(n Node, children func(yield func(Keys, Node) bool) bool, yield func(Keys, Node) bool) {
	if a := n.Annotations(); a != nil {
		cont := true
		a.Each(func(k *Key, v Node) {
			if !cont {
				return
			}
			seg := AnnotationKeyOf(k)
			if !yield(Keys{seg}, v) {
				cont = false
				return
			}
			v.FlatIter()(func(ks Keys, nd Node) bool {
				cont = yield(append(Keys{seg}, ks...), nd)
				return cont
			})
		})
		if !cont {
			return
		}
	}
	if children != nil {
		children(yield)
	}
}

func wrapJSON(n Node, value any) (any, error) {
	out := map[string]any{"value": value}
	if a := n.Annotations(); a.Len() > 0 {
		ann := map[string]any{}
		a.Each(func(k *Key, v Node) {
			j, err := v.ToJSON()
			if err == nil {
				ann[k.String()] = j
			}
		})
		out["annotations"] = ann
	}
	return out, nil
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}
