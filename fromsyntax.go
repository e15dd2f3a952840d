package jsona

import (
	"strconv"
	"strings"
)

// fromSyntax walks a parsed CST into a DOM tree, implementing the
// annotation-binding and duplicate-key rules described for the DOM layer:
// object keys that repeat are both kept (never merged, never overwritten)
// and a ConflictingKeys error is recorded; a container's own annotations
// (declared right after its opening bracket) and the annotations trailing
// the value as a whole are merged into one Annotations map, leading taking
// precedence on conflict since it is declared closest to the value's shape.
func fromSyntax(root *SyntaxNode, src string) Node {
	if root == nil {
		return invalidSentinel
	}
	return buildValue(root, src)
}

// buildValue interprets a KindValue node: its scalar/object/array child plus
// an optional trailing KindAnnotations sibling.
func buildValue(v *SyntaxNode, src string) Node {
	var inner, trailing *SyntaxNode
	for _, c := range v.ChildNodes() {
		switch c.Kind() {
		case KindScalar, KindObject, KindArray:
			inner = c
		case KindAnnotations:
			trailing = c
		}
	}

	var node Node
	switch {
	case inner == nil:
		node = &InvalidNode{base: base{syn: v, annotations: NewAnnotations()}}
	case inner.Kind() == KindScalar:
		node = buildScalar(inner, src)
	case inner.Kind() == KindObject:
		node = buildObject(inner, src)
	case inner.Kind() == KindArray:
		node = buildArray(inner, src)
	}

	if trailing != nil {
		attachTrailingAnnotations(node, trailing, src)
	}
	return node
}

func firstValueToken(n *SyntaxNode) (Token, bool) {
	for _, t := range n.ChildTokens() {
		if !t.Kind.IsTrivia() {
			return t, true
		}
	}
	return Token{}, false
}

func buildScalar(inner *SyntaxNode, src string) Node {
	tok, ok := firstValueToken(inner)
	if !ok {
		return &InvalidNode{base: base{syn: inner, annotations: NewAnnotations()}}
	}
	b := base{syn: inner, annotations: NewAnnotations()}
	switch tok.Kind {
	case KindNull:
		return &NullNode{base: b}
	case KindBool:
		return &BoolNode{base: b, Value: tok.Text(src) == "true"}
	case KindInteger, KindIntegerHex, KindIntegerOct, KindIntegerBin:
		v, err := decodeInteger(tok.Text(src), tok.Kind)
		if err != nil {
			b.ownErrs = []Error{{Kind: ErrInvalidNumber, Range: [2]int{tok.Start, tok.End}, Message: err.Error()}}
			return &NumberNode{base: b, IsInteger: true}
		}
		return &NumberNode{base: b, Value: v, IsInteger: true}
	case KindFloat:
		v, err := decodeFloat(tok.Text(src))
		if err != nil {
			b.ownErrs = []Error{{Kind: ErrInvalidNumber, Range: [2]int{tok.Start, tok.End}, Message: err.Error()}}
			return &NumberNode{base: b, IsInteger: false}
		}
		return &NumberNode{base: b, Value: v, IsInteger: false}
	case KindSingleQuote, KindDoubleQuote, KindBacktickQuote:
		v, errs := decodeString(tok, src)
		b.ownErrs = errs
		return &StringNode{base: b, Value: v}
	default:
		return &InvalidNode{base: b}
	}
}

// decodeInteger parses an (optionally signed, underscore-separated,
// hex/oct/bin-prefixed) integer literal into a float64, the uniform numeric
// representation NumberNode uses regardless of source radix.
func decodeInteger(raw string, kind Kind) (float64, error) {
	s := strings.ReplaceAll(raw, "_", "")
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	switch kind {
	case KindIntegerHex:
		base = 16
	case KindIntegerOct:
		base = 8
	case KindIntegerBin:
		base = 2
	}
	if base != 10 && len(s) >= 2 {
		s = s[2:] // strip 0x / 0o / 0b
	}
	uv, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	f := float64(uv)
	if neg {
		f = -f
	}
	return f, nil
}

// decodeFloat parses a float literal, including the nan/inf spellings:
// strconv.ParseFloat already recognizes "nan"/"inf"/"-inf" case-insensitively.
func decodeFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(raw, "_", ""), 64)
}

// decodeString unescapes a quoted scalar token. Backtick-quoted strings use
// the same escape set; a line break right after the opening backtick is not
// part of the value.
func decodeString(t Token, src string) (string, []Error) {
	raw := t.Text(src)
	if len(raw) < 2 {
		return "", []Error{{Kind: ErrInvalidSyntax, Range: [2]int{t.Start, t.End}, Message: "unterminated string"}}
	}
	inner := raw[1 : len(raw)-1]
	if t.Kind == KindBacktickQuote {
		if strings.HasPrefix(inner, "\r\n") {
			inner = inner[2:]
		} else {
			inner = strings.TrimPrefix(inner, "\n")
		}
	}
	out, err := unescape(inner)
	if err != nil {
		return inner, []Error{{Kind: ErrInvalidEscapeSequence, Range: [2]int{t.Start, t.End}, Message: err.Error()}}
	}
	return out, nil
}

func buildKey(keyNode *SyntaxNode, src string) *Key {
	tok, ok := firstValueToken(keyNode)
	if !ok {
		return NewKey("", KeyProperty, keyNode.Start(), keyNode.End())
	}
	return NewKey(tok.Text(src), KeyProperty, tok.Start, tok.End)
}

func buildObject(inner *SyntaxNode, src string) *ObjectNode {
	var leadAnn *SyntaxNode
	var entries []objectEntry
	var errs []Error
	for _, c := range inner.ChildNodes() {
		switch c.Kind() {
		case KindAnnotations:
			leadAnn = c
		case KindProperty:
			keyNode := c.FirstChildNode(KindKey)
			valNode := c.FirstChildNode(KindValue)
			if keyNode == nil || valNode == nil {
				continue
			}
			k := buildKey(keyNode, src)
			v := buildValue(valNode, src)
			for _, e := range entries {
				if e.Key.Equal(k) {
					ks, ke := e.Key.Range()
					other := [2]int{ks, ke}
					ns, ne := k.Range()
					errs = append(errs, Error{
						Kind:    ErrConflictingKeys,
						Range:   [2]int{ns, ne},
						Other:   &other,
						Message: "duplicate key " + k.String(),
					})
					break
				}
			}
			entries = append(entries, objectEntry{Key: k, Value: v})
		}
	}
	ann := NewAnnotations()
	if leadAnn != nil {
		a, annErrs := buildAnnotations(leadAnn, src)
		ann = a
		errs = append(errs, annErrs...)
	}
	obj := &ObjectNode{base: base{syn: inner, annotations: ann, ownErrs: errs}, Entries: entries}
	obj.childErrs = func() []Error {
		var out []Error
		for _, e := range obj.Entries {
			out = append(out, e.Value.Validate()...)
		}
		return out
	}
	return obj
}

func buildArray(inner *SyntaxNode, src string) *ArrayNode {
	var leadAnn *SyntaxNode
	var items []Node
	for _, c := range inner.ChildNodes() {
		switch c.Kind() {
		case KindAnnotations:
			leadAnn = c
		case KindValue:
			items = append(items, buildValue(c, src))
		}
	}
	var errs []Error
	ann := NewAnnotations()
	if leadAnn != nil {
		a, annErrs := buildAnnotations(leadAnn, src)
		ann = a
		errs = annErrs
	}
	arr := &ArrayNode{base: base{syn: inner, annotations: ann, ownErrs: errs}, Items: items}
	arr.childErrs = func() []Error {
		var out []Error
		for _, item := range arr.Items {
			out = append(out, item.Validate()...)
		}
		return out
	}
	return arr
}

// buildAnnotations reads an ANNOTATIONS node's @name / @name(value)
// properties in order. A bare @name with no parenthesized value decodes as
// the boolean flag `true`, matching the teacher's "presence implies enabled"
// convention for its own struct-tag flags.
func buildAnnotations(annNode *SyntaxNode, src string) (*Annotations, []Error) {
	a := NewAnnotations()
	var errs []Error
	for _, c := range annNode.ChildNodes() {
		if c.Kind() != KindAnnotationProperty {
			continue
		}
		keyTok, ok := c.FirstChildToken(KindAnnotationKey)
		if !ok {
			continue
		}
		key := NewKey(keyTok.Text(src), KeyAnnotation, keyTok.Start, keyTok.End)

		var val Node
		if valWrap := c.FirstChildNode(KindAnnotationValue); valWrap != nil {
			if innerVal := valWrap.FirstChildNode(KindValue); innerVal != nil {
				val = buildValue(innerVal, src)
			}
		}
		if val == nil {
			val = &BoolNode{base: base{syn: c, annotations: NewAnnotations()}, Value: true}
		}

		if existing, dup := a.Set(key, val); dup {
			es, ee := existing.Range()
			other := [2]int{es, ee}
			ns, ne := key.Range()
			errs = append(errs, Error{
				Kind:    ErrConflictingKeys,
				Range:   [2]int{ns, ne},
				Other:   &other,
				Message: "duplicate annotation @" + key.Value(),
			})
		}
	}
	return a, errs
}

// attachTrailingAnnotations merges annotations following a value into that
// value's own Annotations map, recording a ConflictingKeys error for any
// name already bound by the value's leading (container-own) annotations.
func attachTrailingAnnotations(n Node, annNode *SyntaxNode, src string) {
	trailing, errs := buildAnnotations(annNode, src)
	b := baseOf(n)
	if b == nil {
		return
	}
	if b.annotations == nil || b.annotations.Len() == 0 {
		b.annotations = trailing
		b.ownErrs = append(b.ownErrs, errs...)
		return
	}
	trailing.Each(func(k *Key, v Node) {
		if existing, dup := b.annotations.Set(k, v); dup {
			es, ee := existing.Range()
			other := [2]int{es, ee}
			ks, ke := k.Range()
			errs = append(errs, Error{
				Kind:    ErrConflictingKeys,
				Range:   [2]int{ks, ke},
				Other:   &other,
				Message: "duplicate annotation @" + k.Value(),
			})
		}
	})
	b.ownErrs = append(b.ownErrs, errs...)
}

// baseOf recovers the embedded *base of any concrete Node implementation so
// fromSyntax's construction helpers can finish wiring annotations/errors
// after a node has already been built and returned through the Node
// interface.
func baseOf(n Node) *base {
	switch t := n.(type) {
	case *NullNode:
		return &t.base
	case *BoolNode:
		return &t.base
	case *NumberNode:
		return &t.base
	case *StringNode:
		return &t.base
	case *ArrayNode:
		return &t.base
	case *ObjectNode:
		return &t.base
	case *InvalidNode:
		return &t.base
	default:
		return nil
	}
}
