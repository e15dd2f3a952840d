package jsona

import "strings"

// SyntaxNode and Token together form the concrete syntax tree (CST): a
// lossless, immutable tree whose tokens' texts concatenate back to the
// exact source bytes. SyntaxNode is the composite ("green+red" collapsed
// into one persistent value, since Go's GC already gives structural sharing
// for free — there is no separate mutable "red" layer to maintain).
type SyntaxNode struct {
	kind     Kind
	start    int
	end      int
	children []SyntaxElement
	parent   *SyntaxNode
}

// SyntaxElement is either a *SyntaxNode or a Token (see token.go), mirroring
// rowan's NodeOrToken. It exposes only Range(); use ElementKind to recover
// the kind without an interface method colliding with Token's Kind field.
type SyntaxElement interface {
	Range() (start, end int)
}

// ElementKind returns the Kind of any SyntaxElement.
func ElementKind(e SyntaxElement) Kind {
	switch v := e.(type) {
	case *SyntaxNode:
		return v.kind
	case Token:
		return v.Kind
	default:
		panic("jsona: unknown SyntaxElement implementation")
	}
}

func (n *SyntaxNode) Kind() Kind               { return n.kind }
func (n *SyntaxNode) Range() (int, int)        { return n.start, n.end }
func (n *SyntaxNode) Children() []SyntaxElement { return n.children }
func (n *SyntaxNode) Parent() *SyntaxNode      { return n.parent }
func (n *SyntaxNode) Start() int               { return n.start }
func (n *SyntaxNode) End() int                 { return n.end }
func (n *SyntaxNode) Text(src string) string   { return src[n.start:n.end] }

// ChildNodes returns only the SyntaxNode-typed children, in order.
func (n *SyntaxNode) ChildNodes() []*SyntaxNode {
	var out []*SyntaxNode
	for _, c := range n.children {
		if nd, ok := c.(*SyntaxNode); ok {
			out = append(out, nd)
		}
	}
	return out
}

// ChildTokens returns only the Token-typed children, in order.
func (n *SyntaxNode) ChildTokens() []Token {
	var out []Token
	for _, c := range n.children {
		if tk, ok := c.(Token); ok {
			out = append(out, tk)
		}
	}
	return out
}

// FirstChildNode returns the first SyntaxNode-typed child of the given kind.
func (n *SyntaxNode) FirstChildNode(kind Kind) *SyntaxNode {
	for _, c := range n.children {
		if nd, ok := c.(*SyntaxNode); ok && nd.kind == kind {
			return nd
		}
	}
	return nil
}

// FirstChildToken returns the first Token-typed child of the given kind.
func (n *SyntaxNode) FirstChildToken(kind Kind) (Token, bool) {
	for _, c := range n.children {
		if tk, ok := c.(Token); ok && tk.Kind == kind {
			return tk, true
		}
	}
	return Token{}, false
}

// Walk calls fn for every element in the subtree rooted at n, in document
// order, depth-first, including n's own children but not n itself.
func (n *SyntaxNode) Walk(fn func(SyntaxElement)) {
	for _, c := range n.children {
		fn(c)
		if nd, ok := c.(*SyntaxNode); ok {
			nd.Walk(fn)
		}
	}
}

// reconstruct rebuilds the exact source span covered by the subtree by
// concatenating every token's text in traversal order.
func (n *SyntaxNode) reconstruct(src string, sb *strings.Builder) {
	for _, c := range n.children {
		switch v := c.(type) {
		case Token:
			sb.WriteString(v.Text(src))
		case *SyntaxNode:
			v.reconstruct(src, sb)
		}
	}
}

// Reconstruct rebuilds the source text spanned by n purely from token text,
// independent of n's recorded byte range. Used to verify losslessness: it
// must equal src[n.Start():n.End()] for any parse with no lexer bugs.
func (n *SyntaxNode) Reconstruct(src string) string {
	var sb strings.Builder
	n.reconstruct(src, &sb)
	return sb.String()
}
