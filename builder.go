package jsona

// builder assembles a CST bottom-up using a stack of in-progress nodes,
// mirroring the start_node/token/finish_node shape of a rowan-style green
// tree builder. Byte ranges are derived from the tokens fed in, so a
// finished node's range always equals the span of its children.
type builder struct {
	src   string
	stack []*SyntaxNode
}

func newBuilder(src string) *builder {
	return &builder{src: src}
}

// startNode pushes a new in-progress node of the given kind.
func (b *builder) startNode(kind Kind) {
	b.stack = append(b.stack, &SyntaxNode{kind: kind, start: -1, end: -1})
}

// token appends a leaf token to the node currently on top of the stack.
func (b *builder) token(kind Kind, start, end int) {
	top := b.top()
	tok := Token{Kind: kind, Start: start, End: end}
	top.children = append(top.children, tok)
	b.extend(top, start, end)
}

// finishNode pops the top node, attaches it as a child of the new top (if
// any), and returns it. Calling finishNode on the root returns the root.
func (b *builder) finishNode() *SyntaxNode {
	n := len(b.stack) - 1
	node := b.stack[n]
	b.stack = b.stack[:n]
	if node.start == -1 {
		node.start, node.end = 0, 0
	}
	for _, c := range node.children {
		if nd, ok := c.(*SyntaxNode); ok {
			nd.parent = node
		}
	}
	if len(b.stack) > 0 {
		parent := b.top()
		parent.children = append(parent.children, node)
		b.extend(parent, node.start, node.end)
	}
	return node
}

func (b *builder) top() *SyntaxNode {
	return b.stack[len(b.stack)-1]
}

func (b *builder) extend(n *SyntaxNode, start, end int) {
	if n.start == -1 || start < n.start {
		n.start = start
	}
	if n.end == -1 || end > n.end {
		n.end = end
	}
}
