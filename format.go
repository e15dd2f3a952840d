package jsona

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Format parses source and renders it back out under opts. Like the parser
// it never aborts: a document with syntax errors still formats, passing the
// damaged ranges through verbatim.
func Format(source string, opts Options) (string, error) {
	parse := ParseSource(source)
	f := newFormatter(source, opts, parse.Errors, nil)
	return f.run(parse.Root), nil
}

// FormatSyntax renders an already-parsed CST directly, without re-lexing.
// Since a *SyntaxNode carries only byte offsets, the original source text
// must be supplied alongside it (every other Text-producing accessor in
// this package takes src the same way). Error-tainted ranges are detected
// from ERROR tokens already present in cst, since no separate Parse.Errors
// is available to a caller holding only a CST.
func FormatSyntax(source string, cst *SyntaxNode, opts Options) string {
	f := newFormatter(source, opts, nil, nil)
	f.errRanges = errorTokenRanges(cst)
	return f.run(cst)
}

// FormatWithPathScopes formats root under opts, except that any subtree
// whose path matches a scope pattern (QueryKeys syntax, C8) is formatted
// under opts patched by that scope's OptionsPatch instead. Supplements
// spec.md's formatter with original_source's format_with_path_scopes
// feature (see DESIGN.md). source must be the exact text root was parsed
// from: a *SyntaxNode only carries byte offsets, never the text itself
// (same reason FormatSyntax takes source explicitly). When more than one
// pattern matches the same node, patches apply in ascending pattern-string
// order so the result is deterministic regardless of map iteration order;
// last writer wins on a field-by-field basis.
func FormatWithPathScopes(source string, root Node, opts Options, scopes map[string]OptionsPatch) (string, error) {
	patterns := make([]string, 0, len(scopes))
	for p := range scopes {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	type rule struct {
		qk    QueryKeys
		patch OptionsPatch
	}
	rules := make([]rule, 0, len(patterns))
	for _, p := range patterns {
		qk, err := ParseQueryKeys(p)
		if err != nil {
			return "", fmt.Errorf("jsona: bad format scope %q: %w", p, err)
		}
		rules = append(rules, rule{qk: qk, patch: scopes[p]})
	}

	overrides := map[*SyntaxNode]Options{}
	apply := func(ks Keys, n Node) {
		eff := opts
		matched := false
		for _, r := range rules {
			if r.qk.IsMatch(ks, true) {
				eff = eff.withPatch(r.patch)
				matched = true
			}
		}
		if matched {
			if sn, ok := n.Syntax().(*SyntaxNode); ok {
				overrides[sn] = eff
			}
		}
	}
	apply(nil, root)
	root.FlatIter()(func(ks Keys, n Node) bool {
		apply(ks, n)
		return true
	})

	sn, ok := root.Syntax().(*SyntaxNode)
	if !ok {
		return "", fmt.Errorf("jsona: node has no syntax backing")
	}
	if sn.Parent() != nil && sn.Parent().Kind() == KindValue {
		sn = sn.Parent() // include the node's own trailing annotations
	}

	f := newFormatter(source, opts, nil, overrides)
	f.errRanges = errorTokenRanges(sn)
	return f.run(sn), nil
}

type comment struct {
	start int
	text  string
}

type gap struct {
	comments   []comment
	blankLines int
}

type formatter struct {
	src       string
	baseOpts  Options
	errRanges [][2]int
	overrides map[*SyntaxNode]Options
	sb        strings.Builder
}

func newFormatter(src string, opts Options, syntaxErrs []SyntaxError, overrides map[*SyntaxNode]Options) *formatter {
	var ranges [][2]int
	for _, e := range syntaxErrs {
		ranges = append(ranges, [2]int{e.Start, e.End})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i][0] < ranges[j][0] })
	return &formatter{src: src, baseOpts: opts, errRanges: ranges, overrides: overrides}
}

func errorTokenRanges(n *SyntaxNode) [][2]int {
	var out [][2]int
	n.Walk(func(e SyntaxElement) {
		if t, ok := e.(Token); ok && t.Kind == KindError {
			out = append(out, [2]int{t.Start, t.End})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func (f *formatter) tainted(start, end int) bool {
	for _, r := range f.errRanges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}

func (f *formatter) resolveOpts(n *SyntaxNode, opts Options) Options {
	if f.overrides != nil {
		if o, ok := f.overrides[n]; ok {
			return o
		}
	}
	return opts
}

func (f *formatter) run(root *SyntaxNode) string {
	f.sb.Reset()
	f.emitValue(root, 0, f.baseOpts)
	out := f.sb.String()
	if f.baseOpts.TrailingNewline {
		if !strings.HasSuffix(out, f.baseOpts.newline()) {
			out += f.baseOpts.newline()
		}
	} else {
		out = strings.TrimRight(out, "\r\n")
	}
	return out
}

// emitValue formats a KindValue node: its scalar/object/array child plus an
// optional trailing annotations block, which always stays attached on the
// same line as the value it follows (spec.md §4.5) since nothing here
// inserts a newline between them.
func (f *formatter) emitValue(n *SyntaxNode, depth int, opts Options) {
	if f.tainted(n.Start(), n.End()) {
		f.sb.WriteString(n.Text(f.src))
		return
	}
	switch n.Kind() {
	case KindValue:
		inner := firstContainerOrScalar(n)
		var trailing *SyntaxNode
		for _, c := range n.ChildNodes() {
			if c.Kind() == KindAnnotations {
				trailing = c
			}
		}
		if inner == nil {
			f.sb.WriteString(n.Text(f.src))
			return
		}
		f.emitValue(inner, depth, opts)
		if trailing != nil {
			f.sb.WriteString(" ")
			f.emitAnnotations(trailing, depth, opts)
		}
	case KindScalar:
		f.emitScalar(n, f.resolveOpts(n, opts))
	case KindObject:
		f.emitObject(n, depth, f.resolveOpts(n, opts))
	case KindArray:
		f.emitArray(n, depth, f.resolveOpts(n, opts))
	default:
		f.sb.WriteString(n.Text(f.src))
	}
}

func firstContainerOrScalar(n *SyntaxNode) *SyntaxNode {
	for _, c := range n.ChildNodes() {
		switch c.Kind() {
		case KindScalar, KindObject, KindArray:
			return c
		}
	}
	return nil
}

// emitScalar writes a scalar's significant tokens (the literal itself, plus
// any comment that happened to land inside the scalar's own span between
// the colon/bracket and the value), collapsing surrounding whitespace to a
// single separating space.
func (f *formatter) emitScalar(n *SyntaxNode, opts Options) {
	first := true
	for _, t := range n.ChildTokens() {
		if t.Kind == KindWhitespace || t.Kind == KindNewline {
			continue
		}
		if !first {
			f.sb.WriteString(" ")
		}
		f.sb.WriteString(t.Text(f.src))
		first = false
	}
}

func (f *formatter) containerIsInline(n *SyntaxNode) bool {
	for _, c := range n.Children() {
		t, ok := c.(Token)
		if !ok {
			continue
		}
		switch t.Kind {
		case KindNewline:
			return false
		case KindLineComment:
			return false
		case KindBlockComment:
			if strings.Contains(t.Text(f.src), "\n") {
				return false
			}
		}
	}
	return true
}

// membersAndGaps splits a container's direct children into the significant
// member nodes of kind memberKind (KindProperty for objects, KindValue for
// arrays) and the trivia/comment/blank-line "gap" that preceded each one,
// including the gap between the last member and the closing bracket.
// Leading annotations are skipped; the caller handles those separately.
func (f *formatter) membersAndGaps(n *SyntaxNode, memberKind Kind) ([]*SyntaxNode, []gap) {
	var members []*SyntaxNode
	var gaps []gap
	var cur gap
	gapStart, gapEnd := -1, -1

	flush := func() {
		if gapStart >= 0 {
			cur.blankLines = countBlankLines(f.src, gapStart, gapEnd)
		}
		gaps = append(gaps, cur)
		cur = gap{}
		gapStart, gapEnd = -1, -1
	}

	for _, c := range n.Children() {
		switch v := c.(type) {
		case Token:
			switch v.Kind {
			case KindLineComment, KindBlockComment:
				cur.comments = append(cur.comments, comment{start: v.Start, text: v.Text(f.src)})
			}
			if gapStart < 0 {
				gapStart = v.Start
			}
			gapEnd = v.End
		case *SyntaxNode:
			if v.Kind() == memberKind {
				flush()
				members = append(members, v)
			}
		}
	}
	flush()
	return members, gaps
}

func countBlankLines(src string, start, end int) int {
	if end <= start || start < 0 {
		return 0
	}
	n := strings.Count(src[start:end], "\n")
	if n <= 1 {
		return 0
	}
	return n - 1
}

func (f *formatter) emitGap(g gap, indent, nl string, opts Options) {
	blanks := g.blankLines
	if blanks > opts.AllowedBlankLines {
		blanks = opts.AllowedBlankLines
	}
	for i := 0; i < blanks; i++ {
		f.sb.WriteString(nl)
	}
	for _, c := range g.comments {
		f.sb.WriteString(indent)
		f.sb.WriteString(c.text)
		f.sb.WriteString(nl)
	}
}

func (f *formatter) emitObject(n *SyntaxNode, depth int, opts Options) {
	f.sb.WriteString("{")

	lead := n.FirstChildNode(KindAnnotations)
	members, gaps := f.membersAndGaps(n, KindProperty)
	inline := f.containerIsInline(n)
	nl := opts.newline()
	indent := strings.Repeat(opts.IndentString, depth+1)
	closeIndent := strings.Repeat(opts.IndentString, depth)

	if lead != nil {
		if inline {
			f.sb.WriteString(" ")
		} else {
			f.sb.WriteString(nl)
			f.sb.WriteString(indent)
		}
		f.emitAnnotations(lead, depth+1, opts)
	}

	if len(members) == 0 {
		if lead != nil {
			if inline {
				f.sb.WriteString(" ")
			} else {
				f.sb.WriteString(nl)
				f.sb.WriteString(closeIndent)
			}
		}
		f.sb.WriteString("}")
		return
	}

	if inline {
		f.sb.WriteString(" ")
		for i, m := range members {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			f.emitProperty(m, depth, opts)
		}
		f.sb.WriteString(" }")
		return
	}

	if lead != nil {
		f.sb.WriteString(nl)
	}
	for i, m := range members {
		f.emitGap(gaps[i], indent, nl, opts)
		f.sb.WriteString(indent)
		f.emitProperty(m, depth+1, opts)
		if i < len(members)-1 || opts.TrailingComma {
			f.sb.WriteString(",")
		}
		f.sb.WriteString(nl)
	}
	f.emitGap(gaps[len(members)], indent, nl, opts)
	f.sb.WriteString(closeIndent)
	f.sb.WriteString("}")
}

func (f *formatter) emitArray(n *SyntaxNode, depth int, opts Options) {
	f.sb.WriteString("[")

	lead := n.FirstChildNode(KindAnnotations)
	members, gaps := f.membersAndGaps(n, KindValue)
	inline := f.containerIsInline(n)
	nl := opts.newline()
	indent := strings.Repeat(opts.IndentString, depth+1)
	closeIndent := strings.Repeat(opts.IndentString, depth)

	if lead != nil {
		if inline {
			f.sb.WriteString(" ")
		} else {
			f.sb.WriteString(nl)
			f.sb.WriteString(indent)
		}
		f.emitAnnotations(lead, depth+1, opts)
	}

	if len(members) == 0 {
		if lead != nil {
			if inline {
				f.sb.WriteString(" ")
			} else {
				f.sb.WriteString(nl)
				f.sb.WriteString(closeIndent)
			}
		}
		f.sb.WriteString("]")
		return
	}

	if inline {
		f.sb.WriteString(" ")
		for i, m := range members {
			if i > 0 {
				f.sb.WriteString(", ")
			}
			f.emitValue(m, depth, opts)
		}
		f.sb.WriteString(" ]")
		return
	}

	if lead != nil {
		f.sb.WriteString(nl)
	}
	for i, m := range members {
		f.emitGap(gaps[i], indent, nl, opts)
		f.sb.WriteString(indent)
		f.emitValue(m, depth+1, opts)
		if i < len(members)-1 || opts.TrailingComma {
			f.sb.WriteString(",")
		}
		f.sb.WriteString(nl)
	}
	f.emitGap(gaps[len(members)], indent, nl, opts)
	f.sb.WriteString(closeIndent)
	f.sb.WriteString("]")
}

func (f *formatter) emitProperty(p *SyntaxNode, depth int, opts Options) {
	if key := p.FirstChildNode(KindKey); key != nil {
		f.emitKey(key, opts)
	}
	f.sb.WriteString(": ")
	if val := p.FirstChildNode(KindValue); val != nil {
		f.emitValue(val, depth, opts)
	}
}

func (f *formatter) emitKey(n *SyntaxNode, opts Options) {
	tok, ok := firstSigToken(n)
	if !ok {
		f.sb.WriteString(n.Text(f.src))
		return
	}
	text := tok.Text(f.src)
	if opts.FormatKey {
		text = normalizeKeyQuoting(text, tok.Kind)
	}
	f.sb.WriteString(text)
}

func firstSigToken(n *SyntaxNode) (Token, bool) {
	for _, t := range n.ChildTokens() {
		if !t.Kind.IsTrivia() {
			return t, true
		}
	}
	return Token{}, false
}

func (f *formatter) emitAnnotations(n *SyntaxNode, depth int, opts Options) {
	first := true
	for _, p := range n.ChildNodes() {
		if p.Kind() != KindAnnotationProperty {
			continue
		}
		if !first {
			f.sb.WriteString(" ")
		}
		f.emitAnnotationProperty(p, depth, opts)
		first = false
	}
}

func (f *formatter) emitAnnotationProperty(n *SyntaxNode, depth int, opts Options) {
	if tok, ok := n.FirstChildToken(KindAnnotationKey); ok {
		f.sb.WriteString(tok.Text(f.src))
	}
	if valWrap := n.FirstChildNode(KindAnnotationValue); valWrap != nil {
		f.sb.WriteString("(")
		if inner := valWrap.FirstChildNode(KindValue); inner != nil {
			f.emitValue(inner, depth, opts)
		}
		f.sb.WriteString(")")
	}
}

// normalizeKeyQuoting implements format_key: drop quotes when the
// decoded key is a plain identifier, otherwise re-quote with whichever of
// ', ", ` produces the shortest safe encoding.
func normalizeKeyQuoting(raw string, kind Kind) string {
	var lit string
	switch kind {
	case KindSingleQuote, KindDoubleQuote, KindBacktickQuote:
		inner := raw
		if len(inner) >= 2 {
			inner = inner[1 : len(inner)-1]
		}
		if d, err := unescape(inner); err == nil {
			lit = d
		} else {
			return raw
		}
	default:
		return raw // already bare (identifier or bare-literal key)
	}

	if isPlainIdentKey(lit) {
		return lit
	}

	type candidate struct {
		quote byte
		body  string
	}
	candidates := []candidate{
		{'"', escapeForQuote(lit, '"')},
		{'\'', escapeForQuote(lit, '\'')},
	}
	if !strings.ContainsRune(lit, '`') {
		candidates = append(candidates, candidate{'`', lit})
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c.body) < len(best.body) {
			best = c
		}
	}
	return string(best.quote) + best.body + string(best.quote)
}

func isPlainIdentKey(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func escapeForQuote(s string, quote byte) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case rune(quote):
			sb.WriteByte('\\')
			sb.WriteByte(quote)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
