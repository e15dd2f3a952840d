package jsona

// Parser is a hand-written recursive-descent parser driving a builder to
// produce a lossless CST. It never aborts: every wrong token is reported
// once and consumed as KindError so the parser always makes progress.
type Parser struct {
	src    string
	tokens []Token
	pos    int
	b      *builder
	errors []SyntaxError
	lastAt [2]int // start/end of the last reported error range, for dedup
}

// Parse holds the result of parsing a document: its CST root and the
// accumulated syntax errors. Parse never fails outright — worst case the
// root is a VALUE node wrapping an all-ERROR scalar.
type Parse struct {
	src    string
	Root   *SyntaxNode
	Errors []SyntaxError
}

// ParseSource lexes and parses src into a Parse result.
func ParseSource(src string) *Parse {
	p := &Parser{src: src, tokens: Lex(src), b: newBuilder(src)}
	p.b.startNode(KindValue)
	p.parseValueBody()
	p.skipTrivia()
	for !p.atEOF() {
		// trailing garbage after the document value: consume as errors.
		p.errorHere("unexpected trailing content")
		p.bumpRaw()
		p.skipTrivia()
	}
	root := p.b.finishNode()
	return &Parse{src: src, Root: root, Errors: p.errors}
}

// Syntax returns the CST root (bridge to the formatter, C5).
func (p *Parse) Syntax() *SyntaxNode { return p.Root }

// Dom builds and returns the DOM root (bridge to C4).
func (p *Parse) Dom() Node { return fromSyntax(p.Root, p.src) }

// --- token stream helpers ---

func (p *Parser) cur() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: KindEOF, Start: len(p.src), End: len(p.src)}
	}
	return p.tokens[p.pos]
}

func (p *Parser) atEOF() bool {
	return p.cur().Kind == KindEOF
}

// skipTrivia bumps whitespace/newline/comment tokens into the current node
// until a significant token is reached.
func (p *Parser) skipTrivia() {
	for !p.atEOF() && p.cur().Kind.IsTrivia() {
		t := p.cur()
		if t.Kind == KindBlockComment && (t.End-t.Start < 4 || p.src[t.End-2:t.End] != "*/") {
			p.error(t.Start, t.Start+2, ErrInvalidSyntax, "unterminated block comment")
		}
		p.b.token(t.Kind, t.Start, t.End)
		p.pos++
	}
}

// bumpRaw consumes whatever token is current (significant or not) verbatim.
func (p *Parser) bumpRaw() {
	t := p.cur()
	if t.Kind == KindEOF {
		return
	}
	if t.Kind == KindSingleQuote || t.Kind == KindDoubleQuote || t.Kind == KindBacktickQuote {
		// The literal is closed only if it ends in its own quote character
		// and that quote is not escaped by an odd run of backslashes.
		text := t.Text(p.src)
		slashes := 0
		for i := len(text) - 2; i > 0 && text[i] == '\\'; i-- {
			slashes++
		}
		if len(text) < 2 || text[len(text)-1] != text[0] || slashes%2 == 1 {
			p.error(t.Start, t.Start+1, ErrInvalidSyntax, "unterminated string")
		}
	}
	p.b.token(t.Kind, t.Start, t.End)
	p.pos++
}

// bump consumes the current token if it matches kind, recording a syntax
// error (without consuming) otherwise. Returns whether it matched.
func (p *Parser) bump(kind Kind) bool {
	p.skipTrivia()
	if p.cur().Kind == kind {
		p.bumpRaw()
		return true
	}
	p.errorHere("expected " + kind.String())
	return false
}

// errorHere records a syntax error at the current token's range, suppressing
// an exact duplicate of the immediately preceding error.
func (p *Parser) errorHere(msg string) {
	t := p.cur()
	p.error(t.Start, t.End, ErrUnexpectedSyntax, msg)
}

func (p *Parser) error(start, end int, kind ErrorKind, msg string) {
	if p.lastAt[0] == start && p.lastAt[1] == end && len(p.errors) > 0 && p.errors[len(p.errors)-1].Kind == kind {
		return
	}
	p.lastAt = [2]int{start, end}
	p.errors = append(p.errors, SyntaxError{Kind: kind, Start: start, End: end, Message: msg})
}

// --- grammar ---

// parseValueBody fills the currently-open KindValue node with a scalar,
// object, or array, followed by any trailing annotations.
func (p *Parser) parseValueBody() {
	p.skipTrivia()
	switch p.cur().Kind {
	case KindBraceOpen:
		p.parseObject()
	case KindBracketOpen:
		p.parseArray()
	default:
		p.parseScalar()
	}
	p.parseTrailingAnnotations()
}

func (p *Parser) parseScalar() {
	p.b.startNode(KindScalar)
	p.skipTrivia()
	switch p.cur().Kind {
	case KindSingleQuote, KindDoubleQuote, KindBacktickQuote,
		KindInteger, KindIntegerHex, KindIntegerOct, KindIntegerBin, KindFloat,
		KindBool, KindNull:
		p.bumpRaw()
	default:
		if p.atEOF() {
			p.error(p.cur().Start, p.cur().End, ErrInvalidSyntax, "expected a value")
		} else {
			p.errorHere("expected a value")
			p.bumpRaw()
		}
	}
	p.b.finishNode()
}

func (p *Parser) startsAnnotation() bool {
	p.skipTrivia()
	return p.cur().Kind == KindAnnotationKey
}

// parseLeadingAnnotations parses annotations immediately following a
// container's opening punctuation; these bind to the container itself.
func (p *Parser) parseLeadingAnnotations() *SyntaxNode {
	if !p.startsAnnotation() {
		return nil
	}
	return p.parseAnnotations()
}

// parseTrailingAnnotations parses annotations following a value; these bind
// to the value they follow (Open Question (a), resolved per SPEC_FULL.md).
func (p *Parser) parseTrailingAnnotations() {
	if p.startsAnnotation() {
		p.appendNode(p.parseAnnotations())
	}
}

// appendNode splices an already-finished node (built off-stack by a helper
// like parseAnnotations) into the node currently open on the builder stack.
func (p *Parser) appendNode(n *SyntaxNode) {
	if n == nil {
		return
	}
	top := p.b.top()
	n.parent = top
	top.children = append(top.children, n)
	p.b.extend(top, n.start, n.end)
}

func (p *Parser) parseAnnotations() *SyntaxNode {
	p.b.startNode(KindAnnotations)
	for p.startsAnnotation() {
		p.parseAnnotationProperty()
	}
	return p.b.finishNode()
}

func (p *Parser) parseAnnotationProperty() {
	p.b.startNode(KindAnnotationProperty)
	p.skipTrivia()
	p.bump(KindAnnotationKey)
	p.skipTrivia()
	if p.cur().Kind == KindParenOpen {
		p.bumpRaw()
		p.b.startNode(KindAnnotationValue)
		if p.startsAnnotation() {
			// A nested annotation inside an annotation's value: flagged but parsed.
			t := p.cur()
			p.error(t.Start, t.End, ErrUnexpectedSyntax, "nested annotation")
		}
		p.b.startNode(KindValue)
		p.parseValueBody()
		p.b.finishNode()
		p.b.finishNode()
		p.bump(KindParenClose)
	}
	p.b.finishNode()
}

func (p *Parser) parseObject() {
	p.b.startNode(KindObject)
	p.bump(KindBraceOpen)
	if lead := p.parseLeadingAnnotations(); lead != nil {
		p.appendNode(lead)
	}
	for {
		p.skipTrivia()
		k := p.cur().Kind
		if k == KindBraceClose || k == KindEOF {
			break
		}
		if !k.IsKeyToken() && k != KindAnnotationKey {
			// Unrecoverable token at a property position: consume as error,
			// keep going so the loop always terminates at '}'/EOF.
			p.errorHere("expected a property")
			p.bumpRaw()
			continue
		}
		p.parseProperty()
		p.skipTrivia()
		if p.cur().Kind == KindComma {
			p.bumpRaw() // trailing commas always accepted
		}
		// a missing comma between members is tolerated: loop continues.
	}
	p.bump(KindBraceClose)
	p.b.finishNode()
}

func (p *Parser) parseProperty() {
	p.b.startNode(KindProperty)
	p.parseKey()
	p.skipTrivia()
	p.bump(KindColon)
	p.b.startNode(KindValue)
	p.parseValueBody()
	p.b.finishNode()
	p.b.finishNode()
}

func (p *Parser) parseKey() {
	p.b.startNode(KindKey)
	p.skipTrivia()
	if p.cur().Kind.IsKeyToken() {
		p.bumpRaw()
	} else {
		p.errorHere("expected a key")
		p.bumpRaw()
	}
	p.b.finishNode()
}

func (p *Parser) parseArray() {
	p.b.startNode(KindArray)
	p.bump(KindBracketOpen)
	if lead := p.parseLeadingAnnotations(); lead != nil {
		p.appendNode(lead)
	}
	for {
		p.skipTrivia()
		k := p.cur().Kind
		if k == KindBracketClose || k == KindEOF {
			break
		}
		p.b.startNode(KindValue)
		p.parseValueBody()
		p.b.finishNode()
		p.skipTrivia()
		if p.cur().Kind == KindComma {
			p.bumpRaw()
		}
	}
	p.bump(KindBracketClose)
	p.b.finishNode()
}
