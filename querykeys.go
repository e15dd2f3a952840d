package jsona

import (
	"fmt"
	"strings"
)

// QueryKeyKind tags which alternative a QueryKey holds: an exact index or
// key, a glob over an index or key, or the recursive-descent wildcard `**`.
type QueryKeyKind int

const (
	QueryKindIndex QueryKeyKind = iota
	QueryKindKey
	QueryKindGlobIndex
	QueryKindGlobKey
	QueryKindAnyRecursive
)

// QueryKey is one segment of a QueryKeys pattern. Grounded on
// original_source/crates/jsona/src/dom/query_keys.rs's QueryKey enum.
type QueryKey struct {
	Kind  QueryKeyKind
	Index int
	Key   *Key
	Glob  string
}

func (q QueryKey) String() string {
	switch q.Kind {
	case QueryKindIndex:
		return fmtBracket(q.Index)
	case QueryKindKey:
		if q.Key.IsProperty() {
			return "." + q.Key.String()
		}
		return q.Key.String()
	case QueryKindGlobIndex:
		return "[" + q.Glob + "]"
	case QueryKindGlobKey:
		return "." + q.Glob
	default:
		return "**"
	}
}

func fmtBracket(i int) string {
	return "[" + itoa(i) + "]"
}

// IsMatch reports whether this query segment matches one concrete path
// segment of a DOM Keys path.
func (q QueryKey) IsMatch(other KeyOrIndex) bool {
	switch q.Kind {
	case QueryKindIndex:
		return other.Kind == KeyOrIndexIndex && other.Index == q.Index
	case QueryKindKey:
		return (other.Kind == KeyOrIndexProperty || other.Kind == KeyOrIndexAnnotation) && q.Key.Equal(other.Key)
	case QueryKindGlobIndex:
		return other.Kind == KeyOrIndexIndex && glob(q.Glob, itoa(other.Index))
	case QueryKindGlobKey:
		return other.Kind == KeyOrIndexProperty && glob(q.Glob, other.Key.Value())
	case QueryKindAnyRecursive:
		return true
	default:
		return false
	}
}

// QueryKeys is a parsed key-path pattern, as accepted by FindAllMatches and
// the `@pattern`-adjacent schema tooling. Grounded on
// original_source/crates/jsona/src/dom/query_keys.rs's QueryKeys.
type QueryKeys struct {
	keys            []QueryKey
	dotted          string
	existAnyRecursive bool
}

func NewQueryKeys(keys []QueryKey) QueryKeys {
	var sb strings.Builder
	hasRec := false
	for _, k := range keys {
		if k.Kind == QueryKindAnyRecursive {
			hasRec = true
		}
		sb.WriteString(k.String())
	}
	return QueryKeys{keys: keys, dotted: sb.String(), existAnyRecursive: hasRec}
}

func (qk QueryKeys) Dotted() string { return qk.dotted }
func (qk QueryKeys) Len() int       { return len(qk.keys) }
func (qk QueryKeys) IsEmpty() bool  { return len(qk.keys) == 0 }
func (qk QueryKeys) String() string { return qk.dotted }

// IsMatch reports whether target matches this pattern. matchChildren allows
// target to be a strict descendant of (rather than exactly) the pattern's
// path — used by FindAllMatches's includeChildren option. Ported verbatim
// from query_keys.rs's QueryKeys::is_match, including its backtracking scan
// for `**`: when a `**` is followed by another segment, it tries the
// shortest match first and only backs off by one target segment at a time
// when a later fixed segment stops matching.
func (qk QueryKeys) IsMatch(target Keys, matchChildren bool) bool {
	if !qk.existAnyRecursive {
		if qk.Len() > len(target) || (!matchChildren && qk.Len() != len(target)) {
			return false
		}
		for i, k := range qk.keys {
			if !k.IsMatch(target[i]) {
				return false
			}
		}
		return true
	}

	keys := qk.keys
	i, j := 0, 0
	for i < len(keys) {
		key := keys[i]
		switch key.Kind {
		case QueryKindAnyRecursive:
			if i+1 < len(keys) {
				next := keys[i+1]
				matchedTarget := false
				advanced := false
				for j < len(target) {
					if next.IsMatch(target[j]) {
						matchedTarget = true
					} else if matchedTarget {
						j--
						i += 2
						advanced = true
						break
					}
					j++
				}
				if advanced {
					continue
				}
				if matchedTarget {
					i += 2
					continue
				}
				return false
			}
			return true
		default:
			if j >= len(target) {
				return false
			}
			if !key.IsMatch(target[j]) {
				return false
			}
			j++
			i++
		}
	}
	if matchChildren {
		return true
	}
	// mirrors query_keys.rs's `j >= target_keys.len() - 1`, not `== len`:
	// a trailing fixed segment after `**` can leave j one short when the
	// recursive branch's backtrack step (`j -= 1`) adjusted it.
	return j >= len(target)-1
}

// ParseQueryKeys parses a dotted/bracketed key-path pattern such as
// `.foo.*[1]`, `**.name`, or `@summary` into a QueryKeys. A leading bare
// identifier with no `.`/`[`/`@` prefix is treated as an implicit property
// segment, matching the teacher-adjacent lenient-prefix convention
// original_source applies before the first `.`.
func ParseQueryKeys(s string) (QueryKeys, error) {
	if s == "" || s == "." {
		return NewQueryKeys(nil), nil
	}
	var keys []QueryKey
	i := 0
	first := true
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "**"):
			keys = append(keys, QueryKey{Kind: QueryKindAnyRecursive})
			i += 2
			first = false
			if i < len(s) && s[i] == '.' {
				i++
			}
		case s[i] == '.':
			i++
			first = false
			seg, n, err := parseQuerySegment(s[i:])
			if err != nil {
				return QueryKeys{}, err
			}
			keys = append(keys, seg)
			i += n
		case s[i] == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return QueryKeys{}, fmt.Errorf("unterminated [ in query keys %q", s)
			}
			inner := s[i+1 : i+end]
			if strings.ContainsAny(inner, "*?") {
				keys = append(keys, QueryKey{Kind: QueryKindGlobIndex, Glob: inner})
			} else {
				idx, err := atoi(inner)
				if err != nil {
					return QueryKeys{}, err
				}
				keys = append(keys, QueryKey{Kind: QueryKindIndex, Index: idx})
			}
			i += end + 1
			first = false
		case s[i] == '@':
			seg, n, err := parseQuerySegment(s[i:])
			if err != nil {
				return QueryKeys{}, err
			}
			keys = append(keys, seg)
			i += n
			first = false
		default:
			if !first {
				return QueryKeys{}, fmt.Errorf("unexpected character at %d in query keys %q", i, s)
			}
			seg, n, err := parseQuerySegment(s[i:])
			if err != nil {
				return QueryKeys{}, err
			}
			keys = append(keys, seg)
			i += n
			first = false
		}
	}
	return NewQueryKeys(keys), nil
}

// parseQuerySegment parses one `.`/bare/`@`-prefixed segment starting at s
// (s[0] is the first character of the segment itself, any leading `.` or
// sigil already consumed by the caller except `@` which is part of the key).
func parseQuerySegment(s string) (QueryKey, int, error) {
	if s == "" {
		return QueryKey{}, 0, fmt.Errorf("empty query key segment")
	}
	isAnnotation := s[0] == '@'
	start := 0
	if isAnnotation {
		start = 1
	}
	end := start
	for end < len(s) {
		c := s[end]
		if c == '.' || c == '[' {
			break
		}
		end++
	}
	raw := s[start:end]
	if raw == "" {
		return QueryKey{}, 0, fmt.Errorf("empty query key segment")
	}
	if strings.ContainsAny(raw, "*?") {
		return QueryKey{Kind: QueryKindGlobKey, Glob: raw}, end, nil
	}
	kind := KeyProperty
	if isAnnotation {
		kind = KeyAnnotation
	}
	k := NewKey(raw, kind, 0, 0)
	return QueryKey{Kind: QueryKindKey, Key: k}, end, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}

func atoi(s string) (int, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid integer")
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
