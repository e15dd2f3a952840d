package jsona

// glob reports whether target matches the shell-style pattern source, where
// '*' matches zero or more runes and '?' matches exactly one. Grounded on
// original_source/crates/jsona/src/util/glob.rs: a single forward scan that
// treats '*' as "skip until the rune following it reoccurs in target",
// without backtracking, which is sufficient because '*' never appears
// adjacent to another '*' in a well-formed glob segment.
func glob(source, target string) bool {
	ss := []rune(source)
	ts := []rune(target)
	i, j := 0, 0
	for i < len(ss) {
		s := ss[i]
		switch s {
		case '*':
			if i+1 < len(ss) {
				next := ss[i+1]
				found := false
				for ; j < len(ts); j++ {
					if ts[j] == next {
						j++
						i += 2
						found = true
						break
					}
				}
				if found {
					continue
				}
				return true
			}
			return true
		case '?':
			if j >= len(ts) {
				return false
			}
			j++
			i++
		default:
			if j >= len(ts) || ts[j] != s {
				return false
			}
			j++
			i++
		}
	}
	return j >= len(ts)
}
