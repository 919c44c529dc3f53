package query

import "strings"

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// identEnd returns the end of the identifier starting at i, or i if none does
func identEnd(s string, i int) int {
	if i >= len(s) || !isIdentStart(s[i]) {
		return i
	}
	j := i + 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	return j
}

// skipNonCode returns the index just past a string literal, quoted identifier
// or comment starting at i, or i when code starts there. With dollarQuotes,
// PostgreSQL $tag$...$tag$ bodies are skipped too. Unterminated regions run
// to the end of s.
func skipNonCode(s string, i int, dollarQuotes bool) int {
	switch {
	case s[i] == '\'' || s[i] == '"':
		q := s[i]
		j := i + 1
		for j < len(s) {
			if s[j] == q {
				// doubled quote is an escaped quote
				if j+1 < len(s) && s[j+1] == q {
					j += 2
					continue
				}
				return j + 1
			}
			j++
		}
		return len(s)
	case strings.HasPrefix(s[i:], "--"):
		if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
			return i + nl + 1
		}
		return len(s)
	case strings.HasPrefix(s[i:], "/*"):
		if end := strings.Index(s[i+2:], "*/"); end >= 0 {
			return i + 2 + end + 2
		}
		return len(s)
	case dollarQuotes && s[i] == '$':
		tagEnd := identEnd(s, i+1)
		if tagEnd >= len(s) || s[tagEnd] != '$' {
			return i
		}
		tag := s[i : tagEnd+1]
		if end := strings.Index(s[tagEnd+1:], tag); end >= 0 {
			return tagEnd + 1 + end + len(tag)
		}
		return len(s)
	}
	return i
}

// lineAt returns the 1-based line number of offset i
func lineAt(s string, i int) int {
	return strings.Count(s[:i], "\n") + 1
}

// parseKeyList parses "(a, b, c)" starting at s[i] == '('.
// Returns the keys and the index after ')', or ok=false.
func parseKeyList(s string, i int) (keys []string, end int, ok bool) {
	if i >= len(s) || s[i] != '(' {
		return nil, i, false
	}
	closing := strings.IndexByte(s[i:], ')')
	if closing < 0 {
		return nil, i, false
	}
	body := s[i+1 : i+closing]
	for _, part := range strings.Split(body, ",") {
		k := strings.TrimSpace(part)
		if k == "" || identEnd(k, 0) != len(k) {
			return nil, i, false
		}
		keys = append(keys, k)
	}
	return keys, i + closing + 1, true
}
