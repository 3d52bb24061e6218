package engine

import (
	"regexp"
	"strings"
)

// User-Agent string used by the fallback HTTP client.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// SanitizeQuestion normalizes a form question for use as a cache key:
// lowercased, trimmed, quotes/backslashes/control characters removed,
// newlines collapsed to a single space, trailing commas stripped.
// Idempotent: SanitizeQuestion(SanitizeQuestion(q)) == SanitizeQuestion(q).
func SanitizeQuestion(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	var b strings.Builder
	b.Grow(len(q))
	for _, r := range q {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r == '"' || r == '\\':
			// dropped
		case r < 0x20 || r == 0x7f:
			// control characters dropped
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	return strings.TrimRight(out, ",")
}

// Levenshtein returns the edit distance between a and b.
func Levenshtein(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// BestMatch returns the option with minimum case-insensitive Levenshtein
// distance to text. Returns "" for an empty option list.
func BestMatch(text string, options []string) string {
	best, bestDist := "", -1
	lower := strings.ToLower(text)
	for _, opt := range options {
		d := Levenshtein(lower, strings.ToLower(opt))
		if bestDist < 0 || d < bestDist {
			best, bestDist = opt, d
		}
	}
	return best
}

var numberRe = regexp.MustCompile(`\d+`)

// ExtractNumber returns the first unsigned integer found in s.
func ExtractNumber(s string) (int, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n := 0
	for _, c := range m {
		n = n*10 + int(c-'0')
	}
	return n, true
}

// StripFences removes markdown code fences from LLM output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```html")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NormalizeLink strips the query string and fragment from a posting URL so
// the same job seen with different tracking parameters dedups to one key.
func NormalizeLink(link string) string {
	if idx := strings.IndexAny(link, "?#"); idx >= 0 {
		link = link[:idx]
	}
	return strings.TrimRight(strings.TrimSpace(link), "/")
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
