package apply

import (
	"regexp"
	"strings"
)

// Blacklist matches text against configured terms, case-insensitively and
// word-order-insensitively: "Data Engineer" matches "Engineer, Data" and
// "Data-Engineer". Terms with special tokens (C++, C#, .NET) match literally.
type Blacklist struct {
	patterns [][]*regexp.Regexp // one pattern group per term; all must match
}

var blacklistWordRe = regexp.MustCompile(`[A-Za-z0-9]+`)

// literalTerms are tokens that word-boundary splitting would mangle.
var literalTerms = map[string]string{
	"c++":  `(?i)c\+\+`,
	"c#":   `(?i)c#`,
	".net": `(?i)\.?net\b`,
}

// NewBlacklist compiles the term list. Empty or uncompilable terms are
// skipped.
func NewBlacklist(terms []string) *Blacklist {
	b := &Blacklist{}
	for _, term := range terms {
		if lit, ok := literalTerms[strings.ToLower(strings.TrimSpace(term))]; ok {
			if re, err := regexp.Compile(lit); err == nil {
				b.patterns = append(b.patterns, []*regexp.Regexp{re})
			}
			continue
		}

		var group []*regexp.Regexp
		for _, word := range blacklistWordRe.FindAllString(term, -1) {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
			if err != nil {
				continue
			}
			group = append(group, re)
		}
		if len(group) > 0 {
			b.patterns = append(b.patterns, group)
		}
	}
	return b
}

// Match reports whether any blacklist term matches s (every word of the term
// present, any order).
func (b *Blacklist) Match(s string) bool {
	for _, group := range b.patterns {
		all := true
		for _, re := range group {
			if !re.MatchString(s) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
