// Package matcher implements the keyword policy applied to candidate posts.
package matcher

import "strings"

// Matcher is a case-insensitive substring predicate over a fixed keyword
// list. It has no state beyond the lower-cased keywords and no error
// conditions.
type Matcher struct {
	keywords []string
}

func New(keywords []string) *Matcher {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		lowered = append(lowered, kw)
	}
	return &Matcher{keywords: lowered}
}

// Matches reports whether any keyword is a substring of the lower-cased
// input.
func (m *Matcher) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
