package filtering

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/avoronov/talentdir/internal/talent"
)

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// MatchWholeWord reports whether term occurs in haystack as a case-insensitive
// whole-word substring. A boundary is enforced only at the term edges that are
// themselves word characters, so punctuated terms like "c++" or ".net" still
// match sensibly. "IT" matches "IT Manager" but not "Architect".
func MatchWholeWord(haystack, term string) bool {
	hay := strings.ToLower(haystack)
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return false
	}

	first, _ := utf8.DecodeRuneInString(needle)
	last, _ := utf8.DecodeLastRuneInString(needle)

	for start := 0; start <= len(hay); {
		idx := strings.Index(hay[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start

		ok := true
		if isWordChar(first) && idx > 0 {
			prev, _ := utf8.DecodeLastRuneInString(hay[:idx])
			if isWordChar(prev) {
				ok = false
			}
		}
		if ok && isWordChar(last) && idx+len(needle) < len(hay) {
			next, _ := utf8.DecodeRuneInString(hay[idx+len(needle):])
			if isWordChar(next) {
				ok = false
			}
		}

		if ok {
			return true
		}
		start = idx + 1
	}

	return false
}

func containsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// searchBlob builds the lower-cased union of the record's matchable text:
// name, profession, summary, skills and the hydrated search text. Keyword and
// exclusion terms are checked against this.
func searchBlob(c *talent.Candidate) string {
	parts := make([]string, 0, 4+len(c.Skills))
	parts = append(parts, c.Name, c.Profession, c.Summary)
	parts = append(parts, c.Skills...)
	parts = append(parts, c.SearchText)

	return strings.ToLower(strings.Join(parts, " "))
}

// hasSkill reports whether the term case-insensitively matches at least one of
// the candidate's own skill strings as a substring.
func hasSkill(c *talent.Candidate, term string) bool {
	for _, skill := range c.Skills {
		if containsFold(skill, term) {
			return true
		}
	}
	return false
}
