package filtering

import (
	"strings"
	"time"

	"github.com/avoronov/talentdir/internal/talent"
)

// combinator describes how the values within one multi-value dimension
// combine. Dimensions themselves are always conjunctive with each other.
type combinator int

const (
	anyOf combinator = iota
	allOf
	noneOf
)

// dimension binds one filter axis to its combinator and per-term predicate,
// keeping the predicate composition data-driven instead of hand-woven.
type dimension struct {
	name  string
	mode  combinator
	terms func(s *State) []string
	match func(c *talent.Candidate, term string) bool
}

var dimensions = []dimension{
	{
		name:  "profession",
		mode:  anyOf,
		terms: func(s *State) []string { return s.Professions },
		match: func(c *talent.Candidate, term string) bool { return MatchWholeWord(c.Profession, term) },
	},
	{
		name:  "skills",
		mode:  allOf,
		terms: func(s *State) []string { return s.Skills },
		match: hasSkill,
	},
	{
		name:  "keywords",
		mode:  allOf,
		terms: func(s *State) []string { return s.Keywords },
		match: func(c *talent.Candidate, term string) bool { return containsFold(searchBlob(c), term) },
	},
	{
		name:  "excluded_keywords",
		mode:  noneOf,
		terms: func(s *State) []string { return s.ExcludedKeywords },
		match: func(c *talent.Candidate, term string) bool { return containsFold(searchBlob(c), term) },
	},
}

// Apply is the pure filter function: records in, filtered subset out.
// Predicate order does not affect the result. With an empty state, the all
// window and an empty query the input comes back unchanged.
func Apply(records []*talent.Candidate, state *State, window TimeWindow, query string, now time.Time) []*talent.Candidate {
	query = strings.TrimSpace(query)

	out := make([]*talent.Candidate, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if !withinWindow(record, window, now) {
			continue
		}
		if !Matches(record, state) {
			continue
		}
		if query != "" && !containsFold(searchBlob(record), query) {
			continue
		}
		out = append(out, record)
	}

	return out
}

// Matches evaluates every dimension of the state against one record.
func Matches(c *talent.Candidate, state *State) bool {
	if state == nil {
		return true
	}

	if !withinExperience(c, state) {
		return false
	}

	for _, dim := range dimensions {
		terms := cleaned(dim.terms(state))
		if len(terms) == 0 {
			continue
		}
		if !applyCombinator(c, dim, terms) {
			return false
		}
	}

	return true
}

func applyCombinator(c *talent.Candidate, dim dimension, terms []string) bool {
	switch dim.mode {
	case anyOf:
		for _, term := range terms {
			if dim.match(c, term) {
				return true
			}
		}
		return false
	case allOf:
		for _, term := range terms {
			if !dim.match(c, term) {
				return false
			}
		}
		return true
	case noneOf:
		for _, term := range terms {
			if dim.match(c, term) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// withinExperience checks the inclusive bounds, treating missing years as 0.
func withinExperience(c *talent.Candidate, state *State) bool {
	years := c.YearsExperience
	if years < 0 {
		years = 0
	}
	if state.ExperienceMin != nil && years < *state.ExperienceMin {
		return false
	}
	if state.ExperienceMax != nil && years > *state.ExperienceMax {
		return false
	}
	return true
}
