package filtering

import "strings"

// State holds one value set per filter dimension. An empty dimension imposes
// no constraint. The time window is deliberately kept outside the state: it
// alone does not make the state "active" (relevance scoring keys off Empty).
type State struct {
	// Professions is OR-combined: any term matching passes.
	Professions []string `json:"professions,omitempty"`
	// Experience bounds are inclusive; nil means unbounded.
	ExperienceMin *float64 `json:"experience_min,omitempty" mapstructure:"experience_min"`
	ExperienceMax *float64 `json:"experience_max,omitempty" mapstructure:"experience_max"`
	// Skills is AND-combined: the candidate must carry every one.
	Skills []string `json:"skills,omitempty"`
	// Keywords is AND-combined over the candidate's searchable text.
	Keywords []string `json:"keywords,omitempty"`
	// ExcludedKeywords removes a candidate when any term matches.
	ExcludedKeywords []string `json:"excluded_keywords,omitempty" mapstructure:"excluded_keywords"`
}

// Empty reports whether no dimension constrains the result.
func (s *State) Empty() bool {
	if s == nil {
		return true
	}
	return len(cleaned(s.Professions)) == 0 &&
		s.ExperienceMin == nil &&
		s.ExperienceMax == nil &&
		len(cleaned(s.Skills)) == 0 &&
		len(cleaned(s.Keywords)) == 0 &&
		len(cleaned(s.ExcludedKeywords)) == 0
}

// Clone returns a deep copy so wholesale replacement by the translator never
// aliases a state still referenced elsewhere.
func (s *State) Clone() *State {
	if s == nil {
		return &State{}
	}
	copied := &State{
		Professions:      append([]string(nil), s.Professions...),
		Skills:           append([]string(nil), s.Skills...),
		Keywords:         append([]string(nil), s.Keywords...),
		ExcludedKeywords: append([]string(nil), s.ExcludedKeywords...),
	}
	if s.ExperienceMin != nil {
		v := *s.ExperienceMin
		copied.ExperienceMin = &v
	}
	if s.ExperienceMax != nil {
		v := *s.ExperienceMax
		copied.ExperienceMax = &v
	}
	return copied
}

func cleaned(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.TrimSpace(term) != "" {
			out = append(out, strings.TrimSpace(term))
		}
	}
	return out
}
