package hydrate

import (
	"strings"

	"github.com/avoronov/talentdir/internal/talent"
)

// BuildSearchText flattens a candidate detail into the lower-cased blob used
// purely for free-text matching: summary, experience entries (title, company,
// location, bullet points, technology tags), education and contact values.
func BuildSearchText(detail *talent.CandidateDetail) string {
	if detail == nil {
		return ""
	}

	var parts []string
	add := func(values ...string) {
		for _, value := range values {
			if strings.TrimSpace(value) != "" {
				parts = append(parts, strings.TrimSpace(value))
			}
		}
	}

	add(detail.Summary)

	for _, exp := range detail.Experience {
		add(exp.Title, exp.Company, exp.Location)
		add(exp.Bullets...)
		add(exp.Technologies...)
	}

	for _, edu := range detail.Education {
		add(edu.Institution, edu.Degree, edu.Field)
	}

	add(detail.Contacts...)

	return strings.ToLower(strings.Join(parts, " "))
}
