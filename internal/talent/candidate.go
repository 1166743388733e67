package talent

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	ListPath = "/candidates"
)

type ListParams struct {
	Text       string `yaml:"text"`
	Profession string `yaml:"profession"`
	Limit      int    `yaml:"limit" mapstructure:"limit"`
}

type Candidates struct {
	Items []*Candidate
}

// Candidate is a directory summary record. Skills, Summary and SearchText are
// enrichment fields: absent after the initial list load and filled in later by
// a per-record detail fetch.
type Candidate struct {
	ID              string         `json:"id,omitempty"`
	Name            string         `json:"name,omitempty"`
	Profession      string         `json:"profession,omitempty"`
	YearsExperience float64        `json:"years_experience,omitempty" mapstructure:"years_experience"`
	CategoryYears   map[string]float64 `json:"category_years,omitempty" mapstructure:"category_years"`
	ResumeURL       string         `json:"resume_url,omitempty" mapstructure:"resume_url"`
	CreatedAt       string         `json:"created_at,omitempty" mapstructure:"created_at"`

	Skills     []string `json:"skills,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	SearchText string   `json:"search_text,omitempty" mapstructure:"search_text"`
}

// Enrichment is an identity-keyed partial carrying only the fields filled in
// by a detail fetch. Merged into the store, never applied wholesale.
type Enrichment struct {
	ID         string
	Skills     []string
	Summary    string
	SearchText string
}

type CandidateDetail struct {
	ID         string             `json:"id,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	Skills     []string           `json:"skills,omitempty"`
	Experience []ExperienceEntry  `json:"experience,omitempty"`
	Education  []EducationEntry   `json:"education,omitempty"`
	Contacts   []string           `json:"contacts,omitempty"`
	CreatedAt  string             `json:"created_at,omitempty" mapstructure:"created_at"`
	UpdatedAt  string             `json:"updated_at,omitempty" mapstructure:"updated_at"`
}

type ExperienceEntry struct {
	Title        string   `json:"title,omitempty"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	Bullets      []string `json:"bullets,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

type EducationEntry struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
}

func (c *Client) list(params *ListParams) (*Candidates, error) {
	var candidates []*Candidate

	q := url.Values{}
	if params != nil {
		if params.Text != "" {
			q.Set("text", params.Text)
		}
		if params.Profession != "" {
			q.Set("profession", params.Profession)
		}
		limit := params.Limit
		if limit <= 0 {
			// Set limit max as possible. It should be faster.
			limit = pageLimit
		}
		q.Set("limit", strconv.Itoa(limit))
	} else {
		q.Set("limit", strconv.Itoa(pageLimit))
	}

	apiURLList := fmt.Sprintf("%s%s", c.APIURL, ListPath)

	items, err := c.GetItems(apiURLList, q)
	if err != nil {
		return nil, err
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &candidates,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	decoder.Decode(items)

	return &Candidates{
		Items: candidates,
	}, nil
}

func (c *Client) getDetail(id string) (*CandidateDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("candidate id is required")
	}

	apiURL := fmt.Sprintf("%s%s/%s", c.APIURL, ListPath, id)

	var detail *CandidateDetail
	if err := c.getJSON(apiURL, nil, &detail); err != nil {
		return nil, err
	}

	if detail == nil {
		return nil, fmt.Errorf("empty detail response for candidate %s", id)
	}

	if detail.ID == "" {
		detail.ID = id
	}

	return detail, nil
}

func (c *Client) deleteCandidate(id string) error {
	if id == "" {
		return fmt.Errorf("candidate id is required")
	}

	return c.delete(fmt.Sprintf("%s%s/%s", c.APIURL, ListPath, id))
}

// CreatedTime parses the record's creation timestamp. The second return is
// false when the timestamp is missing or malformed.
func (c *Candidate) CreatedTime() (time.Time, bool) {
	if c.CreatedAt == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02"} {
		if t, err := time.Parse(layout, c.CreatedAt); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Hydrated reports whether the enrichment fields have been filled in.
func (c *Candidate) Hydrated() bool {
	return c.SearchText != ""
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

func (c *Candidates) IDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, candidate := range c.Items {
		ids = append(ids, candidate.ID)
	}
	return ids
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByProfession groups a short summary of the list by profession.
func (c *Candidates) ReportByProfession() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, candidate := range c.Items {
		key := candidate.Profession
		if key == "" {
			key = "unknown"
		}
		entry := map[string]string{
			"name":       candidate.Name,
			"experience": fmt.Sprintf("%g years", candidate.YearsExperience),
			"resume":     candidate.ResumeURL,
		}
		if breakdown := formatCategoryYears(candidate.CategoryYears); breakdown != "" {
			entry["by_category"] = breakdown
		}
		report[key] = append(report[key], entry)
	}
	return report
}

// formatCategoryYears renders the per-category experience breakdown with
// stable key order.
func formatCategoryYears(years map[string]float64) string {
	if len(years) == 0 {
		return ""
	}

	categories := make([]string, 0, len(years))
	for category := range years {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, fmt.Sprintf("%s: %gy", category, years[category]))
	}
	return strings.Join(parts, ", ")
}
