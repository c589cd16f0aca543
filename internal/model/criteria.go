package model

import (
	"strings"
	"time"
)

// Default bounds applied by the orchestrator when criteria omit them.
const (
	DefaultTimeBudgetSecs = 60
	DefaultLimit          = 50
	MaxSources            = 4
	MaxRecordsPerSource   = 20
)

// SearchCriteria is the structured query the pipeline consumes. It is produced
// upstream (query understanding is a separate collaborator) and treated as
// immutable once handed to the orchestrator.
type SearchCriteria struct {
	Query          string   `json:"query"`
	Location       string   `json:"location,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	RoleTypes      []string `json:"role_types,omitempty"`
	Sources        []string `json:"sources"`
	TimeBudgetSecs int      `json:"time_budget_secs,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

// TimeBudget returns the orchestration deadline duration, falling back to the
// default when the caller did not set one.
func (c SearchCriteria) TimeBudget() time.Duration {
	secs := c.TimeBudgetSecs
	if secs <= 0 {
		secs = DefaultTimeBudgetSecs
	}
	return time.Duration(secs) * time.Second
}

// ResultLimit returns the maximum number of candidates to return.
func (c SearchCriteria) ResultLimit() int {
	if c.Limit <= 0 {
		return DefaultLimit
	}
	return c.Limit
}

// Terms returns the combined skill and keyword terms, lowercased and with
// blanks removed. Used by collectors for query construction and by the scorer
// for skill matching.
func (c SearchCriteria) Terms() []string {
	out := make([]string, 0, len(c.Skills)+len(c.Keywords))
	seen := make(map[string]bool)
	for _, t := range append(append([]string{}, c.Skills...), c.Keywords...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Validate checks that the criteria can drive a run at all. Failures here are
// rejected before any network activity starts.
func (c SearchCriteria) Validate() error {
	if strings.TrimSpace(c.Query) == "" && len(c.Terms()) == 0 {
		return NewValidationError("criteria: query and skills/keywords are all empty")
	}
	if len(c.Sources) == 0 {
		return NewValidationError("criteria: no sources selected")
	}
	return nil
}
