package model

import "time"

// RawCandidateRecord is one source's view of one person. Each collector maps
// its platform-native payload into this type at the boundary; nothing
// downstream ever sees a platform-specific shape.
type RawCandidateRecord struct {
	// SourceID is the platform-native identifier (e.g., a GitHub login or a
	// Stack Exchange user id) used for per-platform dedup and upsert keys.
	SourceID string `json:"source_id"`
	Platform string `json:"platform"`

	Name       string   `json:"name"`
	Title      string   `json:"title,omitempty"`
	Location   string   `json:"location,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	AvatarURL  string   `json:"avatar_url,omitempty"`
	ProfileURL string   `json:"profile_url,omitempty"`
	Email      string   `json:"email,omitempty"`
	Skills     []string `json:"skills,omitempty"`

	// Social / volume signals used by the scorer. Zero means unknown.
	Followers int `json:"followers,omitempty"`
	Stars     int `json:"stars,omitempty"`
	RepoCount int `json:"repo_count,omitempty"`

	YearsActive  int        `json:"years_active,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// SourceReference records where a canonical profile's data came from.
type SourceReference struct {
	Platform   string `json:"platform"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url,omitempty"`
}

// SourceOutcome wraps one source's result for a run. The orchestrator
// guarantees exactly one SourceOutcome per requested source, populated even on
// total failure.
type SourceOutcome struct {
	Source     string               `json:"source"`
	Records    []RawCandidateRecord `json:"records"`
	TotalFound int                  `json:"total_found"`
	Error      string               `json:"error,omitempty"`
	ElapsedMS  int64                `json:"elapsed_ms"`
}

// Succeeded reports whether the source completed without a recorded error.
// Partial results cut short by a rate limit still count as success.
func (o SourceOutcome) Succeeded() bool {
	return o.Error == ""
}
