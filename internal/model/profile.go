package model

import "time"

// MergeProvenance records how a canonical profile was assembled.
type MergeProvenance struct {
	RecordCount int      `json:"record_count"`
	MatchedBy   []string `json:"matched_by,omitempty"` // e.g., "platform_id:github/asmith", "name_location"
}

// CanonicalProfile is a single deduplicated identity merged from one or more
// raw records. Profiles are never merged further after creation within a run.
type CanonicalProfile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Title      string   `json:"title,omitempty"`
	Location   string   `json:"location,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	AvatarURL  string   `json:"avatar_url,omitempty"`
	Email      string   `json:"email,omitempty"`
	Skills     []string `json:"skills,omitempty"`

	Followers   int        `json:"followers,omitempty"`
	Stars       int        `json:"stars,omitempty"`
	RepoCount   int        `json:"repo_count,omitempty"`
	YearsActive int        `json:"years_active,omitempty"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	Sources    []SourceReference `json:"sources"`
	Provenance MergeProvenance   `json:"merge_provenance"`

	// Score is attached by the scoring engine after dedup.
	Score *ScoreBreakdown `json:"score,omitempty"`
}

// DaysSinceActive returns whole days since the profile's last recorded
// activity, or -1 when no activity timestamp is known.
func (p CanonicalProfile) DaysSinceActive(now time.Time) int {
	if p.LastActiveAt == nil {
		return -1
	}
	return int(now.Sub(*p.LastActiveAt).Hours() / 24)
}
