// Package source defines the collector contract shared by every external
// platform and the per-platform implementations behind it.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// Collector fetches and normalizes candidate records from one external
// platform. Implementations must honor the context deadline: when it expires
// mid-run they return whatever they have gathered so far instead of blocking.
type Collector interface {
	// Name returns the unique source identifier (e.g., "github").
	Name() string

	// Collect runs the platform search for the given criteria. It never
	// panics and never returns an error directly: failures are recorded in
	// the outcome so the orchestrator always has one outcome per source.
	Collect(ctx context.Context, criteria model.SearchCriteria) model.SourceOutcome
}

// activityWindow is how recent a profile's last activity must be to count as
// a validity signal on its own.
const activityWindow = 365 * 24 * time.Hour

// minSummaryLen is the shortest bio that counts as non-trivial.
const minSummaryLen = 20

// Viable screens out non-candidate accounts. A record qualifies when it has at
// least one of: a non-trivial bio, an extracted skill, or activity within the
// last year. Organizations and bots are rejected by the collectors before this
// check since that signal is platform-specific.
func Viable(rec model.RawCandidateRecord, now time.Time) bool {
	if len(strings.TrimSpace(rec.Summary)) >= minSummaryLen {
		return true
	}
	if len(rec.Skills) > 0 {
		return true
	}
	if rec.LastActiveAt != nil && now.Sub(*rec.LastActiveAt) <= activityWindow {
		return true
	}
	return false
}

// DedupeByID drops records sharing a platform-native identifier, keeping the
// first occurrence. Per-platform only; cross-source resolution belongs to the
// dedup engine.
func DedupeByID(records []model.RawCandidateRecord) []model.RawCandidateRecord {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		key := strings.ToLower(rec.SourceID)
		if key == "" || !seen[key] {
			seen[key] = true
			out = append(out, rec)
		}
	}
	return out
}

// Cap truncates records to the per-source retention limit, preserving the
// platform's own ranking order.
func Cap(records []model.RawCandidateRecord, limit int) []model.RawCandidateRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

// Deadline reports whether the collector should stop issuing work.
func Deadline(ctx context.Context) bool {
	return ctx.Err() != nil
}
