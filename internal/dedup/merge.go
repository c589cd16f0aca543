package dedup

import (
	"sort"
	"strings"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// mergeGroup folds a group of records into one canonical profile with
// deterministic field precedence: non-empty beats empty, and among non-empty
// values the most recently active record wins. Skills and source references
// are unioned.
func mergeGroup(g *group) model.CanonicalProfile {
	// Most recently active first; records without a timestamp sort last.
	// Stable so input order breaks ties deterministically.
	recs := make([]model.RawCandidateRecord, len(g.records))
	copy(recs, g.records)
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].LastActiveAt, recs[j].LastActiveAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	var p model.CanonicalProfile
	seenRefs := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if p.Name == "" {
			p.Name = rec.Name
		}
		if p.Title == "" {
			p.Title = rec.Title
		}
		if p.Location == "" {
			p.Location = rec.Location
		}
		if p.Summary == "" {
			p.Summary = rec.Summary
		}
		if p.AvatarURL == "" {
			p.AvatarURL = rec.AvatarURL
		}
		if p.Email == "" {
			p.Email = rec.Email
		}

		// Best-of for numeric signals.
		p.Followers = max(p.Followers, rec.Followers)
		p.Stars = max(p.Stars, rec.Stars)
		p.RepoCount = max(p.RepoCount, rec.RepoCount)
		p.YearsActive = max(p.YearsActive, rec.YearsActive)
		if rec.LastActiveAt != nil && (p.LastActiveAt == nil || rec.LastActiveAt.After(*p.LastActiveAt)) {
			p.LastActiveAt = rec.LastActiveAt
		}

		p.Skills = unionSkills(p.Skills, rec.Skills)
		refKey := rec.Platform + "/" + strings.ToLower(rec.SourceID)
		if !seenRefs[refKey] {
			seenRefs[refKey] = true
			p.Sources = append(p.Sources, model.SourceReference{
				Platform:   rec.Platform,
				ExternalID: rec.SourceID,
				URL:        rec.ProfileURL,
			})
		}
	}

	// The profile id follows the group's first-seen record so repeated runs
	// over the same input produce the same ids.
	first := g.records[0]
	p.ID = first.Platform + ":" + strings.ToLower(first.SourceID)

	p.Provenance = model.MergeProvenance{
		RecordCount: len(g.records),
		MatchedBy:   g.matchedBy,
	}

	return p
}

// unionSkills merges skill lists, deduplicating case-insensitively while
// preserving the first-seen casing and order.
func unionSkills(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range incoming {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		existing = append(existing, strings.TrimSpace(s))
	}
	return existing
}
