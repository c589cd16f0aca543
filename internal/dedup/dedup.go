// Package dedup collapses raw candidate records that denote the same real
// person into canonical profiles, within and across sources.
package dedup

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// similarityThreshold is the trigram similarity above which two normalized
// names are treated as the same person (given compatible locations).
const similarityThreshold = 0.7

// numericIDRe matches purely numeric platform ids, which are meaningless
// across platforms.
var numericIDRe = regexp.MustCompile(`^[0-9]+$`)

// Engine groups and merges raw records into canonical profiles.
type Engine struct{}

// NewEngine creates a dedup engine.
func NewEngine() *Engine {
	return &Engine{}
}

// group is a working set of records believed to denote one person.
type group struct {
	records   []model.RawCandidateRecord
	matchedBy []string
}

// Deduplicate collapses the input into canonical profiles and reports merge
// metrics. Empty input yields empty output and zero metrics.
func (e *Engine) Deduplicate(records []model.RawCandidateRecord) ([]model.CanonicalProfile, model.DeduplicationMetrics) {
	metrics := model.DeduplicationMetrics{OriginalCount: len(records)}
	if len(records) == 0 {
		return nil, metrics
	}

	var groups []*group
	byPrimary := make(map[string]*group)

	for _, rec := range records {
		key := primaryKey(rec)

		// Pass 1: exact platform-identifier match.
		if key != "" {
			if g, ok := byPrimary[key]; ok {
				g.records = append(g.records, rec)
				g.matchedBy = append(g.matchedBy, "platform_id:"+key)
				metrics.MergeDecisions++
				continue
			}
		}

		// Pass 2: fuzzy name+location match against existing groups.
		if g := findFuzzyMatch(groups, rec); g != nil {
			g.records = append(g.records, rec)
			g.matchedBy = append(g.matchedBy, "name_location")
			metrics.MergeDecisions++
			if key != "" && byPrimary[key] == nil {
				byPrimary[key] = g
			}
			continue
		}

		// New identity.
		g := &group{records: []model.RawCandidateRecord{rec}}
		groups = append(groups, g)
		if key != "" {
			byPrimary[key] = g
		}
	}

	profiles := make([]model.CanonicalProfile, 0, len(groups))
	for _, g := range groups {
		profiles = append(profiles, mergeGroup(g))
		metrics.DuplicatesRemoved += len(g.records) - 1
	}

	metrics.DeduplicatedCount = len(profiles)
	if metrics.OriginalCount > 0 {
		metrics.DeduplicationRate = float64(metrics.DuplicatesRemoved) / float64(metrics.OriginalCount) * 100
	}

	zap.L().Debug("dedup complete",
		zap.Int("original", metrics.OriginalCount),
		zap.Int("profiles", metrics.DeduplicatedCount),
		zap.Int("removed", metrics.DuplicatesRemoved),
	)

	return profiles, metrics
}

// primaryKey returns the cross-platform identity key for a record: its
// platform-native username, lowercased. Numeric ids and URL-path ids only
// identify within their own platform, so they are qualified by platform.
func primaryKey(rec model.RawCandidateRecord) string {
	id := strings.ToLower(strings.TrimSpace(rec.SourceID))
	if id == "" {
		return ""
	}
	if numericIDRe.MatchString(id) || strings.ContainsAny(id, "/.") {
		return rec.Platform + "/" + id
	}
	return id
}

// findFuzzyMatch scans groups for one whose records denote the same person as
// rec: equal normalized names with compatible locations, or high trigram name
// similarity with compatible locations.
func findFuzzyMatch(groups []*group, rec model.RawCandidateRecord) *group {
	name := NormalizeName(rec.Name)
	if name == "" {
		return nil
	}

	for _, g := range groups {
		for _, other := range g.records {
			otherName := NormalizeName(other.Name)
			if otherName == "" {
				continue
			}
			if !LocationsCompatible(rec.Location, other.Location) {
				continue
			}
			if name == otherName || Similarity(name, otherName) >= similarityThreshold {
				return g
			}
		}
	}
	return nil
}
