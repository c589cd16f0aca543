// Package scoring computes the weighted composite score and risk-flag
// penalties for canonical profiles.
package scoring

import (
	"strings"
	"time"

	"github.com/scoutline/sourcing-cli/internal/email"
	"github.com/scoutline/sourcing-cli/internal/model"
)

const (
	experienceCap  = 90
	maxYearsActive = 15
	minYearsActive = 1
)

// Engine scores canonical profiles against search criteria.
type Engine struct {
	weights Weights
	now     func() time.Time
}

// NewEngine creates a scoring engine.
func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights, now: time.Now}
}

// WithNow sets a fixed clock for testing.
func (e *Engine) WithNow(fn func() time.Time) *Engine {
	e.now = fn
	return e
}

// Score computes the full breakdown for one profile. Risk penalties come from
// the weighted per-flag table; the flat per-flag penalty the system once used
// is retired.
func (e *Engine) Score(profile model.CanonicalProfile, criteria model.SearchCriteria) model.ScoreBreakdown {
	now := e.now()

	b := model.ScoreBreakdown{
		SkillMatch:  e.scoreSkillMatch(profile, criteria),
		Experience:  scoreExperience(profile),
		Reputation:  scoreReputation(profile),
		Freshness:   scoreFreshness(profile, now),
		SocialProof: e.scoreSocialProof(profile),
	}

	weighted := b.SkillMatch*e.weights.SkillMatch/100 +
		b.Experience*e.weights.Experience/100 +
		b.Reputation*e.weights.Reputation/100 +
		b.Freshness*e.weights.Freshness/100 +
		b.SocialProof*e.weights.SocialProof/100

	b.RiskFlags = e.riskFlags(profile, weighted, now)

	penalty := 0.0
	for _, flag := range b.RiskFlags {
		penalty += e.weights.Penalties[flag]
	}

	b.FinalScore = clamp(weighted-penalty, 0, 100)
	return b
}

// scoreSkillMatch is proportional to how many criteria terms the profile's
// skills cover, directly or through the synonym map. No criteria terms gives
// a neutral 50 so skill weight doesn't zero out keyword-free searches.
func (e *Engine) scoreSkillMatch(profile model.CanonicalProfile, criteria model.SearchCriteria) float64 {
	terms := criteria.Terms()
	if len(terms) == 0 {
		return 50
	}

	skills := make(map[string]bool, len(profile.Skills))
	for _, s := range profile.Skills {
		skills[strings.ToLower(strings.TrimSpace(s))] = true
	}

	matched := 0
	for _, term := range terms {
		if e.termMatches(term, skills) {
			matched++
		}
	}

	return clamp(float64(matched)/float64(len(terms))*100, 0, 100)
}

// termMatches checks a term against the skill set directly, by substring, and
// through synonyms in both directions.
func (e *Engine) termMatches(term string, skills map[string]bool) bool {
	if skills[term] {
		return true
	}
	for skill := range skills {
		if strings.Contains(skill, term) || strings.Contains(term, skill) {
			return true
		}
	}
	for _, syn := range e.weights.Synonyms[term] {
		if skills[strings.ToLower(syn)] {
			return true
		}
	}
	// Reverse direction: a profile skill whose synonyms include the term.
	for skill := range skills {
		for _, syn := range e.weights.Synonyms[skill] {
			if strings.ToLower(syn) == term {
				return true
			}
		}
	}
	return false
}

// scoreExperience derives from years active (bounded 1-15) plus a repository
// volume signal, capped at 90.
func scoreExperience(profile model.CanonicalProfile) float64 {
	years := profile.YearsActive
	if years < minYearsActive {
		years = minYearsActive
	}
	if years > maxYearsActive {
		years = maxYearsActive
	}

	score := float64(years) * 5 // 5..75
	score += float64(min(profile.RepoCount, 15))
	return clamp(score, 0, experienceCap)
}

// scoreReputation derives from followers and stars, capped at 100.
func scoreReputation(profile model.CanonicalProfile) float64 {
	score := float64(profile.Followers)/10 + float64(profile.Stars)/20
	return clamp(score, 0, 100)
}

// scoreFreshness is a step function of days since last activity. Unknown
// activity scores the floor.
func scoreFreshness(profile model.CanonicalProfile, now time.Time) float64 {
	days := profile.DaysSinceActive(now)
	switch {
	case days < 0:
		return 20
	case days < 7:
		return 100
	case days < 30:
		return 80
	case days < 90:
		return 60
	case days < 180:
		return 40
	default:
		return 20
	}
}

// scoreSocialProof derives from follower counts plus a small bump for a
// trustworthy contact address, capped at 100.
func (e *Engine) scoreSocialProof(profile model.CanonicalProfile) float64 {
	score := float64(profile.Followers) / 5
	if profile.Email != "" {
		cls := email.Classify(profile.Email, "", profile)
		score += float64(cls.Score) / 10
	}
	return clamp(score, 0, 100)
}

// riskFlags detects data-quality concerns independently of the component
// scores.
func (e *Engine) riskFlags(profile model.CanonicalProfile, weighted float64, now time.Time) []model.RiskFlag {
	var flags []model.RiskFlag

	if days := profile.DaysSinceActive(now); days > 730 {
		flags = append(flags, model.RiskInactive)
	}
	if len(profile.Skills) < 3 {
		flags = append(flags, model.RiskFewSkills)
	}
	if len(profile.Summary) < 50 {
		flags = append(flags, model.RiskThinSummary)
	}
	if profile.YearsActive < 1 {
		flags = append(flags, model.RiskJunior)
	}
	if strings.TrimSpace(profile.Location) == "" {
		flags = append(flags, model.RiskNoLocation)
	}
	if weighted < 30 {
		flags = append(flags, model.RiskLowOverallScore)
	}

	return flags
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
