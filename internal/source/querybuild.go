package source

import (
	"strings"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// QueryKind classifies how a platform query was derived from the criteria.
type QueryKind string

const (
	// KindSkills targets individual skill/language terms.
	KindSkills QueryKind = "skills"
	// KindStack combines multiple technology terms into one query.
	KindStack QueryKind = "stack"
	// KindRole targets role/title terms.
	KindRole QueryKind = "role"
	// KindCatchAll falls back to the free-text query when no structured
	// signal is present.
	KindCatchAll QueryKind = "catch_all"
)

// QuerySpec is one planned platform query. Collectors format the terms into
// their platform's syntax.
type QuerySpec struct {
	Kind  QueryKind
	Terms []string
}

// maxSkillQueries bounds how many single-skill queries one plan emits.
const maxSkillQueries = 3

// PlanQueries derives an ordered query plan from the criteria: per-skill
// queries first, then a combined stack query, then role queries, and a
// catch-all fallback when nothing structured was available. Collectors run
// the plan in order and stop early on quota or deadline.
func PlanQueries(criteria model.SearchCriteria) []QuerySpec {
	var plan []QuerySpec

	terms := criteria.Terms()
	for i, t := range terms {
		if i >= maxSkillQueries {
			break
		}
		plan = append(plan, QuerySpec{Kind: KindSkills, Terms: []string{t}})
	}

	if len(terms) >= 2 {
		plan = append(plan, QuerySpec{Kind: KindStack, Terms: terms[:min(len(terms), 4)]})
	}

	for _, role := range criteria.RoleTypes {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" {
			plan = append(plan, QuerySpec{Kind: KindRole, Terms: []string{role}})
		}
	}

	if len(plan) == 0 {
		q := strings.TrimSpace(criteria.Query)
		if q == "" {
			q = "software developer"
		}
		plan = append(plan, QuerySpec{Kind: KindCatchAll, Terms: []string{q}})
	}

	return plan
}
