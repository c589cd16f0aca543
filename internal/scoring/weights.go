package scoring

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// Weights configures the composite score: component weights (summing to 100),
// per-flag risk penalties, and the skill synonym map.
type Weights struct {
	SkillMatch  float64 `yaml:"skill_match"`
	Experience  float64 `yaml:"experience"`
	Reputation  float64 `yaml:"reputation"`
	Freshness   float64 `yaml:"freshness"`
	SocialProof float64 `yaml:"social_proof"`

	Penalties map[model.RiskFlag]float64 `yaml:"penalties"`
	Synonyms  map[string][]string        `yaml:"synonyms"`
}

// DefaultWeights returns the compiled-in scoring configuration.
func DefaultWeights() Weights {
	return Weights{
		SkillMatch:  40,
		Experience:  20,
		Reputation:  15,
		Freshness:   10,
		SocialProof: 5,
		Penalties: map[model.RiskFlag]float64{
			model.RiskInactive:        15,
			model.RiskFewSkills:       10,
			model.RiskThinSummary:     8,
			model.RiskJunior:          12,
			model.RiskNoLocation:      5,
			model.RiskLowOverallScore: 20,
		},
		Synonyms: map[string][]string{
			"ai":               {"machine learning", "ml", "artificial intelligence", "deep learning"},
			"machine learning": {"ai", "ml", "deep learning"},
			"js":               {"javascript", "node.js", "node", "typescript"},
			"javascript":       {"js", "node.js", "node", "typescript"},
			"golang":           {"go"},
			"go":               {"golang"},
			"react":            {"reactjs", "react.js"},
			"python":           {"django", "flask"},
			"kubernetes":       {"k8s"},
			"postgres":         {"postgresql"},
			"aws":              {"amazon web services"},
			"devops":           {"sre", "infrastructure"},
		},
	}
}

// LoadWeights reads a YAML weights file, layered over the defaults: absent
// keys keep their default values.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, eris.Wrap(err, "scoring: read weights file")
	}

	var overlay struct {
		SkillMatch  *float64                   `yaml:"skill_match"`
		Experience  *float64                   `yaml:"experience"`
		Reputation  *float64                   `yaml:"reputation"`
		Freshness   *float64                   `yaml:"freshness"`
		SocialProof *float64                   `yaml:"social_proof"`
		Penalties   map[model.RiskFlag]float64 `yaml:"penalties"`
		Synonyms    map[string][]string        `yaml:"synonyms"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return w, eris.Wrap(err, "scoring: parse weights file")
	}

	if overlay.SkillMatch != nil {
		w.SkillMatch = *overlay.SkillMatch
	}
	if overlay.Experience != nil {
		w.Experience = *overlay.Experience
	}
	if overlay.Reputation != nil {
		w.Reputation = *overlay.Reputation
	}
	if overlay.Freshness != nil {
		w.Freshness = *overlay.Freshness
	}
	if overlay.SocialProof != nil {
		w.SocialProof = *overlay.SocialProof
	}
	for flag, penalty := range overlay.Penalties {
		w.Penalties[flag] = penalty
	}
	for term, syns := range overlay.Synonyms {
		w.Synonyms[term] = syns
	}

	return w, nil
}
