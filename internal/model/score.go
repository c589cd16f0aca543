package model

// RiskFlag marks a data-quality or suitability concern on a profile. Each flag
// carries a fixed penalty weight subtracted from the weighted total.
type RiskFlag string

const (
	RiskInactive        RiskFlag = "inactive"          // no activity for >2 years
	RiskFewSkills       RiskFlag = "few_skills"        // fewer than 3 skills
	RiskThinSummary     RiskFlag = "thin_summary"      // summary under 50 chars
	RiskJunior          RiskFlag = "junior"            // under 1 year experience
	RiskNoLocation      RiskFlag = "no_location"       // no location on record
	RiskLowOverallScore RiskFlag = "low_overall_score" // weighted total under 30
)

// ScoreBreakdown holds the per-dimension scores (each 0-100), detected risk
// flags, and the final weighted-and-penalized score.
type ScoreBreakdown struct {
	SkillMatch  float64    `json:"skill_match"`
	Experience  float64    `json:"experience"`
	Reputation  float64    `json:"reputation"`
	Freshness   float64    `json:"freshness"`
	SocialProof float64    `json:"social_proof"`
	RiskFlags   []RiskFlag `json:"risk_flags,omitempty"`
	FinalScore  float64    `json:"final_score"`
}
