// Package email scores an email address's trustworthiness for outreach from
// domain and local-part heuristics. Pure function, no network.
package email

import (
	"strings"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// Level buckets the confidence score.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Type categorizes what kind of inbox the address likely is.
type Type string

const (
	TypePersonal    Type = "personal"
	TypeWork        Type = "work"
	TypeGeneric     Type = "generic"
	TypeMailingList Type = "mailing_list"
)

// Classification is the classifier's verdict.
type Classification struct {
	Score int   `json:"score"` // 0-100
	Level Level `json:"level"`
	Type  Type  `json:"type"`
}

// mailingListPatterns are local-part fragments that mark automated or shared
// list addresses.
var mailingListPatterns = []string{
	"no-reply", "noreply", "donotreply", "mailer-daemon",
	"newsletter", "list-", "-list", "digest", "bounce",
}

// personalDomains are webmail providers where the address belongs to an
// individual.
var personalDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"outlook.com":    true,
	"hotmail.com":    true,
	"icloud.com":     true,
	"me.com":         true,
	"proton.me":      true,
	"protonmail.com": true,
	"fastmail.com":   true,
	"gmx.com":        true,
	"aol.com":        true,
}

// genericCompanyDomains are large-company domains where a bare address is
// more likely a shared inbox than a person.
var genericCompanyDomains = map[string]bool{
	"amazon.com":    true,
	"google.com":    true,
	"microsoft.com": true,
	"apple.com":     true,
	"meta.com":      true,
	"facebook.com":  true,
	"ibm.com":       true,
	"oracle.com":    true,
	"salesforce.com": true,
}

// Classify scores an email address given the platform it came from and the
// profile it belongs to. Platform is accepted for parity with the collector
// contract; current heuristics are platform-independent.
func Classify(address, platform string, profile model.CanonicalProfile) Classification {
	_ = platform

	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || !strings.Contains(address, "@") {
		return Classification{Score: 0, Level: LevelLow, Type: TypeGeneric}
	}

	parts := strings.SplitN(address, "@", 2)
	local, domain := parts[0], parts[1]

	for _, p := range mailingListPatterns {
		if strings.Contains(local, p) {
			return Classification{Score: 10, Level: LevelLow, Type: TypeMailingList}
		}
	}

	switch {
	case personalDomains[domain]:
		if localContainsName(local, profile.Name) {
			return Classification{Score: 90, Level: LevelHigh, Type: TypePersonal}
		}
		return Classification{Score: 60, Level: LevelMedium, Type: TypePersonal}

	case genericCompanyDomains[domain]:
		return Classification{Score: 30, Level: LevelLow, Type: TypeGeneric}

	case strings.Contains(domain, "."):
		// Unrecognized organization domain: a direct work address.
		return Classification{Score: 85, Level: LevelHigh, Type: TypeWork}

	default:
		return Classification{Score: 50, Level: LevelMedium, Type: TypeGeneric}
	}
}

// localContainsName reports whether the local part embeds a fragment of the
// profile's name ("asmith" for "A Smith", "jane.doe" for "Jane Doe").
func localContainsName(local, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, frag := range strings.Fields(name) {
		if len(frag) >= 3 && strings.Contains(local, frag) {
			return true
		}
	}
	return false
}
