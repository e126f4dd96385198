// Package safety is the final gate on every triage result: it strips medication advice
// from recommended actions and raises urgent alerts for high risk or red-flag symptoms.
package safety

import (
	"strings"

	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
)

// blacklist terms mark an action as medication advice.
var blacklist = []string{
	"tablet",
	"capsule",
	"syrup",
	"antibiotic",
	"ibuprofen",
	"paracetamol",
	"medicine",
	"drug",
}

// redFlags force an urgent alert whenever a symptom phrase contains one.
var redFlags = []string{
	"unconscious",
	"severe bleeding",
	"chest pain",
	"shortness of breath",
	"difficulty breathing",
	"confusion",
	"fainting",
	"very high fever",
	"convulsions",
	"pregnancy bleeding",
	"pregnancy severe headache",
	"neck stiffness",
	"blood in vomit",
	"blood in stool",
}

// Sanitize drops every action mentioning a blacklisted term (case-insensitive substring)
// and keeps the rest in order. The result is never nil.
func Sanitize(actions []string) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		if !mentionsMedication(a) {
			out = append(out, a)
		}
	}
	return out
}

func mentionsMedication(action string) bool {
	lower := strings.ToLower(action)
	for _, w := range blacklist {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// RedFlags returns the red-flag terms found in phrases, in lexicon order.
func RedFlags(phrases []string) []string {
	var found []string
	for _, flag := range redFlags {
		for _, p := range phrases {
			if strings.Contains(strings.ToLower(strings.TrimSpace(p)), flag) {
				found = append(found, flag)
				break
			}
		}
	}
	return found
}

// HasRedFlag reports whether any phrase contains a red-flag term.
func HasRedFlag(phrases []string) bool {
	return len(RedFlags(phrases)) > 0
}

// UrgentAlert is true for High risk or when any phrase carries a red flag.
func UrgentAlert(level risk.Level, phrases []string) bool {
	return level == risk.High || HasRedFlag(phrases)
}
