// Package triage defines the per-request assessment and the final triage record.
package triage

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
)

// NoMatchPattern is the pattern a grounded classification reports when no guideline fits.
const NoMatchPattern = "No clear matching pattern in guidelines"

// Assessment is the validated output of risk classification.
type Assessment struct {
	RiskPattern        string
	RiskLevel          risk.Level
	RecommendedActions []string
	ReferralNeeded     bool
}

// ContextSummary is the caller-facing view of a retrieved guideline.
type ContextSummary struct {
	Title    string     `json:"title"`
	Risk     risk.Level `json:"risk"`
	Referral bool       `json:"referral"`
}

// Record is the final output of the triage pipeline.
type Record struct {
	Symptoms           []string         `json:"symptoms"`
	RiskPattern        string           `json:"possible_risk_pattern"`
	RiskLevel          risk.Level       `json:"risk_level"`
	RecommendedActions []string         `json:"recommended_actions"`
	ReferralNeeded     bool             `json:"referral_needed"`
	UrgentAlert        bool             `json:"urgent_alert"`
	Mode               mode.Mode        `json:"guideline_mode"`
	RetrievedContexts  []ContextSummary `json:"retrieved_contexts"`
	GraphInsights      []string         `json:"graph_insights"`
}

// Narrative is a SOAP-style summary derived from a Record.
type Narrative struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Narrative formats the record as a SOAP note. It reads only the record's fields.
func (r *Record) Narrative() Narrative {
	return Narrative{
		Subjective: r.subjective(),
		Objective:  r.objective(),
		Assessment: r.assessment(),
		Plan:       r.plan(),
	}
}

func (r *Record) subjective() string {
	if len(r.Symptoms) == 0 {
		return "No symptoms reported."
	}
	return "Reported symptoms: " + strings.Join(r.Symptoms, ", ") + "."
}

func (r *Record) objective() string {
	if len(r.RetrievedContexts) == 0 {
		return "No guideline retrieved."
	}
	parts := make([]string, len(r.RetrievedContexts))
	for i, c := range r.RetrievedContexts {
		ref := "no referral"
		if c.Referral {
			ref = "referral"
		}
		parts[i] = fmt.Sprintf("%s (%s risk, %s)", c.Title, c.Risk, ref)
	}
	s := "Guidelines consulted: " + strings.Join(parts, "; ") + "."
	if r.Mode == mode.Fallback {
		s += " Guideline match is weak; general safe-triage applied."
	}
	return s
}

func (r *Record) assessment() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level %s.", r.RiskLevel)
	if r.RiskPattern != "" {
		fmt.Fprintf(&b, " Possible pattern: %s.", r.RiskPattern)
	} else {
		b.WriteString(" No specific pattern identified.")
	}
	if len(r.GraphInsights) > 0 {
		fmt.Fprintf(&b, " Related risks: %s.", strings.Join(r.GraphInsights, ", "))
	}
	if r.UrgentAlert {
		b.WriteString(" Urgent alert raised.")
	}
	return b.String()
}

func (r *Record) plan() string {
	var b strings.Builder
	if len(r.RecommendedActions) == 0 {
		b.WriteString("No specific actions.")
	} else {
		b.WriteString(strings.Join(r.RecommendedActions, "; ") + ".")
	}
	switch {
	case r.UrgentAlert:
		b.WriteString(" Arrange immediate referral to a health facility.")
	case r.ReferralNeeded:
		b.WriteString(" Refer to a health facility.")
	default:
		b.WriteString(" No referral needed.")
	}
	return b.String()
}
