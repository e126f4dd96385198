package triage

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
)

func TestNarrative_FullRecord(t *testing.T) {
	r := Record{
		Symptoms:           []string{"fever", "neck stiffness"},
		RiskPattern:        "Possible meningitis signs",
		RiskLevel:          risk.High,
		RecommendedActions: []string{"Keep patient cool", "Arrange transport"},
		ReferralNeeded:     true,
		UrgentAlert:        true,
		Mode:               mode.Grounded,
		RetrievedContexts: []ContextSummary{
			{Title: "Fever with neck stiffness", Risk: risk.High, Referral: true},
		},
		GraphInsights: []string{"meningitis"},
	}

	n := r.Narrative()
	if n.Subjective != "Reported symptoms: fever, neck stiffness." {
		t.Errorf("subjective = %q", n.Subjective)
	}
	if n.Objective != "Guidelines consulted: Fever with neck stiffness (High risk, referral)." {
		t.Errorf("objective = %q", n.Objective)
	}
	want := "Risk level High. Possible pattern: Possible meningitis signs. Related risks: meningitis. Urgent alert raised."
	if n.Assessment != want {
		t.Errorf("assessment = %q", n.Assessment)
	}
	if n.Plan != "Keep patient cool; Arrange transport. Arrange immediate referral to a health facility." {
		t.Errorf("plan = %q", n.Plan)
	}
}

func TestNarrative_EmptyRecord(t *testing.T) {
	r := Record{RiskLevel: risk.Low, Mode: mode.Fallback}

	n := r.Narrative()
	if n.Subjective != "No symptoms reported." || n.Objective != "No guideline retrieved." {
		t.Errorf("unexpected narrative: %+v", n)
	}
	if !strings.Contains(n.Assessment, "No specific pattern identified.") {
		t.Errorf("assessment = %q", n.Assessment)
	}
	if n.Plan != "No specific actions. No referral needed." {
		t.Errorf("plan = %q", n.Plan)
	}
}

func TestNarrative_FallbackModeIsVisible(t *testing.T) {
	r := Record{
		RiskLevel:         risk.Medium,
		Mode:              mode.Fallback,
		RetrievedContexts: []ContextSummary{{Title: "Cough", Risk: risk.Low}},
		ReferralNeeded:    true,
	}

	n := r.Narrative()
	if !strings.HasSuffix(n.Objective, "general safe-triage applied.") {
		t.Errorf("objective = %q", n.Objective)
	}
	if !strings.HasSuffix(n.Plan, "Refer to a health facility.") {
		t.Errorf("plan = %q", n.Plan)
	}
	if n != r.Narrative() {
		t.Error("narrative must be reproducible")
	}
}
