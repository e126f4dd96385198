package sanjeevani

import (
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
)

// RiskLevel is a triage risk level.
type RiskLevel string

// Risk levels in ascending order of severity.
const (
	RiskLow    RiskLevel = RiskLevel(risk.Low)
	RiskMedium RiskLevel = RiskLevel(risk.Medium)
	RiskHigh   RiskLevel = RiskLevel(risk.High)
)

// Mode tells whether the classification was anchored to retrieved guidelines.
type Mode string

// Guideline modes.
const (
	ModeGrounded Mode = Mode(mode.Grounded)
	ModeFallback Mode = Mode(mode.Fallback)
)

// Guideline is a single static guidance entry.
type Guideline struct {
	Title       string    `json:"title"`
	Text        string    `json:"guideline"`
	Risk        RiskLevel `json:"risk"`
	Referral    bool      `json:"referral"`
	SafeActions []string  `json:"safe_actions,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// RetrievedContext is a guideline that informed a triage record.
type RetrievedContext struct {
	Title    string    `json:"title"`
	Risk     RiskLevel `json:"risk"`
	Referral bool      `json:"referral"`
}

// Narrative is a SOAP-style summary of a triage record.
type Narrative struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Record is the triage result for one case.
type Record struct {
	Symptoms           []string           `json:"symptoms"`
	RiskPattern        string             `json:"possible_risk_pattern"`
	RiskLevel          RiskLevel          `json:"risk_level"`
	RecommendedActions []string           `json:"recommended_actions"`
	ReferralNeeded     bool               `json:"referral_needed"`
	UrgentAlert        bool               `json:"urgent_alert"`
	Mode               Mode               `json:"guideline_mode"`
	RetrievedContexts  []RetrievedContext `json:"retrieved_contexts"`
	GraphInsights      []string           `json:"graph_insights"`
	SoapNote           Narrative          `json:"soap_note"`
}

// Result is the outcome of one case in AnalyzeAsync or AnalyzeBatch.
type Result struct {
	Record Record
	Err    error
}

// --- converters ---

func guidelineToDomain(g Guideline) guideline.Entry {
	return guideline.Entry{
		Title:       g.Title,
		Guideline:   g.Text,
		Risk:        risk.Level(g.Risk),
		Referral:    g.Referral,
		SafeActions: g.SafeActions,
		Tags:        g.Tags,
	}
}

func guidelineFromDomain(e guideline.Entry) Guideline {
	return Guideline{
		Title:       e.Title,
		Text:        e.Guideline,
		Risk:        RiskLevel(e.Risk),
		Referral:    e.Referral,
		SafeActions: e.SafeActions,
		Tags:        e.Tags,
	}
}

func recordFromDomain(r *domtriage.Record) Record {
	contexts := make([]RetrievedContext, len(r.RetrievedContexts))
	for i, c := range r.RetrievedContexts {
		contexts[i] = RetrievedContext{Title: c.Title, Risk: RiskLevel(c.Risk), Referral: c.Referral}
	}
	n := r.Narrative()
	return Record{
		Symptoms:           r.Symptoms,
		RiskPattern:        r.RiskPattern,
		RiskLevel:          RiskLevel(r.RiskLevel),
		RecommendedActions: r.RecommendedActions,
		ReferralNeeded:     r.ReferralNeeded,
		UrgentAlert:        r.UrgentAlert,
		Mode:               Mode(r.Mode),
		RetrievedContexts:  contexts,
		GraphInsights:      r.GraphInsights,
		SoapNote: Narrative{
			Subjective: n.Subjective,
			Objective:  n.Objective,
			Assessment: n.Assessment,
			Plan:       n.Plan,
		},
	}
}
