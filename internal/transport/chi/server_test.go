package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
	healthuc "github.com/kailas-cloud/sanjeevani/internal/usecase/health"
	triageuc "github.com/kailas-cloud/sanjeevani/internal/usecase/triage"
)

// --- Mocks ---

type mockAnalyzer struct {
	record   domtriage.Record
	err      error
	batchErr error
	texts    []string
	tokens   int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, text string) (domtriage.Record, error) {
	m.texts = append(m.texts, text)
	domain.UsageFromContext(ctx).AddGenerationTokens(m.tokens)
	if strings.TrimSpace(text) == "" {
		return domtriage.Record{}, domain.ErrInvalidInput
	}
	return m.record, m.err
}

func (m *mockAnalyzer) AnalyzeBatch(ctx context.Context, texts []string) ([]triageuc.Outcome, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([]triageuc.Outcome, len(texts))
	for i, text := range texts {
		rec, err := m.Analyze(ctx, text)
		out[i] = triageuc.Outcome{Record: rec, Err: err}
	}
	return out, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

func testCorpus(t *testing.T) *guideline.Corpus {
	t.Helper()
	c, err := guideline.NewCorpus([]guideline.Entry{
		{Title: "Dehydration", Guideline: "Sunken eyes and dry mouth.", Risk: risk.Medium,
			SafeActions: []string{"Give ORS"}, Tags: []string{"diarrhoea"}},
		{Title: "Meningitis signs", Guideline: "Fever with neck stiffness.", Risk: risk.High, Referral: true},
	})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return c
}

func sampleRecord() domtriage.Record {
	return domtriage.Record{
		Symptoms:           []string{"fever", "neck stiffness"},
		RiskPattern:        "Meningitis signs",
		RiskLevel:          risk.High,
		RecommendedActions: []string{"Arrange transport"},
		ReferralNeeded:     true,
		UrgentAlert:        true,
		Mode:               mode.Grounded,
		RetrievedContexts:  []domtriage.ContextSummary{{Title: "Meningitis signs", Risk: risk.High, Referral: true}},
		GraphInsights:      []string{"meningitis"},
	}
}

func newTestHandler(t *testing.T, a *mockAnalyzer, cfg HandlerConfig) http.Handler {
	t.Helper()
	h := &mockHealth{report: healthuc.Report{
		Status:     healthuc.Degraded,
		Checks:     map[string]healthuc.CheckResult{"generation": healthuc.CheckError},
		Breakers:   map[string]string{"generation": "open"},
		Retrieval:  "bag_of_words",
		Guidelines: 2,
	}}
	return NewHandler(NewServer(a, testCorpus(t), h), cfg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

// --- Tests ---

func TestAnalyzeCase_Success(t *testing.T) {
	a := &mockAnalyzer{record: sampleRecord(), tokens: 42}
	rr := do(t, newTestHandler(t, a, HandlerConfig{}), "POST", "/analyze_case", `{"text":"fever and neck stiffness"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rr.Header().Get("X-Generation-Tokens") != "42" {
		t.Errorf("X-Generation-Tokens = %q", rr.Header().Get("X-Generation-Tokens"))
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{
		"symptoms", "possible_risk_pattern", "risk_level", "recommended_actions", "referral_needed",
		"urgent_alert", "guideline_mode", "retrieved_contexts", "graph_insights", "soap_note",
	} {
		if _, ok := body[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if body["risk_level"] != "High" || body["urgent_alert"] != true {
		t.Errorf("unexpected body: %v", body)
	}
	soap, _ := body["soap_note"].(map[string]any)
	if soap["subjective"] != "Reported symptoms: fever, neck stiffness." {
		t.Errorf("soap subjective = %v", soap["subjective"])
	}
}

func TestAnalyzeCase_EmptyText_400(t *testing.T) {
	a := &mockAnalyzer{}
	h := newTestHandler(t, a, HandlerConfig{})

	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		rr := do(t, h, "POST", "/analyze_case", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", body, rr.Code)
			continue
		}
		if e := decodeError(t, rr); e.Code != ErrorCodeValidationFailed || e.Message != "text is required" {
			t.Errorf("%s: got %+v", body, e)
		}
	}
	if len(a.texts) != 0 {
		t.Errorf("analyzer called with %v", a.texts)
	}
}

func TestAnalyzeCase_InvalidJSON_400(t *testing.T) {
	rr := do(t, newTestHandler(t, &mockAnalyzer{}, HandlerConfig{}), "POST", "/analyze_case", `{"text":`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeBadRequest {
		t.Errorf("code = %s", e.Code)
	}
}

func TestAnalyzeCase_InternalErrorHidesDetails(t *testing.T) {
	a := &mockAnalyzer{err: errors.New("secret backend detail")}
	rr := do(t, newTestHandler(t, a, HandlerConfig{}), "POST", "/analyze_case", `{"text":"fever"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if e := decodeError(t, rr); e.Message != "internal error" {
		t.Errorf("message leaked: %q", e.Message)
	}
}

func TestAnalyzeCases_MixedResults(t *testing.T) {
	a := &mockAnalyzer{record: sampleRecord()}
	rr := do(t, newTestHandler(t, a, HandlerConfig{}), "POST", "/analyze_cases", `{"texts":["fever"," "]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp BatchAnalyzeResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results", len(resp.Results))
	}
	if resp.Results[0].Result == nil || resp.Results[0].Result.RiskLevel != risk.High {
		t.Errorf("result 0 = %+v", resp.Results[0])
	}
	if resp.Results[1].Error == nil || resp.Results[1].Error.Code != ErrorCodeValidationFailed {
		t.Errorf("result 1 = %+v", resp.Results[1])
	}
	if resp.Results[1].Index != 1 {
		t.Errorf("index = %d", resp.Results[1].Index)
	}
}

func TestAnalyzeCases_TooLarge_400(t *testing.T) {
	a := &mockAnalyzer{batchErr: errors.Join(errors.New("batch size exceeds 1"), domain.ErrInvalidInput)}
	rr := do(t, newTestHandler(t, a, HandlerConfig{}), "POST", "/analyze_cases", `{"texts":["a","b"]}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestAnalyzeCases_Empty_400(t *testing.T) {
	rr := do(t, newTestHandler(t, &mockAnalyzer{}, HandlerConfig{}), "POST", "/analyze_cases", `{"texts":[]}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

func TestListGuidelines(t *testing.T) {
	rr := do(t, newTestHandler(t, &mockAnalyzer{}, HandlerConfig{}), "GET", "/guidelines", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp GuidelineListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || resp.Items[1].Title != "Meningitis signs" || resp.Items[1].Position != 1 {
		t.Errorf("unexpected list: %+v", resp)
	}
	if resp.Items[1].Tags == nil {
		t.Error("tags should be an empty list")
	}
}

func TestGetGuideline(t *testing.T) {
	h := newTestHandler(t, &mockAnalyzer{}, HandlerConfig{})

	rr := do(t, h, "GET", "/guidelines/0", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var g GuidelineResponse
	if err := json.NewDecoder(rr.Body).Decode(&g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Title != "Dehydration" || len(g.SafeActions) != 1 {
		t.Errorf("unexpected guideline: %+v", g)
	}

	if rr := do(t, h, "GET", "/guidelines/7", ""); rr.Code != http.StatusNotFound {
		t.Errorf("out of range: got %d, want 404", rr.Code)
	}
	if rr := do(t, h, "GET", "/guidelines/abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric: got %d, want 400", rr.Code)
	}
}

func TestHealthCheck_DegradedStill200(t *testing.T) {
	rr := do(t, newTestHandler(t, &mockAnalyzer{}, HandlerConfig{}), "GET", "/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Checks["generation"] != "error" || resp.Breakers["generation"] != "open" {
		t.Errorf("unexpected health: %+v", resp)
	}
	if resp.Retrieval != "bag_of_words" || resp.Guidelines != 2 {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestHandler_AuthAndRateLimit(t *testing.T) {
	h := newTestHandler(t, &mockAnalyzer{record: sampleRecord()}, HandlerConfig{
		APIKeys: []string{"secret"},
		Limiter: &fixedLimiter{allow: false},
	})

	if rr := do(t, h, "POST", "/analyze_case", `{"text":"fever"}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest("POST", "/analyze_case", strings.NewReader(`{"text":"fever"}`))
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("limited: got %d, want 429", rr.Code)
	}

	if rr := do(t, h, "GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health: got %d, want 200", rr.Code)
	}
}

func TestHandler_UnknownRoute_404(t *testing.T) {
	rr := do(t, newTestHandler(t, &mockAnalyzer{}, HandlerConfig{}), "GET", "/nope", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeNotFound {
		t.Errorf("code = %s", e.Code)
	}
}

func TestJSONRecoverer_500(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := do(t, h, "GET", "/analyze_case", "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeInternalError {
		t.Errorf("code = %s", e.Code)
	}
}
