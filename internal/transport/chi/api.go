package chi

import (
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
	domtriage "github.com/kailas-cloud/sanjeevani/internal/domain/triage"
)

// ErrorCode is the machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeRateLimited        ErrorCode = "rate_limited"
	ErrorCodeServiceUnavailable ErrorCode = "service_unavailable"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AnalyzeRequest is the body of POST /analyze_case.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the triage record plus its SOAP note.
type AnalyzeResponse struct {
	domtriage.Record
	SoapNote domtriage.Narrative `json:"soap_note"`
}

// BatchAnalyzeRequest is the body of POST /analyze_cases.
type BatchAnalyzeRequest struct {
	Texts []string `json:"texts"`
}

// BatchResultItem holds either the analysis of one text or its error.
type BatchResultItem struct {
	Index  int              `json:"index"`
	Result *AnalyzeResponse `json:"result,omitempty"`
	Error  *ErrorResponse   `json:"error,omitempty"`
}

// BatchAnalyzeResponse is the body returned by POST /analyze_cases.
type BatchAnalyzeResponse struct {
	Results []BatchResultItem `json:"results"`
}

// GuidelineSummary is one item of GET /guidelines.
type GuidelineSummary struct {
	Position int        `json:"position"`
	Title    string     `json:"title"`
	Risk     risk.Level `json:"risk"`
	Referral bool       `json:"referral"`
	Tags     []string   `json:"tags"`
}

// GuidelineListResponse is the body of GET /guidelines.
type GuidelineListResponse struct {
	Items []GuidelineSummary `json:"items"`
	Total int                `json:"total"`
}

// GuidelineResponse is the body of GET /guidelines/{position}.
type GuidelineResponse struct {
	Position    int        `json:"position"`
	Title       string     `json:"title"`
	Guideline   string     `json:"guideline"`
	Risk        risk.Level `json:"risk"`
	Referral    bool       `json:"referral"`
	SafeActions []string   `json:"safe_actions"`
	Tags        []string   `json:"tags"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Checks     map[string]string `json:"checks"`
	Breakers   map[string]string `json:"breakers,omitempty"`
	Retrieval  string            `json:"retrieval"`
	Guidelines int               `json:"guidelines"`
}

func newAnalyzeResponse(rec *domtriage.Record) *AnalyzeResponse {
	return &AnalyzeResponse{Record: *rec, SoapNote: rec.Narrative()}
}
