// Package chi is the HTTP transport: handlers, routing and middleware on go-chi.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
	"github.com/kailas-cloud/sanjeevani/internal/logger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	analyzer      Analyzer
	guidelines    GuidelineReader
	health        HealthChecker
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
// Handlers log through the request logger placed in the context by WideEventMiddleware.
func NewServer(analyzer Analyzer, guidelines GuidelineReader, health HealthChecker) *Server {
	s := &Server{
		analyzer:   analyzer,
		guidelines: guidelines,
		health:     health,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrServiceUnavailable, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable),
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Post("/analyze_case", s.AnalyzeCase)
	r.Post("/analyze_cases", s.AnalyzeCases)
	r.Get("/guidelines", s.ListGuidelines)
	r.Get("/guidelines/{position}", s.GetGuideline)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// AnalyzeCase handles POST /analyze_case.
func (s *Server) AnalyzeCase(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "text is required")
		return
	}

	rec, err := s.analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, r)
	writeJSON(w, http.StatusOK, newAnalyzeResponse(&rec))
}

// AnalyzeCases handles POST /analyze_cases.
func (s *Server) AnalyzeCases(w http.ResponseWriter, r *http.Request) {
	var req BatchAnalyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "texts are required")
		return
	}

	outcomes, err := s.analyzer.AnalyzeBatch(r.Context(), req.Texts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]BatchResultItem, len(outcomes))
	for i, o := range outcomes {
		items[i] = BatchResultItem{Index: i}
		if o.Err != nil {
			items[i].Error = &ErrorResponse{Code: errorCode(o.Err), Message: safeDomainMessage(o.Err)}
			continue
		}
		items[i].Result = newAnalyzeResponse(&o.Record)
	}

	setUsageHeaders(w, r)
	writeJSON(w, http.StatusOK, BatchAnalyzeResponse{Results: items})
}

// ListGuidelines handles GET /guidelines.
func (s *Server) ListGuidelines(w http.ResponseWriter, _ *http.Request) {
	entries := s.guidelines.Entries()
	items := make([]GuidelineSummary, len(entries))
	for i, e := range entries {
		items[i] = GuidelineSummary{
			Position: i,
			Title:    e.Title,
			Risk:     e.Risk,
			Referral: e.Referral,
			Tags:     nonNil(e.Tags),
		}
	}
	writeJSON(w, http.StatusOK, GuidelineListResponse{Items: items, Total: len(items)})
}

// GetGuideline handles GET /guidelines/{position}.
func (s *Server) GetGuideline(w http.ResponseWriter, r *http.Request) {
	var position int
	err := runtime.BindStyledParameterWithOptions("simple", "position", chi.URLParam(r, "position"), &position,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter position: "+err.Error())
		return
	}

	e, ok := s.guidelines.At(position)
	if !ok {
		s.handleDomainError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, guidelineToResponse(position, &e))
}

// HealthCheck handles GET /health. Degraded collaborators still answer 200: the pipeline
// keeps serving through its fallbacks.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     string(report.Status),
		Checks:     checks,
		Breakers:   report.Breakers,
		Retrieval:  report.Retrieval,
		Guidelines: report.Guidelines,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, r *http.Request) {
	u := domain.UsageFromContext(r.Context())
	if n := u.EmbeddingTokens(); n > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.FormatInt(n, 10))
	}
	if n := u.GenerationTokens(); n > 0 {
		w.Header().Set("X-Generation-Tokens", strconv.FormatInt(n, 10))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrServiceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func errorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return ErrorCodeValidationFailed
	case errors.Is(err, domain.ErrNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return ErrorCodeRateLimited
	case errors.Is(err, domain.ErrServiceUnavailable):
		return ErrorCodeServiceUnavailable
	default:
		return ErrorCodeInternalError
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func guidelineToResponse(position int, e *guideline.Entry) GuidelineResponse {
	return GuidelineResponse{
		Position:    position,
		Title:       e.Title,
		Guideline:   e.Guideline,
		Risk:        e.Risk,
		Referral:    e.Referral,
		SafeActions: nonNil(e.SafeActions),
		Tags:        nonNil(e.Tags),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
