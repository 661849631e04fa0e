package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"avalia/internal/metrics"
	"avalia/internal/ports"
	"avalia/internal/services/assessments"
	"avalia/internal/workers/reportrunner"
)

// Server wires the questionnaire endpoints to the services behind the ports.
type Server struct {
	assessments ports.Assessments
	results     ports.Results
	orgs        ports.Organizations
	jobs        ports.JobRepository
	processor   reportrunner.ReportProcessor
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(a ports.Assessments, r ports.Results, o ports.Organizations, jobs ports.JobRepository, processor reportrunner.ReportProcessor, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{assessments: a, results: r, orgs: o, jobs: jobs, processor: processor, metrics: m, logger: logger}
}

// Routes returns a chi.Router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)

	r.Post("/organizations", s.handleRegisterOrganization)
	r.Get("/organizations/{orgID}/dashboard", s.handleDashboard)
	r.Post("/organizations/{orgID}/reports", s.handleEnqueueReport)
	r.Get("/organizations/{orgID}/reports/{jobID}", s.handleReportStatus)

	r.Post("/assessments", s.handleCreateAssessment)
	r.Get("/assessments/{token}", s.handleGetAssessment)
	r.Put("/assessments/{token}/answers", s.handleSubmitAnswer)
	r.Get("/assessments/{token}/items", s.handleVisibleItems)
	r.Post("/assessments/{token}/finalize", s.handleFinalize)
	r.Post("/assessments/{token}/deactivate", s.handleDeactivate)
	r.Get("/assessments/{token}/results", s.handleResults)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegisterOrganization(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[registerOrganizationRequest](w, r, s.logger)
	if !ok {
		return
	}
	org, err := s.orgs.Register(r.Context(), req.Name, req.Website)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromOrganization(org))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	aggregates, err := s.orgs.Dashboard(r.Context(), chi.URLParam(r, "orgID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromAggregates(aggregates))
}

func (s *Server) handleEnqueueReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID := chi.URLParam(r, "orgID")
	if _, err := s.orgs.Get(ctx, orgID); err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := s.jobs.EnqueueReport(ctx, orgID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Blocking path for report consumers that want the payload immediately.
	if r.URL.Query().Get("wait") == "true" {
		timeout := 30
		if t, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil && t > 0 {
			timeout = t
		}
		ctx2, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
		// Use the same processor the workers use to keep logic DRY.
		if err := reportrunner.ProcessInline(ctx2, s.jobs, s.processor, s.metrics, jobID); err != nil {
			s.writeError(w, r, err)
			return
		}
		status, progress, summary, err := s.jobs.JobStatus(ctx2, jobID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fromReportJob(jobID, status, progress, summary))
		return
	}
	writeJSON(w, http.StatusAccepted, reportAcceptedResponse{JobID: jobID})
}

func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	status, progress, summary, err := s.jobs.JobStatus(r.Context(), jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromReportJob(jobID, status, progress, summary))
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[createAssessmentRequest](w, r, s.logger)
	if !ok {
		return
	}
	a, err := s.assessments.Create(r.Context(), req.OrganizationID, req.EmployeeLabel, req.RespondentCategory)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromAssessment(a))
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromAssessment(a))
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[submitAnswerRequest](w, r, s.logger)
	if !ok {
		return
	}
	vis, err := s.assessments.SubmitAnswer(r.Context(), chi.URLParam(r, "token"), req.GroupID, req.ItemID, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromVisibility(vis))
}

func (s *Server) handleVisibleItems(w http.ResponseWriter, r *http.Request) {
	vis, err := s.assessments.Visibility(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromVisibility(vis))
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Finalize(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromAssessment(a))
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.assessments.Deactivate(r.Context(), chi.URLParam(r, "token")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.results.ForAssessment(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromResults(results))
}

// writeError maps service errors to HTTP responses. Business-rule rejections
// (incomplete, locked) are expected outcomes and get conflict codes, not 500s.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, assessments.ErrIncomplete):
		writeErrorJSON(w, http.StatusConflict, "assessment_incomplete", "answer all required items before finalizing")
	case errors.Is(err, assessments.ErrAnswerLocked), errors.Is(err, assessments.ErrNotFinalizable):
		writeErrorJSON(w, http.StatusConflict, "assessment_locked", err.Error())
	case errors.Is(err, assessments.ErrInvalidValue), errors.Is(err, assessments.ErrUnknownItem):
		writeErrorJSON(w, http.StatusBadRequest, "invalid_answer", err.Error())
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode parses and validates a JSON request body.
func decode[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return req, false
	}
	if err := req.Validate(); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "validation", err.Error())
		return req, false
	}
	return req, true
}
