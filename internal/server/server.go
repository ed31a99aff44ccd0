// internal/server/server.go

// Package server exposes the pipeline over HTTP. Handlers stay thin: input
// decoding and status mapping only, every decision lives in the pipeline
// package.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	pipeerrors "refi-pipeline/internal/common/errors"
	"refi-pipeline/internal/common/logger"
	"refi-pipeline/internal/models"
	"refi-pipeline/internal/pipeline"
)

type Server struct {
	orchestrator *pipeline.Orchestrator
	store        *SessionStore
	logger       logger.Logger
}

func New(orchestrator *pipeline.Orchestrator, store *SessionStore, log logger.Logger) *Server {
	return &Server{
		orchestrator: orchestrator,
		store:        store,
		logger:       log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Routes mounts the step-submission surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/mobile", s.handleMobile)
			r.Post("/identity", s.handleIdentity)
			r.Post("/score-review", s.handleScoreReview)
			r.Post("/vehicle", s.handleVehicle)
			r.Post("/select-account", s.handleSelectAccount)
			r.Get("/summary", s.handleSummary)
		})
	})
	return r
}

// --- Request/response bodies ---

type mobileRequest struct {
	Mobile string `json:"mobile"`
}

type identityRequest struct {
	PAN string `json:"pan"`
}

type scoreReviewRequest struct {
	MonthlyIncome  float64 `json:"monthlyIncome"`
	EmploymentType string  `json:"employmentType"`
}

type vehicleRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
}

type selectAccountRequest struct {
	// AccountIndex selects from the candidate list; omit (or send -1) to
	// accept the pre-selected financer match.
	AccountIndex *int `json:"accountIndex,omitempty"`
}

type stepResponse struct {
	SessionID string                   `json:"sessionId"`
	State     string                   `json:"state"`
	Tier      string                   `json:"tier"`
	Degraded  string                   `json:"degradedBecause,omitempty"`
	View      string                   `json:"view"`
	Eligible  []models.EligibleProduct `json:"eligibleProducts,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// --- Handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.store.Create()
	writeJSON(w, http.StatusCreated, map[string]string{
		"sessionId": sess.ID,
		"state":     string(sess.State()),
	})
}

func (s *Server) handleMobile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body mobileRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := s.orchestrator.SubmitMobile(r.Context(), sess, body.Mobile)
	s.respond(w, sess.ID, res, err)
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body identityRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := s.orchestrator.SubmitIdentity(r.Context(), sess, body.PAN)
	s.respond(w, sess.ID, res, err)
}

func (s *Server) handleScoreReview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body scoreReviewRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := s.orchestrator.SubmitScoreReview(r.Context(), sess, body.MonthlyIncome, body.EmploymentType)
	s.respond(w, sess.ID, res, err)
}

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body vehicleRequest
	if !decode(w, r, &body) {
		return
	}
	res, err := s.orchestrator.SubmitVehicle(r.Context(), sess, body.RegistrationNumber)
	s.respond(w, sess.ID, res, err)
}

func (s *Server) handleSelectAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body selectAccountRequest
	if !decode(w, r, &body) {
		return
	}
	index := -1
	if body.AccountIndex != nil {
		index = *body.AccountIndex
	}
	res, err := s.orchestrator.SelectAccount(r.Context(), sess, index)
	s.respond(w, sess.ID, res, err)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if sess.State() != pipeline.StepSummary {
		writeError(w, pipeerrors.NewInvalidStateError(string(sess.State()), string(pipeline.StepSummary)))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sess.SummaryDoc))

	// The summary is the terminal step; the durable record was already
	// persisted at finalization, so the in-memory session can go.
	s.store.Delete(sess.ID)
}

// --- Plumbing ---

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*pipeline.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess := s.store.Get(id)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:    string(pipeerrors.ErrCodeRecordNotFound),
			Message: "unknown session",
		})
		return nil, false
	}
	return sess, true
}

func (s *Server) respond(w http.ResponseWriter, sessionID string, res *pipeline.StepResult, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{
		SessionID: sessionID,
		State:     string(res.State),
		Tier:      string(res.Source.Tier),
		Degraded:  res.Source.DegradationCause,
		View:      string(res.View),
		Eligible:  res.Eligible,
	})
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    string(pipeerrors.ErrCodeValidationFailed),
			Message: "request body is not valid JSON",
		})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Code:    string(pipeerrors.CodeOf(err)),
		Message: err.Error(),
		Field:   pipeerrors.FieldOf(err),
	}
	writeJSON(w, statusFor(pipeerrors.CodeOf(err)), resp)
}

func statusFor(code pipeerrors.ErrorCode) int {
	switch code {
	case pipeerrors.ErrCodeValidationFailed, pipeerrors.ErrCodeRecordNotFound:
		return http.StatusUnprocessableEntity
	case pipeerrors.ErrCodeInvalidState:
		return http.StatusConflict
	case pipeerrors.ErrCodeStaleResponse:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
