package evaluationshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"threesixty/internal/domain/audit"
	"threesixty/internal/domain/auth"
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/transport/http/api"
	"threesixty/internal/transport/http/middleware"
	"threesixty/internal/transport/http/shared"
)

// SubmissionRecorder counts completed evaluations. Optional.
type SubmissionRecorder interface {
	EvaluationSubmitted()
}

type Handler struct {
	Service *evaluation.Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
	Metrics SubmissionRecorder
}

func NewHandler(service *evaluation.Service, perms middleware.PermissionStore, auditSvc audit.Recorder, metrics SubmissionRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Metrics: metrics}
}

type answersRequest struct {
	Answers []evaluation.Answer `json:"answers" validate:"dive"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermEvaluationsAssign, h.Perms)).Post("/assignments", h.handleCreateAssignment)
	r.Route("/evaluations", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermEvaluationsRespond, h.Perms))
		r.Get("/", h.handleListMine)
		r.Get("/{evaluationID}", h.handleForm)
		r.Put("/{evaluationID}/draft", h.handleSaveDraft)
		r.Post("/{evaluationID}/submit", h.handleSubmit)
	})
}

func (h *Handler) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload evaluation.CreateAssignmentInput
	if !shared.DecodeAndValidate(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	assignment, err := h.Service.CreateAssignment(r.Context(), user.CompanyID, user.UserID, payload)
	if err != nil {
		writeError(w, r, err, "assignment_create_failed", "failed to create assignment")
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	ip := shared.ClientIP(r)
	if err := h.Audit.Record(r.Context(), user.CompanyID, user.UserID, audit.ActionAssignmentCreate, "assignment", assignment.ID, requestID, ip, nil, payload); err != nil {
		slog.Warn("audit assignment.create failed", "err", err)
	}
	for _, ev := range assignment.Evaluations {
		if err := h.Audit.Record(r.Context(), user.CompanyID, user.UserID, audit.ActionEvaluatorAdd, "evaluation", ev.ID, requestID, ip, nil, map[string]any{
			"evaluatorId":      ev.EvaluatorID,
			"relationshipType": ev.RelationshipType,
		}); err != nil {
			slog.Warn("audit evaluation.add_evaluator failed", "err", err)
		}
	}
	api.Created(w, assignment, requestID)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	list, err := h.Service.ListForEvaluator(r.Context(), user)
	if err != nil {
		writeError(w, r, err, "evaluation_list_failed", "failed to list evaluations")
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	form, err := h.Service.Form(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeError(w, r, err, "evaluation_get_failed", "failed to load evaluation")
		return
	}
	api.Success(w, form, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload answersRequest
	if !shared.DecodeAndValidate(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	evaluationID := chi.URLParam(r, "evaluationID")
	if err := h.Service.SaveDraft(r.Context(), user, evaluationID, payload.Answers); err != nil {
		writeError(w, r, err, "draft_save_failed", "failed to save draft")
		return
	}
	api.Success(w, map[string]any{"id": evaluationID, "status": evaluation.StatusInProgress, "saved": len(payload.Answers)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload answersRequest
	if !shared.DecodeAndValidate(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	evaluationID := chi.URLParam(r, "evaluationID")
	if err := h.Service.Submit(r.Context(), user, evaluationID, payload.Answers); err != nil {
		writeError(w, r, err, "submit_failed", "failed to submit evaluation")
		return
	}
	if h.Metrics != nil {
		h.Metrics.EvaluationSubmitted()
	}
	if err := h.Audit.Record(r.Context(), user.CompanyID, user.UserID, audit.ActionEvaluationSubmit, "evaluation", evaluationID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{
		"answers": len(payload.Answers),
	}); err != nil {
		slog.Warn("audit evaluation.submit failed", "err", err)
	}
	api.Success(w, map[string]string{"id": evaluationID, "status": evaluation.StatusCompleted}, middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, evaluation.ErrEvaluationNotFound):
		api.Fail(w, http.StatusNotFound, "evaluation_not_found", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrBankNotFound):
		api.Fail(w, http.StatusNotFound, "bank_not_found", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not the evaluator of this evaluation", requestID)
	case errors.Is(err, evaluation.ErrEvaluationCompleted), errors.Is(err, evaluation.ErrDuplicateAssignment):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrIncompleteResponses),
		errors.Is(err, evaluation.ErrInvalidAnswer),
		errors.Is(err, evaluation.ErrInvalidRelationship),
		errors.Is(err, evaluation.ErrUnknownUser):
		api.Fail(w, http.StatusBadRequest, "invalid_evaluation_input", err.Error(), requestID)
	default:
		slog.Error(message, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
