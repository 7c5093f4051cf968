package bankshandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"threesixty/internal/domain/audit"
	"threesixty/internal/domain/auth"
	"threesixty/internal/domain/banks"
	"threesixty/internal/transport/http/api"
	"threesixty/internal/transport/http/middleware"
	"threesixty/internal/transport/http/shared"
)

type Handler struct {
	Service *banks.Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service *banks.Service, perms middleware.PermissionStore, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/banks", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBanksRead, h.Perms)).Get("/", h.handleListBanks)
		r.With(middleware.RequirePermission(auth.PermBanksWrite, h.Perms)).Post("/", h.handleCreateBank)
		r.With(middleware.RequirePermission(auth.PermBanksRead, h.Perms)).Get("/{bankID}", h.handleGetBank)
		r.With(middleware.RequirePermission(auth.PermBanksWrite, h.Perms)).Post("/{bankID}/statements", h.handleAddStatement)
	})
	r.Route("/attributes", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermBanksRead, h.Perms)).Get("/", h.handleListAttributes)
		r.With(middleware.RequirePermission(auth.PermBanksWrite, h.Perms)).Post("/", h.handleCreateAttribute)
	})
}

func (h *Handler) handleListBanks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	list, err := h.Service.ListBanks(r.Context(), user.CompanyID)
	if err != nil {
		slog.Error("list banks failed", "companyId", user.CompanyID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "bank_list_failed", "failed to list attribute banks", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateBank(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload banks.CreateBankInput
	if !shared.DecodeAndValidate(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	bank, err := h.Service.CreateBank(r.Context(), user.CompanyID, payload)
	if err != nil {
		writeError(w, r, err, "bank_create_failed", "failed to create attribute bank")
		return
	}
	if err := h.Audit.Record(r.Context(), user.CompanyID, user.UserID, audit.ActionBankCreate, "attribute_bank", bank.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit bank.create failed", "err", err)
	}
	api.Created(w, bank, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetBank(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	bank, err := h.Service.GetBank(r.Context(), user.CompanyID, chi.URLParam(r, "bankID"))
	if err != nil {
		writeError(w, r, err, "bank_get_failed", "failed to load attribute bank")
		return
	}
	api.Success(w, bank, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddStatement(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload banks.AddStatementInput
	if !shared.DecodeAndValidate(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	bankID := chi.URLParam(r, "bankID")
	stmt, err := h.Service.AddStatement(r.Context(), user.CompanyID, bankID, payload)
	if err != nil {
		writeError(w, r, err, "statement_create_failed", "failed to add statement")
		return
	}
	if err := h.Audit.Record(r.Context(), user.CompanyID, user.UserID, audit.ActionStatementCreate, "statement", stmt.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, map[string]any{
		"bankId":      bankID,
		"attributeId": payload.AttributeID,
		"options":     len(payload.Options),
	}); err != nil {
		slog.Warn("audit statement.create failed", "err", err)
	}
	api.Created(w, stmt, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAttributes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAttributes(r.Context())
	if err != nil {
		slog.Error("list attributes failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "attribute_list_failed", "failed to list attributes", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateAttribute(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload banks.CreateAttributeInput
	if !shared.DecodeAndValidate(w, r, &payload, middleware.GetRequestID(r.Context())) {
		return
	}

	attr, err := h.Service.CreateAttribute(r.Context(), payload)
	if err != nil {
		writeError(w, r, err, "attribute_create_failed", "failed to create attribute")
		return
	}
	if err := h.Audit.Record(r.Context(), user.CompanyID, user.UserID, audit.ActionAttributeCreate, "attribute", attr.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil, payload); err != nil {
		slog.Warn("audit attribute.create failed", "err", err)
	}
	api.Created(w, attr, middleware.GetRequestID(r.Context()))
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, banks.ErrBankNotFound):
		api.Fail(w, http.StatusNotFound, "bank_not_found", err.Error(), requestID)
	case errors.Is(err, banks.ErrAttributeNotFound):
		api.Fail(w, http.StatusNotFound, "attribute_not_found", err.Error(), requestID)
	case errors.Is(err, banks.ErrDuplicateName):
		api.Fail(w, http.StatusConflict, "duplicate_name", err.Error(), requestID)
	case errors.Is(err, banks.ErrInvalidIdealScore),
		errors.Is(err, banks.ErrInvalidWeight),
		errors.Is(err, banks.ErrNoOptions),
		errors.Is(err, banks.ErrEmptyName):
		api.Fail(w, http.StatusBadRequest, "invalid_bank_input", err.Error(), requestID)
	default:
		slog.Error(message, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
