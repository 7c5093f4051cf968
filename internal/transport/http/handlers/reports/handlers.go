package reportshandler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"threesixty/internal/domain/auth"
	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/reports"
	"threesixty/internal/transport/http/api"
	"threesixty/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *reports.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/self", h.handleSelf)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/total", h.handleTotal)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/relation/{relationship}", h.handleRelation)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/demography", h.handleDemography)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/quotient", h.handleQuotient)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/status", h.handleStatus)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/overall-status", h.handleOverallStatus)
		r.With(middleware.RequirePermission(auth.PermReportsExport, h.Perms)).Get("/total/export", h.handleExportTotal)
		r.With(middleware.RequirePermission(auth.PermReportsExport, h.Perms)).Get("/relation/{relationship}/export", h.handleExportRelation)
	})

	r.Route("/me/reports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReportsReadOwn, h.Perms))
		r.Use(ownReports)
		r.Get("/self", h.handleSelf)
		r.Get("/total", h.handleTotal)
		r.Get("/relation/{relationship}", h.handleRelation)
	})
}

// ownReports pins the userId query parameter to the caller.
func ownReports(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
			return
		}
		own := r.Clone(r.Context())
		q := own.URL.Query()
		q.Set("userId", user.UserID)
		own.URL.RawQuery = q.Encode()
		next.ServeHTTP(w, own)
	})
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func filterFrom(r *http.Request, user auth.UserContext) reports.Filter {
	q := r.URL.Query()
	return reports.Filter{
		CompanyID: user.CompanyID,
		UserID:    strings.TrimSpace(q.Get("userId")),
		BankID:    strings.TrimSpace(q.Get("bankId")),
	}
}

func (h *Handler) handleSelf(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.SelfReport(r.Context(), filterFrom(r, user))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTotal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.TotalReport(r.Context(), filterFrom(r, user))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRelation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.RelationReport(r.Context(), filterFrom(r, user), chi.URLParam(r, "relationship"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDemography(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.DemographyReport(r.Context(), filterFrom(r, user))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleQuotient(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	q := r.URL.Query()
	categories, err := reports.CategoryOverrides(splitList(q.Get("task")), splitList(q.Get("people")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	afterBankID := strings.TrimSpace(q.Get("afterBankId"))
	report, err := h.Service.QuotientReport(r.Context(), filterFrom(r, user), afterBankID, categories)
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.StatusReport(r.Context(), filterFrom(r, user))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleOverallStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.OverallStatus(r.Context(), user.CompanyID, r.URL.Query().Get("bankId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportTotal(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.TotalReport(r.Context(), filterFrom(r, user))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.export(w, r, "total", report)
}

func (h *Handler) handleExportRelation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	report, err := h.Service.RelationReport(r.Context(), filterFrom(r, user), chi.URLParam(r, "relationship"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.export(w, r, report.Relationship, report)
}

// export renders the report into a buffer first so a rendering failure can still produce a JSON error.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, name string, report reports.RelationReport) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "csv":
		contentType = "text/csv"
		if err := reports.WriteCSV(&buf, report); err != nil {
			slog.Error("report csv export failed", "report", name, "err", err)
			api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to export report", middleware.GetRequestID(r.Context()))
			return
		}
	case "pdf":
		contentType = "application/pdf"
		if err := reports.WritePDF(&buf, report.Label+" report", report); err != nil {
			slog.Error("report pdf export failed", "report", name, "err", err)
			api.Fail(w, http.StatusInternalServerError, "report_export_failed", "failed to export report", middleware.GetRequestID(r.Context()))
			return
		}
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_format", "format must be csv or pdf", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.%s", name, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("report export write failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, reports.ErrMissingFilter):
		api.Fail(w, http.StatusBadRequest, "missing_filter", "userId and bankId query parameters are required", requestID)
	case errors.Is(err, reports.ErrMissingBank):
		api.Fail(w, http.StatusBadRequest, "missing_filter", "bankId query parameter is required", requestID)
	case errors.Is(err, reports.ErrConflictingCategory):
		api.Fail(w, http.StatusBadRequest, "invalid_categories", err.Error(), requestID)
	case errors.Is(err, reports.ErrInvalidRelationship):
		api.Fail(w, http.StatusBadRequest, "invalid_relationship", err.Error(), requestID)
	case errors.Is(err, banks.ErrBankNotFound):
		api.Fail(w, http.StatusNotFound, "bank_not_found", err.Error(), requestID)
	default:
		slog.Error("report failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build report", requestID)
	}
}
