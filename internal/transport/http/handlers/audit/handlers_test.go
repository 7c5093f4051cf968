package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threesixty/internal/domain/audit"
	"threesixty/internal/domain/auth"
	"threesixty/internal/transport/http/middleware"
)

type fakeReader struct {
	events     []audit.Event
	lastFilter audit.Filter
	lastLimit  int
	companyID  string
}

func (f *fakeReader) Count(_ context.Context, _ string, _ audit.Filter) (int, error) {
	return len(f.events), nil
}

func (f *fakeReader) List(_ context.Context, companyID string, filter audit.Filter, _ bool, limit, _ int) ([]audit.Event, error) {
	f.companyID = companyID
	f.lastFilter = filter
	f.lastLimit = limit
	return f.events, nil
}

func (f *fakeReader) ListExport(_ context.Context, companyID string) ([]audit.Event, error) {
	f.companyID = companyID
	return f.events, nil
}

type allowAll struct{}

func (allowAll) HasPermission(context.Context, string, string) (bool, error) { return true, nil }

func newRouter(reader *fakeReader) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			user := auth.UserContext{UserID: "admin", CompanyID: "c1", RoleName: auth.RoleAdmin}
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), user)))
		})
	})
	NewHandler(reader, allowAll{}).RegisterRoutes(r)
	return r
}

func TestListEvents(t *testing.T) {
	reader := &fakeReader{events: []audit.Event{{ID: "e1", Action: audit.ActionEvaluationSubmit, EntityType: "evaluation"}}}
	rec := httptest.NewRecorder()
	newRouter(reader).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events?action=evaluation.submit&limit=1000", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "c1", reader.companyID)
	assert.Equal(t, audit.ActionEvaluationSubmit, reader.lastFilter.Action)
	assert.Equal(t, 500, reader.lastLimit)
}

func TestExportEvents(t *testing.T) {
	reader := &fakeReader{events: []audit.Event{{ID: "e1", ActorID: "admin", Action: audit.ActionBankCreate, EntityType: "attribute_bank", EntityID: "b1"}}}
	rec := httptest.NewRecorder()
	newRouter(reader).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "bank.create", records[1][2])
}
