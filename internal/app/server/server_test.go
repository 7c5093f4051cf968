package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threesixty/internal/domain/audit"
	"threesixty/internal/domain/auth"
	"threesixty/internal/domain/banks"
	"threesixty/internal/domain/evaluation"
	"threesixty/internal/domain/reports"
	"threesixty/internal/platform/config"
	"threesixty/internal/platform/metrics"
)

type authStore struct{}

func (authStore) FindActiveUserByEmail(context.Context, string, string) (auth.AuthUser, error) {
	return auth.AuthUser{}, errors.New("no rows")
}

func (authStore) UpdateLastLogin(context.Context, string) error { return nil }

func (authStore) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	return roleID == "admin-role" && permission == auth.PermAuditRead, nil
}

type auditLog struct{}

func (auditLog) Record(context.Context, string, string, string, string, string, string, string, any, any) error {
	return nil
}

func (auditLog) Count(context.Context, string, audit.Filter) (int, error) { return 0, nil }

func (auditLog) List(context.Context, string, audit.Filter, bool, int, int) ([]audit.Event, error) {
	return nil, nil
}

func (auditLog) ListExport(context.Context, string) ([]audit.Event, error) { return nil, nil }

type panickingAudit struct{ auditLog }

func (panickingAudit) Count(context.Context, string, audit.Filter) (int, error) {
	panic("audit store unavailable")
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          "secret",
		TokenTTL:           time.Hour,
		Environment:        "development",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		ReportTimeout:      time.Second,
		MetricsEnabled:     true,
	}
}

func testServices(ready func(context.Context) error) Services {
	store := authStore{}
	collector := metrics.New()
	return Services{
		Auth:        auth.NewService(store, "secret", time.Hour),
		Banks:       banks.NewService(nil),
		Evaluations: evaluation.NewService(nil, nil),
		Reports:     reports.NewService(nil, nil, collector, time.Second),
		Audit:       auditLog{},
		Perms:       store,
		Metrics:     collector,
		Ready:       ready,
	}
}

func testRouter(ready func(context.Context) error) http.Handler {
	return NewRouter(testConfig(), testServices(ready))
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "u1", CompanyID: "c1", RoleID: "admin-role", RoleName: auth.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	return token
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	router := testRouter(func(context.Context) error { return errors.New("down") })

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready := testRouter(func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, serve(ready, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}

func TestAPIRoutesRequireAuthentication(t *testing.T) {
	router := testRouter(nil)

	for _, path := range []string{"/api/v1/banks", "/api/v1/evaluations", "/api/v1/reports/total", "/api/v1/audit/events"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLoginRouteIsPublic(t *testing.T) {
	router := testRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ghost@example.com","password":"pw"}`))
	rec := serve(router, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")
}

func TestMetricsRequiresAuditPermission(t *testing.T) {
	router := testRouter(nil)

	assert.Equal(t, http.StatusUnauthorized, serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requestsTotal")
}

func TestPanicsAreCountedAsServerErrors(t *testing.T) {
	svc := testServices(nil)
	svc.Audit = panickingAudit{}
	router := NewRouter(testConfig(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/events", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := serve(router, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	snapshot := svc.Metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot["requestsTotal"])
	assert.Equal(t, uint64(1), snapshot["errorsTotal"])
}

func TestRouterWithoutMetrics(t *testing.T) {
	svc := testServices(nil)
	svc.Metrics = nil
	router := NewRouter(testConfig(), svc)

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/evaluations", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}
