package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threesixty/internal/domain/auth"
	"threesixty/internal/transport/http/middleware"
)

type fakeStore struct {
	users map[string]auth.AuthUser
}

func (f *fakeStore) FindActiveUserByEmail(_ context.Context, email, _ string) (auth.AuthUser, error) {
	user, ok := f.users[email]
	if !ok {
		return auth.AuthUser{}, errors.New("no rows")
	}
	return user, nil
}

func (f *fakeStore) UpdateLastLogin(context.Context, string) error { return nil }

func (f *fakeStore) HasPermission(context.Context, string, string) (bool, error) { return true, nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	hash, err := auth.HashPassword("pass1234")
	require.NoError(t, err)
	store := &fakeStore{users: map[string]auth.AuthUser{
		"admin@example.com": {ID: "u1", CompanyID: "c1", RoleID: "r1", RoleName: auth.RoleAdmin, FullName: "Ada", Password: hash},
	}}
	r := chi.NewRouter()
	r.Use(middleware.Auth("secret"))
	NewHandler(auth.NewService(store, "secret", time.Hour)).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, req *http.Request) (int, envelope) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func TestLogin(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{name: "valid", body: `{"email":"admin@example.com","password":"pass1234"}`, wantCode: http.StatusOK},
		{name: "wrong password", body: `{"email":"admin@example.com","password":"nope"}`, wantCode: http.StatusUnauthorized, wantErr: "invalid_credentials"},
		{name: "unknown user", body: `{"email":"ghost@example.com","password":"pass1234"}`, wantCode: http.StatusUnauthorized, wantErr: "invalid_credentials"},
		{name: "bad email", body: `{"email":"admin","password":"pass1234"}`, wantCode: http.StatusBadRequest, wantErr: "validation_error"},
		{name: "malformed", body: `{`, wantCode: http.StatusBadRequest, wantErr: "invalid_payload"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tc.body))
			code, env := serve(router, req)
			assert.Equal(t, tc.wantCode, code)
			if tc.wantErr != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tc.wantErr, env.Error.Code)
				return
			}
			var result auth.LoginResult
			require.NoError(t, json.Unmarshal(env.Data, &result))
			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "c1", result.User["companyId"])
		})
	}
}

func TestMeRequiresToken(t *testing.T) {
	router := newRouter(t)

	code, _ := serve(router, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "u1", CompanyID: "c1", RoleID: "r1", RoleName: auth.RoleUser}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	code, env := serve(router, req)
	require.Equal(t, http.StatusOK, code)

	var me map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "u1", me["id"])
	assert.Equal(t, auth.RoleUser, me["role"])
}
