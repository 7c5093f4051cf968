package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threesixty/internal/app/server"
	"threesixty/internal/domain/auth"
	"threesixty/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (c *client) login(email, password string) *client {
	c.t.Helper()
	anon := &client{t: c.t, router: c.router}
	status, env := anon.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, status, "login %s", email)
	var result auth.LoginResult
	require.NoError(c.t, json.Unmarshal(env.Data, &result))
	return &client{t: c.t, router: c.router, token: result.Token}
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func newApp(t *testing.T) (*server.App, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if strings.TrimSpace(dbURL) == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		MigrationsDir:      "../../../migrations",
		RunMigrations:      true,
		RunSeed:            true,
		SeedCompanyName:    "Test Company",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		ReportTimeout:      5 * time.Second,
		MetricsEnabled:     true,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)
	return app, cfg
}

func createUser(t *testing.T, app *server.App, companyName, email, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	var id string
	err = app.DB.QueryRow(context.Background(), `
    INSERT INTO users (company_id, role_id, email, full_name, password_hash, status)
    SELECT c.id, r.id, $2, $2, $3, $4
    FROM companies c, roles r
    WHERE c.name = $1 AND r.name = $5
    RETURNING id
  `, companyName, email, hash, auth.UserStatusActive, auth.RoleUser).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestEvaluationJourney(t *testing.T) {
	app, cfg := newApp(t)
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	base := &client{t: t, router: app.Router}
	admin := base.login(cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	status, env := admin.do(http.MethodPost, "/attributes", map[string]string{"name": "Planning " + suffix})
	require.Equal(t, http.StatusCreated, status)
	attribute := decode[map[string]any](t, env)

	status, env = admin.do(http.MethodPost, "/banks", map[string]any{"name": "Cycle " + suffix, "idealScore": 70})
	require.Equal(t, http.StatusCreated, status)
	bank := decode[map[string]any](t, env)
	bankID := bank["id"].(string)

	status, env = admin.do(http.MethodPost, "/banks/"+bankID+"/statements", map[string]any{
		"attributeId": attribute["id"],
		"text":        "Sets clear goals",
		"options": []map[string]any{
			{"text": "Always", "weight": 100},
			{"text": "Sometimes", "weight": 50},
		},
	})
	require.Equal(t, http.StatusCreated, status)
	statement := decode[struct {
		ID      string `json:"id"`
		Options []struct {
			ID     string `json:"id"`
			Weight int    `json:"weight"`
		} `json:"options"`
	}](t, env)
	require.Len(t, statement.Options, 2)
	optionFor := map[int]string{}
	for _, opt := range statement.Options {
		optionFor[opt.Weight] = opt.ID
	}

	targetEmail := "target-" + suffix + "@test.local"
	peerEmail := "peer-" + suffix + "@test.local"
	targetID := createUser(t, app, cfg.SeedCompanyName, targetEmail, "Target123!")
	peerID := createUser(t, app, cfg.SeedCompanyName, peerEmail, "Peer123!")

	status, _ = admin.do(http.MethodPost, "/assignments", map[string]any{
		"userToEvaluateId": targetID,
		"attributeBankId":  bankID,
		"evaluators":       []map[string]string{{"evaluatorId": peerID, "relationshipType": "peer"}},
	})
	require.Equal(t, http.StatusCreated, status)

	answer := func(c *client, optionID string) {
		status, env := c.do(http.MethodGet, "/evaluations", nil)
		require.Equal(t, http.StatusOK, status)
		list := decode[[]struct {
			ID     string `json:"id"`
			BankID string `json:"attributeBankId"`
		}](t, env)
		var evaluationID string
		for _, ev := range list {
			if ev.BankID == bankID {
				evaluationID = ev.ID
			}
		}
		require.NotEmpty(t, evaluationID)

		status, _ = c.do(http.MethodPost, "/evaluations/"+evaluationID+"/submit", map[string]any{"answers": []map[string]string{}})
		require.Equal(t, http.StatusBadRequest, status, "submitting nothing must fail")

		status, _ = c.do(http.MethodPost, "/evaluations/"+evaluationID+"/submit", map[string]any{
			"answers": []map[string]string{{"statementId": statement.ID, "optionId": optionID}},
		})
		require.Equal(t, http.StatusOK, status)
	}
	answer(base.login(peerEmail, "Peer123!"), optionFor[50])
	answer(base.login(targetEmail, "Target123!"), optionFor[100])

	query := "?userId=" + targetID + "&bankId=" + bankID
	status, env = admin.do(http.MethodGet, "/reports/relation/peer"+query, nil)
	require.Equal(t, http.StatusOK, status)
	report := decode[struct {
		Rows []struct {
			SelfScore json.RawMessage `json:"selfScore"`
			Score     json.RawMessage `json:"score"`
		} `json:"rows"`
		IdealScore *float64 `json:"idealScore"`
	}](t, env)
	require.Len(t, report.Rows, 1)
	assert.JSONEq(t, "100.0", string(report.Rows[0].SelfScore))
	assert.JSONEq(t, "50.0", string(report.Rows[0].Score))
	require.NotNil(t, report.IdealScore)
	assert.Equal(t, 70.0, *report.IdealScore)

	status, env = admin.do(http.MethodGet, "/reports/status"+query, nil)
	require.Equal(t, http.StatusOK, status)
	statusReport := decode[struct {
		Total     int `json:"total"`
		Completed int `json:"completed"`
	}](t, env)
	assert.Equal(t, 2, statusReport.Total)
	assert.Equal(t, 2, statusReport.Completed)

	status, _ = admin.do(http.MethodGet, "/reports/relation/hr"+query, nil)
	assert.Equal(t, http.StatusOK, status)
}
