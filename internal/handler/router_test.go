package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eufiscalizo-api/internal/fixtures"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
	"github.com/noah-isme/eufiscalizo-api/internal/repository"
	"github.com/noah-isme/eufiscalizo-api/internal/service"
)

type denyAfter struct {
	allowed int
	calls   int
}

func (d *denyAfter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	d.calls++
	return d.calls <= d.allowed
}

func buildTestRouter(t *testing.T, limiter *denyAfter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	set, err := fixtures.Default()
	require.NoError(t, err)
	users := repository.NewMemoryUserRepository(set.Users)
	registry := service.NewInspectionRegistry(repository.NewMemoryInspectionRepository(set.Inspections), nil)
	metrics := service.NewMetricsService()

	verifier := service.CredentialVerifierFunc(func(_ *models.User, pw string) bool { return pw == "123456" })
	auth := service.NewAuthService(users, verifier, nil, metrics, nil, service.AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "eufiscalizo-test",
	})
	inspections := service.NewInspectionService(registry, nil, metrics, nil)

	cfg := RouterConfig{
		APIPrefix:   "/api/v1",
		Auth:        NewAuthHandler(auth),
		Inspections: NewInspectionHandler(inspections),
		Metrics: NewMetricsHandler(metrics, map[string]ReadinessCheck{
			"store": func(context.Context) error { return nil },
		}),
		Tokens:      auth,
		LoginLimit:  5,
		LoginWindow: time.Minute,
	}
	if limiter != nil {
		cfg.Limiter = limiter
	}

	r := gin.New()
	RegisterRoutes(r, cfg)
	return r
}

func doJSON(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"123456"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.AccessToken
}

func TestRouterInspectionLifecycle(t *testing.T) {
	r := buildTestRouter(t, nil)
	student := login(t, r, "joao@student.univ.br")
	admin := login(t, r, "admin@univ.br")

	w := doJSON(r, http.MethodPost, "/api/v1/inspections", student,
		`{"title":"Porta emperrada","description":"Porta do laboratório não fecha","category":"Infraestrutura","location":"Lab 3"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data models.Inspection `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	w = doJSON(r, http.MethodPatch, "/api/v1/inspections/"+id+"/status", student, `{"status":"em_processo"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPatch, "/api/v1/inspections/"+id+"/status", admin, `{"status":"concluida"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/inspections/"+id+"/feedback", student, `{"rating":5}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPatch, "/api/v1/inspections/"+id+"/status", admin, `{"status":"em_processo"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPatch, "/api/v1/inspections/"+id+"/status", admin, `{"status":"concluida","adminResponse":"Porta ajustada"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"adminResponse":"Porta ajustada"`)

	w = doJSON(r, http.MethodGet, "/api/v1/inspections/"+id, student, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"allowedActions":["feedback"]`)

	w = doJSON(r, http.MethodPost, "/api/v1/inspections/"+id+"/feedback", student, `{"rating":5,"comment":"Rápido"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPost, "/api/v1/inspections/"+id+"/feedback", student, `{"rating":4}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/inspections/stats", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":4`)
	assert.Contains(t, w.Body.String(), `"concluida":2`)
}

func TestRouterAuthFlows(t *testing.T) {
	r := buildTestRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@univ.br","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	w = doJSON(r, http.MethodGet, "/api/v1/inspections", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/register", "",
		`{"name":"Ana Lima","email":"ana@student.univ.br","password":"x","role":"student","matricula":"2024002"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	w = doJSON(r, http.MethodGet, "/api/v1/auth/me", reg.Data.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ana@student.univ.br"`)

	w = doJSON(r, http.MethodGet, "/api/v1/inspections", reg.Data.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/logout", reg.Data.AccessToken, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/inspections/export", reg.Data.AccessToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterLoginRateLimit(t *testing.T) {
	r := buildTestRouter(t, &denyAfter{allowed: 1})

	login(t, r, "admin@univ.br")
	w := doJSON(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@univ.br","password":"123456"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouterObservability(t *testing.T) {
	r := buildTestRouter(t, nil)

	w := doJSON(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	login(t, r, "joao@student.univ.br")
	w = doJSON(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sign_in_attempts_total{result="success"} 1`)
}

func TestReadyReportsFailingChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	r := gin.New()
	r.GET("/ready", h.Ready)

	w := doJSON(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
