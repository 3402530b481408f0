package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/wasteops-collections/internal/auth"
	"github.com/nurpe/wasteops-collections/internal/excel"
	"github.com/nurpe/wasteops-collections/internal/http/middleware"
	"github.com/nurpe/wasteops-collections/internal/metrics"
	"github.com/nurpe/wasteops-collections/internal/model"
	"github.com/nurpe/wasteops-collections/internal/pdf"
	"github.com/nurpe/wasteops-collections/internal/repository"
	"github.com/nurpe/wasteops-collections/internal/service"
	"github.com/nurpe/wasteops-collections/internal/storage"
)

var fixedNow = time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T, policy service.CompletionPolicy) *testServer {
	t.Helper()
	log := zerolog.Nop()
	backend := storage.NewMemory()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	clock := service.WithClock(func() time.Time { return fixedNow })

	users := repository.NewUserRepository(backend, true, log)
	sessions := repository.NewSessionRepository(backend, log)
	collections := repository.NewCollectionRepository(backend, true, log)
	reports := repository.NewReportRepository(backend, true, log)

	identity := service.NewIdentityService(users, sessions, service.NewSharedPasswordVerifier("password123"), log, clock, service.WithObserver(m))
	lifecycle := service.NewCollectionService(collections, policy, log, clock, service.WithObserver(m))
	reporting := service.NewReportService(collections, reports, excel.NewGenerator(), pdf.NewGenerator(), clock)

	tokens := auth.NewParser("test-secret")
	handler := NewHandler(identity, lifecycle, reporting, tokens, time.Hour, log)
	router := NewRouter(handler, middleware.Auth(tokens, identity), RouterOptions{
		Environment: "test",
		Log:         log,
		Observer:    m,
		Gatherer:    registry,
	})
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type listResponse struct {
	Data []model.Collection `json:"data"`
}

func TestLoginAndSession(t *testing.T) {
	s := newTestServer(t, service.CompletionAnyCompany)

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "client@wasteops.local", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "client@wasteops.local"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := s.login(t, "client@wasteops.local")
	rec = s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[model.User](t, rec)
	assert.Equal(t, "2", me.ID)
	assert.Equal(t, "Av. Libertad 123, Centro", me.Address())

	rec = s.do(t, http.MethodPost, "/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "logout invalidates the token")

	rec = s.do(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t, service.CompletionAnyCompany)

	rec := s.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email":        "fleet@green.example",
		"name":         "Green Fleet",
		"role":         "collection_company",
		"company_name": "Green Fleet Ltd",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.UserRoleCollectionCompany, resp.User.Role())
	assert.Equal(t, "Green Fleet Ltd", resp.User.CompanyName())

	rec = s.do(t, http.MethodGet, "/collections/available", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "x@y.example", "name": "X", "role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "not-an-email", "name": "X", "role": "client"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCollectionLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, service.CompletionAnyCompany)
	client := s.login(t, "client@wasteops.local")
	company := s.login(t, "company@wasteops.local")

	rec := s.do(t, http.MethodPost, "/collections", client, gin.H{
		"waste_type":     "Organic",
		"scheduled_date": "2025-06-20",
		"scheduled_time": "09:00",
		"quantity_kg":    30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Collection](t, rec)
	assert.Equal(t, model.CollectionStatusScheduled, created.Status)
	assert.Equal(t, "2", created.ClientID)
	assert.Equal(t, "Av. Libertad 123, Centro", created.Address, "address falls back to the client's profile")

	rec = s.do(t, http.MethodPost, "/collections", company, gin.H{"waste_type": "organic", "scheduled_date": "2025-06-20", "quantity_kg": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/collections", client, gin.H{"waste_type": "organic", "scheduled_date": "2025-06-20", "quantity_kg": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/collections", client, gin.H{"waste_type": "organic", "scheduled_date": "soon", "quantity_kg": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/collections/available", company, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listResponse](t, rec).Data, 2)

	rec = s.do(t, http.MethodGet, "/collections/available", client, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/collections/"+created.ID+"/accept", company, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3", decode[model.Collection](t, rec).CompanyID)

	rec = s.do(t, http.MethodPost, "/collections/"+created.ID+"/accept", company, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "accepting twice is a no-op")

	rival := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "rival@x.example", "name": "Rival", "role": "collection_company", "company_name": "Rival"})
	require.Equal(t, http.StatusCreated, rival.Code)
	rivalToken := decode[struct {
		Token string `json:"token"`
	}](t, rival).Token
	rec = s.do(t, http.MethodPost, "/collections/"+created.ID+"/accept", rivalToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/collections/missing/accept", company, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/collections/"+created.ID+"/complete", company, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	completed := decode[model.Collection](t, rec)
	assert.Equal(t, model.CollectionStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	rec = s.do(t, http.MethodGet, "/collections", client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listResponse](t, rec).Data, 4)

	rec = s.do(t, http.MethodGet, "/stats?type=organic", client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[model.CollectionStats](t, rec)
	assert.Equal(t, 2, st.TotalCollections)
	assert.Equal(t, 1, st.CompletedCollections)
	assert.Equal(t, 30, st.TotalQuantityKg)
}

func TestCompletePolicyAssignedOverHTTP(t *testing.T) {
	s := newTestServer(t, service.CompletionAssignedOnly)
	rival := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "rival@x.example", "name": "Rival", "role": "collection_company"})
	require.Equal(t, http.StatusCreated, rival.Code)
	rivalToken := decode[struct {
		Token string `json:"token"`
	}](t, rival).Token

	rec := s.do(t, http.MethodPost, "/collections/2/complete", rivalToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/collections/2/complete", s.login(t, "company@wasteops.local"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, service.CompletionAnyCompany)
	admin := s.login(t, "admin@wasteops.local")
	client := s.login(t, "client@wasteops.local")

	rec := s.do(t, http.MethodGet, "/admin/users", client, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[struct {
		Data []model.User `json:"data"`
	}](t, rec)
	assert.Len(t, users.Data, 3)

	rec = s.do(t, http.MethodGet, "/admin/collections", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listResponse](t, rec).Data, 3)

	rec = s.do(t, http.MethodGet, "/reports", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"collection_id":"1"`)
}

func TestStatsExport(t *testing.T) {
	s := newTestServer(t, service.CompletionAnyCompany)
	admin := s.login(t, "admin@wasteops.local")

	rec := s.do(t, http.MethodGet, "/stats/export?window=all", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="waste-report-2025-06-15.json"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), `"type_filter": "all"`)

	rec = s.do(t, http.MethodGet, "/stats/export?format=pdf", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(t, http.MethodGet, "/stats/export?format=xlsx&type=hazardous", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Content-Disposition"), `.xlsx"`))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = s.do(t, http.MethodGet, "/stats/export?format=csv", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, service.CompletionAnyCompany)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.login(t, "client@wasteops.local")
	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wasteops_login_attempts_total{success="true"} 1`)
	assert.Contains(t, rec.Body.String(), "wasteops_http_request_duration_seconds")
}
