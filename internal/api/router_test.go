package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/monitoring"
	"github.com/charlesng35/accountd/internal/monitoring/checks"
	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/internal/store/storetest"
	"github.com/charlesng35/accountd/pkg/crypto"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret"})
	require.NoError(t, err)
	revoked := iauth.NewRevocations(nil)
	accounts, err := services.NewAccountService(services.AccountServiceConfig{
		Hasher:      crypto.NewHasher(bcrypt.MinCost),
		Tokens:      jwtSvc,
		Revocations: revoked,
	})
	require.NoError(t, err)

	stores := storetest.Registry(t)
	health := monitoring.NewHealthManager()
	for _, name := range stores.Names() {
		st, err := stores.Get(name)
		require.NoError(t, err)
		health.Register(checks.Store(name, st, 0))
	}

	router, err := NewRouter(Deps{
		Stores:      stores,
		JWT:         jwtSvc,
		Revocations: revoked,
		Accounts:    accounts,
		Health:      health,
	})
	require.NoError(t, err)
	return router
}

func serve(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNewRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(Deps{})
	require.Error(t, err)
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "success", decode(t, rec)["status"])

	for _, path := range []string{"/users/mongo", "/users/postgres", "/users/postgres/1"} {
		rec = serve(router, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
		require.Equal(t, "No token provided", decode(t, rec)["msg"])
	}
}

func TestRouter_FullSessionFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/signup/postgres", "", gin.H{
		"email": "a@x.io", "username": "alice", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodPost, "/login/postgres", "", gin.H{"email": "a@x.io", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	token := body["token"].(string)
	user := body["user"].(map[string]any)
	_, leaked := user["password"]
	require.False(t, leaked)

	rec = serve(router, http.MethodGet, "/users/postgres", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, decode(t, rec)["users"], 1)

	// The default backend holds no accounts of its own.
	rec = serve(router, http.MethodGet, "/users/mongo", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode(t, rec)["users"])

	rec = serve(router, http.MethodPost, "/signout", token, gin.H{"id": user["id"], "email": "a@x.io"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodGet, "/users/postgres", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Token is blacklisted", decode(t, rec)["msg"])
}

func TestRouter_UnknownBackend(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/signup/redis", "", gin.H{
		"email": "a@x.io", "username": "alice", "password": "pw1",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Unknown backend", decode(t, rec)["msg"])
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "error", body["status"])
	require.Contains(t, body["msg"], "/nope")
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Trigger a request to generate metrics
	rec := serve(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "accountd_api_latency_seconds"), "expected latency histogram in metrics output")
}

func TestRouter_OpenAPIDocument(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/api-docs/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decode(t, rec)
	require.Equal(t, "3.0.0", doc["openapi"])
	info := doc["info"].(map[string]any)
	require.Equal(t, "User Authentication API", info["title"])

	paths := doc["paths"].(map[string]any)
	for _, p := range []string{"/signup/{backend}", "/login/{backend}", "/signout", "/users/{backend}/{id}"} {
		require.Contains(t, paths, p)
	}
}

func TestRouter_HealthReportsDownStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "router-secret"})
	require.NoError(t, err)
	revoked := iauth.NewRevocations(nil)
	accounts, err := services.NewAccountService(services.AccountServiceConfig{Tokens: jwtSvc, Revocations: revoked})
	require.NoError(t, err)

	rel := storetest.OpenRelational(t)
	stores := store.NewRegistry(map[string]store.Store{store.BackendPostgres: rel})
	health := monitoring.NewHealthManager()
	health.Register(checks.Store(store.BackendPostgres, rel, 0))
	health.Register(checks.Store(store.BackendMongo, nil, 0))

	router, err := NewRouter(Deps{Stores: stores, JWT: jwtSvc, Revocations: revoked, Accounts: accounts, Health: health})
	require.NoError(t, err)

	rec := serve(router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "UNAVAILABLE", decode(t, rec)["code"])
}
