package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/middleware"
	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/internal/store/storetest"
	"github.com/charlesng35/accountd/pkg/crypto"
)

type env struct {
	t       *testing.T
	router  *gin.Engine
	stores  *store.Registry
	revoked *iauth.Revocations
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "handler-secret"})
	require.NoError(t, err)
	revoked := iauth.NewRevocations(nil)
	accounts, err := services.NewAccountService(services.AccountServiceConfig{
		Hasher:      crypto.NewHasher(bcrypt.MinCost),
		Tokens:      jwtSvc,
		Revocations: revoked,
	})
	require.NoError(t, err)

	stores := storetest.Registry(t)
	ah := NewAccountHandler(stores, accounts)
	uh := NewUserHandler(stores, services.NewDirectoryService())

	r := gin.New()
	r.POST("/signup/:backend", ah.Signup)
	r.POST("/login/:backend", ah.Login)
	r.POST("/verify/:backend", ah.Verify)
	r.POST("/forgot-password/:backend", ah.ForgotPassword)
	r.POST("/verify-email/:backend", ah.VerifyEmail)
	r.POST("/signout", ah.SignOut)

	users := r.Group("/users/:backend", middleware.Auth(jwtSvc, revoked))
	users.GET("", uh.List)
	users.DELETE("", uh.DeleteAll)
	users.GET("/:id", uh.Get)
	users.PUT("/:id", uh.Update)
	users.DELETE("/:id", uh.Delete)

	return &env{t: t, router: r, stores: stores, revoked: revoked}
}

func (e *env) do(method, path, token string, body any) (int, map[string]any) {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var payload map[string]any
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	return w.Code, payload
}

// signupAndLogin returns the verification code, user id and token.
func (e *env) signupAndLogin(backend, email, username string) (string, string, string) {
	e.t.Helper()

	status, body := e.do(http.MethodPost, "/signup/"+backend, "", gin.H{"email": email, "username": username, "password": "pw1"})
	require.Equal(e.t, http.StatusCreated, status, body)
	code := body["verifyCode"].(string)

	status, body = e.do(http.MethodPost, "/login/"+backend, "", gin.H{"email": email, "password": "pw1"})
	require.Equal(e.t, http.StatusOK, status, body)
	user := body["user"].(map[string]any)
	return code, user["id"].(string), body["token"].(string)
}
