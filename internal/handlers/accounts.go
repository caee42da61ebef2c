package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/middleware"
	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/pkg/metrics"
	"github.com/charlesng35/accountd/pkg/response"
)

// AccountHandler serves the unauthenticated account flows.
type AccountHandler struct {
	stores   *store.Registry
	accounts *services.AccountService
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(stores *store.Registry, accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{stores: stores, accounts: accounts}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,notblank,max=255"`
	Username string `json:"username" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Email            string `json:"email" validate:"required"`
	VerificationCode string `json:"verificationCode" validate:"required"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

type signoutRequest struct {
	ID    flexibleID `json:"id"`
	Email string     `json:"email"`
}

// flexibleID accepts any JSON scalar and keeps its textual form.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*f = flexibleID(data)
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// POST /signup/:backend
func (h *AccountHandler) Signup(c *gin.Context) {
	st, backend, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	code, err := h.accounts.Signup(requestContext(c), st, services.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.Signups.WithLabelValues(backend).Inc()
	response.Success(c, http.StatusCreated, "User created", gin.H{"verifyCode": code})
}

// POST /login/:backend
func (h *AccountHandler) Login(c *gin.Context) {
	st, backend, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, token, err := h.accounts.Login(requestContext(c), st, req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(backend, "failure").Inc()
		response.Error(c, err)
		return
	}

	metrics.AuthAttempts.WithLabelValues(backend, "success").Inc()
	response.Success(c, http.StatusOK, "Logged in", gin.H{"user": user, "token": token})
}

// POST /verify/:backend
func (h *AccountHandler) Verify(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	var req verifyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.accounts.VerifyAccount(requestContext(c), st, req.Email, req.VerificationCode); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User verified", nil)
}

// POST /forgot-password/:backend
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	var req forgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.accounts.ResetPassword(requestContext(c), st, req.Email, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Password updated", nil)
}

// POST /verify-email/:backend
func (h *AccountHandler) VerifyEmail(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	var req verifyEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	email, err := h.accounts.CheckEmailExists(requestContext(c), st, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Email exists", gin.H{"email": email})
}

// POST /signout
//
// The token is judged before the body: an unreadable body only surfaces as
// missing fields once the token has passed.
func (h *AccountHandler) SignOut(c *gin.Context) {
	var req signoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = signoutRequest{}
	}

	token := middleware.BearerToken(c.GetHeader("Authorization"))
	if err := h.accounts.SignOut(requestContext(c), token, string(req.ID), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Signed out", nil)
}
