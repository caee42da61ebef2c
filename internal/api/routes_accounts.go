package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/handlers"
)

func registerAccountRoutes(r *gin.Engine, h *handlers.AccountHandler) {
	r.POST("/signup/:backend", h.Signup)
	r.POST("/login/:backend", h.Login)
	r.POST("/verify/:backend", h.Verify)
	r.POST("/forgot-password/:backend", h.ForgotPassword)
	r.POST("/verify-email/:backend", h.VerifyEmail)
	r.POST("/signout", h.SignOut)
}
