package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/handlers"
)

func registerUserRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, h *handlers.UserHandler) {
	users := r.Group("/users/:backend")
	users.Use(requireAuth)
	{
		users.GET("", h.List)
		users.DELETE("", h.DeleteAll)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}
