package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/api/docs"
)

func registerDocsRoutes(r *gin.Engine) {
	r.GET("/api-docs/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", docs.OpenAPI)
	})
}
