package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/monitoring"
	"github.com/charlesng35/accountd/pkg/response"
)

// HealthHandler reports the readiness of every registered dependency.
type HealthHandler struct {
	manager *monitoring.HealthManager
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(manager *monitoring.HealthManager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// GET /health
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := h.manager.Evaluate(requestContext(c))
	if report.Healthy() {
		response.Success(c, http.StatusOK, "Service healthy", gin.H{"health": report})
		return
	}
	c.JSON(http.StatusServiceUnavailable, response.Response{
		Status: response.StatusError,
		Msg:    "Service unavailable",
		Code:   "UNAVAILABLE",
		Extra:  gin.H{"health": report},
	}.Body())
}
