package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/accountd/pkg/errors"
	"github.com/charlesng35/accountd/pkg/logger"
	"github.com/charlesng35/accountd/pkg/response"
)

// Recovery converts panics into a 500 response and logs the error.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
				)
				// Avoid leaking internals to clients
				response.Abort(c, errors.ErrInternalServer)
			}
		}()
		c.Next()
	}
}

// NotFoundHandler returns a JSON 404 response for unknown routes.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, errors.New(errors.ErrNotFound.Code, fmt.Sprintf("Route %s not found", c.Request.URL.Path), http.StatusNotFound))
}
