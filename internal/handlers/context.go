package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// resolveStore looks up the store named by the :backend path parameter. An
// unknown backend writes a 404 and returns false.
func resolveStore(c *gin.Context, stores *store.Registry) (store.Store, string, bool) {
	backend := strings.ToLower(strings.TrimSpace(c.Param("backend")))
	st, err := stores.Get(backend)
	if err != nil {
		response.Error(c, services.ErrUnknownBackend.WithInternal(err))
		return nil, "", false
	}
	return st, backend, true
}
