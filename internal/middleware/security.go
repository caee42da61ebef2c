package middleware

import "github.com/gin-gonic/gin"

const (
	// DefaultContentSecurityPolicy serves JSON only, so nothing may be embedded.
	DefaultContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"
)

// SecurityHeaders sets the response headers every API reply carries.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", DefaultContentSecurityPolicy)
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
