package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS answers the preflight of the desktop shell. origen is the shell's
// origin (CORS_ORIGIN); "*" accepts any, which the dev server needs.
func CORS(origen string) gin.HandlerFunc {
	if origen == "" {
		origen = "*"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origen)
		if origen != "*" {
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After, Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
