package middleware

import (
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/gin-gonic/gin"
)

// AuditLog records write operations with the acting identity. It is mounted
// on the admin group, where a setup call wipes every table.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		c.Next()

		identity := GetIdentity(c)
		status := c.Writer.Status()

		event := logger.Info()
		if status >= 400 {
			event = logger.Warn()
		}
		event.
			Bool("audit", true).
			Str("user_id", identity.UserID).
			Str("email", identity.Email).
			Str("method", method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Msg("admin operation")
	}
}
