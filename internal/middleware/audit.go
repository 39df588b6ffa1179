package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Audit records privileged actions with their outcome once the handler has
// run.
func Audit(action string, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "audit").Logger()

	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}

		resource := c.Param("id")
		if resource == "" {
			resource = c.Param("orderId")
		}

		event.
			Str("action", action).
			Str("actor", c.GetString(ctxUserID)).
			Str("role", c.GetString(ctxRole)).
			Str("resource_id", resource).
			Int("status", status).
			Bool("success", status < 400).
			Msg("audited action")
	}
}
