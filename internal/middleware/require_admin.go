package middleware

import (
	"net/http"

	"foodcart_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireSuperAdmin only lets platform administrators through. It must run
// after AuthRequired.
func RequireSuperAdmin(c *gin.Context) {
	if c.GetString(ctxRole) != models.RoleSuperAdmin {
		abort(c, http.StatusForbidden, "Superadmin access required")
		return
	}
	c.Next()
}
