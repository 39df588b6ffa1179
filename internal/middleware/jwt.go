package middleware

import (
	"net/http"
	"strings"

	"foodcart_back_end/internal/auth"
	"foodcart_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// AuthRequired verifies the bearer token and stores the caller in the gin
// context. Browsers cannot set headers on a WebSocket handshake, so a token
// query parameter is accepted as well.
func AuthRequired(secret []byte, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abort(c, http.StatusUnauthorized, "Invalid authorization header")
				return
			}
			tokenString = strings.TrimSpace(parts[1])
		}

		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.FullPath()).Msg("rejected token")
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// CurrentActor returns the caller stored by AuthRequired.
func CurrentActor(c *gin.Context) (models.Actor, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(ctxUserID))
	if err != nil {
		return models.Actor{}, false
	}
	return models.Actor{
		UserID: id,
		Email:  c.GetString(ctxEmail),
		Role:   c.GetString(ctxRole),
	}, true
}
