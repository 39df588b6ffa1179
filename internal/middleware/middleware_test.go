package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodcart_back_end/internal/auth"
	"foodcart_back_end/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("middleware-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, user, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Role: models.RoleSuperAdmin}
	valid := tokenFor(t, user)

	tests := []struct {
		name           string
		header         string
		query          string
		expectedStatus int
		message        string
	}{
		{name: "Bearer header", header: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "Query token", query: "?token=" + valid, expectedStatus: http.StatusOK},
		{name: "Missing token", expectedStatus: http.StatusUnauthorized, message: "Missing token"},
		{name: "Wrong scheme", header: "Basic abc", expectedStatus: http.StatusUnauthorized, message: "Invalid authorization header"},
		{name: "Garbage token", header: "Bearer abc.def.ghi", expectedStatus: http.StatusUnauthorized, message: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.Actor
			r := gin.New()
			r.GET("/me", AuthRequired(testSecret, zerolog.Nop()), func(c *gin.Context) {
				got, _ = CurrentActor(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.message == "" {
				assert.Equal(t, user.ID, got.UserID)
				assert.Equal(t, "ada@example.com", got.Email)
				assert.True(t, got.IsSuperAdmin())
				return
			}
			assert.JSONEq(t, `{"success":false,"message":"`+tt.message+`"}`, w.Body.String())
		})
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	admin := tokenFor(t, models.User{ID: primitive.NewObjectID(), Role: models.RoleSuperAdmin})
	user := tokenFor(t, models.User{ID: primitive.NewObjectID()})

	r := gin.New()
	r.GET("/admin", AuthRequired(testSecret, zerolog.Nop()), RequireSuperAdmin, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for token, status := range map[string]int{admin: http.StatusNoContent, user: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.GET("/search", RateLimit(client, "search", 2, time.Minute, ByIP, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/search", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do().Code)
	w := do()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, do().Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	r := gin.New()
	r.GET("/", RateLimit(client, "api", 1, time.Minute, ByIP, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()), Logging(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}
