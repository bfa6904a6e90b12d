package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"incubation-backend/internal/config"
	"incubation-backend/internal/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func newRouter(t *testing.T, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{SupabaseJWTSecret: testSecret}

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", handler)
	return router
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return tokenString
}

func do(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	w := do(newRouter(t, ok), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthMiddleware_BadScheme(t *testing.T) {
	w := do(newRouter(t, ok), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	w := do(newRouter(t, ok), "Bearer invalid-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token format")
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": uuid.NewString()}, "another-secret")
	w := do(newRouter(t, ok), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "signature is invalid")
}

func TestAuthMiddleware_Expired(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}, testSecret)
	w := do(newRouter(t, ok), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuthMiddleware_SubjectMustBeUUID(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "user-123"}, testSecret)
	w := do(newRouter(t, ok), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	token := sign(t, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	router := newRouter(t, func(c *gin.Context) {
		raw, exists := c.Get(middleware.UserIDKey)
		assert.True(t, exists)
		assert.Equal(t, userID.String(), raw)

		id, ok := middleware.UserID(c)
		assert.True(t, ok)
		assert.Equal(t, userID, id)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := do(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}
