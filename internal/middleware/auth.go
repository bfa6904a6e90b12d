package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"incubation-backend/internal/config"
)

const UserIDKey = "user_id"

func unauthorized(c *gin.Context, msg, detail string) {
	body := gin.H{"error": msg}
	if detail != "" {
		body["message"] = detail
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}

// AuthMiddleware verifies the Supabase access token (HS256) and stores the
// caller's user id from the "sub" claim under UserIDKey.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			unauthorized(c, "empty token", "")
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		if len(strings.Split(tokenString, ".")) != 3 {
			unauthorized(c, "invalid token format", "JWT token must have 3 parts separated by dots")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			// Supabase JWT secret is used directly as the signing key
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var msg string
			switch {
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				msg = "token signature is invalid - check JWT secret"
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "token has expired"
			case errors.Is(err, jwt.ErrTokenMalformed):
				msg = "token is malformed - ensure you're using a valid Supabase JWT token"
			default:
				msg = err.Error()
			}
			unauthorized(c, "invalid token", msg)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			unauthorized(c, "invalid token claims", "")
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			unauthorized(c, "missing user id in token", "")
			return
		}
		if _, err := uuid.Parse(sub); err != nil {
			unauthorized(c, "invalid user id in token", "sub claim must be a UUID")
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// UserID returns the authenticated caller set by AuthMiddleware.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
