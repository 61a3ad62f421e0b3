package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/EternisAI/lockfleet/internal/api/http/dto"
	"github.com/EternisAI/lockfleet/internal/audit"
	"github.com/EternisAI/lockfleet/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	apiKeyHeader = "X-API-Key"

	// RoleService is granted to callers holding the machine API key.
	RoleService = "service"

	serviceOperator = "api-key"
)

func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(dto.KindUnauthorized, "missing or invalid authorization header"))
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.ValidateToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(dto.KindUnauthorized, "invalid token"))
			return
		}

		setOperator(c, claims.Username, claims.Role)
		c.Next()
	}
}

func APIKeyAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !svc.APIKeyConfigured() {
			slog.Warn("API key not configured, rejecting request",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.Fail(dto.KindUnavailable, "API key access is not configured"))
			return
		}

		providedKey := c.GetHeader(apiKeyHeader)
		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(dto.KindUnauthorized, "missing API key"))
			return
		}

		if !svc.CheckAPIKey(providedKey) {
			slog.Warn("Invalid API key attempt",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(dto.KindUnauthorized, "invalid API key"))
			return
		}

		setOperator(c, serviceOperator, RoleService)
		c.Next()
	}
}

// Authenticate accepts either a machine API key or an operator bearer token.
func Authenticate(svc *auth.Service) gin.HandlerFunc {
	apiKey := APIKeyAuth(svc)
	jwt := JWTAuth(svc.Config().JWTSecret)
	return func(c *gin.Context) {
		if c.GetHeader(apiKeyHeader) != "" {
			apiKey(c)
			return
		}
		jwt(c)
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail(dto.KindForbidden, "forbidden"))
			return
		}

		userRole, ok := role.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail(dto.KindForbidden, "forbidden"))
			return
		}

		for _, r := range roles {
			if r == userRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail(dto.KindForbidden, "forbidden"))
	}
}

// setOperator exposes the caller to handlers and to the audit trail.
func setOperator(c *gin.Context, username, role string) {
	c.Set("username", username)
	c.Set("role", role)
	c.Request = c.Request.WithContext(audit.WithOperator(c.Request.Context(), username))
}
