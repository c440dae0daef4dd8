package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-journal-api/internal/models"
	"github.com/noah-isme/sma-journal-api/internal/service"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
	"github.com/noah-isme/sma-journal-api/pkg/response"
)

// ContextUserKey is the gin context key holding the validated dashboard
// session claims.
const ContextUserKey = "currentUser"

// JWT rejects requests without a valid Bearer access token and stores the
// parsed claims on the context for downstream handlers and RBAC checks.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "authorization header must be a Bearer token")
	}
	return token, nil
}

// ClaimsFrom returns the session claims stored by JWT, or nil when the
// route ran unauthenticated.
func ClaimsFrom(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
