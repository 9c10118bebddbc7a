// Package middleware holds gin middleware for the trigger API.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	headerAPIKey      = "X-API-Key"
	headerAuth        = "Authorization"
	bearerPrefix      = "Bearer "
	unauthorizedError = "Unauthorized"
)

// APIKeyAuth rejects requests that do not carry one of the configured API keys.
type APIKeyAuth struct {
	apiKeys [][]byte
	logger  *zap.Logger
}

// NewAPIKeyAuth creates the middleware. With no keys every request is rejected.
func NewAPIKeyAuth(apiKeys []string, logger *zap.Logger) *APIKeyAuth {
	if logger == nil {
		logger = zap.NewNop()
	}

	keys := make([][]byte, 0, len(apiKeys))
	for _, key := range apiKeys {
		if key != "" {
			keys = append(keys, []byte(key))
		}
	}

	return &APIKeyAuth{
		apiKeys: keys,
		logger:  logger,
	}
}

// Handler checks X-API-Key first, then Authorization: Bearer, and aborts with 401 otherwise.
func (a *APIKeyAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.isValidAPIKey(extractAPIKey(c.Request)) {
			a.logger.Warn("unauthorized request - invalid or missing API key",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedError})
			return
		}

		c.Next()
	}
}

func extractAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get(headerAPIKey); apiKey != "" {
		return apiKey
	}

	authHeader := r.Header.Get(headerAuth)
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}

	return ""
}

// isValidAPIKey compares in constant time against every configured key.
func (a *APIKeyAuth) isValidAPIKey(providedKey string) bool {
	if providedKey == "" {
		return false
	}

	provided := []byte(providedKey)
	valid := false
	for _, key := range a.apiKeys {
		if subtle.ConstantTimeCompare(provided, key) == 1 {
			valid = true
		}
	}

	return valid
}
