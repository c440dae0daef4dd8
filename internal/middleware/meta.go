package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-journal-api/pkg/response"
)

// WithResponseMeta seeds the per-request metadata that pkg/response attaches
// to the envelope: a start timestamp for processing time plus any keys
// handlers add through helpers such as SetCacheHit.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.SeedMeta(c)
		c.Next()
	}
}

// SetCacheHit records whether the journal listing was served from the Redis
// cache, so dashboard clients can tell a warm page from a fresh query.
func SetCacheHit(c *gin.Context, hit bool) {
	response.AddMeta(c, "cache_hit", hit)
}
