package middleware

import "github.com/gin-gonic/gin"

// CacheHeader reports whether a response was served from cache.
const CacheHeader = "X-Cache"

// SetCacheHit marks the response as a cache HIT or MISS.
func SetCacheHit(c *gin.Context, hit bool) {
	if hit {
		c.Header(CacheHeader, "HIT")
		return
	}
	c.Header(CacheHeader, "MISS")
}
