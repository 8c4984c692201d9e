package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey = "response_meta"
	cacheHitKey     = "cache_hit"
	processingKey   = "processing_time_ms"
	requestStartKey = "request_started_at"
)

// WithResponseMeta prepares the meta map used by lookup responses and stamps the request start.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// LookupMeta finalises the meta block for a lookup response: the cache flag plus the elapsed
// time since start, or since the request began when start is zero.
func LookupMeta(c *gin.Context, start time.Time, hit bool) map[string]interface{} {
	meta := ensureMeta(c)
	meta[cacheHitKey] = hit
	if start.IsZero() {
		if v, ok := c.Get(requestStartKey); ok {
			start, _ = v.(time.Time)
		}
	}
	if !start.IsZero() {
		meta[processingKey] = time.Since(start).Milliseconds()
	}
	return meta
}

// ExtractMeta returns the metadata map stored on the context, if any.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	if c != nil {
		c.Set(responseMetaKey, meta)
	}
	return meta
}
