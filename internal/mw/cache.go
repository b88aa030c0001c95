package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheKey names the resource a request reads, so that writers can invalidate it.
type CacheKey func(c *gin.Context) string

// RequestURI keys a response by its full request URI.
func RequestURI(c *gin.Context) string {
	return c.Request.RequestURI
}

// Cache is a middleware for in-memory caching of GET requests under key(c).
// Requests that map to the same key share one cached response.
func Cache(store *cache.Cache, duration time.Duration, key CacheKey) gin.HandlerFunc {
	if key == nil {
		key = RequestURI
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		k := key(c)
		if resp, found := store.Get(k); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			response := cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    blw.body.Bytes(),
			}
			store.Set(k, response, duration)
		}
	}
}

// Invalidate drops the cached response stored under key.
func Invalidate(store *cache.Cache, key string) {
	if store == nil {
		return
	}
	store.Delete(key)
}
