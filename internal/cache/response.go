package cache

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
	gens        []uint64
}

// ResponseCache stores rendered GET responses keyed by path+query and
// stamped with the tag generations they were built against. There is no
// TTL: an entry stays valid until one of its tags is bumped.
type ResponseCache struct {
	store   GenStore
	mu      sync.RWMutex
	entries map[string]*cachedResponse
}

func NewResponseCache(store GenStore) *ResponseCache {
	return &ResponseCache{
		store:   store,
		entries: make(map[string]*cachedResponse),
	}
}

// Middleware caches successful GET responses under the given tags. A store
// error skips the cache for that request rather than failing it.
//
// Requests carrying an Authorization header bypass the cache entirely: the
// cache key is path+query only, so a response shaped by the caller's
// identity must never be stored where an anonymous request could replay it.
func (rc *ResponseCache) Middleware(tags ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}

		key := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			key += "?" + raw
		}

		gens, err := rc.store.Gens(c.Request.Context(), tags...)
		if err != nil {
			c.Next()
			return
		}

		rc.mu.RLock()
		entry, ok := rc.entries[key]
		rc.mu.RUnlock()

		if ok {
			if gensEqual(entry.gens, gens) {
				c.Data(entry.status, entry.contentType, entry.body)
				c.Abort()
				return
			}
			// Stale entry: drop it now so the map only holds live pages.
			rc.mu.Lock()
			if cur := rc.entries[key]; cur == entry {
				delete(rc.entries, key)
			}
			rc.mu.Unlock()
		}

		writer := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}

		rc.mu.Lock()
		rc.entries[key] = &cachedResponse{
			status:      writer.Status(),
			contentType: writer.Header().Get("Content-Type"),
			body:        writer.buf.Bytes(),
			gens:        gens,
		}
		rc.mu.Unlock()
	}
}

func gensEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
