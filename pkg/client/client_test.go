package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"hit": n},
		})
	}))
}

func TestGetDataCachesUntilInvalidated(t *testing.T) {
	var hits int64
	server := newTestServer(t, &hits)
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	first, err := c.GetData(ctx, "products", "/api/products", "products")
	require.NoError(t, err)

	second, err := c.GetData(ctx, "products", "/api/products", "products")
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.EqualValues(t, 1, atomic.LoadInt64(&hits), "second read must be served from cache")

	c.Invalidate("products")

	third, err := c.GetData(ctx, "products", "/api/products", "products")
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(third))
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))
}

func TestInvalidateIsScopedToTags(t *testing.T) {
	var hits int64
	server := newTestServer(t, &hits)
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	_, err := c.GetData(ctx, "products", "/api/products", "products")
	require.NoError(t, err)
	_, err = c.GetData(ctx, "categories", "/api/categories", "categories")
	require.NoError(t, err)

	c.Invalidate("products")

	_, err = c.GetData(ctx, "categories", "/api/categories", "categories")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits), "categories must survive a products invalidation")
}

func TestConcurrentGetsShareOneRequest(t *testing.T) {
	var hits int64
	var release sync.WaitGroup
	release.Add(1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		release.Wait()
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	var done sync.WaitGroup
	for i := 0; i < 10; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			_, err := c.GetData(ctx, "settings", "/api/settings", "settings")
			assert.NoError(t, err)
		}()
	}

	release.Done()
	done.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&hits), "concurrent reads for one key must share a flight")
}

func TestInfiniteDataCachesWindows(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    []string{"item-" + strconv.Itoa(skip)},
			"pagination": map[string]interface{}{
				"total": 40, "limit": 20, "skip": skip, "hasMore": skip == 0,
			},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()

	first, err := c.InfiniteData(ctx, "products", "/api/products", 20, 0, "products")
	require.NoError(t, err)
	assert.True(t, first.Pagination.HasMore)

	second, err := c.InfiniteData(ctx, "products", "/api/products", 20, 20, "products")
	require.NoError(t, err)
	assert.False(t, second.Pagination.HasMore)

	// both windows cached independently
	_, err = c.InfiniteData(ctx, "products", "/api/products", 20, 0, "products")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&hits))

	c.Invalidate("products")
	_, err = c.InfiniteData(ctx, "products", "/api/products", 20, 0, "products")
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt64(&hits), "invalidation must drop every window")
}

func TestAPIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"product not found"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.GetDataByID(context.Background(), "product", "/api/products", "missing", "products")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
}
