package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBumpAdvancesOnlyNamedTags(t *testing.T) {
	store := NewMemoryGenStore()
	ctx := context.Background()

	require.NoError(t, store.Bump(ctx, TagProducts))

	gens, err := store.Gens(ctx, TagProducts, TagCategories)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gens[0])
	assert.Equal(t, uint64(0), gens[1])
}

func TestRevalidateProductsBumpsPageTags(t *testing.T) {
	store := NewMemoryGenStore()
	inv := NewInvalidator(store)

	inv.RevalidateProducts()

	gens, err := store.Gens(context.Background(), TagProducts, PageTag("/"), PageTag("/products"), TagOrders)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gens[0], "products tag")
	assert.Equal(t, uint64(1), gens[1], "home page")
	assert.Equal(t, uint64(1), gens[2], "products page")
	assert.Equal(t, uint64(0), gens[3], "orders must be untouched")
}

func TestRevalidateAllTouchesEveryResource(t *testing.T) {
	store := NewMemoryGenStore()
	inv := NewInvalidator(store)

	inv.RevalidateAll()

	tags := []string{
		TagProducts, TagCategories, TagOrders, TagReviews, TagReviewGallery,
		TagUsers, TagCoupons, TagSettings, TagHeroSlides, PageTag("/"),
	}
	gens, err := store.Gens(context.Background(), tags...)
	require.NoError(t, err)
	for i, gen := range gens {
		assert.NotZero(t, gen, "tag %s not bumped", tags[i])
	}
}

type failingStore struct{}

func (failingStore) Bump(context.Context, ...string) error {
	return errors.New("store down")
}

func (failingStore) Gens(context.Context, ...string) ([]uint64, error) {
	return nil, errors.New("store down")
}

func TestRevalidateSwallowsStoreErrors(t *testing.T) {
	inv := NewInvalidator(failingStore{})

	assert.NotPanics(t, func() {
		inv.Revalidate(TagProducts)
		inv.RevalidateAll()
	})
}

func TestResponseCacheServesUntilInvalidated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryGenStore()
	rc := NewResponseCache(store)
	inv := NewInvalidator(store)

	hits := 0
	router := gin.New()
	router.GET("/api/products", rc.Middleware(TagProducts), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})

	get := func() string {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.String()
	}

	first := get()
	second := get()
	assert.Equal(t, first, second, "second read should come from cache")
	assert.Equal(t, 1, hits)

	inv.RevalidateProducts()

	third := get()
	assert.NotEqual(t, first, third, "bumped tag should force a recompute")
	assert.Equal(t, 2, hits)
}

func TestResponseCacheKeysIncludeQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryGenStore()
	rc := NewResponseCache(store)

	router := gin.New()
	router.GET("/api/products", rc.Middleware(TagProducts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"category": c.Query("category")})
	})

	get := func(target string) string {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)
		return w.Body.String()
	}

	mugs := get("/api/products?category=mugs")
	rugs := get("/api/products?category=rugs")
	assert.NotEqual(t, mugs, rugs)
	assert.Equal(t, mugs, get("/api/products?category=mugs"))
}

func TestResponseCacheBypassesAuthorizedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryGenStore()
	rc := NewResponseCache(store)

	// Handler mirrors the hero-slides shape: privileged callers see a wider
	// listing than anonymous ones, on the same path and query.
	router := gin.New()
	router.GET("/api/hero-slides", rc.Middleware(TagHeroSlides), func(c *gin.Context) {
		if c.Query("all") == "true" {
			if c.GetHeader("Authorization") == "" {
				c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Admin access required"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"scope": "all"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"scope": "active"})
	})

	get := func(target, token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		router.ServeHTTP(w, req)
		return w
	}

	admin := get("/api/hero-slides?all=true", "admin-token")
	require.Equal(t, http.StatusOK, admin.Code)

	// The admin response must not have been cached for anonymous replay.
	anon := get("/api/hero-slides?all=true", "")
	assert.Equal(t, http.StatusForbidden, anon.Code)
	assert.NotContains(t, anon.Body.String(), `"scope":"all"`)

	// Anonymous traffic on the public listing still caches normally.
	assert.Equal(t, http.StatusOK, get("/api/hero-slides", "").Code)
	rc.mu.RLock()
	_, cached := rc.entries["/api/hero-slides"]
	rc.mu.RUnlock()
	assert.True(t, cached, "anonymous listing should be cached")
}

func TestResponseCacheDropsStaleEntriesOnRead(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := NewMemoryGenStore()
	rc := NewResponseCache(store)
	inv := NewInvalidator(store)

	found := true
	router := gin.New()
	router.GET("/api/products/:id", rc.Middleware(TagProducts), func(c *gin.Context) {
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	get := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
		router.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, get())

	// Delete the product behind the page: the entry is stale and the next
	// read misses, so the map must not keep the dead page around.
	found = false
	inv.RevalidateProducts()

	require.Equal(t, http.StatusNotFound, get())
	rc.mu.RLock()
	_, lingering := rc.entries["/api/products/abc"]
	rc.mu.RUnlock()
	assert.False(t, lingering, "stale entry should be evicted on read")
}
