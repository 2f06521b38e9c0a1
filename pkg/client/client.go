// Package client wraps the storefront API with a query cache that mirrors
// the server's invalidation policy: entries never expire by time and are
// only refetched after an explicit Invalidate for one of their tags.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *Pagination     `json:"pagination"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int64 `json:"limit"`
	Skip    int64 `json:"skip"`
	HasMore bool  `json:"hasMore"`
}

// Page is one window of an infinite list.
type Page struct {
	Items      json.RawMessage
	Pagination Pagination
}

type entry struct {
	data       json.RawMessage
	pagination *Pagination
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string

	group singleflight.Group

	mu       sync.RWMutex
	cache    map[string]entry
	tagIndex map[string]map[string]struct{}
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     http.DefaultClient,
		cache:    make(map[string]entry),
		tagIndex: make(map[string]map[string]struct{}),
	}
}

// SetToken attaches a session token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetData fetches path once and serves later calls for the same key from
// cache until one of its tags is invalidated. Concurrent calls for one key
// share a single request.
func (c *Client) GetData(ctx context.Context, key, path string, tags ...string) (json.RawMessage, error) {
	if cached, ok := c.lookup(key); ok {
		return cached.data, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// re-check: an earlier flight may have filled the cache
		if cached, ok := c.lookup(key); ok {
			return cached, nil
		}

		env, err := c.fetch(ctx, path)
		if err != nil {
			return nil, err
		}

		stored := entry{data: env.Data, pagination: env.Pagination}
		c.storeEntry(key, stored, tags)
		return stored, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(entry).data, nil
}

// GetDataByID is GetData for a single resource under path/id.
func (c *Client) GetDataByID(ctx context.Context, key, path, id string, tags ...string) (json.RawMessage, error) {
	return c.GetData(ctx, key+":"+id, path+"/"+id, tags...)
}

// InfiniteData fetches one window of a paginated list. Each window is
// cached separately; invalidating a tag drops every window of the key.
func (c *Client) InfiniteData(ctx context.Context, key, path string, limit, skip int64, tags ...string) (Page, error) {
	pageKey := key + ":skip=" + strconv.FormatInt(skip, 10)
	target := fmt.Sprintf("%s?limit=%d&skip=%d", path, limit, skip)

	if cached, ok := c.lookup(pageKey); ok {
		return pageFromEntry(cached), nil
	}

	result, err, _ := c.group.Do(pageKey, func() (interface{}, error) {
		if cached, ok := c.lookup(pageKey); ok {
			return cached, nil
		}

		env, err := c.fetch(ctx, target)
		if err != nil {
			return nil, err
		}

		stored := entry{data: env.Data, pagination: env.Pagination}
		c.storeEntry(pageKey, stored, tags)
		return stored, nil
	})
	if err != nil {
		return Page{}, err
	}

	return pageFromEntry(result.(entry)), nil
}

// Invalidate drops every cached entry registered under the given tags; the
// next read for those keys goes back to the API.
func (c *Client) Invalidate(tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		for key := range c.tagIndex[tag] {
			delete(c.cache, key)
		}
		delete(c.tagIndex, tag)
	}
}

func pageFromEntry(e entry) Page {
	page := Page{Items: e.data}
	if e.pagination != nil {
		page.Pagination = *e.pagination
	}
	return page
}

func (c *Client) lookup(key string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.cache[key]
	return cached, ok
}

func (c *Client) storeEntry(key string, e entry, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = e
	for _, tag := range tags {
		keys, ok := c.tagIndex[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (c *Client) fetch(ctx context.Context, path string) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, env.Error)
		}
		return nil, fmt.Errorf("api error (%d)", resp.StatusCode)
	}

	return &env, nil
}
