package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
)

// Client is a read-only client for the external recipe metadata provider.
// It plays no part in the consistency logic; it only resolves ingredient
// names to recipe suggestions. Responses are cached in Redis when a client
// is supplied, since provider quotas are tight and pantry contents change
// far more often than search results matter.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *redis.Client
	ttl     time.Duration
}

func NewClient(baseURL, apiKey string, cache *redis.Client, ttl time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		cache:   cache,
		ttl:     ttl,
	}
}

// SearchByIngredients returns recipes matching the given ingredient names,
// best matches first.
func (c *Client) SearchByIngredients(ctx context.Context, ingredients []string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("ingredients", strings.Join(ingredients, ","))
	q.Set("number", strconv.Itoa(limit))
	endpoint := c.baseURL + "/recipes/findByIngredients?" + q.Encode()

	cacheKey := "recipes:search:" + strings.Join(ingredients, ",") + ":" + strconv.Itoa(limit)
	var out []Summary
	if c.cacheGet(ctx, cacheKey, &out) {
		return out, nil
	}
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, cacheKey, out)
	return out, nil
}

// Detail fetches the full metadata for one recipe by provider id.
func (c *Client) Detail(ctx context.Context, id int) (*Detail, error) {
	endpoint := fmt.Sprintf("%s/recipes/%d/information", c.baseURL, id)

	cacheKey := "recipes:detail:" + strconv.Itoa(id)
	var out Detail
	if c.cacheGet(ctx, cacheKey, &out) {
		return &out, nil
	}
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, cacheKey, out)
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("recipe provider request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recipe provider status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) cacheGet(ctx context.Context, key string, v interface{}) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false
	}
	return true
}

func (c *Client) cacheSet(ctx context.Context, key string, v interface{}) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warnf("recipe cache set failed: %v", err)
	}
}
