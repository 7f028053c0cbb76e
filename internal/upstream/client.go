// Package upstream talks to the phoneo catalog API. The API's JSON shapes
// are loosely typed and inconsistent across deployments, so everything is
// decoded into generic values and left to the catalog normalizers.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const defaultBaseURL = "https://super.phoneo.in"

// Client fetches the catalog feeds for one store slug.
type Client struct {
	baseURL string
	slug    string
	client  *http.Client
}

// NewClient creates a Client for the given store slug. An empty baseURL
// uses the production API.
func NewClient(baseURL, slug string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		slug:    slug,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Store fetches the shop metadata payload, which embeds the used-phone list.
func (c *Client) Store(ctx context.Context) (map[string]any, error) {
	var data map[string]any
	if err := c.getJSON(ctx, c.baseURL+"/api/v3/store/"+url.PathEscape(c.slug), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// NewPhones fetches the new-phone product list (products with variant and
// unit arrays).
func (c *Client) NewPhones(ctx context.Context) (any, error) {
	var data any
	if err := c.getJSON(ctx, c.baseURL+"/api/v3/storeNP/"+url.PathEscape(c.slug), nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Sold fetches the sold-items feed.
func (c *Client) Sold(ctx context.Context) (any, error) {
	var data any
	if err := c.getJSON(ctx, c.baseURL+"/api/v3/store/"+url.PathEscape(c.slug)+"/sold", nil, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// accessoryAttempts are the header variations tried in order against the
// storeOI endpoint. The upstream intermittently rejects browser-looking
// requests, so the first attempts impersonate curl.
var accessoryAttempts = []map[string]string{
	{"User-Agent": "curl/8.7.1", "Accept": "*/*"},
	{"User-Agent": "curl/8.7.1"},
	nil,
}

// Accessories fetches the "other items" payload. It walks the header
// fallback sequence, then retries once with a cache-busting query, and
// accepts the first payload that actually contains an item list. When every
// attempt misses, the last payload (or an empty one) is returned rather
// than an error so accessories render as an empty list.
func (c *Client) Accessories(ctx context.Context) (any, error) {
	target := c.baseURL + "/api/v3/storeOI/" + url.PathEscape(c.slug)

	var lastPayload any
	for _, headers := range accessoryAttempts {
		var data any
		if err := c.getJSON(ctx, target, headers, &data); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		lastPayload = data
		if hasAccessoryItems(data) {
			return data, nil
		}
	}

	// Cache-busted retry: some upstream caches pin an empty payload.
	backoff := retry.WithMaxRetries(1, retry.NewConstant(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		busted := fmt.Sprintf("%s?ts=%d", target, time.Now().UnixNano())
		var data any
		if err := c.getJSON(ctx, busted, accessoryAttempts[0], &data); err != nil {
			return retry.RetryableError(err)
		}
		lastPayload = data
		if !hasAccessoryItems(data) {
			return retry.RetryableError(fmt.Errorf("payload has no item list"))
		}
		return nil
	})
	if err == nil {
		return lastPayload, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if lastPayload != nil {
		return lastPayload, nil
	}
	return map[string]any{"items": []any{}}, nil
}

// ProductDetail looks up the per-model detail endpoint. The upstream status
// code and body are returned verbatim for the proxy to surface.
func (c *Client) ProductDetail(ctx context.Context, brand, model string) (int, json.RawMessage, error) {
	target := fmt.Sprintf("%s/api/PD/%s/%s",
		c.baseURL, url.PathEscape(strings.ToLower(brand)), url.PathEscape(model))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("product detail request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read product detail: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) getJSON(ctx context.Context, target string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

func hasAccessoryItems(payload any) bool {
	m, ok := payload.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m["items"].([]any); ok {
		return true
	}
	if data, ok := m["data"].(map[string]any); ok {
		_, ok := data["items"].([]any)
		return ok
	}
	return false
}
