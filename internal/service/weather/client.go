// Package weather looks up current conditions from weatherstack.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/zhouzirui/nova-ai/backend/pkg/log"
)

// DefaultCity is used when the caller leaves the city blank.
const DefaultCity = "New York"

const missingKeyText = "⚠️ Weather API Key is missing!"

// Client performs one GET per lookup, without caching or retries.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a weather client. An empty apiKey is allowed; Lookup then
// reports the missing key instead of calling the provider.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Lookup returns a one-line, human readable weather summary for city. Every
// failure is folded into the returned string.
func (c *Client) Lookup(ctx context.Context, city string) string {
	if !c.Enabled() {
		return missingKeyText
	}

	body, err := c.fetch(ctx, city)
	if err != nil {
		log.Warnf("[weather] lookup %q failed: %v", city, err)
		return fmt.Sprintf("⚠️ API Error: %v", err)
	}

	current := gjson.GetBytes(body, "current")
	temperature := current.Get("temperature")
	description := current.Get("weather_descriptions.0")
	if !current.IsObject() || !temperature.Exists() || !description.Exists() {
		log.Infof("[weather] no current conditions for %q", city)
		return fmt.Sprintf("❌ Could not fetch weather for '%s'. Please check the city name.", city)
	}

	return fmt.Sprintf("%s: %s°C, %s", city, temperature.String(), description.String())
}

func (c *Client) fetch(ctx context.Context, city string) ([]byte, error) {
	query := url.Values{}
	query.Set("access_key", c.apiKey)
	query.Set("query", city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response")
	}
	return body, nil
}
