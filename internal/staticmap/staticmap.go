// Package staticmap fetches rendered map excerpts from an OSM-compatible
// static-map HTTP endpoint.
package staticmap

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kozaktomas/photo-appendix/internal/config"
)

// Client talks to a static-map provider. Requests are bounded by the
// configured timeout; a slow provider is reported as an error, never
// waited on indefinitely.
type Client struct {
	baseURL    string
	zoom       int
	httpClient *http.Client
}

// New creates a client for the configured provider.
func New(cfg config.MapConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		zoom:    cfg.Zoom,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// FetchMap requests a rendered map image centered on the given
// coordinates at the client's fixed zoom level.
func (c *Client) FetchMap(ctx context.Context, lat, lon float64, width, height int) (image.Image, error) {
	reqURL, err := c.resolveURL(lat, lon, width, height)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach map provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("map request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not decode map image: %w", err)
	}
	return img, nil
}

// resolveURL builds the provider query for a centered map excerpt.
func (c *Client) resolveURL(lat, lon float64, width, height int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid map base URL %q: %w", c.baseURL, err)
	}

	q := u.Query()
	q.Set("center", fmt.Sprintf("%.6f,%.6f", lat, lon))
	q.Set("zoom", fmt.Sprintf("%d", c.zoom))
	q.Set("size", fmt.Sprintf("%dx%d", width, height))
	q.Set("maptype", "mapnik")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// readErrorBody reads up to 256 bytes of an error response for context.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 256))
	if err != nil || len(body) == 0 {
		return "(no response body)"
	}
	return string(body)
}
