// Package clients holds HTTP clients for the services the reservation
// orchestrator depends on but does not own: Room Inventory and User
// Directory.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// StatusError is returned when an upstream answers with an unexpected status.
type StatusError struct {
	Service string
	Method  string
	Path    string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %s: unexpected status %d", e.Service, e.Method, e.Path, e.Code)
}

// Client is a JSON-over-HTTP client bound to one upstream base URL.
type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

// NewClient parses baseURL and panics when it is malformed; a bad base URL is
// a configuration error.  timeout bounds every request made through it.
func NewClient(name, baseURL string, timeout time.Duration) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: &http.Client{Timeout: timeout}}
}

// Do sends body (when non-nil) as JSON and decodes a 2xx response into out.
// A 404 reports found=false with a nil error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (found bool, err error) {
	rel := &url.URL{Path: path}
	if query != nil {
		rel.RawQuery = query.Encode()
	}
	u := c.BaseURL.ResolveReference(rel)

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("%s: encode request: %w", c.Name, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return false, fmt.Errorf("%s: %w", c.Name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %s %s: %w", c.Name, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, &StatusError{Service: c.Name, Method: method, Path: path, Code: resp.StatusCode}
	}
	if out == nil {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%s: decode %s: %w", c.Name, path, err)
	}
	return true, nil
}
