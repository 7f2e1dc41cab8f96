// Package apiclient provides a client for the shapeview HTTP API.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds one request including the body.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds any response body read by the client.
const maxBodySize = 64 << 20

// Client is the shapeview API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a copy of c that sends requests through hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	return &Client{baseURL: c.baseURL, httpClient: hc}
}

// BaseURL returns the server URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a successful raw response.
type response struct {
	status      int
	contentType string
	header      http.Header
	body        []byte
}

// do sends a GET request for path with the given query and returns the
// body. Responses with status >= 400 are returned as *APIError unless
// allowStatus accepts them.
func (c *Client) do(ctx context.Context, path string, query url.Values, allowStatus func(int) bool) (*response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/problem+json, image/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 && (allowStatus == nil || !allowStatus(resp.StatusCode)) {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return &response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		header:      resp.Header,
		body:        body,
	}, nil
}

// get performs a GET request and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	resp, err := c.do(ctx, path, query, nil)
	if err != nil {
		return err
	}
	return decode(resp.body, result)
}

func decode(body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getResource performs a GET request and decodes the response into a T.
func getResource[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var result T
	if err := c.get(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// listResources performs a GET request and decodes the response into a []T.
func listResources[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var results []T
	if err := c.get(ctx, path, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}
