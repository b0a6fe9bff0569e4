package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Graph REST API with one explicit timeout for every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL (DefaultBaseURL when empty). A nil
// transport means http.DefaultTransport.
func NewClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *Client {
	return &Client{
		baseURL:    strings.TrimRight(orDefault(baseURL, DefaultBaseURL), "/"),
		httpClient: NewHTTPClient(timeout, transport),
	}
}

// NewHTTPClient is shared by the Graph client and the token provider so both
// honour the same timeout and instrumentation.
func NewHTTPClient(timeout time.Duration, transport http.RoundTripper) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// do performs an authenticated request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) ([]byte, int, error) {
	if token == "" {
		return nil, 0, errors.New("no access token available")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	return respBody, resp.StatusCode, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string) (any, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, token, nil, "")
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, payload any) (int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	_, status, err := c.do(ctx, http.MethodPost, path, token, bytes.NewReader(b), "application/json")
	return status, err
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
