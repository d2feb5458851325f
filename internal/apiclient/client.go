// Package apiclient is the JSON-over-HTTP plumbing shared by the service
// clients. Every non-2xx response becomes a *common.ServiceError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoMadridG27/Thesaurus/internal/common"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to one remote service rooted at a base URL ending in "/".
type Client struct {
	httpClient *http.Client
	service    string
	base       string
}

// New creates a client for service. A nil httpClient gets a 30s timeout.
func New(service, base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		service:    service,
		base:       base,
		httpClient: httpClient,
	}
}

// Base returns the service base URL.
func (c *Client) Base() string {
	return c.base
}

// Service returns the service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Request describes one call. Path is relative to the base URL.
type Request struct {
	Body        any
	Header      http.Header
	Method      string
	Path        string
	Op          string
	Raw         io.Reader
	ContentType string
}

// BearerHeader returns a header carrying an Authorization bearer token.
func BearerHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

// Do performs the request and decodes a 2xx JSON body into out when out is
// non-nil.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.ServiceError{
			Service: c.service,
			Op:      r.Op,
			Message: err.Error(),
			Err:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("Service call",
		"service", c.service,
		"op", r.Op,
		"method", req.Method,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(r.Op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &common.ServiceError{
			Service:    c.service,
			Op:         r.Op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response body: %v", err),
			Err:        err,
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := r.ContentType
	switch {
	case r.Raw != nil:
		body = r.Raw
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", r.Op, err)
		}
		body = bytes.NewReader(data)
		if contentType == "" {
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+strings.TrimPrefix(r.Path, "/"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", r.Op, err)
	}

	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) errorFromResponse(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body map[string]any
	_ = json.Unmarshal(data, &body)

	return &common.ServiceError{
		Service:    c.service,
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    common.ServiceErrorMessage(body, resp.StatusCode),
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if se, ok := asServiceError(err); ok {
		return se.StatusCode
	}
	return 0
}
