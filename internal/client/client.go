// Package client is a typed HTTP client for the /api/v1 surface, acting as an explicit
// session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/session"
)

const defaultTimeout = 10 * time.Second

type APIClient struct {
	baseURL    string
	httpClient *http.Client
	session    session.Session
}

// NewAPIClient returns a client for baseURL (e.g. http://host:8080/api/v1). A nil
// httpClient gets one with a 10s timeout.
func NewAPIClient(baseURL string, s session.Session, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    s,
	}
}

func (c *APIClient) Session() session.Session {
	return c.session
}

// Helper methods for HTTP requests

func (c *APIClient) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperrors.Transient(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transient(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError turns a non-2xx response into the matching error kind.
func statusError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	msg := http.StatusText(status)
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		msg = payload.Message
	}

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusBadRequest:
		return apperrors.Validation("", msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusNotFound:
		return apperrors.NotFound("resource", msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return apperrors.Transient(fmt.Errorf("HTTP %d: %s", status, msg))
	default:
		return fmt.Errorf("HTTP %d: %s", status, msg)
	}
}
