package dooray

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client issues authenticated calls against the Dooray REST API. It is the
// only component in the repository that touches the network. The fields are
// read-only after NewClient, so a single Client is shared across concurrent
// tool invocations without locking.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// APIError is the uniform failure for any transport error or non-2xx
// response. The gateway does not interpret Dooray-specific error codes;
// it carries the status and message through as-is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dooray api: status %d", e.Status)
	}
	return fmt.Sprintf("dooray api: status %d: %s", e.Status, e.Message)
}

// NewClient creates a Dooray API client. The token is sent on every request
// using Dooray's custom auth scheme ("dooray-api <token>"). There is no
// retry; a fixed timeout on the underlying http.Client bounds every call.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.dooray.com"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout: timeout,
			// Redirects are handled manually in FetchRaw: the file
			// storage tier redirects to a signed URL and Go's default
			// following would drop our Authorization header.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Request performs a JSON API call and returns the raw response body.
// Non-2xx statuses and transport errors both surface as *APIError.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	fullURL, err := c.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, payload)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("dooray api request",
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return json.RawMessage(data), nil
}

// FetchRaw downloads binary content from path. It follows at most one
// redirect by re-issuing the GET against the Location target with the
// client's own headers, because the storage tier strips the auth header
// when the transport follows redirects on its own.
func (c *Client) FetchRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL, err := c.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	resp, err := c.rawGet(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			return nil, &APIError{Status: resp.StatusCode, Message: "redirect without location header"}
		}
		redirected, err := resp.Request.URL.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse redirect location: %w", err)
		}
		resp, err = c.rawGet(ctx, redirected.String())
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return data, nil
}

func (c *Client) rawGet(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "dooray-api "+c.token)
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("build url for %s: %w", path, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
