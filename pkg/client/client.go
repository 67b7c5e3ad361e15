package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-goalform/pkg/contract"
)

// Client sends goals to the breakdown backend.
type Client struct {
	base        *url.URL
	http        *http.Client
	timeout     time.Duration
	method      string
	path        string
	field       string
	contentType string
	contract    *contract.Contract
}

// New constructs a Client for the backend rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("client: base url is required")
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", base.Scheme)
	}

	c := &Client{
		base:        base,
		http:        http.DefaultClient,
		method:      http.MethodPost,
		path:        DefaultPath,
		field:       DefaultField,
		contentType: "application/x-www-form-urlencoded",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// URL returns the absolute endpoint URL.
func (c *Client) URL() string {
	target := *c.base
	target.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(c.path, "/")
	target.RawPath = ""
	return target.String()
}

// BreakDown submits goal and returns the decoded JSON body as an untyped
// value. The body is decoded regardless of status; a body that is not JSON
// yields a *DecodeError before the status is considered. Non-2xx statuses
// yield a *StatusError carrying the server "error" text when present.
func (c *Client) BreakDown(ctx context.Context, goal string) (any, error) {
	if c == nil {
		return nil, errors.New("client: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body := FormBody(c.field, goal)
	req, err := http.NewRequestWithContext(reqCtx, c.method, c.URL(), bytes.NewBufferString(body))
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", c.contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &DecodeError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Message: errorMessage(payload),
		}
	}

	if c.contract != nil {
		if err := c.contract.ValidateResponse(resp.StatusCode, payload); err != nil {
			return nil, &DecodeError{Status: resp.StatusCode, Err: err}
		}
	}
	return payload, nil
}

func errorMessage(payload any) string {
	fields, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	message, _ := fields["error"].(string)
	return message
}
