package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-goalform/pkg/contract"
)

const (
	// DefaultPath is the breakdown endpoint used when no contract or endpoint
	// override is configured.
	DefaultPath = "/break_down_goal"
	// DefaultField is the form field carrying the goal text.
	DefaultField = "goal"
	// RequestIDHeader carries a random id per request so backend logs can be
	// matched to a submission.
	RequestIDHeader = "X-Request-Id"
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithTimeout bounds each request. Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// WithEndpoint overrides the method and path of the breakdown request.
func WithEndpoint(method, path string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(method); trimmed != "" {
			c.method = strings.ToUpper(trimmed)
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			c.path = trimmed
		}
	}
}

// WithField overrides the form field name carrying the goal.
func WithField(name string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.field = trimmed
		}
	}
}

// WithContract resolves the endpoint from an OpenAPI contract and validates
// successful responses against it.
func WithContract(doc *contract.Contract) Option {
	return func(c *Client) {
		if doc == nil {
			return
		}
		c.contract = doc
		endpoint := doc.Endpoint()
		if endpoint.Method != "" {
			c.method = endpoint.Method
		}
		if endpoint.Path != "" {
			c.path = endpoint.Path
		}
		if endpoint.ContentType != "" {
			c.contentType = endpoint.ContentType
		}
	}
}
