// Package tuya is the narrow request interface to the vendor IoT cloud.
package tuya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EternisAI/lockfleet/internal/failure"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	AccessID     string        `mapstructure:"access_id"`
	AccessSecret string        `mapstructure:"access_secret"`
	AccessToken  string        `mapstructure:"access_token"`
	AppUID       string        `mapstructure:"app_account_uid"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Sandbox      bool          `mapstructure:"sandbox"`
}

// Request addresses one vendor endpoint.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Requester performs one vendor call and returns the raw response envelope.
type Requester interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Client is the HTTP Requester. Request signing and token refresh are left to
// whoever issues AccessToken.
type Client struct {
	baseURL     string
	accessID    string
	accessToken string
	httpClient  *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tuya base_url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid tuya base_url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessID:    cfg.AccessID,
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// WithHTTPClient replaces the underlying client, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode vendor request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build vendor request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.accessID != "" {
		httpReq.Header.Set("client_id", c.accessID)
	}
	if c.accessToken != "" {
		httpReq.Header.Set("access_token", c.accessToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.WarnContext(ctx, "Vendor request failed", "method", method, "path", req.Path, "error", err)
		return nil, failure.Wrap(failure.KindNetwork, err, "vendor request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, failure.Wrap(failure.KindNetwork, err, "read vendor response")
	}

	slog.DebugContext(ctx, "Vendor request completed",
		"method", method,
		"path", req.Path,
		"status_code", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &failure.Error{
			Kind:    failure.KindNetwork,
			Message: fmt.Sprintf("vendor responded with HTTP %d", resp.StatusCode),
		}
	}
	return raw, nil
}
