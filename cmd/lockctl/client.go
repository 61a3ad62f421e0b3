package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type apiClient struct {
	baseURL    string
	token      string
	apiKey     string
	httpClient *http.Client
}

// apiError is the failure envelope written by the server.
type apiError struct {
	Status  int
	Kind    string
	Message string
}

func (e *apiError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// call sends a JSON request and returns the raw body of a 2xx response.
func (c *apiClient) call(ctx context.Context, method, path string, in any) ([]byte, error) {
	if c.baseURL == "" {
		return nil, errors.New("--api-url is required (or set LOCKCTL_API_URL)")
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.apiKey != "":
		req.Header.Set("X-API-Key", c.apiKey)
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, raw)
	}
	return raw, nil
}

// result unwraps the {success, result} envelope into out.
func (c *apiClient) result(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	raw, err := c.call(ctx, method, path, in)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return raw, nil
	}
	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return nil, fmt.Errorf("parsing result: %w", err)
	}
	return raw, nil
}

func decodeError(status int, body []byte) error {
	var resp struct {
		Message string `json:"message"`
		Kind    string `json:"kind"`
	}
	if err := json.Unmarshal(body, &resp); err == nil {
		if resp.Message != "" {
			return &apiError{Status: status, Kind: resp.Kind, Message: resp.Message}
		}
	}
	return &apiError{Status: status, Message: "server returned an error"}
}
