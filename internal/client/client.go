package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockroom/internal/shared"
)

// APIError is a non-2xx response. Body is the decoded StructuredError when the
// server sent one.
type APIError struct {
	Status int
	Body   shared.StructuredError
}

func (e *APIError) Error() string {
	if e.Body.ErrorType == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s: %s", e.Status, e.Body.ErrorType, e.Body.Message)
}

// IsType reports whether err is an APIError with the given error_type.
func IsType(err error, errorType string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Body.ErrorType == errorType
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set(shared.APIKeyHeader, c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(b, &apiErr.Body)
		return apiErr
	}
	if out == nil || len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}

func (c *Client) Config(ctx context.Context) (shared.ConfigView, error) {
	var out shared.ConfigView
	err := c.do(ctx, http.MethodGet, "/config", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) Health(ctx context.Context) (shared.HealthResponse, error) {
	var out shared.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) SecureData(ctx context.Context) (shared.SecureDataResponse, error) {
	var out shared.SecureDataResponse
	err := c.do(ctx, http.MethodGet, "/secure-data", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) CreateItem(ctx context.Context, in shared.ItemCreate) (shared.Item, error) {
	var out shared.Item
	err := c.do(ctx, http.MethodPost, "/items", in, &out, http.StatusCreated)
	return out, err
}

func (c *Client) ListItems(ctx context.Context) ([]shared.Item, error) {
	var out []shared.Item
	err := c.do(ctx, http.MethodGet, "/items", nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) GetItem(ctx context.Context, id int64) (shared.Item, error) {
	var out shared.Item
	err := c.do(ctx, http.MethodGet, "/items/"+strconv.FormatInt(id, 10), nil, &out, http.StatusOK)
	return out, err
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/items/"+strconv.FormatInt(id, 10), nil, nil, http.StatusNoContent)
}

func (c *Client) Divide(ctx context.Context, a, b float64) (float64, error) {
	var out shared.DivideResponse
	err := c.do(ctx, http.MethodPost, "/math/divide", shared.DivideRequest{A: a, B: b}, &out, http.StatusOK)
	return out.Result, err
}
