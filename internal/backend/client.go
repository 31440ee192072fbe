package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://royal-ai-backend.onrender.com/"

// Response is the body returned by POST /g4f. Either field may be empty.
type Response struct {
	Message     string `json:"message"`
	ImageBase64 string `json:"image_base64"`
}

type Client struct {
	baseURL string
	http    *resty.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// No client timeout: requests end on completion, failure or ctx cancel
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes GET / on the backend.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("backend health check returned status %d", resp.StatusCode())
	}

	return nil
}

// Generate performs one exchange against POST /g4f.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/g4f")
	if err != nil {
		return Response{}, fmt.Errorf("failed to execute request: %w", err)
	}

	if !resp.IsSuccess() {
		return Response{}, fmt.Errorf("backend returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
