package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PratikDhanave/trapwatch-service/internal/models"
)

// DefaultServer is the API base URL used when --server is not given.
const DefaultServer = "http://localhost:8080"

// APIError is a non-2xx response from the trapwatch API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the trapwatch HTTP API.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// NewClient returns a client for the API at base. apiKey is sent as
// X-API-Key when non-empty.
func NewClient(base, apiKey string) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Submit posts one signed reading.
func (c *Client) Submit(ctx context.Context, req models.SubmitRequest) (models.SubmitResponse, error) {
	var out models.SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/submit", req, &out)
	return out, err
}

// Recent lists the most recent records, newest first.
func (c *Client) Recent(ctx context.Context, limit int) ([]models.IngestionEntry, error) {
	path := "/api/ingestion"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []models.IngestionEntry
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Escalate triggers one escalation pass on the server.
func (c *Client) Escalate(ctx context.Context) (models.EscalateResponse, error) {
	var out models.EscalateResponse
	err := c.do(ctx, http.MethodPost, "/api/escalate", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		var e models.ErrorResponse
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
