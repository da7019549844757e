package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/models"
)

const defaultTimeout = 15 * time.Second

// Client talks to the state server. Stores depend on this interface so tests
// can substitute an in-memory fake.
type Client interface {
	FetchState(ctx context.Context) (models.Document, error)
	SaveState(ctx context.Context, doc models.Document) error
	// Login reports whether the server accepted the credentials. A non-nil
	// error means the server could not be asked at all.
	Login(ctx context.Context, username, password string) (bool, error)
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// OKResponse is the body of successful writes and login answers.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of a rejected write.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPClient calls the JSON API over HTTP.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// FetchState downloads the whole document.
func (c *HTTPClient) FetchState(ctx context.Context) (models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/state", nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch state returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	doc, err := models.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return doc, nil
}

// SaveState replaces the whole document on the server.
func (c *HTTPClient) SaveState(ctx context.Context, doc models.Document) error {
	resp, err := c.sendJSON(ctx, http.MethodPut, "/api/state", doc)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return fmt.Errorf("save state: %w", errors.ErrInvalidDocument)
	default:
		return fmt.Errorf("save state returned %s", resp.Status)
	}
}

// Login asks the server to check a username and password.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (bool, error) {
	resp, err := c.sendJSON(ctx, http.MethodPost, "/api/login", LoginRequest{Username: username, Password: password})
	if err != nil {
		return false, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var result OKResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode login response: %w", err)
	}
	return result.OK, nil
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}
