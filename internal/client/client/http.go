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

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/sethvargo/go-retry"
)

const maxResponseBody = 1 << 20

// HTTPClient talks to the REST flavour of the Identity Service.
type HTTPClient struct {
	bearer

	baseURL string
	http    *http.Client

	maxRetries uint64
	retryBase  time.Duration
}

// NewHTTPClient returns a client for baseURL (for example
// "http://localhost:5000/api"). timeout bounds every single request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		maxRetries: 2,
		retryBase:  time.Second,
	}
}

// SetRetry configures the backoff used for idempotent reads that fail with
// ErrUnavailable: up to maxRetries extra attempts, doubling from base.
func (c *HTTPClient) SetRetry(maxRetries uint64, base time.Duration) {
	c.maxRetries = maxRetries
	c.retryBase = base
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := registerRequest{Name: name, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", true, nil, nil)
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp userResponse
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/auth/me", true, nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: response without user", ErrServer)
	}
	return resp.User, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", true, nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: response without token", ErrServer)
	}
	return resp.Token, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPut, "/auth/profile", true, p, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, p models.PasswordChange) error {
	return c.do(ctx, http.MethodPut, "/auth/password", true, p, nil)
}

// Ping probes GET /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/health", false, nil, nil)
	})
}

// Close drops idle keep-alive connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) withRetry(ctx context.Context, fn retry.RetryFunc) error {
	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// do performs one JSON request. When auth is set and a token is present it
// is sent as a bearer credential, and a 401/403 answer triggers the
// unauthorized handler.
func (c *HTTPClient) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token := ""
	if auth {
		token = c.currentToken()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return unavailable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if token != "" && isAuthStatus(resp.StatusCode) {
			c.unauthorized()
		}
		return &ResponseError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrServer, err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} (or "message") from a body.
func errorMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}
