// Package api is the HTTP client of the intake persistence service.
package api

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

	"fundingintake/internal/client/gate"
	"fundingintake/internal/shared/models"
)

// Fallback messages used when a failed response carries no error text.
const (
	FallbackSubmitMessage = "Failed to submit form"
	FallbackListMessage   = "Failed to fetch submissions"
	FallbackLoginMessage  = gate.FallbackMessage
)

const (
	submitPath = "/api/submit-form"
	loginPath  = "/api/reviewer/login"
)

// StatusError is a non-2xx response. Error returns the server's message.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string { return e.Message }

// UserMessage returns the text the server reported for display.
func (e *StatusError) UserMessage() string { return e.Message }

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for baseURL. A nil httpClient gets a 30s timeout client.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// SubmitApplication posts the full draft and returns the stored record.
func (c *Client) SubmitApplication(ctx context.Context, rec models.ApplicationRecord) (models.ApplicationRecord, error) {
	var out models.ApplicationRecord
	if err := c.do(ctx, http.MethodPost, submitPath, rec, &out, FallbackSubmitMessage); err != nil {
		return models.ApplicationRecord{}, err
	}
	return out, nil
}

func (c *Client) ListApplications(ctx context.Context) ([]models.ApplicationRecord, error) {
	var out []models.ApplicationRecord
	if err := c.do(ctx, http.MethodGet, submitPath, nil, &out, FallbackListMessage); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.ApplicationRecord{}
	}
	return out, nil
}

// Authenticate implements gate.Authenticator. A 401 maps to
// gate.ErrInvalidCredentials.
func (c *Client) Authenticate(ctx context.Context, email, password string) (models.ReviewerSession, error) {
	body := map[string]string{"email": email, "password": password}
	var sess models.ReviewerSession
	err := c.do(ctx, http.MethodPost, loginPath, body, &sess, FallbackLoginMessage)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
			return models.ReviewerSession{}, gate.ErrInvalidCredentials
		}
		return models.ReviewerSession{}, err
	}
	return sess, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response, fallback string) error {
	se := &StatusError{StatusCode: resp.StatusCode, Message: fallback}
	var body models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error != "" {
		se.Message = body.Error
	}
	return se
}
