// Package cms is a facade over the Kirby KQL endpoint the site content
// lives in. Callers get typed results or an absence of data; CMS-side
// failures never propagate as faults past this boundary.
package cms

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

	"github.com/charmbracelet/log"
)

// ErrUnavailable covers every upstream failure mode: transport errors,
// non-JSON replies, and error envelopes. Callers branch on it to render
// partial pages instead of failing the request.
var ErrUnavailable = errors.New("cms unavailable")

// Query is one KQL query document: a query string plus an optional
// field-selection tree.
type Query struct {
	Query  string `json:"query"`
	Select any    `json:"select,omitempty"`
}

type envelope struct {
	Code   int             `json:"code"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

type Client struct {
	URL        string
	User       string
	Password   string
	HTTPClient *http.Client
	Logger     *log.Logger
}

func NewClient(url, user, password string, logger *log.Logger) *Client {
	return &Client{
		URL:        url,
		User:       user,
		Password:   password,
		HTTPClient: &http.Client{Timeout: 12 * time.Second},
		Logger:     logger,
	}
}

// Do posts the query and decodes the envelope's result into out. Any
// failure is logged (with a response-body preview when there is one) and
// surfaced as ErrUnavailable.
func (c *Client) Do(ctx context.Context, q Query, out any) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.User != "" {
		req.SetBasicAuth(c.User, c.Password)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("kql connection failed", "url", c.URL, "err", err)
		return ErrUnavailable
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		c.Logger.Error("kql returned non-json response",
			"url", c.URL, "content_type", contentType, "preview", string(preview))
		return ErrUnavailable
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.Logger.Error("kql response decode failed", "url", c.URL, "err", err)
		return ErrUnavailable
	}

	if env.Status != "ok" {
		c.Logger.Error("kql api error", "url", c.URL, "code", env.Code, "status", env.Status)
		return ErrUnavailable
	}

	if out != nil && len(env.Result) > 0 {
		// validate-and-reject: a result that doesn't match the typed
		// schema is an upstream failure, not the caller's problem
		if err := json.Unmarshal(env.Result, out); err != nil {
			c.Logger.Error("kql result shape mismatch", "url", c.URL, "err", err)
			return ErrUnavailable
		}
	}
	return nil
}
