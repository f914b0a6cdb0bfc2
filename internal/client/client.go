// Package client is the HTTP client of the Aura backend. It is the single
// point of outbound communication: it resolves where the backend lives,
// attaches the session's bearer token to every request and reports 401
// responses to whoever owns the session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aura-clinic/aura/internal/config"
)

// TokenStore holds the single active bearer token. An empty string means
// no token.
type TokenStore interface {
	Get() string
	Set(token string)
}

// Client talks to the Aura REST backend.
type Client struct {
	mu      sync.RWMutex
	baseURL string

	http   *http.Client
	tokens TokenStore
	logger *slog.Logger

	listenersMu sync.Mutex
	nextID      int
	listeners   map[int]func(sentToken string)
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Timeout is used
// as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a client for baseURL. tokens is shared with the session
// owner; a nil store gets a private in-memory one.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = &memoryToken{}
	}
	c := &Client{
		baseURL:   normalizeBaseURL(baseURL),
		http:      &http.Client{Timeout: config.RequestTimeout},
		tokens:    tokens,
		logger:    slog.New(slog.DiscardHandler),
		listeners: make(map[int]func(sentToken string)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	c.baseURL = normalizeBaseURL(u)
	c.mu.Unlock()
}

// SetAuthToken makes token the bearer credential of every later request.
// An empty token removes the Authorization header entirely.
func (c *Client) SetAuthToken(token string) {
	c.tokens.Set(token)
}

func (c *Client) ClearAuthToken() {
	c.tokens.Set("")
}

func (c *Client) AuthToken() string {
	return c.tokens.Get()
}

// OnUnauthenticated registers fn to run whenever a request that carried a
// token is answered with 401. fn receives the token that request carried,
// which may already have been replaced. The returned func unregisters it.
func (c *Client) OnUnauthenticated(fn func(sentToken string)) (unsubscribe func()) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Client) notifyUnauthenticated(sentToken string) {
	c.listenersMu.Lock()
	fns := make([]func(string), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()
	for _, fn := range fns {
		fn(sentToken)
	}
}

// do sends one request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	body, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in any) ([]byte, error) {
	url := c.BaseURL() + path

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.tokens.Get()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "url", url, "error", err)
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	c.logger.Debug("request", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Detail: parseDetail(body)}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.notifyUnauthenticated(token)
		}
		return nil, apiErr
	}
	return body, nil
}

// parseDetail extracts the server's error detail, which is either a string
// or a list of validation entries.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(envelope.Detail)
}

type memoryToken struct {
	mu    sync.RWMutex
	token string
}

func (t *memoryToken) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *memoryToken) Set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}
