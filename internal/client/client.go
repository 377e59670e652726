// Package client implémente le contrat HTTP+JSON du backend de transcription
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"
	defaultTimeout = 30 * time.Second
)

type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     logr.Logger
}

type Option func(*Client)

// WithUserID ajoute le paramètre user_id à chaque requête
func WithUserID(userID string) Option {
	return func(c *Client) {
		c.userID = userID
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l logr.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tracer:     otel.Tracer("lecture-sync/client"),
		logger:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string, query url.Values) string {
	if c.userID != "" {
		if query == nil {
			query = url.Values{}
		}
		query.Set("user_id", c.userID)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// resource et id servent à construire un NotFoundError sur 404
	resource string
	id       string
}

// do exécute la requête et décode la réponse dans out (ignoré si nil)
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "BackendClient."+r.op, trace.WithAttributes(
		attribute.String("http.method", r.method),
		attribute.String("http.path", r.path),
	))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, r.method, c.endpoint(r.path, r.query), r.body)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%s: failed to build request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.V(1).Info("backend request failed", "op", r.op, "path", r.path, "error", err.Error())
		return &TransportError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.V(1).Info("backend request", "op", r.op, "path", r.path,
		"status", resp.StatusCode, "elapsed", time.Since(start).String())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return &TransportError{Op: r.op, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode == http.StatusNotFound && r.resource != "" {
		span.SetStatus(codes.Error, "not found")
		return &NotFoundError{Resource: r.resource, ID: r.id, Detail: parseDetail(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &ServerError{Op: r.op, StatusCode: resp.StatusCode, Detail: parseDetail(body)}
		span.RecordError(serr)
		span.SetStatus(codes.Error, resp.Status)
		return serr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		span.RecordError(err)
		return &ServerError{
			Op:         r.op,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("failed to decode response: %v", err),
		}
	}
	return nil
}

func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
