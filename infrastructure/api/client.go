package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"adminconsole/infrastructure/metrics"
)

const (
	basePath         = "/api/v1"
	maxErrorBodySize = 64 << 10
	RequestIDHeader  = "X-Request-ID"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Token   string
	// Timeout of zero keeps the transport default.
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    *metrics.Recorder
}

// Client talks to the users/projects REST backend. Every method issues
// exactly one request and never retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	metrics *metrics.Recorder

	Users    *UsersService
	Projects *ProjectsService
}

func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q is not absolute", opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		token:   strings.TrimSpace(opts.Token),
		http:    httpClient,
		metrics: opts.Metrics,
	}
	c.Users = &UsersService{c: c}
	c.Projects = &ProjectsService{c: c}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	s := c.baseURL + basePath + path
	if len(query) > 0 {
		s += "?" + query.Encode()
	}
	return s
}

// do performs one call. out, when non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveAPICall(op, Outcome(err), time.Since(started))
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set(RequestIDHeader, requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("api call", slog.String("op", op), slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			if _, ok := out.(*Result); ok {
				return nil
			}
		}
		if ctx.Err() != nil {
			return &TransportError{Op: op, Err: ctx.Err()}
		}
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

// readErrorMessage extracts "message", falling back to a string "result",
// from an error body. Anything unreadable yields "".
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Result  any    `json:"result"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	if result, ok := payload.Result.(string); ok {
		return strings.TrimSpace(result)
	}
	return ""
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
