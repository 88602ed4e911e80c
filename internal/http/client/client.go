// Package client talks to the school backend API over HTTP/JSON.
//
// Every call is built from one configured origin, sends
// Content-Type: application/json, and classifies failures as
//
//   - *TransportError: no usable response (network, read or decode failure)
//   - *RemoteError:    a non-2xx status, whatever the body says
//
// Nothing is retried.
package client

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

	"github.com/aanand-mishra/school-admin/internal/types"
	"github.com/aanand-mishra/school-admin/internal/utils/response"
)

// DefaultTimeout bounds a request when no *http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// Client is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the request timeout. The *http.Client in use is copied
// first, so one passed to WithHTTPClient is left as it was.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// WithLogger sets the logger requests are logged to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for the API at origin, e.g. "http://localhost:3000".
func New(origin string, opts ...Option) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("client.New: parse origin: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("client.New: origin %q must be an absolute http(s) URL", origin)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches the whole collection. The result is never nil.
func (c *Client) List(ctx context.Context, res Resource) ([]types.Record, error) {
	if !res.Supports(OpList) {
		return nil, unsupported(res, OpList)
	}

	body, err := c.do(ctx, http.MethodGet, res.ListPath, "", nil)
	if err != nil {
		return nil, err
	}

	records, err := response.DecodeList(body)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, Path: res.ListPath, Err: err}
	}
	return records, nil
}

// Get fetches one record. ErrNotFound is returned when the response
// holds no record.
func (c *Client) Get(ctx context.Context, res Resource, id string) (types.Record, error) {
	if !res.Supports(OpGet) {
		return types.Record{}, unsupported(res, OpGet)
	}
	if id == "" {
		return types.Record{}, missingID(res)
	}

	body, err := c.do(ctx, http.MethodGet, res.GetPath, id, nil)
	if err != nil {
		return types.Record{}, err
	}

	r, err := response.DecodeOne(body)
	if errors.Is(err, response.ErrNoRecord) {
		return types.Record{}, ErrNotFound
	}
	if err != nil {
		return types.Record{}, &TransportError{Method: http.MethodGet, Path: res.GetPath, Err: err}
	}
	return r, nil
}

// Create posts r and returns the record the backend echoed back, or r
// itself when the backend sent no record.
func (c *Client) Create(ctx context.Context, res Resource, r types.Record) (types.Record, error) {
	if !res.Supports(OpCreate) {
		return types.Record{}, unsupported(res, OpCreate)
	}

	body, err := c.do(ctx, http.MethodPost, res.CreatePath, "", r)
	if err != nil {
		return types.Record{}, err
	}
	return echoed(http.MethodPost, res.CreatePath, body, r)
}

// Update puts r under id and returns the updated record, or r itself
// when the backend sent no record.
func (c *Client) Update(ctx context.Context, res Resource, id string, r types.Record) (types.Record, error) {
	if !res.Supports(OpUpdate) {
		return types.Record{}, unsupported(res, OpUpdate)
	}
	if id == "" {
		return types.Record{}, missingID(res)
	}

	body, err := c.do(ctx, http.MethodPut, res.UpdatePath, id, r)
	if err != nil {
		return types.Record{}, err
	}
	return echoed(http.MethodPut, res.UpdatePath, body, r)
}

// Delete removes the record with id. The response body is ignored.
func (c *Client) Delete(ctx context.Context, res Resource, id string) error {
	if !res.Supports(OpDelete) {
		return unsupported(res, OpDelete)
	}
	if id == "" {
		return missingID(res)
	}

	_, err := c.do(ctx, http.MethodDelete, res.DeletePath, id, nil)
	return err
}

// do sends one request and returns the body of a 2xx response.
// id, when set, is appended to path as an escaped final segment.
func (c *Client) do(ctx context.Context, method, path, id string, payload any) ([]byte, error) {
	u := c.base.JoinPath(path)
	if id != "" {
		// JoinPath cleans "." and "..", so the id segment is appended by hand.
		escaped := strings.TrimSuffix(u.EscapedPath(), "/")
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + id
		u.RawPath = escaped + "/" + escapeSegment(id)
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("encode body: %w", err)}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("request failed",
			slog.String("method", method),
			slog.String("url", u.String()),
			slog.String("error", err.Error()))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug("request done",
		slog.String("method", method),
		slog.String("url", u.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("request rejected",
			slog.String("method", method),
			slog.String("url", u.String()),
			slog.Int("status", resp.StatusCode))
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: response.ErrorMessage(body)}
	}

	return body, nil
}

// escapeSegment escapes id as one path segment. Dot-only segments are
// percent-encoded too, or they would be read as relative references.
func escapeSegment(id string) string {
	if id == "." || id == ".." {
		return strings.Repeat("%2E", len(id))
	}
	return url.PathEscape(id)
}

func echoed(method, path string, body []byte, sent types.Record) (types.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return sent, nil
	}

	r, err := response.DecodeOne(body)
	if errors.Is(err, response.ErrNoRecord) {
		return sent, nil
	}
	if err != nil {
		return types.Record{}, &TransportError{Method: method, Path: path, Err: err}
	}
	return r, nil
}
