package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

// TokenSource yields the bearer token for the next request.
type TokenSource interface {
	CurrentToken() string
}

// Request describes one backend call. At most one of Form and Parts is used
// as the body; Parts is sent as multipart/form-data.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Parts  map[string]string

	// Bearer overrides the token source for this request.
	Bearer string
	// Anonymous suppresses the Authorization header.
	Anonymous bool
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        logging.Logger
}

// NewClient returns a client for baseURL whose requests are bounded by
// timeout.
func NewClient(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// WithTokens returns a copy of c that authorizes requests with ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// Do sends req and decodes a 2xx JSON body into out (when out is non-nil).
//
// The returned error is non-nil only when no usable response was obtained:
// connectivity failures and deadline expiry match common.ErrTransport,
// undecodable 2xx bodies match common.ErrBackend. Non-2xx statuses are
// returned as-is for the caller to interpret.
func (c *Client) Do(ctx context.Context, req Request, out any) (int, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return 0, err
	}

	requestID := httpReq.Header.Get(common.RequestIDHeaderName)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return 0, fmt.Errorf("%w: %s %s: %w", common.ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %s %s: read body: %w", common.ErrTransport, req.Method, req.Path, err)
	}

	c.log.Debug(ctx, "request done",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	if out != nil && isSuccess(resp.StatusCode) && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %s %s: decode: %w", common.ErrBackend, req.Method, req.Path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Parts != nil:
		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		keys := make([]string, 0, len(req.Parts))
		for k := range req.Parts {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if err := mw.WriteField(k, req.Parts[k]); err != nil {
				return nil, fmt.Errorf("%w: multipart: %w", common.ErrTransport, err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("%w: multipart: %w", common.ErrTransport, err)
		}
		body, contentType = buf, mw.FormDataContentType()
	case req.Form != nil:
		body, contentType = strings.NewReader(req.Form.Encode()), "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", common.ErrTransport, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if token := c.bearer(req); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func (c *Client) bearer(req Request) string {
	switch {
	case req.Anonymous:
		return ""
	case req.Bearer != "":
		return req.Bearer
	case c.tokens != nil:
		return c.tokens.CurrentToken()
	default:
		return ""
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// Check turns a non-2xx status into a *common.StatusError for op.
func Check(op string, status int) error {
	if isSuccess(status) {
		return nil
	}
	return common.NewStatusError(op, status)
}
