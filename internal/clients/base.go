package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
)

type ctxKey struct{}

// WithBearer attaches an upstream bearer token to ctx. It takes precedence
// over the token of the inbound request.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

// BearerFrom returns the token set by WithBearer, falling back to the inbound
// request's bearer token.
func BearerFrom(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKey{}).(string); ok && s != "" {
		return s
	}
	return middleware.GetBearerToken(ctx)
}

// Client is the shared transport for one upstream service.
type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client
}

func NewClient(name string, baseURL string, httpClient *http.Client) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	return &Client{Name: name, BaseURL: u, HTTP: httpClient}
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	rel := &url.URL{Path: strings.TrimPrefix(path, "/"), RawQuery: rawQuery}
	u := c.base().ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)
	req.Header.Set("Accept", "application/json")

	if req.Header.Get("Authorization") == "" {
		if tok := BearerFrom(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	// Ensure correlation id propagated upstream
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}

	return c.HTTP.Do(req)
}

// base returns BaseURL with a trailing slash so that relative resolution keeps
// any path prefix (e.g. a gateway mounted under /api).
func (c *Client) base() *url.URL {
	b := *c.BaseURL
	if !strings.HasSuffix(b.Path, "/") {
		b.Path += "/"
	}
	return &b
}

// call sends in as JSON (when non-nil) and decodes the envelope result into a T.
func call[T any](ctx context.Context, c *Client, method, path, rawQuery string, in any) (T, error) {
	var zero T
	resp, err := c.send(ctx, method, path, rawQuery, in)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	return decodeResult[T](c.Name, resp)
}

// callVoid is call for endpoints whose success carries no result.
func callVoid(ctx context.Context, c *Client, method, path string, in any) error {
	resp, err := c.send(ctx, method, path, "", in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(c.Name, resp)
}

func (c *Client) send(ctx context.Context, method, path, rawQuery string, in any) (*http.Response, error) {
	var (
		body    io.Reader
		headers = http.Header{}
	)
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", c.Name, err)
		}
		body = bytes.NewReader(buf)
		headers.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(ctx, method, path, rawQuery, body, headers)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", c.Name, method, path, err)
	}
	return resp, nil
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) {
			continue
		}
		if strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}
