// Package gateway is the typed HTTP client of the storefront API. Every
// response is validated against the domain schema before it is returned.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"

	"github.com/goccy/go-json"
)

const idempotencyHeader = "X-Idempotency-Key"

// Credentials supplies the bearer token. Resolve returns "" when there is no
// valid token.
type Credentials interface {
	Resolve() string
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
}

type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, timeout time.Duration, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authMode int

const (
	public authMode = iota
	required
	optional
)

type request struct {
	method   string
	path     string
	query    url.Values
	auth     authMode
	body     interface{}
	raw      io.Reader // pre-encoded body, used with contentType
	ctype    string
	idemKey  string
	validate bool
}

// call performs req and decodes the JSON response into T.
func call[T any](ctx context.Context, c *Client, req request) (T, error) {
	var out T
	resp, err := c.send(ctx, req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, &Error{Kind: KindTransport, Status: resp.StatusCode, Message: defaultMessage(KindTransport, 0), Err: err}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &Error{Kind: KindValidation, Status: resp.StatusCode, Message: "unexpected response from server", Err: err}
	}
	if req.validate {
		if err := schema.Validate(&out); err != nil {
			logger.Warn().Err(err).Str("path", req.path).Msg("Rejected malformed response")
			return out, &Error{Kind: KindValidation, Status: resp.StatusCode, Message: "unexpected response from server", Err: err}
		}
	}
	return out, nil
}

// exec performs req and discards the response body.
func exec(ctx context.Context, c *Client, req request) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// send returns a response with a 2xx status or a *Error.
func (c *Client) send(ctx context.Context, req request) (*http.Response, error) {
	var token string
	if req.auth != public {
		token = c.creds.Resolve()
		if token == "" && req.auth == required {
			return nil, &Error{Kind: KindUnauthorized, Message: "not signed in"}
		}
	}

	var body io.Reader = req.raw
	ctype := req.ctype
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(raw)
		ctype = "application/json"
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: defaultMessage(KindTransport, 0), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if ctype != "" {
		httpReq.Header.Set("Content-Type", ctype)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if req.idemKey != "" {
		httpReq.Header.Set(idempotencyHeader, req.idemKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Debug().Err(err).Str("method", req.method).Str("path", req.path).Msg("Request failed")
		return nil, &Error{Kind: KindTransport, Message: defaultMessage(KindTransport, 0), Err: err}
	}
	logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("API call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, errorFromResponse(resp)
}

// errorFromResponse prefers the server's {"error"} or {"message"} text.
func errorFromResponse(resp *http.Response) *Error {
	kind := kindForStatus(resp.StatusCode)
	gerr := &Error{Kind: kind, Status: resp.StatusCode, Message: defaultMessage(kind, resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return gerr
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Error != "":
			gerr.Message = payload.Error
		case payload.Message != "":
			gerr.Message = payload.Message
		}
	}
	gerr.Err = errors.New(strings.TrimSpace(string(raw)))
	return gerr
}

// multipartFile builds a single-file form body under the "file" field.
func multipartFile(filename, contentType string, r io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename=%q`, filename)}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
