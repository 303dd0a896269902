// Package gateway wraps the portal's outbound HTTP calls to the NACOS backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	GenericErrorMessage = "Something went wrong, please try again."

	contentTypeJSON = "application/json"
	defaultTimeout  = 30 * time.Second
)

// NetworkError is returned when a request never reached the server.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is returned when the server answered with a non-2xx status.
type HTTPError struct {
	Status  int
	Message string
	Fields  map[string]string // set for validation errors
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// StatusCode returns the status of an *HTTPError anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func IsUnauthorized(err error) bool { return StatusCode(err) == http.StatusUnauthorized }

func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

type TokenSource interface {
	Token() string
}

// Options of a single request.
// Headers are applied over the defaults; a header set to "" removes the default.
type Options struct {
	Method  string
	Query   url.Values
	Body    interface{} // JSON encoded, unless it is an io.Reader
	Headers http.Header
}

type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// New returns a Client calling `baseURL`. tokens may be nil for anonymous clients.
func New(baseURL string, tokens TokenSource, httpClient ...*http.Client) *Client {
	hc := &http.Client{Timeout: defaultTimeout}
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: hc,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request calls `endpoint` and returns the raw JSON body (nil for empty bodies).
// It never retries.
func (c *Client) Request(ctx context.Context, endpoint string, opts *Options) (json.RawMessage, error) {
	if opts == nil {
		opts = new(Options)
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	switch b := opts.Body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, endpoint, opts.Query, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("Content-Type", contentTypeJSON)
	for key, vals := range opts.Headers {
		if len(vals) == 0 || vals[0] == "" {
			req.Header.Del(key)
			continue
		}
		req.Header[http.CanonicalHeaderKey(key)] = vals
	}

	data, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// Fragment fetches the markup of a named section: `GET /<name>.html`.
func (c *Client) Fragment(ctx context.Context, name string) (string, error) {
	endpoint := "/" + name + ".html"
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	data, err := c.do(req, endpoint)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building request to %s", endpoint)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp.StatusCode, data)
	}
	return data, nil
}

// newHTTPError reads the API's error bodies: `{"error": "..."}` or a `{field: message}` map.
func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{Status: status, Message: GenericErrorMessage}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return httpErr
	}
	if msg, ok := fields["error"].(string); ok && msg != "" {
		httpErr.Message = msg
		return httpErr
	}

	httpErr.Fields = make(map[string]string, len(fields))
	keys := make([]string, 0, len(fields))
	for key, val := range fields {
		if msg, ok := val.(string); ok {
			httpErr.Fields[key] = msg
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		httpErr.Fields = nil
		return httpErr
	}
	sort.Strings(keys)
	msgs := make([]string, len(keys))
	for i, key := range keys {
		msgs[i] = key + ": " + httpErr.Fields[key]
	}
	httpErr.Message = strings.Join(msgs, "; ")
	return httpErr
}

// DecodeJSON unmarshals a Request result into v.
func DecodeJSON(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("empty response body")
	}
	return errors.Wrap(json.Unmarshal(raw, v), "decoding response")
}
