package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrMissingPagination is returned when a list response has no pagination descriptor.
var ErrMissingPagination = errors.New("list response has no pagination")

type (
	// Options configures a Client.
	Options struct {
		BaseURL   string
		Timeout   time.Duration
		Tokens    oauth2.TokenSource // source of the bearer token; usually the session store
		Transport http.RoundTripper  // base transport; http.DefaultTransport when nil
	}

	// Request describes one backend call relative to the base URL.
	Request struct {
		Method    string
		Path      string
		Query     url.Values
		Body      interface{}
		Anonymous bool   // do not attach the bearer token (login, refresh)
		Token     string // explicit bearer token, used instead of the token source
	}

	// Meta is what a response carries besides its data.
	Meta struct {
		Message    string
		Pagination *Pagination
	}

	envelope struct {
		Success    *bool           `json:"success,omitempty"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
		Pagination *Pagination     `json:"pagination"`
	}

	errorBody struct {
		Message string `json:"message"`
	}

	// Client is the single configured HTTP collaborator of the dashboard.
	Client struct {
		baseURL *url.URL
		anon    *http.Client
		authed  *http.Client

		mu             sync.RWMutex
		onUnauthorized []func(*Error)
	}
)

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing base URL")
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	c := &Client{
		baseURL: base,
		anon:    &http.Client{Timeout: opts.Timeout, Transport: transport},
	}
	if opts.Tokens != nil {
		c.authed = &http.Client{
			Timeout:   opts.Timeout,
			Transport: &oauth2.Transport{Source: opts.Tokens, Base: transport},
		}
	}
	return c, nil
}

// OnUnauthorized registers `fn` to be called on every 401 response.
func (c *Client) OnUnauthorized(fn func(*Error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

// BaseURL returns the backend URL requests are relative to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do issues `req` and decodes the `data` of the response envelope into `out` (skipped when `out` is nil).
func (c *Client) Do(ctx context.Context, req Request, out interface{}) (Meta, error) {
	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return Meta{}, errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(buf)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req.Path, req.Query), body)
	if err != nil {
		return Meta{}, errors.Wrap(err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.anon
	switch {
	case req.Anonymous:
	case req.Token != "":
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	default:
		if c.authed == nil {
			return Meta{}, errors.New("client has no token source")
		}
		httpClient = c.authed
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return Meta{}, errors.Wrapf(err, "%s %s", method, req.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return Meta{}, errors.Wrap(err, "reading response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var eb errorBody
		if len(data) > 0 && json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Message
		}
		if apiErr.Status == http.StatusUnauthorized {
			c.unauthorized(apiErr)
		}
		return Meta{}, apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		meta := Meta{}
		if len(data) > 0 {
			var env envelope
			if err := json.Unmarshal(data, &env); err == nil {
				meta = Meta{Message: env.Message, Pagination: env.Pagination}
			}
		}
		return meta, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Meta{}, errors.Wrapf(err, "decoding %s %s response", method, req.Path)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return Meta{}, errors.Wrapf(ErrMissingData, "%s %s", method, req.Path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return Meta{}, errors.Wrapf(err, "decoding %s %s data", method, req.Path)
	}
	return Meta{Message: env.Message, Pagination: env.Pagination}, nil
}

func (c *Client) unauthorized(err *Error) {
	c.mu.RLock()
	handlers := append([]func(*Error){}, c.onUnauthorized...)
	c.mu.RUnlock()
	for _, fn := range handlers {
		fn(err)
	}
}

// Call issues `req` and returns its decoded data.
func Call[O any](ctx context.Context, c *Client, req Request) (O, error) {
	var out O
	if _, err := c.Do(ctx, req, &out); err != nil {
		var zero O
		return zero, err
	}
	return out, nil
}

// CallPage issues a list `req` and returns its page of items.
func CallPage[T any](ctx context.Context, c *Client, req Request) (Page[T], error) {
	var items []T
	meta, err := c.Do(ctx, req, &items)
	if err != nil {
		return Page[T]{}, err
	}
	if meta.Pagination == nil {
		return Page[T]{}, errors.Wrapf(ErrMissingPagination, "%s %s", req.Method, req.Path)
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Pagination: *meta.Pagination}, nil
}
