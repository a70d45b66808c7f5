// Package http wraps resty with the retry policy shared by every REST
// surface of the SDK: transient failures (network errors, 5xx, 429) retry
// with exponential backoff, everything else propagates immediately.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/betbot/gosdk/pkg/sdk/types"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryCount   = 3
	defaultRetryWait    = 500 * time.Millisecond
	defaultRetryMaxWait = 10 * time.Second

	userAgent = "@betbot/gosdk"
)

// Options tune the client. Zero values fall back to defaults.
type Options struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

type Client struct {
	client *resty.Client
}

// NewClient builds a retrying client rooted at host.
func NewClient(host string, opts *Options) *Client {
	host = strings.TrimSuffix(host, "/")

	timeout := defaultTimeout
	retryCount := defaultRetryCount
	retryWait := defaultRetryWait
	retryMaxWait := defaultRetryMaxWait
	if opts != nil {
		if opts.Timeout > 0 {
			timeout = opts.Timeout
		}
		if opts.RetryCount > 0 {
			retryCount = opts.RetryCount
		}
		if opts.RetryWait > 0 {
			retryWait = opts.RetryWait
		}
		if opts.RetryMaxWait > 0 {
			retryMaxWait = opts.RetryMaxWait
		}
	}

	// resty picks up proxy configuration from the environment
	// (HTTP_PROXY, HTTPS_PROXY, http_proxy, https_proxy).
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// On 429 honor the Retry-After header when present.
			if resp != nil && resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return d, nil
					}
				}
				return retryMaxWait, nil
			}
			return 0, nil
		})

	return &Client{client: client}
}

// RequestOptions carry per-request headers, query params and body.
type RequestOptions struct {
	Headers map[string]string
	Params  map[string]string
	Data    any
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", userAgent)
	return r
}

// DoRequest issues method endpoint with opt, decoding a 2xx body into out.
// Non-2xx responses come back as *types.HTTPError after retries are
// exhausted (or immediately for non-retryable statuses).
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, opt *RequestOptions, out any) error {
	rc := c.newRequest(ctx)
	if opt != nil {
		if opt.Headers != nil {
			rc.SetHeaders(opt.Headers)
		}
		if opt.Params != nil {
			rc.SetQueryParams(opt.Params)
		}
		if opt.Data != nil {
			rc.SetHeader("Content-Type", "application/json")
			rc.SetBody(opt.Data)
		}
	}
	var resp *resty.Response
	var err error
	switch strings.ToUpper(method) {
	case http.MethodGet:
		resp, err = rc.Get(endpoint)
	case http.MethodPost:
		resp, err = rc.Post(endpoint)
	case http.MethodDelete:
		resp, err = rc.Delete(endpoint)
	case http.MethodPut:
		resp, err = rc.Put(endpoint)
	default:
		return types.NewError(types.ErrCodeBadInput, "unsupported method: %s", method)
	}

	if err := check(endpoint, resp, err); err != nil {
		return err
	}

	// Decode ourselves rather than through SetResult: some endpoints
	// answer JSON without a JSON content type.
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return types.WrapError(err, types.ErrCodeHTTP, "decode response from %s", endpoint)
		}
	}
	return nil
}

// check converts transport errors and non-2xx responses into SDK errors.
func check(endpoint string, resp *resty.Response, err error) error {
	if err != nil {
		return types.WrapError(err, types.ErrCodeHTTP, "request %s failed", endpoint)
	}
	if resp.IsSuccess() {
		return nil
	}
	return &types.HTTPError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       strings.TrimSpace(string(resp.Body())),
		Endpoint:   endpoint,
	}
}

// BaseURL returns the configured host.
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

// String implements fmt.Stringer for debug logging.
func (c *Client) String() string {
	return fmt.Sprintf("http.Client{%s}", c.client.BaseURL)
}
