// Package apiclient talks to the salon REST API. Every call carries the
// bearer token of the injected TokenSource; failures are mapped onto the
// apierr taxonomy and responses are normalized into models records.
package apiclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"

	"github.com/zaqqye/salon_backoffice/internal/apierr"
	"github.com/zaqqye/salon_backoffice/internal/logger"
)

// TokenSource supplies the bearer token for each request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Retries bounds extra attempts of idempotent reads.
	Retries uint64
	Backoff time.Duration
	Tokens  TokenSource
	Logger  logger.Logger
}

type Client struct {
	http    *resty.Client
	baseURL *url.URL
	tokens  TokenSource
	retries uint64
	backoff time.Duration
	log     logger.Logger
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if !base.IsAbs() || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("base URL must be absolute http(s), got: %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	if opts.Tokens == nil {
		opts.Tokens = StaticToken("")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	hc := resty.New().
		SetBaseURL(base.String()).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "salonctl")
	return &Client{
		http:    hc,
		baseURL: base,
		tokens:  opts.Tokens,
		retries: opts.Retries,
		backoff: opts.Backoff,
		log:     opts.Logger,
	}, nil
}

// request describes one API call. resource and id name the record for
// not-found errors.
type request struct {
	method   string
	path     string
	query    map[string]string
	body     any
	resource string
	id       string
}

func (r request) op() string {
	return strings.ToLower(r.method) + " " + r.path
}

// send runs r and returns the raw response body. GETs are retried on
// network errors and gateway failures.
func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	if r.method != http.MethodGet || c.retries == 0 {
		return c.once(ctx, r)
	}
	var body []byte
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := c.once(ctx, r)
		if err != nil {
			if retryable(err) {
				c.log.Debug("retrying request", "op", r.op(), "err", err)
				return retry.RetryableError(err)
			}
			return err
		}
		body = out
		return nil
	})
	return body, err
}

func (c *Client) once(ctx context.Context, r request) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if tok := c.tokens.Token(); tok != "" {
		req.SetAuthToken(tok)
	}
	if len(r.query) > 0 {
		req.SetQueryParams(r.query)
	}
	if r.body != nil {
		req.SetBody(r.body)
	}
	start := time.Now()
	resp, err := req.Execute(r.method, r.path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, r.op())
		}
		return nil, &apierr.NetworkError{Op: r.op(), Err: err}
	}
	c.log.Debug("api call", "op", r.op(), "status", resp.StatusCode(), "duration", time.Since(start))
	if resp.IsError() {
		return nil, decodeError(resp.StatusCode(), resp.Body(), r)
	}
	return resp.Body(), nil
}

func retryable(err error) bool {
	var ne *apierr.NetworkError
	if stderrors.As(err, &ne) {
		return true
	}
	var se *apierr.ServerError
	if stderrors.As(err, &se) {
		switch se.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}
