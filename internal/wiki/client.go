package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// Default client settings. Callers normally override these from the
// configuration layer via options; the defaults keep the zero-config
// client usable in tests and small tools.
const (
	// defaultTimeout bounds a single HTTP request including redirects.
	defaultTimeout = 10 * time.Second

	// defaultMaxBodySize limits how much of an article body we read.
	// Wikipedia articles are rarely above 1MB of HTML; 5MB leaves
	// generous headroom while bounding memory per fetch.
	defaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// defaultUserAgent identifies the experiment to Wikipedia.
	// Wikimedia's robot policy asks for a descriptive User-Agent with
	// contact information rather than a browser impersonation.
	defaultUserAgent = "wikiwalk/1.0 (+https://github.com/wikiwalk/wikiwalk; educational first-link experiment)"

	// defaultRandomPagePath is Wikipedia's random-article endpoint.
	// Requesting it returns a redirect to a random article.
	defaultRandomPagePath = "/wiki/Special:Random"

	// defaultFetchDelay is the politeness pause after each request.
	defaultFetchDelay = 50 * time.Millisecond
)

// Client fetches Wikipedia pages over HTTP.
// It owns the concerns that belong to the wire: User-Agent injection,
// retries with backoff, bounded body reads, politeness delays, and an
// optional SOCKS5 proxy. Link extraction and walk bookkeeping live in
// the walker package.
//
// Design decision: We build our own *http.Client internally rather than
// accepting one because:
//  1. The transport settings (connection pool, proxy dialer) are part of
//     this package's contract, not the caller's
//  2. The User-Agent wrapper must sit on every request, including
//     redirects followed by the client
//  3. Tests exercise the client against httptest servers through the
//     same code path as production
type Client struct {
	// httpClient performs the actual requests.
	httpClient *http.Client

	// baseURL is the Wikipedia edition root (e.g. https://en.wikipedia.org).
	baseURL *url.URL

	// randomURL is the absolute URL of the random-article endpoint.
	randomURL string

	// userAgent is injected into every outgoing request.
	userAgent string

	// maxBodySize limits response body reads.
	maxBodySize int64

	// retry controls backoff behavior for transient failures.
	retry RetryPolicy

	// fetchDelay is the politeness pause applied after each request.
	fetchDelay time.Duration

	// timeout is the per-request timeout for the HTTP client.
	timeout time.Duration

	// proxyAddress is the optional SOCKS5 proxy in "host:port" format.
	proxyAddress string

	// logger records request-level events at debug level.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRetryPolicy sets the retry behavior for transient failures.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithRandomPage sets the absolute URL of the random-article endpoint.
// Empty means the endpoint is derived from the base URL.
func WithRandomPage(rawURL string) Option {
	return func(c *Client) {
		c.randomURL = rawURL
	}
}

// WithFetchDelay sets the politeness pause after each request.
// Zero disables the pause.
func WithFetchDelay(d time.Duration) Option {
	return func(c *Client) {
		c.fetchDelay = d
	}
}

// WithProxy routes all requests through a SOCKS5 proxy.
// The address must be in "host:port" format (e.g., "127.0.0.1:9050").
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithLogger sets the logger for request-level debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the Wikipedia edition rooted at baseURL.
//
// The baseURL must be an absolute http or https URL (e.g.,
// "https://en.wikipedia.org"). The random-article endpoint defaults to
// baseURL + "/wiki/Special:Random" unless overridden with WithRandomPage.
//
// This function validates configuration but performs no network I/O.
// The first request is made by RandomArticle or FetchArticle.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidBaseURL, baseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:     base,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		retry:       DefaultRetryPolicy(),
		fetchDelay:  defaultFetchDelay,
		timeout:     defaultTimeout,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.randomURL == "" {
		c.randomURL = strings.TrimRight(base.String(), "/") + defaultRandomPagePath
	}

	transport, err := c.newTransport()
	if err != nil {
		return nil, err
	}

	c.httpClient = &http.Client{
		// Wrap the transport so every request carries our User-Agent,
		// including redirects followed internally by the client.
		Transport: &userAgentTransport{
			base:      transport,
			userAgent: c.userAgent,
		},
		Timeout: c.timeout,
	}

	return c, nil
}

// newTransport builds the HTTP transport, routing through the SOCKS5
// proxy when one is configured.
//
// Design decision: We use a small connection pool because the walk is
// nearly sequential per worker and all requests go to a single host.
// Large idle pools would just hold sockets open against Wikipedia.
func (c *Client) newTransport() (*http.Transport, error) {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if c.proxyAddress == "" {
		return transport, nil
	}

	if !isValidProxyAddress(c.proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddress)
	}

	// We use nil for auth because SOCKS5 proxies used for this kind of
	// routing (Tor, SSH tunnels) typically don't require credentials.
	dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}

	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		// proxy.Dialer doesn't support context directly. Dial in a
		// goroutine so cancellation isn't blocked on the proxy; the
		// underlying attempt may continue briefly after cancel.
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)

		go func() {
			conn, err := dialer.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return transport, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
// We use a simple check rather than a full URL parser because the format
// is very specific (no scheme, no path, just host and port).
func isValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}

	host := parts[0]
	port := parts[1]

	if host == "" || port == "" {
		return false
	}

	// Port must be a number between 1 and 65535.
	portNum := 0
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
		portNum = portNum*10 + int(r-'0')
		if portNum > 65535 {
			return false
		}
	}

	return portNum >= 1
}

// RandomArticle requests the random-article endpoint and returns the
// article the server redirected to.
//
// The endpoint answers with a redirect to a random article; the HTTP
// client follows it, so the final request URL identifies the article.
// The fragment, if any, is stripped during normalization.
func (c *Client) RandomArticle(ctx context.Context) (model.ArticleRef, error) {
	resp, err := c.get(ctx, c.randomURL)
	if err != nil {
		return "", fmt.Errorf("fetch random article: %w", err)
	}
	defer drainAndClose(resp.Body)

	if !successStatus(resp.StatusCode) {
		return "", fmt.Errorf("%w: random article endpoint returned %s", ErrUnexpectedStatus, resp.Status)
	}

	// resp.Request reflects the last request in the redirect chain.
	ref := model.NewArticleRef(resp.Request.URL.String())
	c.logger.DebugContext(ctx, "random article selected", "article", ref.String())

	c.politenessDelay(ctx)

	return ref, nil
}

// FetchArticle retrieves the HTML body of the given article.
//
// Responses outside the 2xx range are errors: an error page carries no
// article content, and parsing one would let bogus link data into the
// cache. The body read is capped at the configured maximum size.
func (c *Client) FetchArticle(ctx context.Context, ref model.ArticleRef) ([]byte, error) {
	resp, err := c.get(ctx, ref.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer drainAndClose(resp.Body)

	if !successStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnexpectedStatus, ref, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read body of %s: %w", ref, err)
	}

	c.logger.DebugContext(ctx, "article fetched", "article", ref.String(), "bytes", len(body))

	c.politenessDelay(ctx)

	return body, nil
}

// BaseURL returns the configured Wikipedia edition root.
// The walker uses it to resolve relative hrefs during link extraction.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// ProxyAddress returns the configured proxy address, or "" when requests
// go out directly.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// get performs a GET request with retries according to the retry policy.
//
// Transport errors and retryable status codes (429 and selected 5xx)
// trigger backoff and a fresh attempt. A response with any other status
// is returned to the caller for interpretation; exhausting all attempts
// yields ErrRetriesExhausted wrapping the last failure.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	retryable := c.retry.RetryableMethod(http.MethodGet)
	backoff := c.retry.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.DebugContext(ctx, "retrying request",
				"url", rawURL, "attempt", attempt, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = c.retry.NextBackoff(backoff)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
		}
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Cancellation surfaces as a transport error; report it as
			// the context's error rather than retrying into a dead ctx.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !retryable {
				return nil, err
			}
			lastErr = err
			continue
		}

		if retryable && c.retry.RetryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("server returned %s", resp.Status)
			drainAndClose(resp.Body)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: %d attempts for %s: %v",
		ErrRetriesExhausted, c.retry.MaxRetries+1, rawURL, lastErr)
}

// politenessDelay pauses between requests so the walk doesn't hammer the
// server. Cancellation cuts the pause short without failing the request
// that already completed.
func (c *Client) politenessDelay(ctx context.Context) {
	if c.fetchDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.fetchDelay):
	}
}

// successStatus reports whether the status code is in the 2xx range.
func successStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// drainAndClose discards any unread body and closes it so the underlying
// connection can be reused by the transport.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// userAgentTransport wraps an http.RoundTripper to inject the configured
// User-Agent into every request, including redirects the HTTP client
// follows on its own.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original.
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
