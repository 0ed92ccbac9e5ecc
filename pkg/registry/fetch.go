package registry

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/ajxudir/updatecheck/pkg/verbose"
)

var (
	// ErrUpstreamDown is returned for 5xx responses and open circuit breakers.
	ErrUpstreamDown = stderrors.New("upstream registry unavailable")
	// ErrRateLimited is returned for 429 responses.
	ErrRateLimited = stderrors.New("rate limited by upstream")
)

const (
	// maxResponseSize bounds a single metadata or changelog response.
	maxResponseSize = 32 * 1024 * 1024
	// maxRetryElapsed bounds the time spent retrying one request.
	maxRetryElapsed = 2 * time.Minute
)

// HTTPError is a non-success HTTP response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// fetcher performs GET requests with retries and a circuit breaker per host.
type fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration

	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

func newFetcher() *fetcher {
	return &fetcher{
		client:     newCachingClient(30 * time.Second),
		userAgent:  "updatecheck/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		breakers:   make(map[string]*circuit.Breaker),
	}
}

// newCachingClient returns an HTTP client that caches DNS lookups for the
// lifetime of the process.
func newCachingClient(timeout time.Duration) *http.Client {
	resolver := &dnscache.Resolver{}
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				ips, err := resolver.LookupHost(ctx, host)
				if err != nil {
					return nil, err
				}
				for _, ip := range ips {
					conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
					if err == nil {
						return conn, nil
					}
				}
				return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
			},
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// breaker returns or creates the circuit breaker for a host. It trips
// after five consecutive failures.
func (f *fetcher) breaker(host string) *circuit.Breaker {
	f.mu.RLock()
	b, ok := f.breakers[host]
	f.mu.RUnlock()
	if ok {
		return b
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.breakers[host]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	f.breakers[host] = b
	return b
}

// get fetches rawURL. A 404 reports found == false with a nil error and
// does not count against the breaker.
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, bool, error) {
	host := hostOf(rawURL)
	b := f.breaker(host)
	if !b.Ready() {
		return nil, false, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var (
		body  []byte
		found bool
	)
	err := b.Call(func() error {
		var callErr error
		body, found, callErr = f.getWithRetry(ctx, rawURL)
		return callErr
	}, 0)
	if err != nil {
		return nil, false, err
	}
	return body, found, nil
}

func (f *fetcher) getWithRetry(ctx context.Context, rawURL string) ([]byte, bool, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.baseDelay
	policy.MaxElapsedTime = maxRetryElapsed
	policy.Reset()

	var (
		body    []byte
		found   bool
		attempt int
	)
	operation := func() error {
		attempt++
		var err error
		body, found, err = f.do(ctx, rawURL)
		if err == nil {
			return nil
		}
		if stderrors.Is(err, ErrUpstreamDown) || stderrors.Is(err, ErrRateLimited) || isTemporary(err) {
			verbose.Printf("GET %s failed (attempt %d): %v", rawURL, attempt, err)
			return err
		}
		return backoff.Permanent(err)
	}

	// WithMaxRetries treats zero as unlimited, so no retries needs StopBackOff.
	var retry backoff.BackOff = &backoff.StopBackOff{}
	if f.maxRetries > 0 {
		retry = backoff.WithMaxRetries(policy, uint64(f.maxRetries))
	}
	err := backoff.Retry(operation, backoff.WithContext(retry, ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, err
	}
	return body, found, nil
}

func (f *fetcher) do(ctx context.Context, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, false, fmt.Errorf("%w (retry after %s)", ErrRateLimited, retryAfter(resp))
	case resp.StatusCode >= 500:
		return nil, false, fmt.Errorf("%w: %w", ErrUpstreamDown, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL})
	default:
		return nil, false, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, false, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, false, fmt.Errorf("response from %s exceeds %d bytes", rawURL, maxResponseSize)
	}
	return body, true, nil
}

// states reports "open" or "closed" per host, for diagnostics.
func (f *fetcher) states() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.breakers))
	for host, b := range f.breakers {
		if b.Tripped() {
			out[host] = "open"
		} else {
			out[host] = "closed"
		}
	}
	return out
}

func retryAfter(resp *http.Response) string {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return (time.Duration(n) * time.Second).String()
		}
		return s
	}
	return "unspecified"
}

func isTemporary(err error) bool {
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
