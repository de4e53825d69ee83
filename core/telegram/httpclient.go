package telegram

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/m3rciful/coursebot/core/telegram/netutil"
)

const (
	defaultDialTimeout     = 5 * time.Second
	defaultTLSHandshake    = 5 * time.Second
	defaultIdleConnTimeout = 30 * time.Second
	defaultClientTimeout   = 30 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBackoff    = 2 * time.Second
	maxRetryAfter          = 30 * time.Second
)

// BuildHTTPClient returns an HTTP client for Bot API calls. Transport failures and 429/5xx
// answers are retried with linear backoff, honoring Retry-After.
//
// The client timeout must exceed the long-poll timeout, so no response header timeout is set.
func BuildHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout:   defaultClientTimeout,
		Transport: &retryTransport{base: transport, maxRetries: defaultRetryAttempts, backoff: defaultRetryBackoff},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	for attempt := 1; ; attempt++ {
		resp, err := base.RoundTrip(req)
		if attempt > t.maxRetries {
			return resp, err
		}
		var delay time.Duration
		switch {
		case err != nil && netutil.ShouldRetry(err):
			delay = t.backoff * time.Duration(attempt)
		case err == nil && retryableStatus(resp.StatusCode):
			delay = retryAfter(resp.Header.Get("Retry-After"), t.backoff*time.Duration(attempt))
		default:
			return resp, err
		}

		next, ok := rewind(req)
		if !ok {
			return resp, err
		}
		if resp != nil {
			drain(resp)
		}
		if err := wait(req, delay); err != nil {
			return nil, err
		}
		req = next
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// retryAfter parses a Retry-After value in seconds, capped at maxRetryAfter.
func retryAfter(header string, fallback time.Duration) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return fallback
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

// rewind clones req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, bool) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	next.Body = body
	return next, true
}

func wait(req *http.Request, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
