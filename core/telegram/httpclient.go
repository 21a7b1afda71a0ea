package telegram

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	tlsTimeout        = 5 * time.Second
	idleConnTimeout   = 90 * time.Second
	keepAliveInterval = 30 * time.Second
	// requestSlack is added on top of the long-poll timeout so getUpdates
	// is not cut off by the client before Telegram answers.
	requestSlack = 15 * time.Second

	defaultTransportRetries = 2
	defaultTransportBackoff = 500 * time.Millisecond
	maxTransportBackoff     = 4 * time.Second
)

// ClientOptions tunes BuildHTTPClient. Zero values select defaults.
type ClientOptions struct {
	LongPollTimeout time.Duration
	Retries         int
	Backoff         time.Duration
	// Base overrides the underlying transport, mainly for tests.
	Base http.RoundTripper
}

// BuildHTTPClient returns an HTTP client for the Bot API that retries
// transient transport failures of replayable requests.
func BuildHTTPClient(opts ClientOptions) *http.Client {
	if opts.LongPollTimeout <= 0 {
		opts.LongPollTimeout = defaultLongPollTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultTransportRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultTransportBackoff
	}
	base := opts.Base
	if base == nil {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAliveInterval}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          32,
			MaxIdleConnsPerHost:   8,
			IdleConnTimeout:       idleConnTimeout,
			TLSHandshakeTimeout:   tlsTimeout,
			ExpectContinueTimeout: time.Second,
		}
	}
	return &http.Client{
		Timeout: opts.LongPollTimeout + requestSlack,
		Transport: &retryTransport{
			base:    base,
			retries: opts.Retries,
			backoff: opts.Backoff,
		},
	}
}

type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.retries; attempt++ {
		if !netutil.ShouldRetry(err) || !replayable(req) {
			return nil, err
		}
		delay := netutil.Backoff(attempt, t.backoff, maxTransportBackoff)
		logger.Debug(req.Context(), "tg.http", "http.retry",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error_kind", netutil.Classify(err)),
		)
		if werr := wait(req.Context(), delay); werr != nil {
			return nil, werr
		}
		next := req.Clone(req.Context())
		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, berr
			}
			next.Body = body
		}
		resp, err = t.base.RoundTrip(next)
	}
	return resp, err
}

// replayable reports whether the request body can be produced again.
func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
