package spotify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/osa030/moodbox/internal/infra/metrics"
)

const breakerName = "spotify-api"

// TransportConfig represents the outbound policy for catalog calls.
type TransportConfig struct {
	RequestTimeout    time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	MaxRetryAfter     time.Duration
	RequestsPerSecond float64
	Burst             int

	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
}

// DefaultTransportConfig returns the policy used when nothing is configured.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		RequestTimeout:      6 * time.Second,
		MaxRetries:          2,
		RetryBackoff:        400 * time.Millisecond,
		MaxRetryAfter:       5 * time.Second,
		RequestsPerSecond:   10,
		Burst:               10,
		BreakerMaxRequests:  3,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      30 * time.Second,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.6,
	}
}

var errServerStatus = errors.New("catalog server error")

// transport layers an outbound rate limiter, a circuit breaker and a
// retrying round tripper over a base transport.
type transport struct {
	base    http.RoundTripper
	cfg     TransportConfig
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*http.Response]
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewTransport wraps base with the catalog outbound policy.
func NewTransport(base http.RoundTripper, cfg TransportConfig) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	def := DefaultTransportConfig()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	if cfg.MaxRetryAfter <= 0 {
		cfg.MaxRetryAfter = def.MaxRetryAfter
	}
	if cfg.BreakerFailureRatio <= 0 {
		cfg.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if cfg.BreakerMinRequests == 0 {
		cfg.BreakerMinRequests = def.BreakerMinRequests
	}

	t := &transport{
		base:  base,
		cfg:   cfg,
		sleep: sleepWithContext,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	t.cb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.BreakerFailureRatio {
				zlog.Warn().Msgf("[CIRCUIT BREAKER] opening: failures=%d ratio=%.2f", counts.TotalFailures, ratio)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zlog.Info().Msgf("[CIRCUIT BREAKER] state transition: %s -> %s", from, to)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return t
}

// RoundTrip implements http.RoundTripper.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, errors.Wrap(err, "catalog rate limiter")
		}
	}

	var resp *http.Response
	_, err := t.cb.Execute(func() (*http.Response, error) {
		r, err := t.roundTripWithRetry(req)
		if err != nil {
			return nil, err
		}
		resp = r
		if r.StatusCode >= http.StatusInternalServerError {
			return r, errServerStatus
		}
		return r, nil
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return resp, nil
	case errors.Is(err, errServerStatus):
		// the final upstream response is still handed to the caller
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		zlog.Warn().Msgf("[CIRCUIT BREAKER] request rejected: %s %s", req.Method, req.URL.Path)
		return nil, errors.Wrap(err, "catalog circuit breaker")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	}
}

// roundTripWithRetry runs up to MaxRetries+1 attempts, each bounded by
// RequestTimeout. On exhaustion the last response is returned as is.
func (t *transport) roundTripWithRetry(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	attempts := t.cfg.MaxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "catalog request canceled")
		}

		resp, err := t.attempt(req)
		retryAfter, reason, retry := shouldRetry(ctx, resp, err)
		if !retry || attempt == attempts-1 {
			if err != nil {
				return nil, errors.Wrapf(err, "catalog request failed after %d attempts", attempt+1)
			}
			return resp, nil
		}

		metrics.CatalogRetries.WithLabelValues(reason).Inc()
		if err != nil {
			zlog.Warn().Msgf("catalog retry %d/%d after error: path=%s error=%v", attempt+1, t.cfg.MaxRetries, req.URL.Path, err)
		} else {
			zlog.Warn().Msgf("catalog retry %d/%d after status %d: path=%s", attempt+1, t.cfg.MaxRetries, resp.StatusCode, req.URL.Path)
			_ = resp.Body.Close()
		}

		backoff := t.cfg.RetryBackoff * time.Duration(1<<attempt)
		if retryAfter > 0 {
			backoff = min(retryAfter, t.cfg.MaxRetryAfter)
		}
		if err := t.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	return nil, errors.New("catalog request failed")
}

// attempt performs one bounded call. The body is read before the attempt
// context is released so callers never see a canceled stream.
func (t *transport) attempt(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.cfg.RequestTimeout)
	defer cancel()

	r := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "reset request body")
		}
		r.Body = body
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	metrics.CatalogRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CatalogRequests.WithLabelValues(metrics.StatusClass(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}

// shouldRetry reports whether an attempt is transient. 4xx other than 429
// is never retried, and neither is a canceled parent context.
func shouldRetry(ctx context.Context, resp *http.Response, err error) (time.Duration, string, bool) {
	if err != nil {
		if ctx.Err() != nil {
			return 0, "", false
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, "timeout", true
		}
		return 0, "network", true
	}
	if resp == nil {
		return 0, "", false
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return parseRetryAfter(resp), "rate_limit", true
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), "server", true
	}
	return 0, "", false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "catalog request canceled")
	case <-timer.C:
		return nil
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
