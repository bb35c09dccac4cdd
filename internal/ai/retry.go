package ai

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// StatusError is an upstream HTTP failure carrying the status code, so the
// retrier can tell overload from rejection.
type StatusError struct {
	Origin string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Origin, e.Code, e.Body)
}

// Transient reports whether the status is worth retrying (429 or 5xx).
func (e *StatusError) Transient() bool {
	return e.Code == 429 || (e.Code >= 500 && e.Code < 600)
}

// Retrier wraps a Provider with bounded exponential backoff. Only transient
// failures retry: upstream overload, server errors, and transport errors.
// Anything else (bad request, unparseable body) surfaces immediately.
type Retrier struct {
	inner     Provider
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewRetrier allows up to attempts tries with backoff starting at half a
// second, capped at ten.
func NewRetrier(inner Provider, attempts int) *Retrier {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{
		inner:     inner,
		attempts:  attempts,
		baseDelay: 500 * time.Millisecond,
		maxDelay:  10 * time.Second,
	}
}

func (r *Retrier) Generate(messages []Message) (string, error) {
	delay := r.baseDelay
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		out, err := r.inner.Generate(messages)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !transient(err) {
			return "", err
		}
		if attempt == r.attempts {
			break
		}
		log.Debug().Err(err).Int("attempt", attempt).Dur("backoff", delay).
			Msg("completion retry")
		time.Sleep(delay + jitter(delay))
		if delay *= 2; delay > r.maxDelay {
			delay = r.maxDelay
		}
	}
	return "", lastErr
}

func transient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// jitter spreads retries by up to a quarter of the delay.
func jitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay / 4)))
}
