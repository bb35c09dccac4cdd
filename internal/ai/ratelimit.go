package ai

import (
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Provider with a token-bucket limit so a chatty cast of
// voices cannot exhaust the upstream quota.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute calls with a small burst.
func NewRateLimited(inner Provider, perMinute int) *RateLimited {
	if perMinute <= 0 {
		perMinute = 6
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 2),
	}
}

func (r *RateLimited) Generate(messages []Message) (string, error) {
	if !r.limiter.Allow() {
		return "", fmt.Errorf("completion rate limit exceeded")
	}
	return r.inner.Generate(messages)
}
