package providers

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/km-arc/go-services/framework/extension"
)

// RateLimit owns a token bucket. The bucket is created in Setup, so every
// container gets its own.
type RateLimit struct {
	extension.Extension

	Rate  float64
	Burst int

	limiter *rate.Limiter
}

// NewRateLimit declares a bucket refilling perSecond tokens up to burst.
func NewRateLimit(perSecond float64, burst int) *RateLimit {
	r := &RateLimit{Rate: perSecond, Burst: burst}
	r.Init(perSecond, burst)
	return r
}

// Setup creates the bucket.
func (r *RateLimit) Setup(_ context.Context) error {
	r.limiter = rate.NewLimiter(rate.Limit(r.Rate), r.Burst)
	return nil
}

// Limiter returns the bucket (nil before Setup).
func (r *RateLimit) Limiter() *rate.Limiter { return r.limiter }

// Limiter injects a container-private *rate.Limiter.
//
//	def.Attach("limiter", providers.NewLimiter(10, 5))
//
//	func handle(ctx context.Context, call *service.Call) (any, error) {
//	    lim, _ := service.Get[*rate.Limiter](call, "limiter")
//	    if !lim.Allow() { ... }
//	}
type Limiter struct {
	extension.InjectionProvider

	Bucket *RateLimit `extension:"bucket"`
}

// NewLimiter declares a Limiter owning a bucket of the given rate.
func NewLimiter(perSecond float64, burst int) *Limiter {
	l := &Limiter{Bucket: NewRateLimit(perSecond, burst)}
	l.Init(perSecond, burst)
	return l
}

// Acquire returns the container's bucket.
func (l *Limiter) Acquire(_ context.Context, _ *extension.Worker) (any, error) {
	return l.Bucket.Limiter(), nil
}
