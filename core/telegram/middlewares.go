package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/coursebot/core/config"
	"github.com/m3rciful/coursebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions tunes DefaultMiddlewares.
type MiddlewareOptions struct {
	// OnLimited answers updates dropped by the rate limiter.
	OnLimited tele.HandlerFunc
	// OnPanic tells the user a handler crashed.
	OnPanic tele.HandlerFunc
	// Extra middlewares run after the shared chain, closest to handlers.
	Extra []Middleware
}

// DefaultMiddlewares builds the shared middleware chain for bots.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.Recover(opts.OnPanic)},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Burst:     cfg.RateLimit.Burst,
					Exclude:   ex,
					OnLimited: opts.OnLimited,
				}),
			})
		}
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	return append(mws, opts.Extra...)
}
