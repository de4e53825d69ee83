package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/coursebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	// Interval is the sustained minimum gap between updates of one user.
	Interval time.Duration
	// Burst is how many updates may arrive back to back; values below 1 mean 1.
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops limiters of users that have been quiet this long; 0 means 10 minutes.
	IdleTTL time.Duration
}

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// UpdateKind names the kind of update for rate limit exclusions.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware returns a middleware that throttles each user with a token bucket.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	var (
		mu        sync.Mutex
		limiters  = make(map[int64]*userLimiter)
		lastSweep time.Time
	)
	allow := func(userID int64, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if now.Sub(lastSweep) > ttl {
			for id, ul := range limiters {
				if now.Sub(ul.lastSeen) > ttl {
					delete(limiters, id)
				}
			}
			lastSweep = now
		}
		ul, ok := limiters[userID]
		if !ok {
			ul = &userLimiter{lim: rate.NewLimiter(rate.Every(opts.Interval), burst)}
			limiters[userID] = ul
		}
		ul.lastSeen = now
		return ul.lim.AllowN(now, 1)
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[UpdateKind(c.Update())]; skip {
				return next(c)
			}
			if allow(user.ID, time.Now()) {
				return next(c)
			}

			attrs := []any{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.Warn("rate limit", attrs...)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
