package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/studentpulse/internal/api/response"
	"github.com/kiranshivaraju/studentpulse/internal/cache"
)

const (
	defaultRequestsPerMinute = 60
	rateWindow               = time.Minute
)

// RateLimit counts requests per API key in fixed one-minute windows aligned to
// the clock. Counters live in the cache so every replica shares them.
type RateLimit struct {
	cache          cache.Cache
	requestsPerMin int
	now            func() time.Time
}

func NewRateLimit(c cache.Cache, requestsPerMin int) *RateLimit {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMinute
	}
	return &RateLimit{cache: c, requestsPerMin: requestsPerMin, now: time.Now}
}

// WithClock replaces the time source.
func (rl *RateLimit) WithClock(now func() time.Time) *RateLimit {
	rl.now = now
	return rl
}

// Limit must run after Authenticate; unauthenticated requests pass through.
func (rl *RateLimit) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := APIKey(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		prefix := key.KeyPrefix

		windowStart := rl.now().Truncate(rateWindow)
		reset := windowStart.Add(rateWindow)

		// The counter outlives its window by a little so late increments still expire.
		count, err := rl.cache.IncrWithExpiry(r.Context(), cache.RateLimitKey(prefix, windowStart), rateWindow+5*time.Second)
		if err != nil {
			slog.Warn("rate limit check failed, allowing request", "prefix", prefix, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(rl.requestsPerMin-int(count), 0)))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > int64(rl.requestsPerMin) {
			retry := int(reset.Sub(rl.now()).Seconds()) + 1
			h.Set("Retry-After", strconv.Itoa(min(retry, int(rateWindow.Seconds()))))
			response.Error(w, http.StatusTooManyRequests,
				response.CodeRateLimited, "Too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
