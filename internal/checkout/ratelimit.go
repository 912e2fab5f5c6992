package checkout

import (
	"context"
	"time"
)

// Rate limit policy used across checkout. Keys are "action:subject".
const (
	SMSPerPhoneLimit  = 3
	SMSPerPhoneWindow = 24 * time.Hour
	SMSPerIPLimit     = 5
	SMSPerIPWindow    = time.Hour
	VerifyMaxAttempts = 5
)

func smsPhoneKey(phone string) string { return "sms_phone:" + phone }
func smsIPKey(ip string) string       { return "sms_ip:" + ip }

// Limiter is a fixed-window counter over a RateLimitStore. The store's Bump
// is a single atomic reset-or-increment, so concurrent callers for the same
// key serialize at the storage layer.
type Limiter struct {
	store RateLimitStore
	now   func() time.Time
}

func NewLimiter(store RateLimitStore) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// Allow consumes one unit of the key's budget. When the budget is exhausted
// it reports allowed=false with the time until the window resets; the
// consumed unit is not returned (denied calls do not extend the window).
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (retryAfter time.Duration, allowed bool, err error) {
	now := l.now()
	entry, err := l.store.Bump(ctx, key, window, now)
	if err != nil {
		return 0, false, err
	}
	if entry.Count > limit {
		retryAfter = entry.WindowStart.Add(window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return retryAfter, false, nil
	}
	return 0, true, nil
}

// Refund returns one previously consumed unit, used when the operation the
// budget was charged for did not actually happen (failed SMS gateway send).
func (l *Limiter) Refund(ctx context.Context, key string) error {
	return l.store.Refund(ctx, key)
}
