package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript counts one attempt and makes sure the counter carries a TTL, so a
// key can never outlive its window.
var allowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// Limiter counts attempts per key in fixed windows.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func New(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (l *Limiter) key(k string) string {
	return "ratelimit:" + l.prefix + ":" + k
}

// Allow records one attempt for k and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, k string) (bool, error) {
	const op = "ratelimit.Limiter.Allow"

	if l.limit <= 0 {
		return true, nil
	}

	n, err := allowScript.Run(ctx, l.client, []string{l.key(k)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n <= l.limit, nil
}

func (l *Limiter) Reset(ctx context.Context, k string) error {
	const op = "ratelimit.Limiter.Reset"

	if err := l.client.Del(ctx, l.key(k)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
