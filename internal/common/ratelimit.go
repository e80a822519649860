package common

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	rateLimitGeneratePrefix = "ratelimit:generate:"
	rateLimitTTL            = 10 * time.Minute
)

type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// RateLimiter meters expensive actions per key. Implementations fail open: when the backing
// store errors the request is allowed and the error is returned for logging.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

func RateLimitKeyGenerate(userID string) string {
	return rateLimitGeneratePrefix + userID
}

// tokenBucketScript refills and consumes in one atomic step.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

type RedisRateLimiter struct {
	client *redis.Client
	rate   float64
	burst  int
}

// NewRedisRateLimiter connects to redisURL and meters perMinute actions with the given burst.
func NewRedisRateLimiter(ctx context.Context, redisURL string, perMinute, burst int) (*RedisRateLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return newRedisRateLimiter(client, perMinute, burst), nil
}

func newRedisRateLimiter(client *redis.Client, perMinute, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		rate:   float64(perMinute) / 60.0,
		burst:  burst,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	if l.rate <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(l.burst)}, nil
	}

	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{key},
		l.rate, l.burst, time.Now().Unix(), int(rateLimitTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return &RateLimitResult{Allowed: true, Remaining: int64(l.burst)}, err
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Remaining:  res[2],
		RetryAfter: time.Duration(res[1]) * time.Second,
	}, nil
}

func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalRateLimiter keeps one token bucket per key in process memory. It is used when no
// Redis URL is configured, so limits are per instance.
type LocalRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	limit   rate.Limit
	burst   int
}

func NewLocalRateLimiter(perMinute, burst int) *LocalRateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}

	return &LocalRateLimiter{
		buckets: make(map[string]*localBucket),
		limit:   limit,
		burst:   burst,
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (*RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.buckets) > 10_000 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if !b.limiter.AllowN(now, 1) {
		r := b.limiter.ReserveN(now, 1)
		delay := r.DelayFrom(now)
		r.CancelAt(now)
		return &RateLimitResult{Allowed: false, RetryAfter: delay}, nil
	}

	return &RateLimitResult{Allowed: true, Remaining: int64(b.limiter.TokensAt(now))}, nil
}

func (l *LocalRateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > rateLimitTTL {
			delete(l.buckets, key)
		}
	}
}
