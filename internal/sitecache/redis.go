package sitecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aria-lang/isoannot-go/internal/interval"
)

// Redis shares verdicts between processes annotating the same gene region.
// SETNX keeps the first verdict authoritative across all writers.
//
// Transport errors are logged and treated as a miss on Lookup; on Store
// the caller's verdict is returned unchanged.
type Redis struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// RedisOption configures a Redis cache.
type RedisOption func(*Redis)

// WithTTL expires cached verdicts after d; zero keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

// WithTimeout bounds every round trip.
func WithTimeout(d time.Duration) RedisOption {
	return func(r *Redis) { r.timeout = d }
}

// WithRedisLogger sets the logger for transport errors.
func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRedis creates a cache scoped to one gene region. region namespaces
// the keys and should identify the region's content as well as its gene,
// so verdicts never leak between references.
func NewRedis(client redis.UniversalClient, region string, opts ...RedisOption) *Redis {
	r := &Redis{
		client:  client,
		prefix:  "isoannot:sites:" + region + ":",
		timeout: 2 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(intron interval.Interval) string {
	return fmt.Sprintf("%s%d-%d", r.prefix, intron.Start, intron.End)
}

func (r *Redis) Lookup(intron interval.Interval) (bool, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.Get(ctx, r.key(intron)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("site cache lookup failed", "intron", intron.String(), "error", err)
		}
		return false, false
	}
	return v == "1", true
}

func (r *Redis) Store(intron interval.Interval, canonical bool) bool {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val := "0"
	if canonical {
		val = "1"
	}
	key := r.key(intron)
	set, err := r.client.SetNX(ctx, key, val, r.ttl).Result()
	if err != nil {
		r.logger.Warn("site cache store failed", "intron", intron.String(), "error", err)
		return canonical
	}
	if set {
		return canonical
	}

	existing, err := r.client.Get(ctx, key).Result()
	if err != nil {
		r.logger.Warn("site cache reread failed", "intron", intron.String(), "error", err)
		return canonical
	}
	return existing == "1"
}
