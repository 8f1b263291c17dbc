package pricing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/yuutai/pkg/logger"
	"github.com/wonny/yuutai/pkg/redis"
)

// LiveSource returns the current price of one security
type LiveSource interface {
	Quote(ctx context.Context, code string) (float64, error)
}

// PrefetchResult is the outcome of one prefetch pass
type PrefetchResult struct {
	Quotes QuoteBook
	Failed []string
}

// Prefetch asks src for every code, spacing calls by interval.
// Individual failures are collected; only context cancellation aborts.
func Prefetch(ctx context.Context, src LiveSource, codes []string, interval time.Duration, log *logger.Logger) (*PrefetchResult, error) {
	result := &PrefetchResult{Quotes: make(QuoteBook, len(codes))}

	var limiter *rate.Limiter
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return result, fmt.Errorf("prefetch interrupted: %w", err)
			}
		}

		price, err := src.Quote(ctx, code)
		if err != nil {
			if ctx.Err() != nil {
				return result, fmt.Errorf("prefetch interrupted: %w", ctx.Err())
			}
			log.WithField("code", code).WithError(err).Debug("Live quote unavailable")
			result.Failed = append(result.Failed, code)
			continue
		}
		if !Usable(price) {
			result.Failed = append(result.Failed, code)
			continue
		}
		result.Quotes[code] = price
	}

	log.WithFields(map[string]interface{}{
		"requested": len(seen),
		"fetched":   len(result.Quotes),
		"failed":    len(result.Failed),
	}).Info("Live quotes prefetched")

	return result, nil
}

// CachedSource serves quotes from Redis before asking the wrapped source
type CachedSource struct {
	src    LiveSource
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedSource wraps src with a cache; a disabled cache passes through
func NewCachedSource(src LiveSource, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = redis.TTLQuote
	}
	return &CachedSource{src: src, cache: cache, ttl: ttl, logger: log}
}

// Quote implements LiveSource
func (c *CachedSource) Quote(ctx context.Context, code string) (float64, error) {
	var cached float64
	hit, err := c.cache.Get(ctx, redis.QuoteKey(code), &cached)
	if err != nil {
		// 캐시 장애는 무시하고 원본 조회
		c.logger.WithField("code", code).WithError(err).Warn("Quote cache read failed")
	}
	if hit && Usable(cached) {
		return cached, nil
	}

	price, err := c.src.Quote(ctx, code)
	if err != nil {
		return 0, err
	}

	if err := c.cache.Set(ctx, redis.QuoteKey(code), price, c.ttl); err != nil {
		c.logger.WithField("code", code).WithError(err).Warn("Quote cache write failed")
	}
	return price, nil
}
