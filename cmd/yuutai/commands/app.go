package commands

import (
	"context"
	"fmt"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/external/yahoo"
	"github.com/wonny/yuutai/internal/external/zaiko"
	"github.com/wonny/yuutai/internal/master"
	"github.com/wonny/yuutai/internal/policy"
	"github.com/wonny/yuutai/internal/pricing"
	"github.com/wonny/yuutai/internal/service"
	"github.com/wonny/yuutai/internal/store"
	"github.com/wonny/yuutai/pkg/config"
	"github.com/wonny/yuutai/pkg/httputil"
	"github.com/wonny/yuutai/pkg/logger"
	"github.com/wonny/yuutai/pkg/redis"
)

// app holds the wired dependencies shared by every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	policy *policy.Policy
	store  contracts.SnapshotStore
	redis  *redis.Client

	closers []func()
}

// newApp loads config, policy and the snapshot store
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if policyFile != "" {
		cfg.PolicyFile = policyFile
	}

	log := logger.New(cfg)

	p, _, err := policy.Load(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	log.WithFields(map[string]interface{}{
		"store":  cfg.StoreBackend,
		"policy": p.String(),
	}).Debug("Application initialized")

	return &app{
		cfg:     cfg,
		log:     log,
		policy:  p,
		store:   st,
		closers: []func(){closeStore},
	}, nil
}

// Close releases every opened connection, newest first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loadMaster reads the value master from disk on every call
func (a *app) loadMaster() (*master.Index, error) {
	return master.Load(a.cfg.KachiCSV)
}

// masterCodes lists every code in the value master
func (a *app) masterCodes() ([]string, error) {
	idx, err := a.loadMaster()
	if err != nil {
		return nil, err
	}
	return idx.Codes(), nil
}

// rankingService wires the ranking service
func (a *app) rankingService() *service.RankingService {
	return service.NewRankingService(a.store, a.loadMaster, a.policy, a.log)
}

// zaikoClient wires the inventory source client with its call spacing
func (a *app) zaikoClient() *zaiko.Client {
	httpClient := httputil.NewWithTimeout(a.log, a.cfg.Zaiko.Timeout).
		WithMinInterval(a.cfg.Zaiko.Interval)
	return zaiko.NewClient(httpClient, a.cfg.Zaiko.BaseURL, a.log)
}

// quoteSource wires the live price source, cached in Redis when enabled
func (a *app) quoteSource(ctx context.Context) (pricing.LiveSource, error) {
	httpClient := httputil.NewWithTimeout(a.log, a.cfg.Quote.Timeout)
	yahooClient := yahoo.NewClient(httpClient, a.cfg.Quote.BaseURL, a.cfg.Quote.Suffix, a.log)

	if a.redis == nil {
		rc, err := redis.New(ctx, a.cfg)
		if err != nil {
			// 캐시 없이 계속
			a.log.WithError(err).Warn("Redis unavailable, quotes will not be cached")
			return yahooClient, nil
		}
		a.redis = rc
		a.closers = append(a.closers, func() { rc.Close() })
	}

	if !a.redis.Enabled() {
		return yahooClient, nil
	}
	cache := redis.NewCache(a.redis, redis.KeyPrefix)
	return pricing.NewCachedSource(yahooClient, cache, a.cfg.Redis.QuoteTTL, a.log), nil
}
