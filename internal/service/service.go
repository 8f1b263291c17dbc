package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/inventory"
	"github.com/wonny/yuutai/internal/master"
	"github.com/wonny/yuutai/internal/pipeline"
	"github.com/wonny/yuutai/internal/policy"
	"github.com/wonny/yuutai/internal/pricing"
	"github.com/wonny/yuutai/internal/store"
	"github.com/wonny/yuutai/pkg/logger"
)

// MasterLoader reads the value master. It is called on every run
// because the table is edited by hand between runs.
type MasterLoader func() (*master.Index, error)

// RankingService loads stored snapshots and runs the pipeline on them
// ⭐ SSOT: 스냅샷 → 파이프라인 입력 조립은 여기서만
type RankingService struct {
	store      contracts.SnapshotStore
	loadMaster MasterLoader
	policy     *policy.Policy
	logger     *logger.Logger
	now        func() time.Time
}

// NewRankingService creates a new ranking service
func NewRankingService(s contracts.SnapshotStore, loadMaster MasterLoader, p *policy.Policy, log *logger.Logger) *RankingService {
	return &RankingService{
		store:      s,
		loadMaster: loadMaster,
		policy:     p,
		logger:     log.WithModule("service"),
		now:        time.Now,
	}
}

// RankOptions tune one ranking run
type RankOptions struct {
	// Quotes replaces the stored quote snapshot when non-nil
	Quotes pricing.QuoteBook

	// AsOf is the reference time of the monthly yield; zero means now
	AsOf time.Time
}

// RankResult is a pipeline result with the age of its inputs
type RankResult struct {
	*pipeline.Result
	InventoryAt time.Time `json:"inventory_at"`
	QuotesAt    time.Time `json:"quotes_at,omitempty"`
}

// Master loads the value master
func (s *RankingService) Master() (*master.Index, error) {
	return s.loadMaster()
}

// Policy returns the policy in use
func (s *RankingService) Policy() *policy.Policy {
	return s.policy
}

// Rank ranks month from the latest stored snapshots
func (s *RankingService) Rank(ctx context.Context, month int, opts RankOptions) (*RankResult, error) {
	idx, err := s.loadMaster()
	if err != nil {
		return nil, fmt.Errorf("load value master: %w", err)
	}

	payload, inventoryAt, err := s.store.LatestInventory(ctx, month)
	if err != nil {
		return nil, err
	}

	out := &RankResult{InventoryAt: inventoryAt}

	quotes := opts.Quotes
	if quotes == nil {
		stored, at, err := s.store.LatestQuotes(ctx)
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.logger.Debug("No stored quotes, inventory prices only")
		case err != nil:
			return nil, fmt.Errorf("load quotes: %w", err)
		default:
			quotes = stored
			out.QuotesAt = at
		}
	}

	maxCosts, err := s.store.MaxCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load max costs: %w", err)
	}

	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}

	result, err := pipeline.Run(pipeline.Input{
		Month:    month,
		Payload:  payload,
		Master:   idx,
		Quotes:   quotes,
		MaxCosts: maxCosts,
		Policy:   s.policy,
		Logger:   s.logger,
		AsOf:     asOf,
	})
	if err != nil {
		return nil, err
	}

	out.Result = result
	return out, nil
}

// MonthSummary counts one month's master-listed codes with inventory
type MonthSummary struct {
	Month      int       `json:"month"`
	Listed     int       `json:"listed"`      // distinct master codes settling this month
	Inventory  int       `json:"inventory"`   // listed codes present in the payload
	InStock    int       `json:"in_stock"`    // listed codes with primary broker stock
	FetchedAt  time.Time `json:"fetched_at"`
	NoSnapshot bool      `json:"no_snapshot,omitempty"`
}

// Summary reports every month; months without a snapshot are marked, not failed
func (s *RankingService) Summary(ctx context.Context) ([]MonthSummary, error) {
	idx, err := s.loadMaster()
	if err != nil {
		return nil, fmt.Errorf("load value master: %w", err)
	}

	out := make([]MonthSummary, 0, 12)
	for month := 1; month <= 12; month++ {
		listed := make(map[string]bool)
		for _, e := range idx.ForMonth(month) {
			listed[e.Code] = true
		}
		sum := MonthSummary{Month: month, Listed: len(listed)}

		payload, at, err := s.store.LatestInventory(ctx, month)
		if errors.Is(err, store.ErrNotFound) {
			sum.NoSnapshot = true
			out = append(out, sum)
			continue
		}
		if err != nil {
			return nil, err
		}
		sum.FetchedAt = at

		for _, rec := range inventory.NewNormalizer(s.policy, s.logger).Normalize(payload, month) {
			if !listed[rec.Code] {
				continue
			}
			sum.Inventory++
			if rec.InStock(s.policy.PrimaryBroker) {
				sum.InStock++
			}
		}
		out = append(out, sum)
	}
	return out, nil
}
