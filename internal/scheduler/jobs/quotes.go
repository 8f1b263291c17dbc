package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/pricing"
	"github.com/wonny/yuutai/internal/scheduler"
	"github.com/wonny/yuutai/pkg/logger"
)

// CodesFunc lists the codes to refresh. The value master is edited by hand,
// so it is read again on every run.
type CodesFunc func() ([]string, error)

// QuoteJob refreshes live quotes for every code in the value master
type QuoteJob struct {
	source   pricing.LiveSource
	store    contracts.SnapshotStore
	codes    CodesFunc
	interval time.Duration
	logger   *logger.Logger
}

// NewQuoteJob creates a new quote job
func NewQuoteJob(source pricing.LiveSource, store contracts.SnapshotStore, codes CodesFunc, interval time.Duration, log *logger.Logger) *QuoteJob {
	return &QuoteJob{
		source:   source,
		store:    store,
		codes:    codes,
		interval: interval,
		logger:   log,
	}
}

// Name returns the job name
func (j *QuoteJob) Name() string {
	return "quote_refresh"
}

// Schedule returns the cron schedule (weekdays, after the Tokyo close)
func (j *QuoteJob) Schedule() string {
	return "0 30 15 * * 1-5"
}

// Plan reports how many master codes the next run quotes
func (j *QuoteJob) Plan(_ context.Context) (scheduler.RefreshCounts, error) {
	codes, err := j.codes()
	if err != nil {
		return scheduler.RefreshCounts{}, fmt.Errorf("list codes: %w", err)
	}
	return scheduler.RefreshCounts{Unit: "quote", Requested: len(codes)}, nil
}

// Run prefetches quotes and saves them as the latest snapshot
func (j *QuoteJob) Run(ctx context.Context) (scheduler.RefreshCounts, error) {
	counts := scheduler.RefreshCounts{Unit: "quote"}

	codes, err := j.codes()
	if err != nil {
		return counts, fmt.Errorf("list codes: %w", err)
	}
	counts.Requested = len(codes)

	result, err := pricing.Prefetch(ctx, j.source, codes, j.interval, j.logger)
	if err != nil {
		return counts, err
	}
	counts.Fetched = len(result.Quotes)
	counts.Failed = len(result.Failed)

	if counts.Fetched == 0 && counts.Requested > 0 {
		return counts, fmt.Errorf("no quotes fetched for %d codes", counts.Requested)
	}
	if err := j.store.SaveQuotes(ctx, result.Quotes); err != nil {
		return counts, fmt.Errorf("save quotes: %w", err)
	}
	return counts, nil
}
