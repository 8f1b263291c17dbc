package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/scheduler"
	"github.com/wonny/yuutai/pkg/logger"
)

// InventoryFetcher downloads one month of raw inventory
type InventoryFetcher interface {
	FetchMonth(ctx context.Context, month int) (contracts.RawPayload, error)
}

// InventoryJob refreshes the inventory snapshots of every month
// ⭐ SSOT: 재고 스냅샷 갱신 스케줄은 이 Job에서만
type InventoryJob struct {
	fetcher InventoryFetcher
	store   contracts.SnapshotStore
	months  []int
	logger  *logger.Logger
}

// NewInventoryJob creates a new inventory job; nil months means all twelve
func NewInventoryJob(fetcher InventoryFetcher, store contracts.SnapshotStore, months []int, log *logger.Logger) *InventoryJob {
	if len(months) == 0 {
		months = AllMonths()
	}
	return &InventoryJob{
		fetcher: fetcher,
		store:   store,
		months:  months,
		logger:  log,
	}
}

// AllMonths returns 1 through 12
func AllMonths() []int {
	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}
	return months
}

// Name returns the job name
func (j *InventoryJob) Name() string {
	return "inventory_refresh"
}

// Schedule returns the cron schedule (every day at 7 AM, before the market opens)
func (j *InventoryJob) Schedule() string {
	return "0 0 7 * * *"
}

// Plan reports the months the next run fetches
func (j *InventoryJob) Plan(_ context.Context) (scheduler.RefreshCounts, error) {
	return scheduler.RefreshCounts{Unit: "month", Requested: len(j.months)}, nil
}

// Run fetches and stores each month. A failed month does not stop the others;
// the job fails when any month failed so the scheduler retries it.
func (j *InventoryJob) Run(ctx context.Context) (scheduler.RefreshCounts, error) {
	counts := scheduler.RefreshCounts{Unit: "month", Requested: len(j.months)}
	j.logger.WithField("months", len(j.months)).Info("Starting scheduled inventory refresh")

	for _, month := range j.months {
		if err := ctx.Err(); err != nil {
			return counts, err
		}

		payload, err := j.fetcher.FetchMonth(ctx, month)
		if err != nil {
			counts.Failed++
			j.logger.WithField("month", month).WithError(err).Warn("Inventory fetch failed")
			continue
		}

		if err := j.store.SaveInventory(ctx, month, payload); err != nil {
			return counts, fmt.Errorf("save inventory month %d: %w", month, err)
		}
		counts.Fetched++
	}

	if counts.Failed > 0 {
		j.logger.Warnf("Inventory refresh incomplete: %s", counts)
		return counts, fmt.Errorf("%d of %d months failed", counts.Failed, counts.Requested)
	}

	j.logger.Infof("Inventory refresh completed: %s", counts)
	return counts, nil
}
