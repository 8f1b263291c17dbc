package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/scheduler"
	"github.com/wonny/yuutai/pkg/logger"
)

// MaxCostFetcher looks up max carrying costs for codes
type MaxCostFetcher interface {
	FetchMaxCosts(ctx context.Context, codes []string) (map[string]*int64, error)
}

// MaxCostJob scrapes max carrying costs for codes without a figure yet
type MaxCostJob struct {
	fetcher MaxCostFetcher
	store   contracts.SnapshotStore
	codes   CodesFunc
	logger  *logger.Logger
}

// NewMaxCostJob creates a new max cost job
func NewMaxCostJob(fetcher MaxCostFetcher, store contracts.SnapshotStore, codes CodesFunc, log *logger.Logger) *MaxCostJob {
	return &MaxCostJob{
		fetcher: fetcher,
		store:   store,
		codes:   codes,
		logger:  log,
	}
}

// Name returns the job name
func (j *MaxCostJob) Name() string {
	return "max_cost_refresh"
}

// Schedule returns the cron schedule (Sunday 3 AM)
func (j *MaxCostJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Plan reports how many codes still lack a figure
func (j *MaxCostJob) Plan(ctx context.Context) (scheduler.RefreshCounts, error) {
	missing, err := j.missing(ctx)
	if err != nil {
		return scheduler.RefreshCounts{}, err
	}
	return scheduler.RefreshCounts{Unit: "code", Requested: len(missing)}, nil
}

func (j *MaxCostJob) missing(ctx context.Context) ([]string, error) {
	codes, err := j.codes()
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	known, err := j.store.MaxCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load max costs: %w", err)
	}
	return MissingCodes(codes, known), nil
}

// Run fetches only the missing codes and merges them into the store
func (j *MaxCostJob) Run(ctx context.Context) (scheduler.RefreshCounts, error) {
	counts := scheduler.RefreshCounts{Unit: "code"}

	missing, err := j.missing(ctx)
	if err != nil {
		return counts, err
	}
	if len(missing) == 0 {
		j.logger.Debug("Max cost table up to date")
		return counts, nil
	}

	costs, err := j.fetcher.FetchMaxCosts(ctx, missing)
	counts = CountMaxCosts(missing, costs)

	// 부분 결과도 저장
	if len(costs) > 0 {
		if saveErr := j.store.SaveMaxCosts(ctx, costs); saveErr != nil {
			return counts, fmt.Errorf("save max costs: %w", saveErr)
		}
	}
	if err != nil {
		return counts, fmt.Errorf("fetch max costs: %w", err)
	}
	return counts, nil
}

// CountMaxCosts tallies a lookup of requested codes. Codes absent from
// costs failed; nil entries were looked up without a figure.
func CountMaxCosts(requested []string, costs map[string]*int64) scheduler.RefreshCounts {
	counts := scheduler.RefreshCounts{Unit: "code", Requested: len(requested)}
	for _, code := range requested {
		v, ok := costs[code]
		switch {
		case !ok:
			counts.Failed++
		case v == nil:
			counts.Fetched++
			counts.NotFound++
		default:
			counts.Fetched++
		}
	}
	return counts
}

// MissingCodes returns codes without a known figure: never looked up, or
// looked up with none found (nil). The page often gains the figure later.
func MissingCodes(codes []string, known map[string]*int64) []string {
	var missing []string
	for _, c := range codes {
		if known[c] == nil {
			missing = append(missing, c)
		}
	}
	return missing
}
