package ranking

import (
	"sort"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/pkg/logger"
)

// Builder orders performance entries of one month
// ⭐ SSOT: 랭킹 정렬 로직은 여기서만
type Builder struct {
	logger *logger.Logger
}

// NewBuilder creates a new ranking builder
func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{logger: log.WithModule("ranking")}
}

// Build is a convenience wrapper without logging
func Build(month int, entries []contracts.PerformanceEntry) *contracts.Ranking {
	return NewBuilder(logger.Nop()).Build(month, entries)
}

// Build sorts by metric descending and assigns 1-based ranks.
// The sort is stable: equal metrics keep the order they were produced in.
// Entries are never merged, so one code may appear once per lot size.
func (b *Builder) Build(month int, entries []contracts.PerformanceEntry) *contracts.Ranking {
	ranked := make([]contracts.PerformanceEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metric > ranked[j].Metric
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if len(ranked) > 0 {
		b.logger.WithFields(map[string]interface{}{
			"month":      month,
			"entries":    len(ranked),
			"top_code":   ranked[0].Code,
			"top_metric": ranked[0].Metric,
		}).Info("Ranking completed")
	} else {
		b.logger.WithField("month", month).Info("Ranking completed with no entries")
	}

	return &contracts.Ranking{Month: month, Entries: ranked}
}
