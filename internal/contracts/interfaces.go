package contracts

import (
	"context"
	"time"
)

// SnapshotStore keeps raw source snapshots fetched at the boundary.
// Only inputs are stored; rankings are recomputed from them.
// ⭐ SSOT: 저장소 인터페이스는 여기서만 정의
type SnapshotStore interface {
	SaveInventory(ctx context.Context, month int, payload RawPayload) error
	// LatestInventory returns the newest payload for a month and when it was fetched
	LatestInventory(ctx context.Context, month int) (RawPayload, time.Time, error)

	SaveQuotes(ctx context.Context, prices map[string]float64) error
	LatestQuotes(ctx context.Context) (map[string]float64, time.Time, error)

	// SaveMaxCosts merges scraped max carrying costs; nil marks "looked up, none found"
	SaveMaxCosts(ctx context.Context, costs map[string]*int64) error
	MaxCosts(ctx context.Context) (map[string]*int64, error)
}
