package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/pkg/config"
	"github.com/wonny/yuutai/pkg/database"
)

// ErrNotFound means no snapshot has been saved yet
var ErrNotFound = errors.New("snapshot not found")

// Open returns the snapshot store selected by configuration.
// The returned close function releases the database pool when one was opened.
func Open(ctx context.Context, cfg *config.Config) (contracts.SnapshotStore, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewPostgresStore(db.Pool), db.Close, nil
	case "file", "":
		return NewFileStore(cfg.DataDir), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
