package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/yuutai/pkg/database"
	"github.com/wonny/yuutai/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "설정 및 연결 상태 확인",
	Long: `Prints the effective configuration and checks every backing service:
the value master, the snapshot store, PostgreSQL and Redis when enabled.

Example:
  go run ./cmd/yuutai status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("yuutai status")
	PrintKeyValue("Env", a.cfg.Env, 12)
	PrintKeyValue("Store", a.cfg.StoreBackend, 12)
	PrintKeyValue("Data dir", a.cfg.DataDir, 12)
	PrintKeyValue("Policy", a.policy.String(), 12)
	PrintSeparator()

	healthy := true

	idx, err := a.loadMaster()
	if err != nil {
		healthy = false
		PrintError(fmt.Sprintf("Value master %s: %v", a.cfg.KachiCSV, err))
	} else {
		PrintSuccess(fmt.Sprintf("Value master: %d entries, %d codes", idx.Len(), len(idx.Codes())))
	}

	if _, at, err := a.store.LatestQuotes(ctx); err != nil {
		PrintWarning(fmt.Sprintf("Quotes: %v", err))
	} else {
		PrintSuccess(fmt.Sprintf("Quotes: updated %s", at.Format("2006-01-02 15:04")))
	}

	if a.cfg.StoreBackend == "postgres" {
		if err := checkDatabase(ctx, a); err != nil {
			healthy = false
			PrintError(fmt.Sprintf("Database: %v", err))
		}
	}

	if a.cfg.Redis.Enabled {
		rc, err := redis.New(ctx, a.cfg)
		if err != nil {
			healthy = false
			PrintError(fmt.Sprintf("Redis: %v", err))
		} else {
			defer rc.Close()
			if err := checkRedis(ctx, rc); err != nil {
				healthy = false
				PrintError(fmt.Sprintf("Redis: %v", err))
			}
		}
	} else {
		PrintInfo("Redis: disabled")
	}

	if !healthy {
		return fmt.Errorf("one or more checks failed")
	}
	return nil
}

func checkDatabase(ctx context.Context, a *app) error {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.New(checkCtx, a.cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	health, err := db.HealthCheck(checkCtx)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Database: %s (%d conns, %d idle)",
		health.ResponseTime, health.TotalConns, health.IdleConns))
	return nil
}

func checkRedis(ctx context.Context, rc *redis.Client) error {
	latency, err := rc.Ping(ctx)
	if err != nil {
		return err
	}
	quotes, err := redis.NewCache(rc, redis.KeyPrefix).CachedQuotes(ctx)
	if err != nil {
		return fmt.Errorf("count cached quotes: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Redis: %s (ping %s, %d cached quotes)", rc.Addr(), latency.Round(time.Microsecond), quotes))
	return nil
}
