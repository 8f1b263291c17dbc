package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/yuutai/internal/api"
	"github.com/wonny/yuutai/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                  - Health check
  GET  /api/rankings/{month}    - 월별 랭킹 (?limit=20&in_stock=nikko)
  GET  /api/master              - Value master (?month=3)
  GET  /api/summary             - 월별 재고 현황
  GET  /api/inventory           - 실시간 재고 (?code=3387)
  GET  /api/jobs                - 갱신 작업 현황 (--with-scheduler)

Example:
  go run ./cmd/yuutai serve
  go run ./cmd/yuutai serve --port 8089 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "run the refresh jobs in the same process")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	log := a.log.WithModule("api")

	rankingHandler := handlers.NewRankingHandler(a.rankingService(), log)
	inventoryHandler := handlers.NewInventoryHandler(a.zaikoClient(), a.policy, log)

	var jobsHandler *handlers.JobsHandler
	if serveWithScheduler {
		sched, err := initScheduler(ctx, a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		jobsHandler = handlers.NewJobsHandler(sched, log)
	}

	router := api.NewRouter(rankingHandler, inventoryHandler, jobsHandler, log)
	server := api.New(a.cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	for _, r := range api.Routes(router) {
		fmt.Printf("   %s\n", r)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
