package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/yuutai/internal/scheduler"
	"github.com/wonny/yuutai/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록 (다음 실행, 대기 건수)
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/yuutai scheduler start
  go run ./cmd/yuutai scheduler list
  go run ./cmd/yuutai scheduler run inventory_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- inventory_refresh: 매일 오전 7시 (12개월 재고)
- quote_refresh: 평일 15:30 (장 마감 후 현재가)
- max_cost_refresh: 일요일 오전 3시 (逆日歩 최대액, 미조회 종목만)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(ctx, a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(ctx, a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()
	now := time.Now()

	widths := []int{18, 16, 17, 28}
	PrintTableHeader([]string{"Job", "Schedule", "Next run", "Pending"}, widths)
	for _, jobName := range sched.GetAllJobs() {
		schedule := stats[jobName].Schedule

		next := "-"
		if at, err := scheduler.NextRun(schedule, now); err == nil {
			next = at.Format("2006-01-02 15:04")
		}

		pending := "-"
		if plan, err := sched.Plan(ctx, jobName); err != nil {
			pending = truncate(err.Error(), 28)
		} else if plan.Unit != "" {
			pending = fmt.Sprintf("%d %ss", plan.Requested, plan.Unit)
		}

		PrintTableRow([]string{jobName, schedule, next, pending}, widths)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(ctx, a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJobNow(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s) in %s: %s",
			jobName, result.Attempts, result.Duration.Round(time.Millisecond), result.Error))
		PrintInfo(result.Counts.String())
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %s: %s",
		jobName, result.Duration.Round(time.Millisecond), result.Counts))
	return nil
}

// initScheduler registers every refresh job
func initScheduler(ctx context.Context, a *app) (*scheduler.Scheduler, error) {
	src, err := a.quoteSource(ctx)
	if err != nil {
		return nil, err
	}

	zc := a.zaikoClient()

	sched := scheduler.New(a.log)

	for _, job := range []scheduler.Job{
		jobs.NewInventoryJob(zc, a.store, nil, a.log),
		jobs.NewQuoteJob(src, a.store, a.masterCodes, a.cfg.Quote.Interval, a.log),
		jobs.NewMaxCostJob(zc, a.store, a.masterCodes, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
