package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/yuutai/internal/scheduler/jobs"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "외부 데이터 수집",
	Long: `Downloads source data into the snapshot store.

Subcommands:
  inventory  - broker inventory payloads per settlement month
  quotes     - live quotes for every value master code
  maxcost    - max carrying costs (--code, --all or --update)

Example:
  go run ./cmd/yuutai fetch inventory --month 3
  go run ./cmd/yuutai fetch inventory --all
  go run ./cmd/yuutai fetch quotes
  go run ./cmd/yuutai fetch maxcost --code 7203
  go run ./cmd/yuutai fetch maxcost --update
  go run ./cmd/yuutai fetch maxcost --all`,
}

var (
	fetchInventoryCmd = &cobra.Command{
		Use:   "inventory",
		Short: "재고 데이터 수집",
		RunE:  runFetchInventory,
	}

	fetchQuotesCmd = &cobra.Command{
		Use:   "quotes",
		Short: "현재가 수집",
		RunE:  runFetchQuotes,
	}

	fetchMaxCostCmd = &cobra.Command{
		Use:   "maxcost",
		Short: "逆日歩 최대액 수집",
		RunE:  runFetchMaxCost,
	}
)

var (
	fetchMonth int
	fetchAll   bool

	maxCostCode   string
	maxCostAll    bool
	maxCostUpdate bool
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchInventoryCmd)
	fetchCmd.AddCommand(fetchQuotesCmd)
	fetchCmd.AddCommand(fetchMaxCostCmd)

	fetchInventoryCmd.Flags().IntVar(&fetchMonth, "month", 0, "settlement month (1-12)")
	fetchInventoryCmd.Flags().BoolVar(&fetchAll, "all", false, "all twelve months")
	fetchMaxCostCmd.Flags().StringVar(&maxCostCode, "code", "", "look up a single code")
	fetchMaxCostCmd.Flags().BoolVar(&maxCostAll, "all", false, "look up every master code again")
	fetchMaxCostCmd.Flags().BoolVar(&maxCostUpdate, "update", false, "look up only codes without a figure yet")
}

func runFetchInventory(cmd *cobra.Command, args []string) error {
	var months []int
	switch {
	case fetchAll:
		months = jobs.AllMonths()
	case fetchMonth >= 1 && fetchMonth <= 12:
		months = []int{fetchMonth}
	default:
		return fmt.Errorf("pass --month 1-12 or --all")
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Inventory fetch", fmt.Sprintf("Months : %v", months))
	start := time.Now()

	job := jobs.NewInventoryJob(a.zaikoClient(), a.store, months, a.log)
	counts, err := job.Run(ctx)
	if err != nil {
		PrintWarning(counts.String())
		return err
	}

	PrintSuccess(fmt.Sprintf("%s in %.2fs", counts, time.Since(start).Seconds()))
	return nil
}

func runFetchQuotes(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := a.quoteSource(ctx)
	if err != nil {
		return err
	}

	PrintHeader("Quote fetch", fmt.Sprintf("Interval : %s", a.cfg.Quote.Interval))
	start := time.Now()

	job := jobs.NewQuoteJob(src, a.store, a.masterCodes, a.cfg.Quote.Interval, a.log)
	counts, err := job.Run(ctx)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s in %.2fs", counts, time.Since(start).Seconds()))
	return nil
}

type maxCostMode int

const (
	maxCostSingle maxCostMode = iota + 1
	maxCostEvery
	maxCostMissing
)

// selectMaxCostMode maps the flags to exactly one lookup mode
func selectMaxCostMode(code string, all, update bool) (maxCostMode, error) {
	set := 0
	mode := maxCostMode(0)
	if code != "" {
		set++
		mode = maxCostSingle
	}
	if all {
		set++
		mode = maxCostEvery
	}
	if update {
		set++
		mode = maxCostMissing
	}
	switch set {
	case 0:
		return 0, fmt.Errorf("pass --code, --all or --update")
	case 1:
		return mode, nil
	default:
		return 0, fmt.Errorf("--code, --all and --update are mutually exclusive")
	}
}

func runFetchMaxCost(cmd *cobra.Command, args []string) error {
	mode, err := selectMaxCostMode(maxCostCode, maxCostAll, maxCostUpdate)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	zc := a.zaikoClient()
	start := time.Now()

	switch mode {
	case maxCostMissing:
		PrintHeader("Max carrying cost fetch", "Mode : missing or not found")
		job := jobs.NewMaxCostJob(zc, a.store, a.masterCodes, a.log)
		counts, err := job.Run(ctx)
		if err != nil {
			PrintWarning(counts.String())
			return err
		}
		PrintSuccess(fmt.Sprintf("%s in %.2fs", counts, time.Since(start).Seconds()))
		return nil

	case maxCostSingle:
		PrintHeader("Max carrying cost fetch", fmt.Sprintf("Code : %s", maxCostCode))
		costs, err := zc.FetchMaxCosts(ctx, []string{maxCostCode})
		if err != nil {
			return err
		}
		if err := a.store.SaveMaxCosts(ctx, costs); err != nil {
			return fmt.Errorf("save max costs: %w", err)
		}
		if v := costs[maxCostCode]; v != nil {
			PrintSuccess(fmt.Sprintf("%s: %s", maxCostCode, formatYen(float64(*v))))
		} else {
			PrintWarning(fmt.Sprintf("%s: no figure found", maxCostCode))
		}
		return nil
	}

	PrintHeader("Max carrying cost fetch", "Mode : all codes")
	codes, err := a.masterCodes()
	if err != nil {
		return err
	}
	costs, fetchErr := zc.FetchMaxCosts(ctx, codes)
	if len(costs) > 0 {
		if err := a.store.SaveMaxCosts(ctx, costs); err != nil {
			return fmt.Errorf("save max costs: %w", err)
		}
	}
	counts := jobs.CountMaxCosts(codes, costs)
	if fetchErr != nil {
		PrintWarning(counts.String())
		return fetchErr
	}

	PrintSuccess(fmt.Sprintf("%s in %.2fs", counts, time.Since(start).Seconds()))
	return nil
}

// commandContext returns the command context, never nil
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
