package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/pipeline"
	"github.com/wonny/yuutai/internal/pricing"
	"github.com/wonny/yuutai/internal/service"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank <month>",
	Short: "월별 랭킹 출력",
	Long: `Ranks one settlement month from the latest stored snapshots.

Prices come from the stored live quotes, falling back to the inventory
payload price. --live fetches fresh quotes for this month's codes first.

Example:
  go run ./cmd/yuutai rank 3
  go run ./cmd/yuutai rank 3 -n 50 --in-stock nikko
  go run ./cmd/yuutai rank 9 --live --json
  go run ./cmd/yuutai rank 3 --in-stock nikko --by monthly`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

var (
	rankLimit   int
	rankJSON    bool
	rankInStock string
	rankLive    bool
	rankBy      string
)

// rankOutput is the JSON shape of `rank --json`
type rankOutput struct {
	RunID       string                       `json:"run_id"`
	PolicyHash  string                       `json:"policy_hash"`
	Month       int                          `json:"month"`
	InventoryAt time.Time                    `json:"inventory_at"`
	QuotesAt    *time.Time                   `json:"quotes_at,omitempty"`
	Count       int                          `json:"count"`
	Entries     []contracts.PerformanceEntry `json:"entries"`
	Failures    []pipeline.Failure           `json:"failures"`
	Unmatched   []string                     `json:"unmatched,omitempty"`
	Stats       pipeline.Stats               `json:"stats"`
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 20, "rows to print (0 = all)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "print the selected entries and run metadata as JSON")
	rankCmd.Flags().StringVar(&rankInStock, "in-stock", "", "only entries with stock at this broker")
	rankCmd.Flags().BoolVar(&rankLive, "live", false, "fetch live quotes before ranking")
	rankCmd.Flags().StringVar(&rankBy, "by", "metric", "row order: metric | monthly (monthly yield)")
}

func runRank(cmd *cobra.Command, args []string) error {
	month, err := strconv.Atoi(args[0])
	if err != nil || month < 1 || month > 12 {
		return fmt.Errorf("month must be 1-12, got %q", args[0])
	}

	ctx := commandContext(cmd)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if rankBy != "metric" && rankBy != "monthly" {
		return fmt.Errorf("--by must be metric or monthly, got %q", rankBy)
	}

	if rankInStock != "" && !a.policy.HasBroker(rankInStock) {
		return fmt.Errorf("unknown broker %q (known: %v)", rankInStock, a.policy.BrokerIDs())
	}

	svc := a.rankingService()

	var opts service.RankOptions
	if rankLive {
		quotes, err := fetchMonthQuotes(ctx, a, month)
		if err != nil {
			return err
		}
		opts.Quotes = quotes
	}

	result, err := svc.Rank(ctx, month, opts)
	if err != nil {
		return fmt.Errorf("rank month %d: %w", month, err)
	}

	ranking := result.Ranking
	if rankInStock != "" {
		ranking = ranking.Filter(func(e contracts.PerformanceEntry) bool { return e.InStock(rankInStock) })
	}
	if rankBy == "monthly" {
		ranking = ranking.ByMonthlyYield()
	}
	entries := ranking.Top(rankLimit)

	if rankJSON {
		return writeRankJSON(cmd.OutOrStdout(), result, entries)
	}

	printRanking(result, entries, a.policy.PrimaryBroker)
	return nil
}

// writeRankJSON encodes the selected entries with the run metadata
func writeRankJSON(w io.Writer, result *service.RankResult, entries []contracts.PerformanceEntry) error {
	if entries == nil {
		entries = []contracts.PerformanceEntry{}
	}
	out := rankOutput{
		RunID:       result.RunID,
		PolicyHash:  result.PolicyHash,
		Month:       result.Month,
		InventoryAt: result.InventoryAt,
		Count:       len(entries),
		Entries:     entries,
		Failures:    result.Failures,
		Unmatched:   result.Unmatched,
		Stats:       result.Stats,
	}
	if !result.QuotesAt.IsZero() {
		at := result.QuotesAt
		out.QuotesAt = &at
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// fetchMonthQuotes prefetches live quotes for the codes settling in month
func fetchMonthQuotes(ctx context.Context, a *app, month int) (pricing.QuoteBook, error) {
	idx, err := a.loadMaster()
	if err != nil {
		return nil, fmt.Errorf("load value master: %w", err)
	}

	codes := make([]string, 0)
	for _, e := range idx.ForMonth(month) {
		codes = append(codes, e.Code)
	}

	src, err := a.quoteSource(ctx)
	if err != nil {
		return nil, err
	}

	result, err := pricing.Prefetch(ctx, src, codes, a.cfg.Quote.Interval, a.log)
	if err != nil {
		return nil, fmt.Errorf("prefetch quotes: %w", err)
	}
	if len(result.Failed) > 0 {
		a.log.WithField("failed", len(result.Failed)).Warn("Some quotes unavailable, using inventory prices")
	}
	return result.Quotes, nil
}

func printRanking(result *service.RankResult, entries []contracts.PerformanceEntry, broker string) {
	PrintHeader(fmt.Sprintf("%d月 優待クロス ランキング", result.Month),
		fmt.Sprintf("Run ID    : %s", result.RunID),
		fmt.Sprintf("Policy    : %s", truncate(result.PolicyHash, 13)),
		fmt.Sprintf("Inventory : %s", result.InventoryAt.Format("2006-01-02 15:04")),
	)

	columns := []string{"#", "Code", "Name", "Lot", "Price", "Benefit", "Metric%", "Month%", broker, "Flags"}
	widths := []int{4, 6, 16, 6, 9, 9, 9, 9, 8, 10}
	PrintTableHeader(columns, widths)

	for _, e := range entries {
		flags := ""
		if e.Differential {
			flags += "+"
		}
		if e.Halted {
			flags += "停止"
		}
		if e.PriceTier == contracts.TierFallback {
			flags += "*"
		}

		PrintTableRow([]string{
			strconv.Itoa(e.Rank),
			e.Code,
			truncate(e.Name, 16),
			strconv.FormatInt(e.LotSize, 10),
			formatYen(e.Price),
			formatYen(e.BenefitValue),
			fmt.Sprintf("%.4f", e.Metric),
			fmt.Sprintf("%.4f", e.MonthlyYield),
			strconv.FormatInt(e.Availability[broker], 10),
			flags,
		}, widths)
	}

	PrintSeparator()
	fmt.Printf("  Ranked %d, failed %d, unmatched %d (live %d / fallback %d prices)\n",
		result.Stats.Ranked, result.Stats.Failed, result.Stats.Unmatched,
		result.Stats.LivePrices, result.Stats.FallbackPrices)
	fmt.Println("  + differential tier   * inventory price   停止 trading halted")

	for _, f := range result.Failures {
		PrintError(fmt.Sprintf("%s (lot %d): %s %s", f.Code, f.LotSize, f.Kind, f.Message))
	}
}
