package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "월별 재고 현황",
	Long: `Prints, for every settlement month, how many value master codes
have inventory in the latest snapshot and how many are in stock at the
primary broker.

Example:
  go run ./cmd/yuutai summary`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.rankingService().Summary(ctx)
	if err != nil {
		return err
	}

	PrintHeader("月別サマリー", fmt.Sprintf("Primary broker : %s", a.policy.PrimaryBroker))

	columns := []string{"Month", "Listed", "Inventory", "InStock", "Fetched"}
	widths := []int{5, 7, 9, 7, 16}
	PrintTableHeader(columns, widths)

	for _, m := range summary {
		fetched := "-"
		if !m.NoSnapshot {
			fetched = m.FetchedAt.Format("2006-01-02 15:04")
		}
		PrintTableRow([]string{
			fmt.Sprintf("%d月", m.Month),
			strconv.Itoa(m.Listed),
			strconv.Itoa(m.Inventory),
			strconv.Itoa(m.InStock),
			fetched,
		}, widths)
	}
	return nil
}
