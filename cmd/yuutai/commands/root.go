package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yuutai",
	Short: "株主優待 cross-hedge ranking engine",
	Long: `yuutai ranks shareholder-benefit securities by the net benefit of
a cross hedge (long stock + short margin sell) relative to price.

Usage:
  go run ./cmd/yuutai [command]

Examples:
  go run ./cmd/yuutai fetch inventory --month 3
  go run ./cmd/yuutai fetch quotes
  go run ./cmd/yuutai rank 3 -n 20
  go run ./cmd/yuutai serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "policy YAML file (default is POLICY_FILE or built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
