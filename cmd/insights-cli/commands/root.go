// Package commands implements the insights CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "insights-cli",
	Short: "Sheet Insights - extract supplier KPIs and insights from Excel workbooks",
	Long: `The insights CLI runs the supplier performance extraction pipeline locally:
it converts each worksheet into a canonical table, extracts per-supplier KPIs
and insights through the configured model deployment, and writes the JSON
artifacts to the results directory.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
