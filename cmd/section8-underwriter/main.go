package main

import (
	"fmt"
	"os"

	"section8-underwriter/internal"

	"github.com/spf13/cobra"
)

var globalOpts internal.Options

var rootCmd = &cobra.Command{
	Use:   "section8-underwriter",
	Short: "Section 8 DSCR wholesale offer underwriter",
	Long: `Underwrites residential listings against HUD Small Area Fair Market Rents,
computes the maximum DSCR-qualified buyer price and the wholesale offer,
and ranks every property into Green Light, Caution, Inspect First or No Deal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.EnvPath, "env", "", "Path to .env file (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.PolicyPath, "config", "", "Path to underwriting policy YAML (overrides UNDERWRITING_CONFIG)")
	rootCmd.PersistentFlags().IntVar(&globalOpts.Workers, "workers", 0, "Parallel underwriting workers (overrides UNDERWRITE_WORKERS)")

	rootCmd.AddCommand(serveCmd, analyzeCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
