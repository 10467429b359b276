package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"section8-underwriter/internal"

	"github.com/spf13/cobra"
)

var importURL string

var importCmd = &cobra.Command{
	Use:   "import-safmr",
	Short: "Download the HUD SAFMR workbook into the PostgreSQL rent table",
	Long: `Downloads the HUD Small Area FMR workbook and replaces the rent_table
contents in one transaction. Requires DATABASE_URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		n, err := internal.RunImportSAFMR(ctx, globalOpts, importURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d zip rows\n", n)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importURL, "url", "", "Workbook URL (default: SAFMR_URL)")
}
