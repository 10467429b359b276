package main

import (
	"fmt"

	"section8-underwriter/internal"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and the RabbitMQ batch task consumer",
	Long: `Starts the HTTP API on REST_PORT:

  POST /api/v1/underwrite        JSON list of properties -> underwritten deals
  POST /api/v1/underwrite/sheet  CSV/XLSX upload -> offer sheet
  GET  /api/v1/rent              Section 8 rent quote for a zip
  GET  /healthz, /metrics

When RABBITMQ_ENABLED is set, batch tasks are also consumed from the
underwrite_batch_tasks queue and finished offer sheets are published
with routing key deals.sheet.ready.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := internal.NewApp(globalOpts)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	},
}
