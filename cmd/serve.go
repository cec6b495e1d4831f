package cmd

import (
	"fmt"

	"github.com/mselser95/finsight/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the HTTP API, which serves:
1. GET  /api/stock-insights/{ticker}  cached AI analysis (?refresh=true to regenerate)
2. GET  /api/stock-insights/cache/status
3. DELETE /api/stock-insights/cache/clear[/{ticker}]  (bearer token)
4. /api/holdings and /api/portfolio/summary  (bearer token)
5. /metrics, /health and /ready`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "HTTP port (overrides HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	port, _ := cmd.Flags().GetString("port")
	if port != "" {
		cfg.HTTPPort = port
	}

	application, err := app.New(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
