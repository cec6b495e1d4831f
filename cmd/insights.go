package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/finsight/internal/app"
	"github.com/mselser95/finsight/internal/insights"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var insightsCmd = &cobra.Command{
	Use:   "insights TICKER",
	Short: "Fetch insights for one ticker through the cache",
	Long: `Runs a single insights request with the same cache and fallback rules as
the API and prints the response data as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsights,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().BoolP("refresh", "r", false, "Bypass the cache and regenerate")
	insightsCmd.Flags().Duration("timeout", 2*time.Minute, "Overall timeout")
}

func runInsights(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	refresh, _ := cmd.Flags().GetBool("refresh")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer stores.Close()

	manager, err := app.NewInsightsManager(ctx, cfg, logger, stores.Insights)
	if err != nil {
		return fmt.Errorf("create insights manager: %w", err)
	}

	result, err := manager.GetInsights(ctx, args[0], refresh)
	if err != nil {
		return fmt.Errorf("get insights: %w", err)
	}

	return printResult(cmd.OutOrStdout(), result)
}

func printResult(w io.Writer, result *insights.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(result.Payload())
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
