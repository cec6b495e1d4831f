package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mselser95/finsight/internal/app"
	"github.com/mselser95/finsight/internal/insights"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the insights cache",
}

//nolint:gochecknoglobals // Cobra boilerplate
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List cached insights with their age and remaining lifetime",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatus,
}

//nolint:gochecknoglobals // Cobra boilerplate
var cacheClearCmd = &cobra.Command{
	Use:   "clear [TICKER|all]",
	Short: "Delete cached insights for one ticker, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Overall timeout")
}

// withManager runs fn against an insights manager over the configured store.
func withManager(cmd *cobra.Command, fn func(ctx context.Context, m *insights.Manager) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

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

	return fn(ctx, manager)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(ctx context.Context, m *insights.Manager) error {
		entries, err := m.CacheStatus(ctx)
		if err != nil {
			return err
		}
		renderCacheStatus(cmd.OutOrStdout(), entries)
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ticker := ""
	if len(args) == 1 {
		ticker = args[0]
	}

	return withManager(cmd, func(ctx context.Context, m *insights.Manager) error {
		deleted, err := m.ClearCache(ctx, ticker)
		if err != nil {
			return err
		}

		if ticker == "" || ticker == insights.ClearAllKeyword {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared all cache (%d entries)\n", deleted)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cache for %s (%d entries)\n", insights.NormalizeTicker(ticker), deleted)
		}
		return nil
	})
}

func renderCacheStatus(out io.Writer, entries []insights.CacheStatusEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cache is empty.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TICKER\tCACHED AT\tAGE (MIN)\tEXPIRES IN (MIN)\n")
	fmt.Fprintf(w, "------\t---------\t---------\t----------------\n")

	for _, e := range entries {
		expires := fmt.Sprintf("%d", e.ExpiresIn)
		if e.ExpiresIn <= 0 {
			expires = "expired"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Ticker, e.CachedAt.UTC().Format(time.RFC3339), e.AgeInMinutes, expires)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal: %d entries\n", len(entries))
}
