package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/mselser95/finsight/internal/sentiment"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var sentimentCmd = &cobra.Command{
	Use:   "sentiment FILE",
	Short: "Score a JSON array of news articles",
	Long: `Reads a JSON array of news articles from FILE ("-" for stdin) and prints
the aggregate sentiment. With --ticker only articles tagged with that ticker are scored.`,
	Args: cobra.ExactArgs(1),
	RunE: runSentiment,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(sentimentCmd)
	sentimentCmd.Flags().StringP("ticker", "t", "", "Only score articles tagged with this ticker")
}

func runSentiment(cmd *cobra.Command, args []string) error {
	ticker, _ := cmd.Flags().GetString("ticker")

	articles, err := readArticles(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	analyzer, err := sentiment.NewAnalyzer()
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}

	var result *sentiment.NewsSentiment
	if ticker != "" {
		result = analyzer.AnalyzeTicker(articles, ticker)
	} else {
		result = analyzer.AnalyzeNews(articles)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	err = enc.Encode(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func readArticles(stdin io.Reader, path string) ([]sentiment.Article, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open articles: %w", err)
		}
		defer f.Close()
		r = f
	}

	var articles []sentiment.Article
	err := json.NewDecoder(r).Decode(&articles)
	if err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}
