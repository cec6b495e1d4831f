package sentiment

//nolint:gochecknoglobals // read-only word lists
var (
	positiveKeywords = wordSet(
		"bullish", "surge", "rally", "gain", "profit", "growth", "positive",
		"strong", "up", "rise", "beat", "exceed", "outperform", "upgrade", "buy",
		"hold", "recommend", "target", "potential", "recovery", "bounce",
		"rebound", "breakthrough", "innovation", "success", "win", "earnings",
		"revenue", "sales", "demand", "expansion", "acquisition", "merger",
		"partnership",
	)

	negativeKeywords = wordSet(
		"bearish", "decline", "fall", "drop", "loss", "negative", "weak", "down",
		"crash", "plunge", "miss", "disappoint", "underperform", "downgrade",
		"sell", "avoid", "risk", "concern", "worry", "volatility", "uncertainty",
		"recession", "crisis", "bankruptcy", "default", "debt", "cut", "layoff",
		"restructure", "slowdown", "contraction", "deficit",
	)

	// Market phrases match anywhere in the text, not only on word boundaries.
	positiveIndicators = []string{
		"bull market", "bullish trend", "market rally", "investor confidence", "positive outlook",
	}

	negativeIndicators = []string{
		"bear market", "bearish trend", "market correction", "investor fear", "negative outlook",
	}
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
