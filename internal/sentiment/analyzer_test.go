package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()

	a, err := NewAnalyzer()
	require.NoError(t, err)
	return a
}

var (
	earningsBeat = Article{ID: 1, Ticker: "AAPL", Headline: "Strong earnings beat lifts shares"}
	bearMarket   = Article{ID: 2, Ticker: "AAPL", Headline: "Shares plunge as bear market fears grow"}
	meeting      = Article{ID: 3, Ticker: "MSFT", Headline: "Company schedules annual meeting"}
	bullishRally = Article{ID: 4, Ticker: "msft", Headline: "Bullish rally"}
)

func TestAnalyzeArticle(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		name       string
		article    Article
		want       Label
		score      float64
		confidence int
		breakdown  Breakdown
	}{
		{
			name:       "positive",
			article:    earningsBeat,
			want:       Positive,
			score:      0.48,
			confidence: 48,
			breakdown:  Breakdown{General: 0.2, Financial: 1, Market: 0},
		},
		{
			name:       "negative",
			article:    bearMarket,
			want:       Negative,
			score:      -3.0/7*0.4 - 0.4 - 0.2,
			confidence: 77,
			breakdown:  Breakdown{General: -3.0 / 7, Financial: -1, Market: -1},
		},
		{
			name:       "neutral",
			article:    meeting,
			want:       Neutral,
			score:      0,
			confidence: 0,
		},
		{
			name:       "confidence-capped",
			article:    bullishRally,
			want:       Positive,
			score:      1.2,
			confidence: 100,
			breakdown:  Breakdown{General: 2, Financial: 1, Market: 0},
		},
		{
			name:       "summary-is-scored",
			article:    Article{Headline: "Quarterly update", Summary: "Bullish rally"},
			want:       Positive,
			score:      0.8,
			confidence: 80,
			breakdown:  Breakdown{General: 1, Financial: 1, Market: 0},
		},
		{
			name:    "empty",
			article: Article{},
			want:    Neutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeArticle(tt.article)

			assert.Equal(t, tt.want, got.Sentiment)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.InDelta(t, tt.breakdown.General, got.Breakdown.General, 1e-9)
			assert.InDelta(t, tt.breakdown.Financial, got.Breakdown.Financial, 1e-9)
			assert.InDelta(t, tt.breakdown.Market, got.Breakdown.Market, 1e-9)
		})
	}
}

func TestGeneralScore_Negation(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.InDelta(t, 0.75, a.generalScore(tokenize("results were very good")), 1e-9)
	assert.InDelta(t, -0.75, a.generalScore(tokenize("results were not good")), 1e-9)
	assert.InDelta(t, 0.0, a.generalScore(nil), 0)
}

func TestKeywordScore_WholeWordsOnly(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{text: "startup downturn", want: 0},
		{text: "analyst upgrade", want: 1},
		{text: "gain, gain; loss!", want: 1.0 / 3},
		{text: "debt and layoff", want: -1},
		{text: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.InDelta(t, tt.want, keywordScore(tokenize(tt.text)), 1e-9)
		})
	}
}

func TestIndicatorScore(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{text: "bull market rally", want: 1},
		{text: "a bear market and investor fear", want: -1},
		{text: "positive outlook despite a market correction", want: 0},
		{text: "earnings season", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.InDelta(t, tt.want, indicatorScore(tt.text), 1e-9)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, Positive, classify(0.31, ArticleThreshold))
	assert.Equal(t, Neutral, classify(0.3, ArticleThreshold))
	assert.Equal(t, Neutral, classify(-0.3, ArticleThreshold))
	assert.Equal(t, Negative, classify(-0.31, ArticleThreshold))
	assert.Equal(t, Positive, classify(0.21, OverallThreshold))
	assert.Equal(t, Neutral, classify(0.2, OverallThreshold))
}

func TestAnalyzeNews(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.AnalyzeNews([]Article{earningsBeat, bearMarket, meeting, bullishRally})

	assert.Equal(t, Positive, got.OverallSentiment)
	assert.InDelta(t, (0.48+(-3.0/7*0.4-0.6)+0+1.2)/4, got.OverallScore, 1e-9)
	assert.Equal(t, Counts{Positive: 2, Negative: 1, Neutral: 1}, got.Breakdown)
	assert.Equal(t, 50, got.Confidence)
	assert.Equal(t, 4, got.TotalArticles)

	require.Len(t, got.TopArticles, 4)
	ids := make([]int64, 0, len(got.TopArticles))
	for _, scored := range got.TopArticles {
		ids = append(ids, scored.ID)
	}
	assert.Equal(t, []int64{4, 2, 1, 3}, ids)
	assert.Equal(t, "Bullish rally", got.TopArticles[0].Headline)
}

func TestAnalyzeNews_Empty(t *testing.T) {
	a := newTestAnalyzer(t)

	for _, articles := range [][]Article{nil, {}} {
		got := a.AnalyzeNews(articles)

		assert.Equal(t, Neutral, got.OverallSentiment)
		assert.Zero(t, got.OverallScore)
		assert.Zero(t, got.Confidence)
		assert.Equal(t, Counts{}, got.Breakdown)
		assert.NotNil(t, got.TopArticles)
		assert.Empty(t, got.TopArticles)
		assert.Zero(t, got.TotalArticles)
	}
}

func TestAnalyzeNews_KeepsTopArticles(t *testing.T) {
	a := newTestAnalyzer(t)

	articles := make([]Article, 0, 7)
	for i := int64(1); i <= 7; i++ {
		articles = append(articles, Article{ID: i, Headline: "Company schedules annual meeting"})
	}

	got := a.AnalyzeNews(articles)

	assert.Equal(t, 7, got.TotalArticles)
	assert.Equal(t, 100, got.Confidence)
	assert.Equal(t, Neutral, got.OverallSentiment)
	require.Len(t, got.TopArticles, TopArticles)
	for i, scored := range got.TopArticles {
		assert.Equal(t, int64(i+1), scored.ID, "ties keep input order")
	}
}

func TestAnalyzeTicker(t *testing.T) {
	a := newTestAnalyzer(t)
	articles := []Article{earningsBeat, bearMarket, meeting, bullishRally, {Headline: "Untagged rally"}}

	aapl := a.AnalyzeTicker(articles, "aapl")
	assert.Equal(t, 2, aapl.TotalArticles)
	assert.Equal(t, Counts{Positive: 1, Negative: 1}, aapl.Breakdown)

	msft := a.AnalyzeTicker(articles, " MSFT ")
	assert.Equal(t, 2, msft.TotalArticles)

	none := a.AnalyzeTicker(articles, "TSLA")
	assert.Zero(t, none.TotalArticles)
	assert.Equal(t, Neutral, none.OverallSentiment)
}

func TestParseLexicon(t *testing.T) {
	lexicon, err := parseLexicon("# comment\n\ngood\t3\nBAD -3\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"good": 3, "bad": -3}, lexicon)

	tests := []struct {
		name string
		data string
	}{
		{name: "missing-score", data: "good\n"},
		{name: "bad-score", data: "good\tthree\n"},
		{name: "out-of-range", data: "good\t9\n"},
		{name: "empty", data: "# nothing\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLexicon(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestEmbeddedLexicon(t *testing.T) {
	a := newTestAnalyzer(t)

	assert.Equal(t, 3, a.lexicon["good"])
	assert.Equal(t, -3, a.lexicon["loss"])
	for word, score := range a.lexicon {
		assert.GreaterOrEqual(t, score, -5, word)
		assert.LessOrEqual(t, score, 5, word)
	}
}
