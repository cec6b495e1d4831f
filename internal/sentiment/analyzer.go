package sentiment

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Label classifies a score.
type Label string

// Labels.
const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Weights and thresholds for combining the component scores.
const (
	generalWeight   = 0.4
	financialWeight = 0.4
	marketWeight    = 0.2

	// ArticleThreshold is the combined score an article must exceed to be
	// labeled positive, or fall below the negation of to be labeled negative.
	ArticleThreshold = 0.3

	// OverallThreshold plays the same role for the average over many articles.
	OverallThreshold = 0.2

	// TopArticles is how many scored articles a news analysis returns.
	TopArticles = 5
)

// Article is a news item as delivered by the news feed. Only the headline and
// summary are scored; the remaining fields are carried through.
type Article struct {
	ID       int64  `json:"id,omitempty"`
	Ticker   string `json:"ticker,omitempty"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source,omitempty"`
	URL      string `json:"url,omitempty"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
	Related  string `json:"related,omitempty"`
	Datetime int64  `json:"datetime,omitempty"`
}

// Breakdown holds the component scores of one article.
type Breakdown struct {
	General   float64 `json:"general"`
	Financial float64 `json:"financial"`
	Market    float64 `json:"market"`
}

// ArticleSentiment is the analysis of a single article.
type ArticleSentiment struct {
	Sentiment  Label     `json:"sentiment"`
	Score      float64   `json:"score"`
	Confidence int       `json:"confidence"` // 0..100
	Breakdown  Breakdown `json:"breakdown"`
}

// ScoredArticle is an article together with its analysis.
type ScoredArticle struct {
	Article
	Sentiment ArticleSentiment `json:"sentiment"`
}

// Counts tallies articles per label.
type Counts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// NewsSentiment is the aggregate analysis of a set of articles.
type NewsSentiment struct {
	OverallSentiment Label           `json:"overallSentiment"`
	OverallScore     float64         `json:"overallScore"`
	Confidence       int             `json:"confidence"` // share of the dominant label, 0..100
	Breakdown        Counts          `json:"breakdown"`
	TopArticles      []ScoredArticle `json:"topArticles"`
	TotalArticles    int             `json:"totalArticles"`
}

// Analyzer scores news text. It is safe for concurrent use.
type Analyzer struct {
	lexicon map[string]int
}

// NewAnalyzer creates an analyzer backed by the embedded word list.
func NewAnalyzer() (*Analyzer, error) {
	lexicon, err := parseLexicon(lexiconData)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return &Analyzer{lexicon: lexicon}, nil
}

// AnalyzeArticle scores the headline and summary of article.
//
// The combined score weighs the general word valence, financial keyword
// balance and market phrase balance 0.4/0.4/0.2.
func (a *Analyzer) AnalyzeArticle(article Article) ArticleSentiment {
	text := strings.ToLower(article.Headline + " " + article.Summary)
	words := tokenize(text)

	breakdown := Breakdown{
		General:   a.generalScore(words),
		Financial: keywordScore(words),
		Market:    indicatorScore(text),
	}
	score := breakdown.General*generalWeight +
		breakdown.Financial*financialWeight +
		breakdown.Market*marketWeight

	label := classify(score, ArticleThreshold)
	ArticlesScoredTotal.WithLabelValues(string(label)).Inc()

	return ArticleSentiment{
		Sentiment:  label,
		Score:      score,
		Confidence: int(math.Round(math.Min(math.Abs(score)*100, 100))),
		Breakdown:  breakdown,
	}
}

// AnalyzeNews scores every article and aggregates the results. An empty input
// yields a neutral result with zero confidence.
func (a *Analyzer) AnalyzeNews(articles []Article) *NewsSentiment {
	result := &NewsSentiment{
		OverallSentiment: Neutral,
		TopArticles:      []ScoredArticle{},
		TotalArticles:    len(articles),
	}
	if len(articles) == 0 {
		return result
	}

	scored := make([]ScoredArticle, 0, len(articles))
	var total float64
	for _, article := range articles {
		s := a.AnalyzeArticle(article)
		total += s.Score
		switch s.Sentiment {
		case Positive:
			result.Breakdown.Positive++
		case Negative:
			result.Breakdown.Negative++
		default:
			result.Breakdown.Neutral++
		}
		scored = append(scored, ScoredArticle{Article: article, Sentiment: s})
	}

	result.OverallScore = total / float64(len(articles))
	result.OverallSentiment = classify(result.OverallScore, OverallThreshold)

	dominant := max(result.Breakdown.Positive, result.Breakdown.Negative, result.Breakdown.Neutral)
	result.Confidence = int(math.Round(float64(dominant) / float64(len(articles)) * 100))

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Sentiment.Confidence > scored[j].Sentiment.Confidence
	})
	if len(scored) > TopArticles {
		scored = scored[:TopArticles]
	}
	result.TopArticles = scored

	return result
}

// AnalyzeTicker aggregates the articles tagged with ticker, compared case-insensitively.
func (a *Analyzer) AnalyzeTicker(articles []Article, ticker string) *NewsSentiment {
	ticker = strings.TrimSpace(ticker)

	matching := make([]Article, 0, len(articles))
	for _, article := range articles {
		if article.Ticker != "" && strings.EqualFold(article.Ticker, ticker) {
			matching = append(matching, article)
		}
	}

	return a.AnalyzeNews(matching)
}

// generalScore sums lexicon valences over the words, flipping the sign after
// a negation, and normalizes by the word count.
func (a *Analyzer) generalScore(words []string) float64 {
	if len(words) == 0 {
		return 0
	}

	sign := 1
	sum := 0
	for _, w := range words {
		if _, ok := negations[w]; ok {
			sign = -1
			continue
		}
		sum += sign * a.lexicon[w]
	}

	return float64(sum) / float64(len(words))
}

// keywordScore is (positive - negative) / (positive + negative) over whole-word
// keyword hits, or 0 without hits.
func keywordScore(words []string) float64 {
	var pos, neg int
	for _, w := range words {
		if _, ok := positiveKeywords[w]; ok {
			pos++
		}
		if _, ok := negativeKeywords[w]; ok {
			neg++
		}
	}
	return balance(pos, neg)
}

// indicatorScore is keywordScore for market phrases, matched as substrings.
func indicatorScore(text string) float64 {
	var pos, neg int
	for _, phrase := range positiveIndicators {
		pos += strings.Count(text, phrase)
	}
	for _, phrase := range negativeIndicators {
		neg += strings.Count(text, phrase)
	}
	return balance(pos, neg)
}

func balance(pos, neg int) float64 {
	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}

func classify(score, threshold float64) Label {
	switch {
	case score > threshold:
		return Positive
	case score < -threshold:
		return Negative
	default:
		return Neutral
	}
}

// tokenize splits lowercased text into runs of [a-z0-9_].
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '_' || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9'))
	})
}
