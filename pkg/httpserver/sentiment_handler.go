package httpserver

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mselser95/finsight/internal/sentiment"
	"go.uber.org/zap"
)

// maxSentimentBodyBytes caps article batches, which are larger than holding payloads.
const maxSentimentBodyBytes = 1 << 20

// SentimentService scores news articles.
type SentimentService interface {
	AnalyzeArticle(article sentiment.Article) sentiment.ArticleSentiment
	AnalyzeNews(articles []sentiment.Article) *sentiment.NewsSentiment
	AnalyzeTicker(articles []sentiment.Article, ticker string) *sentiment.NewsSentiment
}

// SentimentHandler serves the authenticated news sentiment routes.
type SentimentHandler struct {
	service SentimentService
	logger  *zap.Logger
}

// NewSentimentHandler creates a handler backed by service.
func NewSentimentHandler(service SentimentService, logger *zap.Logger) *SentimentHandler {
	return &SentimentHandler{
		service: service,
		logger:  logger,
	}
}

type newsRequest struct {
	Articles []sentiment.Article `json:"articles"`
	Ticker   string              `json:"ticker"`
}

type articleRequest struct {
	Article *sentiment.Article `json:"article"`
}

// HandleAnalyzeNews serves POST /api/sentiment/analyze.
func (h *SentimentHandler) HandleAnalyzeNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Articles == nil {
		writeError(w, h.logger, http.StatusBadRequest, "Articles array is required", nil)
		return
	}

	writeData(w, h.logger, http.StatusOK, h.service.AnalyzeNews(req.Articles))
}

// HandleAnalyzeTicker serves POST /api/sentiment/analyze-ticker.
func (h *SentimentHandler) HandleAnalyzeTicker(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Articles == nil {
		writeError(w, h.logger, http.StatusBadRequest, "Articles array is required", nil)
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Ticker symbol is required", nil)
		return
	}

	writeData(w, h.logger, http.StatusOK, h.service.AnalyzeTicker(req.Articles, req.Ticker))
}

// HandleAnalyzeArticle serves POST /api/sentiment/analyze-article.
func (h *SentimentHandler) HandleAnalyzeArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Article == nil {
		writeError(w, h.logger, http.StatusBadRequest, "Article object is required", nil)
		return
	}

	writeData(w, h.logger, http.StatusOK, h.service.AnalyzeArticle(*req.Article))
}

func (h *SentimentHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSentimentBodyBytes)).Decode(dst)
	if err != nil {
		h.logger.Debug("sentiment-request-rejected", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}
