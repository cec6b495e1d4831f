package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockGenerator is a scripted text generator that records every call.
type MockGenerator struct {
	Response string
	Err      error
	prompts  []string
	mu       sync.Mutex
}

// NewMockGenerator creates a generator that always answers response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// Generate records the prompt and returns the scripted response or error.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Set replaces the scripted response and error.
func (m *MockGenerator) Set(response string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = response
	m.Err = err
}

// Calls returns how many times Generate was called.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of the prompts received.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.prompts))
	copy(result, m.prompts)
	return result
}

// MockGeminiAPI is a mock HTTP server that answers generateContent calls
// the way the Gemini REST API does.
type MockGeminiAPI struct {
	*httptest.Server
	Text       string
	StatusCode int
	requests   int
	mu         sync.Mutex
}

// NewMockGeminiAPI creates a mock Gemini API returning text as the first candidate.
func NewMockGeminiAPI(text string) *MockGeminiAPI {
	mock := &MockGeminiAPI{
		Text:       text,
		StatusCode: http.StatusOK,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests++
		status := mock.StatusCode
		text := mock.Text
		mock.mu.Unlock()

		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"code":    status,
					"message": "mock upstream failure",
					"status":  "UNAVAILABLE",
				},
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": text}},
					},
					"finishReason": "STOP",
				},
			},
		})
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// SetResponse changes the status code and text returned by later calls.
func (m *MockGeminiAPI) SetResponse(status int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCode = status
	m.Text = text
}

// Requests returns the number of requests received.
func (m *MockGeminiAPI) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// MockQuoteAPI is a mock HTTP server for the RapidAPI Yahoo Finance "modules" endpoint.
// Modules maps ticker -> module name -> body object.
type MockQuoteAPI struct {
	*httptest.Server
	Modules  map[string]map[string]map[string]any
	requests int
	mu       sync.Mutex
}

// NewMockQuoteAPI creates a mock quote API serving modules.
func NewMockQuoteAPI(modules map[string]map[string]map[string]any) *MockQuoteAPI {
	mock := &MockQuoteAPI{Modules: modules}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests++
		mock.mu.Unlock()

		if !strings.HasSuffix(r.URL.Path, "/modules") {
			http.NotFound(w, r)
			return
		}

		symbol := r.URL.Query().Get("symbol")
		module := r.URL.Query().Get("module")

		mock.mu.Lock()
		body, ok := mock.Modules[symbol][module]
		mock.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "symbol not found"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"body": body})
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// Requests returns the number of requests received.
func (m *MockQuoteAPI) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// QuoteModules builds the three modules the metadata client reads for one ticker.
func QuoteModules(name string, price float64, marketCap float64) map[string]map[string]any {
	return map[string]map[string]any{
		"financial-data": {
			"currentPrice":      map[string]any{"raw": price, "fmt": ""},
			"recommendationKey": "buy",
			"financialCurrency": "USD",
		},
		"asset-profile": {
			"longName": name,
			"sector":   "Technology",
			"industry": "Software",
		},
		"price": {
			"marketCap":          map[string]any{"raw": marketCap},
			"regularMarketPrice": map[string]any{"raw": price},
			"exchangeName":       "NasdaqGS",
			"currency":           "USD",
		},
	}
}
