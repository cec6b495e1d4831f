package testutil

import "fmt"

// InsightsJSON is a minimal generator response carrying every required section.
const InsightsJSON = `{
  "overview": {
    "company_name": "AAPL - Apple Inc.",
    "sector": "Technology",
    "industry": "Consumer Electronics",
    "current_price": "$211.27"
  },
  "fundamental_analysis": {
    "market_cap": "$3.2T",
    "pe_ratio": "32.1"
  },
  "investment_analysis": {
    "risk_level": "Medium",
    "pros": ["Brand", "Ecosystem"],
    "cons": ["Valuation"],
    "recommendation": "Hold"
  }
}`

// InsightsMissingInvestmentJSON lacks the investment_analysis section.
const InsightsMissingInvestmentJSON = `{
  "overview": {"company_name": "AAPL - Apple Inc."},
  "fundamental_analysis": {"pe_ratio": "32.1"}
}`

// InsightsMissingOverviewJSON lacks the overview section.
const InsightsMissingOverviewJSON = `{
  "investment_analysis": {"risk_level": "Medium"}
}`

// TruncatedInsightsJSON is cut off mid-document.
const TruncatedInsightsJSON = `{
  "overview": {"company_name": "AAPL - Apple Inc."},
  "investment_analysis": {"risk_level": "Med`

// Fenced wraps body in a markdown json code fence.
func Fenced(body string) string {
	return "```json\n" + body + "\n```"
}

// WithProse surrounds body with conversational text, the way chat models often answer.
func WithProse(body string) string {
	return fmt.Sprintf("Sure! Here is the analysis you asked for:\n\n%s\n\nLet me know if you need anything else.", body)
}

// InsightsForTicker returns a valid document for ticker.
func InsightsForTicker(ticker string) string {
	return fmt.Sprintf(`{
  "overview": {"company_name": "%[1]s - Test Corp", "sector": "Technology"},
  "investment_analysis": {"risk_level": "Low", "recommendation": "Buy"}
}`, ticker)
}
