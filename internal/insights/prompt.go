package insights

import (
	"strings"
	"time"
)

const promptDateLayout = "January 2, 2006"

// BuildPrompt renders the analysis prompt for ticker as of now.
// The prompt depends only on the ticker and the calendar date.
func BuildPrompt(ticker string, now time.Time) string {
	replacer := strings.NewReplacer(
		"{{TICKER}}", NormalizeTicker(ticker),
		"{{DATE}}", now.Format(promptDateLayout),
	)
	return replacer.Replace(promptTemplate)
}

const promptTemplate = `You are a professional financial analyst with access to current market data. Provide a comprehensive stock analysis for {{TICKER}} with real market data as of {{DATE}}.

IMPORTANT: Provide actual, realistic financial data for {{TICKER}}. Use your knowledge of the company's recent performance, current market conditions and financial metrics.

For each fundamental metric give both the value AND what that specific value means for this company. Do not just define the metric.
Example: instead of "P/E ratio measures price to earnings", write "P/E of 28.5 means investors pay $28.50 for every $1 of annual earnings, which is high and signals strong growth expectations but a potentially expensive stock."

Return ONLY a valid JSON object with exactly this structure (no additional text, no markdown, no explanations):

{
  "overview": {
    "company_name": "{{TICKER}} - [Real Company Name] (Data as of {{DATE}})",
    "sector": "[Real sector name]",
    "industry": "[Real industry name]",
    "description": "[Company business description based on current operations]",
    "current_price": "$[Current realistic price based on recent trading]"
  },
  "fundamental_analysis": {
    "market_cap": "[Market capitalization]",
    "market_cap_explanation": "[What this market cap means: size class, comparison to the industry]",
    "pe_ratio": "[P/E ratio]",
    "pe_ratio_explanation": "[What this P/E means relative to expectations and the industry average]",
    "pb_ratio": "[P/B ratio]",
    "pb_ratio_explanation": "[Whether the stock trades above or below book value and what that suggests]",
    "debt_to_equity": "[Debt to equity ratio]",
    "debt_to_equity_explanation": "[Whether this debt level is safe or risky]",
    "current_ratio": "[Current ratio]",
    "current_ratio_explanation": "[Whether the company can comfortably pay short-term debts]",
    "roe": "[ROE percentage]",
    "roe_explanation": "[How efficiently shareholder money is used]",
    "roa": "[ROA percentage]",
    "roa_explanation": "[How efficiently assets are used compared to industry standards]"
  },
  "technical_analysis": {
    "support_levels": ["$[Support level 1]", "$[Support level 2]"],
    "support_explanation": "[What these support levels mean for timing purchases]",
    "resistance_levels": ["$[Resistance level 1]", "$[Resistance level 2]"],
    "resistance_explanation": "[What these resistance levels mean for timing sales]",
    "trend": "[Bullish/Bearish/Neutral]",
    "trend_explanation": "[What this trend means for investment timing]"
  },
  "investment_analysis": {
    "risk_level": "[Low/Medium/High]",
    "risk_explanation": "[Expected volatility and the investor profile it suits]",
    "investment_horizon": "[Appropriate timeframe]",
    "horizon_explanation": "[Why this duration is recommended]",
    "pros": ["[Advantage 1]", "[Advantage 2]", "[Advantage 3]", "[Advantage 4]", "[Advantage 5]"],
    "cons": ["[Disadvantage 1]", "[Disadvantage 2]", "[Disadvantage 3]", "[Disadvantage 4]", "[Disadvantage 5]"],
    "recommendation": "[Investment recommendation based on current analysis]",
    "investment_advice": "[Position sizing, timing, allocation and risk management guidance]"
  },
  "financial_health": {
    "revenue_growth": "[Revenue growth percentage]",
    "revenue_explanation": "[What this growth rate says about business health]",
    "profit_margin": "[Profit margin percentage]",
    "margin_explanation": "[How much profit is kept from each dollar of sales]",
    "cash_flow": "[Cash flow status]",
    "cashflow_explanation": "[What this cash flow position indicates]",
    "dividend_yield": "[Dividend yield or 'N/A']",
    "dividend_explanation": "[Whether this stock pays income to shareholders]"
  },
  "market_position": {
    "competitors": ["[Competitor 1]", "[Competitor 2]", "[Competitor 3]"],
    "market_share": "[Market share or position]",
    "competitive_advantages": ["[Advantage 1]", "[Advantage 2]", "[Advantage 3]"]
  },
  "future_outlook": {
    "growth_potential": "[Growth prospects based on strategy and market]",
    "risks": ["[Market risk]", "[Company risk]", "[Industry risk]", "[Economic risk]"],
    "opportunities": ["[Opportunity 1]", "[Opportunity 2]", "[Opportunity 3]", "[Opportunity 4]"],
    "catalyst": "[Upcoming catalysts that could move the price]"
  },
  "investment_guide": {
    "ownership_meaning": "[What owning this stock means in plain words]",
    "getting_started": "[Research approach, portfolio considerations, diversification]",
    "position_sizing": "[Allocation percentages and risk-based sizing]",
    "entry_strategy": "[Entry points and market conditions to consider]",
    "exit_strategy": "[Profit-taking levels, stop-loss considerations, signals to monitor]",
    "monitoring_checklist": ["[Metric 1 to track]", "[Metric 2 to monitor]", "[Event to watch]"],
    "risk_management": ["[Risk factor]", "[Mitigation strategy]", "[Portfolio protection method]"],
    "investment_approach": "[Recommended strategy for this stock]"
  }
}

Provide accurate, current financial analysis. Do not use placeholder or generic data.
Respond with ONLY the JSON object, no other text.
`
