package insights

import (
	"errors"
	"testing"

	"github.com/mselser95/finsight/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAndValidate_Accepts(t *testing.T) {
	want, err := ExtractAndValidate(testutil.InsightsJSON)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "clean", raw: testutil.InsightsJSON},
		{name: "fenced", raw: testutil.Fenced(testutil.InsightsJSON)},
		{name: "plain-fence", raw: "```\n" + testutil.InsightsJSON + "\n```"},
		{name: "preamble-and-postscript", raw: testutil.WithProse(testutil.InsightsJSON)},
		{name: "fenced-with-prose", raw: testutil.WithProse(testutil.Fenced(testutil.InsightsJSON))},
		{name: "surrounding-whitespace", raw: "\n\n   " + testutil.InsightsJSON + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAndValidate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	const description = "Ships a CLI; docs show ```json\n{}``` snippets"
	snippet := `{
  "overview": {"company_name": "DEVX - Dev Tools Inc.", "description": "Ships a CLI; docs show ` + "```json\\n{}```" + ` snippets"},
  "investment_analysis": {"risk_level": "High"}
}`

	for name, raw := range map[string]string{
		"fence-inside-string":        snippet,
		"fenced-fence-inside-string": testutil.Fenced(snippet),
		"prose-fence-inside-string":  testutil.WithProse(testutil.Fenced(snippet)),
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractAndValidate(raw)
			require.NoError(t, err)
			overview, ok := got["overview"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, description, overview["description"])
		})
	}
}

func TestExtractAndValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace-only", raw: "   \n"},
		{name: "no-json", raw: "I cannot help with that request."},
		{name: "truncated", raw: testutil.TruncatedInsightsJSON},
		{name: "missing-investment-analysis", raw: testutil.InsightsMissingInvestmentJSON},
		{name: "missing-overview", raw: testutil.InsightsMissingOverviewJSON},
		{name: "null-overview", raw: `{"overview": null, "investment_analysis": {"risk_level": "Low"}}`},
		{name: "string-overview", raw: `{"overview": "Apple", "investment_analysis": {"risk_level": "Low"}}`},
		{name: "reversed-braces", raw: "} nothing here {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ExtractAndValidate(tt.raw)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, ErrMalformedResponse), "expected ErrMalformedResponse, got %v", err)
		})
	}
}

func TestExtractAndValidate_PassesSectionsThrough(t *testing.T) {
	doc, err := ExtractAndValidate(testutil.InsightsJSON)
	require.NoError(t, err)

	overview, ok := doc["overview"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Technology", overview["sector"])

	analysis, ok := doc["investment_analysis"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"Brand", "Ecosystem"}, analysis["pros"])

	assert.Contains(t, doc, "fundamental_analysis")
}
