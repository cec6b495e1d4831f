package insights

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// RequiredSections must be present as JSON objects in every accepted document.
var RequiredSections = []string{"overview", "investment_analysis"}

var (
	fenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// ExtractAndValidate pulls the JSON document out of raw model text.
//
// Models wrap output in markdown fences or surround it with prose, so a fence
// opening or closing the text is dropped and the rest is cut down to the span
// between the first '{' and the last '}' before parsing. Fences elsewhere are
// left alone: they may sit inside string values. Partially valid output is
// rejected: the result is either a document carrying every required section or
// an error wrapping ErrMalformedResponse.
func ExtractAndValidate(raw string) (Document, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last < first {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	text = text[first : last+1]

	var doc Document
	err := json.Unmarshal([]byte(text), &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	for _, section := range RequiredSections {
		value, ok := doc[section]
		if !ok || value == nil {
			return nil, fmt.Errorf("%w: missing %q section", ErrMalformedResponse, section)
		}
		if _, isObject := value.(map[string]any); !isObject {
			return nil, fmt.Errorf("%w: %q section is not an object", ErrMalformedResponse, section)
		}
	}

	return doc, nil
}
