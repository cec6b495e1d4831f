package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

//go:embed lexicon.txt
var lexiconData string

// negations flip the sign of every lexicon hit that follows them in a text.
//
//nolint:gochecknoglobals // read-only word list
var negations = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"cannot":  {},
	"nor":     {},
	"neither": {},
}

// parseLexicon reads "word<TAB>score" lines. Blank lines and '#' comments are skipped.
func parseLexicon(data string) (map[string]int, error) {
	lexicon := make(map[string]int)

	scanner := bufio.NewScanner(strings.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("lexicon line %d: want word and score, got %q", line, text)
		}

		score, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: %w", line, err)
		}
		if score < -5 || score > 5 {
			return nil, fmt.Errorf("lexicon line %d: score %d out of range", line, score)
		}

		lexicon[strings.ToLower(fields[0])] = score
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	if len(lexicon) == 0 {
		return nil, fmt.Errorf("lexicon is empty")
	}

	return lexicon, nil
}
