package aggregate

import (
	"strings"

	"whosaid/internal/sentiment"
	"whosaid/internal/transcript"

	"gonum.org/v1/gonum/floats"
)

// CharacterMetrics holds per-character averages over every selected film.
type CharacterMetrics struct {
	Character     string  `json:"character"`
	Sentiment     float64 `json:"sentiment"`
	AvgLineLength float64 `json:"avg_line_length"`
	Lines         int     `json:"lines"`
}

type accumulator struct {
	scores []float64
	words  []float64
}

// ComputeCharacterMetrics scores every line of the given characters, walking
// films in set order and lines in source order. Output follows the order of
// characters; duplicates are reported once. A character with no lines yields
// a *NoDataError and no partial result.
func ComputeCharacterMetrics(set transcript.Set, characters []string, scorer sentiment.Scorer) ([]CharacterMetrics, error) {
	if scorer == nil {
		return nil, ErrNilScorer
	}
	accs := make(map[string]*accumulator, len(characters))
	order := make([]string, 0, len(characters))
	for _, c := range characters {
		if _, dup := accs[c]; dup {
			continue
		}
		accs[c] = &accumulator{}
		order = append(order, c)
	}
	for _, fl := range set {
		for _, line := range fl.Lines {
			acc, ok := accs[line.Speaker]
			if !ok {
				continue
			}
			acc.scores = append(acc.scores, scorer.Score(line.Text))
			acc.words = append(acc.words, float64(WordCount(line.Text)))
		}
	}

	out := make([]CharacterMetrics, 0, len(order))
	for _, c := range order {
		acc := accs[c]
		n := len(acc.scores)
		if n == 0 {
			return nil, &NoDataError{Character: c}
		}
		out = append(out, CharacterMetrics{
			Character:     c,
			Sentiment:     floats.Sum(acc.scores) / float64(n),
			AvgLineLength: floats.Sum(acc.words) / float64(n),
			Lines:         n,
		})
	}
	return out, nil
}

// WordCount counts whitespace separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
