package sentiment

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Vader is the lexicon-based compound scorer.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *Vader) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return Clamp(v.analyzer.PolarityScores(text).Compound)
}
