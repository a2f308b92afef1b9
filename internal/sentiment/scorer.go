package sentiment

import (
	"fmt"
	"strings"
)

// Scorer returns the compound polarity of a line of text, in [-1, 1].
type Scorer interface {
	Score(text string) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(text string) float64

func (f ScorerFunc) Score(text string) float64 {
	return f(text)
}

const (
	EngineVader   = "vader"
	EngineNeutral = "neutral"
)

// Neutral scores every line as 0. Useful for dry runs that only need counts.
var Neutral = ScorerFunc(func(string) float64 { return 0 })

// New builds the scorer named by engine.
func New(engine string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineVader:
		return NewVader(), nil
	case EngineNeutral:
		return Neutral, nil
	default:
		return nil, fmt.Errorf("unknown sentiment engine %q", engine)
	}
}

// Clamp keeps a score inside [-1, 1].
func Clamp(score float64) float64 {
	switch {
	case score < -1:
		return -1
	case score > 1:
		return 1
	default:
		return score
	}
}
