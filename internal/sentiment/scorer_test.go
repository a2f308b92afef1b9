package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &Vader{}, s)

	s, err = New(" Neutral ")
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Score("I love you"))

	_, err = New("afinn")
	assert.Error(t, err)
}

func TestScorerFunc(t *testing.T) {
	f := ScorerFunc(func(text string) float64 { return float64(len(text)) / 10 })
	assert.InDelta(t, 0.5, f.Score("hello"), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, -1.0, Clamp(-3))
	assert.Equal(t, 1.0, Clamp(1.2))
	assert.Equal(t, 0.25, Clamp(0.25))
}

func TestVader_Polarity(t *testing.T) {
	v := NewVader()

	cases := []struct {
		text string
		sign int
	}{
		{"I love this, it is wonderful!", 1},
		{"This is terrible and I hate it.", -1},
		{"", 0},
	}
	for _, tc := range cases {
		score := v.Score(tc.text)
		assert.GreaterOrEqual(t, score, -1.0)
		assert.LessOrEqual(t, score, 1.0)
		switch tc.sign {
		case 1:
			assert.Greater(t, score, 0.0, tc.text)
		case -1:
			assert.Less(t, score, 0.0, tc.text)
		default:
			assert.Equal(t, 0.0, score)
		}
	}
}
