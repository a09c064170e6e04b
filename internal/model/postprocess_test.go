package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3})
	require.Len(t, probs, 3)

	var sum float64
	for _, p := range probs {
		assert.True(t, p > 0 && p < 1)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, probs[2], probs[1])
	assert.Greater(t, probs[1], probs[0])

	// Large logits must not overflow.
	probs = Softmax([]float32{1000, 1001})
	assert.InDelta(t, 0.7311, probs[1], 1e-4)

	assert.Nil(t, Softmax(nil))
}

func TestNewPrediction(t *testing.T) {
	classes := []string{"LED", "relay", "Electrolytic-capacitor"}

	p, err := NewPrediction(classes, []float32{0.1, 0.2, 4.0})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Index)
	assert.Equal(t, "Electrolytic-capacitor", p.Label)
	assert.Contains(t, classes, p.Label)
	assert.GreaterOrEqual(t, p.Percent(), 0.0)
	assert.LessOrEqual(t, p.Percent(), 100.0)

	scores := p.Scores(classes)
	assert.Len(t, scores, 3)
	assert.Equal(t, p.Percent(), scores["Electrolytic-capacitor"])
}

func TestNewPredictionTieGoesToFirst(t *testing.T) {
	p, err := NewPrediction([]string{"a", "b"}, []float32{3, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Index)
	assert.Equal(t, 50.0, p.Percent())
}

func TestNewPredictionLengthMismatch(t *testing.T) {
	_, err := NewPrediction([]string{"a", "b"}, []float32{1})
	assert.ErrorIs(t, err, ErrInference)
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 97.31, RoundPercent(0.973149))
	assert.Equal(t, 100.0, RoundPercent(1))
	assert.Equal(t, 0.0, RoundPercent(0))
	assert.Equal(t, 33.33, RoundPercent(1.0/3))
}

func TestDisplayName(t *testing.T) {
	testCases := map[string]string{
		"Electrolytic-capacitor":   "Electrolytic Capacitor",
		"omni-directional-antenna": "Omni Directional Antenna",
		"PNP-transistor":           "Pnp Transistor",
		"heat_sink":                "Heat Sink",
		"relay":                    "Relay",
		"10k-resistor":             "10K Resistor",
		"3v3_regulator":            "3V3 Regulator",
		"IC":                       "Ic",
	}
	for label, want := range testCases {
		assert.Equal(t, want, DisplayName(label), label)
	}
}
