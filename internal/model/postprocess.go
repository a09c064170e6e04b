package model

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Softmax turns raw logits into probabilities.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxVal := float64(logits[0])
	for _, v := range logits[1:] {
		if float64(v) > maxVal {
			maxVal = float64(v)
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		probs[i] = math.Exp(float64(v) - maxVal)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// NewPrediction picks the most probable class. Ties go to the lowest index.
func NewPrediction(classes []string, logits []float32) (*Prediction, error) {
	if len(logits) != len(classes) {
		return nil, fmt.Errorf("%w: got %d scores for %d classes", ErrInference, len(logits), len(classes))
	}
	probs := Softmax(logits)

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	return &Prediction{
		Index:         best,
		Label:         classes[best],
		Probability:   probs[best],
		Probabilities: probs,
	}, nil
}

// Percent returns the confidence as a percentage rounded to two decimals.
func (p *Prediction) Percent() float64 {
	return RoundPercent(p.Probability)
}

func RoundPercent(prob float64) float64 {
	return math.Round(prob*100*100) / 100
}

// Scores maps every class to its rounded percentage.
func (p *Prediction) Scores(classes []string) map[string]float64 {
	scores := make(map[string]float64, len(p.Probabilities))
	for i, prob := range p.Probabilities {
		if i < len(classes) {
			scores[classes[i]] = RoundPercent(prob)
		}
	}
	return scores
}

var labelSeparators = strings.NewReplacer("-", " ", "_", " ")

// DisplayName turns a raw class label such as "Electrolytic-capacitor" into
// "Electrolytic Capacitor". Every run of letters is title-cased on its own,
// so "10k-resistor" becomes "10K Resistor".
func DisplayName(label string) string {
	// cases.Caser keeps state, so a fresh one per call.
	caser := cases.Title(language.English)

	var b strings.Builder
	runes := []rune(labelSeparators.Replace(label))
	for i := 0; i < len(runes); {
		if !unicode.IsLetter(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsLetter(runes[j]) {
			j++
		}
		caser.Reset()
		b.WriteString(caser.String(string(runes[i:j])))
		i = j
	}
	return b.String()
}
