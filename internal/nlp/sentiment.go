package nlp

import (
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Label is the three-way sentiment class of a review.
type Label string

const (
	// Positive marks a score strictly greater than zero.
	Positive Label = "Positive"
	// Negative marks a score strictly less than zero.
	Negative Label = "Negative"
	// Neutral marks a score of exactly zero.
	Neutral Label = "Neutral"
)

// String implements fmt.Stringer.
func (l Label) String() string { return string(l) }

// Labels lists every label in display order.
func Labels() []Label { return []Label{Positive, Negative, Neutral} }

// LabelFor maps a polarity score to a Label. The thresholds are strict and
// there is no tolerance band around zero.
func LabelFor(score float64) Label {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// Classify returns LabelFor(c.Score(text)).
func (c *Context) Classify(text string) Label {
	return LabelFor(c.Score(text))
}

// Score returns the polarity of text in [-1, 1] under the context's model.
//
// ModelVADER returns the VADER compound score. Under ModelLexicon each
// lexicon word contributes its polarity, scaled by the factors of any
// modifier words immediately before it (intensifiers, dampeners, negations),
// and the score is the mean contribution. Either way text without scored
// words is exactly 0.
func (c *Context) Score(text string) float64 {
	if c.cache != nil {
		if v, ok := c.cache.Get(text); ok {
			return v
		}
	}

	var v float64
	if c.scorer != nil {
		v = c.scorer.Score(text)
	} else {
		v = c.lexiconScore(text)
	}

	if c.cache != nil {
		c.cache.Add(text, v)
	}
	return v
}

func (c *Context) lexiconScore(text string) float64 {
	var contributions []float64
	factor := 1.0

	for _, tok := range Tokenize(text) {
		if tok.IsPunct {
			factor = 1.0
			continue
		}
		word := foldApostrophes(strings.ToLower(tok.Text))
		if m, ok := modifiers[word]; ok {
			factor *= m
			continue
		}
		if p, ok := c.lexicon[word]; ok {
			contributions = append(contributions, p*factor)
		}
		factor = 1.0
	}

	if len(contributions) == 0 {
		return 0
	}
	return clamp(floats.Sum(contributions) / float64(len(contributions)))
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
