package nlp

import (
	"strings"

	"github.com/jonreiter/govader"
)

// newVADERScorer returns a Scorer backed by the VADER compound score, which
// is already normalised to [-1, 1]. The analyzer only reads its lexicon after
// construction, so one instance serves every goroutine.
func newVADERScorer() Scorer {
	analyzer := govader.NewSentimentIntensityAnalyzer()
	return ScorerFunc(func(text string) float64 {
		return analyzer.PolarityScores(vaderInput(text)).Compound
	})
}

// vaderInput re-spaces text along token boundaries. VADER splits on
// whitespace only, so "Awful.Broke" would otherwise reach it as one unknown
// word. Case and punctuation marks are kept for its emphasis rules.
func vaderInput(text string) string {
	tokens := Tokenize(text)
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}
