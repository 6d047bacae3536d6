package nlp

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed data/lexicon_en.tsv
var lexiconEN string

// negationFactor scales the polarity of a word directly preceded by a negation.
const negationFactor = -0.5

// modifiers maps intensifiers, dampeners and negations to the factor they
// apply to the next lexicon word.
//
//nolint:gochecknoglobals // Fixed lookup table.
var modifiers = map[string]float64{
	"absolutely": 1.5,
	"extremely":  1.5,
	"incredibly": 1.5,
	"highly":     1.3,
	"really":     1.3,
	"so":         1.3,
	"super":      1.3,
	"totally":    1.3,
	"very":       1.3,
	"quite":      1.1,
	"somewhat":   0.7,
	"barely":     0.5,
	"slightly":   0.5,
	"not":        negationFactor,
	"never":      negationFactor,
	"no":         negationFactor,
	"n't":        negationFactor,
}

// parseLexicon reads word<TAB>polarity lines into dst. Polarities must lie in
// [-1, 1]; later entries override earlier ones.
func parseLexicon(r io.Reader, dst map[string]float64) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, raw, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("line %d: %w", lineNo, ErrMalformedLexicon)
		}
		polarity, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("line %d: parsing polarity %q: %w", lineNo, raw, ErrMalformedLexicon)
		}
		if polarity < -1 || polarity > 1 {
			return fmt.Errorf("line %d: polarity %v outside [-1, 1]: %w", lineNo, polarity, ErrMalformedLexicon)
		}
		dst[foldApostrophes(strings.ToLower(strings.TrimSpace(word)))] = polarity
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading lexicon: %w", err)
	}
	return nil
}

// Polarity returns the lexicon polarity of word and whether it is known.
func (c *Context) Polarity(word string) (float64, bool) {
	p, ok := c.lexicon[foldApostrophes(strings.ToLower(word))]
	return p, ok
}
