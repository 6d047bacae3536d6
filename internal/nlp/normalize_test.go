package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

//nolint:gochecknoglobals // Shared corpus for the property tests below.
var reviewCorpus = []string{
	"I love this great product",
	"This product is amazing! I love it.",
	"The product quality is terrible. I'm very disappointed.",
	"Neutral review with no strong sentiment.",
	"It’s NOT worth the money, don't buy it!!!",
	"Works as described; see https://example.com/item?id=7.",
	"ÉTÉ À LA PLAGE, super fun",
	"",
	"   ",
	"5 stars. would buy again",
}

func TestNormalize(t *testing.T) {
	c := newTestContext(t)

	tests := []struct {
		in   string
		want string
	}{
		{"I love this great product", "love great product"},
		{"This product is amazing! I love it.", "product amazing ! love ."},
		{"The product quality is terrible. I'm very disappointed.", "product quality terrible . disappointed ."},
		{"Don't you DARE", "dare"},
		{"", ""},
		{"the and of", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Normalize(tt.in))
		})
	}
}

func TestNormalize_NoStopwordsAndLowercase(t *testing.T) {
	c := newTestContext(t)
	for _, in := range reviewCorpus {
		out := c.Normalize(in)
		assert.Equal(t, strings.ToLower(out), out, "output of %q is not lowercase", in)
		for _, tok := range c.Tokens(out) {
			assert.False(t, tok.IsStop, "stopword %q left in output of %q", tok.Text, in)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	c := newTestContext(t)
	for _, in := range reviewCorpus {
		once := c.Normalize(in)
		twice := c.Normalize(once)
		assert.Equal(t, once, twice, in)
		assert.Equal(t, c.Classify(once), c.Classify(twice), in)
	}
}

func TestIsStopword(t *testing.T) {
	c := newTestContext(t)
	for _, w := range []string{"the", "The", "n't", "n’t", "'s", "’S", "very", "not"} {
		assert.True(t, c.IsStopword(w), w)
	}
	for _, w := range []string{"love", "product", "terrible", "!"} {
		assert.False(t, c.IsStopword(w), w)
	}
}
