package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tokenTexts(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "whitespace only", in: " \t\n ", want: []string{}},
		{
			name: "punctuation split",
			in:   "This product is amazing! I love it.",
			want: []string{"This", "product", "is", "amazing", "!", "I", "love", "it", "."},
		},
		{
			name: "clitics",
			in:   "I'm sure they don't, we'll see",
			want: []string{"I", "'m", "sure", "they", "do", "n't", ",", "we", "'ll", "see"},
		},
		{
			name: "typographic apostrophe",
			in:   "It’s fine",
			want: []string{"It", "’s", "fine"},
		},
		{
			name: "hyphenated word and decimal number",
			in:   "well-made for 19.99 dollars",
			want: []string{"well-made", "for", "19.99", "dollars"},
		},
		{
			name: "missing space after full stop",
			in:   "Awful.Broke after one day",
			want: []string{"Awful", ".", "Broke", "after", "one", "day"},
		},
		{
			name: "missing space after commas",
			in:   "Terrible,broken,useless",
			want: []string{"Terrible", ",", "broken", ",", "useless"},
		},
		{
			name: "lowercase before full stop",
			in:   "Great value.Love it",
			want: []string{"Great", "value", ".", "Love", "it"},
		},
		{
			name: "grouped number",
			in:   "paid 1,000.50 for v2.1",
			want: []string{"paid", "1,000.50", "for", "v2.1"},
		},
		{
			name: "number then comma and word",
			in:   "5,great",
			want: []string{"5", ",", "great"},
		},
		{
			name: "dotted acronym",
			in:   "made in the U.S.A. honestly",
			want: []string{"made", "in", "the", "U.S.A.", "honestly"},
		},
		{
			name: "url kept whole with trailing punctuation split",
			in:   "see https://example.com/a?b=1.",
			want: []string{"see", "https://example.com/a?b=1", "."},
		},
		{
			name: "email kept whole",
			in:   "mail me@example.org now",
			want: []string{"mail", "me@example.org", "now"},
		},
		{
			name: "repeated punctuation",
			in:   "wow!!",
			want: []string{"wow", "!", "!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenTexts(Tokenize(tt.in)))
		})
	}
}

func TestTokenize_PunctFlag(t *testing.T) {
	tokens := Tokenize("good, bad.")
	assert.Equal(t, []bool{false, true, false, true}, []bool{
		tokens[0].IsPunct, tokens[1].IsPunct, tokens[2].IsPunct, tokens[3].IsPunct,
	})
}

func TestTokenize_NFC(t *testing.T) {
	tokens := Tokenize("cafe\u0301 ok")
	assert.Equal(t, []string{"caf\u00e9", "ok"}, tokenTexts(tokens))
}
