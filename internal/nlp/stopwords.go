package nlp

import (
	"bufio"
	_ "embed"
	"strings"
)

//go:embed data/stopwords_en.txt
var stopwordsEN string

// loadStopwords parses a newline separated word list, skipping blanks and
// '#' comments.
func loadStopwords(src string) map[string]struct{} {
	set := make(map[string]struct{}, 512)
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[foldApostrophes(strings.ToLower(line))] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is in the stopword table.
// The comparison is case-insensitive and treats ’ as '.
func (c *Context) IsStopword(word string) bool {
	_, ok := c.stopwords[foldApostrophes(strings.ToLower(word))]
	return ok
}

// Tokens tokenizes text and flags stopwords.
func (c *Context) Tokens(text string) []Token {
	tokens := Tokenize(text)
	for i := range tokens {
		if !tokens[i].IsPunct {
			tokens[i].IsStop = c.IsStopword(tokens[i].Text)
		}
	}
	return tokens
}
