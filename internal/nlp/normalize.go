package nlp

import "strings"

// Normalize lowercases text and removes stopwords. Retained tokens, including
// punctuation, are joined with a single space in their original order.
// Empty input yields an empty string.
func (c *Context) Normalize(text string) string {
	tokens := c.Tokens(text)
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, tok := range tokens {
		if tok.IsStop {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.lower(tok.Text))
	}
	return b.String()
}
