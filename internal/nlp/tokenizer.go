package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Token is a single unit produced by the tokenizer.
type Token struct {
	// Text is the token exactly as it appeared in the input (after NFC).
	Text string

	// IsStop reports whether the token is in the stopword table.
	// Only set by Context.Tokens; Tokenize leaves it false.
	IsStop bool

	// IsPunct reports whether the token is a single punctuation or symbol rune.
	IsPunct bool
}

var (
	// reURLish matches whitespace-delimited chunks that are kept whole.
	reURLish = regexp.MustCompile(`^(?i:https?://|www\.)\S+$|^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// reToken finds, in order of preference: dotted single-letter acronyms
	// (U.S.A.), numbers with internal dot or comma groups (1,000.50), words
	// with internal hyphens or apostrophes, or any single non-space rune that
	// is not part of a word. Dots and commas never join letters.
	reToken = regexp.MustCompile(`(?:\pL\pM*\.){2,}|[\pL\pM\pN]*\pN(?:[.,]\pN+)+|[\pL\pM\pN]+(?:[-'’][\pL\pM\pN]+)*|[^\s\pL\pM\pN]`)

	// trailing punctuation that must be split off URL-like chunks.
	urlTrailers = ".,;:!?)]}\"'"
)

// clitics are split from the end of a word token, longest first.
//
//nolint:gochecknoglobals // Fixed lookup table.
var clitics = []string{"n't", "'ll", "'re", "'ve", "'s", "'m", "'d"}

// Tokenize splits text into tokens using fixed English rules.
// The input is NFC-normalised first; the returned tokens preserve case.
func Tokenize(text string) []Token {
	text = norm.NFC.String(text)
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields)+len(fields)/2)

	for _, field := range fields {
		if core, tail := splitURLTrailer(field); reURLish.MatchString(core) {
			tokens = append(tokens, Token{Text: core})
			for _, r := range tail {
				tokens = append(tokens, Token{Text: string(r), IsPunct: true})
			}
			continue
		}

		for _, m := range reToken.FindAllString(field, -1) {
			if isSingleNonWord(m) {
				tokens = append(tokens, Token{Text: m, IsPunct: true})
				continue
			}
			tokens = appendWord(tokens, m)
		}
	}

	return tokens
}

// appendWord appends a word token, splitting a trailing English clitic.
func appendWord(tokens []Token, word string) []Token {
	folded := strings.ToLower(foldApostrophes(word))
	for _, c := range clitics {
		if len(folded) <= len(c) || !strings.HasSuffix(folded, c) {
			continue
		}
		// Byte offsets differ when a typographic apostrophe was folded, so
		// cut on rune count from the end of the original word.
		runes := []rune(word)
		cut := len(runes) - len([]rune(c))
		return append(tokens, Token{Text: string(runes[:cut])}, Token{Text: string(runes[cut:])})
	}
	return append(tokens, Token{Text: word})
}

// splitURLTrailer separates sentence punctuation glued to the end of a chunk.
func splitURLTrailer(field string) (string, string) {
	core := strings.TrimRight(field, urlTrailers)
	if core == "" {
		return field, ""
	}
	return core, field[len(core):]
}

func isSingleNonWord(s string) bool {
	r := []rune(s)
	return len(r) == 1 && !isWordRune(r[0])
}

func foldApostrophes(s string) string {
	return strings.ReplaceAll(s, "’", "'")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}
