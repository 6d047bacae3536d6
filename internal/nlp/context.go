package nlp

import (
	"fmt"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrMalformedLexicon is returned when a lexicon file line cannot be parsed.
	ErrMalformedLexicon = constError("malformed lexicon entry")

	// ErrInvalidCacheSize is returned by WithScoreCache for a non-positive size.
	ErrInvalidCacheSize = constError("score cache size must be positive")

	// ErrUnknownModel is returned for a model name other than vader or lexicon.
	ErrUnknownModel = constError("unknown sentiment model")

	// ErrModelConflict is returned when lexicon files are combined with the
	// vader model, which cannot use them.
	ErrModelConflict = constError("lexicon files require the lexicon model")
)

// Model names a built-in polarity model.
type Model string

const (
	// ModelVADER scores with the VADER compound score. It is the default.
	ModelVADER Model = "vader"
	// ModelLexicon scores with the embedded word list plus any lexicon files.
	ModelLexicon Model = "lexicon"
)

// ParseModel parses a model name. Empty means the default, ModelVADER.
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModelVADER, nil
	case ModelVADER, ModelLexicon:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
}

// Scorer maps text to a polarity score in [-1, 1].
type Scorer interface {
	Score(text string) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(text string) float64

// Score calls f(text).
func (f ScorerFunc) Score(text string) float64 { return f(text) }

// Context owns the tokenizer rules, the stopword table and the polarity
// lexicon. Build it once with New and pass it to every caller.
type Context struct {
	model     Model
	stopwords map[string]struct{}
	lexicon   map[string]float64
	scorer    Scorer
	cache     *lru.Cache[string, float64]

	// cases.Caser keeps per-call state and must not be shared between goroutines.
	casers sync.Pool
}

type options struct {
	model        Model
	lexiconFiles []string
	scorer       Scorer
	cacheSize    int
}

// Option configures a Context.
type Option func(*options) error

// WithLexiconFile merges a word<TAB>polarity file over the embedded lexicon
// and selects ModelLexicon unless another model was chosen explicitly.
// It may be given more than once; later files win.
func WithLexiconFile(path string) Option {
	return func(o *options) error {
		if strings.TrimSpace(path) != "" {
			o.lexiconFiles = append(o.lexiconFiles, path)
		}
		return nil
	}
}

// WithModel selects the polarity model. An empty name keeps the default.
func WithModel(name string) Option {
	return func(o *options) error {
		if strings.TrimSpace(name) == "" {
			return nil
		}
		m, err := ParseModel(name)
		if err != nil {
			return err
		}
		o.model = m
		return nil
	}
}

// WithScorer replaces the model with s. Intended for tests.
func WithScorer(s Scorer) Option {
	return func(o *options) error {
		o.scorer = s
		return nil
	}
}

// WithScoreCache memoises Score results in an LRU holding up to size texts.
// A size of zero disables the cache.
func WithScoreCache(size int) Option {
	return func(o *options) error {
		if size < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidCacheSize, size)
		}
		o.cacheSize = size
		return nil
	}
}

// New builds a Context from the embedded English resources and opts.
func New(opts ...Option) (*Context, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	lexicon := make(map[string]float64, 256)
	if err := parseLexicon(strings.NewReader(lexiconEN), lexicon); err != nil {
		return nil, fmt.Errorf("loading embedded lexicon: %w", err)
	}
	for _, path := range o.lexiconFiles {
		if err := mergeLexiconFile(path, lexicon); err != nil {
			return nil, err
		}
	}

	model, err := resolveModel(o)
	if err != nil {
		return nil, err
	}

	c := &Context{
		model:     model,
		stopwords: loadStopwords(stopwordsEN),
		lexicon:   lexicon,
		scorer:    o.scorer,
	}
	if c.scorer == nil && model == ModelVADER {
		c.scorer = newVADERScorer()
	}
	c.casers.New = func() any {
		caser := cases.Lower(language.English)
		return &caser
	}

	if o.cacheSize > 0 {
		cache, err := lru.New[string, float64](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating score cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

func resolveModel(o options) (Model, error) {
	switch {
	case o.model == "" && len(o.lexiconFiles) > 0:
		return ModelLexicon, nil
	case o.model == "":
		return ModelVADER, nil
	case o.model == ModelVADER && len(o.lexiconFiles) > 0:
		return "", ErrModelConflict
	default:
		return o.model, nil
	}
}

func mergeLexiconFile(path string, dst map[string]float64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening lexicon file: %w", err)
	}
	defer f.Close()

	if err := parseLexicon(f, dst); err != nil {
		return fmt.Errorf("lexicon file %s: %w", path, err)
	}
	return nil
}

// lower applies full Unicode English lowercasing.
func (c *Context) lower(s string) string {
	caser, _ := c.casers.Get().(*cases.Caser)
	defer c.casers.Put(caser)
	return caser.String(s)
}

// Model reports the polarity model in use. It is meaningless when a custom
// scorer was installed with WithScorer.
func (c *Context) Model() Model { return c.model }

// LexiconSize reports the number of entries in the polarity lexicon.
func (c *Context) LexiconSize() int { return len(c.lexicon) }
