package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/reviewlens/internal/nlp"
)

// newClassifyCmd creates the "classify" command, which labels ad-hoc text.
func newClassifyCmd(a *app) *cobra.Command {
	var (
		showScore bool
		model     string
		lexicon   string
	)

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Label review text as Positive, Negative or Neutral",
		Long: `Classifies each argument, or each line of stdin when no arguments are
given. The text is classified as written, without stopword removal.`,
		Example: `  reviewlens classify "I love it" "Never again"
  cat reviews.txt | reviewlens classify --score`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.effectiveConfig()
			if cmd.Flags().Changed("model") {
				cfg.NLP.Model = model
			}
			if cmd.Flags().Changed("lexicon") {
				cfg.NLP.LexiconFile = lexicon
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			nlpCtx, err := nlp.New(cfg.NLPOptions()...)
			if err != nil {
				return fmt.Errorf("building nlp context: %w", err)
			}
			return eachInput(cmd, args, func(text string) error {
				score := nlpCtx.Score(text)
				if showScore {
					return writeLine(cmd.OutOrStdout(), fmt.Sprintf("%s\t%.4f\t%s", nlp.LabelFor(score), score, text))
				}
				return writeLine(cmd.OutOrStdout(), fmt.Sprintf("%s\t%s", nlp.LabelFor(score), text))
			})
		},
	}

	cmd.Flags().BoolVar(&showScore, "score", false, "also print the polarity score")
	cmd.Flags().StringVar(&model, "model", "", "sentiment model: vader (default) or lexicon")
	cmd.Flags().StringVar(&lexicon, "lexicon", "", "extra word<TAB>polarity lexicon file (implies --model lexicon)")
	return cmd
}

// newNormalizeCmd creates the "normalize" command, which prints cleaned text.
func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Lowercase text and remove English stopwords",
		Long: `Prints the cleaned form of each argument, or of each line of stdin when
no arguments are given. This is the cleaned_text value the run command stores.`,
		Example: `  reviewlens normalize "This product is amazing! I love it."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nlpCtx, err := nlp.New(a.effectiveConfig().NLPOptions()...)
			if err != nil {
				return fmt.Errorf("building nlp context: %w", err)
			}
			return eachInput(cmd, args, func(text string) error {
				return writeLine(cmd.OutOrStdout(), nlpCtx.Normalize(text))
			})
		},
	}
}

// eachInput calls fn for every argument, or for every stdin line when args
// is empty.
func eachInput(cmd *cobra.Command, args []string, fn func(string) error) error {
	if len(args) > 0 {
		for _, arg := range args {
			if err := fn(arg); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return nil
}

func writeLine(w io.Writer, line string) error {
	_, err := fmt.Fprintln(w, line)
	return err
}
