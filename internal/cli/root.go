package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/reviewlens/internal/config"
	"github.com/rshade/reviewlens/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// annotationSkipConfigLoad marks commands that must run without reading the
// config file, such as config init creating it.
const annotationSkipConfigLoad = "reviewlens/skip-config-load"

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// app carries state shared by every command of one invocation.
type app struct {
	configPath string
	cfg        *config.Config
	logResult  *logging.LogPathResult
}

// effectiveConfig returns the loaded configuration, or the defaults when a
// command runs without the root pre-run.
func (a *app) effectiveConfig() *config.Config {
	if a.cfg == nil {
		a.cfg = config.New()
	}
	return a.cfg
}

// NewRootCmd creates the root Cobra command for the reviewlens CLI.
// It loads configuration, wires up logging and tracing, and registers the
// run, classify, normalize and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:     "reviewlens",
		Short:   "Sentiment annotation for product review datasets",
		Long:    "reviewlens: clean review text and label each review Positive, Negative or Neutral",
		Version: ver,
		Example: rootCmdExample,
		// Errors are printed by cobra; usage only helps for flag mistakes.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.New()
			if cmd.Annotations[annotationSkipConfigLoad] == "" {
				loaded, err := config.Load(cmd.Context(), a.configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			a.cfg = cfg

			result := setupLogging(cmd, cfg)
			a.logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, a.logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"config file (default $REVIEWLENS_CONFIG or ./reviewlens.yaml)")
	cmd.AddCommand(newRunCmd(a), newClassifyCmd(a), newNormalizeCmd(a), newConfigCmd(a))

	return cmd
}

const rootCmdExample = `  # Annotate the default dataset
  reviewlens run

  # Annotate a compressed CSV in batches of 5000 and save the result
  reviewlens run reviews.csv.gz --batch-size 5000 --output annotated.xlsx

  # Load the result into SQLite and print a sentiment summary
  reviewlens run reviews.csv --output sqlite://reviews.db --summary

  # Label a single review
  reviewlens classify "The product quality is terrible."

  # Write the default configuration
  reviewlens config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(a), newConfigShowCmd(a))
	return cmd
}
