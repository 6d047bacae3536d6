package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/reviewlens/internal/config"
	"github.com/rshade/reviewlens/internal/export"
	"github.com/rshade/reviewlens/internal/logging"
	"github.com/rshade/reviewlens/internal/metrics"
	"github.com/rshade/reviewlens/internal/nlp"
	"github.com/rshade/reviewlens/internal/pipeline"
)

// runParams holds the flag values of the run command. Flags override the
// config only when set on the command line.
type runParams struct {
	batchSize  int
	textColumn string
	sheet      string
	prefetch   bool
	workers    int
	smokeTest  string
	model      string
	lexicon    string
	scoreCache int
	output     string
	table      string
	summary    bool
	metrics    string
}

// newRunCmd creates the "run" command, which annotates a dataset file.
//
// The dataset path comes from the first argument, falling back to
// input.path in the config. A missing dataset is reported on stdout and
// exits 0; any other read failure is an error.
func newRunCmd(a *app) *cobra.Command {
	var params runParams

	cmd := &cobra.Command{
		Use:   "run [dataset]",
		Short: "Clean and label every review in a dataset",
		Long: `Streams a CSV, TSV or XLSX dataset (optionally .gz, .bz2, .xz or .zst
compressed) in fixed-size batches. Rows without review text are dropped; the
rest gain a cleaned_text column and a Positive/Negative/Neutral sentiment
column. A smoke test on three sample reviews runs after processing.`,
		Example: runCmdExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.effectiveConfig()
			applyRunFlags(cmd, cfg, params)
			if err := cfg.Validate(); err != nil {
				return err
			}
			path := cfg.Input.Path
			if len(args) == 1 {
				path = args[0]
			}
			return executeRun(cmd, cfg, path)
		},
	}

	f := cmd.Flags()
	f.IntVar(&params.batchSize, "batch-size", 0, "rows per batch (default from config, 10000)")
	f.StringVar(&params.textColumn, "text-column", "", "column holding the review text (default reviews.text)")
	f.StringVar(&params.sheet, "sheet", "", "XLSX worksheet to read")
	f.BoolVar(&params.prefetch, "prefetch", false, "read the next batch while processing the current one")
	f.IntVar(&params.workers, "workers", 0, "goroutines per batch (0 or 1 = sequential)")
	f.StringVar(&params.smokeTest, "smoke-test", "", "smoke test mode: after-load, always or off")
	f.StringVar(&params.model, "model", "", "sentiment model: vader (default) or lexicon")
	f.StringVar(&params.lexicon, "lexicon", "", "extra word<TAB>polarity lexicon file (implies --model lexicon)")
	f.IntVar(&params.scoreCache, "score-cache", 0, "memoise up to N sentiment scores (0 = off)")
	f.StringVar(&params.output, "output", "", "export target: *.csv, *.xlsx, sqlite://path or postgres://dsn")
	f.StringVar(&params.table, "table", "", "table name for SQL export (default reviews)")
	f.BoolVar(&params.summary, "summary", false, "print a sentiment distribution after the run")
	f.StringVar(&params.metrics, "metrics-textfile", "", "write Prometheus metrics to this file")

	return cmd
}

const runCmdExample = `  # Annotate ./amazon_product_reviews.csv
  reviewlens run

  # Parallel processing with read-ahead
  reviewlens run reviews.tsv --workers 4 --prefetch

  # Export to Postgres
  reviewlens run reviews.csv --output postgres://localhost/reviews?sslmode=disable --table annotated`

// applyRunFlags copies explicitly set flags onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, p runParams) {
	f := cmd.Flags()
	if f.Changed("batch-size") {
		cfg.Input.BatchSize = p.batchSize
	}
	if f.Changed("text-column") {
		cfg.Input.TextColumn = p.textColumn
	}
	if f.Changed("sheet") {
		cfg.Input.Sheet = p.sheet
	}
	if f.Changed("prefetch") {
		cfg.Pipeline.Prefetch = p.prefetch
	}
	if f.Changed("workers") {
		cfg.Pipeline.Workers = p.workers
	}
	if f.Changed("smoke-test") {
		cfg.Pipeline.SmokeTest = p.smokeTest
	}
	if f.Changed("model") {
		cfg.NLP.Model = p.model
	}
	if f.Changed("lexicon") {
		cfg.NLP.LexiconFile = p.lexicon
	}
	if f.Changed("score-cache") {
		cfg.NLP.ScoreCacheSize = p.scoreCache
	}
	if f.Changed("output") {
		cfg.Output.Target = p.output
	}
	if f.Changed("table") {
		cfg.Output.Table = p.table
	}
	if f.Changed("summary") {
		cfg.Output.Summary = p.summary
	}
	if f.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = p.metrics
	}
}

// executeRun runs the pipeline and the optional export, summary and metrics
// steps.
func executeRun(cmd *cobra.Command, cfg *config.Config, path string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	start := time.Now()

	nlpCtx, err := nlp.New(cfg.NLPOptions()...)
	if err != nil {
		return fmt.Errorf("building nlp context: %w", err)
	}

	driver, err := pipeline.NewDriver(nlpCtx, cmd.OutOrStdout(), cfg.PipelineOptions())
	if err != nil {
		return err
	}

	log.Debug().Ctx(ctx).Str("operation", "run").Str("path", path).
		Int("batch_size", cfg.Input.BatchSize).Int("workers", cfg.Pipeline.Workers).
		Bool("prefetch", cfg.Pipeline.Prefetch).Msg("starting run")

	res, err := driver.Run(ctx, path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("path", path).Msg("run failed")
		return err
	}

	if cfg.Metrics.Textfile != "" {
		rec := metrics.New()
		rec.ObserveRun(res)
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn().Ctx(ctx).Err(err).Msg("could not write metrics textfile")
		}
	}

	if res.State != pipeline.StateDone {
		return nil
	}

	if cfg.Output.Target != "" {
		if err := exportTable(ctx, cfg, res); err != nil {
			return err
		}
	}

	if cfg.Output.Summary {
		if err := RenderSummary(cmd.OutOrStdout(), res); err != nil {
			return fmt.Errorf("rendering summary: %w", err)
		}
	}

	log.Info().Ctx(ctx).Str("operation", "run").Int("rows", res.Stats.Output).
		Int("dropped", res.Stats.Dropped).Int("batches", res.Batches).
		Dur("duration_ms", time.Since(start)).Msg("run complete")
	return nil
}

func exportTable(ctx context.Context, cfg *config.Config, res *pipeline.Result) error {
	log := logging.FromContext(ctx)

	exp, err := export.New(cfg.Output.Target, export.Options{Table: cfg.Output.Table})
	if err != nil {
		return err
	}
	if err := exp.Export(ctx, res.Table); err != nil {
		return fmt.Errorf("exporting to %s: %w", redactTarget(cfg.Output.Target), err)
	}
	log.Info().Ctx(ctx).Str("target", redactTarget(cfg.Output.Target)).
		Int("rows", res.Table.Len()).Msg("table exported")
	return nil
}
