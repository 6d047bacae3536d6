package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/rshade/reviewlens/internal/engine/batch"
	"github.com/rshade/reviewlens/internal/logging"
	"github.com/rshade/reviewlens/internal/nlp"
	"github.com/rshade/reviewlens/internal/table"
)

// DefaultDataset is the file read when no path is given.
const DefaultDataset = "amazon_product_reviews.csv"

// State is a step of a driver run.
type State string

// Driver states. Failed is only reachable from Loading.
const (
	StateLoading      State = "loading"
	StateProcessing   State = "processing"
	StateSmokeTesting State = "smoke-testing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// SmokeTestMode decides when the sample reviews are classified.
type SmokeTestMode string

// Smoke test modes.
const (
	// SmokeAfterLoad runs the samples only after the dataset was processed.
	SmokeAfterLoad SmokeTestMode = "after-load"
	// SmokeAlways also runs the samples when the dataset file is missing.
	SmokeAlways SmokeTestMode = "always"
	// SmokeOff never runs the samples.
	SmokeOff SmokeTestMode = "off"
)

var (
	// ErrInvalidSmokeTestMode is returned by ParseSmokeTestMode.
	ErrInvalidSmokeTestMode = errors.New("smoke test mode must be one of after-load, always, off")

	// ErrTextColumnNotFound is returned when the dataset header lacks the
	// configured text column.
	ErrTextColumnNotFound = errors.New("text column not found in dataset header")
)

// ParseSmokeTestMode parses a mode name. Empty means SmokeAfterLoad.
func ParseSmokeTestMode(s string) (SmokeTestMode, error) {
	switch m := SmokeTestMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SmokeAfterLoad, nil
	case SmokeAfterLoad, SmokeAlways, SmokeOff:
		return m, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSmokeTestMode, s)
	}
}

// DefaultSamples returns the built-in smoke test reviews.
func DefaultSamples() []string {
	return []string{
		"This product is amazing! I love it.",
		"The product quality is terrible. I'm very disappointed.",
		"Neutral review with no strong sentiment.",
	}
}

// Options configures a Driver. Zero values select the defaults.
type Options struct {
	BatchSize  int
	TextColumn string
	SmokeTest  SmokeTestMode
	Samples    []string
	Prefetch   bool
	Workers    int
	Reader     table.Options
}

func (o Options) withDefaults() Options {
	if o.BatchSize == 0 {
		o.BatchSize = batch.DefaultBatchSize
	}
	if o.TextColumn == "" {
		o.TextColumn = DefaultTextColumn
	}
	if o.SmokeTest == "" {
		o.SmokeTest = SmokeAfterLoad
	}
	if len(o.Samples) == 0 {
		o.Samples = DefaultSamples()
	}
	return o
}

// SmokeResult is one classified sample review.
type SmokeResult struct {
	Review string    `json:"review"`
	Label  nlp.Label `json:"label"`
}

// Result is the outcome of a run.
type Result struct {
	// State is the terminal state, StateDone or StateFailed.
	State State

	// Table is the processed table; nil when the run failed.
	Table *table.Table

	Stats    ChunkStats
	Batches  int
	Progress batch.ProgressSnapshot
	Smoke    []SmokeResult
}

// OpenFunc opens a dataset for reading.
type OpenFunc func(path string, opts table.Options) (table.Reader, error)

// Driver streams a dataset through ProcessChunk and prints progress lines.
type Driver struct {
	nlp  *nlp.Context
	out  io.Writer
	opts Options
	open OpenFunc
}

// NewDriver returns a driver printing progress to out.
func NewDriver(nlpCtx *nlp.Context, out io.Writer, opts Options) (*Driver, error) {
	if nlpCtx == nil {
		return nil, errors.New("nil nlp context")
	}
	opts = opts.withDefaults()
	if opts.BatchSize < batch.MinBatchSize || opts.BatchSize > batch.MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", batch.ErrInvalidBatchSize, opts.BatchSize)
	}
	mode, err := ParseSmokeTestMode(string(opts.SmokeTest))
	if err != nil {
		return nil, err
	}
	opts.SmokeTest = mode
	if opts.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", opts.Workers)
	}
	return &Driver{nlp: nlpCtx, out: out, opts: opts, open: table.Open}, nil
}

// WithOpener replaces the dataset opener. Used by tests.
func (d *Driver) WithOpener(open OpenFunc) *Driver {
	d.open = open
	return d
}

// Options returns the effective options.
func (d *Driver) Options() Options { return d.opts }

// Run processes the dataset at path.
//
// A missing file is not an error: the not-found message is printed and the
// result has StateFailed. Any other read or parse failure, including a header
// without the text column, aborts the run and is returned; no partial table
// is produced.
func (d *Driver) Run(ctx context.Context, path string) (res *Result, err error) {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "pipeline")
	res = &Result{State: StateLoading}

	d.println("Loading dataset...")
	reader, err := d.open(path, d.opts.Reader)
	if errors.Is(err, fs.ErrNotExist) {
		d.printf("Dataset file '%s' not found. Please check the file path.\n", path)
		log.Warn().Ctx(ctx).Str("path", path).Msg("dataset not found")
		res.State = StateFailed
		if d.opts.SmokeTest == SmokeAlways {
			res.Smoke = d.smokeTest()
		}
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			res, err = nil, fmt.Errorf("closing dataset: %w", cerr)
		}
	}()
	d.println("Dataset loaded successfully.")

	res.State = StateProcessing
	columns := reader.Columns()
	if table.ColumnIndex(columns, d.opts.TextColumn) < 0 {
		log.Error().Ctx(ctx).
			Str("column", d.opts.TextColumn).
			Strs("columns", columns).
			Msg("text column not found")
		return nil, fmt.Errorf("%w: %q (have %s)",
			ErrTextColumnNotFound, d.opts.TextColumn, strings.Join(columns, ", "))
	}

	proc, err := batch.NewProcessor[table.Row](d.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	proc.WithPrefetch(d.opts.Prefetch).WithProgressCallback(func(p *batch.Progress) {
		snap := p.Snapshot()
		log.Debug().Ctx(ctx).
			Int("batches", snap.ProcessedBatches).
			Int("rows", snap.ProcessedItems).
			Float64("rows_per_sec", snap.ItemsPerSecond).
			Msg("progress")
	})

	var processed []*table.Batch
	chunkOpts := ChunkOptions{TextColumn: d.opts.TextColumn, Workers: d.opts.Workers}
	err = proc.Run(ctx, reader, func(ctx context.Context, rows []table.Row, batchIndex int) error {
		d.printf("Processing chunk %d\n", batchIndex+1)
		out, stats, err := ProcessChunk(ctx, d.nlp, &table.Batch{Index: batchIndex, Columns: columns, Rows: rows}, chunkOpts)
		if err != nil {
			return err
		}
		proc.Progress().AddDropped(stats.Dropped)
		res.Stats.Add(stats)
		processed = append(processed, out)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("processing dataset: %w", err)
	}

	res.Table, err = table.Concat(OutputColumns(columns), processed)
	if err != nil {
		return nil, fmt.Errorf("combining batches: %w", err)
	}
	res.Batches = len(processed)
	res.Progress = proc.Progress().Snapshot()

	log.Info().Ctx(ctx).
		Int("batches", res.Batches).
		Int("rows_in", res.Stats.Input).
		Int("rows_out", res.Stats.Output).
		Int("dropped", res.Stats.Dropped).
		Dur("elapsed", res.Progress.ElapsedTime).
		Msg("dataset processed")

	if d.opts.SmokeTest != SmokeOff {
		res.State = StateSmokeTesting
		res.Smoke = d.smokeTest()
	}

	d.println("Data processing complete.")
	res.State = StateDone
	return res, nil
}

// smokeTest classifies the sample reviews on their original text.
func (d *Driver) smokeTest() []SmokeResult {
	d.println("Testing sentiment analysis on sample reviews:")
	results := make([]SmokeResult, 0, len(d.opts.Samples))
	for _, review := range d.opts.Samples {
		label := d.nlp.Classify(review)
		d.printf("Review: %s | Sentiment: %s\n", review, label)
		results = append(results, SmokeResult{Review: review, Label: label})
	}
	return results
}

func (d *Driver) println(line string) {
	_, _ = fmt.Fprintln(d.out, line)
}

func (d *Driver) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, format, args...)
}
