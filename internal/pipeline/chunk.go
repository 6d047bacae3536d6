package pipeline

import (
	"context"
	"slices"

	"github.com/rshade/reviewlens/internal/engine/batch"
	"github.com/rshade/reviewlens/internal/logging"
	"github.com/rshade/reviewlens/internal/nlp"
	"github.com/rshade/reviewlens/internal/table"
)

// Names of the columns added to every processed batch.
const (
	CleanedTextColumn = "cleaned_text"
	SentimentColumn   = "sentiment"
)

// DefaultTextColumn is the review text column of the Amazon reviews export.
const DefaultTextColumn = "reviews.text"

// ChunkOptions controls ProcessChunk.
type ChunkOptions struct {
	// TextColumn names the review text column. Empty means DefaultTextColumn.
	TextColumn string

	// Workers > 1 annotates rows concurrently. Output order is unaffected.
	Workers int
}

// ChunkStats counts what happened to the rows of one or more batches.
type ChunkStats struct {
	Input    int `json:"input"`
	Dropped  int `json:"dropped"`
	Output   int `json:"output"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Add accumulates other into s.
func (s *ChunkStats) Add(other ChunkStats) {
	s.Input += other.Input
	s.Dropped += other.Dropped
	s.Output += other.Output
	s.Positive += other.Positive
	s.Negative += other.Negative
	s.Neutral += other.Neutral
}

// Count returns the number of output rows carrying label.
func (s ChunkStats) Count(label nlp.Label) int {
	switch label {
	case nlp.Positive:
		return s.Positive
	case nlp.Negative:
		return s.Negative
	case nlp.Neutral:
		return s.Neutral
	default:
		return 0
	}
}

func (s *ChunkStats) countLabel(label nlp.Label) {
	switch label {
	case nlp.Positive:
		s.Positive++
	case nlp.Negative:
		s.Negative++
	case nlp.Neutral:
		s.Neutral++
	}
}

// OutputColumns returns columns with cleaned_text and sentiment appended
// unless they are already present.
func OutputColumns(columns []string) []string {
	out := slices.Clone(columns)
	for _, c := range []string{CleanedTextColumn, SentimentColumn} {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// ProcessChunk drops rows whose text is null, then stores the normalized
// text in cleaned_text and the label of the normalized text in sentiment.
// The input batch is not modified. Rows keep their relative order. When the
// text column is absent every row is dropped.
//
// The only error is context cancellation.
func ProcessChunk(ctx context.Context, nlpCtx *nlp.Context, b *table.Batch, opts ChunkOptions) (*table.Batch, ChunkStats, error) {
	textColumn := opts.TextColumn
	if textColumn == "" {
		textColumn = DefaultTextColumn
	}

	columns := OutputColumns(b.Columns)
	textIdx := table.ColumnIndex(b.Columns, textColumn)
	cleanedIdx := table.ColumnIndex(columns, CleanedTextColumn)
	sentimentIdx := table.ColumnIndex(columns, SentimentColumn)

	stats := ChunkStats{Input: len(b.Rows)}

	kept := make([]table.Row, 0, len(b.Rows))
	for _, row := range b.Rows {
		if !row.Get(textIdx).Valid {
			continue
		}
		out := make(table.Row, len(columns))
		copy(out, row)
		kept = append(kept, out)
	}
	stats.Dropped = stats.Input - len(kept)
	stats.Output = len(kept)

	labels := make([]nlp.Label, len(kept))
	err := batch.ForEach(ctx, kept, opts.Workers, func(_ context.Context, i int, row table.Row) error {
		cleaned := nlpCtx.Normalize(row[textIdx].Value)
		labels[i] = nlpCtx.Classify(cleaned)
		row[cleanedIdx] = table.String(cleaned)
		row[sentimentIdx] = table.String(labels[i].String())
		return nil
	})
	if err != nil {
		return nil, ChunkStats{}, err
	}

	for _, l := range labels {
		stats.countLabel(l)
	}

	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "pipeline").
		Int("batch", b.Index).
		Int("input", stats.Input).
		Int("dropped", stats.Dropped).
		Msg("chunk processed")

	return &table.Batch{Index: b.Index, Columns: columns, Rows: kept}, stats, nil
}
