package batch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Default batch processing configuration.
const (
	// DefaultBatchSize is the default number of items per batch.
	DefaultBatchSize = 10_000

	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MaxBatchSize is the maximum allowed batch size.
	MaxBatchSize = 1_000_000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
	ErrNilSource        = errors.New("batch source cannot be nil")
)

// Source yields items in order. Next returns up to n items and io.EOF once
// the source is exhausted. Next is never called concurrently.
type Source[T any] interface {
	Next(ctx context.Context, n int) ([]T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func(ctx context.Context, n int) ([]T, error)

// Next calls f(ctx, n).
func (f SourceFunc[T]) Next(ctx context.Context, n int) ([]T, error) { return f(ctx, n) }

// BatchCallback is a function that processes a single batch of items.
// It receives the batch items, batch index (0-based), and should return an error if processing fails.
//
//nolint:revive // BatchCallback is the canonical name for this exported type.
type BatchCallback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// ProgressCallback is an optional callback invoked after each batch is processed.
// It receives progress information for UI updates or logging.
type ProgressCallback func(progress *Progress)

// Processor pulls fixed-size batches from a Source and hands them to a
// callback, strictly in source order.
type Processor[T any] struct {
	// batchSize is the number of items requested per batch.
	batchSize int

	// prefetch enables one batch of read-ahead.
	prefetch bool

	// onProgress is an optional callback for progress updates.
	onProgress ProgressCallback

	progress *Progress
}

// NewProcessor creates a new batch processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}

	return &Processor[T]{
		batchSize: batchSize,
		progress:  NewProgress(batchSize),
	}, nil
}

// NewProcessorWithDefaults creates a processor with default batch size.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{
		batchSize: DefaultBatchSize,
		progress:  NewProgress(DefaultBatchSize),
	}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// WithPrefetch makes Run read the next batch while the current one is being
// processed. Callbacks still run one at a time and in order.
func (p *Processor[T]) WithPrefetch(enabled bool) *Processor[T] {
	p.prefetch = enabled
	return p
}

// GetBatchSize returns the configured batch size.
func (p *Processor[T]) GetBatchSize() int {
	return p.batchSize
}

// Progress returns the tracker for the current or last run.
func (p *Processor[T]) Progress() *Progress {
	return p.progress
}

// Run drains src in batches of GetBatchSize items and calls callback for each
// non-empty batch. It stops at the first read or callback error, which is
// returned wrapped with the batch index.
func (p *Processor[T]) Run(ctx context.Context, src Source[T], callback BatchCallback[T]) error {
	if src == nil {
		return ErrNilSource
	}
	if callback == nil {
		return ErrNilCallback
	}

	p.progress.Reset()

	if p.prefetch {
		return p.runPrefetch(ctx, src, callback)
	}
	return p.runSequential(ctx, src, callback)
}

func (p *Processor[T]) runSequential(ctx context.Context, src Source[T], callback BatchCallback[T]) error {
	for batchIndex := 0; ; batchIndex++ {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		items, err := src.Next(ctx, p.batchSize)
		if errors.Is(err, io.EOF) && len(items) == 0 {
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading batch %d: %w", batchIndex, err)
		}

		if err := p.handle(ctx, items, batchIndex, callback); err != nil {
			return err
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// runPrefetch reads batches on a producer goroutine through a channel with
// room for one batch, so at most two batches are held at a time.
func (p *Processor[T]) runPrefetch(ctx context.Context, src Source[T], callback BatchCallback[T]) error {
	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []T, 1)

	g.Go(func() error {
		defer close(batches)
		for batchIndex := 0; ; batchIndex++ {
			items, err := src.Next(gctx, p.batchSize)
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("reading batch %d: %w", batchIndex, err)
			}
			if len(items) > 0 {
				select {
				case batches <- items:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
		}
	})

	g.Go(func() error {
		batchIndex := 0
		for items := range batches {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := p.handle(gctx, items, batchIndex, callback); err != nil {
				return err
			}
			batchIndex++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	// errgroup cancels gctx on return; report a parent cancellation that
	// raced with the final batch.
	return ctx.Err()
}

func (p *Processor[T]) handle(ctx context.Context, items []T, batchIndex int, callback BatchCallback[T]) error {
	if len(items) == 0 {
		return nil
	}
	if err := callback(ctx, items, batchIndex); err != nil {
		return fmt.Errorf("batch %d failed: %w", batchIndex, err)
	}

	p.progress.AddProcessed(len(items))
	if p.onProgress != nil {
		p.onProgress(p.progress)
	}
	return nil
}

// ForEach calls fn for every item with at most workers calls in flight.
// workers <= 1 runs sequentially on the calling goroutine. The first error
// cancels the remaining calls and is returned.
func ForEach[T any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, i int, item T) error) error {
	if fn == nil {
		return ErrNilCallback
	}

	if workers <= 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, i, item); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i, item)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
