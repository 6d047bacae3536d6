// Package batch streams items from a Source in fixed-size batches.
//
// A Processor asks its Source for at most batch-size items at a time and hands
// each non-empty batch to a callback in source order, so memory stays bounded
// by O(batch_size) however large the input is. Key features:
//   - Configurable batch size (default 10,000 items per batch)
//   - Optional one-batch read-ahead that overlaps I/O with processing
//   - Progress tracking with callbacks for logging
//   - Context-aware cancellation support
//
// ForEach fans the items of a single batch out over a bounded worker pool.
package batch
