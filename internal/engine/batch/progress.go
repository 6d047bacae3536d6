package batch

import (
	"sync"
	"time"
)

// Progress tracks a streaming batch run whose total size is not known in
// advance. It is safe for concurrent use.
type Progress struct {
	// ProcessedItems is the number of items handed to the callback so far.
	ProcessedItems int

	// DroppedItems is the number of items the callback reported as discarded.
	DroppedItems int

	// ProcessedBatches is the number of batches processed so far.
	ProcessedBatches int

	// BatchSize is the configured batch size.
	BatchSize int

	// StartTime is when processing started.
	StartTime time.Time

	// LastUpdateTime is when progress was last updated.
	LastUpdateTime time.Time

	// mu protects concurrent access to progress fields.
	mu sync.RWMutex
}

// NewProgress creates a new progress tracker.
func NewProgress(batchSize int) *Progress {
	now := time.Now()
	return &Progress{
		BatchSize:      batchSize,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// AddProcessed increments the processed items and batches count.
func (p *Progress) AddProcessed(itemsProcessed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProcessedItems += itemsProcessed
	p.ProcessedBatches++
	p.LastUpdateTime = time.Now()
}

// AddDropped records items that were read but discarded by the callback.
func (p *Progress) AddDropped(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.DroppedItems += n
}

// ElapsedTime returns the time elapsed since processing started.
func (p *Progress) ElapsedTime() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return time.Since(p.StartTime)
}

// ItemsPerSecond returns the processing rate in items per second.
func (p *Progress) ItemsPerSecond() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.itemsPerSecondUnsafe()
}

// Snapshot returns a thread-safe copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		ProcessedItems:   p.ProcessedItems,
		DroppedItems:     p.DroppedItems,
		ProcessedBatches: p.ProcessedBatches,
		BatchSize:        p.BatchSize,
		StartTime:        p.StartTime,
		LastUpdateTime:   p.LastUpdateTime,
		ElapsedTime:      time.Since(p.StartTime),
		ItemsPerSecond:   p.itemsPerSecondUnsafe(),
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	ProcessedItems   int
	DroppedItems     int
	ProcessedBatches int
	BatchSize        int
	StartTime        time.Time
	LastUpdateTime   time.Time
	ElapsedTime      time.Duration
	ItemsPerSecond   float64
}

// itemsPerSecondUnsafe calculates items per second without locking.
// Should only be called when already holding the lock.
func (p *Progress) itemsPerSecondUnsafe() float64 {
	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(p.ProcessedItems) / elapsed
}

// Reset resets the progress tracker to initial state.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.ProcessedItems = 0
	p.DroppedItems = 0
	p.ProcessedBatches = 0
	p.StartTime = now
	p.LastUpdateTime = now
}
