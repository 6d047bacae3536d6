package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reviewlens/internal/engine/batch"
	"github.com/rshade/reviewlens/internal/pipeline"
)

func doneResult() *pipeline.Result {
	return &pipeline.Result{
		State: pipeline.StateDone,
		Stats: pipeline.ChunkStats{
			Input: 10, Dropped: 2, Output: 8,
			Positive: 5, Negative: 2, Neutral: 1,
		},
		Batches: 3,
		Progress: batch.ProgressSnapshot{
			ElapsedTime:    1500 * time.Millisecond,
			ItemsPerSecond: 6.5,
			LastUpdateTime: time.Unix(1_700_000_000, 0),
		},
	}
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := New()
	r.ObserveRun(doneResult())
	r.ObserveRun(&pipeline.Result{State: pipeline.StateFailed})
	r.ObserveRun(nil)

	assert.InDelta(t, 10, testutil.ToFloat64(r.rowsInput), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.rowsDropped), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(r.rowsOutput), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(r.batches), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(r.sentiment.WithLabelValues("Positive")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.sentiment.WithLabelValues("Negative")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.sentiment.WithLabelValues("Neutral")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.runs.WithLabelValues("done")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.runs.WithLabelValues("failed")), 0)
	assert.InDelta(t, 1.5, testutil.ToFloat64(r.duration), 1e-9)
	assert.InDelta(t, 6.5, testutil.ToFloat64(r.throughput), 1e-9)
	assert.InDelta(t, 1_700_000_000, testutil.ToFloat64(r.lastRun), 0)
}

func TestRecorder_ZeroLabelSeries(t *testing.T) {
	r := New()
	assert.Equal(t, 3, testutil.CollectAndCount(r.sentiment))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.ObserveRun(doneResult())

	path := filepath.Join(t.TempDir(), "collector", "reviewlens.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "reviewlens_rows_input_total 10")
	assert.Contains(t, out, `reviewlens_sentiment_total{label="Positive"} 5`)
	assert.Contains(t, out, `reviewlens_runs_total{state="done"} 1`)
	assert.Contains(t, out, "# HELP reviewlens_batches_total Batches processed")
}
