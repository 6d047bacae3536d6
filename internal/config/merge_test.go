package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reviewlens/internal/config"
)

// newCustomTarget returns a Config with non-default values in every section
// so tests can tell overlay values, defaults and untouched sections apart.
func newCustomTarget() *config.Config {
	cfg := config.New()
	cfg.Input.Path = "custom.csv"
	cfg.Input.BatchSize = 500
	cfg.Input.NAValues = []string{"missing"}
	cfg.Pipeline.Workers = 4
	cfg.Pipeline.SmokeTest = "always"
	cfg.NLP.ScoreCacheSize = 128
	cfg.Output.Target = "out.csv"
	cfg.Metrics.Textfile = "/tmp/reviewlens.prom"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	return cfg
}

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newCustomTarget()
	overlay := writeOverlay(t, `
pipeline:
  workers: 8
  prefetch: true
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, 8, target.Pipeline.Workers)
	assert.True(t, target.Pipeline.Prefetch)

	// Other sections should be unchanged.
	assert.Equal(t, "custom.csv", target.Input.Path)
	assert.Equal(t, 500, target.Input.BatchSize)
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Equal(t, 128, target.NLP.ScoreCacheSize)
}

func TestShallowMergeYAML_SectionFieldsFallBackToDefaults(t *testing.T) {
	target := newCustomTarget()
	overlay := writeOverlay(t, `
input:
  path: other.csv.gz
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	defaults := config.New()
	assert.Equal(t, "other.csv.gz", target.Input.Path)
	assert.Equal(t, defaults.Input.BatchSize, target.Input.BatchSize)
	assert.Equal(t, defaults.Input.TextColumn, target.Input.TextColumn)
	assert.True(t, target.Input.KeepDefaultNA)
	assert.Empty(t, target.Input.NAValues)
}

func TestShallowMergeYAML_MultipleKeyOverride(t *testing.T) {
	target := newCustomTarget()
	overlay := writeOverlay(t, `
output:
  target: sqlite://reviews.db
  table: annotated
  summary: true
logging:
  level: warn
  format: console
metrics:
  textfile: /var/lib/node_exporter/reviewlens.prom
nlp:
  lexicon_file: extra.tsv
  score_cache_size: 0
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, config.OutputConfig{Target: "sqlite://reviews.db", Table: "annotated", Summary: true}, target.Output)
	assert.Equal(t, "warn", target.Logging.Level)
	assert.Equal(t, "console", target.Logging.Format)
	assert.Equal(t, "/var/lib/node_exporter/reviewlens.prom", target.Metrics.Textfile)
	assert.Equal(t, config.NLPConfig{LexiconFile: "extra.tsv"}, target.NLP)

	// Untouched.
	assert.Equal(t, 4, target.Pipeline.Workers)
}

func TestShallowMergeYAML_ZeroValueFieldsReplaceValues(t *testing.T) {
	target := newCustomTarget()
	require.True(t, target.Input.KeepDefaultNA)

	overlay := writeOverlay(t, `
input:
  batch_size: 1
  keep_default_na: false
  na_values: ["?"]
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, 1, target.Input.BatchSize)
	assert.False(t, target.Input.KeepDefaultNA)
	assert.Equal(t, []string{"?"}, target.Input.NAValues)
}

func TestShallowMergeYAML_EmptyOverlayFile(t *testing.T) {
	for name, content := range map[string]string{
		"empty":        "",
		"comment only": "# this file is intentionally empty\n# just comments\n",
	} {
		t.Run(name, func(t *testing.T) {
			target := newCustomTarget()
			overlay := writeOverlay(t, content)

			require.NoError(t, config.ShallowMergeYAML(target, overlay))
			assert.Equal(t, newCustomTarget(), target)
		})
	}
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newCustomTarget()
	overlay := writeOverlay(t, `
logging:
  level: error
unknown_section:
  foo: bar
extra_key: 42
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.NoError(t, err)

	assert.Equal(t, "error", target.Logging.Level)
	assert.Equal(t, "custom.csv", target.Input.Path)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("corrupted yaml", func(t *testing.T) {
		overlay := writeOverlay(t, "{{{{not valid yaml at all")
		err := config.ShallowMergeYAML(newCustomTarget(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(newCustomTarget(), "/nonexistent/path/overlay.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("wrong section type", func(t *testing.T) {
		overlay := writeOverlay(t, "input:\n  batch_size: lots\n")
		err := config.ShallowMergeYAML(newCustomTarget(), overlay)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `applying overlay section "input"`)
	})

	t.Run("nil target", func(t *testing.T) {
		require.Error(t, config.ShallowMergeYAML(nil, "unused.yaml"))
	})
}
