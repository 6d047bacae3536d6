package config_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/reviewlens/internal/config"
	"github.com/rshade/reviewlens/internal/logging"
	"github.com/rshade/reviewlens/internal/pipeline"
	"github.com/rshade/reviewlens/internal/table"
)

// isolate runs the test from an empty directory with no config-related
// environment set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		config.EnvConfig, config.EnvLogLevel, config.EnvLogFormat,
		config.EnvBatchSize, config.EnvTextColumn,
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()
	assert.Equal(t, "amazon_product_reviews.csv", cfg.Input.Path)
	assert.Equal(t, "reviews.text", cfg.Input.TextColumn)
	assert.Equal(t, 10_000, cfg.Input.BatchSize)
	assert.True(t, cfg.Input.KeepDefaultNA)
	assert.Equal(t, "after-load", cfg.Pipeline.SmokeTest)
	assert.Equal(t, "reviews", cfg.Output.Table)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestResolvePath(t *testing.T) {
	isolate(t)

	path, explicit := config.ResolvePath("")
	assert.Equal(t, config.DefaultFileName, path)
	assert.False(t, explicit)

	t.Setenv(config.EnvConfig, "/etc/reviewlens.yaml")
	path, explicit = config.ResolvePath("")
	assert.Equal(t, "/etc/reviewlens.yaml", path)
	assert.True(t, explicit)

	path, explicit = config.ResolvePath("flag.yaml")
	assert.Equal(t, "flag.yaml", path)
	assert.True(t, explicit)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, config.New(), cfg)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)

	_, err := config.Load(context.Background(), filepath.Join(dir, "nope.yaml"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	t.Setenv(config.EnvConfig, filepath.Join(dir, "also-nope.yaml"))
	_, err = config.Load(context.Background(), "")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(`
input:
  path: reviews.xlsx
  sheet: Data
pipeline:
  smoke_test: off
`), 0o600))

	cfg, err := config.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "reviews.xlsx", cfg.Input.Path)
	assert.Equal(t, "Data", cfg.Input.Sheet)
	assert.Equal(t, 10_000, cfg.Input.BatchSize)
	assert.Equal(t, "off", cfg.Pipeline.SmokeTest)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeOverlay(t, `
input:
  batch_size: 50
  text_column: body
logging:
  level: info
`)
	t.Setenv(config.EnvConfig, path)
	t.Setenv(config.EnvBatchSize, " 75 ")
	t.Setenv(config.EnvTextColumn, "review")
	t.Setenv(config.EnvLogLevel, "debug")
	t.Setenv(config.EnvLogFormat, "json")

	cfg, err := config.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.Input.BatchSize)
	assert.Equal(t, "review", cfg.Input.TextColumn)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad env batch size", env: map[string]string{config.EnvBatchSize: "ten"}},
		{name: "zero batch size", content: "input:\n  batch_size: 0\n"},
		{name: "bad smoke mode", content: "pipeline:\n  smoke_test: sometimes\n"},
		{name: "bad log level", env: map[string]string{config.EnvLogLevel: "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(tt.content), 0o600))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load(context.Background(), "")
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "max batch size", mutate: func(c *config.Config) { c.Input.BatchSize = 1_000_000 }},
		{name: "batch size too large", mutate: func(c *config.Config) { c.Input.BatchSize = 1_000_001 }, wantErr: true},
		{name: "negative batch size", mutate: func(c *config.Config) { c.Input.BatchSize = -1 }, wantErr: true},
		{name: "blank text column", mutate: func(c *config.Config) { c.Input.TextColumn = "  " }, wantErr: true},
		{name: "negative workers", mutate: func(c *config.Config) { c.Pipeline.Workers = -2 }, wantErr: true},
		{name: "smoke mode case", mutate: func(c *config.Config) { c.Pipeline.SmokeTest = "ALWAYS" }},
		{name: "empty smoke mode", mutate: func(c *config.Config) { c.Pipeline.SmokeTest = "" }},
		{name: "negative cache", mutate: func(c *config.Config) { c.NLP.ScoreCacheSize = -1 }, wantErr: true},
		{name: "lexicon model", mutate: func(c *config.Config) { c.NLP.Model = "lexicon" }},
		{name: "unknown model", mutate: func(c *config.Config) { c.NLP.Model = "textblob" }, wantErr: true},
		{name: "lexicon file without model", mutate: func(c *config.Config) { c.NLP.LexiconFile = "extra.tsv" }},
		{name: "lexicon file with vader", mutate: func(c *config.Config) {
			c.NLP.Model = "vader"
			c.NLP.LexiconFile = "extra.tsv"
		}, wantErr: true},
		{name: "xlsx target", mutate: func(c *config.Config) { c.Output.Target = "out.xlsx" }},
		{name: "postgres target", mutate: func(c *config.Config) { c.Output.Target = "postgres://localhost/db" }},
		{name: "parquet target", mutate: func(c *config.Config) { c.Output.Target = "out.parquet" }, wantErr: true},
		{name: "bad format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "empty level", mutate: func(c *config.Config) { c.Logging.Level = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, config.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSave(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "reviewlens.yaml")

	cfg := config.New()
	cfg.Pipeline.Workers = 3
	cfg.Input.NAValues = []string{"-"}
	require.NoError(t, cfg.Save(path, false))

	err := config.New().Save(path, false)
	require.ErrorIs(t, err, config.ErrConfigExists)

	loaded, err := config.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	require.NoError(t, config.New().Save(path, true))
	loaded, err = config.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Pipeline.Workers)
}

func TestMarshal(t *testing.T) {
	out, err := config.New().Marshal()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "input:\n  path: amazon_product_reviews.csv\n")
	assert.Contains(t, s, "  batch_size: 10000\n")
	assert.Contains(t, s, "  smoke_test: after-load\n")
	assert.NotContains(t, s, "lexicon_file")
}

func TestReaderOptions(t *testing.T) {
	cfg := config.New()
	assert.Nil(t, cfg.ReaderOptions().NA)

	cfg.Input.NAValues = []string{"?"}
	opts := cfg.ReaderOptions()
	require.NotNil(t, opts.NA)
	assert.Equal(t, table.Null, opts.NA.Cell("?"))
	assert.Equal(t, table.Null, opts.NA.Cell("NA"))

	cfg.Input.KeepDefaultNA = false
	cfg.Input.NAValues = nil
	cfg.Input.Sheet = "Reviews"
	opts = cfg.ReaderOptions()
	require.NotNil(t, opts.NA)
	assert.Equal(t, "Reviews", opts.Sheet)
	assert.Equal(t, table.String("NA"), opts.NA.Cell("NA"))
}

func TestPipelineOptions(t *testing.T) {
	cfg := config.New()
	cfg.Pipeline.Prefetch = true
	cfg.Pipeline.Workers = 2
	cfg.Pipeline.SmokeTest = "off"

	opts := cfg.PipelineOptions()
	assert.Equal(t, 10_000, opts.BatchSize)
	assert.Equal(t, "reviews.text", opts.TextColumn)
	assert.Equal(t, pipeline.SmokeOff, opts.SmokeTest)
	assert.True(t, opts.Prefetch)
	assert.Equal(t, 2, opts.Workers)
	assert.Len(t, cfg.NLPOptions(), 3)
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "warn", Format: "json"}
	assert.Equal(t, logging.Config{Level: "warn", Format: "json", Output: logging.OutputStderr}, lc.ToLoggingConfig())

	lc.File = "/var/log/reviewlens.log"
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/var/log/reviewlens.log", got.File)
}
