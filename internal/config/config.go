// Package config loads the reviewlens YAML configuration.
//
// Precedence, lowest first: built-in defaults, the config file, REVIEWLENS_*
// environment variables, then command-line flags (applied by the CLI).
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rshade/reviewlens/internal/engine/batch"
	"github.com/rshade/reviewlens/internal/export"
	"github.com/rshade/reviewlens/internal/logging"
	"github.com/rshade/reviewlens/internal/nlp"
	"github.com/rshade/reviewlens/internal/pipeline"
	"github.com/rshade/reviewlens/internal/table"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "reviewlens.yaml"

// Environment variables read by Load.
const (
	EnvConfig     = "REVIEWLENS_CONFIG"
	EnvLogLevel   = "REVIEWLENS_LOG_LEVEL"
	EnvLogFormat  = "REVIEWLENS_LOG_FORMAT"
	EnvBatchSize  = "REVIEWLENS_BATCH_SIZE"
	EnvTextColumn = "REVIEWLENS_TEXT_COLUMN"
)

var (
	// ErrConfigExists is returned by Save when the file exists and force is off.
	ErrConfigExists = errors.New("config file already exists")

	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the full reviewlens configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	NLP      NLPConfig      `yaml:"nlp"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InputConfig describes the dataset and how it is read.
type InputConfig struct {
	Path       string `yaml:"path"`
	TextColumn string `yaml:"text_column"`
	BatchSize  int    `yaml:"batch_size"`

	// Sheet selects the XLSX worksheet; empty picks the first data sheet.
	Sheet string `yaml:"sheet,omitempty"`

	NAValues      []string `yaml:"na_values,omitempty"`
	KeepDefaultNA bool     `yaml:"keep_default_na"`
}

// PipelineConfig tunes the batch loop.
type PipelineConfig struct {
	Prefetch  bool     `yaml:"prefetch"`
	Workers   int      `yaml:"workers"`
	SmokeTest string   `yaml:"smoke_test"`
	Samples   []string `yaml:"samples,omitempty"`
}

// NLPConfig tunes the sentiment context.
type NLPConfig struct {
	// Model is vader (default) or lexicon. Lexicon files need the lexicon model.
	Model          string `yaml:"model,omitempty"`
	LexiconFile    string `yaml:"lexicon_file,omitempty"`
	ScoreCacheSize int    `yaml:"score_cache_size"`
}

// OutputConfig selects optional sinks.
type OutputConfig struct {
	// Target is a .csv/.xlsx path or a sqlite:// or postgres:// DSN.
	Target  string `yaml:"target,omitempty"`
	Table   string `yaml:"table"`
	Summary bool   `yaml:"summary"`
}

// MetricsConfig controls the Prometheus textfile.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Input: InputConfig{
			Path:          pipeline.DefaultDataset,
			TextColumn:    pipeline.DefaultTextColumn,
			BatchSize:     batch.DefaultBatchSize,
			KeepDefaultNA: true,
		},
		Pipeline: PipelineConfig{
			SmokeTest: string(pipeline.SmokeAfterLoad),
		},
		Output: OutputConfig{
			Table: export.DefaultTable,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// ResolvePath returns the config path to use and whether it was requested
// explicitly (flag or environment) rather than being the default file.
func ResolvePath(flagValue string) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	return DefaultFileName, false
}

// Load builds the effective configuration from defaults, the resolved config
// file and the environment. A missing default file is not an error; a missing
// explicitly requested file is.
func Load(ctx context.Context, flagValue string) (*Config, error) {
	logger := logging.FromContext(ctx)
	cfg := New()

	path, explicit := ResolvePath(flagValue)
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
		logger.Debug().
			Str("component", "config").
			Str("path", path).
			Msg("no config file, using defaults")
	} else {
		if err := ShallowMergeYAML(cfg, path); err != nil {
			return nil, err
		}
		logger.Debug().
			Str("component", "config").
			Str("path", path).
			Msg("config file loaded")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvTextColumn); v != "" {
		c.Input.TextColumn = v
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvBatchSize, v)
		}
		c.Input.BatchSize = n
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Input.BatchSize < batch.MinBatchSize || c.Input.BatchSize > batch.MaxBatchSize {
		return fmt.Errorf("%w: input.batch_size must be between %d and %d, got %d",
			ErrInvalidConfig, batch.MinBatchSize, batch.MaxBatchSize, c.Input.BatchSize)
	}
	if strings.TrimSpace(c.Input.TextColumn) == "" {
		return fmt.Errorf("%w: input.text_column must not be empty", ErrInvalidConfig)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("%w: pipeline.workers must be >= 0, got %d", ErrInvalidConfig, c.Pipeline.Workers)
	}
	if _, err := pipeline.ParseSmokeTestMode(c.Pipeline.SmokeTest); err != nil {
		return fmt.Errorf("%w: pipeline.smoke_test: %w", ErrInvalidConfig, err)
	}
	if c.NLP.Model != "" {
		m, err := nlp.ParseModel(c.NLP.Model)
		if err != nil {
			return fmt.Errorf("%w: nlp.model: %w", ErrInvalidConfig, err)
		}
		if m == nlp.ModelVADER && strings.TrimSpace(c.NLP.LexiconFile) != "" {
			return fmt.Errorf("%w: nlp.lexicon_file: %w", ErrInvalidConfig, nlp.ErrModelConflict)
		}
	}
	if c.NLP.ScoreCacheSize < 0 {
		return fmt.Errorf("%w: nlp.score_cache_size must be >= 0, got %d", ErrInvalidConfig, c.NLP.ScoreCacheSize)
	}
	if c.Output.Target != "" {
		if _, err := export.Resolve(c.Output.Target); err != nil {
			return fmt.Errorf("%w: output.target: %w", ErrInvalidConfig, err)
		}
	}
	if c.Logging.Level != "" {
		if err := logging.ValidateLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
		}
	}
	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: logging.format must be console or json, got %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ReaderOptions returns the table reader options for the input section.
func (c *Config) ReaderOptions() table.Options {
	opts := table.Options{Sheet: c.Input.Sheet}
	if len(c.Input.NAValues) > 0 || !c.Input.KeepDefaultNA {
		na := table.NewNASet(c.Input.NAValues, c.Input.KeepDefaultNA)
		opts.NA = &na
	}
	return opts
}

// PipelineOptions returns the driver options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		BatchSize:  c.Input.BatchSize,
		TextColumn: c.Input.TextColumn,
		SmokeTest:  pipeline.SmokeTestMode(c.Pipeline.SmokeTest),
		Samples:    c.Pipeline.Samples,
		Prefetch:   c.Pipeline.Prefetch,
		Workers:    c.Pipeline.Workers,
		Reader:     c.ReaderOptions(),
	}
}

// NLPOptions returns the options for nlp.New.
func (c *Config) NLPOptions() []nlp.Option {
	return []nlp.Option{
		nlp.WithModel(c.NLP.Model),
		nlp.WithLexiconFile(c.NLP.LexiconFile),
		nlp.WithScoreCache(c.NLP.ScoreCacheSize),
	}
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the config to path, creating parent directories. An existing
// file is only replaced when force is set.
func (c *Config) Save(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
