package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyInput    = "input"
	keyPipeline = "pipeline"
	keyNLP      = "nlp"
	keyOutput   = "output"
	keyMetrics  = "metrics"
	keyLogging  = "logging"
)

// knownTopLevelKeys lists the YAML keys that correspond to Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyInput:    true,
	keyPipeline: true,
	keyNLP:      true,
	keyOutput:   true,
	keyMetrics:  true,
	keyLogging:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. A section present in the overlay replaces the whole
// section in the target; fields the overlay section omits take their
// built-in defaults, not the target's previous values. Sections absent in
// the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	// Discover which top-level keys are present in the overlay.
	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so we can unmarshal it onto the
		// strongly-typed target field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection unmarshals raw YAML bytes into the correct field of target
// based on the given key name. Each section is decoded onto a fresh copy of
// the defaults so omitted fields never inherit stale slices from target.
func unmarshalSection(target *Config, key string, data []byte) error {
	defaults := New()
	switch key {
	case keyInput:
		v := defaults.Input
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Input = v
	case keyPipeline:
		v := defaults.Pipeline
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Pipeline = v
	case keyNLP:
		v := defaults.NLP
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.NLP = v
	case keyOutput:
		v := defaults.Output
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Output = v
	case keyMetrics:
		v := defaults.Metrics
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Metrics = v
	case keyLogging:
		v := defaults.Logging
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Logging = v
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
