package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"asr":     {"whisper", "whisper-native", "mock"},
	"aligner": {"mfa", "mock"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Evaluation
	if cfg.Evaluation.Strategy != "" && !cfg.Evaluation.Strategy.IsValid() {
		errs = append(errs, fmt.Errorf("evaluation.strategy %q is invalid; valid values: gap_aware, positional, edit_distance", cfg.Evaluation.Strategy))
	}
	if cfg.Evaluation.Scale != "" && !cfg.Evaluation.Scale.IsValid() {
		errs = append(errs, fmt.Errorf("evaluation.scale %q is invalid; valid values: fraction, percent", cfg.Evaluation.Scale))
	}
	if cs := cfg.Evaluation.ClassScore; cs < 0 || cs > 1 {
		errs = append(errs, fmt.Errorf("evaluation.class_score %.2f is out of range (0, 1]", cs))
	}
	if cfg.Evaluation.BatchConcurrency < 0 {
		errs = append(errs, fmt.Errorf("evaluation.batch_concurrency %d must not be negative", cfg.Evaluation.BatchConcurrency))
	}

	// Provider name validation, warn for unknown provider names.
	validateProviderName("asr", cfg.Providers.ASR.Name)
	validateProviderName("aligner", cfg.Providers.Aligner.Name)

	// Provider availability warnings
	if cfg.Providers.ASR.Name == "" && cfg.Providers.Aligner.Name == "" {
		slog.Warn("no ASR or aligner provider configured; only pre-extracted TextGrid input will work")
	}
	if cfg.Providers.ASR.Name != "" && cfg.Evaluation.DictionaryPath == "" {
		slog.Warn("providers.asr is configured but evaluation.dictionary_path is empty; transcripts cannot be decomposed into phonemes")
	}

	// Results
	if cfg.Results.FilePath != "" && cfg.Results.PostgresDSN != "" {
		errs = append(errs, errors.New("results.file_path and results.postgres_dsn are mutually exclusive"))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
