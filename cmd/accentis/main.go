// Command accentis evaluates pronunciation accuracy: it compares the phonemes
// a speaker actually produced against the canonical pronunciation of the
// expected text and reports a per-phoneme match breakdown with an overall
// score.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/accentis/accentis/internal/cmudict"
	"github.com/accentis/accentis/internal/config"
	"github.com/accentis/accentis/internal/eval"
	"github.com/accentis/accentis/internal/observe"
	"github.com/accentis/accentis/internal/phoneme"
	"github.com/accentis/accentis/internal/resultstore"
	"github.com/accentis/accentis/internal/score"
	"github.com/accentis/accentis/internal/textgrid"
	"github.com/accentis/accentis/pkg/provider/asr"
	asrmock "github.com/accentis/accentis/pkg/provider/asr/mock"
	"github.com/accentis/accentis/pkg/provider/asr/whisper"
	"github.com/accentis/accentis/pkg/provider/forcedalign"
	"github.com/accentis/accentis/pkg/provider/forcedalign/mfa"
	alignermock "github.com/accentis/accentis/pkg/provider/forcedalign/mock"
)

const defaultTier = "phones"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	audioPath := flag.String("audio", "", "WAV recording of the utterance (triggers the forced-alignment pipeline)")
	gridPath := flag.String("textgrid", "", "pre-aligned TextGrid file (skips audio processing)")
	transcript := flag.String("transcript", "", "expected text of the utterance")
	tier := flag.String("tier", "", "TextGrid tier holding the phone intervals (overrides config)")
	speaker := flag.String("speaker", "", "speaker identifier stored with the result")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "accentis: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "accentis: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("accentis starting",
		"config", *configPath,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Metrics ───────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "accentis",
	})
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shCtx); err != nil {
			slog.Warn("metrics shutdown error", "err", err)
		}
	}()

	if addr := cfg.Server.MetricsAddr; addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				slog.Warn("metrics endpoint error", "err", err)
			}
		}()
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	// ── Dictionary ────────────────────────────────────────────────────────────
	var dict *cmudict.Dict
	if path := cfg.Evaluation.DictionaryPath; path != "" {
		dict, err = cmudict.Load(path)
		if err != nil {
			slog.Error("failed to load pronunciation dictionary", "path", path, "err", err)
			return 1
		}
		slog.Info("dictionary loaded", "path", path, "entries", dict.Len())
	}

	// ── Evaluator ─────────────────────────────────────────────────────────────
	evaluator, err := buildEvaluator(cfg, dict)
	if err != nil {
		slog.Error("failed to build evaluator", "err", err)
		return 1
	}

	// ── Observed phonemes ─────────────────────────────────────────────────────
	tierName := *tier
	if tierName == "" {
		tierName = cfg.Evaluation.Tier
	}
	if tierName == "" {
		tierName = defaultTier
	}

	observed, referenceText, err := resolveObserved(ctx, cfg, reg, *audioPath, *gridPath, *transcript, tierName)
	if err != nil {
		slog.Error("failed to obtain observed phonemes", "err", err)
		return 1
	}

	// ── Evaluate ──────────────────────────────────────────────────────────────
	result, err := evaluator.Evaluate(ctx, eval.Request{
		Observed:   observed,
		Transcript: referenceText,
	})
	if err != nil {
		slog.Error("evaluation failed", "err", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("failed to encode result", "err", err)
		return 1
	}

	// ── Persist ───────────────────────────────────────────────────────────────
	if err := persistResult(ctx, cfg, resultstore.Result{
		Speaker:    *speaker,
		Transcript: referenceText,
		Evaluation: result,
	}); err != nil {
		slog.Error("failed to persist result", "err", err)
		return 1
	}

	return 0
}

// ── Pipeline ──────────────────────────────────────────────────────────────────

// resolveObserved produces the raw observed phoneme labels either from a
// pre-aligned TextGrid or by running the audio through the forced-alignment
// pipeline. The returned transcript equals the input unless ASR supplied one.
func resolveObserved(ctx context.Context, cfg *config.Config, reg *config.Registry, audioPath, gridPath, transcript, tierName string) (phoneme.Sequence, string, error) {
	switch {
	case gridPath != "":
		seq, err := extractFromGrid(cfg, gridPath, tierName)
		return seq, transcript, err

	case audioPath != "":
		path, transcript, err := alignAudio(ctx, cfg, reg, audioPath, transcript)
		if err != nil {
			return nil, "", err
		}
		seq, err := extractFromGrid(cfg, path, tierName)
		return seq, transcript, err

	default:
		return nil, "", errors.New("either -audio or -textgrid is required")
	}
}

// extractFromGrid parses the TextGrid and pulls the phone labels from the
// configured tier.
func extractFromGrid(cfg *config.Config, path, tierName string) (phoneme.Sequence, error) {
	tg, err := textgrid.ParseFile(path)
	if err != nil {
		return nil, err
	}
	var opts []textgrid.ExtractOption
	if cfg.Evaluation.SilenceLabels != nil {
		opts = append(opts, textgrid.WithSilenceLabels(cfg.Evaluation.SilenceLabels))
	}
	seq, err := textgrid.ExtractPhonemes(tg, tierName, opts...)
	if err != nil {
		return nil, err
	}
	slog.Debug("phonemes extracted", "textgrid", path, "tier", tierName, "count", len(seq))
	return seq, nil
}

// alignAudio runs the full audio pipeline: transcribe when no transcript was
// given, stage a corpus directory, run the forced aligner, and return the
// produced TextGrid path together with the transcript that was aligned.
func alignAudio(ctx context.Context, cfg *config.Config, reg *config.Registry, audioPath, transcript string) (string, string, error) {
	metrics := observe.DefaultMetrics()

	if transcript == "" {
		if cfg.Providers.ASR.Name == "" {
			return "", "", errors.New("no transcript given and no ASR provider configured")
		}
		provider, err := reg.CreateASR(cfg.Providers.ASR)
		if err != nil {
			return "", "", fmt.Errorf("create asr provider %q: %w", cfg.Providers.ASR.Name, err)
		}
		req, err := asr.ReadWAVFile(audioPath)
		if err != nil {
			return "", "", err
		}
		start := time.Now()
		tr, err := provider.Transcribe(ctx, req)
		metrics.ASRDuration.Record(ctx, time.Since(start).Seconds())
		if err != nil {
			metrics.RecordProviderError(ctx, cfg.Providers.ASR.Name, "transcribe")
			return "", "", fmt.Errorf("transcribe %q: %w", audioPath, err)
		}
		transcript = tr.Text
		slog.Info("audio transcribed", "text", transcript, "duration", tr.Duration)
	}

	if cfg.Providers.Aligner.Name == "" {
		return "", "", errors.New("providers.aligner is not configured")
	}
	aligner, err := reg.CreateAligner(cfg.Providers.Aligner)
	if err != nil {
		return "", "", fmt.Errorf("create aligner %q: %w", cfg.Providers.Aligner.Name, err)
	}

	corpusDir, err := stageCorpus(audioPath, transcript)
	if err != nil {
		return "", "", err
	}
	outputDir, err := os.MkdirTemp("", "accentis-aligned-")
	if err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	job := forcedalign.Job{
		CorpusDir:      corpusDir,
		DictionaryPath: cfg.Evaluation.DictionaryPath,
		AcousticModel:  cfg.Providers.Aligner.Model,
		OutputDir:      outputDir,
	}

	start := time.Now()
	path, err := aligner.Align(ctx, job)
	metrics.ForcedAlignDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(ctx, cfg.Providers.Aligner.Name, "align")
		return "", "", fmt.Errorf("forced alignment: %w", err)
	}
	return path, transcript, nil
}

// stageCorpus copies the audio into a fresh corpus directory next to a .lab
// transcript file with the same basename, the layout MFA expects.
func stageCorpus(audioPath, transcript string) (string, error) {
	dir, err := os.MkdirTemp("", "accentis-corpus-")
	if err != nil {
		return "", fmt.Errorf("create corpus dir: %w", err)
	}

	base := filepath.Base(audioPath)
	stem := base[:len(base)-len(filepath.Ext(base))]

	src, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio %q: %w", audioPath, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, base))
	if err != nil {
		return "", fmt.Errorf("stage audio: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}

	labPath := filepath.Join(dir, stem+".lab")
	if err := os.WriteFile(labPath, []byte(transcript), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return dir, nil
}

// persistResult saves the result to whichever store the config selects.
// With no store configured this is a no-op; the JSON already went to stdout.
func persistResult(ctx context.Context, cfg *config.Config, r resultstore.Result) error {
	switch {
	case cfg.Results.FilePath != "":
		return resultstore.NewFileStore(cfg.Results.FilePath).Save(ctx, r)

	case cfg.Results.PostgresDSN != "":
		store, err := resultstore.NewPostgresStore(ctx, cfg.Results.PostgresDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, r)

	default:
		return nil
	}
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── ASR ───────────────────────────────────────────────────────────────────

	reg.RegisterASR("whisper", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if entry.Language != "" {
			opts = append(opts, whisper.WithLanguage(entry.Language))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterASR("whisper-native", func(entry config.ProviderEntry) (asr.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = optString(entry.Options, "model_path")
		}
		var opts []whisper.NativeOption
		if entry.Language != "" {
			opts = append(opts, whisper.WithNativeLanguage(entry.Language))
		}
		return whisper.NewNative(modelPath, opts...)
	})

	// mock returns a fixed transcript; handy for wiring checks without a
	// model download.
	reg.RegisterASR("mock", func(entry config.ProviderEntry) (asr.Provider, error) {
		return asrmock.New(optString(entry.Options, "text")), nil
	})

	// ── Forced alignment ──────────────────────────────────────────────────────

	reg.RegisterAligner("mfa", func(entry config.ProviderEntry) (forcedalign.Aligner, error) {
		var opts []mfa.Option
		if bin := optString(entry.Options, "binary"); bin != "" {
			opts = append(opts, mfa.WithBinary(bin))
		}
		return mfa.New(opts...)
	})

	// mock returns a fixed TextGrid path from options.
	reg.RegisterAligner("mock", func(entry config.ProviderEntry) (forcedalign.Aligner, error) {
		return alignermock.New(optString(entry.Options, "textgrid")), nil
	})
}

// buildEvaluator assembles the evaluator from the evaluation config section.
func buildEvaluator(cfg *config.Config, dict *cmudict.Dict) (*eval.Evaluator, error) {
	var modelOpts []phoneme.ModelOption
	if cs := cfg.Evaluation.ClassScore; cs > 0 {
		modelOpts = append(modelOpts, phoneme.WithClassScore(cs))
	}
	if cfg.Evaluation.UNKNeverMatches {
		modelOpts = append(modelOpts, phoneme.WithUNKMismatch(true))
	}
	model := phoneme.NewModel(modelOpts...)

	strategy, err := score.ByName(string(cfg.Evaluation.Strategy), model)
	if err != nil {
		return nil, err
	}

	opts := []eval.Option{
		eval.WithModel(model),
		eval.WithStrategy(strategy),
	}
	if dict != nil {
		opts = append(opts, eval.WithDict(dict))
	}
	if cfg.Evaluation.Scale != "" {
		opts = append(opts, eval.WithScale(cfg.Evaluation.Scale))
	}
	if cfg.Evaluation.BatchConcurrency > 0 {
		opts = append(opts, eval.WithBatchConcurrency(cfg.Evaluation.BatchConcurrency))
	}
	return eval.New(opts...), nil
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
