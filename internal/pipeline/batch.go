// Package pipeline orchestrates the per-file state machine and the batch
// loop that drives it: transcribe → translate via English → synthesize →
// re-encode → cleanup, with one file processed start-to-finish before the
// next begins.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/altavoz/altavoz/internal/config"
	"github.com/altavoz/altavoz/internal/display"
	"github.com/altavoz/altavoz/internal/encode"
	"github.com/altavoz/altavoz/internal/inputs"
	"github.com/altavoz/altavoz/internal/logging"
)

// Engine handles are consumed through interfaces so the batch can be driven
// with fakes in tests. All handles are constructed once by the caller and
// shared read-only across every file.

// Recognizer transcribes one media file into ordered text segments.
type Recognizer interface {
	Transcribe(ctx context.Context, path string) ([]string, error)
}

// Translator translates text across one installed language pair. The
// pipeline composes exactly two hops; no direct src→tgt call exists.
type Translator interface {
	Hop(ctx context.Context, text, from, to string) (string, error)
}

// Synthesizer renders text as speech into a canonical waveform file.
type Synthesizer interface {
	SynthesizeToFile(ctx context.Context, text, outPath string) error
}

// Transcoder converts the canonical waveform into the requested format,
// falling back to the waveform when conversion fails.
type Transcoder interface {
	Transcode(ctx context.Context, wavPath string, format config.AudioFormat) encode.Result
}

// Batch drives the File Pipeline over a resolved input list.
type Batch struct {
	cfg         *config.Config
	log         *logging.Logger
	recognizer  Recognizer
	translator  Translator
	synthesizer Synthesizer // nil when synthesis is disabled or unavailable
	transcoder  Transcoder
}

// New assembles a batch around already-initialized engine handles.
// synthesizer may be nil: the batch then produces text outputs only.
func New(
	cfg *config.Config,
	log *logging.Logger,
	recognizer Recognizer,
	translator Translator,
	synthesizer Synthesizer,
	transcoder Transcoder,
) *Batch {
	return &Batch{
		cfg:         cfg,
		log:         log,
		recognizer:  recognizer,
		translator:  translator,
		synthesizer: synthesizer,
		transcoder:  transcoder,
	}
}

// Run processes every file sequentially and returns aggregate stats.
// A per-file failure is logged and the loop continues; only context
// cancellation stops the batch early, between files.
func (b *Batch) Run(ctx context.Context, files []inputs.MediaFile) RunStats {
	var stats RunStats
	stats.Total = len(files)

	b.logBatchHeader(&stats)
	start := time.Now()

	// Cancellation is honored only between files: once a file starts it runs
	// to a terminal state, so engine invocations get an uncancellable
	// derivative of ctx and would otherwise be killed mid-process.
	fileCtx := context.WithoutCancel(ctx)

	for i, f := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			b.log.Warn("Interrupted")
			break
		}

		b.log.Info("[%d/%d] %s", stats.Current, stats.Total, filepath.Base(f.Path))

		if b.cfg.DryRun {
			b.log.Success("[DRY] Would write %s", b.plannedOutput(f))
			stats.record(OutcomeCompleted)
			fmt.Println()
			continue
		}

		outcome := b.processFile(fileCtx, f)
		stats.record(outcome)
		b.log.Info("Outcome: %s", outcome)
		fmt.Println()
	}

	b.logSummary(&stats, time.Since(start))
	return stats
}

// plannedOutput names the deliverable a dry run would produce for f. Dry
// runs construct no engines, so the plan follows configuration alone.
func (b *Batch) plannedOutput(f inputs.MediaFile) string {
	if !b.cfg.Synthesize {
		return b.textPath(f.Stem, b.cfg.TargetLang) + " (transient text only)"
	}
	return filepath.Join(b.cfg.OutPrefix, f.Stem+"."+b.cfg.TargetLang+"."+string(b.cfg.AudioFormat))
}

// --- Logging helpers ---

func (b *Batch) logBatchHeader(stats *RunStats) {
	b.log.Info("Found %d files", stats.Total)
	b.log.Info("Languages: %s → en → %s (pivot)", b.cfg.SourceLang, b.cfg.TargetLang)
	b.log.Info("Recognition: %s model on %s (%s), beam %d",
		b.cfg.ModelSize, b.cfg.Device, b.cfg.ComputeType, b.cfg.BeamSize)

	if b.synthesizer != nil || (b.cfg.DryRun && b.cfg.Synthesize) {
		b.log.Info("Synthesis: on, %s output", strings.ToUpper(string(b.cfg.AudioFormat)))
	} else {
		b.log.Info("Synthesis: off (text outputs only)")
	}
	b.log.Info("Output prefix: %s", b.cfg.OutPrefix)
	if b.cfg.KeepText {
		b.log.Info("Text artifacts: retained")
	}
	fmt.Println()
}

func (b *Batch) logSummary(stats *RunStats, elapsed time.Duration) {
	b.log.Info("==============================")
	b.log.Info("Done in %s: %d completed, %d skipped, %d degraded, %d failed",
		display.FormatDuration(elapsed),
		stats.Completed, stats.NoSpeech+stats.EmptyTranslation,
		stats.SynthesisFailed, stats.Failed)
	if stats.NoSpeech > 0 {
		b.log.Info("  No speech detected: %d", stats.NoSpeech)
	}
	if stats.EmptyTranslation > 0 {
		b.log.Info("  Empty translations: %d", stats.EmptyTranslation)
	}
	if stats.SynthesisFailed > 0 {
		b.log.Warn("  Synthesis failures (text kept): %d", stats.SynthesisFailed)
	}
	if stats.Failed > 0 {
		b.log.Warn("  Failed files: %d", stats.Failed)
	}
}

// logStderrTail logs the last lines of a failed external command's stderr.
func logStderrTail(log *logging.Logger, stderr string) {
	if stderr == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 10 {
		start = len(lines) - 10
	}
	for _, l := range lines[start:] {
		log.Warn("  %s", l)
	}
}
