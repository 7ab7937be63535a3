package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/altavoz/altavoz/internal/display"
	"github.com/altavoz/altavoz/internal/inputs"
)

// processFile runs one media file to a terminal outcome:
// transcribe → persist transcript → translate (two hops) → persist
// translation → synthesize → re-encode → cleanup. Expected skips exit early
// but still pass through cleanup, so at most one transcript and one
// translation text file exist on disk outside the file's active window.
func (b *Batch) processFile(ctx context.Context, f inputs.MediaFile) Outcome {
	base := filepath.Base(f.Path)

	// Intermediate text files created along the way; removed before the
	// pipeline advances unless retention is configured.
	var intermediates []string
	defer func() { b.cleanupTexts(intermediates) }()

	// --- Transcribe ---
	b.log.Stage("Transcribing %s", base)
	segments, err := b.recognizer.Transcribe(ctx, f.Path)
	if err != nil {
		b.log.Error("Transcription failed: %v", err)
		return OutcomeFileError
	}
	srcText := joinSegments(segments)
	if srcText == "" {
		b.log.Info("No speech detected in %s; skipping translation and synthesis", base)
		return OutcomeNoSpeech
	}

	// --- Persist transcript ---
	transcriptPath := b.textPath(f.Stem, b.cfg.SourceLang)
	if err := writeText(transcriptPath, srcText); err != nil {
		b.log.Error("Cannot write transcript: %v", err)
		return OutcomeFileError
	}
	intermediates = append(intermediates, transcriptPath)
	b.log.Debug(b.cfg.Verbose, "Wrote %s", transcriptPath)

	// --- Translate via the English pivot, never directly ---
	b.log.Stage("Translating %s → en → %s", b.cfg.SourceLang, b.cfg.TargetLang)
	pivotText, err := b.translator.Hop(ctx, srcText, b.cfg.SourceLang, "en")
	if err != nil {
		b.log.Error("Translation failed: %v", err)
		return OutcomeFileError
	}
	tgtText, err := b.translator.Hop(ctx, pivotText, "en", b.cfg.TargetLang)
	if err != nil {
		b.log.Error("Translation failed: %v", err)
		return OutcomeFileError
	}
	tgtText = strings.TrimSpace(tgtText)
	if tgtText == "" {
		b.log.Info("Empty translation for %s; skipping synthesis", base)
		return OutcomeEmptyTranslation
	}

	// --- Persist translation ---
	translationPath := b.textPath(f.Stem, b.cfg.TargetLang)
	if err := writeText(translationPath, tgtText); err != nil {
		b.log.Error("Cannot write translation: %v", err)
		return OutcomeFileError
	}
	intermediates = append(intermediates, translationPath)
	b.log.Debug(b.cfg.Verbose, "Wrote %s", translationPath)

	if b.synthesizer == nil {
		return OutcomeCompleted
	}

	// --- Synthesize into the canonical waveform ---
	wavPath := filepath.Join(b.cfg.OutPrefix, f.Stem+"."+b.cfg.TargetLang+".wav")
	b.log.Stage("Synthesizing %s.%s", f.Stem+"."+b.cfg.TargetLang, b.cfg.AudioFormat)
	if err := b.synthesizer.SynthesizeToFile(ctx, tgtText, wavPath); err != nil {
		b.log.Warn("Synthesis failed for %s; no audio produced: %v", base, err)
		return OutcomeSynthesisFailed
	}

	// --- Re-encode (no-op for the canonical format) ---
	res := b.transcoder.Transcode(ctx, wavPath, b.cfg.AudioFormat)
	if res.FellBack {
		b.log.Warn("Re-encode to %s failed; keeping canonical waveform at %s",
			b.cfg.AudioFormat, res.FinalPath)
		logStderrTail(b.log, res.Stderr)
	} else {
		b.log.Success("Wrote %s (%s)", res.FinalPath, fileSize(res.FinalPath))
	}
	return OutcomeCompleted
}

// fileSize returns the human-readable size of path, or "?" when unreadable.
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return display.FormatBytes(info.Size())
}

// textPath derives the per-file text resource path under the output prefix.
func (b *Batch) textPath(stem, lang string) string {
	return filepath.Join(b.cfg.OutPrefix, stem+"."+lang+".txt")
}

// joinSegments concatenates recognition segments with single spaces,
// trimming each. Whitespace-only output collapses to "".
func joinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// writeText persists text (plus trailing newline) creating parent
// directories as needed.
func writeText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text+"\n"), 0o644)
}

// cleanupTexts removes intermediate text files. Removal failure is a
// warning, never an escalation; retention is honored when configured.
func (b *Batch) cleanupTexts(paths []string) {
	if b.cfg.KeepText {
		return
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.log.Warn("Cleanup failed for %s: %v", p, err)
			continue
		}
		b.log.Debug(b.cfg.Verbose, "Removed %s", p)
	}
}
