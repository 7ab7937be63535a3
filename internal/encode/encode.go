// Package encode converts the canonical synthesized waveform into the
// requested delivery format via ffmpeg. A failed conversion degrades to the
// canonical WAV instead of dropping the file's audio output.
package encode

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/altavoz/altavoz/internal/config"
)

// runner abstracts ffmpeg execution for testability.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (stderr string, err error)
}

// execRunner runs ffmpeg via os/exec, capturing stderr for diagnostics.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stderrBuf.String(), err
}

// Transcoder re-encodes canonical waveforms. One instance serves the whole
// batch.
type Transcoder struct {
	ffmpegPath string
	runner     runner
	remove     func(name string) error
}

// NewTranscoder constructs the production transcoder.
func NewTranscoder(cfg *config.Config) *Transcoder {
	return &Transcoder{
		ffmpegPath: cfg.FFmpegBin,
		runner:     execRunner{},
		remove:     os.Remove,
	}
}

// Result reports where the final deliverable ended up.
type Result struct {
	FinalPath string // The file that survives: target format, or the WAV on fallback.
	FellBack  bool   // True when conversion failed and the WAV was kept.
	Stderr    string // ffmpeg stderr of the failed attempt, for logging.
}

// Transcode converts wavPath into format, writing <base>.<format> next to it.
// For the canonical format ("wav") no process is invoked and the waveform is
// already the deliverable. On conversion failure the canonical waveform is
// kept as the final output; on success it is deleted.
func (t *Transcoder) Transcode(ctx context.Context, wavPath string, format config.AudioFormat) Result {
	if format == config.FormatWAV {
		return Result{FinalPath: wavPath}
	}

	finalPath := strings.TrimSuffix(wavPath, ".wav") + "." + string(format)
	args := BuildArgs(wavPath, finalPath, format)

	stderr, err := t.runner.Run(ctx, t.ffmpegPath, args...)
	if err != nil {
		// A partial output file may exist; it is not the deliverable.
		_ = t.remove(finalPath)
		return Result{FinalPath: wavPath, FellBack: true, Stderr: stderr}
	}

	_ = t.remove(wavPath)
	return Result{FinalPath: finalPath}
}

// BuildArgs returns the ffmpeg argument list for one conversion. Recipes are
// fixed per format; arguments are passed as a structured list, never a
// composed shell string.
func BuildArgs(inPath, outPath string, format config.AudioFormat) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inPath,
		"-vn",
	}
	switch format {
	case config.FormatMP3:
		args = append(args, "-ar", "44100", "-b:a", "160k")
	case config.FormatOGG:
		args = append(args, "-ac", "1", "-ar", "22050", "-c:a", "libvorbis", "-qscale:a", "5")
	case config.FormatOpus:
		args = append(args, "-c:a", "libopus", "-b:a", "96k")
	case config.FormatM4A:
		args = append(args, "-c:a", "aac", "-b:a", "160k")
	}
	return append(args, outPath)
}
