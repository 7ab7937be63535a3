package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/altavoz/altavoz/internal/config"
)

// Recognizer transcribes one media file at a time through the
// whisper-ctranslate2 CLI (faster-whisper). The model is selected by size
// class; decoding runs with voice-activity filtering so silence-only inputs
// come back with zero segments.
type Recognizer struct {
	bin             string
	modelSize       string
	device          string
	computeType     string
	language        string
	beamSize        int
	vadFilter       bool
	vadMinSilenceMs int

	runner    commandRunner
	mkdirTemp func(dir, pattern string) (string, error)
	readFile  func(name string) ([]byte, error)
	removeAll func(path string) error
}

// NewRecognizer constructs the production recognizer and verifies the CLI
// binary is invocable. Called once per batch.
func NewRecognizer(cfg *config.Config) (*Recognizer, error) {
	if err := lookupBinary(cfg.WhisperBin); err != nil {
		return nil, fmt.Errorf("recognition engine unavailable: %w", err)
	}
	return &Recognizer{
		bin:             cfg.WhisperBin,
		modelSize:       cfg.ModelSize,
		device:          string(cfg.Device),
		computeType:     cfg.ComputeType,
		language:        cfg.SourceLang,
		beamSize:        cfg.BeamSize,
		vadFilter:       cfg.VADFilter,
		vadMinSilenceMs: cfg.VADMinSilenceMs,
		runner:          &execRunner{},
		mkdirTemp:       os.MkdirTemp,
		readFile:        os.ReadFile,
		removeAll:       os.RemoveAll,
	}, nil
}

// transcriptDoc mirrors the JSON document the CLI writes per input file.
type transcriptDoc struct {
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

// Transcribe runs recognition on path and returns the raw segment texts in
// order. The CLI writes its JSON transcript into a per-call temp dir, which
// is removed before returning.
func (r *Recognizer) Transcribe(ctx context.Context, path string) ([]string, error) {
	tempDir, err := r.mkdirTemp("", "altavoz-asr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription workspace: %w", err)
	}
	defer func() { _ = r.removeAll(tempDir) }()

	args := r.buildArgs(path, tempDir)
	if _, err := r.runner.Run(ctx, nil, r.bin, args...); err != nil {
		return nil, fmt.Errorf("recognition failed for %s: %w", filepath.Base(path), err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := r.readFile(filepath.Join(tempDir, stem+".json"))
	if err != nil {
		return nil, fmt.Errorf("recognition completed but transcript is missing: %w", err)
	}

	var doc transcriptDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed transcript for %s: %w", filepath.Base(path), err)
	}

	segments := make([]string, 0, len(doc.Segments))
	for _, seg := range doc.Segments {
		segments = append(segments, seg.Text)
	}
	return segments, nil
}

// buildArgs assembles the CLI invocation for one file.
func (r *Recognizer) buildArgs(inputPath, outputDir string) []string {
	args := []string{
		"--model", r.modelSize,
		"--device", r.device,
		"--compute_type", r.computeType,
		"--language", r.language,
		"--task", "transcribe",
		"--beam_size", strconv.Itoa(r.beamSize),
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if r.vadFilter {
		args = append(args,
			"--vad_filter", "True",
			"--vad_min_silence_duration_ms", strconv.Itoa(r.vadMinSilenceMs),
		)
	}
	return append(args, inputPath)
}
