package engine

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/altavoz/altavoz/internal/config"
)

// Synthesizer produces speech through the Piper CLI. Piper is asked for raw
// s16le mono PCM on stdout, which is wrapped into the canonical WAV here;
// re-encoding to other formats is the post-processor's job.
type Synthesizer struct {
	bin        string
	voice      string
	sampleRate int
	runner     commandRunner
}

// NewSynthesizer verifies the Piper binary and the configured voice model.
// Construction failure degrades the batch to text-only output; it is never
// fatal. Called once per batch.
func NewSynthesizer(cfg *config.Config) (*Synthesizer, error) {
	if err := lookupBinary(cfg.PiperBin); err != nil {
		return nil, fmt.Errorf("synthesis engine unavailable: %w", err)
	}
	if _, err := os.Stat(cfg.PiperVoice); err != nil {
		return nil, fmt.Errorf("synthesis voice model unavailable: %w", err)
	}
	return &Synthesizer{
		bin:        cfg.PiperBin,
		voice:      cfg.PiperVoice,
		sampleRate: cfg.PiperSampleRate,
		runner:     &execRunner{},
	}, nil
}

// SynthesizeToFile renders text as speech into a canonical WAV at outPath,
// creating parent directories as needed.
func (s *Synthesizer) SynthesizeToFile(ctx context.Context, text, outPath string) error {
	result, err := s.runner.Run(ctx, strings.NewReader(text), s.bin,
		"--model", s.voice,
		"--output-raw",
	)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	if len(result.Stdout) < 2 {
		return fmt.Errorf("synthesis produced no audio")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	return writeWAV(outPath, result.Stdout, s.sampleRate)
}

// writeWAV wraps raw s16le mono PCM into a WAV container.
func writeWAV(path string, pcm []byte, sampleRate int) error {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create waveform file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("cannot write waveform: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("cannot finalize waveform: %w", err)
	}
	return f.Close()
}
