// Package config holds runtime configuration: defaults, optional YAML
// overlay, CLI flag parsing, and validation. All defaults match the legacy
// pipeline.py script for parity.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Device selects the inference device for speech recognition.
type Device string

const (
	DeviceCPU  Device = "cpu"  // CPU inference (default).
	DeviceCUDA Device = "cuda" // NVIDIA GPU inference.
)

// AudioFormat is the final synthesized-audio encoding.
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"  // Canonical uncompressed waveform (default).
	FormatMP3  AudioFormat = "mp3"  // MP3 at 160 kbps, 44.1 kHz.
	FormatOGG  AudioFormat = "ogg"  // Ogg Vorbis q5, mono, 22.05 kHz.
	FormatOpus AudioFormat = "opus" // Opus at 96 kbps in an Ogg container.
	FormatM4A  AudioFormat = "m4a"  // AAC at 160 kbps.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// recognitionModelSizes are the accepted --model-size values.
var recognitionModelSizes = map[string]bool{
	"tiny":     true,
	"base":     true,
	"small":    true,
	"medium":   true,
	"large-v2": true,
	"large-v3": true,
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Input path (set from the positional arg): one media file or a directory.
	Input string

	// Languages. Translation always pivots through English.
	SourceLang string // Default: "fr".
	TargetLang string // Default: "es".

	// Recognition settings.
	ModelSize   string // Default: "small".
	BeamSize    int    // Default: 5.
	Device      Device // Default: "cpu".
	ComputeType string // Default: "int8". Passed through to the recognizer CLI.

	// Synthesis and output.
	Synthesize  bool        // Default: true. Cleared by --no-tts.
	AudioFormat AudioFormat // Default: "wav".
	OutPrefix   string      // Default: "/data/output/output".
	KeepText    bool        // Retain transcript/translation text files.

	// Engine locations. Defaults come from the environment (see
	// [DefaultConfig]) and may be overridden by the YAML config file.
	WhisperBin      string // Default: "whisper-ctranslate2".
	TranslateBin    string // Default: "argos-translate".
	ArgosPackages   string // Default: ~/.local/share/argos-translate/packages.
	PiperBin        string // Default: "piper".
	PiperVoice      string // Default: "/data/models/es_ES-css10-high.onnx".
	PiperSampleRate int    // Default: 22050 Hz (Piper raw output rate).
	FFmpegBin       string // Default: "ffmpeg".

	// Behavior flags.
	DryRun bool

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.

	// Fixed recognition tuning (not user-configurable). The 500 ms silence
	// gap is the segmentation threshold the legacy script used.
	VADFilter       bool // Fixed: true.
	VADMinSilenceMs int  // Fixed: 500.
}

// DefaultConfig returns a Config with all defaults matching the legacy
// pipeline.py behavior. Engine locations honor ALTAVOZ_* environment
// variables so container images can relocate binaries without flags.
func DefaultConfig() Config {
	return Config{
		SourceLang:      "fr",
		TargetLang:      "es",
		ModelSize:       "small",
		BeamSize:        5,
		Device:          DeviceCPU,
		ComputeType:     "int8",
		Synthesize:      true,
		AudioFormat:     FormatWAV,
		OutPrefix:       "/data/output/output",
		KeepText:        false,
		WhisperBin:      envOr("ALTAVOZ_WHISPER_BIN", "whisper-ctranslate2"),
		TranslateBin:    envOr("ALTAVOZ_TRANSLATE_BIN", "argos-translate"),
		ArgosPackages:   envOr("ALTAVOZ_ARGOS_PACKAGES", defaultArgosPackagesDir()),
		PiperBin:        envOr("ALTAVOZ_PIPER_BIN", "piper"),
		PiperVoice:      envOr("ALTAVOZ_PIPER_VOICE", "/data/models/es_ES-css10-high.onnx"),
		PiperSampleRate: 22050,
		FFmpegBin:       envOr("ALTAVOZ_FFMPEG_BIN", "ffmpeg"),
		DryRun:          false,
		Verbose:         false,
		ColorMode:       ColorAuto,
		CheckOnly:       false,
		VADFilter:       true,
		VADMinSilenceMs: 500,
	}
}

// envOr returns the environment value for key, or fallback when unset/empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultArgosPackagesDir is where argospm installs language packs.
func defaultArgosPackagesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/root/.local/share/argos-translate/packages"
	}
	return filepath.Join(home, ".local", "share", "argos-translate", "packages")
}

// NormalizePrefixArg strips trailing slashes from the output prefix.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizePrefixArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks that enum fields (device, format, color) hold valid values
// and that language codes and tuning numbers are sane. When not in CheckOnly
// mode, it also requires a non-empty input path.
func (c *Config) Validate() error {
	switch c.Device {
	case DeviceCPU, DeviceCUDA:
		// valid
	default:
		return errors.New("invalid device (use 'cpu' or 'cuda')")
	}

	switch c.AudioFormat {
	case FormatWAV, FormatMP3, FormatOGG, FormatOpus, FormatM4A:
		// valid
	default:
		return errors.New("invalid audio format (use wav, mp3, ogg, opus, or m4a)")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always', or 'never')")
	}

	if !recognitionModelSizes[c.ModelSize] {
		return fmt.Errorf("invalid model size %q (use tiny, base, small, medium, large-v2, or large-v3)", c.ModelSize)
	}
	if c.BeamSize < 1 {
		return fmt.Errorf("beam size must be >= 1 (got %d)", c.BeamSize)
	}

	if err := validateLangCode(c.SourceLang, "source"); err != nil {
		return err
	}
	if err := validateLangCode(c.TargetLang, "target"); err != nil {
		return err
	}
	if c.SourceLang == c.TargetLang {
		return errors.New("source and target language must differ")
	}

	if c.OutPrefix == "" {
		return errors.New("output prefix must not be empty")
	}

	if c.PiperSampleRate <= 0 {
		return fmt.Errorf("piper sample rate must be > 0 (got %d)", c.PiperSampleRate)
	}

	if c.CheckOnly {
		return nil
	}
	if c.Input == "" {
		return errors.New("need exactly one input file or directory")
	}
	return nil
}

// validateLangCode accepts short lowercase ISO-639 style codes ("fr", "pt-br").
func validateLangCode(code, which string) error {
	if code == "" {
		return fmt.Errorf("%s language must not be empty", which)
	}
	if len(code) > 8 {
		return fmt.Errorf("invalid %s language code %q", which, code)
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && r != '-' {
			return fmt.Errorf("invalid %s language code %q", which, code)
		}
	}
	return nil
}
