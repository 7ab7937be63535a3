package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML schema for --config. Only engine locations and a
// few policies live here; everything else is flag-driven. Empty fields leave
// the current Config value untouched.
type fileConfig struct {
	WhisperBin      string `yaml:"whisper_bin"`
	TranslateBin    string `yaml:"translate_bin"`
	ArgosPackages   string `yaml:"argos_packages"`
	PiperBin        string `yaml:"piper_bin"`
	PiperVoice      string `yaml:"piper_voice"`
	PiperSampleRate int    `yaml:"piper_sample_rate"`
	FFmpegBin       string `yaml:"ffmpeg_bin"`
	OutPrefix       string `yaml:"out_prefix"`
	KeepText        *bool  `yaml:"keep_text"`
}

// LoadFile overlays cfg with values from a YAML file. Tilde (~) in path
// fields is expanded to the user's home directory.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	setIfPresent(&cfg.WhisperBin, fc.WhisperBin)
	setIfPresent(&cfg.TranslateBin, fc.TranslateBin)
	setIfPresent(&cfg.ArgosPackages, expandTilde(fc.ArgosPackages))
	setIfPresent(&cfg.PiperBin, fc.PiperBin)
	setIfPresent(&cfg.PiperVoice, expandTilde(fc.PiperVoice))
	setIfPresent(&cfg.FFmpegBin, fc.FFmpegBin)
	setIfPresent(&cfg.OutPrefix, fc.OutPrefix)
	if fc.PiperSampleRate > 0 {
		cfg.PiperSampleRate = fc.PiperSampleRate
	}
	if fc.KeepText != nil {
		cfg.KeepText = *fc.KeepText
	}
	return nil
}

// setIfPresent assigns v to dst only when v is non-empty.
func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
