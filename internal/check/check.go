// Package check provides system diagnostics (--check mode) and pre-batch
// dependency validation for ffmpeg and the three engine CLIs.
package check

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/altavoz/altavoz/internal/config"
	"github.com/altavoz/altavoz/internal/engine"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrWhisperNotFound = errors.New("whisper CLI not found on PATH")
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of the
// recognition, translation, and synthesis CLIs, the configured Piper voice,
// installed Argos packs, and ffmpeg. Informational only — it does not stop
// on failure. Returns false when any required component is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkBinary(log, "whisper", cfg.WhisperBin, true)
	ok = checkBinary(log, "argos-translate", cfg.TranslateBin, true) && ok
	ok = checkArgosPacks(cfg, log) && ok
	checkBinary(log, "piper", cfg.PiperBin, false)
	checkPiperVoice(cfg, log)
	ok = checkFfmpeg(cfg, log) && ok

	return ok
}

// checkBinary verifies a CLI is invocable. required=false downgrades a miss
// to a warning (synthesis degrades rather than aborts).
func checkBinary(log Logger, label, bin string, required bool) bool {
	if _, err := exec.LookPath(bin); err != nil {
		if required {
			log.Error("%s not found (%s)", label, bin)
			return false
		}
		log.Warn("%s not found (%s); batch would run text-only", label, bin)
		return true
	}
	log.Success("%s: %s", label, bin)
	return true
}

// checkArgosPacks lists the installed translation packs and verifies the
// pivot pairs for the configured languages.
func checkArgosPacks(cfg *config.Config, log Logger) bool {
	entries, err := os.ReadDir(cfg.ArgosPackages)
	if err != nil {
		log.Error("Cannot read Argos packages directory: %s", cfg.ArgosPackages)
		return false
	}

	installed := make([]string, 0, len(entries))
	for _, e := range entries {
		installed = append(installed, e.Name())
	}
	log.Info("Argos packs in %s:", cfg.ArgosPackages)
	for _, name := range installed {
		log.Info("  %s", name)
	}

	ok := true
	for _, pair := range []string{cfg.SourceLang + "_en", "en_" + cfg.TargetLang} {
		found := false
		for _, name := range installed {
			if engine.HasPackToken(name, pair) {
				found = true
				break
			}
		}
		if found {
			log.Success("pack %s installed", pair)
		} else {
			log.Error("pack %s missing", pair)
			ok = false
		}
	}
	return ok
}

// checkPiperVoice verifies the configured voice model file exists.
func checkPiperVoice(cfg *config.Config, log Logger) {
	if _, err := os.Stat(cfg.PiperVoice); err != nil {
		log.Warn("Piper voice model missing: %s", cfg.PiperVoice)
		return
	}
	log.Success("Piper voice: %s", cfg.PiperVoice)
}

// checkFfmpeg verifies ffmpeg is invocable and logs its version string.
func checkFfmpeg(cfg *config.Config, log Logger) bool {
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		log.Error("ffmpeg not found (%s)", cfg.FFmpegBin)
		return false
	}
	cmd := exec.Command(cfg.FFmpegBin, "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return true
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s", firstLine)
	return true
}

// CheckDeps is the pre-batch validation: the recognizer CLI must exist, and
// ffmpeg must exist when a non-canonical output format will need it.
// Translator and synthesizer availability is decided by their own
// constructors. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.WhisperBin); err != nil {
		return ErrWhisperNotFound
	}
	if cfg.Synthesize && cfg.AudioFormat != config.FormatWAV {
		if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
			return ErrFfmpegNotFound
		}
	}
	return nil
}
