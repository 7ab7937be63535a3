// Command altavoz is the CLI entrypoint for the speech translation batch.
//
// It parses flags, validates configuration, and either runs system
// diagnostics (--check) or the transcribe → translate → synthesize pipeline
// over one file or a directory of files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/altavoz/altavoz/internal/check"
	"github.com/altavoz/altavoz/internal/config"
	"github.com/altavoz/altavoz/internal/display"
	"github.com/altavoz/altavoz/internal/encode"
	"github.com/altavoz/altavoz/internal/engine"
	"github.com/altavoz/altavoz/internal/inputs"
	"github.com/altavoz/altavoz/internal/logging"
	"github.com/altavoz/altavoz/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" (no make), these retain their defaults.
var (
	version = "1.2.0"
	commit  = "unknown"
)

// Exit codes: 0 success-or-partial, 1 usage/config errors, 2 fatal
// input/provisioning errors raised before any file is processed.
const exitFatal = 2

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. A .env next to the binary can relocate
	// engine binaries in container images.
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "altavoz: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "altavoz: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "altavoz: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available — all output goes through log from here on.
	display.PrintBanner()

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	log.Info("=== Altavoz v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.Input)
	log.Info("Out: %s", cfg.OutPrefix)
	if cfg.DryRun {
		log.Warn("DRY RUN — no engines will run")
	}
	log.Info("")

	// Phase 3: Resolve inputs and provision engines, all fatal before the
	// first file. Engines are constructed exactly once and shared
	// read-only across the whole batch.
	files, err := inputs.Resolve(cfg.Input)
	if err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	// A dry run previews the batch plan from configuration alone: no engine
	// is provisioned, so it works on machines with nothing installed.
	if cfg.DryRun {
		batch := pipeline.New(&cfg, log, nil, nil, nil, nil)
		batch.Run(context.Background(), files)
		return 0
	}

	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	log.Info("Preparing translators %s → en → %s…", cfg.SourceLang, cfg.TargetLang)
	translator, err := engine.NewTranslator(&cfg)
	if err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	log.Info("Loading recognition model (%s, device=%s, compute_type=%s)…",
		cfg.ModelSize, cfg.Device, cfg.ComputeType)
	recognizer, err := engine.NewRecognizer(&cfg)
	if err != nil {
		log.Error("%v", err)
		return exitFatal
	}

	// Synthesis init failure degrades the batch to text-only output.
	var synthesizer pipeline.Synthesizer
	if cfg.Synthesize {
		syn, err := engine.NewSynthesizer(&cfg)
		if err != nil {
			log.Warn("Synthesis init failed (continuing without speech output): %v", err)
		} else {
			synthesizer = syn
		}
	}

	// Phase 4: Signal handling — cancel context on SIGINT/SIGTERM so the
	// batch stops between files; the in-progress file runs to its terminal
	// state first.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, finishing current file…")
		cancel()
	}()

	// Phase 5: Run the batch. Per-file failures are isolated inside Run;
	// skips and degradations never change the exit code.
	batch := pipeline.New(&cfg, log, recognizer, translator, synthesizer, encode.NewTranscoder(&cfg))
	batch.Run(ctx, files)

	return 0
}
