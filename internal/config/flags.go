package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into language, recognition, synthesis, behavior, display,
// and utility. Negated flags (e.g. --no-tts) are applied after Parse so
// Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, missing input arg).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("altavoz", flag.ContinueOnError)
	fs.Usage = func() { printUsage(version) }

	// Negated/override flags: we capture bools then apply to cfg after Parse,
	// so that defaults from DefaultConfig() hold unless the user passes the flag.
	var negated negatedFlags
	var configPath string

	fs.StringVar(&configPath, "config", "", "YAML config file for engine locations")

	defineLanguageFlags(fs, cfg)
	defineRecognitionFlags(fs, cfg)
	defineSynthesisFlags(fs, cfg, &negated)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if negated.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "altavoz v"+version)
		os.Exit(0)
	}

	// The config file fills engine locations before flag values are applied
	// below; flags always win over the file.
	if configPath != "" {
		if err := LoadFile(cfg, configPath); err != nil {
			return err
		}
	}

	applyNegatedFlags(cfg, &negated)

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noTTS -> Synthesize=false) or trigger
// exit (showHelp, showVersion).
type negatedFlags struct {
	noTTS       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineLanguageFlags registers --src and --tgt.
func defineLanguageFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.SourceLang, "src", cfg.SourceLang, "Source language code")
	fs.StringVar(&cfg.TargetLang, "tgt", cfg.TargetLang, "Target language code")
}

// defineRecognitionFlags registers --model-size, --beam-size, --device, --compute-type.
func defineRecognitionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ModelSize, "model-size", cfg.ModelSize, "Whisper size: tiny|base|small|medium|large-v3")
	fs.IntVar(&cfg.BeamSize, "beam-size", cfg.BeamSize, "Recognition beam width")
	fs.Var(&deviceValue{&cfg.Device}, "device", "Inference device: cpu | cuda")
	fs.StringVar(&cfg.ComputeType, "compute-type", cfg.ComputeType, "Numeric precision: int8, int8_float16, float16, float32")
}

// defineSynthesisFlags registers --no-tts, --audio-format, --out-prefix, --keep-text.
func defineSynthesisFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noTTS, "no-tts", false, "Disable speech synthesis output")
	fs.Var(&audioFormatValue{&cfg.AudioFormat}, "audio-format", "Output audio format: wav|mp3|ogg|opus|m4a")
	fs.StringVar(&cfg.OutPrefix, "out-prefix", cfg.OutPrefix, "Prefix for output files")
	fs.BoolVar(&cfg.KeepText, "keep-text", false, "Retain transcript/translation text files")
}

// defineBehaviorFlags registers --dry-run.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; run no engines")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated flag values into cfg (e.g. noTTS -> Synthesize=false).
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noTTS {
		cfg.Synthesize = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets Input from the single positional arg when not in
// CheckOnly mode, and normalizes the output prefix.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	cfg.OutPrefix = NormalizePrefixArg(cfg.OutPrefix)
	args := fs.Args()
	if cfg.CheckOnly {
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("need exactly one input file or directory")
	}
	cfg.Input = args[0]
	return nil
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "Altavoz v" + version + " — French speech to Spanish text and speech"},
		{"", ""},
		{"  altavoz [OPTIONS] <input-file-or-dir>", ""},
		{"", ""},
		{"Languages", ""},
		{"  --src <code>", "Source language code (default: fr)"},
		{"  --tgt <code>", "Target language code (default: es)"},
		{"", ""},
		{"Recognition", ""},
		{"  --model-size <name>", "Whisper size: tiny|base|small|medium|large-v3 (default: small)"},
		{"  --beam-size <n>", "Recognition beam width (default: 5)"},
		{"  --device <cpu|cuda>", "Inference device (default: cpu)"},
		{"  --compute-type <type>", "int8, int8_float16, float16, float32 (default: int8)"},
		{"", ""},
		{"Synthesis & output", ""},
		{"  --no-tts", "Disable speech synthesis output"},
		{"  --audio-format <fmt>", "wav|mp3|ogg|opus|m4a (default: wav)"},
		{"  --out-prefix <path>", "Prefix for output files (default: /data/output/output)"},
		{"  --keep-text", "Retain transcript/translation text files"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --dry-run", "Preview only; run no engines"},
		{"  --config <path>", "YAML config file for engine locations"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, whisper, piper, argos packs)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so we can use enum types (Device, AudioFormat) with flag.Var.

type deviceValue struct{ p *Device }

func (d *deviceValue) String() string {
	if d.p == nil {
		return ""
	}
	return string(*d.p)
}

func (d *deviceValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "cpu":
		*d.p = DeviceCPU
	case "cuda":
		*d.p = DeviceCUDA
	default:
		return fmt.Errorf("invalid device %q (use 'cpu' or 'cuda')", s)
	}
	return nil
}

type audioFormatValue struct{ p *AudioFormat }

func (a *audioFormatValue) String() string {
	if a.p == nil {
		return ""
	}
	return string(*a.p)
}

func (a *audioFormatValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "wav":
		*a.p = FormatWAV
	case "mp3":
		*a.p = FormatMP3
	case "ogg":
		*a.p = FormatOGG
	case "opus":
		*a.p = FormatOpus
	case "m4a":
		*a.p = FormatM4A
	default:
		return fmt.Errorf("invalid audio format %q (use wav, mp3, ogg, opus, or m4a)", s)
	}
	return nil
}
