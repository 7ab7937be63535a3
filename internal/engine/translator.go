package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/altavoz/altavoz/internal/config"
)

// Translator runs Argos Translate hops through its CLI. Only the pivot path
// through English is guaranteed provisioned, so callers translate in exactly
// two hops (src→en, en→tgt); no direct src→tgt capability is assumed.
type Translator struct {
	bin    string
	runner commandRunner
}

// NewTranslator verifies that the CLI binary is invocable and that the
// language packs for the (src, en, tgt) pivot path are installed. Pack
// provisioning is a build-time step; a missing pack is fatal here, never
// auto-installed. Called once per batch.
func NewTranslator(cfg *config.Config) (*Translator, error) {
	if err := lookupBinary(cfg.TranslateBin); err != nil {
		return nil, fmt.Errorf("translation engine unavailable: %w", err)
	}
	if err := checkLanguagePacks(cfg.ArgosPackages, cfg.SourceLang, cfg.TargetLang); err != nil {
		return nil, err
	}
	return &Translator{bin: cfg.TranslateBin, runner: &execRunner{}}, nil
}

// checkLanguagePacks scans the installed-packages directory for the two
// pivot packs. Installed pack directories carry the pair code in their name
// (e.g. "translate-fr_en-1_9" or plain "fr_en").
func checkLanguagePacks(packagesDir, src, tgt string) error {
	entries, err := os.ReadDir(packagesDir)
	if err != nil {
		return fmt.Errorf("cannot read Argos packages directory %s: %w", packagesDir, err)
	}

	var missing []string
	for _, pair := range []string{src + "_en", "en_" + tgt} {
		if !hasPack(entries, pair) {
			missing = append(missing, pair)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing Argos language packs: %s (bake %s into the image before running)",
			strings.Join(missing, ", "), strings.Join(missing, " and "))
	}
	return nil
}

func hasPack(entries []os.DirEntry, pair string) bool {
	for _, e := range entries {
		if HasPackToken(e.Name(), pair) {
			return true
		}
	}
	return false
}

// HasPackToken reports whether name carries pair as a whole token, bounded
// by non-letter characters or the string ends. A plain substring match would
// accept pair text embedded inside longer codes (e.g. "en_es" inside
// "sven_estonian").
func HasPackToken(name, pair string) bool {
	for start := 0; ; start++ {
		idx := strings.Index(name[start:], pair)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(pair)
		beforeOK := idx == 0 || !isCodeLetter(name[idx-1])
		afterOK := end == len(name) || !isCodeLetter(name[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx
	}
}

func isCodeLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}

// Hop translates text across one installed language pair. The text is
// passed on stdin to avoid argv length limits on long transcripts.
func (t *Translator) Hop(ctx context.Context, text, from, to string) (string, error) {
	result, err := t.runner.Run(ctx, strings.NewReader(text), t.bin,
		"--from-lang", from,
		"--to-lang", to,
	)
	if err != nil {
		return "", fmt.Errorf("translation %s→%s failed: %w", from, to, err)
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}
