package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/altavoz/altavoz/internal/config"
	"github.com/altavoz/altavoz/internal/encode"
	"github.com/altavoz/altavoz/internal/inputs"
	"github.com/altavoz/altavoz/internal/logging"
)

// --- Fakes ---

type fakeRecognizer struct {
	segments map[string][]string // keyed by base name
	errFor   map[string]error
	calls    int
}

func (f *fakeRecognizer) Transcribe(ctx context.Context, path string) ([]string, error) {
	f.calls++
	base := filepath.Base(path)
	if err := f.errFor[base]; err != nil {
		return nil, err
	}
	return f.segments[base], nil
}

type hop struct{ from, to string }

type fakeTranslator struct {
	hops        []hop
	emptySecond bool // final hop returns whitespace-only text
	err         error
}

func (f *fakeTranslator) Hop(ctx context.Context, text, from, to string) (string, error) {
	f.hops = append(f.hops, hop{from, to})
	if f.err != nil {
		return "", f.err
	}
	if to == "en" {
		return "english pivot text", nil
	}
	if f.emptySecond {
		return "   ", nil
	}
	return "Hola a todos.", nil
}

type fakeSynthesizer struct {
	err   error
	calls []string
}

func (f *fakeSynthesizer) SynthesizeToFile(ctx context.Context, text, outPath string) error {
	f.calls = append(f.calls, outPath)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("RIFFwav"), 0o644)
}

type fakeTranscoder struct {
	fail  bool
	calls int
}

func (f *fakeTranscoder) Transcode(ctx context.Context, wavPath string, format config.AudioFormat) encode.Result {
	if format == config.FormatWAV {
		return encode.Result{FinalPath: wavPath}
	}
	f.calls++
	if f.fail {
		return encode.Result{FinalPath: wavPath, FellBack: true, Stderr: "conversion blew up"}
	}
	final := strings.TrimSuffix(wavPath, ".wav") + "." + string(format)
	_ = os.Rename(wavPath, final)
	return encode.Result{FinalPath: final}
}

// --- Helpers ---

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.OutPrefix = filepath.Join(t.TempDir(), "out")
	return &cfg
}

func testLogger(t *testing.T, cfg *config.Config) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func mediaFiles(t *testing.T, names ...string) []inputs.MediaFile {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("media"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := inputs.Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func listOutputs(t *testing.T, prefix string) []string {
	t.Helper()
	entries, err := os.ReadDir(prefix)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func speech(texts ...string) map[string][]string {
	out := map[string][]string{}
	for i := 0; i < len(texts); i += 2 {
		out[texts[i]] = []string{texts[i+1]}
	}
	return out
}

// --- Tests ---

func TestBatch_FullRunProducesWAV(t *testing.T) {
	cfg := testConfig(t)
	rec := &fakeRecognizer{segments: speech("talk.mp3", " Bonjour. ")}
	tr := &fakeTranslator{}
	syn := &fakeSynthesizer{}
	b := New(cfg, testLogger(t, cfg), rec, tr, syn, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if stats.Completed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	got := listOutputs(t, cfg.OutPrefix)
	if len(got) != 1 || got[0] != "talk.es.wav" {
		t.Errorf("outputs = %v, want exactly [talk.es.wav]", got)
	}
}

func TestBatch_TranslationUsesPivotOnly(t *testing.T) {
	cfg := testConfig(t)
	tr := &fakeTranslator{}
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		tr, &fakeSynthesizer{}, &fakeTranscoder{})

	b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	want := []hop{{"fr", "en"}, {"en", "es"}}
	if len(tr.hops) != 2 || tr.hops[0] != want[0] || tr.hops[1] != want[1] {
		t.Errorf("hops = %v, want %v (never a direct fr→es call)", tr.hops, want)
	}
}

func TestBatch_NoSpeechSkips(t *testing.T) {
	cfg := testConfig(t)
	rec := &fakeRecognizer{segments: map[string][]string{"quiet.wav": {"  ", ""}}}
	tr := &fakeTranslator{}
	syn := &fakeSynthesizer{}
	b := New(cfg, testLogger(t, cfg), rec, tr, syn, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "quiet.wav"))

	if stats.NoSpeech != 1 || stats.Completed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(tr.hops) != 0 {
		t.Error("translation must not run when no speech was detected")
	}
	if len(syn.calls) != 0 {
		t.Error("synthesis must not run when no speech was detected")
	}
	if got := listOutputs(t, cfg.OutPrefix); len(got) != 0 {
		t.Errorf("no artifacts may remain, got %v", got)
	}
}

func TestBatch_EmptyTranslationSkips(t *testing.T) {
	cfg := testConfig(t)
	tr := &fakeTranslator{emptySecond: true}
	syn := &fakeSynthesizer{}
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		tr, syn, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if stats.EmptyTranslation != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(syn.calls) != 0 {
		t.Error("synthesis must not run on an empty translation")
	}
	if got := listOutputs(t, cfg.OutPrefix); len(got) != 0 {
		t.Errorf("no intermediates may remain, got %v", got)
	}
}

func TestBatch_SynthesisFailureKeepsGoing(t *testing.T) {
	cfg := testConfig(t)
	syn := &fakeSynthesizer{err: errors.New("voice model exploded")}
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		&fakeTranslator{}, syn, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if stats.SynthesisFailed != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := listOutputs(t, cfg.OutPrefix); len(got) != 0 {
		t.Errorf("text intermediates must still be cleaned up, got %v", got)
	}
}

func TestBatch_ReencodeFailureKeepsWAV(t *testing.T) {
	cfg := testConfig(t)
	cfg.AudioFormat = config.FormatMP3
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		&fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscoder{fail: true})

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if stats.Completed != 1 {
		t.Fatalf("re-encode fallback still completes the file: %+v", stats)
	}
	got := listOutputs(t, cfg.OutPrefix)
	if len(got) != 1 || got[0] != "talk.es.wav" {
		t.Errorf("outputs = %v, want the canonical wav retained", got)
	}
}

func TestBatch_ReencodeSuccess(t *testing.T) {
	cfg := testConfig(t)
	cfg.AudioFormat = config.FormatOpus
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		&fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscoder{})

	b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	got := listOutputs(t, cfg.OutPrefix)
	if len(got) != 1 || got[0] != "talk.es.opus" {
		t.Errorf("outputs = %v, want [talk.es.opus] with the wav deleted", got)
	}
}

func TestBatch_KeepTextRetainsIntermediates(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeepText = true
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		&fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscoder{})

	b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	got := listOutputs(t, cfg.OutPrefix)
	want := map[string]bool{"talk.fr.txt": true, "talk.es.txt": true, "talk.es.wav": true}
	if len(got) != len(want) {
		t.Fatalf("outputs = %v, want %v", got, want)
	}
	for _, name := range got {
		if !want[name] {
			t.Errorf("unexpected output %s", name)
		}
	}
	data, err := os.ReadFile(filepath.Join(cfg.OutPrefix, "talk.fr.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Bonjour.\n" {
		t.Errorf("transcript = %q, want trailing newline", data)
	}
}

func TestBatch_NoTTSProducesNoAudio(t *testing.T) {
	cfg := testConfig(t)
	cfg.Synthesize = false
	b := New(cfg, testLogger(t, cfg),
		&fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")},
		&fakeTranslator{}, nil, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if stats.Completed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := listOutputs(t, cfg.OutPrefix); len(got) != 0 {
		t.Errorf("with TTS off and no retention, nothing may remain: %v", got)
	}
}

func TestBatch_PerFileFailureIsolation(t *testing.T) {
	cfg := testConfig(t)
	rec := &fakeRecognizer{
		segments: speech("b.wav", "Ça va."),
		errFor:   map[string]error{"a.wav": errors.New("decoder crashed")},
	}
	b := New(cfg, testLogger(t, cfg), rec, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "a.wav", "b.wav"))

	if stats.Failed != 1 || stats.Completed != 1 {
		t.Fatalf("stats = %+v, want the failure isolated to file one", stats)
	}
	if rec.calls != 2 {
		t.Errorf("recognizer calls = %d, want 2 (batch must continue)", rec.calls)
	}
	got := listOutputs(t, cfg.OutPrefix)
	if len(got) != 1 || got[0] != "b.es.wav" {
		t.Errorf("outputs = %v, want [b.es.wav]", got)
	}
}

func TestBatch_SequentialOrder(t *testing.T) {
	cfg := testConfig(t)
	var order []string
	rec := &fakeRecognizer{segments: map[string][]string{}}
	syn := &fakeSynthesizer{}
	for _, n := range []string{"a.wav", "b.wav", "c.wav"} {
		rec.segments[n] = []string{"texte"}
	}
	b := New(cfg, testLogger(t, cfg), recorderRecognizer{rec, &order}, &fakeTranslator{}, syn, &fakeTranscoder{})

	b.Run(context.Background(), mediaFiles(t, "c.wav", "a.wav", "b.wav"))

	want := []string{"a.wav", "b.wav", "c.wav"}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Errorf("processing order = %v, want lexicographic %v", order, want)
	}
}

// recorderRecognizer wraps a fake to capture processing order.
type recorderRecognizer struct {
	inner *fakeRecognizer
	order *[]string
}

func (r recorderRecognizer) Transcribe(ctx context.Context, path string) ([]string, error) {
	*r.order = append(*r.order, filepath.Base(path))
	return r.inner.Transcribe(ctx, path)
}

func TestBatch_DryRunTouchesNoEngine(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	rec := &fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")}
	tr := &fakeTranslator{}
	syn := &fakeSynthesizer{}
	b := New(cfg, testLogger(t, cfg), rec, tr, syn, &fakeTranscoder{})

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if rec.calls != 0 || len(tr.hops) != 0 || len(syn.calls) != 0 {
		t.Error("dry run must not invoke any engine")
	}
	if stats.Completed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if got := listOutputs(t, cfg.OutPrefix); len(got) != 0 {
		t.Errorf("dry run wrote %v", got)
	}
}

func TestBatch_DryRunNeedsNoEngines(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	b := New(cfg, testLogger(t, cfg), nil, nil, nil, nil)

	stats := b.Run(context.Background(), mediaFiles(t, "talk.mp3"))

	if stats.Completed != 1 {
		t.Errorf("stats = %+v, want the preview recorded without any engine", stats)
	}
	if got := listOutputs(t, cfg.OutPrefix); len(got) != 0 {
		t.Errorf("dry run wrote %v", got)
	}
}

// cancelOnTranscribe cancels the batch context while the first file is in
// flight, and fails the stage if the cancellation reaches the engine call.
type cancelOnTranscribe struct {
	inner  *fakeRecognizer
	cancel context.CancelFunc
}

func (c *cancelOnTranscribe) Transcribe(ctx context.Context, path string) ([]string, error) {
	c.cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.inner.Transcribe(ctx, path)
}

func TestBatch_MidFileCancelFinishesCurrentFile(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := &fakeRecognizer{segments: speech("a.wav", "Bonjour.", "b.wav", "Encore.")}
	rec := &cancelOnTranscribe{inner: inner, cancel: cancel}
	tr := &fakeTranslator{}
	syn := &fakeSynthesizer{}
	b := New(cfg, testLogger(t, cfg), rec, tr, syn, &fakeTranscoder{})

	stats := b.Run(ctx, mediaFiles(t, "a.wav", "b.wav"))

	if stats.Completed != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want the in-flight file run to completion", stats)
	}
	if len(tr.hops) != 2 || len(syn.calls) != 1 {
		t.Errorf("downstream stages must still run after cancel: hops=%d synth=%d",
			len(tr.hops), len(syn.calls))
	}
	if inner.calls != 1 {
		t.Errorf("recognizer calls = %d, want 1 (no new file starts after cancel)", inner.calls)
	}
	got := listOutputs(t, cfg.OutPrefix)
	if len(got) != 1 || got[0] != "a.es.wav" {
		t.Errorf("outputs = %v, want [a.es.wav]", got)
	}
}

func TestBatch_CancelledContextStopsBetweenFiles(t *testing.T) {
	cfg := testConfig(t)
	rec := &fakeRecognizer{segments: speech("talk.mp3", "Bonjour.")}
	b := New(cfg, testLogger(t, cfg), rec, &fakeTranslator{}, &fakeSynthesizer{}, &fakeTranscoder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := b.Run(ctx, mediaFiles(t, "talk.mp3"))

	if rec.calls != 0 || stats.Attempted() != 0 {
		t.Errorf("cancelled batch must not start files: calls=%d stats=%+v", rec.calls, stats)
	}
}
