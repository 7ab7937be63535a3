package encode

import (
	"context"
	"errors"
	"testing"

	"github.com/altavoz/altavoz/internal/config"
)

type fakeRunner struct {
	calls  [][]string
	stderr string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.stderr, f.err
}

func testTranscoder(r runner) (*Transcoder, *[]string) {
	removed := []string{}
	t := &Transcoder{
		ffmpegPath: "ffmpeg",
		runner:     r,
		remove: func(name string) error {
			removed = append(removed, name)
			return nil
		},
	}
	return t, &removed
}

func TestBuildArgs_Recipes(t *testing.T) {
	tests := []struct {
		format config.AudioFormat
		want   []string
	}{
		{config.FormatMP3, []string{"-ar", "44100", "-b:a", "160k"}},
		{config.FormatOGG, []string{"-ac", "1", "-ar", "22050", "-c:a", "libvorbis", "-qscale:a", "5"}},
		{config.FormatOpus, []string{"-c:a", "libopus", "-b:a", "96k"}},
		{config.FormatM4A, []string{"-c:a", "aac", "-b:a", "160k"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			args := BuildArgs("/out/a.es.wav", "/out/a.es."+string(tt.format), tt.format)
			if args[len(args)-1] != "/out/a.es."+string(tt.format) {
				t.Errorf("output path must be the final arg: %v", args)
			}
			if !containsSeq(args, tt.want) {
				t.Errorf("args %v missing recipe %v", args, tt.want)
			}
			if !containsSeq(args, []string{"-i", "/out/a.es.wav"}) {
				t.Errorf("args %v missing input", args)
			}
		})
	}
}

func TestTranscode_WAVNeverInvokesProcess(t *testing.T) {
	fake := &fakeRunner{}
	tr, removed := testTranscoder(fake)

	res := tr.Transcode(context.Background(), "/out/a.es.wav", config.FormatWAV)
	if len(fake.calls) != 0 {
		t.Errorf("wav output must not invoke ffmpeg (got %d calls)", len(fake.calls))
	}
	if res.FinalPath != "/out/a.es.wav" || res.FellBack {
		t.Errorf("result = %+v", res)
	}
	if len(*removed) != 0 {
		t.Errorf("nothing may be deleted for wav output: %v", *removed)
	}
}

func TestTranscode_SuccessDeletesCanonical(t *testing.T) {
	fake := &fakeRunner{}
	tr, removed := testTranscoder(fake)

	res := tr.Transcode(context.Background(), "/out/a.es.wav", config.FormatMP3)
	if res.FinalPath != "/out/a.es.mp3" || res.FellBack {
		t.Errorf("result = %+v", res)
	}
	if len(*removed) != 1 || (*removed)[0] != "/out/a.es.wav" {
		t.Errorf("canonical waveform must be deleted on success: %v", *removed)
	}
}

func TestTranscode_FailureKeepsCanonical(t *testing.T) {
	fake := &fakeRunner{stderr: "Unknown encoder 'libmp3lame'", err: errors.New("exit status 1")}
	tr, removed := testTranscoder(fake)

	res := tr.Transcode(context.Background(), "/out/a.es.wav", config.FormatMP3)
	if !res.FellBack {
		t.Fatal("want fallback on conversion failure")
	}
	if res.FinalPath != "/out/a.es.wav" {
		t.Errorf("final deliverable must be the canonical wav, got %s", res.FinalPath)
	}
	if res.Stderr == "" {
		t.Error("stderr of the failed attempt must be surfaced")
	}
	for _, r := range *removed {
		if r == "/out/a.es.wav" {
			t.Error("canonical waveform must not be deleted on failure")
		}
	}
}

func containsSeq(haystack, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
