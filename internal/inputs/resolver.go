// Package inputs resolves a user-supplied path into the ordered list of
// media files the batch will process.
package inputs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors returned by Resolve. The caller treats all three as fatal.
var (
	ErrInputNotFound     = fmt.Errorf("input not found")
	ErrUnsupportedFormat = fmt.Errorf("unsupported format")
	ErrNoInputFound      = fmt.Errorf("no supported media files found")
)

// Supported media file extensions (lowercase, with leading dot). Anything
// ffmpeg/whisper can decode: plain audio plus common video containers.
var mediaExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".aac":  true,
	".wma":  true,
	".mp4":  true,
	".mkv":  true,
	".webm": true,
}

// MediaFile is one discovered input. Immutable once created.
type MediaFile struct {
	Path string // Absolute or as-given path to the file.
	Stem string // Base name without extension; used to derive output names.
	Ext  string // Lowercased extension with leading dot.
}

// newMediaFile builds a MediaFile from a path.
func newMediaFile(path string) MediaFile {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	return MediaFile{
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
		Ext:  ext,
	}
}

// Supported reports whether the file extension is in the supported set.
// Matching is case-insensitive.
func Supported(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// Resolve turns path into the ordered batch input list.
//
// A single file must carry a supported extension ([ErrUnsupportedFormat]
// otherwise). A directory is listed non-recursively, filtered to supported
// files, and sorted by name for a deterministic batch order
// ([ErrNoInputFound] when the filtered set is empty). A missing path yields
// [ErrInputNotFound]. No side effects beyond filesystem reads.
func Resolve(path string) ([]MediaFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	if !info.IsDir() {
		if !Supported(path) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
		}
		return []MediaFile{newMediaFile(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var files []MediaFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if Supported(name) {
			files = append(files, newMediaFile(filepath.Join(path, name)))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFound, path)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
