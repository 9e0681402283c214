package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bogem/id3v2/v2"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsPlaylistExt returns true if the extension is a supported playlist format.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

func isCatalogExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// SupportedExtsList returns a human-readable list of accepted inputs.
func SupportedExtsList() string {
	return ".mp3, .wav, .flac, .ogg, .m3u, .m3u8, .pls, .yaml"
}

// FromDir builds a catalog from the supported audio files in dir, sorted
// alphabetically (case-insensitive).
func FromDir(dir string) (*Catalog, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExt(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(absDir, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})

	c, err := New(tracksFromFiles(files))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return c, nil
}

// FromPlaylist builds a catalog from a local .m3u/.m3u8/.pls file. Entries
// that don't exist or aren't playable are skipped.
func FromPlaylist(path string) (*Catalog, error) {
	entries, err := parsePlaylist(path)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, p := range entries {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		files = append(files, p)
	}

	c, err := New(tracksFromFiles(files))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func tracksFromFiles(files []string) []Track {
	tracks := make([]Track, len(files))
	for i, f := range files {
		t := readTags(f)
		t.ID = i
		t.Audio = f
		tracks[i] = t
	}
	return tracks
}

// readTags reads ID3v2 tags from an audio file, falling back to the filename
// for the title.
func readTags(path string) Track {
	var t Track
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err == nil {
		defer tag.Close()
		t.Title = strings.TrimSpace(tag.Title())
		t.Artist = strings.TrimSpace(tag.Artist())
		t.Album = strings.TrimSpace(tag.Album())
	}
	if t.Title == "" {
		t.Title = titleFromPath(path)
	}
	return t
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	baseDir := filepath.Dir(absPath)
	text := strings.TrimPrefix(string(data), "\uFEFF")
	scanner := bufio.NewScanner(strings.NewReader(text))

	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ext == ".pls" {
			key, val, ok := strings.Cut(line, "=")
			if !ok || !isPLSFileKey(strings.TrimSpace(key)) {
				continue
			}
			line = strings.TrimSpace(val)
		} else if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" || strings.Contains(line, "://") {
			continue
		}
		entries = append(entries, resolveEntryPath(line, baseDir))
	}
	return entries, scanner.Err()
}

func isPLSFileKey(key string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(key), "file")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func resolveEntryPath(raw, baseDir string) string {
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(baseDir, p))
}
