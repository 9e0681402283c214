package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type file struct {
	Tracks []Track `yaml:"tracks"`
}

// Load reads a YAML catalog. Relative cover and audio references are resolved
// against the catalog file's directory.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	for i := range f.Tracks {
		t := &f.Tracks[i]
		if t.Audio == "" {
			return nil, fmt.Errorf("catalog %s: track %d has no audio reference", path, i)
		}
		t.Audio = resolveEntryPath(t.Audio, baseDir)
		if t.Cover != "" {
			t.Cover = resolveEntryPath(t.Cover, baseDir)
		}
		if t.Title == "" {
			t.Title = titleFromPath(t.Audio)
		}
	}

	c, err := New(f.Tracks)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Open picks the right loader for path: a YAML catalog, a playlist, a
// directory of media files, or a single media file together with its
// siblings. start is the index playback should begin at.
func Open(path string) (c *Catalog, start int, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, err
	}
	if info.IsDir() {
		c, err = FromDir(path)
		return c, 0, err
	}

	ext := filepath.Ext(path)
	switch {
	case isCatalogExt(ext):
		c, err = Load(path)
		return c, 0, err
	case IsPlaylistExt(ext):
		c, err = FromPlaylist(path)
		return c, 0, err
	case IsSupportedExt(ext):
		c, err = FromDir(filepath.Dir(path))
		if err != nil {
			return nil, 0, err
		}
		return c, c.IndexOfAudio(path), nil
	default:
		return nil, 0, fmt.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}
}

// IndexOfAudio returns the index of the track whose audio reference matches
// path, or 0 when none does.
func (c *Catalog) IndexOfAudio(path string) int {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	for i, t := range c.tracks {
		if t.Audio == path {
			return i
		}
	}
	return 0
}
