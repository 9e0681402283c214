package catalog

import (
	"errors"
	"strings"
)

// ErrEmpty is returned when a catalog would hold no tracks. The carousel ring
// needs at least one item.
var ErrEmpty = errors.New("catalog has no tracks")

// Track is a single entry of the catalog. Tracks are immutable after load.
type Track struct {
	ID              int      `yaml:"id"`
	Title           string   `yaml:"title"`
	Artist          string   `yaml:"artist"`
	FeaturedArtists []string `yaml:"featured_artists"`
	Album           string   `yaml:"album"`
	Cover           string   `yaml:"cover"`
	Audio           string   `yaml:"audio"`
	Color           string   `yaml:"color"`
}

// FeatureLine formats the featured artists as "ft. A, B", or "" when there
// are none.
func (t Track) FeatureLine() string {
	if len(t.FeaturedArtists) == 0 {
		return ""
	}
	return "ft. " + strings.Join(t.FeaturedArtists, ", ")
}

// Catalog is a fixed-size ordered list of tracks indexed 0..Len()-1.
type Catalog struct {
	tracks []Track
}

// New creates a Catalog from tracks. The slice is copied.
func New(tracks []Track) (*Catalog, error) {
	if len(tracks) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{tracks: make([]Track, len(tracks))}
	for i, t := range tracks {
		t.FeaturedArtists = append([]string(nil), t.FeaturedArtists...)
		if t.Color == "" {
			t.Color = palette[i%len(palette)]
		}
		c.tracks[i] = t
	}
	return c, nil
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Track returns the track at index i. ok is false when i is out of range.
func (c *Catalog) Track(i int) (Track, bool) {
	if i < 0 || i >= len(c.tracks) {
		return Track{}, false
	}
	return c.tracks[i], true
}

// Tracks returns a copy of all tracks in order.
func (c *Catalog) Tracks() []Track {
	out := make([]Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Wrap reduces any integer to a valid index on the ring.
func (c *Catalog) Wrap(i int) int {
	n := len(c.tracks)
	return ((i % n) + n) % n
}

// palette supplies accent colors for tracks that don't declare one.
var palette = []string{
	"#1D3557",
	"#6D2E46",
	"#2F4858",
	"#3A5A40",
	"#5E3C99",
	"#7A4419",
}

// Default returns the built-in catalog. Its audio and cover refs are relative
// and resolve against the working directory.
func Default() *Catalog {
	c, _ := New([]Track{
		{
			ID:              0,
			Title:           "La clim",
			Artist:          "Kéroué",
			FeaturedArtists: []string{"JeanJass"},
			Album:           "Scope",
			Cover:           "covers/scope.webp",
			Audio:           "musics/keroue-la_clim.mp3",
		},
		{
			ID:     1,
			Title:  "OUTRO YuU",
			Artist: "Ajna",
			Album:  "L'HERMITE",
			Cover:  "covers/l_hermite.webp",
			Audio:  "musics/ajna-outro_yuu.mp3",
		},
		{
			ID:     2,
			Title:  "blccd tears",
			Artist: "Mairo",
			Album:  "LA FIEV",
			Cover:  "covers/la_fiev.webp",
			Audio:  "musics/mairo-blccd_tears.mp3",
		},
		{
			ID:     3,
			Title:  "Bleu marine",
			Artist: "Jewel Usain",
			Album:  "Où les garçons grandissent",
			Cover:  "covers/ou_les_garcons_grandissent.webp",
			Audio:  "musics/jewel_usain-bleu_marine.mp3",
		},
		{
			ID:     4,
			Title:  "On a pris l'habitude",
			Artist: "BEN_plg",
			Album:  "Dire je t'aime",
			Cover:  "covers/dire_je_t_aime.webp",
			Audio:  "musics/ben_pg-on-a-pris-l-habitude.mp3",
		},
		{
			ID:              5,
			Title:           "Fast learner",
			Artist:          "Mairo",
			FeaturedArtists: []string{"H JeuneCrack"},
			Album:           "La solution",
			Cover:           "covers/la_solution.webp",
			Audio:           "musics/mairo-fast_learner.mp3",
		},
	})
	return c
}
