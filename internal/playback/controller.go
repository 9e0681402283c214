// Package playback drives an audio output from the track catalog.
package playback

import (
	"errors"
	"fmt"

	"github.com/olivier-w/coverflow/internal/catalog"
	"go.uber.org/zap"
)

var (
	// ErrInvalidIndex is returned when a track index is outside the catalog.
	ErrInvalidIndex = errors.New("invalid track index")
	// ErrPlaybackRejected is returned when the output refuses to start.
	ErrPlaybackRejected = errors.New("playback rejected")
)

// Output is the audio engine the controller drives.
type Output interface {
	// Load replaces the current source. It does not start playback.
	Load(ref string) error
	// Play starts or resumes the loaded source.
	Play() error
	Pause()
	// Ended returns a channel closed when the loaded source finishes.
	Ended() <-chan struct{}
	Close() error
}

// State is a snapshot of the playback state.
type State struct {
	Index   int
	Playing bool
}

// Controller owns the playback state. Index only changes through LoadTrack,
// Select, Advance and TrackEnded. A Controller is not safe for concurrent use;
// the UI calls it from its update loop only.
type Controller struct {
	catalog *catalog.Catalog
	out     Output
	log     *zap.Logger

	state   State
	loaded  bool
	gen     uint64
	lastErr error
}

// New creates a Controller positioned on track 0 with nothing loaded.
func New(c *catalog.Catalog, out Output, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{catalog: c, out: out, log: log}
}

// State returns the current playback state.
func (c *Controller) State() State { return c.state }

// Track returns the current track.
func (c *Controller) Track() catalog.Track {
	t, _ := c.catalog.Track(c.state.Index)
	return t
}

// Generation increments on every successful load. Ended notifications carry
// the generation they were armed for so stale ones can be dropped.
func (c *Controller) Generation() uint64 { return c.gen }

// Err returns the error of the last failed load or play, or nil once a
// later one succeeds.
func (c *Controller) Err() error { return c.lastErr }

// Ended returns the end-of-track channel of the loaded source.
func (c *Controller) Ended() <-chan struct{} { return c.out.Ended() }

// LoadTrack loads track i into the output. An out-of-range index is logged
// and leaves the state and the output untouched. Loading stops playback.
func (c *Controller) LoadTrack(i int) error {
	t, ok := c.catalog.Track(i)
	if !ok {
		c.log.Error("invalid track index", zap.Int("index", i), zap.Int("tracks", c.catalog.Len()))
		c.lastErr = fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidIndex, i, c.catalog.Len())
		return c.lastErr
	}
	if err := c.out.Load(t.Audio); err != nil {
		c.log.Error("loading track failed", zap.String("audio", t.Audio), zap.Error(err))
		c.lastErr = fmt.Errorf("loading %q: %w", t.Title, err)
		return c.lastErr
	}
	c.state = State{Index: i}
	c.loaded = true
	c.gen++
	c.lastErr = nil
	c.log.Info("track loaded", zap.Int("index", i), zap.String("title", t.Title))
	return nil
}

// Play starts playback. A refusal from the output is logged and leaves
// Playing false; it is returned wrapped in ErrPlaybackRejected for callers
// that want to surface it.
func (c *Controller) Play() error {
	if !c.loaded {
		if err := c.LoadTrack(c.state.Index); err != nil {
			return err
		}
	}
	if err := c.out.Play(); err != nil {
		c.state.Playing = false
		c.log.Warn("playback rejected", zap.Int("index", c.state.Index), zap.Error(err))
		c.lastErr = fmt.Errorf("%w: %w", ErrPlaybackRejected, err)
		return c.lastErr
	}
	c.state.Playing = true
	c.lastErr = nil
	return nil
}

// Pause stops playback, keeping the current position.
func (c *Controller) Pause() {
	c.out.Pause()
	c.state.Playing = false
}

// Toggle pauses when playing and plays otherwise.
func (c *Controller) Toggle() error {
	if c.state.Playing {
		c.Pause()
		return nil
	}
	return c.Play()
}

// Select loads track i and starts it.
func (c *Controller) Select(i int) error {
	if err := c.LoadTrack(i); err != nil {
		return err
	}
	return c.Play()
}

// Advance moves one track forward (dir > 0) or back (dir < 0) around the
// ring, then loads and plays it.
func (c *Controller) Advance(dir int) error {
	switch {
	case dir > 0:
		dir = 1
	case dir < 0:
		dir = -1
	}
	n := c.catalog.Len()
	return c.Select((c.state.Index + dir + n) % n)
}

// TrackEnded handles the natural end of the current track for generation
// gen. It always moves on to the next track; stale generations are ignored.
func (c *Controller) TrackEnded(gen uint64) (advanced bool, err error) {
	if gen != c.gen {
		return false, nil
	}
	return true, c.Advance(1)
}

// Close releases the output.
func (c *Controller) Close() error {
	return c.out.Close()
}
