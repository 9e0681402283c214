// Package player plays local audio files through the system audio device.
package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrNothingLoaded is returned by Play before any track was loaded.
var ErrNothingLoaded = errors.New("no track loaded")

// countingReader tracks how many bytes oto has pulled from the decoder and
// whether the decoder has been drained.
type countingReader struct {
	reader  io.Reader
	pos     int64
	drained bool
	mu      sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	if err != nil {
		cr.drained = true
	}
	cr.mu.Unlock()
	return n, err
}

// Drained reports whether the decoder has returned EOF or an error.
func (cr *countingReader) Drained() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.drained
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   playbackSampleRate,
			ChannelCount: playbackChannels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Engine plays one track at a time. Load swaps the source; the audio device
// is only opened on the first Play, so a machine without audio fails there.
type Engine struct {
	mu sync.Mutex

	openContext func() (*oto.Context, error)

	file      *os.File
	decoder   pcmDecoder
	counter   *countingReader
	otoPlayer *oto.Player
	duration  time.Duration
	volume    float64
	paused    bool
	done      chan struct{}
	finish    func()
	stopMon   chan struct{}
	closed    bool
}

// NewEngine creates an Engine with the given initial volume (0.0 to 1.0).
func NewEngine(volume float64) *Engine {
	return &Engine{
		openContext: initOto,
		volume:      clampVolume(volume),
		paused:      true,
	}
}

// Load opens path and makes it the current source, stopping whatever was
// playing. Playback does not start until Play.
func (e *Engine) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return err
	}
	norm, err := normalize(dec)
	if err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		f.Close()
		return errors.New("engine closed")
	}
	e.releaseLocked()

	e.file = f
	e.decoder = norm
	e.counter = &countingReader{reader: norm}
	e.duration = time.Duration(float64(norm.Length()) / bytesPerSec * float64(time.Second))
	e.paused = true
	done := make(chan struct{})
	e.done = done
	e.finish = sync.OnceFunc(func() { close(done) })
	e.stopMon = make(chan struct{})
	return nil
}

// releaseLocked stops and drops the current source. Callers hold e.mu.
func (e *Engine) releaseLocked() {
	if e.stopMon != nil {
		close(e.stopMon)
		e.stopMon = nil
	}
	if e.finish != nil {
		e.finish()
		e.finish = nil
	}
	if e.otoPlayer != nil {
		e.otoPlayer.Pause()
		e.otoPlayer = nil
	}
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
	e.decoder = nil
	e.counter = nil
}

// Play starts or resumes the loaded source.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.counter == nil {
		return ErrNothingLoaded
	}
	if e.otoPlayer == nil {
		ctx, err := e.openContext()
		if err != nil {
			return fmt.Errorf("opening audio device: %w", err)
		}
		e.otoPlayer = ctx.NewPlayer(e.counter)
		e.otoPlayer.SetVolume(e.volume)
		go e.monitor(e.counter, e.decoder.Length(), e.finish, e.stopMon)
	}
	e.otoPlayer.Play()
	e.paused = false
	return nil
}

// monitor polls until the source is drained or a new one replaces it. A
// source of unknown length (total 0) ends when its decoder returns EOF.
func (e *Engine) monitor(counter *countingReader, total int64, finish func(), stop chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		e.mu.Lock()
		paused := e.paused
		e.mu.Unlock()
		if paused {
			continue
		}
		if counter.Drained() || (total > 0 && counter.Pos() >= total) {
			finish()
			return
		}
	}
}

// Pause pauses playback. It is a no-op when nothing is playing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.otoPlayer != nil {
		e.otoPlayer.Pause()
	}
	e.paused = true
}

// Paused reports whether playback is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Ended returns a channel closed when the current source finishes or is
// replaced by the next Load. Before the first Load it returns nil, which never
// fires.
func (e *Engine) Ended() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Position returns how far into the current source playback has read.
func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	counter := e.counter
	e.mu.Unlock()
	if counter == nil {
		return 0
	}
	return time.Duration(float64(counter.Pos()) / bytesPerSec * float64(time.Second))
}

// Duration returns the length of the current source.
func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

// Volume returns the current volume (0.0 to 1.0).
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetVolume sets the volume, clamped to 0.0 - 1.0.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = clampVolume(v)
	if e.otoPlayer != nil {
		e.otoPlayer.SetVolume(e.volume)
	}
}

// AdjustVolume changes the volume by delta.
func (e *Engine) AdjustVolume(delta float64) {
	e.SetVolume(e.Volume() + delta)
}

// Close stops playback and releases the current source.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.releaseLocked()
	return nil
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
