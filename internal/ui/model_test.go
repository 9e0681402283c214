package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/coverflow/internal/carousel"
	"github.com/olivier-w/coverflow/internal/catalog"
	"github.com/olivier-w/coverflow/internal/input"
	"github.com/olivier-w/coverflow/internal/playback"
)

type fakeOutput struct {
	loaded  []string
	playing bool
	playErr error
	ended   chan struct{}
	closed  bool
}

func (f *fakeOutput) Load(ref string) error {
	f.loaded = append(f.loaded, ref)
	f.playing = false
	f.ended = make(chan struct{})
	return nil
}

func (f *fakeOutput) Play() error {
	if f.playErr != nil {
		return f.playErr
	}
	f.playing = true
	return nil
}

func (f *fakeOutput) Pause()                 { f.playing = false }
func (f *fakeOutput) Ended() <-chan struct{} { return f.ended }
func (f *fakeOutput) Close() error           { f.closed = true; return nil }

type fakeMeter struct {
	volume float64
}

func (f *fakeMeter) Position() time.Duration     { return 30 * time.Second }
func (f *fakeMeter) Duration() time.Duration     { return 2 * time.Minute }
func (f *fakeMeter) Volume() float64             { return f.volume }
func (f *fakeMeter) AdjustVolume(delta float64) { f.volume += delta }

func newTestModel(t *testing.T) (Model, *fakeOutput) {
	t.Helper()
	cat, err := catalog.New([]catalog.Track{
		{Title: "La clim", Artist: "Kéroué", FeaturedArtists: []string{"JeanJass"}, Album: "Scope", Audio: "a.mp3"},
		{Title: "OUTRO YuU", Artist: "Ajna", Album: "L'HERMITE", Audio: "b.mp3"},
		{Title: "blccd tears", Artist: "Mairo", Album: "LA FIEV", Audio: "c.mp3"},
		{Title: "Bleu marine", Artist: "Jewel Usain", Album: "Où les garçons grandissent", Audio: "d.mp3"},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	g, err := carousel.NewGeometry(5, 1, cat.Len())
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}

	out := &fakeOutput{}
	ctl := playback.New(cat, out, nil)
	if err := ctl.LoadTrack(0); err != nil {
		t.Fatalf("LoadTrack: %v", err)
	}
	car := carousel.New(g)
	agg := input.New(car, input.Options{}, nil)
	m := New(cat, ctl, car, agg, &fakeMeter{volume: 0.5}, Options{CoverRows: 5, FPS: 60}, nil)
	return m, out
}

func keyPress(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleKeyPlaysAndPauses(t *testing.T) {
	m, out := newTestModel(t)

	m, _ = m.handleMsg(keyPress(" "))
	if !m.ctl.State().Playing || !out.playing {
		t.Fatal("expected space to start playback")
	}
	m, _ = m.handleMsg(keyPress(" "))
	if m.ctl.State().Playing || out.playing {
		t.Fatal("expected second space to pause")
	}
}

func TestNextKeySelectsTrackAndStartsFrames(t *testing.T) {
	m, out := newTestModel(t)

	m, cmd := m.handleMsg(keyPress("n"))
	if got := m.ctl.State().Index; got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if !m.ctl.State().Playing {
		t.Fatal("expected selected track to play")
	}
	if got := out.loaded[len(out.loaded)-1]; got != "b.mp3" {
		t.Fatalf("expected b.mp3 loaded, got %q", got)
	}
	if !m.animating || cmd == nil {
		t.Fatal("expected frame loop to start")
	}
	if m.armedGen != m.ctl.Generation() {
		t.Fatal("expected ended wait to be re-armed for the new load")
	}
}

func TestPrevKeyWrapsAround(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.handleMsg(keyPress("p"))
	if got := m.ctl.State().Index; got != 3 {
		t.Fatalf("expected index 3, got %d", got)
	}
}

func TestWheelSnapsAfterIdle(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := m.handleMsg(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if cmd == nil {
		t.Fatal("expected idle timer command")
	}
	m, _ = m.handleMsg(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.carousel.Target(); got != 2*wheelNotch {
		t.Fatalf("expected target %v, got %v", 2*wheelNotch, got)
	}
	if got := m.ctl.State().Index; got != 1 {
		t.Fatalf("expected target policy to select track 1 at offset 4, got %d", got)
	}

	m, _ = m.handleMsg(wheelIdleMsg{seq: 1})
	if m.input.State() != input.Wheeling {
		t.Fatal("expected stale idle to be ignored")
	}

	m, _ = m.handleMsg(wheelIdleMsg{seq: 2})
	if m.input.State() != input.Idle {
		t.Fatal("expected gesture to end")
	}
	if got := m.carousel.Target(); got != 6 {
		t.Fatalf("expected target snapped to 6, got %v", got)
	}
}

func TestDragReleaseAdvancesOneTrack(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = m.handleMsg(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress, Y: 10})
	m, _ = m.handleMsg(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion, Y: 8})
	m, _ = m.handleMsg(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.carousel.Target(); got != 2 {
		t.Fatalf("expected wheel to be ignored during drag, target %v", got)
	}
	m, _ = m.handleMsg(tea.MouseMsg{Button: tea.MouseButtonNone, Action: tea.MouseActionRelease, Y: 8})

	if got := m.carousel.Target(); got != 6 {
		t.Fatalf("expected target 6 after release, got %v", got)
	}
	if got := m.ctl.State().Index; got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
}

func TestFrameLoopStopsWhenSettled(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.handleMsg(keyPress("n"))

	var cmd tea.Cmd
	for i := 0; i < 1000 && m.animating; i++ {
		m, cmd = m.handleMsg(frameMsg(time.Now()))
	}
	if m.animating {
		t.Fatal("expected frame loop to stop")
	}
	if cmd != nil {
		t.Fatal("expected no further frame command once settled")
	}
	if got := m.carousel.Live(); got != 6 {
		t.Fatalf("expected live offset settled at 6, got %v", got)
	}

	_, cmd = m.handleMsg(frameMsg(time.Now()))
	if cmd != nil {
		t.Fatal("expected stray frame to be dropped")
	}
}

func TestTrackEndedAdvancesCarouselAndPlayback(t *testing.T) {
	m, out := newTestModel(t)
	m, _ = m.handleMsg(keyPress(" "))
	loads := len(out.loaded)

	m, _ = m.handleMsg(trackEndedMsg{gen: m.ctl.Generation()})
	if got := m.ctl.State().Index; got != 1 {
		t.Fatalf("expected index 1 after track end, got %d", got)
	}
	if got := m.carousel.Active(); got != 1 {
		t.Fatalf("expected carousel to follow, got %d", got)
	}
	if got := len(out.loaded) - loads; got != 1 {
		t.Fatalf("expected exactly one load, got %d", got)
	}
}

func TestStaleTrackEndedIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	stale := m.ctl.Generation()
	m, _ = m.handleMsg(keyPress("n"))

	m, _ = m.handleMsg(trackEndedMsg{gen: stale})
	if got := m.ctl.State().Index; got != 1 {
		t.Fatalf("expected index to stay 1, got %d", got)
	}
}

func TestRejectedPlayShowsError(t *testing.T) {
	m, out := newTestModel(t)
	out.playErr = errors.New("no audio device")

	m, _ = m.handleMsg(keyPress(" "))
	if m.ctl.State().Playing {
		t.Fatal("expected playback to stay stopped")
	}
	view := m.View()
	if !strings.Contains(view, "no audio device") {
		t.Fatalf("expected error in view, got %q", view)
	}
	if !strings.Contains(view, "❚❚") {
		t.Fatal("expected paused icon")
	}
}

func TestVolumeKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.handleMsg(keyPress("+"))
	if got := renderVolumePercent(m.volume); got != "vol 55%" {
		t.Fatalf("expected vol 55%%, got %q", got)
	}
}

func TestQuitClosesOutput(t *testing.T) {
	m, out := newTestModel(t)
	m, cmd := m.handleMsg(keyPress("q"))
	if !out.closed {
		t.Fatal("expected output to be closed")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quit")
	}
}

func TestViewShowsCurrentTrack(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	for _, want := range []string{"La clim", "Kéroué", "ft. JeanJass", "Scope", "0:30", "2:00", "vol 50%"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got %q", want, view)
		}
	}
}

func TestWaitEndedSkipsNilChannel(t *testing.T) {
	if cmd := waitEnded(nil, 1); cmd != nil {
		t.Fatal("expected no command for a nil ended channel")
	}

	ended := make(chan struct{})
	close(ended)
	msg := waitEnded(ended, 3)()
	if got, ok := msg.(trackEndedMsg); !ok || got.gen != 3 {
		t.Fatalf("expected trackEndedMsg{gen: 3}, got %#v", msg)
	}
}

func TestUnloadedStartDoesNotWaitForEnd(t *testing.T) {
	cat, err := catalog.New([]catalog.Track{{Title: "a", Audio: "a.mp3"}, {Title: "b", Audio: "b.mp3"}})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	g, _ := carousel.NewGeometry(5, 1, cat.Len())
	car := carousel.New(g)
	ctl := playback.New(cat, &fakeOutput{}, nil)
	m := New(cat, ctl, car, input.New(car, input.Options{}, nil), nil, Options{}, nil)

	if m.ctl.Ended() != nil {
		t.Fatal("expected no ended channel before any load")
	}
	if cmd := waitEnded(m.ctl.Ended(), m.armedGen); cmd != nil {
		t.Fatal("expected Init not to arm an end wait without a loaded track")
	}
}
