package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/coverflow/internal/carousel"
	"github.com/olivier-w/coverflow/internal/catalog"
	"github.com/olivier-w/coverflow/internal/input"
	"github.com/olivier-w/coverflow/internal/playback"
	"go.uber.org/zap"
)

const (
	coverWidth = 24
	wheelNotch = 2.0
	volumeStep = 0.05
	settleEps  = 0.01
)

// Meter reports on the audio engine for the progress line. It may be nil.
type Meter interface {
	Position() time.Duration
	Duration() time.Duration
	Volume() float64
	AdjustVolume(delta float64)
}

// Options sizes the carousel and its frame loop.
type Options struct {
	CoverRows int
	FPS       int
}

// Model is the Bubbletea model for the coverflow TUI.
type Model struct {
	tracks   []catalog.Track
	ctl      *playback.Controller
	carousel *carousel.Carousel
	input    *input.Aggregator
	meter    Meter
	log      *zap.Logger

	keys     keyMap
	help     help.Model
	progress progress.Model

	coverRows  int
	frameDelay time.Duration
	animating  bool
	armedGen   uint64
	dragY      int

	elapsed  time.Duration
	duration time.Duration
	volume   float64
	width    int
	height   int
	quitting bool
}

// New creates a Model. The carousel's index changes are routed to the
// controller: whenever the active cover changes, that track is loaded and
// played.
func New(cat *catalog.Catalog, ctl *playback.Controller, car *carousel.Carousel, agg *input.Aggregator, meter Meter, opts Options, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CoverRows < 1 {
		opts.CoverRows = 1
	}
	if opts.FPS < 1 {
		opts.FPS = 60
	}

	car.OnIndexChanged(func(prev, next int) {
		if next == ctl.State().Index && ctl.Err() == nil {
			return
		}
		log.Debug("active cover changed", zap.Int("from", prev), zap.Int("to", next))
		ctl.Select(next)
	})

	m := Model{
		tracks:     cat.Tracks(),
		ctl:        ctl,
		carousel:   car,
		input:      agg,
		meter:      meter,
		log:        log,
		keys:       defaultKeyMap(),
		help:       help.New(),
		progress:   progress.New(progress.WithSolidFill("#AAAAAA"), progress.WithoutPercentage()),
		coverRows:  opts.CoverRows,
		frameDelay: time.Second / time.Duration(opts.FPS),
		armedGen:   ctl.Generation(),
	}
	m.refreshMeter()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitEnded(m.ctl.Ended(), m.armedGen),
		m.titleCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.animating = false
			m.ctl.Close()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		case key.Matches(msg, m.keys.Toggle):
			m.ctl.Toggle()
			cmds = append(cmds, m.titleCmd())
		case key.Matches(msg, m.keys.Next):
			m.carousel.Advance(1)
			cmds = append(cmds, m.animate())
		case key.Matches(msg, m.keys.Prev):
			m.carousel.Advance(-1)
			cmds = append(cmds, m.animate())
		case key.Matches(msg, m.keys.VolumeUp):
			m.adjustVolume(volumeStep)
		case key.Matches(msg, m.keys.VolumeDown):
			m.adjustVolume(-volumeStep)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case wheelIdleMsg:
		if m.input.WheelIdle(msg.seq) {
			cmds = append(cmds, wheelIdleCmd(m.input.IdleDelay(), msg.seq))
		}
		cmds = append(cmds, m.animate())

	case frameMsg:
		if !m.animating {
			return m, nil
		}
		m.carousel.Step()
		if m.input.State() == input.Idle && m.carousel.Settled(settleEps) {
			m.carousel.Settle()
			m.animating = false
		} else {
			cmds = append(cmds, frameCmd(m.frameDelay))
		}

	case tickMsg:
		m.refreshMeter()
		cmds = append(cmds, tickCmd())

	case trackEndedMsg:
		if advanced, _ := m.ctl.TrackEnded(msg.gen); advanced {
			m.carousel.JumpTo(m.ctl.State().Index)
			cmds = append(cmds, m.animate())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = clampInt(msg.Width-coverWidth-20, 10, 50)
	}

	// Every load gets a fresh ended channel; wait on the new one.
	if gen := m.ctl.Generation(); gen != m.armedGen {
		m.armedGen = gen
		m.refreshMeter()
		cmds = append(cmds, waitEnded(m.ctl.Ended(), gen), m.titleCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelDown && msg.Action == tea.MouseActionPress:
		return m.wheel(wheelNotch)
	case msg.Button == tea.MouseButtonWheelUp && msg.Action == tea.MouseActionPress:
		return m.wheel(-wheelNotch)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.input.BeginDrag()
		m.dragY = msg.Y
		return m.animate()
	case msg.Action == tea.MouseActionMotion && m.input.State() == input.Dragging:
		m.input.DragMove(float64(msg.Y - m.dragY))
		m.dragY = msg.Y
		return m.animate()
	case msg.Action == tea.MouseActionRelease && m.input.State() == input.Dragging:
		m.input.EndDrag()
		return m.animate()
	}
	return nil
}

func (m *Model) wheel(delta float64) tea.Cmd {
	seq, ok := m.input.Wheel(delta)
	if !ok {
		return nil
	}
	return tea.Batch(wheelIdleCmd(m.input.IdleDelay(), seq), m.animate())
}

// animate starts the frame loop unless it is already running. The loop stops
// itself once the carousel is settled.
func (m *Model) animate() tea.Cmd {
	if m.animating {
		return nil
	}
	m.animating = true
	return frameCmd(m.frameDelay)
}

func (m *Model) adjustVolume(delta float64) {
	if m.meter == nil {
		return
	}
	m.meter.AdjustVolume(delta)
	m.volume = m.meter.Volume()
}

func (m *Model) refreshMeter() {
	if m.meter == nil {
		return
	}
	m.elapsed = m.meter.Position()
	m.duration = m.meter.Duration()
	m.volume = m.meter.Volume()
}

func (m Model) titleCmd() tea.Cmd {
	return tea.SetWindowTitle(windowTitle(m.ctl.Track().Title, !m.ctl.State().Playing))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	np := nowPlaying(m.ctl.Track(), m.ctl.State())

	var ratio float64
	if m.duration > 0 {
		ratio = float64(m.elapsed) / float64(m.duration)
	}
	if ratio > 1 {
		ratio = 1
	}

	var errMsg string
	if err := m.ctl.Err(); err != nil {
		errMsg = err.Error()
	}

	covers := renderCarousel(m.tracks, m.carousel.Geometry(), m.carousel.Live(), m.carousel.Active(), m.coverRows, coverWidth, m.carouselRows())
	panel := renderPanel(np, m.elapsed, m.duration, m.volume, m.progress.ViewAs(ratio), errMsg)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, covers, panel))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) carouselRows() int {
	if m.height > 0 {
		return max(m.height-3, m.coverRows)
	}
	return int(3 * m.carousel.Geometry().ItemExtent)
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — coverflow"
	}
	return "▶ " + title + " — coverflow"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
