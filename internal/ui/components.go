package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/coverflow/internal/carousel"
	"github.com/olivier-w/coverflow/internal/catalog"
	"github.com/olivier-w/coverflow/internal/playback"
)

// NowPlaying is what the info panel shows for the current track.
type NowPlaying struct {
	Title   string
	Artist  string
	Album   string
	Feature string
	Playing bool
	Accent  string
}

func nowPlaying(t catalog.Track, s playback.State) NowPlaying {
	return NowPlaying{
		Title:   t.Title,
		Artist:  t.Artist,
		Album:   t.Album,
		Feature: t.FeatureLine(),
		Playing: s.Playing,
		Accent:  t.Color,
	}
}

// StatusIcon is the play/pause indicator.
func (n NowPlaying) StatusIcon() string {
	if n.Playing {
		return "▶"
	}
	return "❚❚"
}

// renderCarousel draws the ring into rows lines of the given width with the
// active cover centered vertically.
func renderCarousel(tracks []catalog.Track, g carousel.Geometry, live float64, active, coverRows, width, rows int) string {
	// Shift the wrap window so half the ring sits above the active cover.
	s := g.Count / 2
	positions := g.Positions(live - float64(s)*g.ItemExtent)
	anchor := float64((rows-coverRows)/2) - float64(s-1)*g.ItemExtent

	canvas := make([]string, rows)
	blank := strings.Repeat(" ", width)
	for i := range canvas {
		canvas[i] = blank
	}

	prev, next := g.Neighbors(active)
	for i, p := range positions {
		top := int(math.Round(p + anchor))
		if top+coverRows <= 0 || top >= rows {
			continue
		}
		box := renderCover(tracks[i], i == active, i == prev || i == next, width, coverRows)
		for j, line := range strings.Split(box, "\n") {
			if r := top + j; r >= 0 && r < rows {
				canvas[r] = line
			}
		}
	}
	return strings.Join(canvas, "\n")
}

func renderCover(t catalog.Track, active, neighbor bool, width, rows int) string {
	style := coverStyle.
		Width(width).
		Height(rows).
		MaxHeight(rows).
		Background(lipgloss.Color(t.Color))
	switch {
	case active:
		style = style.Bold(true)
	case neighbor:
		style = style.Faint(true)
	default:
		style = style.Faint(true).Foreground(lipgloss.Color("#888888"))
	}

	label := truncate(t.Title, width-2)
	if rows > 1 && t.Artist != "" {
		label += "\n" + truncate(t.Artist, width-2)
	}
	return style.Render(label)
}

func renderPanel(np NowPlaying, elapsed, duration time.Duration, volume float64, bar string, errMsg string) string {
	header := headerStyle.Background(lipgloss.Color(np.Accent)).Render("coverflow")

	lines := []string{header, "", titleStyle.Render(np.Title)}
	if np.Artist != "" {
		lines = append(lines, artistStyle.Render(np.Artist))
	}
	if np.Feature != "" {
		lines = append(lines, artistStyle.Render(np.Feature))
	}
	if np.Album != "" {
		lines = append(lines, albumStyle.Render(np.Album))
	}

	statusText := "paused"
	if np.Playing {
		statusText = "playing"
	}
	lines = append(lines,
		"",
		fmt.Sprintf("%s %s %s",
			timeStyle.Render(formatDuration(elapsed)),
			bar,
			timeStyle.Render(formatDuration(duration))),
		"",
		statusStyle.Render(fmt.Sprintf("%s  %s    %s", np.StatusIcon(), statusText, renderVolumePercent(volume))),
	)
	if errMsg != "" {
		lines = append(lines, errorStyle.Render(errMsg))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(math.Round(vol*100)))
}

// formatDuration formats a duration as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
