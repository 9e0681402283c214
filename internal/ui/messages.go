package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type frameMsg time.Time
type tickMsg time.Time

// wheelIdleMsg fires once the wheel has been quiet for the idle delay.
type wheelIdleMsg struct {
	seq uint64
}

// trackEndedMsg carries the load generation the wait was armed for.
type trackEndedMsg struct {
	gen uint64
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func wheelIdleCmd(d time.Duration, seq uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return wheelIdleMsg{seq: seq}
	})
}

func waitEnded(ended <-chan struct{}, gen uint64) tea.Cmd {
	if ended == nil {
		return nil
	}
	return func() tea.Msg {
		<-ended
		return trackEndedMsg{gen: gen}
	}
}
