package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg carries the wall-clock time of an animation frame. The delta
// between consecutive ticks is what the springs integrate over, so dropped
// or late frames slow nothing down.
type tickMsg time.Time

func tickCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 60
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
