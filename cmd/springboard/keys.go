package main

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText() string {
	return "h/l ends  space random  g center  k kick  tab preset  +/- freq  d/D damping  r reset  q quit"
}
