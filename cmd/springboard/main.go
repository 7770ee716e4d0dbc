package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	presetsPath := flag.String("presets", "", "YAML file with spring presets")
	fps := flag.Int("fps", 60, "animation frame rate")
	flag.Parse()

	presets := defaultPresets()
	if *presetsPath != "" {
		loaded, err := loadPresets(*presetsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		presets = loaded
	}

	m, err := newModel(presets, *fps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
