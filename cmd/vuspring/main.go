package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/surfbryce/motion/maid"
	"github.com/surfbryce/motion/scheduler"
)

func main() {
	fps := flag.Int("fps", 30, "meter refresh rate")
	width := flag.Int("width", 48, "bar width in cells")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: vuspring [flags] <file.mp3>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), *fps, *width); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, fps, width int) error {
	cleanup := maid.New()
	defer cleanup.Destroy()

	p, err := newPlayer(path)
	if err != nil {
		return err
	}
	cleanup.Give(p.Close)

	m, err := newMeter(p, os.Stdout, width)
	if err != nil {
		return err
	}

	fmt.Printf("  playing %s\n\n", filepath.Base(path))
	fmt.Print("\x1b[?25l")
	cleanup.Give(func() { fmt.Print("\x1b[?25h") })

	sched := scheduler.New(fps)
	cleanup.Give(sched.OnFrame(m.frame))
	sched.Start()
	cleanup.Give(sched.Stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-p.Done():
	case <-sigCh:
	}
	return nil
}
