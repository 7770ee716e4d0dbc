package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/surfbryce/motion/spring"
)

const (
	// Meter ballistics. Slightly under critical damping so a drum hit
	// lands with a visible snap instead of an easing curve.
	meterFrequency = 8.0
	meterDamping   = 0.85

	// levelWindowBytes is how much recent PCM feeds each reading, 50ms.
	levelWindowBytes = bytesPerSec / 20

	// peakFall is how far the peak marker slides per second once the
	// level below it drops away.
	peakFall = 0.4
)

// meter draws a stereo VU display. Each channel's bar is a spring chasing
// the loudness of the PCM currently leaving the tap, which gives the meter
// its ballistics without any attack/release bookkeeping.
type meter struct {
	player *player
	out    io.Writer

	left  *spring.Spring
	right *spring.Spring

	leftPeak  float64
	rightPeak float64

	barWidth int
	rows     int
}

func newMeter(p *player, out io.Writer, barWidth int) (*meter, error) {
	if barWidth < 10 {
		barWidth = 10
	}

	left, err := spring.New(0, meterFrequency, meterDamping)
	if err != nil {
		return nil, err
	}
	right, err := spring.New(0, meterFrequency, meterDamping)
	if err != nil {
		return nil, err
	}

	return &meter{
		player:   p,
		out:      out,
		left:     left,
		right:    right,
		barWidth: barWidth,
	}, nil
}

// frame is the scheduler callback: read the tap, retarget the springs,
// advance them by the measured delta and repaint.
func (m *meter) frame(dt float64) {
	l, r := stereoRMS(m.player.level.tap.Recent(levelWindowBytes))
	m.left.SetGoal(rmsToLevel(l))
	m.right.SetGoal(rmsToLevel(r))

	leftLevel := clamp01(m.left.Advance(dt))
	rightLevel := clamp01(m.right.Advance(dt))

	m.leftPeak = holdPeak(m.leftPeak, leftLevel, dt)
	m.rightPeak = holdPeak(m.rightPeak, rightLevel, dt)

	m.paint(leftLevel, rightLevel)
}

func (m *meter) paint(leftLevel, rightLevel float64) {
	var sb strings.Builder
	if m.rows > 0 {
		fmt.Fprintf(&sb, "\x1b[%dA", m.rows)
	}

	lines := []string{
		"  L  " + renderBar(leftLevel, m.leftPeak, m.barWidth),
		"  R  " + renderBar(rightLevel, m.rightPeak, m.barWidth),
		"  " + timeStyle.Render(formatDuration(m.player.Position())+" / "+formatDuration(m.player.Duration())),
	}
	for _, line := range lines {
		sb.WriteString("\r\x1b[2K")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	io.WriteString(m.out, sb.String())
	m.rows = len(lines)
}

func holdPeak(peak, level, dt float64) float64 {
	if level > peak {
		return level
	}
	peak -= peakFall * dt
	if peak < level {
		peak = level
	}
	return peak
}

// stereoRMS computes per-channel RMS from interleaved 16-bit little-endian
// stereo PCM, normalized to 0..1.
func stereoRMS(data []byte) (left, right float64) {
	frames := len(data) / 4
	if frames == 0 {
		return 0, 0
	}

	var leftSum, rightSum float64
	for i := 0; i < frames*4; i += 4 {
		l := float64(int16(binary.LittleEndian.Uint16(data[i:]))) / 32768.0
		r := float64(int16(binary.LittleEndian.Uint16(data[i+2:]))) / 32768.0
		leftSum += l * l
		rightSum += r * r
	}
	return math.Sqrt(leftSum / float64(frames)), math.Sqrt(rightSum / float64(frames))
}

// rmsToLevel maps RMS loudness onto bar length along a dB scale, so quiet
// passages still move the meter instead of hiding below the first cell.
func rmsToLevel(rms float64) float64 {
	const floor = -40.0 // dB treated as silence
	if rms < 1e-6 {
		return 0
	}
	return clamp01(1 - 20*math.Log10(rms)/floor)
}

func renderBar(level, peak float64, width int) string {
	filled := int(level * float64(width))
	peakPos := int(peak * float64(width))
	if peakPos >= width {
		peakPos = width - 1
	}

	bar := make([]rune, width)
	for i := range bar {
		switch {
		case i < filled:
			bar[i] = '█'
		case i == peakPos && peakPos > 0:
			bar[i] = '│'
		default:
			bar[i] = '─'
		}
	}

	var sb strings.Builder
	for i, ch := range bar {
		switch {
		case ch == '│':
			sb.WriteString(peakStyle.Render(string(ch)))
		case i < width*6/10:
			sb.WriteString(lowStyle.Render(string(ch)))
		case i < width*8/10:
			sb.WriteString(midStyle.Render(string(ch)))
		default:
			sb.WriteString(hotStyle.Render(string(ch)))
		}
	}
	return sb.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

var (
	lowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3CE074"))

	midStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0C648"))

	hotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F26056"))

	peakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFCD2"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#888888"})
)
