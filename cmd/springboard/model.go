package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/surfbryce/motion/spring"
)

const (
	wobbleFrequency = 6.0
	wobbleDamping   = 0.18
	tintFrequency   = 1.2
	tintDamping     = 1.0

	puckKick   = 3.0
	wobbleKick = 30.0

	frequencyStep = 0.5
	dampingStep   = 0.1

	trackRows      = 5
	wobbleRowScale = 2.5
)

// model drives the playground: a puck spring chasing a goal marker along a
// rail, a wobble spring that rings the rail on every send, and a tint spring
// that trails the puck to blend the accent color.
type model struct {
	presets  []Preset
	selected int
	tuned    bool

	puck   *spring.Spring
	wobble *spring.Spring
	tint   *spring.Spring

	arrival  progress.Model
	lastTick time.Time
	fps      int
	width    int
	quitting bool
}

func newModel(presets []Preset, fps int) (model, error) {
	p := presets[0]
	puck, err := spring.NewWithGoal(0, p.Frequency, p.Damping, 1)
	if err != nil {
		return model{}, err
	}
	wobble, err := spring.New(0, wobbleFrequency, wobbleDamping)
	if err != nil {
		return model{}, err
	}
	tint, err := spring.New(0, tintFrequency, tintDamping)
	if err != nil {
		return model{}, err
	}

	arrival := progress.New(
		progress.WithScaledGradient("#5A56E0", "#EE6FF8"),
		progress.WithoutPercentage(),
	)

	return model{
		presets: presets,
		puck:    puck,
		wobble:  wobble,
		tint:    tint,
		arrival: arrival,
		fps:     fps,
	}, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.fps), tea.SetWindowTitle("springboard"))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m model) handleMsg(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case "h":
			m.send(0)
		case "l":
			m.send(1)
		case " ":
			m.send(rand.Float64())
		case "g":
			m.send(0.5)
		case "k":
			m.puck.SetVelocity(m.puck.Velocity() + puckKick)
		case "tab":
			m.selected = (m.selected + 1) % len(m.presets)
			m.tuned = false
			m.retune()
		case "shift+tab":
			m.selected = (m.selected + len(m.presets) - 1) % len(m.presets)
			m.tuned = false
			m.retune()
		case "+", "=":
			m.tuned = true
			m.adjustFrequency(frequencyStep)
		case "-", "_":
			m.tuned = true
			m.adjustFrequency(-frequencyStep)
		case "d":
			m.tuned = true
			m.adjustDamping(dampingStep)
		case "D":
			m.tuned = true
			m.adjustDamping(-dampingStep)
		case "r":
			m.puck.SetPosition(0)
			m.puck.SetVelocity(0)
			m.puck.SetGoal(1)
			m.wobble.SetPosition(0)
			m.wobble.SetVelocity(0)
			m.tint.SetPosition(0)
			m.tint.SetVelocity(0)
			m.tint.SetGoal(0)
		}
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now

		// Settled springs stay parked; any key that moves a goal or
		// injects velocity unparks them on the next tick.
		if !m.settled() {
			m.tint.SetGoal(m.puck.Advance(dt))
			m.wobble.Advance(dt)
			m.tint.Advance(dt)
		}
		return m, tickCmd(m.fps)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		barWidth := msg.Width - 8
		if barWidth < 20 {
			barWidth = 20
		}
		if barWidth > 60 {
			barWidth = 60
		}
		m.arrival.Width = barWidth
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	w := m.width
	if w < 44 {
		w = 72
	}
	trackWidth := w - 6
	if trackWidth > 72 {
		trackWidth = 72
	}

	name := m.presets[m.selected].Name
	if m.tuned {
		name += "*"
	}

	state := "moving"
	if m.settled() {
		state = "settled"
	}

	tuning := fmt.Sprintf("%s   f %.2f Hz   d %.2f",
		nameStyle.Render(name),
		m.puck.Frequency(), m.puck.DampingRatio())
	motion := fmt.Sprintf("x %.3f   v %+.3f", m.puck.Position(), m.puck.Velocity())

	lines := "\n"
	lines += "  " + headerStyle.Render("springboard") + "\n"
	lines += "\n"
	lines += "  " + tuning + "\n"
	lines += "  " + readoutStyle.Render(motion) + "   " + statusStyle.Render(state) + "\n"
	lines += "\n"
	lines += renderTrack(m.puck.Position(), m.puck.Goal(), m.wobble.Position(), m.tintColor(), trackWidth) + "\n"
	lines += "\n"
	lines += "  " + m.arrival.ViewAs(m.arrivalRatio()) + "\n"
	lines += "\n"
	lines += "  " + helpStyle.Render(helpText()) + "\n"

	return lines
}

// send aims the puck at a new goal and rings the wobble lane.
func (m model) send(goal float64) {
	m.puck.SetGoal(goal)
	m.wobble.SetVelocity(m.wobble.Velocity() + wobbleKick)
}

func (m model) settled() bool {
	return m.puck.CanSleep() && m.wobble.CanSleep() && m.tint.CanSleep()
}

// retune points the puck spring at the selected preset. Presets are
// non-negative and the adjust keys clamp at zero, so the setters cannot
// fail here.
func (m model) retune() {
	p := m.presets[m.selected]
	_ = m.puck.SetFrequency(p.Frequency)
	_ = m.puck.SetDampingRatio(p.Damping)
}

func (m model) adjustFrequency(delta float64) {
	next := m.puck.Frequency() + delta
	if next < 0 {
		next = 0
	}
	_ = m.puck.SetFrequency(next)
}

func (m model) adjustDamping(delta float64) {
	next := m.puck.DampingRatio() + delta
	if next < 0 {
		next = 0
	}
	_ = m.puck.SetDampingRatio(next)
}

// arrivalRatio maps the puck's remaining distance onto the progress bar,
// full when the puck sits on the goal.
func (m model) arrivalRatio() float64 {
	distance := math.Abs(m.puck.Goal() - m.puck.Position())
	if distance > 1 {
		distance = 1
	}
	return 1 - distance
}

func (m model) tintColor() string {
	t := clamp01(m.tint.Position())
	return coolColor.BlendHcl(warmColor, t).Clamped().Hex()
}

// renderTrack draws the rail with the goal marker and the puck, displaced
// vertically by the wobble spring.
func renderTrack(position, goal, wobble float64, tint string, width int) string {
	if width < 16 {
		width = 16
	}

	puckCol := int(math.Round(clamp01(position) * float64(width-1)))
	goalCol := int(math.Round(clamp01(goal) * float64(width-1)))

	rowOffset := int(math.Round(wobble * wobbleRowScale))
	if rowOffset > 2 {
		rowOffset = 2
	}
	if rowOffset < -2 {
		rowOffset = -2
	}
	puckRow := 2 - rowOffset

	puck := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tint)).Render("●")

	var b strings.Builder
	for row := range trackRows {
		cells := make([]string, width)
		for col := range cells {
			cells[col] = " "
		}
		if row == 2 {
			for col := range cells {
				cells[col] = "─"
			}
			cells[goalCol] = goalStyle.Render("◆")
		}
		if row == puckRow {
			cells[puckCol] = puck
		}
		b.WriteString("  ")
		b.WriteString(strings.Join(cells, ""))
		if row < trackRows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
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

var (
	coolColor, _ = colorful.Hex("#5A56E0")
	warmColor, _ = colorful.Hex("#EE6FF8")
)
