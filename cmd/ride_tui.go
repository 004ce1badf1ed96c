// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Veloforge

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/veloforge/rouleur/pkg/equipment"
)

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type rideTickMsg time.Time

type rideSampleMsg struct {
	sample *equipment.Telemetry
}

type rideLevelMsg struct {
	level int
	err   error
}

type rideEndedMsg struct {
	reason string
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

// rideModel is the Bubble Tea model for the ride screen
type rideModel struct {
	pump     *ridePump
	name     string
	connInfo string

	// Ride state
	sample     *equipment.Telemetry
	level      int
	started    time.Time
	lastSample time.Time
	samples    int

	// Direct level entry
	levelInput textinput.Model
	entering   bool

	// Event log
	events    []string
	maxEvents int

	// UI state
	width    int
	height   int
	ended    bool
	endCause string
	quitting bool
}

func initialRideModel(pump *ridePump, name, connInfo string) rideModel {
	ti := textinput.New()
	ti.Placeholder = "12"
	ti.CharLimit = 3
	ti.Width = 5

	return rideModel{
		pump:       pump,
		name:       name,
		connInfo:   connInfo,
		started:    time.Now(),
		levelInput: ti,
		events:     make([]string, 0),
		maxEvents:  8,
		width:      80,
		height:     24,
	}
}

func (m *rideModel) addEvent(text string) {
	entry := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), text)
	m.events = append(m.events, entry)
	if len(m.events) > m.maxEvents {
		m.events = m.events[len(m.events)-m.maxEvents:]
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m rideModel) Init() tea.Cmd {
	return rideTickCmd()
}

func rideTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return rideTickMsg(t)
	})
}

func (m rideModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case rideTickMsg:
		return m, rideTickCmd()

	case rideSampleMsg:
		m.sample = msg.sample
		m.lastSample = time.Now()
		m.samples++

	case rideLevelMsg:
		if msg.err != nil {
			m.addEvent(fmt.Sprintf("Level %d rejected: %v", msg.level, msg.err))
		} else {
			m.level = msg.level
			m.addEvent(fmt.Sprintf("Level set to %d", msg.level))
		}

	case rideEndedMsg:
		m.ended = true
		m.endCause = msg.reason
		m.addEvent(fmt.Sprintf("Ride ended: %s", msg.reason))
	}

	return m, nil
}

func (m rideModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entering {
		switch msg.String() {
		case "enter":
			if level, err := strconv.Atoi(strings.TrimSpace(m.levelInput.Value())); err == nil {
				m.requestLevel(level)
			}
			m.entering = false
			m.levelInput.Blur()
			m.levelInput.SetValue("")
			return m, nil
		case "esc":
			m.entering = false
			m.levelInput.Blur()
			m.levelInput.SetValue("")
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.levelInput, cmd = m.levelInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "+", "k":
		m.requestLevel(m.level + 1)

	case "down", "-", "j":
		m.requestLevel(m.level - 1)

	case "l":
		m.entering = true
		return m, m.levelInput.Focus()
	}

	return m, nil
}

// requestLevel hands a level change to the pump. A full channel means
// a change is already in flight; the keypress is dropped rather than
// queued up.
func (m *rideModel) requestLevel(level int) {
	if m.ended || level < 0 {
		return
	}
	select {
	case m.pump.levelCh <- level:
	default:
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m rideModel) View() string {
	if m.quitting {
		return "Ending ride...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	staleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder

	s.WriteString(titleStyle.Render("Rouleur - Ride"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s  |  %s  |  elapsed %s",
		m.name, m.connInfo, time.Since(m.started).Round(time.Second))))
	s.WriteString("\n\n")

	// Telemetry panel. Values dim when the stream goes quiet.
	vs := valueStyle
	if m.sample == nil || time.Since(m.lastSample) > 3*time.Second {
		vs = staleStyle
	}
	var cadence, power, speed string
	if m.sample != nil {
		cadence = fmt.Sprintf("%3d rpm", m.sample.Cadence)
		power = fmt.Sprintf("%4d W", m.sample.Power)
		speed = fmt.Sprintf("%5.2f km/h", m.sample.Speed)
	} else {
		cadence, power, speed = "-- rpm", "-- W", "-- km/h"
	}

	telemetry := fmt.Sprintf("%s %s   %s %s   %s %s",
		labelStyle.Render("Cadence:"), vs.Render(cadence),
		labelStyle.Render("Power:"), vs.Render(power),
		labelStyle.Render("Speed:"), vs.Render(speed))
	s.WriteString(boxStyle.Render(telemetry))
	s.WriteString("\n\n")

	// Level panel
	level := fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Level:"), valueStyle.Render(fmt.Sprintf("%2d", m.level)),
		labelStyle.Render("Samples:"), valueStyle.Render(fmt.Sprintf("%d", m.samples)))
	if m.entering {
		level += fmt.Sprintf("   %s %s", labelStyle.Render("Set:"), m.levelInput.View())
	}
	s.WriteString(boxStyle.Render(level))
	s.WriteString("\n\n")

	if m.ended {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Ride ended: %s", m.endCause)))
		s.WriteString("\n\n")
	}

	// Event log
	if len(m.events) > 0 {
		s.WriteString(labelStyle.Render("Events"))
		s.WriteString("\n")
		for _, e := range m.events {
			s.WriteString(headerStyle.Render("  " + e))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(headerStyle.Render("up/down adjust level  |  l type a level  |  q quit"))
	s.WriteString("\n")

	return s.String()
}
