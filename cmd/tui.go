// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/ubxstat/pkg/ubx"
)

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// Latest navigation data, one slot per message kind
type navData struct {
	status   *ubx.NavStatus
	position *ubx.NavPosLLH
	dop      *ubx.NavDOP
	updated  time.Time
}

// TUI model
type model struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         *ubx.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	synchronized  bool
	skippedFrames int
	disconnected  bool
	spinner       spinner.Model
	width         int
	height        int
	quitting      bool
	nav           navData
}

// Messages
type tickMsg time.Time
type syncMsg struct {
	skippedFrames int
}

// formatUptime formats uptime in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	plural := func(n uint64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	parts := []string{}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func initialModel(connInfo string, statsInterval int, showAll bool) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	return model{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         ubx.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		spinner:       s,
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.synchronized {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case syncMsg:
		m.synchronized = true
		m.skippedFrames = msg.skippedFrames
		if msg.skippedFrames > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d partial frames", msg.skippedFrames), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case monitorEvent:
		switch {
		case msg.readErr != nil:
			m.disconnected = true
			m.addLogEntry(fmt.Sprintf("Connection closed: %v", msg.readErr), true)

		case msg.frameErr != nil:
			m.stats.Update(nil, msg.frameErr, nil)
			m.addLogEntry(fmt.Sprintf("FRAME ERROR: %v", msg.frameErr), true)

		case msg.msg != nil:
			m.stats.Update(msg.msg, nil, msg.validationErrors)
			m.recordNav(msg.msg)

			if len(msg.validationErrors) > 0 {
				for _, err := range msg.validationErrors {
					m.addLogEntry(fmt.Sprintf("%s: %s", msg.msg.Kind(), err.Message), true)
				}
			} else if m.showAll {
				m.addLogEntry(fmt.Sprintf("%s (valid)", msg.msg.Kind()), false)
			}
		}
	}

	return m, nil
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

// recordNav keeps the latest message of each kind for the navigation panel
func (m *model) recordNav(msg ubx.Message) {
	switch v := msg.(type) {
	case *ubx.NavStatus:
		m.nav.status = v
	case *ubx.NavPosLLH:
		m.nav.position = v
	case *ubx.NavDOP:
		m.nav.dop = v
	default:
		return
	}
	m.nav.updated = time.Now()
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("UBXSTAT - MONITOR"))
	s.WriteString("\n")
	mode := "Errors only"
	if m.showAll {
		mode = "All messages"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' resets stats, 'q' quits", m.connInfo, mode)))
	s.WriteString("\n\n")

	// Sync status
	switch {
	case m.disconnected:
		s.WriteString(errorStyle.Render("✗ Disconnected"))
		s.WriteString("\n\n")
	case !m.synchronized:
		s.WriteString(m.spinner.View())
		s.WriteString(warningStyle.Render(" Waiting for synchronization..."))
		s.WriteString("\n\n")
	default:
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.skippedFrames > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d partial frames)", m.skippedFrames)))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	var validPercent, errorPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		errorPercent = float64(m.stats.ErrorCount()) * 100.0 / float64(m.stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ErrorCount(), errorPercent)),
	))

	if m.stats.ChecksumErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d)\n",
			statsLabelStyle.Render("Checksum Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			headerStyle.Render("CK_A"), m.stats.ChecksumAErrors,
			headerStyle.Render("CK_B"), m.stats.ChecksumBErrors,
		))
	}

	if m.stats.UnknownTypes > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("Unknown Types:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.UnknownTypes)),
		))
	}

	if m.stats.Anomalies > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d, %s: %d, %s: %d)\n",
			statsLabelStyle.Render("Anomalies:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Anomalies)),
			headerStyle.Render("length"), m.stats.LengthMismatch,
			headerStyle.Render("fix"), m.stats.InvalidFix,
			headerStyle.Render("position"), m.stats.InvalidPosition,
			headerStyle.Render("DOP"), m.stats.HighDOP,
			headerStyle.Render("accuracy"), m.stats.LowAccuracy,
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Navigation section (only shown once something was decoded)
	if m.nav.status != nil || m.nav.position != nil || m.nav.dop != nil {
		s.WriteString(statsLabelStyle.Render("Latest Navigation:"))
		s.WriteString("\n")

		navContent := strings.Builder{}

		if st := m.nav.status; st != nil {
			fixStyle := statsValueStyle
			if !st.FixOK() {
				fixStyle = warningStyle
			}
			navContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				statsLabelStyle.Render("Fix:"), fixStyle.Render(fmt.Sprintf("%s (fixOk=%t)", st.GPSFix, st.FixOK())),
				statsLabelStyle.Render("Uptime:"), statsValueStyle.Render(formatUptime(uint64(st.MSSS))),
			))
		}

		if pos := m.nav.position; pos != nil {
			navContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				statsLabelStyle.Render("Position:"), statsValueStyle.Render(fmt.Sprintf("%.7f, %.7f", pos.LatDegrees(), pos.LonDegrees())),
				statsLabelStyle.Render("MSL:"), statsValueStyle.Render(fmt.Sprintf("%.1f m", float64(pos.HMSL)/1000)),
			))
			navContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render("Accuracy:"), statsValueStyle.Render(fmt.Sprintf("h %.2f m, v %.2f m", float64(pos.HAcc)/1000, float64(pos.VAcc)/1000)),
			))
		}

		if dop := m.nav.dop; dop != nil {
			navContent.WriteString(fmt.Sprintf("%s %s",
				statsLabelStyle.Render("hDOP:"), statsValueStyle.Render(fmt.Sprintf("%.2f", dop.HorizontalDOP())),
			))
		}

		s.WriteString(boxStyle.Render(strings.TrimRight(navContent.String(), "\n")))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 18 // Reserve space for header, stats and navigation
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
