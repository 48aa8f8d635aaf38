package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles (defined at package init for reuse)
var (
	// Color styles
	styleGreen  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleYellow = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	styleRed    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleCyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleGray   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Panel styles
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	styleEventInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styleEventWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	styleEventError = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	budget := m.renderBudget()
	stats := m.renderStats()
	best := m.renderBest()
	events := m.renderEvents()
	footer := m.renderFooter()

	// Stack panels vertically
	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		budget,
		stats,
		best,
		events,
		footer,
	)

	return body
}

func (m Model) renderHeader() string {
	runtime := time.Since(m.snapshot.StartTime)
	return styleHeader.Render(fmt.Sprintf(
		"%s │ task=%s │ run=%d │ seed=%d │ runtime=%s",
		m.snapshot.ProjectName,
		m.snapshot.Task,
		m.snapshot.Run,
		m.snapshot.Seed,
		FormatDuration(runtime),
	))
}

func (m Model) renderBudget() string {
	if m.snapshot.EvalLimit <= 0 {
		return stylePanel.Render(fmt.Sprintf(
			"Budget: evals=%d │ rate=%s/s │ %s",
			m.snapshot.EvalsUsed,
			styleCyan.Render(fmt.Sprintf("%.0f", m.snapshot.RatePerSec)),
			styleDim.Render("(unlimited)"),
		))
	}

	frac := float64(m.snapshot.EvalsUsed) / float64(m.snapshot.EvalLimit)
	if frac > 1 {
		frac = 1
	}
	bar := m.progress.ViewAs(frac)
	return stylePanel.Render(fmt.Sprintf(
		"Budget: %s %d/%d │ rate=%s/s",
		bar,
		m.snapshot.EvalsUsed,
		m.snapshot.EvalLimit,
		styleCyan.Render(fmt.Sprintf("%.0f", m.snapshot.RatePerSec)),
	))
}

func (m Model) renderStats() string {
	return stylePanel.Render(fmt.Sprintf(
		"Stats: gen=%d │ dups=%d │ discoveries=%d",
		m.snapshot.Generation,
		m.snapshot.Duplicates,
		m.snapshot.Discoveries,
	))
}

func (m Model) renderBest() string {
	formula := m.snapshot.BestFormula
	if formula == "" {
		return stylePanel.Render(fmt.Sprintf(
			"Best: %s", styleDim.Render("(none yet)"),
		))
	}
	if m.width > 20 && len(formula) > m.width-30 {
		formula = formula[:m.width-30] + "…"
	}

	return stylePanel.Render(fmt.Sprintf(
		"Best: mse=%s │ curiosity=%s │ %s",
		m.mseChangeColor(m.snapshot.BestMSE),
		m.curiosityColor(m.snapshot.Curiosity),
		styleCyan.Render(formula),
	))
}

func (m Model) renderEvents() string {
	// viewport.Model is a struct, not a pointer - never nil
	// Content is updated in Update() on MsgEvent, not here
	if !m.ready || m.width == 0 {
		return stylePanel.Render("Events: initializing...")
	}
	return stylePanel.Render("Events (scroll):") + "\n" + m.viewport.View()
}

func (m Model) renderFooter() string {
	hints := []string{"q: quit", "p: pause"}
	if m.paused {
		hints = append(hints, "(PAUSED)")
	}

	hintStrings := make([]string, len(hints))
	for i, h := range hints {
		hintStrings[i] = styleDim.Render(h)
	}

	return styleGray.Render("│ " + strings.Join(hintStrings, " │ ") + " │")
}

// Color helper functions
// NOTE: lower MSE is better, so improvement arrows point down
func (m Model) mseChangeColor(mse float64) string {
	if m.prevBest > 0 && mse < m.prevBest {
		return styleGreen.Render(fmt.Sprintf("%.6f ↓", mse))
	}
	if m.prevBest > 0 && mse > m.prevBest {
		return styleRed.Render(fmt.Sprintf("%.6f ↑", mse))
	}
	return styleDim.Render(fmt.Sprintf("%.6f =", mse))
}

func (m Model) curiosityColor(c float64) string {
	if c > 0.9 {
		return styleGreen.Render(fmt.Sprintf("%.4f", c))
	}
	if c > 0.5 {
		return styleYellow.Render(fmt.Sprintf("%.4f", c))
	}
	return styleRed.Render(fmt.Sprintf("%.4f", c))
}

func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}
