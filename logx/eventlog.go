package logx

import (
	"fmt"
	"time"

	"formula_lab/tui"
)

// Convenience functions that forward to TUI

func LogNewBest(oldFit, newFit float64) {
	event := tui.Event{
		Timestamp: time.Now(),
		Type:      "BEST",
		Severity:  "info",
		Message:   fmt.Sprintf("Best fitness improved: %.6f → %.6f", oldFit, newFit),
	}
	tui.PushEvent(event)
}

func LogDiscoveryAdded(name string, curiosity float64, total int) {
	event := tui.Event{
		Timestamp: time.Now(),
		Type:      "DISC",
		Severity:  "info",
		Message:   fmt.Sprintf("Discovery recorded: %s (curiosity=%.4f, total=%d)", name, curiosity, total),
	}
	tui.PushEvent(event)
}

func LogBudgetExhausted(used int64) {
	event := tui.Event{
		Timestamp: time.Now(),
		Type:      "BUDGET",
		Severity:  "warning",
		Message:   fmt.Sprintf("Evaluation budget exhausted after %d evals", used),
	}
	tui.PushEvent(event)
}

func LogRefineStart(formula string, seed int64) {
	event := tui.Event{
		Timestamp: time.Now(),
		Type:      "REFINE",
		Severity:  "info",
		Message:   fmt.Sprintf("Refining %s (seed=%d)", formula, seed),
	}
	tui.PushEvent(event)
}

func LogReloadWarning(message string) {
	event := tui.Event{
		Timestamp: time.Now(),
		Type:      "RELOAD",
		Severity:  "warning",
		Message:   message,
	}
	tui.PushEvent(event)
}
