package logx

import (
	"fmt"
	"strings"
	"time"
)

// LogRunStart - run header line
func LogRunStart(task string, run int, seed int64, budget int64, popSize int) {
	budgetStr := "unlimited"
	if budget > 0 {
		budgetStr = formatNumber(int(budget))
	}
	fmt.Printf("%s  %s  task=%s run=%d seed=%d budget=%s pop=%d\n",
		C(gray, time.Now().UTC().Format("15:04:05Z")),
		Channel("RUN "),
		task, run, seed, budgetStr, popSize,
	)
}

// LogGeneration - single line per-generation progress log
func LogGeneration(gen int, bestFit float64, used int64, dups int64) {
	fmt.Printf("%s  %s  gen=%d  best=%s  evals=%s  dups=%s\n",
		C(gray, time.Now().UTC().Format("15:04:05Z")),
		Channel("GEN "),
		gen,
		MSEColor(bestFit),
		formatNumber(int(used)),
		formatNumber(int(dups)),
	)
}

// LogRunDone - run summary line with the final clean rescore
func LogRunDone(task string, formula string, mse, curiosity float64, used int64, elapsed time.Duration) {
	fmt.Printf("%s  %s  task=%s  mse=%s  curiosity=%s  evals=%s  runtime=%s\n    %s\n",
		C(gray, time.Now().UTC().Format("15:04:05Z")),
		Channel("RUN "),
		task,
		MSEColor(mse),
		CuriosityColor(curiosity),
		formatNumber(int(used)),
		FormatDuration(elapsed),
		Highlight(formula),
	)
}

// LogEvalRate - evaluation throughput line
func LogEvalRate(used int64, rate float64, remaining int64) {
	fmt.Printf("%s  %s  evals=%s  rate=%.0f/s  remaining=%s\n",
		C(gray, time.Now().UTC().Format("15:04:05Z")),
		Channel("EVAL"),
		formatNumber(int(used)),
		rate,
		formatNumber(int(remaining)),
	)
}

// formatNumber formats a number with thousands separators (e.g., 12,345)
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []string
	for i := len(s); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{s[start:i]}, result...)
	}
	return strings.Join(result, ",")
}

// FormatNumberSimple formats a number with thousands separators (exported version)
func FormatNumberSimple(n int) string {
	return formatNumber(n)
}
