package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"formula_lab/logx"
	"formula_lab/tui"
)

// Task is a named ground-truth law the benchmark tries to rediscover.
type Task struct {
	Name   string
	Target TargetFunc
}

func lawWave(x float64) float64     { return 2.0*math.Sin(1.3*x) + 1.0 }
func lawExp(x float64) float64      { return math.Exp(0.3*x) - 1.0 }
func lawPower(x float64) float64    { return 0.5 * math.Pow(math.Abs(x), 2.5) }
func lawMixed(x float64) float64    { return 3.0*math.Sin(1.5*x) + 0.5*x*x + 2.0 }
func lawLogistic(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }
func lawQuad(x float64) float64     { return x * x }

func benchmarkTasks() []Task {
	return []Task{
		{"wave", lawWave},
		{"exp", lawExp},
		{"power", lawPower},
		{"mixed", lawMixed},
		{"logistic", lawLogistic},
		{"quad", lawQuad},
	}
}

type benchRow struct {
	Run  int
	Task string
	Seed int64
	Rec  DiscoveryRecord
	Time time.Duration
}

func main() {
	fmt.Println("Formula Lab - Symbolic Regression Bench")
	fmt.Println("=======================================")

	taskFlag := flag.String("task", "", "run a single task by name (default: all)")
	seedFlag := flag.Int64("seed", 1000, "base random seed")
	gensFlag := flag.Int("gens", 0, "generation limit (0 = run until budget is spent)")
	popFlag := flag.Int("pop", 120, "population size")
	budgetFlag := flag.Int64("budget", 600_000, "evaluation budget per run (0 = unlimited, requires -gens)")
	runsFlag := flag.Int("runs", 7, "repeats per task")
	workersFlag := flag.Int("workers", 0, "parallel evaluators (0 = all cores)")
	outFlag := flag.String("out", "discoveries.jsonl", "discovery log path")
	refineFlag := flag.Bool("refine", false, "re-run the top discoveries with seeds derived from their formulas")
	tuiFlag := flag.Bool("tui", false, "live terminal monitor")
	verboseFlag := flag.Bool("v", false, "per-generation logging")
	flag.Parse()

	Verbose = *verboseFlag

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\n\nReceived stop signal. Finishing current run...")
		cancel()
	}()

	if *tuiFlag {
		if err := tui.Start(ctx, tui.TUIConfig{Title: "formula_lab", Task: *taskFlag}); err != nil {
			fmt.Printf("%v, falling back to plain logs\n", err)
		} else {
			defer tui.Stop()
			Verbose = false // the monitor replaces per-generation lines
		}
	}

	sink, err := NewJSONLSink(*outFlag)
	if err != nil {
		fmt.Printf("Error opening discovery log: %v\n", err)
		os.Exit(1)
	}
	defer sink.Close()

	hof := NewHallOfFame(20)
	if recs, err := LoadRecentDiscoveries(*outFlag, 50); err == nil && len(recs) > 0 {
		hof.Records = append(hof.Records, recs...)
		hof.InitSnapshot()
		fmt.Printf("Reloaded %d discoveries from %s\n", hof.Len(), *outFlag)
	}

	tasks := benchmarkTasks()
	if *taskFlag != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.Name == *taskFlag {
				filtered = append(filtered, t)
			}
		}
		if len(filtered) == 0 {
			fmt.Printf("Unknown task %q\n", *taskFlag)
			os.Exit(1)
		}
		tasks = filtered
	}

	var rows []benchRow

bench:
	for r := 0; r < *runsFlag; r++ {
		for k, task := range tasks {
			if ctx.Err() != nil {
				break bench
			}
			seed := *seedFlag + int64(r)*17 + int64(k)
			row, err := runOne(task, r, seed, *gensFlag, *popFlag, *budgetFlag, *workersFlag, sink, hof)
			if err != nil {
				fmt.Printf("Error on task %s: %v\n", task.Name, err)
				os.Exit(1)
			}
			rows = append(rows, row)
		}
	}

	printSummary(rows)
	printHall(hof)

	if *refineFlag && ctx.Err() == nil {
		refineTop(hof, *gensFlag, *popFlag, *budgetFlag, *workersFlag, sink)
	}
}

func runOne(task Task, run int, seed int64, gens, pop int, budget int64, workers int, sink DiscoverySink, hof *HallOfFame) (benchRow, error) {
	logx.LogRunStart(task.Name, run, seed, budget, pop)

	start := time.Now()
	cfg := Config{
		Seed:        seed,
		Generations: gens,
		PopSize:     pop,
		EvalBudget:  budget,
		Workers:     workers,
		OnGeneration: func(gs GenStats) {
			elapsed := time.Since(start).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(gs.Used) / elapsed
			}
			tui.PushState(tui.StateSnapshot{
				ProjectName: "formula_lab",
				Task:        task.Name,
				Run:         run,
				Seed:        seed,
				StartTime:   start,
				Generation:  gs.Gen,
				EvalsUsed:   gs.Used,
				EvalLimit:   budget,
				RatePerSec:  rate,
				BestMSE:     gs.BestFitness,
				BestFormula: gs.BestFormula,
				Curiosity:   CuriosityFromMSE(gs.BestFitness),
				Duplicates:  gs.Duplicates,
				Discoveries: hof.Len(),
			})
		},
	}

	res, err := RunSearch(cfg, task.Target)
	if err != nil {
		return benchRow{}, err
	}

	rec := NewDiscovery(task.Name, seed, res)
	if err := sink.Append(rec); err != nil {
		return benchRow{}, err
	}
	hof.Add(rec)

	logx.LogRunDone(task.Name, rec.Formula, rec.MSE, rec.Curiosity, rec.EvalsUsed, res.Elapsed)
	if budget > 0 && res.EvalsUsed >= budget {
		logx.LogBudgetExhausted(res.EvalsUsed)
	}

	return benchRow{Run: run, Task: task.Name, Seed: seed, Rec: rec, Time: res.Elapsed}, nil
}

func printSummary(rows []benchRow) {
	if len(rows) == 0 {
		return
	}

	fmt.Println()
	w := logx.NewTableWriter(os.Stdout)
	fmt.Fprintln(w, "run\ttask\tseed\tevals\ttime\tmse\tcuriosity\tformula")
	var totalMSE float64
	var totalEvals int64
	var totalTime time.Duration
	for _, row := range rows {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%.6f\t%.4f\t%s\n",
			row.Run, row.Task, row.Seed, row.Rec.EvalsUsed,
			logx.FormatDuration(row.Time), row.Rec.MSE, row.Rec.Curiosity, row.Rec.Formula)
		totalMSE += row.Rec.MSE
		totalEvals += row.Rec.EvalsUsed
		totalTime += row.Time
	}
	w.Flush()

	n := float64(len(rows))
	fmt.Printf("\nBENCH | runs=%d | avg_mse=%.6f | avg_time=%s | avg_evals=%s\n",
		len(rows),
		totalMSE/n,
		logx.FormatDuration(time.Duration(float64(totalTime)/n)),
		logx.FormatNumberSimple(int(float64(totalEvals)/n)),
	)
}

func printHall(hof *HallOfFame) {
	top := hof.Top()
	if len(top) == 0 {
		return
	}
	fmt.Println("\nHall of discoveries:")
	for i, rec := range top {
		fmt.Printf("  #%-2d %s %-10s mse=%s curiosity=%s  %s\n",
			i+1,
			logx.Checkmark(rec.MSE < 0.01),
			rec.Name,
			logx.MSEColor(rec.MSE),
			logx.CuriosityColor(rec.Curiosity),
			rec.Formula,
		)
	}
}

// refineTop re-runs the best discoveries with seeds derived from their own
// formula text, so refinement is reproducible without storing extra state.
func refineTop(hof *HallOfFame, gens, pop int, budget int64, workers int, sink DiscoverySink) {
	top := hof.Top()
	if len(top) > 3 {
		top = top[:3]
	}
	byName := make(map[string]TargetFunc)
	for _, t := range benchmarkTasks() {
		byName[t.Name] = t.Target
	}

	for _, rec := range top {
		target, ok := byName[rec.Name]
		if !ok {
			continue
		}
		seed := SubSeedFromFormula(rec.Formula)
		logx.LogRefineStart(rec.Formula, seed)

		res, err := RunSearch(Config{
			Seed:        seed,
			Generations: gens,
			PopSize:     pop,
			EvalBudget:  budget,
			Workers:     workers,
		}, target)
		if err != nil {
			fmt.Printf("Refine error on %s: %v\n", rec.Name, err)
			continue
		}

		refined := NewDiscovery("refine:"+rec.Name, seed, res)
		if err := sink.Append(refined); err != nil {
			fmt.Printf("Refine log error: %v\n", err)
		}
		hof.Add(refined)
		logx.LogRunDone(refined.Name, refined.Formula, refined.MSE, refined.Curiosity, refined.EvalsUsed, res.Elapsed)
	}
}
