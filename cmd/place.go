package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/analogplace/internal/db"
	"github.com/cwbudde/analogplace/internal/opt"
	"github.com/cwbudde/analogplace/internal/place"
	"github.com/cwbudde/analogplace/internal/store"
)

var (
	netlistPath string
	outPath     string
	order       string
	execMode    string
	iters       int
	workers     int
	popSize     int
	rate        float64
	alpha       float64
	seed        int64
	dataDir     string
	jobID       string
)

var placeCmd = &cobra.Command{
	Use:   "place",
	Short: "Run global placement on a netlist",
	Long:  `Runs analytical global placement and writes the placed netlist plus a persisted solution and objective trace.`,
	RunE:  runPlacement,
}

func init() {
	placeCmd.Flags().StringVar(&netlistPath, "netlist", "", "Netlist JSON path (required)")
	placeCmd.Flags().StringVar(&outPath, "out", "placed.json", "Placed netlist output path")
	placeCmd.Flags().StringVar(&order, "order", place.OrderFirst, "Optimization order: first (gradient) or zero (derivative-free)")
	placeCmd.Flags().StringVar(&execMode, "exec", "parallel", "Task graph execution: parallel, sequential")
	placeCmd.Flags().IntVar(&iters, "iters", 300, "Max outer iterations")
	placeCmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = all CPUs)")
	placeCmd.Flags().IntVar(&popSize, "pop", 30, "Population size (zero-order only)")
	placeCmd.Flags().Float64Var(&rate, "rate", 0.05, "Learning rate (first-order only)")
	placeCmd.Flags().Float64Var(&alpha, "alpha", 0.5, "Smoothing parameter for LSE wirelength and overlap penalties")
	placeCmd.Flags().Int64Var(&seed, "seed", 6, "Random seed for initial placement")
	placeCmd.Flags().StringVar(&dataDir, "data", "./data", "Base directory for solutions and traces")
	placeCmd.Flags().StringVar(&jobID, "job-id", "", "Job identifier (default: random UUID)")

	placeCmd.MarkFlagRequired("netlist")
	rootCmd.AddCommand(placeCmd)
}

func runPlacement(cmd *cobra.Command, args []string) error {
	if jobID == "" {
		jobID = uuid.NewString()
	}
	slog.Info("Starting placement", "job_id", jobID, "netlist", netlistPath, "order", order, "iters", iters)

	database, err := db.LoadFile(netlistPath)
	if err != nil {
		return err
	}
	slog.Info("Loaded netlist",
		"cells", database.NumCells(),
		"nets", database.NumNets(),
		"sym_groups", database.NumSymGroups(),
	)

	solutionStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create solution store: %w", err)
	}
	trace, err := store.NewTraceWriter(dataDir, jobID, false)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	defer trace.Close()

	cfg := place.DefaultConfig()
	cfg.Order = order
	cfg.MaxIters = iters
	cfg.Rate = rate
	cfg.Alpha = alpha
	cfg.Seed = seed
	cfg.Workers = workers
	switch execMode {
	case "parallel":
		cfg.Mode = place.ExecParallel
	case "sequential":
		cfg.Mode = place.ExecSequential
	default:
		return fmt.Errorf("unknown execution mode: %s", execMode)
	}
	if order == place.OrderZero {
		cfg.Optimizer = opt.NewMayfly(iters, popSize, seed)
	}
	cfg.Progress = func(p place.Progress) {
		err := trace.Write(store.TraceEntry{
			Iteration:   p.Iteration,
			Objective:   p.Objective,
			Hpwl:        p.Hpwl,
			Overlap:     p.Overlap,
			OutOfBounds: p.OutOfBounds,
			Asymmetry:   p.Asymmetry,
			Path:        p.Path,
			Timestamp:   time.Now(),
		})
		if err != nil {
			slog.Warn("Failed to write trace entry", "iteration", p.Iteration, "error", err)
		}
	}

	placer, err := place.New(database, cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := placer.Solve()
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	slog.Info("Placement complete",
		"job_id", jobID,
		"objective", result.Objective,
		"hpwl", result.Hpwl,
		"iterations", result.Iterations,
		"elapsed", elapsed.String(),
	)

	if err := database.SaveFile(outPath); err != nil {
		return err
	}
	slog.Info("Wrote placed netlist", "path", outPath)

	sol := &store.Solution{
		JobID:       jobID,
		Params:      result.Params,
		Objective:   result.Objective,
		Hpwl:        result.Hpwl,
		Overlap:     result.Overlap,
		OutOfBounds: result.OutOfBounds,
		Asymmetry:   result.Asymmetry,
		Path:        result.Path,
		Iterations:  result.Iterations,
		Timestamp:   time.Now(),
		Config: store.JobConfig{
			NetlistPath: netlistPath,
			Order:       order,
			MaxIters:    iters,
			Seed:        seed,
			Alpha:       alpha,
			Rate:        rate,
		},
	}
	for i := range database.Cells {
		sol.Cells = append(sol.Cells, store.PlacedCell{
			Name: database.Cells[i].Name,
			X:    database.Cells[i].X,
			Y:    database.Cells[i].Y,
		})
	}
	if err := solutionStore.SaveSolution(jobID, sol); err != nil {
		return err
	}
	if err := trace.Flush(); err != nil {
		slog.Warn("Failed to flush trace", "error", err)
	}

	return nil
}
