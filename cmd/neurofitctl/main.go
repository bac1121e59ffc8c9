package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"neurofit/internal/storage"
	fitapi "neurofit/pkg/neurofit"
)

const defaultDBPath = "neurofit.db"

func main() {
	// Missing .env is fine; it only seeds optional defaults.
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "select":
		return runSelect(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "selection-runs":
		return runSelectionRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "problems":
		return runProblems(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: neurofitctl <init|train|select|runs|selection-runs|history|problems> [flags]", msg)
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	defaultKind := os.Getenv("NEUROFIT_STORE")
	if defaultKind == "" {
		defaultKind = storage.DefaultStoreKind()
	}
	defaultPath := os.Getenv("NEUROFIT_DB_PATH")
	if defaultPath == "" {
		defaultPath = defaultDBPath
	}
	storeKind = fs.String("store", defaultKind, "store backend: memory|sqlite")
	dbPath = fs.String("db-path", defaultPath, "sqlite database path")
	return storeKind, dbPath
}

func newClient(storeKind, dbPath string) (*fitapi.Client, func(), error) {
	client, err := fitapi.New(fitapi.Options{StoreKind: storeKind, DBPath: dbPath})
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, closeClient, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer closeClient()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	configPath := fs.String("config", "", "JSON config file, flags override")
	problemName := fs.String("problem", "", "builtin problem name")
	order := fs.Int("order", 0, "hidden neuron count")
	samples := fs.Int("samples", 0, "training sample count")
	seed := fs.Int64("seed", 0, "random seed")
	goal := fs.Float64("goal", 0, "performance goal, 0 disables")
	iterations := fs.Int("iterations", 0, "maximum iterations")
	maxTime := fs.Duration("max-time", 0, "maximum training time, 0 disables")
	rate := fs.Float64("rate", 0, "initial learning rate")
	history := fs.Bool("history", false, "retain per-iteration history")
	savePeriod := fs.Int("save-period", 0, "snapshot save period, 0 disables")
	displayPeriod := fs.Int("display-period", 0, "progress report period, 0 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req fitapi.TrainRequest
	if *configPath != "" {
		loaded, err := loadTrainRequestFromConfig(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}
	if *problemName != "" {
		req.Problem = *problemName
	}
	if *order > 0 {
		req.Order = *order
	}
	if *samples > 0 {
		req.TrainingSamples = *samples
	}
	if *seed != 0 {
		req.Seed = *seed
	}
	if *goal > 0 {
		req.Goal = *goal
	}
	if *iterations > 0 {
		req.MaximumIterations = *iterations
	}
	if *maxTime > 0 {
		req.MaximumTime = *maxTime
	}
	if *rate > 0 {
		req.LearningRate = *rate
	}
	if *history {
		req.ReserveHistory = true
	}
	if *savePeriod > 0 {
		req.SavePeriod = *savePeriod
	}
	if *displayPeriod > 0 {
		req.DisplayPeriod = *displayPeriod
		req.Reporter = stdoutReporter{}
	}

	client, closeClient, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer closeClient()

	summary, err := client.Train(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s\n", summary.RunID)
	fmt.Printf("  problem=%s order=%d\n", summary.Problem, summary.Order)
	fmt.Printf("  performance=%.6g iterations=%s elapsed=%s\n",
		summary.FinalPerformance,
		humanize.Comma(int64(summary.Iterations)),
		summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("  stopped on %s\n", summary.Stopping)
	return nil
}

func runSelect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	configPath := fs.String("config", "", "JSON config file, flags override")
	problemName := fs.String("problem", "", "builtin problem name")
	search := fs.String("search", "", "search algorithm: exhaustive|incremental")
	minOrder := fs.Int("min-order", 0, "minimum order")
	maxOrder := fs.Int("max-order", 0, "maximum order")
	increment := fs.Int("increment", 0, "order step for incremental search")
	trials := fs.Int("trials", 0, "training trials per order")
	workers := fs.Int("workers", 0, "concurrent trials per order")
	seed := fs.Int64("seed", 0, "random seed")
	reduction := fs.String("reduction", "", "trial reduction: minimum|maximum|mean")
	selectionGoal := fs.Float64("selection-goal", 0, "selection performance goal, 0 disables")
	maxEvaluations := fs.Int("max-orders", 0, "cap on evaluated orders, 0 disables")
	maxTime := fs.Duration("max-time", 0, "maximum search time, 0 disables")
	failureBudget := fs.Int("failure-budget", 0, "consecutive failure budget, 0 uses the search default")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req fitapi.SelectRequest
	if *configPath != "" {
		loaded, err := loadSelectRequestFromConfig(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}
	if *problemName != "" {
		req.Problem = *problemName
	}
	if *search != "" {
		req.Search = *search
	}
	if *minOrder > 0 {
		req.MinimumOrder = *minOrder
	}
	if *maxOrder > 0 {
		req.MaximumOrder = *maxOrder
	}
	if *increment > 0 {
		req.OrderIncrement = *increment
	}
	if *trials > 0 {
		req.Trials = *trials
	}
	if *workers > 0 {
		req.Workers = *workers
	}
	if *seed != 0 {
		req.Seed = *seed
	}
	if *reduction != "" {
		req.Reduction = *reduction
	}
	if *selectionGoal > 0 {
		req.SelectionGoal = *selectionGoal
	}
	if *maxEvaluations > 0 {
		req.MaximumIterations = *maxEvaluations
	}
	if *maxTime > 0 {
		req.MaximumTime = *maxTime
	}
	if *failureBudget > 0 {
		req.FailureBudget = *failureBudget
	}
	req.ReserveSelectionPerformanceData = true

	client, closeClient, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer closeClient()

	summary, err := client.SelectOrder(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s\n", summary.RunID)
	fmt.Printf("  problem=%s search=%s\n", summary.Problem, summary.Search)
	fmt.Printf("  optimal order=%d selection=%.6g training=%.6g\n",
		summary.OptimalOrder, summary.FinalSelectionPerformance, summary.FinalPerformance)
	for i, order := range summary.Orders {
		if i < len(summary.SelectionPerformances) {
			fmt.Printf("  order %d: selection=%.6g\n", order, summary.SelectionPerformances[i])
		}
	}
	fmt.Printf("  trials=%s elapsed=%s stopped on %s\n",
		humanize.Comma(int64(summary.Trials)),
		summary.Elapsed.Round(time.Millisecond),
		summary.Stopping)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, closeClient, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer closeClient()

	runs, err := client.Runs(ctx, fitapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no training runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  problem=%s order=%d performance=%.6g iterations=%s stop=%s\n",
			r.RunID, formatCreatedAt(r.CreatedAtUTC), r.Problem, r.Order,
			r.FinalPerformance, humanize.Comma(int64(r.Iterations)), r.Stopping)
	}
	return nil
}

func runSelectionRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("selection-runs", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, closeClient, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer closeClient()

	runs, err := client.SelectionRuns(ctx, fitapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no selection runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  problem=%s search=%s optimal=%d selection=%.6g trials=%s stop=%s\n",
			r.RunID, formatCreatedAt(r.CreatedAtUTC), r.Problem, r.Search,
			r.OptimalOrder, r.FinalSelectionPerformance, humanize.Comma(int64(r.Trials)), r.Stopping)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run", "", "training run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("history requires -run")
	}

	client, closeClient, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer closeClient()

	report, err := client.History(ctx, fitapi.HistoryRequest{RunID: *runID})
	if err != nil {
		return err
	}

	if len(report.Performances) == 0 {
		fmt.Printf("run %s has no retained history; train with -history\n", report.RunID)
	} else {
		fmt.Printf("run %s: %s performance points, convergence area %.6g\n",
			report.RunID, humanize.Comma(int64(len(report.Performances))), report.ConvergenceArea)
		for i, perf := range report.Performances {
			if i < len(report.GradientNorms) {
				fmt.Printf("  %4d  performance=%.6g gradient=%.6g\n", i, perf, report.GradientNorms[i])
			} else {
				fmt.Printf("  %4d  performance=%.6g\n", i, perf)
			}
		}
	}
	if len(report.Snapshots) > 0 {
		fmt.Printf("snapshots: %d\n", len(report.Snapshots))
		for _, s := range report.Snapshots {
			fmt.Printf("  iteration %d: %d parameters\n", s.Iteration, len(s.Parameters))
		}
	}
	return nil
}

func runProblems(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("problems", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := fitapi.New(fitapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	for _, name := range client.Problems() {
		fmt.Println(name)
	}
	return nil
}

func formatCreatedAt(createdAtUTC string) string {
	t, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return humanize.Time(t)
}

type stdoutReporter struct{}

func (stdoutReporter) ReportProgress(iteration int, performance float64) {
	fmt.Printf("iteration %d: performance=%.6g\n", iteration, performance)
}
