// Package neurofit is the public entry point for training perceptrons and
// searching their optimal order against the builtin problems. The CLI is a
// thin shell over this package.
package neurofit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"neurofit/internal/model"
	"neurofit/internal/network"
	"neurofit/internal/numeric"
	"neurofit/internal/objective"
	"neurofit/internal/problem"
	"neurofit/internal/selection"
	"neurofit/internal/storage"
	"neurofit/internal/training"
)

const defaultDBPath = "neurofit.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

type TrainRequest struct {
	Problem          string
	Order            int
	TrainingSamples  int
	SelectionSamples int
	Seed             int64

	Goal              float64
	Tolerance         float64
	MaximumIterations int
	MaximumTime       time.Duration
	LearningRate      float64

	ReserveHistory bool
	DisplayPeriod  int
	SavePeriod     int
	Reporter       training.Reporter
}

type TrainSummary struct {
	RunID            string
	Problem          string
	Order            int
	FinalPerformance float64
	Iterations       int
	Elapsed          time.Duration
	Stopping         string
}

type SelectRequest struct {
	Problem          string
	Search           string
	MinimumOrder     int
	MaximumOrder     int
	OrderIncrement   int
	TrainingSamples  int
	SelectionSamples int
	Seed             int64

	Trials    int
	Workers   int
	Reduction string

	SelectionGoal     float64
	MaximumIterations int
	MaximumTime       time.Duration
	FailureBudget     int

	TrainerGoal              float64
	TrainerMaximumIterations int

	ReservePerformanceData          bool
	ReserveSelectionPerformanceData bool
}

type SelectSummary struct {
	RunID                     string
	Problem                   string
	Search                    string
	Orders                    []int
	Performances              []float64
	SelectionPerformances     []float64
	OptimalOrder              int
	FinalPerformance          float64
	FinalSelectionPerformance float64
	Trials                    int
	Elapsed                   time.Duration
	Stopping                  string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Problem          string
	Trainer          string
	Order            int
	FinalPerformance float64
	Iterations       int
	Stopping         string
}

type SelectionRunItem struct {
	RunID                     string
	CreatedAtUTC              string
	Problem                   string
	Search                    string
	OptimalOrder              int
	FinalSelectionPerformance float64
	Trials                    int
	Stopping                  string
}

type HistoryRequest struct {
	RunID string
}

// HistoryReport replays a stored run. ConvergenceArea is the integral of
// the performance curve over the iteration axis; a smaller area means the
// run spent less of its budget at high error.
type HistoryReport struct {
	RunID           string
	Performances    []float64
	GradientNorms   []float64
	ConvergenceArea float64
	Snapshots       []model.SnapshotRecord
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Problems lists the builtin problem names.
func (c *Client) Problems() []string {
	return problem.Names()
}

func (c *Client) Train(ctx context.Context, req TrainRequest) (TrainSummary, error) {
	if req.Problem == "" {
		req.Problem = "sine"
	}
	if req.Order <= 0 {
		req.Order = 3
	}
	if req.TrainingSamples <= 0 {
		req.TrainingSamples = 40
	}
	if req.SelectionSamples <= 0 {
		req.SelectionSamples = 20
	}
	if req.MaximumIterations <= 0 {
		req.MaximumIterations = 200
	}

	if err := c.store.Init(ctx); err != nil {
		return TrainSummary{}, err
	}

	p, err := problem.Get(req.Problem, req.TrainingSamples, req.SelectionSamples, req.Seed)
	if err != nil {
		return TrainSummary{}, err
	}

	net, err := network.NewPerceptron(1, req.Order, 1)
	if err != nil {
		return TrainSummary{}, err
	}
	net.Randomize(rand.New(rand.NewSource(req.Seed)))

	functional := &objective.SumSquaredError{
		Net:     net,
		Inputs:  p.TrainingInputs,
		Targets: p.TrainingTargets,
	}

	runID := uuid.NewString()
	trainer := training.GradientDescent{
		LearningRate:      req.LearningRate,
		Goal:              req.Goal,
		Tolerance:         req.Tolerance,
		MaximumIterations: req.MaximumIterations,
		MaximumTime:       req.MaximumTime,
		ReserveHistory:    req.ReserveHistory,
		DisplayPeriod:     req.DisplayPeriod,
		Reporter:          req.Reporter,
	}
	if req.SavePeriod > 0 {
		trainer.SavePeriod = req.SavePeriod
		trainer.Snapshots = &storeSnapshotSaver{store: c.store, runID: runID}
	}

	results, err := trainer.Train(ctx, functional)
	if err != nil {
		return TrainSummary{}, err
	}

	record := model.TrainingRunRecord{
		VersionedRecord:  storage.Stamp(),
		ID:               runID,
		CreatedAtUTC:     time.Now().UTC().Format(time.RFC3339Nano),
		Problem:          req.Problem,
		Trainer:          trainer.Name(),
		Order:            req.Order,
		FinalPerformance: results.FinalPerformance,
		Iterations:       results.Iterations,
		ElapsedMS:        results.Elapsed.Milliseconds(),
		Stopping:         string(results.Stopping),
	}
	if results.History != nil {
		record.Performances = results.History.Performances
		record.GradientNorms = results.History.GradientNorms
	}
	if err := c.store.SaveTrainingRun(ctx, record); err != nil {
		return TrainSummary{}, err
	}

	return TrainSummary{
		RunID:            runID,
		Problem:          req.Problem,
		Order:            req.Order,
		FinalPerformance: results.FinalPerformance,
		Iterations:       results.Iterations,
		Elapsed:          results.Elapsed,
		Stopping:         string(results.Stopping),
	}, nil
}

func (c *Client) SelectOrder(ctx context.Context, req SelectRequest) (SelectSummary, error) {
	if req.Problem == "" {
		req.Problem = "sine"
	}
	if req.Search == "" {
		req.Search = "exhaustive"
	}
	if req.MinimumOrder <= 0 {
		req.MinimumOrder = 1
	}
	if req.MaximumOrder <= 0 {
		req.MaximumOrder = 8
	}
	if req.TrainingSamples <= 0 {
		req.TrainingSamples = 40
	}
	if req.SelectionSamples <= 0 {
		req.SelectionSamples = 20
	}
	if req.Trials <= 0 {
		req.Trials = 3
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.TrainerMaximumIterations <= 0 {
		req.TrainerMaximumIterations = 100
	}

	if err := c.store.Init(ctx); err != nil {
		return SelectSummary{}, err
	}

	p, err := problem.Get(req.Problem, req.TrainingSamples, req.SelectionSamples, req.Seed)
	if err != nil {
		return SelectSummary{}, err
	}
	reduction, err := selection.ParseReduction(req.Reduction)
	if err != nil {
		return SelectSummary{}, err
	}

	net, err := network.NewPerceptron(1, req.MinimumOrder, 1)
	if err != nil {
		return SelectSummary{}, err
	}

	cfg := selection.Config{
		Trainer: training.GradientDescent{
			Goal:              req.TrainerGoal,
			MaximumIterations: req.TrainerMaximumIterations,
		},
		Functional: &objective.SumSquaredError{
			Net:     net,
			Inputs:  p.TrainingInputs,
			Targets: p.TrainingTargets,
		},
		Selection: &objective.SumSquaredError{
			Net:     net,
			Inputs:  p.SelectionInputs,
			Targets: p.SelectionTargets,
		},
		MinimumOrder:                    req.MinimumOrder,
		MaximumOrder:                    req.MaximumOrder,
		TrialsNumber:                    req.Trials,
		Reduction:                       reduction,
		Workers:                         req.Workers,
		Seed:                            req.Seed,
		MaximumTime:                     req.MaximumTime,
		MaximumIterations:               req.MaximumIterations,
		SelectionGoal:                   req.SelectionGoal,
		FailureBudget:                   req.FailureBudget,
		ReservePerformanceData:          req.ReservePerformanceData,
		ReserveSelectionPerformanceData: req.ReserveSelectionPerformanceData,
	}

	var searcher selection.Searcher
	switch req.Search {
	case "exhaustive":
		searcher = selection.Exhaustive{Config: cfg}
	case "incremental":
		searcher = selection.Incremental{Config: cfg, OrderIncrement: req.OrderIncrement}
	default:
		return SelectSummary{}, fmt.Errorf("unknown search %q", req.Search)
	}

	results, err := searcher.Search(ctx)
	if err != nil {
		return SelectSummary{}, err
	}

	runID := uuid.NewString()
	record := model.SelectionRunRecord{
		VersionedRecord:           storage.Stamp(),
		ID:                        runID,
		CreatedAtUTC:              time.Now().UTC().Format(time.RFC3339Nano),
		Problem:                   req.Problem,
		Search:                    searcher.Name(),
		Orders:                    results.Orders,
		Performances:              results.Performances,
		SelectionPerformances:     results.SelectionPerformances,
		OptimalOrder:              results.OptimalOrder,
		FinalPerformance:          results.FinalPerformance,
		FinalSelectionPerformance: results.FinalSelectionPerformance,
		Trials:                    results.Trials,
		ElapsedMS:                 results.Elapsed.Milliseconds(),
		Stopping:                  string(results.Stopping),
	}
	if err := c.store.SaveSelectionRun(ctx, record); err != nil {
		return SelectSummary{}, err
	}

	return SelectSummary{
		RunID:                     runID,
		Problem:                   req.Problem,
		Search:                    searcher.Name(),
		Orders:                    results.Orders,
		Performances:              results.Performances,
		SelectionPerformances:     results.SelectionPerformances,
		OptimalOrder:              results.OptimalOrder,
		FinalPerformance:          results.FinalPerformance,
		FinalSelectionPerformance: results.FinalSelectionPerformance,
		Trials:                    results.Trials,
		Elapsed:                   results.Elapsed,
		Stopping:                  string(results.Stopping),
	}, nil
}

func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListTrainingRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > req.Limit {
		records = records[len(records)-req.Limit:]
	}

	out := make([]RunItem, 0, len(records))
	for _, r := range records {
		out = append(out, RunItem{
			RunID:            r.ID,
			CreatedAtUTC:     r.CreatedAtUTC,
			Problem:          r.Problem,
			Trainer:          r.Trainer,
			Order:            r.Order,
			FinalPerformance: r.FinalPerformance,
			Iterations:       r.Iterations,
			Stopping:         r.Stopping,
		})
	}
	return out, nil
}

func (c *Client) SelectionRuns(ctx context.Context, req RunsRequest) ([]SelectionRunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}

	records, err := c.store.ListSelectionRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) > req.Limit {
		records = records[len(records)-req.Limit:]
	}

	out := make([]SelectionRunItem, 0, len(records))
	for _, r := range records {
		out = append(out, SelectionRunItem{
			RunID:                     r.ID,
			CreatedAtUTC:              r.CreatedAtUTC,
			Problem:                   r.Problem,
			Search:                    r.Search,
			OptimalOrder:              r.OptimalOrder,
			FinalSelectionPerformance: r.FinalSelectionPerformance,
			Trials:                    r.Trials,
			Stopping:                  r.Stopping,
		})
	}
	return out, nil
}

func (c *Client) History(ctx context.Context, req HistoryRequest) (HistoryReport, error) {
	if req.RunID == "" {
		return HistoryReport{}, errors.New("run id is required")
	}
	if err := c.store.Init(ctx); err != nil {
		return HistoryReport{}, err
	}

	record, ok, err := c.store.GetTrainingRun(ctx, req.RunID)
	if err != nil {
		return HistoryReport{}, err
	}
	if !ok {
		return HistoryReport{}, fmt.Errorf("training run not found: %s", req.RunID)
	}

	report := HistoryReport{
		RunID:         record.ID,
		Performances:  record.Performances,
		GradientNorms: record.GradientNorms,
	}

	if len(record.Performances) >= 2 {
		iterations := make([]float64, len(record.Performances))
		for i := range iterations {
			iterations[i] = float64(i)
		}
		area, err := numeric.Integrator{Method: numeric.TrapezoidMethod}.Integrate(iterations, record.Performances)
		if err != nil {
			return HistoryReport{}, err
		}
		report.ConvergenceArea = area
	}

	snapshots, err := c.store.GetSnapshots(ctx, req.RunID)
	if err != nil {
		return HistoryReport{}, err
	}
	report.Snapshots = snapshots
	return report, nil
}

type storeSnapshotSaver struct {
	store storage.Store
	runID string
}

func (s *storeSnapshotSaver) SaveSnapshot(ctx context.Context, iteration int, params []float64) error {
	return s.store.SaveSnapshot(ctx, model.SnapshotRecord{
		VersionedRecord: storage.Stamp(),
		RunID:           s.runID,
		Iteration:       iteration,
		Parameters:      append([]float64(nil), params...),
	})
}
