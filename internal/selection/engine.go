package selection

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sourcegraph/conc/pool"

	"neurofit/internal/objective"
	"neurofit/internal/training"
)

// Config carries the settings shared by every order search.
type Config struct {
	Trainer training.Trainer

	// Functional is the training objective, bound to the shared network
	// whose order is being searched. Selection measures the held-out
	// validation performance used to pick the order.
	Functional objective.Functional
	Selection  objective.Functional

	MinimumOrder int
	MaximumOrder int

	// TrialsNumber independent training attempts per order, differing by
	// random initialization. Defaults to 1.
	TrialsNumber int
	Reduction    Reduction

	// Workers bounds trial concurrency within one order. Defaults to 1.
	Workers int
	Seed    int64

	MaximumTime       time.Duration
	MaximumIterations int // cap on evaluated orders, 0 disables
	SelectionGoal     float64

	// FailureBudget stops the search after this many consecutive
	// non-improving order evaluations. 0 uses the search's default.
	FailureBudget int

	ReservePerformanceData          bool
	ReserveSelectionPerformanceData bool
	ReserveParametersData           bool
	ReserveMinimalParameters        bool
}

// Results is built incrementally across the search and finalized when the
// loop terminates.
type Results struct {
	Orders                []int
	Performances          []float64
	SelectionPerformances []float64
	Parameters            [][]float64

	OptimalOrder              int
	OptimalParameters         []float64
	FinalPerformance          float64
	FinalSelectionPerformance float64

	Trials   int
	Elapsed  time.Duration
	Stopping training.StoppingCondition
}

// Searcher is an order-selection algorithm: it retrains the network at
// candidate orders and returns the order with the best selection
// performance.
type Searcher interface {
	Name() string
	Search(ctx context.Context) (Results, error)
}

// ErrNoValidOrder reports a search in which every candidate order failed.
var ErrNoValidOrder = errors.New("no valid order evaluated")

type engine struct {
	cfg Config
	rng *rand.Rand
}

func newEngine(cfg Config) (*engine, error) {
	if cfg.Trainer == nil {
		return nil, errors.New("trainer is required")
	}
	if cfg.Functional == nil {
		return nil, errors.New("performance functional is required")
	}
	if cfg.Selection == nil {
		return nil, errors.New("selection functional is required")
	}
	if cfg.MinimumOrder < 1 {
		return nil, fmt.Errorf("minimum order must be >= 1: %d", cfg.MinimumOrder)
	}
	if cfg.MaximumOrder < cfg.MinimumOrder {
		return nil, fmt.Errorf("maximum order must be >= minimum order: %d < %d", cfg.MaximumOrder, cfg.MinimumOrder)
	}
	if cfg.TrialsNumber < 0 {
		return nil, errors.New("trials number must be >= 1")
	}
	if cfg.TrialsNumber == 0 {
		cfg.TrialsNumber = 1
	}
	reduction, err := ParseReduction(string(cfg.Reduction))
	if err != nil {
		return nil, err
	}
	cfg.Reduction = reduction
	if cfg.Workers < 0 {
		return nil, errors.New("workers must be >= 1")
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.MaximumTime < 0 {
		return nil, errors.New("maximum time must be >= 0")
	}
	if cfg.MaximumIterations < 0 {
		return nil, errors.New("maximum iterations must be >= 0")
	}
	if cfg.SelectionGoal < 0 {
		return nil, errors.New("selection performance goal must be >= 0")
	}
	if cfg.FailureBudget < 0 {
		return nil, errors.New("failure budget must be >= 0")
	}
	return &engine{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// run evaluates candidate orders in sequence and applies the stopping
// conditions in priority order after each evaluation. History entries are
// appended in evaluation order.
func (e *engine) run(ctx context.Context, orders []int, failureBudget int) (Results, error) {
	start := time.Now()

	if err := e.cfg.Functional.Check(); err != nil {
		return Results{}, fmt.Errorf("functional check: %w", err)
	}
	if err := e.cfg.Selection.Check(); err != nil {
		return Results{}, fmt.Errorf("selection functional check: %w", err)
	}

	var res Results
	bestSelection := math.Inf(1)
	found := false
	failures := 0
	evaluated := 0
	var stopping training.StoppingCondition

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return Results{}, err
		}

		outcome, err := e.evaluateOrder(ctx, order)
		evaluated++
		res.Trials += e.cfg.TrialsNumber
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Results{}, ctxErr
			}
			// Every trial at this order failed: a non-improving outcome,
			// not a fatal one.
			failures++
		} else {
			res.Orders = append(res.Orders, order)
			if e.cfg.ReservePerformanceData {
				res.Performances = append(res.Performances, outcome.performance)
			}
			if e.cfg.ReserveSelectionPerformanceData {
				res.SelectionPerformances = append(res.SelectionPerformances, outcome.selection)
			}
			if e.cfg.ReserveParametersData {
				res.Parameters = append(res.Parameters, outcome.params)
			}

			if outcome.selection < bestSelection {
				bestSelection = outcome.selection
				res.OptimalOrder = order
				res.FinalPerformance = outcome.performance
				res.FinalSelectionPerformance = outcome.selection
				if e.cfg.ReserveMinimalParameters {
					res.OptimalParameters = outcome.params
				}
				found = true
				failures = 0
			} else {
				failures++
			}
		}

		if e.cfg.MaximumTime > 0 && time.Since(start) >= e.cfg.MaximumTime {
			stopping = training.StopMaximumTime
			break
		}
		if found && bestSelection <= e.cfg.SelectionGoal {
			stopping = training.StopSelectionGoal
			break
		}
		if e.cfg.MaximumIterations > 0 && evaluated >= e.cfg.MaximumIterations {
			stopping = training.StopMaximumIterations
			break
		}
		if failureBudget > 0 && failures >= failureBudget {
			stopping = training.StopMaximumSelectionFailures
			break
		}
	}

	if stopping == "" {
		stopping = training.StopAlgorithmFinished
	}
	if !found {
		return Results{}, ErrNoValidOrder
	}

	res.Elapsed = time.Since(start)
	res.Stopping = stopping
	return res, nil
}

type orderOutcome struct {
	performance float64
	selection   float64
	params      []float64
}

// evaluateOrder runs the configured number of independent training trials
// at one order on per-trial network clones, then reduces the surviving
// trial performances. Trial seeds are drawn before the pool starts so the
// outcome does not depend on scheduling.
func (e *engine) evaluateOrder(ctx context.Context, order int) (orderOutcome, error) {
	if order < e.cfg.MinimumOrder || order > e.cfg.MaximumOrder {
		return orderOutcome{}, fmt.Errorf("order %d outside [%d, %d]", order, e.cfg.MinimumOrder, e.cfg.MaximumOrder)
	}

	base := e.cfg.Functional.Network()
	if base == nil {
		return orderOutcome{}, errors.New("functional has no bound network")
	}

	type trial struct {
		performance float64
		selection   float64
		params      []float64
		err         error
	}
	trials := make([]trial, e.cfg.TrialsNumber)
	seeds := make([]int64, e.cfg.TrialsNumber)
	for i := range seeds {
		seeds[i] = e.rng.Int63()
	}

	workers := pool.New().WithMaxGoroutines(e.cfg.Workers)
	for i := 0; i < e.cfg.TrialsNumber; i++ {
		i := i
		workers.Go(func() {
			net := base.Clone()
			if err := net.Reconfigure(order); err != nil {
				trials[i].err = err
				return
			}
			net.Randomize(rand.New(rand.NewSource(seeds[i])))

			results, err := e.cfg.Trainer.Train(ctx, e.cfg.Functional.WithNetwork(net))
			if err != nil {
				trials[i].err = err
				return
			}
			sel, err := e.cfg.Selection.WithNetwork(net).Evaluate(ctx, results.FinalParameters)
			if err != nil {
				trials[i].err = err
				return
			}
			trials[i] = trial{
				performance: results.FinalPerformance,
				selection:   sel,
				params:      results.FinalParameters,
			}
		})
	}
	workers.Wait()

	perfs := make([]float64, 0, len(trials))
	sels := make([]float64, 0, len(trials))
	var trialErrs []error
	bestIdx := -1
	for i, tr := range trials {
		if tr.err != nil {
			trialErrs = append(trialErrs, fmt.Errorf("trial %d: %w", i, tr.err))
			continue
		}
		perfs = append(perfs, tr.performance)
		sels = append(sels, tr.selection)
		if bestIdx < 0 || tr.selection < trials[bestIdx].selection {
			bestIdx = i
		}
	}
	if len(perfs) == 0 {
		return orderOutcome{}, fmt.Errorf("order %d: all trials failed: %w", order, errors.Join(trialErrs...))
	}

	return orderOutcome{
		performance: e.cfg.Reduction.Apply(perfs),
		selection:   e.cfg.Reduction.Apply(sels),
		params:      trials[bestIdx].params,
	}, nil
}
