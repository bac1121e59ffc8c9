package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"neurofit/internal/objective"
)

const (
	defaultLearningRate      = 0.025
	defaultRateGrowth        = 1.05
	defaultRateShrink        = 0.5
	defaultTolerance         = 1e-9
	defaultMaximumIterations = 1000

	// Rejected steps halve the rate at most this many times per
	// iteration before the run stops on minimum increment.
	maxRateShrinks = 32
)

// GradientDescent minimizes a functional by steepest descent with
// bold-driver step control: the rate grows after every accepted step and
// shrinks until a step descends.
type GradientDescent struct {
	LearningRate float64
	RateGrowth   float64
	RateShrink   float64

	Goal              float64
	Tolerance         float64
	MaximumIterations int
	MaximumTime       time.Duration

	ReserveHistory bool

	DisplayPeriod int
	SavePeriod    int
	Reporter      Reporter
	Snapshots     SnapshotSaver

	// OnSnapshotError observes snapshot failures; they never stop the run.
	OnSnapshotError func(error)
}

func (g GradientDescent) Name() string { return "gradient_descent" }

func (g GradientDescent) normalized() (GradientDescent, error) {
	if g.LearningRate < 0 {
		return GradientDescent{}, errors.New("learning rate must be >= 0")
	}
	if g.LearningRate == 0 {
		g.LearningRate = defaultLearningRate
	}
	if g.RateGrowth < 0 || (g.RateGrowth > 0 && g.RateGrowth < 1) {
		return GradientDescent{}, errors.New("rate growth must be >= 1")
	}
	if g.RateGrowth == 0 {
		g.RateGrowth = defaultRateGrowth
	}
	if g.RateShrink < 0 || g.RateShrink >= 1 {
		return GradientDescent{}, errors.New("rate shrink must be in (0, 1)")
	}
	if g.RateShrink == 0 {
		g.RateShrink = defaultRateShrink
	}
	if g.Goal < 0 {
		return GradientDescent{}, errors.New("performance goal must be >= 0")
	}
	if g.Tolerance < 0 {
		return GradientDescent{}, errors.New("tolerance must be >= 0")
	}
	if g.Tolerance == 0 {
		g.Tolerance = defaultTolerance
	}
	if g.MaximumIterations < 0 {
		return GradientDescent{}, errors.New("maximum iterations must be >= 0")
	}
	if g.MaximumIterations == 0 {
		g.MaximumIterations = defaultMaximumIterations
	}
	if g.MaximumTime < 0 {
		return GradientDescent{}, errors.New("maximum time must be >= 0")
	}
	if g.DisplayPeriod < 0 {
		return GradientDescent{}, errors.New("display period must be >= 0")
	}
	if g.SavePeriod < 0 {
		return GradientDescent{}, errors.New("save period must be >= 0")
	}
	return g, nil
}

func (g GradientDescent) Train(ctx context.Context, f objective.Functional) (Results, error) {
	cfg, err := g.normalized()
	if err != nil {
		return Results{}, err
	}
	if f == nil {
		return Results{}, errors.New("performance functional is required")
	}
	if err := f.Check(); err != nil {
		return Results{}, fmt.Errorf("functional check: %w", err)
	}
	net := f.Network()
	if net == nil {
		return Results{}, errors.New("functional has no bound network")
	}

	start := time.Now()
	params := net.Parameters()

	perf, err := f.Evaluate(ctx, params)
	if err != nil {
		return Results{}, fmt.Errorf("evaluate: %w", err)
	}
	grad, err := f.Gradient(ctx, params)
	if err != nil {
		return Results{}, fmt.Errorf("gradient: %w", err)
	}

	var history *History
	if cfg.ReserveHistory {
		history = &History{}
		appendHistory(history, params, perf, grad)
	}

	rate := cfg.LearningRate
	iterations := 0
	var stopping StoppingCondition

	// Stopping conditions are checked in a fixed priority order: time,
	// goal, iteration cap, minimum increment.
	for {
		if cfg.MaximumTime > 0 && time.Since(start) >= cfg.MaximumTime {
			stopping = StopMaximumTime
			break
		}
		if perf <= cfg.Goal {
			stopping = StopPerformanceGoal
			break
		}
		if iterations >= cfg.MaximumIterations {
			stopping = StopMaximumIterations
			break
		}
		if err := ctx.Err(); err != nil {
			return Results{}, err
		}

		next := descendStep(params, grad, rate)
		nextPerf, err := f.Evaluate(ctx, next)
		if err != nil {
			return Results{}, fmt.Errorf("evaluate: %w", err)
		}
		shrinks := 0
		for nextPerf >= perf && shrinks < maxRateShrinks {
			rate *= cfg.RateShrink
			next = descendStep(params, grad, rate)
			nextPerf, err = f.Evaluate(ctx, next)
			if err != nil {
				return Results{}, fmt.Errorf("evaluate: %w", err)
			}
			shrinks++
		}
		iterations++

		if nextPerf >= perf {
			// No descending step at any representable rate.
			stopping = StopMinimumIncrement
			break
		}

		increment := floats.Distance(next, params, 2)
		params = next
		perf = nextPerf
		rate *= cfg.RateGrowth

		grad, err = f.Gradient(ctx, params)
		if err != nil {
			return Results{}, fmt.Errorf("gradient: %w", err)
		}

		if history != nil {
			appendHistory(history, params, perf, grad)
		}
		if cfg.DisplayPeriod > 0 && cfg.Reporter != nil && iterations%cfg.DisplayPeriod == 0 {
			cfg.Reporter.ReportProgress(iterations, perf)
		}
		if cfg.SavePeriod > 0 && cfg.Snapshots != nil && iterations%cfg.SavePeriod == 0 {
			if err := cfg.Snapshots.SaveSnapshot(ctx, iterations, append([]float64(nil), params...)); err != nil && cfg.OnSnapshotError != nil {
				cfg.OnSnapshotError(err)
			}
		}

		if increment < cfg.Tolerance {
			stopping = StopMinimumIncrement
			break
		}
	}

	if err := net.SetParameters(params); err != nil {
		return Results{}, err
	}

	return Results{
		FinalParameters:   append([]float64(nil), params...),
		FinalPerformance:  perf,
		FinalGradientNorm: floats.Norm(grad, 2),
		Iterations:        iterations,
		Elapsed:           time.Since(start),
		Stopping:          stopping,
		History:           history,
	}, nil
}

func descendStep(params, grad []float64, rate float64) []float64 {
	next := make([]float64, len(params))
	for i := range params {
		next[i] = params[i] - rate*grad[i]
	}
	return next
}

func appendHistory(h *History, params []float64, perf float64, grad []float64) {
	h.Parameters = append(h.Parameters, append([]float64(nil), params...))
	h.Performances = append(h.Performances, perf)
	h.GradientNorms = append(h.GradientNorms, floats.Norm(grad, 2))
}
