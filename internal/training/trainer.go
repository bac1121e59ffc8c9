package training

import (
	"context"
	"time"

	"neurofit/internal/objective"
)

// StoppingCondition names the single reason a training or search loop
// terminated.
type StoppingCondition string

const (
	StopMaximumTime              StoppingCondition = "maximum_time"
	StopPerformanceGoal          StoppingCondition = "performance_goal"
	StopMaximumIterations        StoppingCondition = "maximum_iterations"
	StopMinimumIncrement         StoppingCondition = "minimum_increment"
	StopMaximumSelectionFailures StoppingCondition = "maximum_selection_failures"
	StopSelectionGoal            StoppingCondition = "selection_performance_goal"
	StopAlgorithmFinished        StoppingCondition = "algorithm_finished"
)

// History holds opt-in per-iteration training data. Retention is O(iterations)
// memory, so it defaults to off.
type History struct {
	Parameters    [][]float64 `json:"parameters,omitempty"`
	Performances  []float64   `json:"performances"`
	GradientNorms []float64   `json:"gradient_norms"`
}

// Results is owned by the caller after Train returns.
type Results struct {
	FinalParameters   []float64
	FinalPerformance  float64
	FinalGradientNorm float64
	Iterations        int
	Elapsed           time.Duration
	Stopping          StoppingCondition
	History           *History
}

// Trainer drives a functional to a minimum. Implementations borrow the
// functional for the duration of the run and write the final parameters
// back to its network as a side effect.
type Trainer interface {
	Name() string
	Train(ctx context.Context, f objective.Functional) (Results, error)
}

// Reporter receives advisory progress callbacks. Implementations must not
// block; reports never affect control flow.
type Reporter interface {
	ReportProgress(iteration int, performance float64)
}

// SnapshotSaver persists intermediate parameter snapshots. Save failures
// are advisory: the trainer reports them and continues.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, iteration int, params []float64) error
}
