package selection

import (
	"context"
	"errors"
)

const defaultIncrementalFailureBudget = 5

// Incremental grows the order from MinimumOrder by OrderIncrement steps
// and stops once consecutive orders stop improving the selection
// performance, trading completeness for fewer retrains.
type Incremental struct {
	Config

	// OrderIncrement is the step between candidate orders. Defaults to 1.
	OrderIncrement int
}

func (s Incremental) Name() string { return "incremental_order" }

func (s Incremental) Search(ctx context.Context) (Results, error) {
	if s.OrderIncrement < 0 {
		return Results{}, errors.New("order increment must be >= 1")
	}
	step := s.OrderIncrement
	if step == 0 {
		step = 1
	}

	e, err := newEngine(s.Config)
	if err != nil {
		return Results{}, err
	}

	var orders []int
	for order := e.cfg.MinimumOrder; order <= e.cfg.MaximumOrder; order += step {
		orders = append(orders, order)
	}

	budget := s.FailureBudget
	if budget == 0 {
		budget = defaultIncrementalFailureBudget
	}
	return e.run(ctx, orders, budget)
}
