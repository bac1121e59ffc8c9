package selection

import "context"

// Exhaustive scans every order in [MinimumOrder, MaximumOrder]. The
// failure budget is disabled unless configured, so the scan normally runs
// the whole range and finishes with algorithm_finished.
type Exhaustive struct {
	Config
}

func (s Exhaustive) Name() string { return "exhaustive_order" }

func (s Exhaustive) Search(ctx context.Context) (Results, error) {
	e, err := newEngine(s.Config)
	if err != nil {
		return Results{}, err
	}

	orders := make([]int, 0, e.cfg.MaximumOrder-e.cfg.MinimumOrder+1)
	for order := e.cfg.MinimumOrder; order <= e.cfg.MaximumOrder; order++ {
		orders = append(orders, order)
	}
	return e.run(ctx, orders, s.FailureBudget)
}
