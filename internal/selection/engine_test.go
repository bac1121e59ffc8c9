package selection

import (
	"context"
	"errors"
	"testing"

	"neurofit/internal/network"
	"neurofit/internal/objective"
	"neurofit/internal/training"
)

type orderScore struct {
	perf float64
	sel  float64
}

// stubObjective scores parameters purely by the bound network's order, so
// search behavior can be scripted per candidate order.
type stubObjective struct {
	net       network.Network
	selection bool
	scores    map[int]orderScore
	checkErr  error
}

func (s *stubObjective) Check() error             { return s.checkErr }
func (s *stubObjective) Network() network.Network { return s.net }

func (s *stubObjective) WithNetwork(n network.Network) objective.Functional {
	out := *s
	out.net = n
	return &out
}

func (s *stubObjective) Evaluate(_ context.Context, _ []float64) (float64, error) {
	score, ok := s.scores[s.net.Order()]
	if !ok {
		return 0, errors.New("unscored order")
	}
	if s.selection {
		return score.sel, nil
	}
	return score.perf, nil
}

func (s *stubObjective) Gradient(_ context.Context, params []float64) ([]float64, error) {
	return make([]float64, len(params)), nil
}

// stubTrainer reports the functional's value at the current parameters as
// the final training performance, optionally failing at given orders.
type stubTrainer struct {
	failOrders map[int]bool
}

func (t stubTrainer) Name() string { return "stub_trainer" }

func (t stubTrainer) Train(ctx context.Context, f objective.Functional) (training.Results, error) {
	order := f.Network().Order()
	if t.failOrders[order] {
		return training.Results{}, errors.New("training diverged")
	}
	params := f.Network().Parameters()
	perf, err := f.Evaluate(ctx, params)
	if err != nil {
		return training.Results{}, err
	}
	return training.Results{
		FinalParameters:  params,
		FinalPerformance: perf,
		Iterations:       1,
		Stopping:         training.StopMaximumIterations,
	}, nil
}

func stubConfig(t *testing.T, scores map[int]orderScore, minOrder, maxOrder int) Config {
	t.Helper()
	net, err := network.NewPerceptron(1, minOrder, 1)
	if err != nil {
		t.Fatalf("new perceptron: %v", err)
	}
	return Config{
		Trainer:                         stubTrainer{},
		Functional:                      &stubObjective{net: net, scores: scores},
		Selection:                       &stubObjective{net: net, selection: true, scores: scores},
		MinimumOrder:                    minOrder,
		MaximumOrder:                    maxOrder,
		ReservePerformanceData:          true,
		ReserveSelectionPerformanceData: true,
	}
}

func TestExhaustivePicksMinimumSelectionPerformance(t *testing.T) {
	scores := map[int]orderScore{
		1: {perf: 0.8, sel: 0.9},
		2: {perf: 0.3, sel: 0.4},
		3: {perf: 0.2, sel: 0.6},
		4: {perf: 0.1, sel: 0.7},
	}
	search := Exhaustive{Config: stubConfig(t, scores, 1, 4)}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.OptimalOrder != 2 {
		t.Fatalf("optimal order: got=%d want=2", results.OptimalOrder)
	}
	if results.Stopping != training.StopAlgorithmFinished {
		t.Fatalf("stopping condition: got=%s want=%s", results.Stopping, training.StopAlgorithmFinished)
	}
	if got, want := len(results.Orders), 4; got != want {
		t.Fatalf("evaluated orders: got=%d want=%d", got, want)
	}
	for i, order := range []int{1, 2, 3, 4} {
		if results.Orders[i] != order {
			t.Fatalf("history order at %d: got=%d want=%d", i, results.Orders[i], order)
		}
	}

	minSel := results.SelectionPerformances[0]
	for _, v := range results.SelectionPerformances {
		if v < minSel {
			minSel = v
		}
	}
	if results.FinalSelectionPerformance != minSel {
		t.Fatalf("final selection performance: got=%f want=%f", results.FinalSelectionPerformance, minSel)
	}
	if results.OptimalOrder < 1 || results.OptimalOrder > 4 {
		t.Fatalf("optimal order outside range: %d", results.OptimalOrder)
	}
}

func TestSelectionTiesKeepEarliestOrder(t *testing.T) {
	scores := map[int]orderScore{
		1: {perf: 0.5, sel: 0.5},
		2: {perf: 0.4, sel: 0.5},
	}
	search := Exhaustive{Config: stubConfig(t, scores, 1, 2)}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.OptimalOrder != 1 {
		t.Fatalf("tie must keep the earliest order: got=%d want=1", results.OptimalOrder)
	}
}

func TestSelectionSingleOrderBoundary(t *testing.T) {
	scores := map[int]orderScore{3: {perf: 99, sel: 99}}
	search := Exhaustive{Config: stubConfig(t, scores, 3, 3)}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results.Orders) != 1 || results.Orders[0] != 3 {
		t.Fatalf("expected exactly one evaluated order: %v", results.Orders)
	}
	if results.OptimalOrder != 3 {
		t.Fatalf("optimal order: got=%d want=3", results.OptimalOrder)
	}
}

func TestSingleTrialReductionsAgree(t *testing.T) {
	scores := map[int]orderScore{
		1: {perf: 0.7, sel: 0.8},
		2: {perf: 0.2, sel: 0.3},
	}

	var got []Results
	for _, reduction := range []Reduction{ReduceMinimum, ReduceMaximum, ReduceMean} {
		cfg := stubConfig(t, scores, 1, 2)
		cfg.Reduction = reduction
		cfg.TrialsNumber = 1
		results, err := (Exhaustive{Config: cfg}).Search(context.Background())
		if err != nil {
			t.Fatalf("search (%s): %v", reduction, err)
		}
		got = append(got, results)
	}

	for i := 1; i < len(got); i++ {
		if got[i].OptimalOrder != got[0].OptimalOrder {
			t.Fatalf("reductions disagree on optimal order: %d vs %d", got[i].OptimalOrder, got[0].OptimalOrder)
		}
		for j := range got[0].SelectionPerformances {
			if got[i].SelectionPerformances[j] != got[0].SelectionPerformances[j] {
				t.Fatal("single-trial reduction must be the identity")
			}
		}
	}
}

func TestFailedOrderCountsAsNonImproving(t *testing.T) {
	scores := map[int]orderScore{
		1: {perf: 0.5, sel: 0.5},
		2: {perf: 0.1, sel: 0.1},
		3: {perf: 0.2, sel: 0.2},
	}
	cfg := stubConfig(t, scores, 1, 3)
	cfg.Trainer = stubTrainer{failOrders: map[int]bool{2: true}}
	search := Exhaustive{Config: cfg}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search must survive failed trials: %v", err)
	}
	if len(results.Orders) != 2 || results.Orders[0] != 1 || results.Orders[1] != 3 {
		t.Fatalf("history must skip the failed order: %v", results.Orders)
	}
	if results.OptimalOrder != 3 {
		t.Fatalf("optimal order: got=%d want=3", results.OptimalOrder)
	}
}

func TestAllOrdersFailedIsFatal(t *testing.T) {
	scores := map[int]orderScore{1: {}, 2: {}}
	cfg := stubConfig(t, scores, 1, 2)
	cfg.Trainer = stubTrainer{failOrders: map[int]bool{1: true, 2: true}}

	_, err := (Exhaustive{Config: cfg}).Search(context.Background())
	if !errors.Is(err, ErrNoValidOrder) {
		t.Fatalf("expected ErrNoValidOrder, got %v", err)
	}
}

func TestIncrementalStopsOnFailureBudget(t *testing.T) {
	scores := map[int]orderScore{}
	scores[1] = orderScore{perf: 0.1, sel: 0.1}
	for order := 2; order <= 10; order++ {
		scores[order] = orderScore{perf: 0.2, sel: 0.2 + 0.01*float64(order)}
	}
	cfg := stubConfig(t, scores, 1, 10)
	cfg.FailureBudget = 3
	search := Incremental{Config: cfg}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.Stopping != training.StopMaximumSelectionFailures {
		t.Fatalf("stopping condition: got=%s want=%s", results.Stopping, training.StopMaximumSelectionFailures)
	}
	if len(results.Orders) != 4 { // the improving order plus three failures
		t.Fatalf("evaluated orders: got=%d want=4", len(results.Orders))
	}
	if results.OptimalOrder != 1 {
		t.Fatalf("optimal order: got=%d want=1", results.OptimalOrder)
	}
}

func TestSelectionMaximumIterations(t *testing.T) {
	scores := map[int]orderScore{}
	for order := 1; order <= 6; order++ {
		scores[order] = orderScore{perf: 1, sel: 1.0 / float64(order)}
	}
	cfg := stubConfig(t, scores, 1, 6)
	cfg.MaximumIterations = 2
	search := Exhaustive{Config: cfg}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.Stopping != training.StopMaximumIterations {
		t.Fatalf("stopping condition: got=%s want=%s", results.Stopping, training.StopMaximumIterations)
	}
	if len(results.Orders) != 2 {
		t.Fatalf("evaluated orders: got=%d want=2", len(results.Orders))
	}
}

func TestSelectionGoalShortCircuits(t *testing.T) {
	scores := map[int]orderScore{
		1: {perf: 0.5, sel: 0.2},
		2: {perf: 0.3, sel: 0.01},
		3: {perf: 0.1, sel: 0.001},
	}
	cfg := stubConfig(t, scores, 1, 3)
	cfg.SelectionGoal = 0.05
	search := Exhaustive{Config: cfg}

	results, err := search.Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.Stopping != training.StopSelectionGoal {
		t.Fatalf("stopping condition: got=%s want=%s", results.Stopping, training.StopSelectionGoal)
	}
	if len(results.Orders) != 2 || results.OptimalOrder != 2 {
		t.Fatalf("goal must stop the search at order 2: orders=%v optimal=%d", results.Orders, results.OptimalOrder)
	}
}

func TestSelectionFunctionalCheckFailureIsFatal(t *testing.T) {
	cfg := stubConfig(t, map[int]orderScore{1: {}}, 1, 1)
	cfg.Functional = &stubObjective{net: cfg.Functional.Network(), checkErr: errors.New("unbound model")}

	if _, err := (Exhaustive{Config: cfg}).Search(context.Background()); err == nil {
		t.Fatal("expected fatal configuration error")
	}
}

func TestSelectionConfigValidation(t *testing.T) {
	base := stubConfig(t, map[int]orderScore{1: {}}, 1, 1)

	cfg := base
	cfg.Trainer = nil
	if _, err := (Exhaustive{Config: cfg}).Search(context.Background()); err == nil {
		t.Fatal("expected missing trainer error")
	}

	cfg = base
	cfg.MinimumOrder = 0
	if _, err := (Exhaustive{Config: cfg}).Search(context.Background()); err == nil {
		t.Fatal("expected minimum order validation error")
	}

	cfg = base
	cfg.MinimumOrder = 5
	cfg.MaximumOrder = 2
	if _, err := (Exhaustive{Config: cfg}).Search(context.Background()); err == nil {
		t.Fatal("expected order range validation error")
	}

	cfg = base
	cfg.Reduction = "median"
	if _, err := (Exhaustive{Config: cfg}).Search(context.Background()); err == nil {
		t.Fatal("expected reduction validation error")
	}

	cfg = base
	cfg.SelectionGoal = -1
	if _, err := (Exhaustive{Config: cfg}).Search(context.Background()); err == nil {
		t.Fatal("expected selection goal validation error")
	}

	if _, err := (Incremental{Config: base, OrderIncrement: -1}).Search(context.Background()); err == nil {
		t.Fatal("expected order increment validation error")
	}
}

func TestSelectionReservationDefaultsOff(t *testing.T) {
	cfg := stubConfig(t, map[int]orderScore{1: {perf: 1, sel: 1}}, 1, 1)
	cfg.ReservePerformanceData = false
	cfg.ReserveSelectionPerformanceData = false

	results, err := (Exhaustive{Config: cfg}).Search(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results.Performances != nil || results.SelectionPerformances != nil || results.Parameters != nil || results.OptimalParameters != nil {
		t.Fatal("reservation must default to off")
	}
}
