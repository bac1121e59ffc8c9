package neurofit

import (
	"context"
	"testing"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return c
}

func TestTrainPersistsRun(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	summary, err := c.Train(ctx, TrainRequest{
		Problem:           "sine",
		Order:             3,
		TrainingSamples:   20,
		Seed:              7,
		MaximumIterations: 30,
		ReserveHistory:    true,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}
	if summary.Iterations <= 0 {
		t.Fatalf("expected iterations > 0, got %d", summary.Iterations)
	}
	if summary.Stopping == "" {
		t.Fatal("expected a stopping condition")
	}

	runs, err := c.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].RunID != summary.RunID || runs[0].Problem != "sine" || runs[0].Order != 3 {
		t.Fatalf("unexpected run item %+v", runs[0])
	}
}

func TestTrainHistoryAndConvergenceArea(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	summary, err := c.Train(ctx, TrainRequest{
		Problem:           "cubic",
		Order:             2,
		TrainingSamples:   20,
		Seed:              3,
		MaximumIterations: 25,
		ReserveHistory:    true,
		SavePeriod:        10,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	report, err := c.History(ctx, HistoryRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(report.Performances) < 2 || len(report.Performances) > summary.Iterations+1 {
		t.Fatalf("expected up to %d performances, got %d", summary.Iterations+1, len(report.Performances))
	}
	if report.ConvergenceArea <= 0 {
		t.Fatalf("expected positive convergence area, got %g", report.ConvergenceArea)
	}
	if len(report.Snapshots) == 0 {
		t.Fatal("expected snapshots with save period set")
	}
	for i := 1; i < len(report.Snapshots); i++ {
		if report.Snapshots[i].Iteration <= report.Snapshots[i-1].Iteration {
			t.Fatal("expected snapshots ordered by iteration")
		}
	}
}

func TestHistoryUnknownRun(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if _, err := c.History(ctx, HistoryRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected error for unknown run")
	}
	if _, err := c.History(ctx, HistoryRequest{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestSelectOrderPersistsRun(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	summary, err := c.SelectOrder(ctx, SelectRequest{
		Problem:                         "sine",
		Search:                          "exhaustive",
		MinimumOrder:                    1,
		MaximumOrder:                    3,
		TrainingSamples:                 20,
		SelectionSamples:                10,
		Seed:                            11,
		Trials:                          2,
		TrainerMaximumIterations:        20,
		ReserveSelectionPerformanceData: true,
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if summary.OptimalOrder < 1 || summary.OptimalOrder > 3 {
		t.Fatalf("optimal order out of range: %d", summary.OptimalOrder)
	}
	if len(summary.Orders) == 0 {
		t.Fatal("expected evaluated orders")
	}
	if len(summary.SelectionPerformances) != len(summary.Orders) {
		t.Fatalf("expected %d selection performances, got %d", len(summary.Orders), len(summary.SelectionPerformances))
	}

	runs, err := c.SelectionRuns(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("selection runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 selection run, got %d", len(runs))
	}
	if runs[0].RunID != summary.RunID || runs[0].Search != "exhaustive_order" {
		t.Fatalf("unexpected selection run item %+v", runs[0])
	}
}

func TestSelectOrderUnknownSearch(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if _, err := c.SelectOrder(ctx, SelectRequest{Search: "random"}); err == nil {
		t.Fatal("expected error for unknown search")
	}
}

func TestProblemsListsBuiltins(t *testing.T) {
	c := newTestClient(t)
	names := c.Problems()
	if len(names) != 3 {
		t.Fatalf("expected 3 problems, got %v", names)
	}
}
