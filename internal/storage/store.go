package storage

import (
	"context"

	"neurofit/internal/model"
)

// Store defines persistence operations for run records and snapshots.
type Store interface {
	Init(ctx context.Context) error
	SaveTrainingRun(ctx context.Context, run model.TrainingRunRecord) error
	GetTrainingRun(ctx context.Context, id string) (model.TrainingRunRecord, bool, error)
	ListTrainingRuns(ctx context.Context) ([]model.TrainingRunRecord, error)
	SaveSelectionRun(ctx context.Context, run model.SelectionRunRecord) error
	GetSelectionRun(ctx context.Context, id string) (model.SelectionRunRecord, bool, error)
	ListSelectionRuns(ctx context.Context) ([]model.SelectionRunRecord, error)
	SaveSnapshot(ctx context.Context, snapshot model.SnapshotRecord) error
	GetSnapshots(ctx context.Context, runID string) ([]model.SnapshotRecord, error)
}
