package storage

import (
	"context"
	"sort"
	"sync"

	"neurofit/internal/model"
)

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	trainingRuns  map[string]model.TrainingRunRecord
	selectionRuns map[string]model.SelectionRunRecord
	snapshots     map[string][]model.SnapshotRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.trainingRuns = make(map[string]model.TrainingRunRecord)
	s.selectionRuns = make(map[string]model.SelectionRunRecord)
	s.snapshots = make(map[string][]model.SnapshotRecord)
	return nil
}

func (s *MemoryStore) SaveTrainingRun(_ context.Context, run model.TrainingRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trainingRuns[run.ID] = run
	return nil
}

func (s *MemoryStore) GetTrainingRun(_ context.Context, id string) (model.TrainingRunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.trainingRuns[id]
	return run, ok, nil
}

func (s *MemoryStore) ListTrainingRuns(_ context.Context) ([]model.TrainingRunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TrainingRunRecord, 0, len(s.trainingRuns))
	for _, run := range s.trainingRuns {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC == out[j].CreatedAtUTC {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAtUTC < out[j].CreatedAtUTC
	})
	return out, nil
}

func (s *MemoryStore) SaveSelectionRun(_ context.Context, run model.SelectionRunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectionRuns[run.ID] = run
	return nil
}

func (s *MemoryStore) GetSelectionRun(_ context.Context, id string) (model.SelectionRunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.selectionRuns[id]
	return run, ok, nil
}

func (s *MemoryStore) ListSelectionRuns(_ context.Context) ([]model.SelectionRunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SelectionRunRecord, 0, len(s.selectionRuns))
	for _, run := range s.selectionRuns {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC == out[j].CreatedAtUTC {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAtUTC < out[j].CreatedAtUTC
	})
	return out, nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot model.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshot.RunID] = append(s.snapshots[snapshot.RunID], snapshot)
	return nil
}

func (s *MemoryStore) GetSnapshots(_ context.Context, runID string) ([]model.SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]model.SnapshotRecord(nil), s.snapshots[runID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Iteration < out[j].Iteration })
	return out, nil
}
