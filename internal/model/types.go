package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// TrainingRunRecord is the persisted outcome of one training run.
type TrainingRunRecord struct {
	VersionedRecord
	ID               string    `json:"id"`
	CreatedAtUTC     string    `json:"created_at_utc"`
	Problem          string    `json:"problem"`
	Trainer          string    `json:"trainer"`
	Order            int       `json:"order"`
	FinalPerformance float64   `json:"final_performance"`
	Iterations       int       `json:"iterations"`
	ElapsedMS        int64     `json:"elapsed_ms"`
	Stopping         string    `json:"stopping"`
	Performances     []float64 `json:"performances,omitempty"`
	GradientNorms    []float64 `json:"gradient_norms,omitempty"`
}

// SelectionRunRecord is the persisted outcome of one order-selection search.
type SelectionRunRecord struct {
	VersionedRecord
	ID                        string    `json:"id"`
	CreatedAtUTC              string    `json:"created_at_utc"`
	Problem                   string    `json:"problem"`
	Search                    string    `json:"search"`
	Orders                    []int     `json:"orders"`
	Performances              []float64 `json:"performances,omitempty"`
	SelectionPerformances     []float64 `json:"selection_performances,omitempty"`
	OptimalOrder              int       `json:"optimal_order"`
	FinalPerformance          float64   `json:"final_performance"`
	FinalSelectionPerformance float64   `json:"final_selection_performance"`
	Trials                    int       `json:"trials"`
	ElapsedMS                 int64     `json:"elapsed_ms"`
	Stopping                  string    `json:"stopping"`
}

// SnapshotRecord is an intermediate parameter vector saved mid-run.
type SnapshotRecord struct {
	VersionedRecord
	RunID      string    `json:"run_id"`
	Iteration  int       `json:"iteration"`
	Parameters []float64 `json:"parameters"`
}
