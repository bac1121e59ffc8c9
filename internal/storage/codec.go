package storage

import (
	"encoding/json"
	"errors"

	"neurofit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeTrainingRun(run model.TrainingRunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeTrainingRun(data []byte) (model.TrainingRunRecord, error) {
	var run model.TrainingRunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.TrainingRunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.TrainingRunRecord{}, err
	}
	return run, nil
}

func EncodeSelectionRun(run model.SelectionRunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeSelectionRun(data []byte) (model.SelectionRunRecord, error) {
	var run model.SelectionRunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.SelectionRunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.SelectionRunRecord{}, err
	}
	return run, nil
}

func EncodeSnapshot(snapshot model.SnapshotRecord) ([]byte, error) {
	return json.Marshal(snapshot)
}

func DecodeSnapshot(data []byte) (model.SnapshotRecord, error) {
	var snapshot model.SnapshotRecord
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.SnapshotRecord{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.SnapshotRecord{}, err
	}
	return snapshot, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
