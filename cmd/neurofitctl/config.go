package main

import (
	"encoding/json"
	"os"
	"time"

	fitapi "neurofit/pkg/neurofit"
)

func loadTrainRequestFromConfig(path string) (fitapi.TrainRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fitapi.TrainRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fitapi.TrainRequest{}, err
	}

	var req fitapi.TrainRequest
	if v, ok := asString(raw["problem"]); ok {
		req.Problem = v
	}
	if v, ok := asInt(raw["order"]); ok {
		req.Order = v
	}
	if v, ok := asInt(raw["training_samples"]); ok {
		req.TrainingSamples = v
	}
	if v, ok := asInt(raw["selection_samples"]); ok {
		req.SelectionSamples = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asFloat64(raw["goal"]); ok {
		req.Goal = v
	}
	if v, ok := asFloat64(raw["tolerance"]); ok {
		req.Tolerance = v
	}
	if v, ok := asInt(raw["maximum_iterations"]); ok {
		req.MaximumIterations = v
	}
	if v, ok := asInt(raw["maximum_time_ms"]); ok {
		req.MaximumTime = time.Duration(v) * time.Millisecond
	}
	if v, ok := asFloat64(raw["learning_rate"]); ok {
		req.LearningRate = v
	}
	if v, ok := asBool(raw["reserve_history"]); ok {
		req.ReserveHistory = v
	}
	if v, ok := asInt(raw["display_period"]); ok {
		req.DisplayPeriod = v
	}
	if v, ok := asInt(raw["save_period"]); ok {
		req.SavePeriod = v
	}
	return req, nil
}

func loadSelectRequestFromConfig(path string) (fitapi.SelectRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fitapi.SelectRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fitapi.SelectRequest{}, err
	}

	var req fitapi.SelectRequest
	if v, ok := asString(raw["problem"]); ok {
		req.Problem = v
	}
	if v, ok := asString(raw["search"]); ok {
		req.Search = v
	}
	if v, ok := asInt(raw["minimum_order"]); ok {
		req.MinimumOrder = v
	}
	if v, ok := asInt(raw["maximum_order"]); ok {
		req.MaximumOrder = v
	}
	if v, ok := asInt(raw["order_increment"]); ok {
		req.OrderIncrement = v
	}
	if v, ok := asInt(raw["training_samples"]); ok {
		req.TrainingSamples = v
	}
	if v, ok := asInt(raw["selection_samples"]); ok {
		req.SelectionSamples = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["trials"]); ok {
		req.Trials = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asString(raw["reduction"]); ok {
		req.Reduction = v
	}
	if v, ok := asFloat64(raw["selection_goal"]); ok {
		req.SelectionGoal = v
	}
	if v, ok := asInt(raw["maximum_orders"]); ok {
		req.MaximumIterations = v
	}
	if v, ok := asInt(raw["maximum_time_ms"]); ok {
		req.MaximumTime = time.Duration(v) * time.Millisecond
	}
	if v, ok := asInt(raw["failure_budget"]); ok {
		req.FailureBudget = v
	}
	if v, ok := asFloat64(raw["trainer_goal"]); ok {
		req.TrainerGoal = v
	}
	if v, ok := asInt(raw["trainer_maximum_iterations"]); ok {
		req.TrainerMaximumIterations = v
	}
	if v, ok := asBool(raw["reserve_performance_data"]); ok {
		req.ReservePerformanceData = v
	}
	if v, ok := asBool(raw["reserve_selection_performance_data"]); ok {
		req.ReserveSelectionPerformanceData = v
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
