package evaluate

import (
	"fmt"
	"math"

	"github.com/stopcast/stopcast/pkg/features"
	"github.com/stopcast/stopcast/pkg/regressor"
)

// Record is the outcome of scoring a single instance. Error is computed
// against the rounded prediction, matching the reported value.
type Record struct {
	TimeOfDay string  `csv:"timestamp"`
	Actual    float64 `csv:"actual"`
	Predicted int     `csv:"predicted"`
	Error     float64 `csv:"error"`
}

// Result is one stop's full evaluation output.
type Result struct {
	Records []Record

	errorSum float64
}

// MAE returns the mean absolute error over all records. ok is false when no
// records were emitted, in which case the metric is undefined.
func (r *Result) MAE() (float64, bool) {
	if len(r.Records) == 0 {
		return 0, false
	}

	return r.errorSum / float64(len(r.Records)), true
}

// Run drives the prequential (test-then-train) loop: every instance is
// scored by the model as it stood before that instance, then immediately
// trained on, in strict sequence order. limit caps the number of instances
// processed; 0 means unrestricted.
//
// Raw predictions are kept as float64 internally and rounded half-to-even
// (banker's rounding) only at the reporting boundary, so reruns are
// bit-for-bit reproducible.
//
// A predict or train failure stops the loop for this stop; records emitted
// before the failure are preserved in the returned result.
func Run(instances []features.Instance, model regressor.Regressor, limit int) (Result, error) {
	var result Result

	if err := model.Initialize(features.Schema()); err != nil {
		return result, fmt.Errorf("initialize: %w", err)
	}

	count := len(instances)
	if limit > 0 && limit < count {
		count = limit
	}

	for index := 0; index < count; index += 1 {
		instance := instances[index]

		prediction, err := model.Predict(instance.Features)
		if err != nil {
			return result, fmt.Errorf("predict instance %d: %w", index, err)
		}

		predicted := int(math.RoundToEven(prediction))

		if err := model.Train(instance.Features, instance.Target); err != nil {
			return result, fmt.Errorf("train instance %d: %w", index, err)
		}

		record := Record{
			TimeOfDay: instance.TimeOfDay,
			Actual:    instance.Target,
			Predicted: predicted,
			Error:     math.Abs(instance.Target - float64(predicted)),
		}

		result.Records = append(result.Records, record)
		result.errorSum += record.Error
	}

	return result, nil
}
