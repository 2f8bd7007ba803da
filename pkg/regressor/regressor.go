package regressor

import (
	"errors"
	"fmt"
)

// Schema describes the fixed, ordered feature layout a model is trained
// against. A model is bound to exactly one schema for its lifetime.
type Schema struct {
	Fields []string
}

func (s Schema) Arity() int {
	return len(s.Fields)
}

// Regressor is an online model trained one instance at a time under the
// test-then-train protocol: Predict is always called before Train for the
// same instance, and Predict must never mutate model state. A model that has
// seen no training instances predicts 0.
type Regressor interface {
	Initialize(schema Schema) error
	Predict(features []float64) (float64, error)
	Train(features []float64, target float64) error
}

var ErrNotInitialized = errors.New("regressor used before Initialize")
var ErrAlreadyInitialized = errors.New("regressor initialized twice")

// SchemaError reports a feature vector whose shape does not match the schema
// the model was initialized with.
type SchemaError struct {
	Want int
	Got  int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feature vector has %d fields, schema expects %d", e.Got, e.Want)
}

func checkFeatures(schema Schema, initialized bool, features []float64) error {
	if !initialized {
		return ErrNotInitialized
	}

	if len(features) != schema.Arity() {
		return &SchemaError{Want: schema.Arity(), Got: len(features)}
	}

	return nil
}
