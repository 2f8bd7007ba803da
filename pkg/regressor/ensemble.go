package regressor

import (
	"fmt"
	"math"
	"math/rand"
)

// Ensemble is an online bagging ensemble of Hoeffding trees. Each training
// instance is replayed to every member k times, with k drawn from a seeded
// Poisson(1), approximating each member seeing its own bootstrap sample of
// the stream. Predictions are the unweighted mean of the members.
//
// All randomness comes from the single seeded source, consumed in member
// order, so a fixed seed makes the whole ensemble deterministic.
type Ensemble struct {
	members     []*HoeffdingTree
	random      *rand.Rand
	initialized bool
	schema      Schema
}

func NewEnsemble(size int, seed int64, config TreeConfig) (*Ensemble, error) {
	if size <= 0 {
		return nil, fmt.Errorf("ensemble size must be positive, got %d", size)
	}

	ensemble := &Ensemble{
		random: rand.New(rand.NewSource(seed)),
	}

	for member := 0; member < size; member += 1 {
		ensemble.members = append(ensemble.members, NewHoeffdingTree(config))
	}

	return ensemble, nil
}

func (e *Ensemble) Initialize(schema Schema) error {
	if e.initialized {
		return ErrAlreadyInitialized
	}

	for _, member := range e.members {
		if err := member.Initialize(schema); err != nil {
			return err
		}
	}

	e.schema = schema
	e.initialized = true

	return nil
}

func (e *Ensemble) Predict(features []float64) (float64, error) {
	if err := checkFeatures(e.schema, e.initialized, features); err != nil {
		return 0, err
	}

	sum := 0.0
	for _, member := range e.members {
		prediction, err := member.Predict(features)
		if err != nil {
			return 0, err
		}

		sum += prediction
	}

	return sum / float64(len(e.members)), nil
}

func (e *Ensemble) Train(features []float64, target float64) error {
	if err := checkFeatures(e.schema, e.initialized, features); err != nil {
		return err
	}

	for _, member := range e.members {
		for repeat := e.poisson(); repeat > 0; repeat -= 1 {
			if err := member.Train(features, target); err != nil {
				return err
			}
		}
	}

	return nil
}

// poisson draws from Poisson(1) by inversion, the standard online bagging
// replication weight.
func (e *Ensemble) poisson() int {
	product := e.random.Float64()
	bound := math.Exp(-1)

	count := 0
	for product >= bound {
		product *= e.random.Float64()
		count += 1
	}

	return count
}
