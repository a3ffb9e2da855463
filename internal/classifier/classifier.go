// Package classifier scores feature vectors with a trained random forest.
package classifier

import (
	"fmt"
)

// ModelLoadError is returned when a model artifact is missing or corrupt
type ModelLoadError struct {
	Reason string
	Err    error
}

func (e *ModelLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model load failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("model load failed: %s", e.Reason)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// FeatureArityMismatchError signals that the model expects a different vector length than the builder produces
type FeatureArityMismatchError struct {
	Model   int
	Builder int
}

func (e *FeatureArityMismatchError) Error() string {
	return fmt.Sprintf("feature arity mismatch: model expects %d features, builder produces %d", e.Model, e.Builder)
}

// Prediction is the outcome of one scoring pass
type Prediction struct {
	Approved    bool
	Probability float64 // Probability of the approved class
}

// Classifier wraps a validated forest
type Classifier struct {
	forest *Forest
	arity  int
}

// New validates the forest against the expected feature arity
func New(forest *Forest, arity int) (*Classifier, error) {
	if forest == nil {
		return nil, &ModelLoadError{Reason: "model is empty"}
	}
	if forest.NFeatures != arity {
		return nil, &FeatureArityMismatchError{Model: forest.NFeatures, Builder: arity}
	}
	if err := forest.validate(); err != nil {
		return nil, &ModelLoadError{Reason: "invalid forest", Err: err}
	}
	return &Classifier{forest: forest, arity: arity}, nil
}

// Arity returns the feature vector length the classifier accepts
func (c *Classifier) Arity() int {
	return c.arity
}

// Trees returns the number of trees in the ensemble
func (c *Classifier) Trees() int {
	return len(c.forest.Trees)
}

// Predict scores a vector once and derives both the label and the approval probability from it.
// Ties between the classes resolve to denial.
func (c *Classifier) Predict(x []float64) (Prediction, error) {
	if len(x) != c.arity {
		return Prediction{}, fmt.Errorf("feature vector has %d elements, want %d", len(x), c.arity)
	}
	p := c.forest.proba(x)
	return Prediction{
		Approved:    p[1] > p[0],
		Probability: p[1],
	}, nil
}

// PredictLabel returns the hard approve/deny decision
func (c *Classifier) PredictLabel(x []float64) (bool, error) {
	p, err := c.Predict(x)
	if err != nil {
		return false, err
	}
	return p.Approved, nil
}

// PredictProbability returns the probability of approval
func (c *Classifier) PredictProbability(x []float64) (float64, error) {
	p, err := c.Predict(x)
	if err != nil {
		return 0, err
	}
	return p.Probability, nil
}
