// Package features turns a loan application into the fixed-order vector the classifier consumes.
package features

import (
	"fmt"
	"math"

	"github.com/Dan9191/loan-approval/internal/encoder"
	"github.com/Dan9191/loan-approval/internal/models"
)

// Application bounds, inclusive
const (
	MinAge         = 18
	MaxAge         = 65
	MinIncome      = 10000.0
	MaxIncome      = 200000.0
	MinCreditScore = 0.3
	MaxCreditScore = 1.0
)

// Arity is the length of every feature vector
const Arity = 6

var names = [Arity]string{
	"age",
	"income",
	"job_type_encoded",
	"credit_score",
	"marital_status_encoded",
	"education_level_encoded",
}

// Names returns the feature names in vector order
func Names() []string {
	out := make([]string, Arity)
	copy(out, names[:])
	return out
}

// Vector is the ordered numeric input of the classifier
type Vector [Arity]float64

// Slice returns the vector as a slice
func (v Vector) Slice() []float64 {
	out := make([]float64, Arity)
	copy(out, v[:])
	return out
}

// InvalidFieldError is returned when a field is missing or out of its declared range
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Builder assembles feature vectors using the trained encoders
type Builder struct {
	registry *encoder.Registry
}

// NewBuilder initializes a new feature builder
func NewBuilder(registry *encoder.Registry) *Builder {
	return &Builder{registry: registry}
}

// Build validates the application and returns its feature vector.
// Fields are checked in vector order and the first violation is returned.
func (b *Builder) Build(app models.Application) (Vector, error) {
	var v Vector

	if app.Age < MinAge || app.Age > MaxAge {
		return Vector{}, &InvalidFieldError{Field: "age", Reason: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)}
	}
	v[0] = float64(app.Age)

	if err := checkRange("annual_income", app.AnnualIncome, MinIncome, MaxIncome); err != nil {
		return Vector{}, err
	}
	v[1] = app.AnnualIncome

	code, err := b.encode(encoder.FieldJobType, app.JobType)
	if err != nil {
		return Vector{}, err
	}
	v[2] = float64(code)

	if err := checkRange("credit_score", app.CreditScore, MinCreditScore, MaxCreditScore); err != nil {
		return Vector{}, err
	}
	v[3] = app.CreditScore

	if code, err = b.encode(encoder.FieldMaritalStatus, app.MaritalStatus); err != nil {
		return Vector{}, err
	}
	v[4] = float64(code)

	if code, err = b.encode(encoder.FieldEducationLevel, app.EducationLevel); err != nil {
		return Vector{}, err
	}
	v[5] = float64(code)

	return v, nil
}

func (b *Builder) encode(field, label string) (int, error) {
	if label == "" {
		return 0, &InvalidFieldError{Field: field, Reason: "is required"}
	}
	return b.registry.Encode(field, label)
}

func checkRange(field string, value, min, max float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &InvalidFieldError{Field: field, Reason: "must be a finite number"}
	}
	if value < min || value > max {
		return &InvalidFieldError{Field: field, Reason: fmt.Sprintf("must be between %g and %g", min, max)}
	}
	return nil
}
