package spring

import (
	"errors"
	"fmt"
)

// ErrInvalidParameters reports a frequency/damping ratio pair whose product is
// negative. Such a spring is pushed away from its goal forever instead of
// settling on it.
var ErrInvalidParameters = errors.New("invalid spring parameters")

// InvalidParametersError carries the rejected pair. It matches
// ErrInvalidParameters under errors.Is.
type InvalidParametersError struct {
	Frequency    float64
	DampingRatio float64
}

func (e *InvalidParametersError) Error() string {
	if e == nil {
		return ErrInvalidParameters.Error()
	}
	return fmt.Sprintf("invalid spring parameters: frequency %g with damping ratio %g cannot converge", e.Frequency, e.DampingRatio)
}

func (e *InvalidParametersError) Unwrap() error {
	return ErrInvalidParameters
}
