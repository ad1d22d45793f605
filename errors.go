package forecaster

import (
	"errors"
)

var (
	ErrInvalidHorizon           = errors.New("forecast length must be a positive integer")
	ErrHorizonTooLarge          = errors.New("forecast length exceeds the maximum")
	ErrInvalidObservation       = errors.New("observation value must be finite or missing")
	ErrInsufficientObservations = errors.New("at least 2 observations with distinct dates are required")
	ErrPredictionLenMismatch    = errors.New("model returned a different number of predictions than requested")
	ErrNonFinitePrediction      = errors.New("model produced a non-finite prediction")
	ErrModelPanic               = errors.New("model panicked")
	ErrTimeout                  = errors.New("forecast timed out")
	ErrCanceled                 = errors.New("forecast canceled")
)

// FitError is returned when the model cannot be fit to the observations or cannot produce a
// usable prediction. The cause is available through errors.Is and errors.As.
type FitError struct {
	Err error
}

func (e *FitError) Error() string {
	if e == nil || e.Err == nil {
		return "unable to fit forecast model"
	}
	return "unable to fit forecast model, " + e.Err.Error()
}

func (e *FitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newFitError(err error) error {
	return &FitError{Err: err}
}
