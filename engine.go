// Package forecaster fits a forecasting model to unordered historical observations and returns a
// daily forecast for the calendar days following the last observation.
package forecaster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-forecaster-server/timedataset"
)

// Engine adapts observations to a Model and shapes its output into daily forecast points. An
// Engine is safe for concurrent use since it builds a new model for every forecast.
type Engine struct {
	opt      *Options
	newModel ModelFactory
	nowFunc  func() time.Time
}

// Result holds the output of a single forecast
type Result struct {
	// Cutoff is the latest observation time including observations with missing values
	Cutoff time.Time

	// History is the sorted, merged series the model was fit on
	History *timedataset.TimeDataset

	// Fitted holds the model prediction at each History time
	Fitted []float64

	// Points are the forecasts for each day after the cutoff in ascending order
	Points []Point

	// Model is the fitted model
	Model Model
}

// New creates a forecast engine. If factory is nil the series model configured by the options
// is used.
func New(opt *Options, factory ModelFactory) (*Engine, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if factory == nil {
		factory = NewSeriesModelFactory(opt.ModelOptions)
	}
	return &Engine{
		opt:      opt,
		newModel: factory,
		nowFunc:  time.Now,
	}, nil
}

// Forecast fits a new model to the observations and returns horizon daily points following the
// latest observation.
func (e *Engine) Forecast(ctx context.Context, obs []Observation, horizon int) ([]Point, error) {
	res, err := e.Run(ctx, obs, horizon)
	if err != nil {
		return nil, err
	}
	return res.Points, nil
}

// Run is the same as Forecast, but also returns the fitted history and model. Fitting and
// prediction are bounded by ctx and the configured timeout. A timed out model keeps running
// in the background until it returns, but its result is discarded.
func (e *Engine) Run(ctx context.Context, obs []Observation, horizon int) (*Result, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}
	if e.opt.MaxHorizon > 0 && horizon > e.opt.MaxHorizon {
		return nil, fmt.Errorf("got %d with a maximum of %d, %w", horizon, e.opt.MaxHorizon, ErrHorizonTooLarge)
	}

	if e.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opt.Timeout)
		defer cancel()
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)

	start := e.nowFunc()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: newFitError(fmt.Errorf("%v, %w", r, ErrModelPanic))}
			}
		}()
		res, err := e.run(obs, horizon)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			slog.Debug("forecast complete",
				"observations", len(obs),
				"horizon", horizon,
				"duration", e.nowFunc().Sub(start),
			)
		}
		return out.res, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("after %s, %w", e.nowFunc().Sub(start).Round(time.Millisecond), ErrTimeout)
		}
		return nil, fmt.Errorf("%w, %w", ErrCanceled, ctx.Err())
	}
}

func (e *Engine) run(obs []Observation, horizon int) (*Result, error) {
	td, err := prepare(obs)
	if err != nil {
		return nil, err
	}

	model, err := e.newModel()
	if err != nil {
		return nil, newFitError(fmt.Errorf("unable to create model, %w", err))
	}
	if err := model.Fit(td.T, td.Y); err != nil {
		return nil, newFitError(err)
	}

	cutoff := td.T[len(td.T)-1]
	index := make([]time.Time, 0, len(td.T)+horizon)
	index = append(index, td.T...)
	for i := 1; i <= horizon; i++ {
		index = append(index, cutoff.AddDate(0, 0, i))
	}

	predicted, err := model.Predict(index)
	if err != nil {
		return nil, newFitError(err)
	}
	if len(predicted) != len(index) {
		return nil, newFitError(fmt.Errorf("expected %d, got %d, %w", len(index), len(predicted), ErrPredictionLenMismatch))
	}

	points := make([]Point, 0, horizon)
	loc := cutoff.Location()
	for i, tPnt := range index {
		if !tPnt.After(cutoff) {
			continue
		}
		val := predicted[i]
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, newFitError(fmt.Errorf("at %s, %w", tPnt.Format(DateLayout), ErrNonFinitePrediction))
		}
		points = append(points, Point{
			Date:  tPnt.In(loc).Format(DateLayout),
			Value: val,
		})
	}

	return &Result{
		Cutoff:  cutoff,
		History: td,
		Fitted:  predicted[:len(td.T)],
		Points:  points,
		Model:   model,
	}, nil
}

// prepare sorts the observations and merges duplicate times. At least two distinct times must
// hold a value.
func prepare(obs []Observation) (*timedataset.TimeDataset, error) {
	if len(obs) == 0 {
		return nil, newFitError(fmt.Errorf("got no observations, %w", ErrInsufficientObservations))
	}

	t := make([]time.Time, len(obs))
	y := make([]float64, len(obs))
	for i, o := range obs {
		if math.IsInf(o.Value, 0) {
			return nil, fmt.Errorf("observation %d, %w", i, ErrInvalidObservation)
		}
		t[i] = o.Time
		y[i] = o.Value
	}

	td, err := timedataset.NewUnivariateDatasetFromUnordered(t, y)
	if err != nil {
		return nil, newFitError(err)
	}

	var valid int
	for _, v := range td.Y {
		if !math.IsNaN(v) {
			valid++
		}
	}
	if valid < 2 {
		return nil, newFitError(fmt.Errorf("got %d, %w", valid, ErrInsufficientObservations))
	}
	return td, nil
}
