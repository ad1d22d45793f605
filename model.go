package forecaster

import (
	"time"

	"github.com/aouyang1/go-forecaster-server/forecast"
	"github.com/aouyang1/go-forecaster-server/forecast/options"
)

// Model is a forecasting routine. Fit is called once with the observations sorted by time,
// then Predict is called with the times to forecast. Missing values are passed as NaN.
type Model interface {
	Fit(t []time.Time, y []float64) error
	Predict(t []time.Time) ([]float64, error)
}

// ModelFactory builds a new unfitted model. The engine calls it once per forecast so no model
// instance is shared between requests.
type ModelFactory func() (Model, error)

// SeriesModel adapts a linear forecast of trend, seasonality and holidays to the Model interface
type SeriesModel struct {
	f *forecast.Forecast
}

// NewSeriesModel creates an unfitted series model. Nil options use the defaults.
func NewSeriesModel(opt *options.Options) (*SeriesModel, error) {
	f, err := forecast.New(opt)
	if err != nil {
		return nil, err
	}
	return &SeriesModel{f: f}, nil
}

// NewSeriesModelFactory returns a factory of series models sharing the same read-only options
func NewSeriesModelFactory(opt *options.Options) ModelFactory {
	return func() (Model, error) {
		return NewSeriesModel(opt)
	}
}

func (s *SeriesModel) Fit(t []time.Time, y []float64) error {
	return s.f.Fit(t, y)
}

func (s *SeriesModel) Predict(t []time.Time) ([]float64, error) {
	res, _, err := s.f.Predict(t)
	return res, err
}

// Forecast returns the underlying forecast for inspecting the fit model
func (s *SeriesModel) Forecast() *forecast.Forecast {
	return s.f
}
