package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
	"github.com/aouyang1/go-forecaster-server/forecast/options"
	"github.com/aouyang1/go-forecaster-server/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func weeklySine(t []time.Time, bias, amp float64) []float64 {
	y := make([]float64, len(t))
	period := (7 * 24 * time.Hour).Seconds()
	for i, tPnt := range t {
		epoch := float64(tPnt.UnixNano()) / 1e9
		y[i] = bias + amp*math.Sin(2.0*math.Pi*epoch/period)
	}
	return y
}

func TestFitLinear(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tTrain := timedataset.GenerateDailyT(start, 3)
	y := []float64{10, 12, 11}

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, y))

	assert.InDelta(t, 10.5, f.Intercept(), 1e-9)
	coef, err := f.Coefficients()
	require.Nil(t, err)
	assert.InDelta(t, 1.0, coef["growth_linear"], 1e-9)
	assert.Len(t, coef, 1)

	eq, err := f.ModelEq()
	require.Nil(t, err)
	assert.Equal(t, "y ~ 10.50+1.00*growth_linear", eq)

	res, comp, err := f.Predict(timedataset.GenerateDailyT(start, 5)[3:])
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{12.0, 12.5}, res, 1e-9)
	assert.InDeltaSlice(t, res, comp.Trend, 1e-9)
	assert.InDeltaSlice(t, []float64{0, 0}, comp.Seasonality, 1e-9)

	assert.InDeltaSlice(t, []float64{-0.5, 1.0, -0.5}, f.Residuals(), 1e-9)
	assert.Len(t, f.TrendComponent(), 3)
	assert.Len(t, f.SeasonalityComponent(), 3)
}

func TestFitWeeklySeasonality(t *testing.T) {
	start := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	tTrain := make([]time.Time, 0, 60*4)
	for i := 0; i < 60*4; i++ {
		tTrain = append(tTrain, start.Add(time.Duration(i)*6*time.Hour))
	}
	bias, amp := 7.9, 4.3
	y := weeklySine(tTrain, bias, amp)

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, y))

	assert.InDelta(t, bias, f.Intercept(), 1e-6)
	coef, err := f.Coefficients()
	require.Nil(t, err)
	assert.InDelta(t, amp, coef["seas_epoch_weekly_01_sin"], 1e-6)
	assert.InDelta(t, 0.0, coef["seas_epoch_weekly_01_cos"], 1e-6)
	assert.InDelta(t, 0.0, coef["growth_linear"], 1e-6)

	scores := f.Scores()
	assert.Less(t, scores.MSE, 1e-9)
	assert.Less(t, scores.MAPE, 1e-6)
	assert.InDelta(t, 1.0, scores.R2, 1e-9)

	// predict the following week and split into components
	future := make([]time.Time, 28)
	for i := range future {
		future[i] = tTrain[len(tTrain)-1].Add(time.Duration(i+1) * 6 * time.Hour)
	}
	res, comp, err := f.Predict(future)
	require.Nil(t, err)
	assert.InDeltaSlice(t, weeklySine(future, bias, amp), res, 1e-6)

	sum := make([]float64, len(future))
	floats.Add(sum, comp.Trend)
	floats.Add(sum, comp.Seasonality)
	floats.Add(sum, comp.Event)
	assert.InDeltaSlice(t, res, sum, 1e-9)
}

func TestFitWithNaNs(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tTrain := timedataset.GenerateDailyT(start, 4)
	y := []float64{10, math.NaN(), 12, 11}

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, y))

	res, _, err := f.Predict(tTrain)
	require.Nil(t, err)
	for _, v := range res {
		assert.False(t, math.IsNaN(v))
	}
	residuals := f.Residuals()
	require.Len(t, residuals, 4)
	assert.True(t, math.IsNaN(residuals[1]))
}

func TestFitErrors(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		t   []time.Time
		y   []float64
		err error
	}{
		"single point": {
			t:   timedataset.GenerateDailyT(start, 1),
			y:   []float64{1},
			err: ErrInsufficientTrainingData,
		},
		"single point after dropping nans": {
			t:   timedataset.GenerateDailyT(start, 3),
			y:   []float64{math.NaN(), 1, math.NaN()},
			err: ErrInsufficientTrainingData,
		},
		"no data": {
			err: timedataset.ErrNoTrainingData,
		},
		"unordered": {
			t:   []time.Time{start.AddDate(0, 0, 1), start},
			y:   []float64{1, 2},
			err: timedataset.ErrNonMontonic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.Nil(t, err)
			assert.ErrorIs(t, f.Fit(td.t, td.y), td.err)
		})
	}

	_, err := New(&options.Options{GrowthType: "exponential"})
	assert.ErrorIs(t, err, options.ErrUnknownGrowthType)

	f, err := New(nil)
	require.Nil(t, err)
	_, _, err = f.Predict(timedataset.GenerateDailyT(start, 2))
	assert.Equal(t, ErrUntrainedForecast, err)
	_, err = f.Model()
	assert.Equal(t, ErrUntrainedForecast, err)

	var nilForecast *Forecast
	assert.Equal(t, ErrUninitializedForecast, nilForecast.Fit(nil, nil))
	assert.Equal(t, 0.0, nilForecast.Intercept())
	assert.Equal(t, Scores{}, nilForecast.Scores())
}

func TestFitInterceptOnly(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	f, err := New(&options.Options{GrowthType: options.GrowthNone})
	require.Nil(t, err)
	require.Nil(t, f.Fit(timedataset.GenerateDailyT(start, 3), []float64{10, 12, 14}))

	assert.InDelta(t, 12.0, f.Intercept(), 1e-9)
	_, err = f.Coefficients()
	assert.Equal(t, ErrNoModelCoefficients, err)

	res, _, err := f.Predict(timedataset.GenerateDailyT(start, 5))
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{12, 12, 12, 12, 12}, res, 1e-9)
}

func TestFitDropsUnsupportedFeatures(t *testing.T) {
	// 2023-01-01 is a Sunday
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	opt := options.NewDefaultOptions()
	opt.WeekendOptions.Enabled = true
	opt.HolidayOptions.Countries = []string{"us"}

	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(timedataset.GenerateDailyT(start, 2), []float64{3, 5}))

	labels := f.FeatureLabels()
	require.Len(t, labels, 1)
	assert.Equal(t, "growth_linear", labels[0].String())

	res, _, err := f.Predict(timedataset.GenerateDailyT(start, 4))
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{3, 5, 7, 9}, res, 1e-9)
}

func TestFitFromModel(t *testing.T) {
	start := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	tTrain := timedataset.GenerateDailyT(start, 90)
	y := weeklySine(tTrain, 3.0, 1.5)
	for i := range y {
		y[i] += 0.01 * float64(i)
	}

	opt := options.NewDefaultOptions()
	opt.ChangepointOptions.Auto = 2
	opt.HolidayOptions.Countries = []string{"us"}
	opt.WeekendOptions.Enabled = true

	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, y))

	expected, _, err := f.Predict(timedataset.GenerateDailyT(start, 120))
	require.Nil(t, err)

	model, err := f.Model()
	require.Nil(t, err)

	out, err := json.Marshal(model)
	require.Nil(t, err)

	var loaded Model
	require.Nil(t, json.Unmarshal(out, &loaded))

	// generate new forecast from the previous model and perform inference
	f2, err := NewFromModel(loaded)
	require.Nil(t, err)

	res, _, err := f2.Predict(timedataset.GenerateDailyT(start, 120))
	require.Nil(t, err)
	assert.InDeltaSlice(t, expected, res, 1e-9)
	assert.Equal(t, f.Scores(), f2.Scores())
	assert.InDelta(t, f.Intercept(), f2.Intercept(), 1e-12)

	for _, label := range f2.FeatureLabels() {
		assert.NotEqual(t, feature.FeatureTypeTime, label.Type())
	}
}

func TestFitSimulatedChangepoint(t *testing.T) {
	start := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	tTrain := timedataset.GenerateDailyT(start, 120)
	chpt := start.AddDate(0, 0, 60)

	y := timedataset.GenerateConstY(len(tTrain), 50).
		Add(timedataset.GenerateLinearY(tTrain, 0.5)).
		Add(timedataset.GenerateChange(tTrain, chpt, 0, -1.5)).
		Add(timedataset.GenerateWaveY(tTrain, 3, 7*24*time.Hour, 1)).
		Add(timedataset.GenerateNoise(len(tTrain), 0.1, 42))

	opt := options.NewDefaultOptions()
	opt.ChangepointOptions.Changepoints = []options.Changepoint{options.NewChangepoint("shift", chpt)}

	f, err := New(opt)
	require.Nil(t, err)
	require.Nil(t, f.Fit(tTrain, y))

	scores := f.Scores()
	assert.Greater(t, scores.R2, 0.99)

	// the trend after the changepoint is declining at a net 1 per day
	future := timedataset.GenerateDailyT(tTrain[len(tTrain)-1], 8)[1:]
	res, comp, err := f.Predict(future)
	require.Nil(t, err)
	assert.Len(t, res, 7)
	assert.InDelta(t, -6.0, comp.Trend[6]-comp.Trend[0], 0.2)
}
