package forecast

import (
	"bytes"
	"testing"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
	"github.com/aouyang1/go-forecaster-server/forecast/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelTablePrint(t *testing.T) {
	var buf bytes.Buffer
	require.Nil(t, Model{}.TablePrint(&buf, "", "  "))
	assert.Equal(t, `Forecast:
  Training Window: 0001-01-01T00:00:00Z to 0001-01-01T00:00:00Z
Weights:
        Type Labels Value
   Intercept        0.000
`, buf.String())

	buf.Reset()
	m := Model{
		TrainStartTime: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		TrainEndTime:   time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		Options: &options.Options{
			GrowthType: options.GrowthLinear,
			ChangepointOptions: options.ChangepointOptions{
				Changepoints: []options.Changepoint{
					options.NewChangepoint("c0", time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)),
				},
			},
			SeasonalityOptions: options.SeasonalityOptions{
				SeasonalityConfigs: []options.SeasonalityConfig{
					{Name: "s0", Period: 12 * time.Hour, Orders: 1},
				},
			},
		},
		Scores: &Scores{
			MAPE: 0.1234,
			MSE:  1.2345,
			R2:   0.0123,
		},
		Weights: Weights{
			Intercept: 1.1,
			Coef: []FeatureWeight{
				NewFeatureWeight(feature.NewChangepoint("c0", feature.ChangepointCompSlope), 9.8),
				NewFeatureWeight(feature.NewSeasonality("s0", feature.FourierCompSin, 1), 8.7),
				NewFeatureWeight(feature.NewEvent("e0"), 0),
			},
		},
	}
	require.Nil(t, m.TablePrint(&buf, "", "  "))
	out := buf.String()
	assert.Contains(t, out, "  Training Window: 1970-01-01T00:00:00Z to 1970-01-03T00:00:00Z\n")
	assert.Contains(t, out, "  Growth: linear\n")
	assert.Contains(t, out, "  Seasonality:\n")
	assert.Contains(t, out, "  Changepoints:\n")
	assert.Contains(t, out, "MAPE: 0.123    MSE: 1.234    R2: 0.012\n")
	assert.Contains(t, out, `{"changepoint_component":"slope","name":"c0"} 9.800`)
	assert.Contains(t, out, `{"fourier_component":"sin","name":"s0","order":"1"} 8.700`)
	assert.Contains(t, out, `{"name":"e0"}   ...`)
}

func TestFeatureWeightToFeature(t *testing.T) {
	testData := map[string]struct {
		f feature.Feature
	}{
		"changepoint": {feature.NewChangepoint("c0", feature.ChangepointCompSlope)},
		"seasonality": {feature.NewSeasonality("epoch_weekly", feature.FourierCompCos, 3)},
		"event":       {feature.NewEvent("us_christmas_day")},
		"growth":      {feature.Linear()},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			fw := NewFeatureWeight(td.f, 1.0)
			res, err := fw.ToFeature()
			require.Nil(t, err)
			assert.Equal(t, td.f.String(), res.String())
			assert.Equal(t, td.f.Type(), res.Type())
		})
	}

	fw := FeatureWeight{Type: feature.FeatureTypeTime}
	_, err := fw.ToFeature()
	assert.ErrorIs(t, err, ErrUnknownFeatureType)

	var nilFw *FeatureWeight
	_, err = nilFw.ToFeature()
	assert.Equal(t, ErrUnknownFeatureType, err)
}
