package feature

import (
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureLabels(t *testing.T) {
	testData := map[string]struct {
		f        Feature
		str      string
		ft       FeatureType
		labels   map[string]string
		getLabel string
		getVal   string
	}{
		"changepoint": {
			f:        NewChangepoint("auto_0", ChangepointCompSlope),
			str:      "chpnt_auto_0_slope",
			ft:       FeatureTypeChangepoint,
			labels:   map[string]string{"name": "auto_0", "changepoint_component": "slope"},
			getLabel: "changepoint_component",
			getVal:   "slope",
		},
		"seasonality": {
			f:        NewSeasonality("epoch_yearly", FourierCompCos, 10),
			str:      "seas_epoch_yearly_10_cos",
			ft:       FeatureTypeSeasonality,
			labels:   map[string]string{"name": "epoch_yearly", "fourier_component": "cos", "order": "10"},
			getLabel: "Order",
			getVal:   "10",
		},
		"event": {
			f:        NewEvent("us_christmas_day"),
			str:      "event_us_christmas_day",
			ft:       FeatureTypeEvent,
			labels:   map[string]string{"name": "us_christmas_day"},
			getLabel: "name",
			getVal:   "us_christmas_day",
		},
		"growth": {
			f:        Linear(),
			str:      "growth_linear",
			ft:       FeatureTypeGrowth,
			labels:   map[string]string{"name": "linear"},
			getLabel: "name",
			getVal:   "linear",
		},
		"time": {
			f:        NewTime("epoch"),
			str:      "tfeat_epoch",
			ft:       FeatureTypeTime,
			labels:   map[string]string{"name": "epoch"},
			getLabel: "name",
			getVal:   "epoch",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.str, td.f.String())
			assert.Equal(t, td.ft, td.f.Type())
			assert.Equal(t, td.labels, td.f.Decode())

			val, exists := td.f.Get(td.getLabel)
			assert.True(t, exists)
			assert.Equal(t, td.getVal, val)

			_, exists = td.f.Get("missing")
			assert.False(t, exists)
		})
	}
}

func TestFeatureUnmarshalFromLabels(t *testing.T) {
	testData := map[string]struct {
		f   Feature
		dst Feature
	}{
		"changepoint": {NewChangepoint("c1", ChangepointCompSlope), new(Changepoint)},
		"seasonality": {NewSeasonality("epoch_weekly", FourierCompSin, 2), new(Seasonality)},
		"event":       {NewEvent("weekend"), new(Event)},
		"growth":      {Linear(), new(Growth)},
		"time":        {NewTime("epoch"), new(Time)},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			out, err := json.Marshal(td.f.Decode())
			require.Nil(t, err)
			require.Nil(t, json.Unmarshal(out, td.dst))
			assert.Equal(t, td.f.String(), td.dst.String())
		})
	}

	err := json.Unmarshal([]byte(`{"name":"s","fourier_component":"sin","order":"x"}`), new(Seasonality))
	assert.NotNil(t, err)
}

func TestGenerate(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour), start.Add(3 * time.Hour)}

	epoch := NewTime("epoch").Generate(tSeries)
	assert.Equal(t, float64(start.Unix()), epoch[0])
	assert.Equal(t, 3600.0, epoch[1]-epoch[0])

	growth := Linear().Generate(epoch, start, start.Add(2*time.Hour))
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 1.5}, growth, 1e-9)

	flat := Linear().Generate(epoch, start, start)
	assert.False(t, math.IsInf(flat[3], 0))

	chpt := NewChangepoint("c", ChangepointCompSlope).Generate(tSeries, start.Add(time.Hour), start.Add(3*time.Hour))
	assert.InDeltaSlice(t, []float64{0, 0, 0.5, 1}, chpt, 1e-9)

	ev := NewEvent("e").Generate(tSeries, start.Add(time.Hour), start.Add(3*time.Hour))
	assert.Equal(t, []float64{0, 1, 1, 0}, ev)

	sin := NewSeasonality("s", FourierCompSin, 1).Generate([]float64{0, 1, 2, 3}, 4)
	assert.InDeltaSlice(t, []float64{0, 1, 0, -1}, sin, 1e-9)
}
