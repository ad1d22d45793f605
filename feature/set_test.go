package feature

import (
	"testing"

	mat_ "github.com/aouyang1/go-forecaster-server/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewSet()
	assert.Equal(t, 0, s.Len())

	growth := Linear()
	seas := NewSeasonality("epoch_weekly", FourierCompSin, 1)
	ev := NewEvent("weekend")

	require.Nil(t, s.Set(growth, []float64{0, 0.5, 1}))
	require.Nil(t, s.Set(seas, []float64{1, 2, 3}))
	require.Nil(t, s.Set(ev, []float64{0, 1, 0}))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 3, s.Rows())

	err := s.Set(NewEvent("short"), []float64{1})
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)

	// replacing keeps insertion order
	require.Nil(t, s.Set(seas, []float64{4, 5, 6}))
	labels := s.Labels().Labels()
	require.Len(t, labels, 3)
	assert.Equal(t, "growth_linear", labels[0].String())
	assert.Equal(t, "seas_epoch_weekly_01_sin", labels[1].String())
	assert.Equal(t, "event_weekend", labels[2].String())

	vals, exists := s.Get(seas)
	require.True(t, exists)
	assert.Equal(t, []float64{4, 5, 6}, vals)

	events := s.Filter(FeatureTypeEvent)
	assert.Equal(t, 1, events.Len())
	_, exists = events.Get(ev)
	assert.True(t, exists)

	mx, err := s.Matrix()
	require.Nil(t, err)
	r, c := mx.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 5.0, mx.At(1, 1))
	assert.Equal(t, 1.0, mx.At(1, 2))

	s.Del(seas)
	assert.Equal(t, 2, s.Len())
	_, exists = s.Get(seas)
	assert.False(t, exists)
	idx, exists := s.Labels().Index(ev)
	assert.True(t, exists)
	assert.Equal(t, 1, idx)

	other := NewSet()
	require.Nil(t, other.Set(NewChangepoint("c0", ChangepointCompSlope), []float64{0, 0, 1}))
	require.Nil(t, s.Update(other))
	assert.Equal(t, 3, s.Len())
	require.Nil(t, s.Update(nil))

	s.Del(growth)
	s.Del(ev)
	s.Del(NewChangepoint("c0", ChangepointCompSlope))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Rows())
	_, err = s.Matrix()
	assert.Equal(t, mat_.ErrEmptyInput, err)
}

func TestNilSet(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Rows())
	_, exists := s.Get(Linear())
	assert.False(t, exists)
	assert.Equal(t, 0, s.Labels().Len())
	assert.Equal(t, 0, s.Filter(FeatureTypeGrowth).Len())
	s.Del(Linear())

	var l *Labels
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Labels())
	_, exists = l.Index(Linear())
	assert.False(t, exists)
}
