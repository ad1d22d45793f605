package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScores(t *testing.T) {
	nan := math.NaN()
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  Scores
	}{
		"perfect": {
			predicted: []float64{1, 2, 3},
			actual:    []float64{1, 2, 3},
			expected:  Scores{MSE: 0, MAPE: 0, R2: 1},
		},
		"constant actual matched": {
			predicted: []float64{2, 2, 2},
			actual:    []float64{2, 2, 2},
			expected:  Scores{MSE: 0, MAPE: 0, R2: 1},
		},
		"with error": {
			predicted: []float64{2, 2, 4},
			actual:    []float64{1, 2, 3},
			expected:  Scores{MSE: 2.0 / 3.0, MAPE: 4.0 / 9.0, R2: 0},
		},
		"skips nans and zeros": {
			predicted: []float64{1, nan, 1, 3},
			actual:    []float64{0, 5, 2, 3},
			expected:  Scores{MSE: 2.0 / 3.0, MAPE: 0.25, R2: 1.0 - 18.0/42.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NewScores(td.predicted, td.actual)
			require.Nil(t, err)
			assert.InDelta(t, td.expected.MSE, res.MSE, 1e-9, "mse")
			assert.InDelta(t, td.expected.MAPE, res.MAPE, 1e-9, "mape")
			assert.InDelta(t, td.expected.R2, res.R2, 1e-9, "r2")
		})
	}

	_, err := NewScores([]float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrResLenMismatch)
}
