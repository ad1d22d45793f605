package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateDailyT returns n consecutive calendar days beginning at start
func GenerateDailyT(start time.Time, n int) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, 0, i))
	}
	return t
}

// Series is a simulated set of values that can be composed in place
type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) Scale(c float64) Series {
	floats.Scale(c, s)
	return s
}

// SetConst sets every value within [start, end) to val
func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	for i := range s {
		if !t[i].Before(start) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

// MaskWithWeekend zeroes every weekday value
func (s Series) MaskWithWeekend(t []time.Time) Series {
	for i := range s {
		switch t[i].Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			s[i] = 0.0
		}
	}
	return s
}

// SetMissing marks every value within [start, end) as missing
func (s Series) SetMissing(t []time.Time, start, end time.Time) Series {
	return s.SetConst(t, math.NaN(), start, end)
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, n)
	for i := range y {
		y[i] = val
	}
	return Series(y)
}

// GenerateLinearY produces a line with the given slope per day starting from 0 at t[0]
func GenerateLinearY(t []time.Time, slopePerDay float64) Series {
	y := make([]float64, len(t))
	if len(t) == 0 {
		return Series(y)
	}
	for i, tPnt := range t {
		y[i] = slopePerDay * tPnt.Sub(t[0]).Hours() / 24.0
	}
	return Series(y)
}

// GenerateWaveY produces a sine wave of the given period and order aligned to the unix epoch
func GenerateWaveY(t []time.Time, amp float64, period time.Duration, order float64) Series {
	y := make([]float64, len(t))
	periodSec := period.Seconds()
	for i, tPnt := range t {
		y[i] = amp * math.Sin(2.0*math.Pi*order/periodSec*float64(tPnt.Unix()))
	}
	return Series(y)
}

// GenerateNoise produces normally distributed noise with the given standard deviation. The
// same seed always produces the same noise.
func GenerateNoise(n int, stddev float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, n)
	for i := range y {
		y[i] = rng.NormFloat64() * stddev
	}
	return Series(y)
}

// GenerateChange produces a series that is 0 before the changepoint and then jumps by bias
// and grows at slope per day.
func GenerateChange(t []time.Time, chpt time.Time, bias, slopePerDay float64) Series {
	y := make([]float64, len(t))
	for i, tPnt := range t {
		if !tPnt.Before(chpt) {
			y[i] = bias + slopePerDay*tPnt.Sub(chpt).Hours()/24.0
		}
	}
	return Series(y)
}
