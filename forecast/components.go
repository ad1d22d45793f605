package forecast

// Components is the decomposition of a prediction into the sum of its additive parts. Trend
// includes the intercept.
type Components struct {
	Trend       []float64 `json:"trend"`
	Seasonality []float64 `json:"seasonality"`
	Event       []float64 `json:"event"`
}
