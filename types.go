package forecaster

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the format of every forecast point date
const DateLayout = "2006-01-02"

// Observation is a single historical value of the series. A NaN value is treated as missing: it
// is skipped when fitting but still counts toward the cutoff.
type Observation struct {
	Time  time.Time
	Value float64
}

// Point is a single forecast value for a calendar date after the cutoff. It is serialized as a
// two element array of date and value.
type Point struct {
	Date  string
	Value float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Date, p.Value})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [date, value] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Date); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &p.Value)
}
