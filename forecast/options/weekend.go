package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
)

const LabelEventWeekend = "weekend"

var ErrInvalidTimezone = errors.New("invalid timezone")

// WeekendOptions lets us model weekends separately from weekdays. The weekend is evaluated in
// the dataset timezone unless TimezoneOverride names an IANA location.
type WeekendOptions struct {
	Enabled          bool   `json:"enabled"`
	TimezoneOverride string `json:"timezone_override"`
}

func (w WeekendOptions) Validate() error {
	if w.TimezoneOverride == "" {
		return nil
	}
	if _, err := time.LoadLocation(w.TimezoneOverride); err != nil {
		return fmt.Errorf("%q, %w", w.TimezoneOverride, ErrInvalidTimezone)
	}
	return nil
}

func isWeekend(tPnt time.Time) bool {
	wkday := tPnt.Weekday()
	return wkday == time.Saturday || wkday == time.Sunday
}

// GenerateFeatures returns a single event feature that is 1 on Saturdays and Sundays
func (w WeekendOptions) GenerateFeatures(t []time.Time) (*feature.Set, error) {
	x := feature.NewSet()
	if !w.Enabled || len(t) == 0 {
		return x, nil
	}

	var loc *time.Location
	if w.TimezoneOverride != "" {
		var err error
		loc, err = time.LoadLocation(w.TimezoneOverride)
		if err != nil {
			return nil, fmt.Errorf("%q, %w", w.TimezoneOverride, ErrInvalidTimezone)
		}
	}

	mask := make([]float64, len(t))
	for i, tPnt := range t {
		if loc != nil {
			tPnt = tPnt.In(loc)
		}
		if isWeekend(tPnt) {
			mask[i] = 1.0
		}
	}
	if err := x.Set(feature.NewEvent(LabelEventWeekend), mask); err != nil {
		return nil, err
	}
	return x, nil
}
