// Package options contains all forecast options for a linear fit of a univariate time series
package options

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
	"github.com/aouyang1/go-forecaster-server/forecast/util"
	"github.com/aouyang1/go-forecaster-server/timedataset"
)

const (
	LabelTimeEpoch = "epoch"

	GrowthNone   = "none"
	GrowthLinear = feature.GrowthLinear
)

var (
	ErrUnknownTimeFeature = errors.New("unknown time feature")
	ErrUnknownGrowthType  = errors.New("unknown growth type")
	ErrUnresolvedOptions  = errors.New("options have not been resolved against training data")
)

// Options configures a forecast by specifying the growth type, changepoints, seasonality orders
// and holiday calendars to model.
type Options struct {
	GrowthType string `json:"growth_type"`

	ChangepointOptions ChangepointOptions `json:"changepoint_options"`
	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
	HolidayOptions     HolidayOptions     `json:"holiday_options"`
	WeekendOptions     WeekendOptions     `json:"weekend_options"`

	// RankTolerance is passed to the least squares solver. Zero uses the solver default.
	RankTolerance float64 `json:"rank_tolerance"`

	resolved bool
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		GrowthType:         GrowthLinear,
		ChangepointOptions: NewDefaultChangepointOptions(),
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
	}
}

// Validate checks the options for unsupported values
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	switch o.GrowthType {
	case "", GrowthNone, GrowthLinear:
	default:
		return fmt.Errorf("%q, %w", o.GrowthType, ErrUnknownGrowthType)
	}
	if err := o.ChangepointOptions.Validate(); err != nil {
		return err
	}
	if err := o.WeekendOptions.Validate(); err != nil {
		return err
	}
	return o.HolidayOptions.Validate()
}

// Resolve returns a copy of the options fixed against the training time points. Seasonalities
// that cannot be estimated from the training sampling are removed and automatic changepoints are
// placed. The resolved options generate the same feature columns for training and inference.
func (o *Options) Resolve(trainT []time.Time) *Options {
	if o == nil {
		o = NewDefaultOptions()
	}

	ts := timedataset.TimeSlice(trainT)
	interval, err := ts.EstimateFreq()
	if err != nil {
		slog.Debug("unable to estimate training frequency, skipping seasonality", "error", err.Error())
	}

	res := &Options{
		GrowthType:         o.GrowthType,
		ChangepointOptions: o.ChangepointOptions.Resolve(ts.StartTime(), ts.EndTime()),
		SeasonalityOptions: o.SeasonalityOptions.Resolve(interval, ts.Span()),
		HolidayOptions:     o.HolidayOptions,
		WeekendOptions:     o.WeekendOptions,
		RankTolerance:      o.RankTolerance,
		resolved:           true,
	}
	return res
}

// Resolved returns true if the options were produced by Resolve or loaded from a model
func (o *Options) Resolved() bool {
	return o != nil && o.resolved
}

// MarkResolved flags options loaded from a serialized model as resolved
func (o *Options) MarkResolved() {
	if o == nil {
		return
	}
	o.resolved = true
}

// GenerateFeatures generates every feature column for the input time points given the training
// window. Options must be resolved.
func (o *Options) GenerateFeatures(t []time.Time, trainStart, trainEnd time.Time) (*feature.Set, error) {
	if !o.Resolved() {
		return nil, ErrUnresolvedOptions
	}

	epochFeat := feature.NewTime(LabelTimeEpoch)
	epoch := epochFeat.Generate(t)

	x := feature.NewSet()

	if o.GrowthType == "" || o.GrowthType == GrowthLinear {
		linear := feature.Linear()
		if err := x.Set(linear, linear.Generate(epoch, trainStart, trainEnd)); err != nil {
			return nil, err
		}
	}

	chptFeat, err := o.ChangepointOptions.GenerateFeatures(t, trainEnd)
	if err != nil {
		return nil, fmt.Errorf("unable to generate changepoint features, %w", err)
	}
	if err := x.Update(chptFeat); err != nil {
		return nil, err
	}

	seasFeat, err := o.SeasonalityOptions.GenerateFeatures(epoch)
	if err != nil {
		return nil, fmt.Errorf("unable to generate seasonality features, %w", err)
	}
	if err := x.Update(seasFeat); err != nil {
		return nil, err
	}

	holFeat, err := o.HolidayOptions.GenerateFeatures(t)
	if err != nil {
		return nil, fmt.Errorf("unable to generate holiday features, %w", err)
	}
	if err := x.Update(holFeat); err != nil {
		return nil, err
	}

	wkndFeat, err := o.WeekendOptions.GenerateFeatures(t)
	if err != nil {
		return nil, fmt.Errorf("unable to generate weekend features, %w", err)
	}
	if err := x.Update(wkndFeat); err != nil {
		return nil, err
	}
	return x, nil
}

// TablePrint writes a human readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if o == nil {
		return nil
	}

	growth := o.GrowthType
	if growth == "" {
		growth = GrowthLinear
	}
	if _, err := fmt.Fprintf(w, "%s%sGrowth: %s\n", prefix, util.IndentExpand(indent, indentGrowth), growth); err != nil {
		return err
	}
	if err := o.SeasonalityOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.ChangepointOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	if err := o.HolidayOptions.TablePrint(w, prefix, indent, indentGrowth); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s%sWeekend: %t\n", prefix, util.IndentExpand(indent, indentGrowth), o.WeekendOptions.Enabled)
	return err
}
