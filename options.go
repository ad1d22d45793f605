package forecaster

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-forecaster-server/forecast/options"
)

const (
	DefaultMaxHorizon = 10000
	DefaultTimeout    = 30 * time.Second
)

var ErrInvalidOptions = errors.New("invalid engine options")

// Options configures the forecast engine
type Options struct {
	// MaxHorizon caps the number of days that can be forecasted. 0 disables the cap.
	MaxHorizon int

	// Timeout bounds a single fit and predict. 0 disables the timeout.
	Timeout time.Duration

	// ModelOptions configures the default forecast model
	ModelOptions *options.Options
}

// NewDefaultOptions returns the default engine options
func NewDefaultOptions() *Options {
	return &Options{
		MaxHorizon:   DefaultMaxHorizon,
		Timeout:      DefaultTimeout,
		ModelOptions: options.NewDefaultOptions(),
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.MaxHorizon < 0 {
		return nil, fmt.Errorf("max horizon of %d, %w", o.MaxHorizon, ErrInvalidOptions)
	}
	if o.Timeout < 0 {
		return nil, fmt.Errorf("timeout of %s, %w", o.Timeout, ErrInvalidOptions)
	}
	if o.ModelOptions == nil {
		o.ModelOptions = options.NewDefaultOptions()
	}
	if err := o.ModelOptions.Validate(); err != nil {
		return nil, fmt.Errorf("unable to validate model options, %w", err)
	}
	return o, nil
}
