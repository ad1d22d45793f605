package server

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/goccy/go-json"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyBody      = errors.New("empty request body")
	ErrInvalidDate    = errors.New("unrecognized date")
	ErrInvalidValue   = errors.New("value must be a number or null")
	ErrInvalidPair    = errors.New("feature must be a [date, value] pair")
)

// DateLayouts are the accepted feature date formats, tried in order. Layouts without a zone are
// read as UTC.
var DateLayouts = []string{
	forecaster.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

// ForecastRequest is the body of a predict call. Features are [date, value] pairs and
// ForecastLength is the number of days to forecast after the latest date.
type ForecastRequest struct {
	Features       []json.RawMessage `json:"features"`
	ForecastLength *int              `json:"forecastLength"`
}

// ForecastResponse is the body of a successful predict call
type ForecastResponse struct {
	Prediction []forecaster.Point `json:"prediction"`
}

// ErrorResponse is the body of every failed call
type ErrorResponse struct {
	Error string `json:"error"`
}

// DecodeForecastRequest decodes the raw body. Any syntax or type error is returned as is and
// is reported to the caller as invalid json.
func DecodeForecastRequest(body []byte) (*ForecastRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}
	var req ForecastRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Horizon returns the requested forecast length or the default when absent
func (r *ForecastRequest) Horizon(defaultHorizon int) (int, error) {
	if r.ForecastLength == nil {
		return defaultHorizon, nil
	}
	if *r.ForecastLength <= 0 {
		return 0, fmt.Errorf("%w, forecastLength must be a positive integer, got %d", ErrInvalidRequest, *r.ForecastLength)
	}
	return *r.ForecastLength, nil
}

// Observations converts the features into engine observations. A null value is a missing
// observation.
func (r *ForecastRequest) Observations() ([]forecaster.Observation, error) {
	obs := make([]forecaster.Observation, 0, len(r.Features))
	for i, raw := range r.Features {
		o, err := parseFeature(raw)
		if err != nil {
			return nil, fmt.Errorf("%w, feature %d: %w", ErrInvalidRequest, i, err)
		}
		obs = append(obs, o)
	}
	return obs, nil
}

func parseFeature(raw json.RawMessage) (forecaster.Observation, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return forecaster.Observation{}, ErrInvalidPair
	}

	var dateStr string
	if err := json.Unmarshal(pair[0], &dateStr); err != nil {
		return forecaster.Observation{}, fmt.Errorf("date must be a string, %w", ErrInvalidDate)
	}
	t, err := ParseDate(dateStr)
	if err != nil {
		return forecaster.Observation{}, err
	}

	val, err := parseValue(pair[1])
	if err != nil {
		return forecaster.Observation{}, err
	}
	return forecaster.Observation{Time: t, Value: val}, nil
}

// ParseDate parses a feature date with the first matching layout
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", s, ErrInvalidDate)
}

func parseValue(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return math.NaN(), nil
	}

	var val float64
	if err := json.Unmarshal(raw, &val); err == nil {
		return val, nil
	}

	// numeric strings are accepted the same way as numbers
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%s, %w", string(raw), ErrInvalidValue)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("%q, %w", s, ErrInvalidValue)
	}
	return val, nil
}
