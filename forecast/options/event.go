package options

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
	"github.com/aouyang1/go-forecaster-server/forecast/util"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd      = errors.New("event start time is after end time")
	ErrUnsetTime          = errors.New("unset event start or end time")
	ErrNoEventName        = errors.New("no event name")
	ErrUnknownCountry     = errors.New("unknown holiday country")
	ErrNegativeHolidayDur = errors.New("holiday padding cannot be negative")
)

// holidayCalendars maps a country code to the holidays modeled for it
var holidayCalendars = map[string][]*cal.Holiday{
	"us": us.Holidays,
}

// Countries returns the supported holiday country codes
func Countries() []string {
	res := make([]string, 0, len(holidayCalendars))
	for c := range holidayCalendars {
		res = append(res, c)
	}
	sort.Strings(res)
	return res
}

// Event represents a time span, [Start, End), during which the series is shifted
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Holiday returns one event per year for the observed holiday that overlaps [start, end]. The
// event covers the observed calendar day in the location of start, widened by durBefore and
// durAfter.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	loc := start.Location()
	name := strings.ReplaceAll(strings.ToLower(hol.Name), " ", "_")

	var events []Event
	for yr := start.Year() - 1; yr <= end.Year()+1; yr++ {
		_, observed := hol.Calc(yr)
		if observed.IsZero() {
			continue
		}
		day := time.Date(observed.Year(), observed.Month(), observed.Day(), 0, 0, 0, 0, loc)
		ev := NewEvent(name, day.Add(-durBefore), day.AddDate(0, 0, 1).Add(durAfter))
		if ev.End.Before(start) || ev.Start.After(end) {
			continue
		}
		events = append(events, ev)
	}
	return events
}

// HolidayOptions adds an indicator feature per holiday of each configured country. Every year
// of the same holiday shares one feature.
type HolidayOptions struct {
	Countries []string      `json:"countries"`
	DurBefore time.Duration `json:"duration_before"`
	DurAfter  time.Duration `json:"duration_after"`
}

func (h HolidayOptions) Validate() error {
	for _, c := range h.Countries {
		if _, exists := holidayCalendars[strings.ToLower(c)]; !exists {
			return fmt.Errorf("%q, %w", c, ErrUnknownCountry)
		}
	}
	if h.DurBefore < 0 || h.DurAfter < 0 {
		return ErrNegativeHolidayDur
	}
	return nil
}

// GenerateFeatures generates a 0/1 event mask per holiday across the input time points
func (h HolidayOptions) GenerateFeatures(t []time.Time) (*feature.Set, error) {
	x := feature.NewSet()
	if len(t) == 0 || len(h.Countries) == 0 {
		return x, nil
	}

	start, end := t[0], t[0]
	for _, tPnt := range t {
		if tPnt.Before(start) {
			start = tPnt
		}
		if tPnt.After(end) {
			end = tPnt
		}
	}

	for _, country := range h.Countries {
		country = strings.ToLower(country)
		for _, hol := range holidayCalendars[country] {
			events := Holiday(hol, start, end, h.DurBefore, h.DurAfter)
			if len(events) == 0 {
				continue
			}

			f := feature.NewEvent(country + "_" + events[0].Name)
			mask := make([]float64, len(t))
			for _, ev := range events {
				evMask := f.Generate(t, ev.Start, ev.End)
				for i, v := range evMask {
					if v > 0 {
						mask[i] = v
					}
				}
			}
			if err := x.Set(f, mask); err != nil {
				return nil, err
			}
		}
	}
	return x, nil
}

func (h HolidayOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	noCfg := " None"
	if len(h.Countries) > 0 {
		noCfg = " " + strings.Join(h.Countries, ",")
	}
	if _, err := fmt.Fprintf(w, "%s%sHolidays:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	if len(h.Countries) == 0 || (h.DurBefore == 0 && h.DurAfter == 0) {
		return nil
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sBefore\tAfter\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	fmt.Fprintf(tbl, "%s%s%s\t%s\t\n", prefix, util.IndentExpand(indent, indentGrowth+1), h.DurBefore, h.DurAfter)
	return tbl.Flush()
}
