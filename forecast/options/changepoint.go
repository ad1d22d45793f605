package options

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-forecaster-server/feature"
	"github.com/aouyang1/go-forecaster-server/forecast/util"
)

const DefaultChangepointRange = 0.8

var (
	ErrNegativeAutoChangepoints = errors.New("number of auto changepoints cannot be negative")
	ErrInvalidChangepointRange  = errors.New("changepoint range must be within (0, 1]")
	ErrUnsetChangepointTime     = errors.New("changepoint time is unset")
)

// Changepoint describes a point in time after which the trend is allowed to change slope.
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the trend changepoints. Explicit changepoints are used as is.
// Setting Auto places that many changepoints evenly in the first Range fraction of the training
// window, leaving the tail of the history to estimate the last slope.
type ChangepointOptions struct {
	Changepoints []Changepoint `json:"changepoints"`
	Auto         int           `json:"auto"`
	Range        float64       `json:"range"`
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
		fmt.Fprintf(tbl, "%s%sName\tDatetime\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	}
	fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noCfg)
	for _, chpt := range c.Changepoints {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T.Format(time.RFC3339))
	}
	return tbl.Flush()
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		Range: DefaultChangepointRange,
	}
}

func (c ChangepointOptions) Validate() error {
	if c.Auto < 0 {
		return fmt.Errorf("got %d, %w", c.Auto, ErrNegativeAutoChangepoints)
	}
	if c.Range < 0 || c.Range > 1 {
		return fmt.Errorf("got %.3f, %w", c.Range, ErrInvalidChangepointRange)
	}
	for i, chpt := range c.Changepoints {
		if chpt.T.IsZero() {
			return fmt.Errorf("changepoint %d, %w", i, ErrUnsetChangepointTime)
		}
	}
	return nil
}

// Resolve returns the changepoints that fall strictly inside the training window. Automatic
// changepoints replace any explicit ones.
func (c ChangepointOptions) Resolve(start, end time.Time) ChangepointOptions {
	rng := c.Range
	if rng <= 0 {
		rng = DefaultChangepointRange
	}
	res := ChangepointOptions{Range: rng}

	chpts := c.Changepoints
	if c.Auto > 0 {
		chpts = generateAutoChangepoints(start, end, c.Auto, rng)
	}
	for _, chpt := range chpts {
		// a changepoint at or before the start duplicates the growth feature and one at or
		// after the end is never observed
		if !chpt.T.After(start) || !chpt.T.Before(end) {
			continue
		}
		res.Changepoints = append(res.Changepoints, chpt)
	}
	return res
}

func generateAutoChangepoints(start, end time.Time, n int, rng float64) []Changepoint {
	window := float64(end.Sub(start)) * rng
	chpts := make([]Changepoint, 0, n)
	for i := 1; i <= n; i++ {
		offset := time.Duration(math.Round(window * float64(i) / float64(n+1)))
		chpts = append(chpts, NewChangepoint("auto_"+strconv.Itoa(i-1), start.Add(offset)))
	}
	return chpts
}

// GenerateFeatures generates a slope feature per changepoint that ramps from 0 at the
// changepoint to 1 at the training end time.
func (c ChangepointOptions) GenerateFeatures(t []time.Time, trainEnd time.Time) (*feature.Set, error) {
	x := feature.NewSet()
	for i, chpt := range c.Changepoints {
		if chpt.T.After(trainEnd) {
			continue
		}
		name := strconv.Itoa(i)
		if chpt.Name != "" {
			name = chpt.Name
		}
		f := feature.NewChangepoint(name, feature.ChangepointCompSlope)
		if err := x.Set(f, f.Generate(t, chpt.T, trainEnd)); err != nil {
			return nil, err
		}
	}
	return x, nil
}
