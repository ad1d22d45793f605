package feature

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type ChangepointComp string

const (
	ChangepointCompSlope ChangepointComp = "slope"
)

// Changepoint is a point in time after which the trend is allowed to change slope
type Changepoint struct {
	Name            string          `json:"name"`
	ChangepointComp ChangepointComp `json:"changepoint_component"`
}

func NewChangepoint(name string, comp ChangepointComp) *Changepoint {
	return &Changepoint{name, comp}
}

func (c Changepoint) String() string {
	return fmt.Sprintf("chpnt_%s_%s", c.Name, c.ChangepointComp)
}

func (c Changepoint) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return c.Name, true
	case "changepoint_component":
		return string(c.ChangepointComp), true
	}
	return "", false
}

func (c Changepoint) Type() FeatureType {
	return FeatureTypeChangepoint
}

func (c Changepoint) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = c.Name
	res["changepoint_component"] = string(c.ChangepointComp)
	return res
}

// Generate produces a ramp starting at the changepoint time which reaches 1 at the training
// end time. Points before the changepoint are 0.
func (c Changepoint) Generate(t []time.Time, chpt, trainEnd time.Time) []float64 {
	delta := trainEnd.Sub(chpt).Seconds()
	if delta <= 0 {
		delta = 1
	}

	res := make([]float64, len(t))
	for i, tPnt := range t {
		if tPnt.Before(chpt) {
			continue
		}
		res[i] = tPnt.Sub(chpt).Seconds() / delta
	}
	return res
}

func (c *Changepoint) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name            string          `json:"name"`
		ChangepointComp ChangepointComp `json:"changepoint_component"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	c.Name = labelStr.Name
	c.ChangepointComp = labelStr.ChangepointComp
	return nil
}
