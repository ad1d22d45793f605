// Package feature defines the typed features of a forecast design matrix and the set used to
// hold their generated columns.
package feature

type FeatureType string

const (
	FeatureTypeChangepoint FeatureType = "changepoint"
	FeatureTypeSeasonality FeatureType = "seasonality"
	FeatureTypeEvent       FeatureType = "event"
	FeatureTypeGrowth      FeatureType = "growth"
	FeatureTypeTime        FeatureType = "time"
)

// Feature is a single named column of a design matrix. String must be unique per feature.
type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}
