package feature

import (
	"errors"
	"fmt"

	mat_ "github.com/aouyang1/go-forecaster-server/mat"
	"gonum.org/v1/gonum/mat"
)

var ErrFeatureLenMismatch = errors.New("feature length does not match the rest of the set")

// Set holds the generated column of each feature in insertion order. Every column in a set
// has the same length.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

// NewSet returns an empty feature set
func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of features in the set
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Rows returns the length of each feature column
func (s *Set) Rows() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set adds or replaces the data for a feature. The first column added fixes the length of
// the set.
func (s *Set) Set(f Feature, data []float64) error {
	if len(s.labels) > 0 && len(data) != s.m {
		return fmt.Errorf("%s has length %d but set has length %d, %w", f, len(data), s.m, ErrFeatureLenMismatch)
	}
	if len(s.labels) == 0 {
		s.m = len(data)
	}

	key := f.String()
	if _, exists := s.set[key]; !exists {
		s.labels = append(s.labels, f)
	}
	s.set[key] = data
	return nil
}

// Get returns the data of a feature if it exists in the set
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	data, exists := s.set[f.String()]
	return data, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) {
	if s == nil {
		return
	}
	key := f.String()
	if _, exists := s.set[key]; !exists {
		return
	}
	delete(s.set, key)
	for i, label := range s.labels {
		if label.String() == key {
			s.labels = append(s.labels[:i], s.labels[i+1:]...)
			break
		}
	}
	if len(s.labels) == 0 {
		s.m = 0
	}
}

// Update merges all features of another set into this one
func (s *Set) Update(other *Set) error {
	if other == nil {
		return nil
	}
	for _, f := range other.labels {
		if err := s.Set(f, other.set[f.String()]); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns a new set with only the features of the given type
func (s *Set) Filter(ft FeatureType) *Set {
	res := NewSet()
	if s == nil {
		return res
	}
	for _, f := range s.labels {
		if f.Type() != ft {
			continue
		}
		res.labels = append(res.labels, f)
		res.set[f.String()] = s.set[f.String()]
		res.m = s.m
	}
	return res
}

// Labels returns the features of the set in insertion order
func (s *Set) Labels() *Labels {
	if s == nil {
		return NewLabels(nil)
	}
	labels := make([]Feature, len(s.labels))
	copy(labels, s.labels)
	return NewLabels(labels)
}

// Matrix returns the set as an m by n matrix where m is the number of observations and n is
// the number of features, ordered the same as Labels.
func (s *Set) Matrix() (*mat.Dense, error) {
	if s.Len() == 0 {
		return nil, mat_.ErrEmptyInput
	}
	cols := make([][]float64, 0, len(s.labels))
	for _, f := range s.labels {
		cols = append(cols, s.set[f.String()])
	}
	return mat_.NewDenseFromColumns(cols)
}
