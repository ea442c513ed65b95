package source

import (
	"fmt"
	"math"
)

// DataSet is an ordered list of labelled values. It is read-only once loaded.
type DataSet struct {
	Labels []string  `yaml:"labels" json:"labels"`
	Values []float64 `yaml:"values" json:"values"`
}

// Source supplies a validated DataSet.
type Source interface {
	Load() (DataSet, error)
	Name() string
}

func (d DataSet) Len() int {
	return len(d.Labels)
}

// Validate checks equal lengths, at least one row and finite values.
func (d DataSet) Validate() error {
	if len(d.Labels) != len(d.Values) {
		return fmt.Errorf("labels and values differ in length: %d != %d", len(d.Labels), len(d.Values))
	}
	if len(d.Labels) == 0 {
		return fmt.Errorf("data set is empty")
	}
	for i, v := range d.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %d (%s) is not a finite number", i, d.Labels[i])
		}
	}
	return nil
}

// Static wraps an in-memory DataSet.
type Static struct {
	Data DataSet
}

func (s Static) Load() (DataSet, error) {
	if err := s.Data.Validate(); err != nil {
		return DataSet{}, err
	}
	return s.Data, nil
}

func (s Static) Name() string {
	return "inline"
}
