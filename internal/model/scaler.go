package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes each feature to zero mean and unit variance using
// statistics learned at training time
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler learns per-column mean and population standard deviation.
// Constant columns get a scale of 1 so they pass through centered.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 {
		return nil, errors.New("no samples to fit scaler")
	}
	cols := len(x[0])
	s := &Scaler{
		Mean:  make([]float64, cols),
		Scale: make([]float64, cols),
	}
	column := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i, row := range x {
			if len(row) != cols {
				return nil, fmt.Errorf("sample %d has %d features, expected %d", i, len(row), cols)
			}
			column[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s, nil
}

// Len returns the number of features the scaler was fitted on
func (s *Scaler) Len() int {
	return len(s.Mean)
}

// Transform returns a standardized copy of x
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll standardizes every row of x
func (s *Scaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}

func (s *Scaler) validate() error {
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler has %d means but %d scales", len(s.Mean), len(s.Scale))
	}
	for j, v := range s.Scale {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scaler column %d has invalid scale %v", j, v)
		}
		if math.IsNaN(s.Mean[j]) || math.IsInf(s.Mean[j], 0) {
			return fmt.Errorf("scaler column %d has invalid mean %v", j, s.Mean[j])
		}
	}
	return nil
}
