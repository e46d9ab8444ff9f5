package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the values of a counter list.
type Summary struct {
	Count int
	Total int
	Mean  float64
	Max   int
}

// Summarize computes totals over counters. An empty list yields a zero Summary.
func Summarize(counters []Counter) Summary {
	if len(counters) == 0 {
		return Summary{}
	}
	values := make([]float64, len(counters))
	for i, c := range counters {
		values[i] = float64(c.Value)
	}
	return Summary{
		Count: len(counters),
		Total: int(floats.Sum(values)),
		Mean:  stat.Mean(values, nil),
		Max:   int(floats.Max(values)),
	}
}

// Share returns v as a fraction of the summary maximum, for bar rendering.
func (s Summary) Share(v int) float64 {
	if s.Max <= 0 {
		return 0
	}
	return float64(v) / float64(s.Max)
}
