package analysis

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// sampleStdDev returns the n-1 standard deviation, or 0 with fewer than 2 values.
func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// popVariance returns the population variance, or 0 for an empty slice.
func popVariance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.PopVariance(xs, nil)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func minMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

// dayKey is the calendar date of t in its own offset.
func dayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// weekKey labels the Monday..Sunday week containing t by its Sunday.
func weekKey(t time.Time) string {
	return t.AddDate(0, 0, (7-int(t.Weekday()))%7).Format(time.DateOnly)
}

// weekday returns 0 for Monday through 6 for Sunday.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// series accumulates values under string keys, remembering first-seen order.
// Fed with date-sorted records, the order is chronological.
type series struct {
	keys   []string
	values map[string][]float64
}

func newSeries() *series {
	return &series{values: make(map[string][]float64)}
}

func (s *series) add(key string, v float64) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = append(s.values[key], v)
}

// reduce applies f to every key's values.
func (s *series) reduce(f func([]float64) float64) map[string]float64 {
	out := make(map[string]float64, len(s.keys))
	for _, k := range s.keys {
		out[k] = f(s.values[k])
	}
	return out
}

// weekly regroups per-day values into week means, in chronological order.
func weekly(days *series, daily map[string]float64) map[string]float64 {
	weeks := newSeries()
	for _, d := range days.keys {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			continue
		}
		weeks.add(weekKey(t), daily[d])
	}
	return weeks.reduce(mean)
}
