package chart

import (
	"math"
	"time"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// linearScale maps a continuous domain onto a pixel range
type linearScale struct {
	d0, d1 float64
	r0, r1 float64
}

// Map converts v to a range position. A zero-width domain maps to the start of the range,
// which is the baseline for a y scale.
func (s linearScale) Map(v float64) float64 {
	if s.d1 == s.d0 {
		return s.r0
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// Ticks returns human-friendly tick values in the domain
func (s linearScale) Ticks(count int) []float64 {
	return ticks(s.d0, s.d1, count)
}

// yearScale maps calendar years (at January 1st) onto a pixel range
type yearScale struct {
	first, last int
	r0, r1      float64
}

func yearInstant(year int) float64 {
	return float64(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
}

// Map converts a year to a range position. A single-year domain maps to the middle.
func (s yearScale) Map(year int) float64 {
	t0, t1 := yearInstant(s.first), yearInstant(s.last)
	if t0 == t1 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (yearInstant(year)-t0)/(t1-t0)*(s.r1-s.r0)
}

// Ticks returns the years in the domain that are multiples of a nice step
func (s yearScale) Ticks(count int) []int {
	step := int(tickStep(float64(s.first), float64(s.last), count))
	if step < 1 {
		step = 1
	}

	var years []int
	for y := s.first; y <= s.last; y++ {
		if y%step == 0 {
			years = append(years, y)
		}
	}
	return years
}

// bandScale divides a pixel range into evenly spaced bands, one per key
type bandScale struct {
	keys      []string
	step      float64
	bandwidth float64
	start     float64
}

func newBandScale(keys []string, r0, r1, padding float64) bandScale {
	n := float64(len(keys))
	step := (r1 - r0) / math.Max(1, n-padding+padding*2)
	start := r0 + (r1-r0-step*(n-padding))*0.5
	return bandScale{
		keys:      keys,
		step:      step,
		bandwidth: step * (1 - padding),
		start:     start,
	}
}

// Position returns the left edge of the band at index i
func (s bandScale) Position(i int) float64 {
	return s.start + s.step*float64(i)
}

// Center returns the middle of the band at index i
func (s bandScale) Center(i int) float64 {
	return s.Position(i) + s.bandwidth/2
}

// ticks produces at most about count round values covering [start, stop]
func ticks(start, stop float64, count int) []float64 {
	if start == stop {
		return []float64{start}
	}
	if count <= 0 {
		return nil
	}

	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if i2 < i1 {
		return nil
	}

	n := int(i2-i1) + 1
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		if inc < 0 {
			values[i] = (i1 + float64(i)) / -inc
		} else {
			values[i] = (i1 + float64(i)) * inc
		}
	}

	if reverse {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
	}
	return values
}

// tickSpec returns the first and last tick multipliers and the increment.
// A negative increment means the inverse of a fractional step.
func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}

	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// tickStep returns the distance between ticks for the given domain and count
func tickStep(start, stop float64, count int) float64 {
	if start == stop || count <= 0 {
		return 0
	}
	if stop < start {
		start, stop = stop, start
	}
	_, _, inc := tickSpec(start, stop, float64(count))
	if inc < 0 {
		return 1 / -inc
	}
	return inc
}
