/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of the "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	helpers.go: Small statistics helpers shared by the pipeline summary and the exporters.
*/

package common

import (
	"math"
)

// ArrayMin calculates the minimum value in array x
func ArrayMin(x []float64) (float64, bool) {
	if len(x) < 1 {
		return math.NaN(), false
	}

	min := x[0]
	for i := range x {
		if x[i] < min {
			min = x[i]
		}
	}
	return min, true
}

// ArrayMax calculates the maximum value in array x
func ArrayMax(x []float64) (float64, bool) {
	if len(x) < 1 {
		return math.NaN(), false
	}

	max := x[0]
	for i := range x {
		if x[i] > max {
			max = x[i]
		}
	}
	return max, true
}

// ArrayRange calculates the range of values in array x
func ArrayRange(x []float64) (float64, bool) {
	max, ok1 := ArrayMax(x)
	min, ok2 := ArrayMin(x)
	if !ok1 || !ok2 {
		return math.NaN(), false
	}
	return max - min, true
}

// Mean returns the arithmetic mean of array x
func Mean(x []float64) (float64, bool) {
	if len(x) < 1 {
		return math.NaN(), false
	}

	sum := 0.0
	for i := range x {
		sum += x[i]
	}
	return sum / float64(len(x)), true
}

// Stdev estimates the sample standard deviation of array x
func Stdev(x []float64) (float64, bool) {
	if len(x) < 2 {
		return math.NaN(), false
	}

	xbar, _ := Mean(x)
	sumsq := 0.0
	for i := range x {
		sumsq += (x[i] - xbar) * (x[i] - xbar)
	}
	return math.Sqrt(sumsq / float64(len(x)-1)), true
}

// DegreesHdg normalizes a bearing in degrees to [0, 360).
func DegreesHdg(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}
