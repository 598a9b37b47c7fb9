/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	types.go: Flattened track samples and the wind vectors derived from them.
*/

package windcalc

import (
	"fmt"
	"math"
)

// Sample is one point of the reconstructed track.
type Sample struct {
	Latitude      float64
	Longitude     float64
	AltitudeM     float64
	SensorSpeedMs float64
}

// Flags on a WindVector. Set whenever an input sentinel leaked into the calculation.
const (
	FlagCorruptedAltitude uint8 = 1 << iota
	FlagNoDisplacement
)

// WindVector is the horizontal wind at one altitude. North/East in m/s.
type WindVector struct {
	AltitudeM float64
	NorthMs   float64
	EastMs    float64
	Bearing   float64 // drift bearing, degrees from north, or NoDisplacement
	Flags     uint8
}

func (v WindVector) Flagged() bool {
	return v.Flags != 0
}

// Speed is the magnitude of the horizontal wind.
func (v WindVector) Speed() float64 {
	return math.Hypot(v.NorthMs, v.EastMs)
}

// TracePoint is one row of the map trace. Index is 1-based.
type TracePoint struct {
	Index     int
	Latitude  float64
	Longitude float64
	AltitudeM float64
}

type InvalidTimeStepError struct {
	TimeStep float64
}

func (e *InvalidTimeStepError) Error() string {
	return fmt.Sprintf("invalid time step %v s: must be a positive number of seconds", e.TimeStep)
}

// CheckTimeStep returns an *InvalidTimeStepError unless ts is a finite positive number.
func CheckTimeStep(ts float64) error {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return &InvalidTimeStepError{TimeStep: ts}
	}
	return nil
}

// Trace numbers the samples for the map output.
func Trace(samples []Sample) []TracePoint {
	out := make([]TracePoint, len(samples))
	for i, s := range samples {
		out[i] = TracePoint{Index: i + 1, Latitude: s.Latitude, Longitude: s.Longitude, AltitudeM: s.AltitudeM}
	}
	return out
}
