/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	interpolate.go: Spread the sparse GPS fixes of a transmission over its denser
	 sensor timeline.
*/

package windcalc

import (
	"errors"
	"fmt"

	"github.com/b3nn0/balloonwind/aprsparse"
)

// ErrDecimation is returned when a transmission has more gps fixes than sensor samples.
var ErrDecimation = errors.New("more gps fixes than sensor samples")

type LayoutMismatchError struct {
	Prev aprsparse.Layout
	Curr aprsparse.Layout
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("adjacent records differ in layout: previous %s, current %s", e.Prev, e.Curr)
}

// lerp draws a straight line between two fixes and returns the point at ratio along it.
func lerp(lat1, lon1, lat2, lon2, ratio float64) (float64, float64) {
	return lat1 + ratio*(lat2-lat1), lon1 + ratio*(lon2-lon1)
}

// Interpolate turns the current transmission into one Sample per sensor reading.
// prev only provides its latest fix, to bridge the gap between the two transmissions.
//
// Sensor sample i sits at position p = qKnown*i/qWant of the gps sequence. Integral
// positions are known fixes and are copied. Otherwise the position is interpolated
// from the preceding fix ⌊p⌋ and the one after it. Samples past the latest fix keep it.
// With a single fix per transmission every sample after the first is past it, so
// prev is never bridged from and the whole transmission sits on that fix.
func Interpolate(prev, curr aprsparse.PacketRecord) ([]Sample, error) {
	if err := prev.Check(); err != nil {
		return nil, fmt.Errorf("previous: %w", err)
	}
	if err := curr.Check(); err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}
	if prev.Layout() != curr.Layout() {
		return nil, &LayoutMismatchError{Prev: prev.Layout(), Curr: curr.Layout()}
	}
	qKnown := len(curr.Latitudes)
	qWant := len(curr.Altitudes)
	if qKnown == 0 || qWant == 0 {
		return nil, fmt.Errorf("interpolate: empty record (%d gps, %d sens)", qKnown, qWant)
	}
	if qKnown > qWant {
		return nil, fmt.Errorf("interpolate %d gps onto %d sens: %w", qKnown, qWant, ErrDecimation)
	}

	lastPrev := len(prev.Latitudes) - 1
	out := make([]Sample, qWant)
	for i := 0; i < qWant; i++ {
		k := qKnown * i / qWant
		rem := qKnown * i % qWant

		var lat, lon float64
		switch {
		case rem == 0:
			lat, lon = curr.Latitudes[k], curr.Longitudes[k]
		case k+1 >= qKnown:
			lat, lon = curr.Latitudes[qKnown-1], curr.Longitudes[qKnown-1]
		default:
			ratio := float64(rem) / float64(qWant)
			if i == 1 {
				lat, lon = lerp(prev.Latitudes[lastPrev], prev.Longitudes[lastPrev],
					curr.Latitudes[k+1], curr.Longitudes[k+1], ratio)
			} else {
				lat, lon = lerp(curr.Latitudes[k], curr.Longitudes[k],
					curr.Latitudes[k+1], curr.Longitudes[k+1], ratio)
			}
		}
		out[i] = Sample{
			Latitude:      lat,
			Longitude:     lon,
			AltitudeM:     curr.Altitudes[i],
			SensorSpeedMs: curr.WindSpeeds[i],
		}
	}
	return out, nil
}
