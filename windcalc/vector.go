/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	vector.go: Wind velocity from two consecutive samples: balloon drift from GPS plus
	 the horizontal part of the airspeed measured by the sensor.
*/

package windcalc

import (
	"math"

	"github.com/b3nn0/balloonwind/base91"
)

const (
	// WGS-84 equatorial radius, meters.
	EarthRadius = 6378137.0

	// NoDisplacement is returned by Bearing when the balloon did not move.
	// It is not a real bearing.
	NoDisplacement = 0.123456
)

// radians converts angle from degrees, and returns its value in radians
func radians(angle float64) float64 {
	return angle * math.Pi / 180.0
}

// degrees converts angle from radians, and returns its value in degrees
func degrees(angle float64) float64 {
	return angle * 180.0 / math.Pi
}

// Displacement returns the north and east components of the move from s1 to s2, in meters.
// Longitude is scaled by the cosine of s1's latitude.
func Displacement(s1, s2 Sample) (north, east float64) {
	north = (math.Pi / 180 * EarthRadius) * (s2.Latitude - s1.Latitude)
	east = (math.Pi / 180 * EarthRadius * math.Cos(radians(s1.Latitude))) * (s2.Longitude - s1.Longitude)
	return
}

// Bearing of a displacement, degrees clockwise from north.
// Returns NoDisplacement if both components are zero.
// Boundaries (one component zero) resolve to the first matching quadrant, NE first.
func Bearing(dispLat, dispLong float64) float64 {
	if dispLat == 0 && dispLong == 0 {
		return NoDisplacement
	}
	raw := math.Pi / 2
	if dispLong != 0 {
		raw = math.Pi/2 - math.Abs(math.Atan(dispLat/dispLong))
	}

	switch {
	case dispLat >= 0 && dispLong >= 0: // NE
		return degrees(raw)
	case dispLat <= 0 && dispLong >= 0: // SE
		return 90 + degrees(raw)
	case dispLat <= 0 && dispLong <= 0: // SW
		return 180 + degrees(raw)
	default: // NW
		return 270 + degrees(raw)
	}
}

// HorizontalSpeed removes the vertical rate vz from the total airspeed, v² = vh² + vz².
// Operands are swapped when the sensor reads less than vz so the result stays real.
func HorizontalSpeed(sensorSpeed, vz float64) float64 {
	if math.Abs(sensorSpeed) < math.Abs(vz) {
		return math.Sqrt(vz*vz - sensorSpeed*sensorSpeed)
	}
	return math.Sqrt(sensorSpeed*sensorSpeed - vz*vz)
}

// SplitComponents splits a horizontal speed along bearing (degrees) into east and north components.
func SplitComponents(v, bearing float64) (east, north float64) {
	return v * math.Cos(radians(bearing)), v * math.Sin(radians(bearing))
}

// Vector computes the wind between s1 and s2, timeStep seconds apart.
// Sensor speeds are m/s; the mean of both samples is used.
func Vector(s1, s2 Sample, timeStep float64) (WindVector, error) {
	if err := CheckTimeStep(timeStep); err != nil {
		return WindVector{}, err
	}

	dispLat, dispLong := Displacement(s1, s2)
	bearing := Bearing(dispLat, dispLong)

	vz := (s2.AltitudeM - s1.AltitudeM) / timeStep
	vh := HorizontalSpeed((s1.SensorSpeedMs+s2.SensorSpeedMs)/2, vz)
	east, north := SplitComponents(vh, bearing)

	v := WindVector{
		AltitudeM: s1.AltitudeM,
		NorthMs:   dispLat/timeStep + north,
		EastMs:    dispLong/timeStep + east,
		Bearing:   bearing,
	}
	if bearing == NoDisplacement {
		v.Flags |= FlagNoDisplacement
	}
	if base91.IsCorruptedAltitude(s1.AltitudeM) || base91.IsCorruptedAltitude(s2.AltitudeM) {
		v.Flags |= FlagCorruptedAltitude
	}
	return v, nil
}

// Vectors runs Vector over every consecutive pair of samples.
func Vectors(samples []Sample, timeStep float64) ([]WindVector, error) {
	if err := CheckTimeStep(timeStep); err != nil {
		return nil, err
	}
	if len(samples) < 2 {
		return nil, nil
	}
	out := make([]WindVector, 0, len(samples)-1)
	for i := 0; i < len(samples)-1; i++ {
		v, err := Vector(samples[i], samples[i+1], timeStep)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
