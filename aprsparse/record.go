/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	record.go: Decoded transmission and compressed comment layout.
*/

package aprsparse

import (
	"fmt"
	"unicode/utf8"
)

// Layout is the number of GPS fixes and sensor samples represented per transmission,
// including the one carried outside the comment.
type Layout struct {
	GPSPoints  int `yaml:"gps_points"`
	SensPoints int `yaml:"sens_points"`
}

const (
	gpsGroupChars  = 8
	sensGroupChars = 3
)

var DefaultLayout = Layout{GPSPoints: 4, SensPoints: 4}

func (l Layout) Validate() error {
	if l.GPSPoints < 1 {
		return fmt.Errorf("layout: gps_points must be >= 1, have %d", l.GPSPoints)
	}
	if l.SensPoints < 1 {
		return fmt.Errorf("layout: sens_points must be >= 1, have %d", l.SensPoints)
	}
	return nil
}

func (l Layout) gpsBlockLen() int {
	return gpsGroupChars * (l.GPSPoints - 1)
}

func (l Layout) sensBlockLen() int {
	return sensGroupChars * (l.SensPoints - 1)
}

// CommentLen is the minimum comment length for this layout.
func (l Layout) CommentLen() int {
	return l.gpsBlockLen() + l.sensBlockLen() + 1
}

func (l Layout) String() string {
	return fmt.Sprintf("%d gps/%d sens", l.GPSPoints, l.SensPoints)
}

// PacketRecord holds everything one transmission tells us, oldest first.
// The last element of every slice is the transmission's own measurement.
type PacketRecord struct {
	Latitudes  []float64
	Longitudes []float64
	Altitudes  []float64 // meters
	WindSpeeds []float64 // m/s
}

func (r PacketRecord) Layout() Layout {
	return Layout{GPSPoints: len(r.Latitudes), SensPoints: len(r.Altitudes)}
}

// Check verifies that the per-field sequences are consistent with each other.
func (r PacketRecord) Check() error {
	if len(r.Latitudes) != len(r.Longitudes) {
		return fmt.Errorf("record: %d latitudes but %d longitudes", len(r.Latitudes), len(r.Longitudes))
	}
	if len(r.Altitudes) != len(r.WindSpeeds) {
		return fmt.Errorf("record: %d altitudes but %d wind speeds", len(r.Altitudes), len(r.WindSpeeds))
	}
	return nil
}

// commentRunes splits a comment into characters. Strings that are not valid
// UTF-8 come straight off the radio and are taken one byte per character.
func commentRunes(s string) []rune {
	if utf8.ValidString(s) {
		return []rune(s)
	}
	out := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = rune(s[i])
	}
	return out
}
