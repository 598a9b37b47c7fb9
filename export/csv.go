/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	csv.go: Plain CSV renderings of a run. Numbers are written in their shortest exact
	 form so two runs over the same input give identical files.
*/

package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/gansidui/geohash"

	"github.com/b3nn0/balloonwind/windcalc"
)

// Geohash precision of the trace CSV. 8 characters is a cell of about 38 m x 19 m.
const TraceGeohashPrecision = 8

var (
	VectorsHeader = []string{"Altitude", "WindY", "WindX"}
	TraceHeader   = []string{"Datapoint_ID", "Latitude", "Longitude", "Altitude", "Geohash"}
	SamplesHeader = []string{"Lat", "Long", "Alt", "Wind"}
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeAll(w io.Writer, header []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteVectorsCSV writes altitude (m), north (WindY) and east (WindX) wind in m/s.
func WriteVectorsCSV(w io.Writer, vectors []windcalc.WindVector) error {
	return writeAll(w, VectorsHeader, len(vectors), func(i int) []string {
		v := vectors[i]
		return []string{ftoa(v.AltitudeM), ftoa(v.NorthMs), ftoa(v.EastMs)}
	})
}

// WriteTraceCSV writes the map trace with a geohash per point.
func WriteTraceCSV(w io.Writer, trace []windcalc.TracePoint) error {
	return writeAll(w, TraceHeader, len(trace), func(i int) []string {
		p := trace[i]
		hash, _ := geohash.Encode(p.Latitude, p.Longitude, TraceGeohashPrecision)
		return []string{strconv.Itoa(p.Index), ftoa(p.Latitude), ftoa(p.Longitude), ftoa(p.AltitudeM), hash}
	})
}

// WriteSamplesCSV dumps the densified track, sensor speed in m/s.
func WriteSamplesCSV(w io.Writer, samples []windcalc.Sample) error {
	return writeAll(w, SamplesHeader, len(samples), func(i int) []string {
		s := samples[i]
		return []string{ftoa(s.Latitude), ftoa(s.Longitude), ftoa(s.AltitudeM), ftoa(s.SensorSpeedMs)}
	})
}
