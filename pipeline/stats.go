/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	stats.go: Run counters, prometheus mirrors of them, and the flight summary.
*/

package pipeline

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	geo "github.com/kellydunn/golang-geo"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/b3nn0/balloonwind/base91"
	"github.com/b3nn0/balloonwind/common"
	"github.com/b3nn0/balloonwind/windcalc"
)

type Stats struct {
	Rows               int // input rows or onboard samples read
	Records            int // transmissions unpacked
	Samples            int
	Vectors            int // vectors computed, before DropFlagged
	Dropped            int
	CorruptedAltitudes int
	NoDisplacement     int
}

func (s Stats) String() string {
	return fmt.Sprintf("%s rows, %s records, %s samples, %s vectors (%d dropped, %d corrupted altitude, %d no displacement)",
		humanize.Comma(int64(s.Rows)), humanize.Comma(int64(s.Records)), humanize.Comma(int64(s.Samples)),
		humanize.Comma(int64(s.Vectors)), s.Dropped, s.CorruptedAltitudes, s.NoDisplacement)
}

// Summary describes the whole flight.
type Summary struct {
	StartLat, StartLon float64
	EndLat, EndLon     float64
	DriftKm            float64 // great-circle distance start to end
	DriftBearing       float64 // degrees from north, [0, 360)
	MinAltM, MaxAltM   float64
	AltSpanM           float64
	MeanWindMs         float64 // mean horizontal wind speed over the vectors
	StdevWindMs        float64
}

func (s Summary) String() string {
	return fmt.Sprintf("drift %.2f km at %.0f°, altitude %.0f-%.0f m, wind %.1f±%.1f m/s",
		s.DriftKm, s.DriftBearing, s.MinAltM, s.MaxAltM, s.MeanWindMs, s.StdevWindMs)
}

// Summarize returns false if there are no samples. Corrupted altitudes are left out of the span.
func Summarize(samples []windcalc.Sample, vectors []windcalc.WindVector) (Summary, bool) {
	if len(samples) == 0 {
		return Summary{}, false
	}
	first, last := samples[0], samples[len(samples)-1]
	start := geo.NewPoint(first.Latitude, first.Longitude)
	end := geo.NewPoint(last.Latitude, last.Longitude)

	s := Summary{
		StartLat: first.Latitude,
		StartLon: first.Longitude,
		EndLat:   last.Latitude,
		EndLon:   last.Longitude,
		DriftKm:  start.GreatCircleDistance(end),
	}
	if s.DriftKm > 0 {
		s.DriftBearing = common.DegreesHdg(start.BearingTo(end))
	}

	alts := make([]float64, 0, len(samples))
	for _, smp := range samples {
		if !base91.IsCorruptedAltitude(smp.AltitudeM) {
			alts = append(alts, smp.AltitudeM)
		}
	}
	s.MinAltM, _ = common.ArrayMin(alts)
	s.MaxAltM, _ = common.ArrayMax(alts)
	s.AltSpanM, _ = common.ArrayRange(alts)

	speeds := make([]float64, 0, len(vectors))
	for _, v := range vectors {
		if !v.Flagged() {
			speeds = append(speeds, v.Speed())
		}
	}
	s.MeanWindMs, _ = common.Mean(speeds)
	s.StdevWindMs, _ = common.Stdev(speeds)
	return s, true
}

// metrics mirrors Stats into a registry owned by one Pipeline.
type metrics struct {
	rows    prometheus.Counter
	records prometheus.Counter
	samples prometheus.Counter
	vectors prometheus.Counter
	dropped prometheus.Counter
	flagged *prometheus.CounterVec
	runs    *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balloonwind_rows_total",
			Help: "Input rows read.",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balloonwind_records_total",
			Help: "Transmissions unpacked.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balloonwind_samples_total",
			Help: "Track samples produced.",
		}),
		vectors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balloonwind_vectors_total",
			Help: "Wind vectors computed.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balloonwind_dropped_vectors_total",
			Help: "Flagged wind vectors removed from the output.",
		}),
		flagged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balloonwind_flagged_vectors_total",
				Help: "Wind vectors computed from sentinel values.",
			},
			[]string{"flag"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balloonwind_runs_total",
				Help: "Pipeline runs by source and outcome.",
			},
			[]string{"source", "result"},
		),
	}
	reg.MustRegister(m.rows, m.records, m.samples, m.vectors, m.dropped, m.flagged, m.runs)
	return m
}

func (m *metrics) observe(s Stats) {
	m.rows.Add(float64(s.Rows))
	m.records.Add(float64(s.Records))
	m.samples.Add(float64(s.Samples))
	m.vectors.Add(float64(s.Vectors))
	m.dropped.Add(float64(s.Dropped))
	m.flagged.With(prometheus.Labels{"flag": "corrupted_altitude"}).Add(float64(s.CorruptedAltitudes))
	m.flagged.With(prometheus.Labels{"flag": "no_displacement"}).Add(float64(s.NoDisplacement))
}
