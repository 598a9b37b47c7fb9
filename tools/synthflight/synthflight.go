/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	synthflight.go: Generate the telemetry of a balloon drifting in a steady wind,
	 as direwolf would log it or as raw packets, for replay through balloonwind.
*/

package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/b3nn0/balloonwind/aprsparse"
	"github.com/b3nn0/balloonwind/base91"
	"github.com/b3nn0/balloonwind/pipeline"
	"github.com/b3nn0/balloonwind/windcalc"
)

type flight struct {
	Layout        aprsparse.Layout
	Transmissions int
	TimeStep      float64 // s
	NorthMs       float64
	EastMs        float64
	ClimbMs       float64
	Lat, Lon      float64 // launch
	AltM          float64
}

// position at t seconds after launch. The balloon moves with the air, so the
// sensor only sees the climb.
func (f flight) position(t float64) (lat, lon, alt float64) {
	m := math.Pi / 180 * windcalc.EarthRadius
	lat = f.Lat + f.NorthMs*t/m
	lon = f.Lon + f.EastMs*t/(m*math.Cos(f.Lat*math.Pi/180))
	alt = f.AltM + f.ClimbMs*t
	return
}

// simulate returns one row per transmission. Sensor sample s of transmission tx is
// taken at step tx*SensPoints+s; gps fix g at the matching fraction of the same window.
func simulate(f flight) ([]pipeline.Row, error) {
	if err := f.Layout.Validate(); err != nil {
		return nil, err
	}
	if f.Layout.GPSPoints > f.Layout.SensPoints {
		return nil, fmt.Errorf("more gps points than sensor points")
	}
	sensor := math.Abs(f.ClimbMs)

	rows := make([]pipeline.Row, 0, f.Transmissions)
	for tx := 0; tx < f.Transmissions; tx++ {
		var rec aprsparse.PacketRecord
		base := float64(tx * f.Layout.SensPoints)
		for g := 0; g < f.Layout.GPSPoints; g++ {
			step := base + float64(g*f.Layout.SensPoints)/float64(f.Layout.GPSPoints)
			lat, lon, _ := f.position(step * f.TimeStep)
			rec.Latitudes = append(rec.Latitudes, lat)
			rec.Longitudes = append(rec.Longitudes, lon)
		}
		for s := 0; s < f.Layout.SensPoints; s++ {
			_, _, alt := f.position((base + float64(s)) * f.TimeStep)
			rec.Altitudes = append(rec.Altitudes, alt)
			rec.WindSpeeds = append(rec.WindSpeeds, sensor)
		}
		comment, err := aprsparse.Pack(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, pipeline.Row{
			Line:      tx + 1,
			Latitude:  rec.Latitudes[f.Layout.GPSPoints-1],
			Longitude: rec.Longitudes[f.Layout.GPSPoints-1],
			AltitudeM: rec.Altitudes[f.Layout.SensPoints-1],
			Comment:   comment,
		})
	}
	return rows, nil
}

func writeDirewolf(w io.Writer, callsign string, rows []pipeline.Row) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"chan", "source", "latitude", "longitude", "altitude", "comment"})
	for _, r := range rows {
		cw.Write([]string{"0", callsign,
			strconv.FormatFloat(r.Latitude, 'f', 6, 64),
			strconv.FormatFloat(r.Longitude, 'f', 6, 64),
			strconv.FormatFloat(r.AltitudeM, 'f', 1, 64),
			r.Comment})
	}
	cw.Flush()
	return cw.Error()
}

// degMin formats v as APRS DDMM.mmH (degDigits 2) or DDDMM.mmH (3).
func degMin(v float64, degDigits int, pos, neg byte) string {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	hundredths := int(math.Round(v * 60 * 100))
	deg := hundredths / 6000
	mins := float64(hundredths%6000) / 100
	return fmt.Sprintf("%0*d%05.2f%c", degDigits, deg, mins, hemi)
}

// writeRaw writes TNC2 packets. The uncompressed position only has 0.01' resolution.
func writeRaw(w io.Writer, callsign string, rows []pipeline.Row) error {
	for _, r := range rows {
		ft := int(math.Round(base91.MetersToFeet(r.AltitudeM)))
		_, err := fmt.Fprintf(w, "%s>APRS,WIDE2-1:!%s/%sO/A=%06d%s\n", callsign,
			degMin(r.Latitude, 2, 'N', 'S'), degMin(r.Longitude, 3, 'E', 'W'), ft, r.Comment)
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	f := flight{Layout: aprsparse.DefaultLayout}
	flag.IntVar(&f.Layout.GPSPoints, "gps", f.Layout.GPSPoints, "gps points per transmission")
	flag.IntVar(&f.Layout.SensPoints, "sens", f.Layout.SensPoints, "sensor points per transmission")
	flag.IntVar(&f.Transmissions, "n", 20, "number of transmissions")
	flag.Float64Var(&f.TimeStep, "step", 15, "seconds between sensor samples")
	flag.Float64Var(&f.NorthMs, "north", 0, "north wind, m/s")
	flag.Float64Var(&f.EastMs, "east", 10, "east wind, m/s")
	flag.Float64Var(&f.ClimbMs, "climb", 5, "ascent rate, m/s")
	flag.Float64Var(&f.Lat, "lat", 45.5, "launch latitude")
	flag.Float64Var(&f.Lon, "lon", -73.6, "launch longitude")
	flag.Float64Var(&f.AltM, "alt", 500, "launch altitude, m")
	format := flag.String("format", pipeline.FormatDirewolf, "direwolf or raw")
	callsign := flag.String("callsign", "N0CALL-11", "balloon callsign")
	out := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	rows, err := simulate(f)
	if err != nil {
		log.Fatalf("simulate: %s\n", err.Error())
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		fp, err := os.Create(*out)
		if err != nil {
			log.Fatalf("%s\n", err.Error())
		}
		defer fp.Close()
		w = fp
	}
	bw := bufio.NewWriter(w)
	switch *format {
	case pipeline.FormatDirewolf:
		err = writeDirewolf(bw, *callsign, rows)
	case pipeline.FormatRaw:
		err = writeRaw(bw, *callsign, rows)
	default:
		err = fmt.Errorf("unsupported format %q", *format)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		log.Fatalf("%s\n", err.Error())
	}
}
