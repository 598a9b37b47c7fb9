package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/b3nn0/balloonwind/aprsparse"
	"github.com/b3nn0/balloonwind/base91"
	"github.com/b3nn0/balloonwind/common"
	"github.com/b3nn0/balloonwind/pipeline"
)

func testFlight(t *testing.T) flight {
	t.Helper()
	// A climb rate the wind speed token represents exactly.
	climb, err := base91.DecodeWindSpeed([]rune{rune(base91.Offset + 31)})
	if err != nil {
		t.Fatal(err)
	}
	return flight{
		Layout:        aprsparse.DefaultLayout,
		Transmissions: 10,
		TimeStep:      15,
		EastMs:        10,
		ClimbMs:       climb,
		Lat:           45.5,
		Lon:           -73.6,
		AltM:          500,
	}
}

func TestSimulatedWindIsRecovered(t *testing.T) {
	f := testFlight(t)
	rows, err := simulate(f)
	if err != nil {
		t.Fatal(err)
	}

	var b bytes.Buffer
	if err := writeDirewolf(&b, "N0CALL-11", rows); err != nil {
		t.Fatal(err)
	}
	p, err := pipeline.New(pipeline.Config{Layout: f.Layout, TimeStep: f.TimeStep})
	if err != nil {
		t.Fatal(err)
	}
	src, _ := pipeline.Lookup(pipeline.FormatDirewolf, pipeline.SourceOptions{})
	res, err := p.Run(src, &b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Vectors) != (f.Transmissions-1)*f.Layout.SensPoints-1 {
		t.Fatalf("vectors=%d", len(res.Vectors))
	}

	var north, east []float64
	for _, v := range res.Vectors {
		north = append(north, v.NorthMs)
		east = append(east, v.EastMs)
	}
	n, _ := common.Mean(north)
	e, _ := common.Mean(east)
	// Altitude quantization leaves a small residual airspeed that ends up on the north axis.
	if math.Abs(e-f.EastMs) > 0.5 || math.Abs(n-f.NorthMs) > 1.5 {
		t.Fatalf("recovered wind north=%.2f east=%.2f, want 0/%v", n, e, f.EastMs)
	}
}

func TestWriteRaw(t *testing.T) {
	f := testFlight(t)
	f.Transmissions = 3
	rows, err := simulate(f)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := writeRaw(&b, "N0CALL-11", rows); err != nil {
		t.Fatal(err)
	}
	src, _ := pipeline.Lookup(pipeline.FormatRaw, pipeline.SourceOptions{Callsign: "N0CALL-11"})
	got, err := src.(pipeline.RowSource).ReadRows(&b)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("rows=%d", len(got))
	}
	for i := range rows {
		if got[i].Comment != rows[i].Comment {
			t.Errorf("row %d comment %q, want %q", i, got[i].Comment, rows[i].Comment)
		}
		// 0.01' of arc
		if math.Abs(got[i].Latitude-rows[i].Latitude) > 0.0002 || math.Abs(got[i].Longitude-rows[i].Longitude) > 0.0002 {
			t.Errorf("row %d at %v,%v, want %v,%v", i, got[i].Latitude, got[i].Longitude, rows[i].Latitude, rows[i].Longitude)
		}
	}
}

func TestDegMin(t *testing.T) {
	tests := []struct {
		v         float64
		degDigits int
		want      string
	}{
		{49.058333, 2, "4903.50N"},
		{-72.029167, 3, "07201.75W"},
		{-0.5, 2, "0030.00S"},
		{10.99999, 3, "01100.00E"},
	}
	for _, tt := range tests {
		pos, neg := byte('N'), byte('S')
		if tt.degDigits == 3 {
			pos, neg = 'E', 'W'
		}
		if got := degMin(tt.v, tt.degDigits, pos, neg); got != tt.want {
			t.Errorf("degMin(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSimulateRejectsDecimation(t *testing.T) {
	f := testFlight(t)
	f.Layout = aprsparse.Layout{GPSPoints: 5, SensPoints: 4}
	if _, err := simulate(f); err == nil {
		t.Fatal("accepted")
	}
}
