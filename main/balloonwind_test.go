package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/b3nn0/balloonwind/aprsparse"
)

// writeDirewolfLog writes n transmissions of a balloon drifting east while climbing.
func writeDirewolfLog(t *testing.T, dir string, n int) string {
	t.Helper()
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	w.Write([]string{"chan", "utime", "source", "latitude", "longitude", "altitude", "comment"})
	l := aprsparse.DefaultLayout
	for tx := 0; tx < n; tx++ {
		var rec aprsparse.PacketRecord
		for g := 0; g < l.GPSPoints; g++ {
			k := float64(tx*l.GPSPoints + g)
			rec.Latitudes = append(rec.Latitudes, 45.5)
			rec.Longitudes = append(rec.Longitudes, -73.6+0.002*k)
		}
		for s := 0; s < l.SensPoints; s++ {
			k := float64(tx*l.SensPoints + s)
			rec.Altitudes = append(rec.Altitudes, 500+60*k)
			rec.WindSpeeds = append(rec.WindSpeeds, 8)
		}
		comment, err := aprsparse.Pack(rec)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]string{"0", strconv.Itoa(1625000000 + 60*tx), "VE2ABC-11",
			strconv.FormatFloat(rec.Latitudes[l.GPSPoints-1], 'f', -1, 64),
			strconv.FormatFloat(rec.Longitudes[l.GPSPoints-1], 'f', -1, 64),
			strconv.FormatFloat(rec.Altitudes[l.SensPoints-1], 'f', -1, 64),
			comment})
	}
	w.Flush()
	path := filepath.Join(dir, "flight.csv")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSettings(t *testing.T, input, out string) settings {
	t.Helper()
	s, err := loadSettings("")
	if err != nil {
		t.Fatal(err)
	}
	s.Input.Path = input
	s.Output.Dir = out
	s.Output.MinFreeMB = -1
	if err := s.validate(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	s := testSettings(t, writeDirewolfLog(t, dir, 4), filepath.Join(dir, "out"))
	s.Output.SamplesCSV = "samples.csv"
	s.Output.TraceKML = "flight.kml"
	s.Output.MetricsPath = "balloonwind.prom"

	res, err := run(s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Vectors) != 11 {
		t.Fatalf("vectors=%d", len(res.Vectors))
	}

	vectors, err := os.ReadFile(filepath.Join(s.Output.Dir, "output.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(vectors)), "\n")
	if lines[0] != "Altitude,WindY,WindX" || len(lines) != 12 {
		t.Fatalf("output.csv:\n%s", vectors)
	}

	trace, err := os.ReadFile(filepath.Join(s.Output.Dir, "map_output.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(trace), "Datapoint_ID,Latitude,Longitude,Altitude,Geohash\n1,") {
		t.Fatalf("map_output.csv:\n%s", trace)
	}

	for _, name := range []string{"samples.csv", "flight.kml", "balloonwind.prom"} {
		if st, err := os.Stat(filepath.Join(s.Output.Dir, name)); err != nil || st.Size() == 0 {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	prom, _ := os.ReadFile(filepath.Join(s.Output.Dir, "balloonwind.prom"))
	if !strings.Contains(string(prom), "balloonwind_vectors_total 11") {
		t.Errorf("metrics:\n%s", prom)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := writeDirewolfLog(t, dir, 6)

	var outputs [2][]byte
	for i := range outputs {
		s := testSettings(t, input, filepath.Join(dir, "out"+strconv.Itoa(i)))
		if _, err := run(s); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		b, err := os.ReadFile(filepath.Join(s.Output.Dir, "output.csv"))
		if err != nil {
			t.Fatal(err)
		}
		outputs[i] = b
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatal("output.csv differs between runs")
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	s := testSettings(t, filepath.Join(dir, "missing.csv"), dir)
	if _, err := run(s); err == nil {
		t.Fatal("missing input accepted")
	}

	bad := filepath.Join(dir, "bad.csv")
	os.WriteFile(bad, []byte("latitude,longitude,altitude,comment\n45,-73,500,short\n"), 0o644)
	s = testSettings(t, bad, dir)
	_, err := run(s)
	if err == nil || !strings.Contains(err.Error(), "record 0 (line 2)") {
		t.Fatalf("got %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("out", ""); got != "" {
		t.Errorf("disabled output got %q", got)
	}
	if got := outputPath("out", "a.csv"); got != filepath.Join("out", "a.csv") {
		t.Errorf("got %q", got)
	}
	if got := outputPath("out", "/abs/a.csv"); got != "/abs/a.csv" {
		t.Errorf("got %q", got)
	}
}
