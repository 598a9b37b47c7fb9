/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	sources.go: Column mappings for the supported telemetry exports.
*/

package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/b3nn0/balloonwind/aprsparse"
	"github.com/b3nn0/balloonwind/base91"
	"github.com/b3nn0/balloonwind/windcalc"
)

func parseFloat(line int, field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad %s %q", line, field, s)
	}
	return v, nil
}

// makeRow parses the four columns every transmission source provides.
func makeRow(line int, lat, lon, alt, comment string) (Row, error) {
	row := Row{Line: line, Comment: comment}
	var err error
	if row.Latitude, err = parseFloat(line, "latitude", lat); err != nil {
		return Row{}, err
	}
	if row.Longitude, err = parseFloat(line, "longitude", lon); err != nil {
		return Row{}, err
	}
	if row.AltitudeM, err = parseFloat(line, "altitude", alt); err != nil {
		return Row{}, err
	}
	return row, nil
}

// direwolfSource reads the CSV log written by direwolf (-l option).
type direwolfSource struct{}

func (direwolfSource) Name() string { return FormatDirewolf }

func (direwolfSource) ReadRows(r io.Reader) ([]Row, error) {
	t, err := newCSVTable(r, "latitude", "longitude", "altitude", "comment")
	if err != nil {
		return nil, err
	}
	var rows []Row
	for {
		rec, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var f [4]string
		for i, c := range []string{"latitude", "longitude", "altitude", "comment"} {
			if f[i], err = t.get(rec, c); err != nil {
				return nil, err
			}
		}
		row, err := makeRow(t.line, f[0], f[1], f[2], f[3])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// aprsFiSource reads a track exported from aprs.fi.
// The export wraps the comment in quotes and backslash-escapes the odd characters,
// neither of which is CSV quoting. The quotes are dropped and, when the comment is
// the last column, everything after the preceding separator is the comment, commas included.
type aprsFiSource struct{}

func (aprsFiSource) Name() string { return FormatAprsFi }

func (aprsFiSource) ReadRows(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("csv header: %w", err)
		}
		return nil, fmt.Errorf("csv header: %w", io.EOF)
	}
	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), ",")
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.Trim(h, `" `)] = i
	}
	for _, c := range []string{"lat", "lng", "altitude", "comment"} {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", c)
		}
	}
	commentLast := cols["comment"] == len(header)-1

	var rows []Row
	line := 1
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			continue
		}
		text = stripOuterQuotes(text)
		var fields []string
		if commentLast {
			fields = strings.SplitN(text, ",", len(header))
		} else {
			fields = strings.Split(text, ",")
		}
		if len(fields) < len(header) {
			return nil, fmt.Errorf("line %d: have %d fields, want %d", line, len(fields), len(header))
		}
		comment, err := aprsparse.UnescapeComment(fields[cols["comment"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: comment: %w", line, err)
		}
		row, err := makeRow(line, fields[cols["lat"]], fields[cols["lng"]], fields[cols["altitude"]], comment)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, sc.Err()
}

// stripOuterQuotes removes the first and the last double quote of a line.
func stripOuterQuotes(line string) string {
	i := strings.Index(line, `"`)
	j := strings.LastIndex(line, `"`)
	if i < 0 || i == j {
		return line
	}
	return line[:i] + line[i+1:j] + line[j+1:]
}

// rawSource reads raw TNC2 packets, one per line. Lines that are not position
// reports (status, messages, telemetry definitions) are skipped.
type rawSource struct {
	callsign string
}

func (rawSource) Name() string { return FormatRaw }

func (s rawSource) ReadRows(r io.Reader) ([]Row, error) {
	var rows []Row
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		p, err := aprsparse.ParsePacket(text)
		if errors.Is(err, aprsparse.ErrNotPosition) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if s.callsign != "" && !strings.EqualFold(p.Source, s.callsign) {
			continue
		}
		if !p.HasAltitude {
			return nil, fmt.Errorf("line %d: position report without altitude", line)
		}
		rows = append(rows, Row{
			Line:      line,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			AltitudeM: p.AltitudeM,
			Comment:   p.Comment,
		})
	}
	return rows, sc.Err()
}

// sdCardSource reads the onboard logger's CSV:
// Time, Latitude, Longitude, GPS Alt (ft), Sens Alt, Pressure, Sens Temp, Windspeed (kn).
type sdCardSource struct{}

func (sdCardSource) Name() string { return FormatSDCard }

func (sdCardSource) ReadSamples(r io.Reader) ([]windcalc.Sample, error) {
	t, err := newCSVTable(r, "Latitude", "Longitude", "GPS Alt", "Windspeed")
	if err != nil {
		return nil, err
	}
	var out []windcalc.Sample
	for {
		rec, err := t.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var v [4]float64
		for i, c := range []string{"Latitude", "Longitude", "GPS Alt", "Windspeed"} {
			f, err := t.get(rec, c)
			if err != nil {
				return nil, err
			}
			if v[i], err = parseFloat(t.line, c, f); err != nil {
				return nil, err
			}
		}
		out = append(out, windcalc.Sample{
			Latitude:      v[0],
			Longitude:     v[1],
			AltitudeM:     base91.FeetToMeters(v[2]),
			SensorSpeedMs: base91.KnotsToMs(v[3]),
		})
	}
	return out, nil
}
