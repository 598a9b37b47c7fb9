/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	source.go: Input strategies. Every telemetry source either yields transmission rows
	 (position + compressed comment) or, for the onboard logger, finished samples.
*/

package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/b3nn0/balloonwind/windcalc"
)

// Row is one transmission as received, before the comment is unpacked.
type Row struct {
	Line      int // line in the input, for error messages
	Latitude  float64
	Longitude float64
	AltitudeM float64
	Comment   string
}

type Source interface {
	Name() string
}

// RowSource reads sources that carry the compressed comment.
type RowSource interface {
	Source
	ReadRows(r io.Reader) ([]Row, error)
}

// SampleSource reads sources that already hold one uncompressed sample per line.
type SampleSource interface {
	Source
	ReadSamples(r io.Reader) ([]windcalc.Sample, error)
}

type SourceOptions struct {
	// Only packets from this station are used by the raw source. Empty takes all.
	Callsign string
}

const (
	FormatDirewolf = "direwolf"
	FormatAprsFi   = "aprsfi"
	FormatRaw      = "raw"
	FormatSDCard   = "sdcard"
)

var sources = map[string]func(SourceOptions) Source{
	FormatDirewolf: func(SourceOptions) Source { return direwolfSource{} },
	FormatAprsFi:   func(SourceOptions) Source { return aprsFiSource{} },
	FormatRaw:      func(o SourceOptions) Source { return rawSource{callsign: o.Callsign} },
	FormatSDCard:   func(SourceOptions) Source { return sdCardSource{} },
}

// Formats lists the known source names, sorted.
func Formats() []string {
	names := make([]string, 0, len(sources))
	for k := range sources {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func Lookup(name string, opts SourceOptions) (Source, error) {
	if !slices.Contains(Formats(), name) {
		return nil, fmt.Errorf("unknown input format %q (have %v)", name, Formats())
	}
	return sources[name](opts), nil
}

// csvTable is a header-indexed CSV reader, columns looked up by name.
type csvTable struct {
	r    *csv.Reader
	cols map[string]int
	line int
}

func newCSVTable(r io.Reader, required ...string) (*csvTable, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	t := &csvTable{r: cr, cols: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		t.cols[h] = i
	}
	if err := t.require(required...); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *csvTable) require(names ...string) error {
	for _, n := range names {
		if _, ok := t.cols[n]; !ok {
			return fmt.Errorf("csv: missing column %q", n)
		}
	}
	return nil
}

// next returns the following record, or io.EOF.
func (t *csvTable) next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		return nil, err
	}
	t.line, _ = t.r.FieldPos(0)
	return rec, nil
}

func (t *csvTable) get(rec []string, col string) (string, error) {
	i := t.cols[col]
	if i >= len(rec) {
		return "", fmt.Errorf("line %d: missing field %q", t.line, col)
	}
	return rec[i], nil
}
