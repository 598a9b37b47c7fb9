/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	pipeline.go: Drives a whole flight through the decoder: rows -> records ->
	 densified samples -> wind vectors, plus the map trace.
*/

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/b3nn0/balloonwind/aprsparse"
	"github.com/b3nn0/balloonwind/windcalc"
)

type Config struct {
	Layout      aprsparse.Layout
	TimeStep    float64 // seconds between consecutive samples
	Workers     int     // goroutines for the pairwise stages; <= 1 runs sequentially
	DropFlagged bool    // leave vectors computed from sentinel values out of Result.Vectors
	Debug       bool
}

func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := windcalc.CheckTimeStep(c.TimeStep); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// RecordError is a structural failure of one input row. It stops the run.
type RecordError struct {
	Index int // 0-based position among the rows
	Line  int // input line, 0 if unknown
	Err   error
}

func (e *RecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("record %d (line %d): %v", e.Index, e.Line, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

type Result struct {
	Records []aprsparse.PacketRecord // empty for sample sources
	Samples []windcalc.Sample
	Vectors []windcalc.WindVector
	Trace   []windcalc.TracePoint
	Stats   Stats
}

type Pipeline struct {
	cfg     Config
	reg     *prometheus.Registry
	metrics *metrics
}

func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	reg := prometheus.NewRegistry()
	return &Pipeline{cfg: cfg, reg: reg, metrics: newMetrics(reg)}, nil
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

// Registry holds the counters of every run of this pipeline.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.reg
}

func (p *Pipeline) logDbg(format string, v ...interface{}) {
	if p.cfg.Debug {
		log.Printf(format, v...)
	}
}

// Run reads src from r and processes the whole flight.
func (p *Pipeline) Run(src Source, r io.Reader) (*Result, error) {
	res, err := p.run(src, r)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.metrics.runs.With(prometheus.Labels{"source": src.Name(), "result": outcome}).Inc()
	return res, err
}

func (p *Pipeline) run(src Source, r io.Reader) (*Result, error) {
	switch s := src.(type) {
	case RowSource:
		rows, err := s.ReadRows(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		p.logDbg("%s: read %d rows\n", s.Name(), len(rows))
		return p.RunRows(rows)
	case SampleSource:
		samples, err := s.ReadSamples(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		p.logDbg("%s: read %d samples\n", s.Name(), len(samples))
		return p.RunSamples(samples)
	default:
		return nil, fmt.Errorf("source %q yields neither rows nor samples", src.Name())
	}
}

// RunRows processes transmissions in chronological order. The first one only
// serves as context for the second and adds no samples itself.
func (p *Pipeline) RunRows(rows []Row) (*Result, error) {
	records, err := p.Decode(rows)
	if err != nil {
		return nil, err
	}
	samples, err := p.Densify(records)
	if err != nil {
		return nil, err
	}
	res, err := p.finish(samples)
	if err != nil {
		return nil, err
	}
	res.Records = records
	res.Stats.Rows = len(rows)
	res.Stats.Records = len(records)
	p.metrics.observe(res.Stats)
	return res, nil
}

// RunSamples processes a track that is already one sample per time step.
func (p *Pipeline) RunSamples(samples []windcalc.Sample) (*Result, error) {
	res, err := p.finish(samples)
	if err != nil {
		return nil, err
	}
	res.Stats.Rows = len(samples)
	p.metrics.observe(res.Stats)
	return res, nil
}

// Decode unpacks every row. The first bad row aborts with a *RecordError.
func (p *Pipeline) Decode(rows []Row) ([]aprsparse.PacketRecord, error) {
	records := make([]aprsparse.PacketRecord, len(rows))
	for i, row := range rows {
		rec, err := aprsparse.Unpack(row.Comment, row.Latitude, row.Longitude, row.AltitudeM, p.cfg.Layout)
		if err != nil {
			return nil, &RecordError{Index: i, Line: row.Line, Err: err}
		}
		records[i] = rec
	}
	return records, nil
}

// Densify interpolates each record against its predecessor and concatenates the
// samples in order.
func (p *Pipeline) Densify(records []aprsparse.PacketRecord) ([]windcalc.Sample, error) {
	if len(records) < 2 {
		return nil, nil
	}
	chunks := make([][]windcalc.Sample, len(records)-1)
	err := forEach(len(chunks), p.cfg.Workers, func(i int) error {
		s, err := windcalc.Interpolate(records[i], records[i+1])
		if err != nil {
			return &RecordError{Index: i + 1, Err: err}
		}
		chunks[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	samples := make([]windcalc.Sample, 0, n)
	for _, c := range chunks {
		samples = append(samples, c...)
	}
	return samples, nil
}

// Vectors computes one wind vector per consecutive pair of samples.
func (p *Pipeline) Vectors(samples []windcalc.Sample) ([]windcalc.WindVector, error) {
	if len(samples) < 2 {
		return nil, nil
	}
	out := make([]windcalc.WindVector, len(samples)-1)
	err := forEach(len(out), p.cfg.Workers, func(i int) error {
		v, err := windcalc.Vector(samples[i], samples[i+1], p.cfg.TimeStep)
		if err != nil {
			return err
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipeline) finish(samples []windcalc.Sample) (*Result, error) {
	vectors, err := p.Vectors(samples)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Samples: samples,
		Trace:   windcalc.Trace(samples),
	}
	res.Stats.Samples = len(samples)
	res.Stats.Vectors = len(vectors)

	kept := vectors[:0:0]
	for i, v := range vectors {
		if v.Flags&windcalc.FlagCorruptedAltitude != 0 {
			res.Stats.CorruptedAltitudes++
		}
		if v.Flags&windcalc.FlagNoDisplacement != 0 {
			res.Stats.NoDisplacement++
		}
		if v.Flagged() {
			p.logDbg("vector %d at %.0f m flagged %#x\n", i, v.AltitudeM, v.Flags)
			if p.cfg.DropFlagged {
				res.Stats.Dropped++
				continue
			}
		}
		kept = append(kept, v)
	}
	res.Vectors = kept
	return res, nil
}

// IsRecordError reports whether err stopped the run at a specific input row.
func IsRecordError(err error) (*RecordError, bool) {
	var re *RecordError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
