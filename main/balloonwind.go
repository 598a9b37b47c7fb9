/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	balloonwind.go: Decode a balloon flight's telemetry into a wind profile.
*/

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/b3nn0/balloonwind/export"
	"github.com/b3nn0/balloonwind/pipeline"
)

var balloonwindVersion = "dev"

// outputPath places name in dir unless it is absolute. Empty name means the output is off.
func outputPath(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func run(s settings) (*pipeline.Result, error) {
	started := time.Now()

	p, err := pipeline.New(s.pipelineConfig())
	if err != nil {
		return nil, err
	}
	src, err := pipeline.Lookup(s.Input.Format, pipeline.SourceOptions{Callsign: s.Input.Callsign})
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.Input.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log.Printf("Reading %s (%s, %s, time step %s)\n", s.Input.Path, src.Name(), s.Layout, s.TimeStep)
	res, err := p.Run(src, f)
	if err != nil {
		return nil, err
	}
	log.Printf("%s: %s\n", s.Input.Path, res.Stats)
	if sum, ok := pipeline.Summarize(res.Samples, res.Vectors); ok {
		log.Printf("Flight: %s\n", sum)
	}

	if err := writeOutputs(s, p, res); err != nil {
		return nil, err
	}
	logDbg("Finished in %s\n", time.Since(started))
	return res, nil
}

func writeOutputs(s settings, p *pipeline.Pipeline, res *pipeline.Result) error {
	o := s.Output
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return err
	}
	free, err := export.CheckFreeSpace(o.Dir, o.MinFreeMB)
	if err != nil {
		return err
	}
	logDbg("%s: %s free\n", o.Dir, humanize.Bytes(free))

	title := strings.TrimSuffix(filepath.Base(s.Input.Path), filepath.Ext(s.Input.Path))
	files := []struct {
		name string
		fill func(w *bufio.Writer) error
	}{
		{o.VectorsCSV, func(w *bufio.Writer) error { return export.WriteVectorsCSV(w, res.Vectors) }},
		{o.TraceCSV, func(w *bufio.Writer) error { return export.WriteTraceCSV(w, res.Trace) }},
		{o.SamplesCSV, func(w *bufio.Writer) error { return export.WriteSamplesCSV(w, res.Samples) }},
		{o.TraceKML, func(w *bufio.Writer) error { return export.WriteTraceKML(w, title, res.Trace) }},
	}
	for _, f := range files {
		path := outputPath(o.Dir, f.name)
		if path == "" {
			continue
		}
		n, err := export.WriteFile(path, f.fill)
		if err != nil {
			return err
		}
		log.Printf("Wrote %s (%s)\n", path, humanize.Bytes(uint64(n)))
	}

	if path := outputPath(o.Dir, o.ProfilePlot); path != "" {
		if err := export.WriteProfilePlot(path, title, res.Vectors); err != nil {
			// A flight without a single usable vector still has its CSVs.
			log.Printf("Profile plot: %s\n", err.Error())
		} else {
			log.Printf("Wrote %s\n", path)
		}
	}
	if path := outputPath(o.Dir, o.MetricsPath); path != "" {
		if err := export.WriteMetrics(path, p.Registry()); err != nil {
			return err
		}
		logDbg("Wrote %s\n", path)
	}
	return nil
}

func main() {
	configPath := flag.String("config", "", "YAML settings file")
	input := flag.String("input", "", "telemetry file, overrides input.path")
	format := flag.String("format", "", fmt.Sprintf("input format, one of %s", strings.Join(pipeline.Formats(), ", ")))
	out := flag.String("out", "", "output directory, overrides output.dir")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	s, err := loadSettings(*configPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %s\n", err.Error())
	}
	if *input != "" {
		s.Input.Path = *input
	} else if flag.NArg() > 0 {
		s.Input.Path = flag.Arg(0)
	}
	if *format != "" {
		s.Input.Format = *format
	}
	if *out != "" {
		s.Output.Dir = *out
	}
	if *debug {
		s.Log.Debug = true
	}
	if err := s.validate(); err != nil {
		log.Fatalf("Invalid settings: %s\n", err.Error())
	}
	globalSettings = s

	initLogging()
	defer closeLogging()

	log.Printf("balloonwind %s starting.\n", balloonwindVersion)
	if _, err := run(s); err != nil {
		if re, ok := pipeline.IsRecordError(err); ok {
			log.Printf("Stopped at input record %d\n", re.Index)
		}
		log.Printf("%s\n", err.Error())
		closeLogging()
		os.Exit(1)
	}
}
