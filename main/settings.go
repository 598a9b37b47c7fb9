/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	settings.go: YAML settings, defaults and command line overrides.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/b3nn0/balloonwind/aprsparse"
	"github.com/b3nn0/balloonwind/pipeline"
)

type settings struct {
	Input       inputSettings    `yaml:"input"`
	Layout      aprsparse.Layout `yaml:"layout"`
	TimeStep    time.Duration    `yaml:"time_step"`
	Workers     int              `yaml:"workers"`
	DropFlagged bool             `yaml:"drop_flagged"`
	Output      outputSettings   `yaml:"output"`
	Log         logSettings      `yaml:"log"`
}

type inputSettings struct {
	Path     string `yaml:"path"`
	Format   string `yaml:"format"`
	Callsign string `yaml:"callsign"` // raw format only
}

type outputSettings struct {
	Dir         string `yaml:"dir"`
	VectorsCSV  string `yaml:"vectors_csv"`
	TraceCSV    string `yaml:"trace_csv"`
	SamplesCSV  string `yaml:"samples_csv"`
	TraceKML    string `yaml:"trace_kml"`
	ProfilePlot string `yaml:"profile_plot"`
	MetricsPath string `yaml:"metrics_path"`
	MinFreeMB   int    `yaml:"min_free_mb"`
}

type logSettings struct {
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

var globalSettings settings

const (
	defaultTimeStep   = 15 * time.Second
	defaultOutputDir  = "out"
	defaultVectorsCSV = "output.csv"
	defaultTraceCSV   = "map_output.csv"
	defaultMinFreeMB  = 50
)

// loadSettings reads path, or only applies the defaults if path is empty.
func loadSettings(path string) (settings, error) {
	var s settings
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return settings{}, err
		}
		if err := yaml.Unmarshal(b, &s); err != nil {
			return settings{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if s.Input.Format == "" {
		s.Input.Format = pipeline.FormatDirewolf
	}
	if s.Layout == (aprsparse.Layout{}) {
		s.Layout = aprsparse.DefaultLayout
	}
	if s.TimeStep == 0 {
		s.TimeStep = defaultTimeStep
	}
	if s.Workers == 0 {
		s.Workers = 1
	}
	if s.Output.Dir == "" {
		s.Output.Dir = defaultOutputDir
	}
	if s.Output.VectorsCSV == "" {
		s.Output.VectorsCSV = defaultVectorsCSV
	}
	if s.Output.TraceCSV == "" {
		s.Output.TraceCSV = defaultTraceCSV
	}
	if s.Output.MinFreeMB == 0 {
		s.Output.MinFreeMB = defaultMinFreeMB
	}
	return s, nil
}

// validate runs after the command line overrides are applied.
func (s settings) validate() error {
	if s.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	if !slices.Contains(pipeline.Formats(), s.Input.Format) {
		return fmt.Errorf("input.format %q is not one of %v", s.Input.Format, pipeline.Formats())
	}
	if err := s.Layout.Validate(); err != nil {
		return err
	}
	if s.TimeStep <= 0 {
		return fmt.Errorf("time_step must be > 0")
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	return nil
}

func (s settings) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Layout:      s.Layout,
		TimeStep:    s.TimeStep.Seconds(),
		Workers:     s.Workers,
		DropFlagged: s.DropFlagged,
		Debug:       s.Log.Debug,
	}
}
