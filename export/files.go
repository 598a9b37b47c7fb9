/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	files.go: Output directory handling, free space guard and the metrics textfile.
*/

package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ricochet2200/go-disk-usage/du"
)

type InsufficientSpaceError struct {
	Dir  string
	Free uint64
	Want uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("%s: only %s free, want at least %s", e.Dir, humanize.Bytes(e.Free), humanize.Bytes(e.Want))
}

// CheckFreeSpace fails if the volume holding dir has less than minFreeMB megabytes free.
// minFreeMB <= 0 disables the check.
func CheckFreeSpace(dir string, minFreeMB int) (uint64, error) {
	usage := du.NewDiskUsage(dir)
	free := usage.Free()
	if minFreeMB <= 0 {
		return free, nil
	}
	want := uint64(minFreeMB) * 1024 * 1024
	if free < want {
		return free, &InsufficientSpaceError{Dir: dir, Free: free, Want: want}
	}
	return free, nil
}

// WriteFile creates path (and its directory) and hands a buffered writer to fill.
// Returns the number of bytes written.
func WriteFile(path string, fill func(w *bufio.Writer) error) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	fp, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(fp)
	if err := fill(w); err != nil {
		fp.Close()
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		fp.Close()
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := fp.Close(); err != nil {
		return 0, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// WriteMetrics writes everything g gathers in the prometheus text format,
// for the node exporter's textfile collector.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, g)
}
