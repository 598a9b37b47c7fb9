/*
	Copyright (c) 2026 balloonwind contributors
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file, herein included
	as part of this header.

	logging.go: Duplicate log output to a file when one is configured.
*/

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

var logFileHandle *os.File

func openLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	fp, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	logFileHandle = fp
	mfp := io.MultiWriter(fp, os.Stdout)
	log.SetOutput(mfp)
	return nil
}

func initLogging() {
	if globalSettings.Log.File == "" {
		return
	}
	if err := openLogFile(globalSettings.Log.File); err != nil {
		log.Printf("Failed to open log file '%s': %s\n", globalSettings.Log.File, err.Error())
	}
}

func closeLogging() {
	if logFileHandle != nil {
		log.SetOutput(os.Stderr)
		logFileHandle.Close()
		logFileHandle = nil
	}
}

func logDbg(msg string, args ...any) {
	if globalSettings.Log.Debug {
		log.Printf(msg, args...)
	}
}
