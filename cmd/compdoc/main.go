// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command compdoc packs a raw stream into a compound document and
// inspects existing containers.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:   "compdoc",
	Short: "Compound document (OLE2) container utilities",
}

var rootFlag = struct {
	Verbose bool
}{}

func init() {
	cmd.PersistentFlags().BoolVarP(&rootFlag.Verbose, "verbose", "v", false, "Log progress to stderr")
}

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if rootFlag.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%+v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %+v", append(otherArgs, err)...)
	}
}
