// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bpowers/compdoc"
)

var packCmd = &cobra.Command{
	Use:   "pack <input> <output>",
	Short: "Wrap a raw stream in a compound document",
	Args:  cobra.ExactArgs(2),
	Run:   pack,
}

var packFlag = struct {
	StreamName string
}{}

func init() {
	cmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packFlag.StreamName, "stream-name", "n", "Workbook", "Directory name of the data stream")
}

func pack(_ *cobra.Command, args []string) {
	input, output := args[0], args[1]

	data, err := os.ReadFile(input)
	checkf(err, "read %s", input)

	err = compdoc.WriteFile(output, data,
		compdoc.WithStreamName(packFlag.StreamName),
		compdoc.WithLogger(newLogger()),
	)
	checkf(err, "write %s", output)

	info, err := os.Stat(output)
	check(err)
	fmt.Printf("%s: %s stream in a %s container\n",
		output, humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(info.Size())))
}
