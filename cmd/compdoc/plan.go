// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bpowers/compdoc"
	"github.com/bpowers/compdoc/internal/sector"
)

var planCmd = &cobra.Command{
	Use:   "plan <stream bytes>",
	Short: "Print the layout a stream of the given size would get",
	Args:  cobra.ExactArgs(1),
	Run:   plan,
}

func init() {
	cmd.AddCommand(planCmd)
}

func plan(_ *cobra.Command, args []string) {
	n, err := humanize.ParseBytes(args[0])
	checkf(err, "parse size %q", args[0])
	if n > uint64(int(^uint(0)>>1)) {
		fatalf("size %s is too large", args[0])
	}

	l, err := compdoc.PlanLayout(int(n))
	check(err)

	fmt.Printf("Stream:     %s bytes\n", humanize.Comma(int64(n)))
	fmt.Printf("Data:       %s sectors (0-%d)\n", humanize.Comma(int64(l.DataSectors)), l.DataSectors-1)
	if l.MSATSectors > 0 {
		fmt.Printf("MSAT:       %d sector(s) starting at %d\n", l.MSATSectors, l.MSATStart())
	}
	fmt.Printf("SAT:        %d sector(s) starting at %d\n", l.SATSectors, l.SATStart())
	fmt.Printf("Directory:  %d sector(s) starting at %d\n", l.DirSectors, l.DirStart())
	fmt.Printf("Container:  %s\n", humanize.IBytes(uint64(sector.Size)*uint64(1+l.Total())))
}
