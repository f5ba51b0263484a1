// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bpowers/compdoc"
	"github.com/bpowers/compdoc/internal/directory"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the header, layout and directory of a container",
	Args:  cobra.ExactArgs(1),
	Run:   inspect,
}

var inspectFlag = struct {
	NoVerify bool
}{}

func init() {
	cmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectFlag.NoVerify, "no-verify", false, "Skip the sector ownership check")
}

func inspect(_ *cobra.Command, args []string) {
	filename := args[0]
	r, err := compdoc.Open(filename)
	checkf(err, "open %s", filename)
	defer r.Close()

	h := r.Header()
	fmt.Printf("Version %d.%d, %d-byte sectors\n", h.Version, h.Revision, 1<<h.SectorShift)
	fmt.Printf("SAT sectors:   %d\n", h.SATSectors)
	fmt.Printf("Directory at:  %d\n", h.DirStart)
	fmt.Printf("MSAT overflow: %d sector(s) starting at %d\n", h.MSATSectors, h.MSATStart)

	l := r.Layout()
	fmt.Printf("Layout:        %s data, %d MSAT, %d SAT, %d directory (%s sectors total)\n",
		humanize.Comma(int64(l.DataSectors)), l.MSATSectors, l.SATSectors, l.DirSectors,
		humanize.Comma(int64(l.Total())))
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tKIND\tSTART\tSIZE\tFINGERPRINT")
	for i, e := range r.Entries() {
		fingerprint := "-"
		if e.Kind == directory.KindStream {
			stream, err := r.ReadStream(e.Name)
			checkf(err, "read stream %q", e.Name)
			fingerprint = compdoc.Fingerprint(stream)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", i, e.Name, e.Kind, e.Start, humanize.IBytes(uint64(e.Size)), fingerprint)
	}
	check(tw.Flush())

	if inspectFlag.NoVerify {
		return
	}
	checkf(r.Verify(), "verify %s", filename)
	fmt.Println("\nOK: every sector belongs to exactly one chain or table")
}
