// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package compdoc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/bpowers/compdoc/internal/directory"
	"github.com/bpowers/compdoc/internal/header"
	"github.com/bpowers/compdoc/internal/sector"
	"github.com/bpowers/compdoc/internal/zero"
)

const (
	defaultBufferSize = 256 * 1024
	directorySectors  = 1
)

var (
	ErrInputTooLarge     = sector.ErrInputTooLarge
	ErrInvalidStreamName = directory.ErrInvalidName
)

// Layout describes how a container's sectors are split between the data
// stream and the bookkeeping tables.
type Layout = sector.Layout

// container is a fully planned compound document, ready to be written.
type container struct {
	header  *header.Header
	layout  sector.Layout
	data    []byte
	padding int
	msat    []byte // overflow MSAT sectors, nil for most files
	sat     []byte
	dir     []byte
}

func build(data []byte, o options) (*container, error) {
	paddedLen, err := sector.PaddedLen(len(data))
	if err != nil {
		return nil, err
	}
	dir, err := directory.Build(o.streamName, uint32(paddedLen))
	if err != nil {
		return nil, fmt.Errorf("directory.Build: %w", err)
	}
	layout, err := sector.Plan(paddedLen/sector.Size, len(dir)/sector.Size)
	if err != nil {
		return nil, fmt.Errorf("sector.Plan: %w", err)
	}

	c := &container{
		header:  header.New(layout),
		layout:  layout,
		data:    data,
		padding: paddedLen - len(data),
		msat:    layout.PackMSATOverflow(),
		sat:     layout.PackSAT(),
		dir:     dir,
	}

	o.logger.Debug("planned compound document",
		slog.String("stream", o.streamName),
		slog.Int("streamBytes", len(data)),
		slog.Int("paddedBytes", paddedLen),
		slog.Int("dataSectors", layout.DataSectors),
		slog.Int("msatSectors", layout.MSATSectors),
		slog.Int("satSectors", layout.SATSectors),
		slog.Int("dirStart", layout.DirStart()),
	)

	return c, nil
}

// Len is the size of the encoded container in bytes.
func (c *container) Len() int64 {
	return header.Size + int64(c.layout.Total())*sector.Size
}

// WriteTo writes header, data, padding, MSAT overflow, SAT and directory,
// in that order.  The sector ids in the header and tables assume exactly
// this order.
func (c *container) WriteTo(w io.Writer) (n int64, err error) {
	headerLen, err := c.header.WriteTo(w)
	n += headerLen
	if err != nil {
		return n, fmt.Errorf("header.WriteTo: %w", err)
	}

	dataLen, err := writeAll(w, "data", c.data)
	n += dataLen
	if err != nil {
		return n, err
	}
	padLen, err := zero.Write(w, c.padding)
	n += padLen
	if err != nil {
		return n, fmt.Errorf("write padding: %w", err)
	}
	for _, part := range []struct {
		name string
		buf  []byte
	}{
		{"msat", c.msat},
		{"sat", c.sat},
		{"directory", c.dir},
	} {
		written, err := writeAll(w, part.name, part.buf)
		n += written
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

func writeAll(w io.Writer, name string, buf []byte) (int64, error) {
	written, err := w.Write(buf)
	if err != nil {
		return int64(written), fmt.Errorf("write %s: %w", name, err)
	} else if written != len(buf) {
		return int64(written), fmt.Errorf("write %s: short write of %d (wanted %d)", name, written, len(buf))
	}
	return int64(written), nil
}

// Encode returns the compound document holding data as its single stream.
// Encoding the same data with the same options always produces the same
// bytes.
func Encode(data []byte, opts ...Option) ([]byte, error) {
	return encode(data, newOptions(opts))
}

func encode(data []byte, o options) ([]byte, error) {
	c, err := build(data, o)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(int(c.Len()))
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the compound document holding data to w and returns the
// number of bytes written.  Write errors are returned as-is, wrapped; they
// are not retried.
func EncodeTo(w io.Writer, data []byte, opts ...Option) (int64, error) {
	c, err := build(data, newOptions(opts))
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriterSize(w, defaultBufferSize)
	n, err := c.WriteTo(bw)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("bufio.Flush: %w", err)
	}
	return n, nil
}

// PlanLayout returns the layout Encode would use for a stream of n bytes.
func PlanLayout(n int) (Layout, error) {
	paddedLen, err := sector.PaddedLen(n)
	if err != nil {
		return Layout{}, err
	}
	return sector.Plan(paddedLen/sector.Size, directorySectors)
}
