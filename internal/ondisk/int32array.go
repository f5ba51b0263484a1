// Copyright 2021 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ondisk reads fixed-width little-endian tables straight out of a
// file (or anything else implementing io.ReaderAt).
package ondisk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Int32Array is a run of len little-endian int32 values starting off bytes
// into r.
type Int32Array struct {
	r   io.ReaderAt
	len int64 // length in number of elements
	off int64 // offset in bytes of the start of this array
}

func NewInt32Array(r io.ReaderAt, len, off int64) *Int32Array {
	return &Int32Array{
		r:   r,
		len: len,
		off: off,
	}
}

func (a *Int32Array) Len() int64 {
	return a.len
}

// Get returns element i.
func (a *Int32Array) Get(i int64) (int32, error) {
	if i < 0 || i >= a.len {
		return 0, fmt.Errorf("offset (%d) out of range (len %d)", i, a.len)
	}
	var buf [4]byte
	if err := readFull(a.r, buf[:], a.off+4*i); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadAll returns every element with a single read.
func (a *Int32Array) ReadAll() ([]int32, error) {
	buf := make([]byte, 4*a.len)
	if err := readFull(a.r, buf, a.off); err != nil {
		return nil, err
	}
	values := make([]int32, a.len)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(buf[4*i : 4*i+4]))
	}
	return values, nil
}

func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		// io.ReaderAt may return io.EOF alongside a full read at the end of the input
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return fmt.Errorf("short read of %d at %d (wanted %d): %w", n, off, len(buf), io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("ReadAt(%d, len: %d): %w", off, len(buf), err)
}
