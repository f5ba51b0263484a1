// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap provides a read-only view of a whole file that implements
// io.ReaderAt.
package mmap

import (
	"errors"
	"io"
	"sync"
)

// ReaderAt reads from a memory-mapped file.
type ReaderAt struct {
	data  []byte
	unmap func([]byte) error
	once  sync.Once
}

// Len returns the length of the underlying file.
func (r *ReaderAt) Len() int {
	return len(r.data)
}

// Data returns the mapped bytes.  They must not be written to, and must
// not be used after Close.
func (r *ReaderAt) Data() []byte {
	return r.data
}

// ReadAt implements io.ReaderAt.
func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("mmap: negative offset")
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the mapping.  It is safe to call more than once.
func (r *ReaderAt) Close() error {
	var err error
	r.once.Do(func() {
		if r.unmap != nil && r.data != nil {
			err = r.unmap(r.data)
		}
		r.data = nil
	})
	return err
}
