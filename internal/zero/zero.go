// Copyright 2021 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package zero writes runs of zero bytes.
package zero

import (
	"fmt"
	"io"
)

var block [4096]byte

// Write writes n zero bytes to w, at most one block per call to w.Write.
func Write(w io.Writer, n int) (int64, error) {
	var written int64
	for n > 0 {
		chunk := block[:min(n, len(block))]
		m, err := w.Write(chunk)
		written += int64(m)
		if err != nil {
			return written, err
		} else if m != len(chunk) {
			return written, fmt.Errorf("short write of %d (wanted %d)", m, len(chunk))
		}
		n -= m
	}
	return written, nil
}
