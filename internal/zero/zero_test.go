// Copyright 2021 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package zero

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type limitedWriter struct {
	remaining int
}

var errFull = errors.New("full")

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.remaining {
		n := w.remaining
		w.remaining = 0
		return n, errFull
	}
	w.remaining -= len(p)
	return len(p), nil
}

func TestWrite(t *testing.T) {
	for _, n := range []int{0, 1, 4095, 4096, 4097, 3*4096 + 7} {
		var buf bytes.Buffer
		buf.WriteByte('x')
		written, err := Write(&buf, n)
		require.NoError(t, err)
		require.Equal(t, int64(n), written)
		require.Equal(t, 1+n, buf.Len())
		require.Equal(t, make([]byte, n), buf.Bytes()[1:])
	}
}

func TestWrite_Errors(t *testing.T) {
	w := &limitedWriter{remaining: 5000}
	written, err := Write(w, 8192)
	require.ErrorIs(t, err, errFull)
	require.Equal(t, int64(5000), written)
}
