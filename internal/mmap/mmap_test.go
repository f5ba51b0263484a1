// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("hello, sectors"), 0644))

	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 14, r.Len())
	assert.Equal(t, []byte("hello, sectors"), r.Data())

	buf := make([]byte, 7)
	n, err := r.ReadAt(buf, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "sectors", string(buf))

	n, err = r.ReadAt(buf, 10)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = r.ReadAt(buf, 100)
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.ReadAt(buf, -1)
	assert.Error(t, err)

	require.NoError(t, r.Close())
	// should be safe for multiple closes
	require.NoError(t, r.Close())
	_, err = r.ReadAt(buf, 0)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("/doesnt/exist")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	r, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	require.NoError(t, r.Close())
}
