// Copyright 2021 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitset(t *testing.T) {
	b := New(128)

	require.Equal(t, 2, len(b.bits))
	require.Equal(t, int64(128), b.Len())

	// should do nothing
	b.Set(132)
	b.Set(-1)

	zero := []uint64{0, 0}
	require.Equal(t, zero, b.bits)
	require.Equal(t, int64(0), b.FirstClear())

	require.False(t, b.IsSet(7))
	b.Set(7)
	require.True(t, b.IsSet(7))
	require.False(t, b.TestAndSet(8))
	require.True(t, b.TestAndSet(8))
	require.Equal(t, int64(2), b.Count())

	for i := int64(0); i < 128; i++ {
		b.Set(i)
	}

	full := []uint64{^uint64(0), ^uint64(0)}
	require.Equal(t, full, b.bits)
	require.Equal(t, int64(128), b.Count())
	require.Equal(t, int64(-1), b.FirstClear())
	require.False(t, b.IsSet(137))
}

func TestBitset_PartialWord(t *testing.T) {
	b := New(70)
	require.Equal(t, 2, len(b.bits))

	for i := int64(0); i < 65; i++ {
		b.Set(i)
	}
	require.Equal(t, int64(65), b.FirstClear())

	for i := int64(65); i < 70; i++ {
		b.Set(i)
	}
	require.Equal(t, int64(70), b.Count())
	// bits past the length don't count as clear
	require.Equal(t, int64(-1), b.FirstClear())
}
