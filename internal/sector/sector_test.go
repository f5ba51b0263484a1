// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package sector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_Int32(t *testing.T) {
	assert.Equal(t, int32(-1), Free.Int32())
	assert.Equal(t, int32(-2), EndOfChain.Int32())
	assert.Equal(t, int32(-3), UsedBySAT.Int32())
	assert.Equal(t, int32(-4), UsedByMSAT.Int32())
	assert.Equal(t, int32(17), Link(17).Int32())
	assert.Equal(t, int32(-1), Slot{}.Int32())
}

func TestSlotFromInt32(t *testing.T) {
	for _, s := range []Slot{Free, EndOfChain, UsedBySAT, UsedByMSAT, Link(0), Link(12345)} {
		got, err := SlotFromInt32(s.Int32())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := SlotFromInt32(-5)
	assert.Error(t, err)
	_, err = SlotFromInt32(-100)
	assert.Error(t, err)
}

func TestSlot_Next(t *testing.T) {
	next, ok := Link(9).Next()
	assert.True(t, ok)
	assert.Equal(t, 9, next)

	_, ok = EndOfChain.Next()
	assert.False(t, ok)
	assert.Equal(t, "next(9)", Link(9).String())
	assert.Equal(t, "end-of-chain", EndOfChain.String())
}
