// Copyright 2021 The compdoc Authors and Caleb Spare. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package bitset tracks which sectors of a container have been claimed
// while chains are walked.
package bitset

import (
	"math/bits"
)

// Bitset is an in-memory bitmap that is conceptually similar to []bool, but more memory efficient.
type Bitset struct {
	bits   []uint64
	length int64
}

func getOffsets(off int64) (sliceOff int64, bitOff uint64) {
	sliceOff = off / 64
	bitOff = uint64(off) % 64
	return
}

// Set sets the bit at position `off` to 1.  Out of range offsets are ignored.
func (b *Bitset) Set(off int64) {
	if off < 0 || off >= b.length {
		return
	}
	sliceOff, bitOff := getOffsets(off)
	u64 := &b.bits[sliceOff]
	*u64 |= 1 << bitOff
}

// IsSet returns true if the bit at position `off` is 1.
func (b *Bitset) IsSet(off int64) bool {
	if off < 0 || off >= b.length {
		return false
	}
	sliceOff, bitOff := getOffsets(off)
	u64 := &b.bits[sliceOff]
	return *u64&(1<<bitOff) != 0
}

// TestAndSet sets the bit at `off` and reports whether it was already set.
func (b *Bitset) TestAndSet(off int64) bool {
	if b.IsSet(off) {
		return true
	}
	b.Set(off)
	return false
}

// Count returns the number of set bits.
func (b *Bitset) Count() int64 {
	var n int
	for _, u64 := range b.bits {
		n += bits.OnesCount64(u64)
	}
	return int64(n)
}

// FirstClear returns the lowest unset position, or -1 if every bit is set.
func (b *Bitset) FirstClear() int64 {
	for i, u64 := range b.bits {
		if u64 == ^uint64(0) {
			continue
		}
		off := int64(i)*64 + int64(bits.TrailingZeros64(^u64))
		if off < b.length {
			return off
		}
	}
	return -1
}

func (b *Bitset) Len() int64 {
	return b.length
}

// New returns a new in-memory bitset where you can set and test for individual bits.
func New(length int64) *Bitset {
	sliceLen := (length + 63) / 64
	return &Bitset{
		bits:   make([]uint64, sliceLen),
		length: length,
	}
}
