// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package sector computes the sector layout of a compound document and
// packs its allocation tables (SAT) and master tables (MSAT).
package sector

import (
	"errors"
	"fmt"
	"math"
)

const (
	Size           = 512 // bytes per sector (sector shift 9)
	SlotsPerSector = Size / 4
	// HeaderMSATSlots is the number of MSAT entries embedded in the file header.
	HeaderMSATSlots = 109
	// overflow MSAT sectors hold SAT ids in all but their last slot, which links
	// to the next overflow sector
	overflowIDs = SlotsPerSector - 1

	// BlockSize is the alignment the data stream is padded to.  It is a
	// multiple of Size, so the padded stream always fills whole sectors.
	BlockSize = 4096
)

// On-disk sentinel codes.
const (
	FreeID       int32 = -1
	EndOfChainID int32 = -2
	SATID        int32 = -3
	MSATID       int32 = -4
)

var (
	ErrInputTooLarge = errors.New("input too large for a compound document")
	errUnknownSlot   = errors.New("unknown sector id sentinel")
)

// Kind is the role of a single sector in the allocation table.
type Kind uint8

const (
	KindFree Kind = iota
	KindEndOfChain
	KindSAT
	KindMSAT
	KindNext
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindEndOfChain:
		return "end-of-chain"
	case KindSAT:
		return "sat"
	case KindMSAT:
		return "msat"
	case KindNext:
		return "next"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Slot is a single SAT entry: either a sentinel role or a link to the next
// sector of a chain.  It is only turned into its 32-bit code when packed.
type Slot struct {
	kind Kind
	next int32
}

var (
	Free       = Slot{kind: KindFree}
	EndOfChain = Slot{kind: KindEndOfChain}
	UsedBySAT  = Slot{kind: KindSAT}
	UsedByMSAT = Slot{kind: KindMSAT}
)

// Link returns a slot pointing at sector id.
func Link(id int) Slot {
	return Slot{kind: KindNext, next: int32(id)}
}

func (s Slot) Kind() Kind {
	return s.kind
}

// Next returns the successor sector id and whether s is a link at all.
func (s Slot) Next() (int, bool) {
	if s.kind != KindNext {
		return 0, false
	}
	return int(s.next), true
}

// Int32 returns the on-disk code for s.
func (s Slot) Int32() int32 {
	switch s.kind {
	case KindEndOfChain:
		return EndOfChainID
	case KindSAT:
		return SATID
	case KindMSAT:
		return MSATID
	case KindNext:
		return s.next
	default:
		return FreeID
	}
}

func (s Slot) String() string {
	if s.kind == KindNext {
		return fmt.Sprintf("next(%d)", s.next)
	}
	return s.kind.String()
}

// SlotFromInt32 decodes an on-disk SAT entry.
func SlotFromInt32(v int32) (Slot, error) {
	switch v {
	case FreeID:
		return Free, nil
	case EndOfChainID:
		return EndOfChain, nil
	case SATID:
		return UsedBySAT, nil
	case MSATID:
		return UsedByMSAT, nil
	}
	if v < 0 {
		return Slot{}, fmt.Errorf("%w: %d", errUnknownSlot, v)
	}
	return Link(int(v)), nil
}

// PaddedLen returns the length of an n-byte stream once padded to
// BlockSize.  A stream that is already block-aligned still gets a full
// block of padding, so the result is always strictly greater than n.
func PaddedLen(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative stream length %d", n)
	}
	blocks := uint64(n)/BlockSize + 1
	padded := blocks * BlockSize
	// the directory entry stores the stream size in 32 bits
	if padded > math.MaxUint32 || padded > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %d byte stream pads to %d bytes", ErrInputTooLarge, n, padded)
	}
	return int(padded), nil
}
