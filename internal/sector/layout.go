// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package sector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Layout describes how the sectors of a container are split between the
// data stream, MSAT overflow sectors, SAT sectors and the directory.
// Sectors are numbered in that order starting at 0.
type Layout struct {
	DataSectors int
	MSATSectors int
	SATSectors  int
	DirSectors  int
}

// Plan computes the smallest SAT and MSAT overflow sector counts able to
// describe dataSectors + dirSectors sectors plus the tables themselves.
func Plan(dataSectors, dirSectors int) (Layout, error) {
	l, _, err := plan(dataSectors, dirSectors)
	return l, err
}

// plan also reports the number of loop iterations.  Each iteration adds a
// SAT sector (128 more slots of capacity) while growing demand by at most
// 2 sectors (the SAT sector and possibly an MSAT overflow sector), so it
// runs at most ceil((dataSectors+dirSectors)/126) times.  S never ends an
// iteration above the limit: the limit moves up by 127 in the same step.
func plan(dataSectors, dirSectors int) (Layout, int, error) {
	if dataSectors < 0 || dirSectors < 0 {
		return Layout{}, 0, fmt.Errorf("negative sector count (data %d, dir %d)", dataSectors, dirSectors)
	}
	total := uint64(dataSectors) + uint64(dirSectors)
	if total > math.MaxInt32 {
		return Layout{}, 0, fmt.Errorf("%w: %d sectors", ErrInputTooLarge, total)
	}

	var satCount, msatCount, iterations uint64
	limit := uint64(HeaderMSATSlots)
	for total > SlotsPerSector*satCount || satCount > limit {
		satCount++
		total++
		if satCount > limit {
			msatCount++
			total++
			limit += overflowIDs
		}
		iterations++
	}

	// every sector id, including the last, must be a non-negative int32
	if total > math.MaxInt32 {
		return Layout{}, 0, fmt.Errorf("%w: %d sectors", ErrInputTooLarge, total)
	}

	l := Layout{
		DataSectors: dataSectors,
		MSATSectors: int(msatCount),
		SATSectors:  int(satCount),
		DirSectors:  dirSectors,
	}
	return l, int(iterations), nil
}

// Total is the number of sectors after the header.
func (l Layout) Total() int {
	return l.DataSectors + l.MSATSectors + l.SATSectors + l.DirSectors
}

func (l Layout) MSATStart() int {
	return l.DataSectors
}

func (l Layout) SATStart() int {
	return l.DataSectors + l.MSATSectors
}

func (l Layout) DirStart() int {
	return l.DataSectors + l.MSATSectors + l.SATSectors
}

// Assign returns the SAT entry of every sector in [0, Total()).
func (l Layout) Assign() []Slot {
	slots := make([]Slot, 0, l.Total())
	slots = appendChain(slots, 0, l.DataSectors)
	for i := 0; i < l.MSATSectors; i++ {
		slots = append(slots, UsedByMSAT)
	}
	for i := 0; i < l.SATSectors; i++ {
		slots = append(slots, UsedBySAT)
	}
	slots = appendChain(slots, l.DirStart(), l.DirSectors)
	return slots
}

// appendChain appends n sequentially linked sectors starting at start.
func appendChain(slots []Slot, start, n int) []Slot {
	for i := 0; i < n; i++ {
		if i == n-1 {
			slots = append(slots, EndOfChain)
		} else {
			slots = append(slots, Link(start+i+1))
		}
	}
	return slots
}

// PackSAT renders the SAT as SATSectors*128 little-endian int32 slots.
// Slots past Total() are free.
func (l Layout) PackSAT() []byte {
	buf := make([]byte, l.SATSectors*Size)
	slots := l.Assign()
	for i, slot := range slots {
		putSlot(buf, i, slot.Int32())
	}
	for i := len(slots); i < l.SATSectors*SlotsPerSector; i++ {
		putSlot(buf, i, FreeID)
	}
	return buf
}

// HeaderMSAT returns the MSAT entries embedded in the file header: the ids
// of the first 109 SAT sectors, free after that.
func (l Layout) HeaderMSAT() [HeaderMSATSlots]int32 {
	var msat [HeaderMSATSlots]int32
	for i := range msat {
		if i < l.SATSectors {
			msat[i] = int32(l.SATStart() + i)
		} else {
			msat[i] = FreeID
		}
	}
	return msat
}

// PackMSATOverflow renders the MSAT sectors holding the ids of SAT sectors
// past the first 109.  Each sector carries 127 ids and links to the next
// overflow sector in its last slot; the final link is end-of-chain.  It
// returns nil when no overflow sectors are needed.
func (l Layout) PackMSATOverflow() []byte {
	if l.MSATSectors == 0 {
		return nil
	}
	buf := make([]byte, l.MSATSectors*Size)
	satID := l.SATStart() + HeaderMSATSlots
	satEnd := l.SATStart() + l.SATSectors
	for j := 0; j < l.MSATSectors; j++ {
		sect := buf[j*Size : (j+1)*Size]
		for k := 0; k < overflowIDs; k++ {
			if satID < satEnd {
				putSlot(sect, k, int32(satID))
				satID++
			} else {
				putSlot(sect, k, FreeID)
			}
		}
		link := EndOfChainID
		if j < l.MSATSectors-1 {
			link = int32(l.MSATStart() + j + 1)
		}
		putSlot(sect, overflowIDs, link)
	}
	return buf
}

func putSlot(buf []byte, i int, v int32) {
	binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(v))
}
