// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package header reads and writes the 512-byte compound document header,
// including the first 109 MSAT entries embedded in it.
package header

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bpowers/compdoc/internal/sector"
)

const (
	Size      = 512
	fixedSize = 76 // fields before the embedded MSAT

	revision         = 0x003E
	version          = 0x0003
	byteOrderMark    = 0xFFFE
	sectorShift      = 9
	shortSectorShift = 6
	minStreamSize    = 0x1000
)

var Magic = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Header holds the fields of a compound document header this package
// cares about.  Everything else is written as the fixed values a reader
// expects.
type Header struct {
	Revision         uint16
	Version          uint16
	SectorShift      uint16
	ShortSectorShift uint16
	SATSectors       uint32
	DirStart         int32
	MinStreamSize    uint32
	ShortSATStart    int32
	ShortSATSectors  uint32
	MSATStart        int32
	MSATSectors      uint32
	MSAT             [sector.HeaderMSATSlots]int32
}

// New returns the header describing l.
func New(l sector.Layout) *Header {
	h := &Header{
		Revision:         revision,
		Version:          version,
		SectorShift:      sectorShift,
		ShortSectorShift: shortSectorShift,
		SATSectors:       uint32(l.SATSectors),
		DirStart:         int32(l.DirStart()),
		MinStreamSize:    minStreamSize,
		ShortSATStart:    sector.EndOfChainID,
		ShortSATSectors:  0,
		MSATStart:        sector.EndOfChainID,
		MSATSectors:      uint32(l.MSATSectors),
		MSAT:             l.HeaderMSAT(),
	}
	if l.MSATSectors > 0 {
		h.MSATStart = int32(l.MSATStart())
	}
	return h
}

// MarshalTo writes the header into the first Size bytes of b.
func (h *Header) MarshalTo(b []byte) error {
	if len(b) < Size {
		return fmt.Errorf("buffer too short for header: %d < %d", len(b), Size)
	}
	b = b[:Size]
	// the CLSID at 8:24 and the reserved ranges stay zero
	clear(b)

	copy(b[0:8], Magic[:])
	binary.LittleEndian.PutUint16(b[24:26], h.Revision)
	binary.LittleEndian.PutUint16(b[26:28], h.Version)
	binary.LittleEndian.PutUint16(b[28:30], byteOrderMark)
	binary.LittleEndian.PutUint16(b[30:32], h.SectorShift)
	binary.LittleEndian.PutUint16(b[32:34], h.ShortSectorShift)
	binary.LittleEndian.PutUint32(b[44:48], h.SATSectors)
	binary.LittleEndian.PutUint32(b[48:52], uint32(h.DirStart))
	binary.LittleEndian.PutUint32(b[56:60], h.MinStreamSize)
	binary.LittleEndian.PutUint32(b[60:64], uint32(h.ShortSATStart))
	binary.LittleEndian.PutUint32(b[64:68], h.ShortSATSectors)
	binary.LittleEndian.PutUint32(b[68:72], uint32(h.MSATStart))
	binary.LittleEndian.PutUint32(b[72:76], h.MSATSectors)
	for i, id := range h.MSAT {
		off := fixedSize + 4*i
		binary.LittleEndian.PutUint32(b[off:off+4], uint32(id))
	}

	return nil
}

func (h *Header) WriteTo(w io.Writer) (n int64, err error) {
	var headerBuf [Size]byte
	if err = h.MarshalTo(headerBuf[:]); err != nil {
		return 0, err
	}
	written, err := w.Write(headerBuf[:])
	if err != nil {
		return int64(written), fmt.Errorf("write: %w", err)
	} else if written != Size {
		return int64(written), fmt.Errorf("short write of %d (wanted %d)", written, Size)
	}
	return int64(written), nil
}

func (h *Header) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < Size {
		return fmt.Errorf("headerBytes too short: %d < %d", len(headerBytes), Size)
	}
	headerBytes = headerBytes[:Size]

	if !bytes.Equal(headerBytes[0:8], Magic[:]) {
		return fmt.Errorf("bad magic number (%x) -- not a compound document or corrupted", headerBytes[0:8])
	}
	if bom := binary.LittleEndian.Uint16(headerBytes[28:30]); bom != byteOrderMark {
		return fmt.Errorf("unsupported byte order mark %#04x", bom)
	}

	h.Revision = binary.LittleEndian.Uint16(headerBytes[24:26])
	h.Version = binary.LittleEndian.Uint16(headerBytes[26:28])
	h.SectorShift = binary.LittleEndian.Uint16(headerBytes[30:32])
	if h.SectorShift != sectorShift {
		return fmt.Errorf("only %d-byte sectors are supported; found sector shift %d", sector.Size, h.SectorShift)
	}
	h.ShortSectorShift = binary.LittleEndian.Uint16(headerBytes[32:34])
	h.SATSectors = binary.LittleEndian.Uint32(headerBytes[44:48])
	h.DirStart = int32(binary.LittleEndian.Uint32(headerBytes[48:52]))
	h.MinStreamSize = binary.LittleEndian.Uint32(headerBytes[56:60])
	h.ShortSATStart = int32(binary.LittleEndian.Uint32(headerBytes[60:64]))
	h.ShortSATSectors = binary.LittleEndian.Uint32(headerBytes[64:68])
	h.MSATStart = int32(binary.LittleEndian.Uint32(headerBytes[68:72]))
	h.MSATSectors = binary.LittleEndian.Uint32(headerBytes[72:76])
	for i := range h.MSAT {
		off := fixedSize + 4*i
		h.MSAT[i] = int32(binary.LittleEndian.Uint32(headerBytes[off : off+4]))
	}

	return nil
}
