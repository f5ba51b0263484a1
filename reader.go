// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package compdoc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bpowers/compdoc/internal/bitset"
	"github.com/bpowers/compdoc/internal/directory"
	"github.com/bpowers/compdoc/internal/header"
	"github.com/bpowers/compdoc/internal/mmap"
	"github.com/bpowers/compdoc/internal/ondisk"
	"github.com/bpowers/compdoc/internal/sector"
)

var (
	ErrCorrupt        = errors.New("corrupt compound document")
	ErrStreamNotFound = errors.New("stream not found")
)

type (
	Header = header.Header
	Entry  = directory.Entry
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorrupt}, args...)...)
}

// Reader reads back a compound document.  It understands the regular
// sector chains, which is all this package writes; streams stored in the
// short-stream container are rejected.
type Reader struct {
	r       io.ReaderAt
	closer  io.Closer
	sectors int64 // whole sectors after the header

	header   header.Header
	satIDs   []int // SAT sector ids, in MSAT order
	msatIDs  []int // MSAT overflow sector ids, in chain order
	sat      []sector.Slot
	dirChain []int
	entries  []directory.Entry
}

// NewReader parses the header, master table, allocation table and
// directory of the size-byte container in r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	if size < header.Size {
		return nil, corruptf("file too short: %d < %d", size, header.Size)
	}

	var headerBuf [header.Size]byte
	if _, err := io.ReadFull(io.NewSectionReader(r, 0, header.Size), headerBuf[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rd := &Reader{
		r:       r,
		sectors: (size - header.Size) / sector.Size,
	}
	if err := rd.header.UnmarshalBytes(headerBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: header.UnmarshalBytes: %w", ErrCorrupt, err)
	}
	if err := rd.loadMSAT(); err != nil {
		return nil, fmt.Errorf("loadMSAT: %w", err)
	}
	if err := rd.loadSAT(); err != nil {
		return nil, fmt.Errorf("loadSAT: %w", err)
	}
	if err := rd.loadDirectory(); err != nil {
		return nil, fmt.Errorf("loadDirectory: %w", err)
	}

	return rd, nil
}

// Open memory-maps the container at path.  Make sure to Close it.
func Open(path string) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}
	r, err := NewReader(m, int64(m.Len()))
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	r.closer = m
	return r, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func (r *Reader) Header() Header {
	return r.header
}

// Entries returns the directory entries in on-disk order.
func (r *Reader) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Layout reconstructs the sector layout from the tables actually found in
// the file.  DataSectors counts the sectors needed by every stream entry.
func (r *Reader) Layout() Layout {
	var dataSectors int
	for _, e := range r.entries {
		if e.Kind == directory.KindStream {
			dataSectors += int((int64(e.Size) + sector.Size - 1) / sector.Size)
		}
	}
	return Layout{
		DataSectors: dataSectors,
		MSATSectors: len(r.msatIDs),
		SATSectors:  len(r.satIDs),
		DirSectors:  len(r.dirChain),
	}
}

func (r *Reader) offset(id int) int64 {
	return header.Size + int64(id)*sector.Size
}

func (r *Reader) checkID(id int) error {
	if id < 0 || int64(id) >= r.sectors {
		return corruptf("sector id %d out of range (%d sectors)", id, r.sectors)
	}
	return nil
}

func (r *Reader) loadMSAT() error {
	n := int(r.header.SATSectors)
	if int64(n) > r.sectors {
		return corruptf("%d SAT sectors in a file of %d sectors", n, r.sectors)
	}
	for i := 0; i < n && i < sector.HeaderMSATSlots; i++ {
		id := int(r.header.MSAT[i])
		if err := r.checkID(id); err != nil {
			return fmt.Errorf("header MSAT slot %d: %w", i, err)
		}
		r.satIDs = append(r.satIDs, id)
	}

	visited := bitset.New(r.sectors)
	next := r.header.MSATStart
	for len(r.satIDs) < n {
		if next < 0 {
			return corruptf("MSAT ends after %d of %d SAT sectors", len(r.satIDs), n)
		}
		id := int(next)
		if err := r.checkID(id); err != nil {
			return fmt.Errorf("MSAT chain: %w", err)
		}
		if visited.TestAndSet(int64(id)) {
			return corruptf("MSAT chain loops back to sector %d", id)
		}
		r.msatIDs = append(r.msatIDs, id)

		slots, err := ondisk.NewInt32Array(r.r, sector.SlotsPerSector, r.offset(id)).ReadAll()
		if err != nil {
			return fmt.Errorf("MSAT sector %d: %w", id, err)
		}
		for k := 0; k < sector.SlotsPerSector-1 && len(r.satIDs) < n; k++ {
			if err := r.checkID(int(slots[k])); err != nil {
				return fmt.Errorf("MSAT sector %d slot %d: %w", id, k, err)
			}
			r.satIDs = append(r.satIDs, int(slots[k]))
		}
		next = slots[sector.SlotsPerSector-1]
	}

	return nil
}

func (r *Reader) loadSAT() error {
	r.sat = make([]sector.Slot, 0, len(r.satIDs)*sector.SlotsPerSector)
	for _, id := range r.satIDs {
		values, err := ondisk.NewInt32Array(r.r, sector.SlotsPerSector, r.offset(id)).ReadAll()
		if err != nil {
			return fmt.Errorf("SAT sector %d: %w", id, err)
		}
		for _, v := range values {
			slot, err := sector.SlotFromInt32(v)
			if err != nil {
				return corruptf("SAT sector %d: %s", id, err)
			}
			r.sat = append(r.sat, slot)
		}
	}
	return nil
}

func (r *Reader) loadDirectory() error {
	ids, err := r.chain(int(r.header.DirStart))
	if err != nil {
		return fmt.Errorf("directory chain: %w", err)
	}
	if len(ids) == 0 {
		return corruptf("empty directory")
	}
	buf, err := r.readSectors(ids)
	if err != nil {
		return err
	}
	entries, err := directory.Parse(buf)
	if err != nil {
		return fmt.Errorf("%w: directory.Parse: %w", ErrCorrupt, err)
	}
	if entries[0].Kind != directory.KindRoot {
		return corruptf("first directory entry is %s, not root", entries[0].Kind)
	}

	r.dirChain = ids
	r.entries = entries
	return nil
}

// chain follows the SAT from start and returns every sector id on the way.
func (r *Reader) chain(start int) ([]int, error) {
	if int32(start) == sector.EndOfChainID {
		return nil, nil
	}

	visited := bitset.New(int64(len(r.sat)))
	var ids []int
	id := start
	for {
		if err := r.checkID(id); err != nil {
			return nil, err
		}
		if id >= len(r.sat) {
			return nil, corruptf("sector %d not covered by the SAT (%d slots)", id, len(r.sat))
		}
		if visited.TestAndSet(int64(id)) {
			return nil, corruptf("chain from sector %d loops back to sector %d", start, id)
		}
		ids = append(ids, id)

		slot := r.sat[id]
		if next, ok := slot.Next(); ok {
			id = next
			continue
		}
		if slot.Kind() == sector.KindEndOfChain {
			return ids, nil
		}
		return nil, corruptf("chain from sector %d runs into a %s sector at %d", start, slot, id)
	}
}

func (r *Reader) readSectors(ids []int) ([]byte, error) {
	buf := make([]byte, len(ids)*sector.Size)
	for i, id := range ids {
		dst := buf[i*sector.Size : (i+1)*sector.Size]
		if _, err := io.ReadFull(io.NewSectionReader(r.r, r.offset(id), sector.Size), dst); err != nil {
			return nil, fmt.Errorf("read sector %d: %w", id, err)
		}
	}
	return buf, nil
}

// ReadStream returns the contents of the named stream.  Names compare
// case-insensitively, as they do in the directory itself.  For containers
// written by this package the result includes the zero padding.
func (r *Reader) ReadStream(name string) ([]byte, error) {
	for _, e := range r.entries {
		if e.Kind != directory.KindStream || !strings.EqualFold(e.Name, name) {
			continue
		}
		if e.Size == 0 {
			return []byte{}, nil
		}
		if e.Size < r.header.MinStreamSize {
			return nil, fmt.Errorf("stream %q is %d bytes: short streams are not supported", e.Name, e.Size)
		}

		ids, err := r.chain(int(e.Start))
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", e.Name, err)
		}
		need := (int64(e.Size) + sector.Size - 1) / sector.Size
		if int64(len(ids)) < need {
			return nil, corruptf("stream %q needs %d sectors, chain has %d", e.Name, need, len(ids))
		}
		buf, err := r.readSectors(ids[:need])
		if err != nil {
			return nil, fmt.Errorf("stream %q: %w", e.Name, err)
		}
		return buf[:e.Size], nil
	}

	return nil, fmt.Errorf("%w: %q", ErrStreamNotFound, name)
}

// Verify checks the container's bookkeeping: the master table lists
// exactly the SAT sectors, and every sector in the file is claimed by
// exactly one of a stream chain, the directory chain, the SAT or the MSAT.
func (r *Reader) Verify() error {
	h := r.header
	if len(r.satIDs) != int(h.SATSectors) {
		return corruptf("MSAT lists %d SAT sectors, header says %d", len(r.satIDs), h.SATSectors)
	}
	if len(r.msatIDs) != int(h.MSATSectors) {
		return corruptf("MSAT chain has %d sectors, header says %d", len(r.msatIDs), h.MSATSectors)
	}
	for i := len(r.satIDs); i < sector.HeaderMSATSlots; i++ {
		if h.MSAT[i] != sector.FreeID {
			return corruptf("unused header MSAT slot %d holds %d", i, h.MSAT[i])
		}
	}
	if int64(len(r.sat)) < r.sectors {
		return corruptf("SAT covers %d of %d sectors", len(r.sat), r.sectors)
	}

	claimed := bitset.New(r.sectors)
	claim := func(id int, role string) error {
		if err := r.checkID(id); err != nil {
			return fmt.Errorf("%s: %w", role, err)
		}
		if claimed.TestAndSet(int64(id)) {
			return corruptf("sector %d claimed twice (second time by %s)", id, role)
		}
		return nil
	}

	for _, id := range r.satIDs {
		if k := r.sat[id].Kind(); k != sector.KindSAT {
			return corruptf("SAT sector %d is marked %s", id, k)
		}
		if err := claim(id, "SAT"); err != nil {
			return err
		}
	}
	for _, id := range r.msatIDs {
		if k := r.sat[id].Kind(); k != sector.KindMSAT {
			return corruptf("MSAT sector %d is marked %s", id, k)
		}
		if err := claim(id, "MSAT"); err != nil {
			return err
		}
	}
	for _, id := range r.dirChain {
		if err := claim(id, "directory"); err != nil {
			return err
		}
	}
	for _, e := range r.entries {
		if e.Kind != directory.KindStream {
			continue
		}
		ids, err := r.chain(int(e.Start))
		if err != nil {
			return fmt.Errorf("stream %q: %w", e.Name, err)
		}
		for _, id := range ids {
			if err := claim(id, fmt.Sprintf("stream %q", e.Name)); err != nil {
				return err
			}
		}
	}

	if first := claimed.FirstClear(); first >= 0 {
		return corruptf("sector %d (%s) belongs to no chain or table", first, r.sat[first])
	}
	for i := r.sectors; i < int64(len(r.sat)); i++ {
		if r.sat[i] != sector.Free {
			return corruptf("SAT slot %d past the end of the file is %s", i, r.sat[i])
		}
	}

	return nil
}
