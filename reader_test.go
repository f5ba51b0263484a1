// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package compdoc

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bpowers/compdoc/internal/directory"
)

func openBytes(t *testing.T, b []byte) (*Reader, error) {
	t.Helper()
	return NewReader(bytes.NewReader(b), int64(len(b)))
}

func padded(data []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, data)
	return out
}

func TestReader_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 10, 4096, 17000, 65537} {
		data := repeated(n)
		out, err := Encode(data)
		require.NoError(t, err)

		r, err := openBytes(t, out)
		require.NoError(t, err)
		require.NoError(t, r.Verify())

		expectedLayout, err := PlanLayout(n)
		require.NoError(t, err)
		require.Equal(t, expectedLayout, r.Layout())

		stream, err := r.ReadStream("Workbook")
		require.NoError(t, err)
		require.Equal(t, padded(data, expectedLayout.DataSectors*sectorBytes), stream)

		entries := r.Entries()
		require.Len(t, entries, 4)
		require.Equal(t, directory.KindRoot, entries[0].Kind)
		require.Equal(t, "Root Entry", entries[0].Name)
		require.Equal(t, directory.KindStream, entries[1].Kind)
		require.Equal(t, directory.KindEmpty, entries[2].Kind)
		require.Equal(t, directory.KindEmpty, entries[3].Kind)

		require.NoError(t, r.Close())
	}
}

func TestReader_CaseInsensitiveNames(t *testing.T) {
	out, err := Encode(repeated(100), WithStreamName("Book"))
	require.NoError(t, err)
	r, err := openBytes(t, out)
	require.NoError(t, err)

	_, err = r.ReadStream("BOOK")
	require.NoError(t, err)
	_, err = r.ReadStream("Workbook")
	require.ErrorIs(t, err, ErrStreamNotFound)
	// the root is a storage, not a stream
	_, err = r.ReadStream("Root Entry")
	require.ErrorIs(t, err, ErrStreamNotFound)
}

func TestReader_MSATOverflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a 7MB container")
	}

	data := repeated(1730 * 4096)
	out, err := Encode(data)
	require.NoError(t, err)

	r, err := openBytes(t, out)
	require.NoError(t, err)
	require.NoError(t, r.Verify())

	h := r.Header()
	require.Equal(t, int32(13848), h.MSATStart)
	require.Equal(t, uint32(1), h.MSATSectors)
	require.Equal(t, Layout{DataSectors: 13848, MSATSectors: 1, SATSectors: 110, DirSectors: 1}, r.Layout())

	stream, err := r.ReadStream("Workbook")
	require.NoError(t, err)
	require.Equal(t, padded(data, 13848*sectorBytes), stream)
}

func TestReader_ChainedMSATOverflow(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a 30MB container")
	}

	// 59208 data sectors need 467 SAT sectors: 109 in the header and 358
	// spread over three chained overflow sectors
	data := repeated(7400 * 4096)
	out, err := Encode(data)
	require.NoError(t, err)

	const (
		dataSectors = 59208
		msatStart   = dataSectors
		satStart    = msatStart + 3
		satSectors  = 467
		dirStart    = satStart + satSectors
	)
	require.Equal(t, sectorBytes+(dirStart+1)*sectorBytes, len(out))
	require.Equal(t, int32(msatStart), i32At(out, 68))
	require.Equal(t, uint32(3), u32At(out, 72))

	nextSAT := satStart + 109
	for i := 0; i < 3; i++ {
		overflow := out[sectorOffset(msatStart+i) : sectorOffset(msatStart+i)+sectorBytes]
		for k := 0; k < 127; k++ {
			if nextSAT < satStart+satSectors {
				require.Equal(t, int32(nextSAT), i32At(overflow, 4*k), "overflow sector %d slot %d", i, k)
				nextSAT++
			} else {
				require.Equal(t, int32(freeID), i32At(overflow, 4*k), "overflow sector %d slot %d", i, k)
			}
		}
		link := int32(msatStart + i + 1)
		if i == 2 {
			link = endOfChain
		}
		require.Equal(t, link, i32At(overflow, 4*127), "overflow sector %d link", i)
	}
	require.Equal(t, satStart+satSectors, nextSAT)

	r, err := openBytes(t, out)
	require.NoError(t, err)
	require.NoError(t, r.Verify())
	require.Equal(t, Layout{DataSectors: dataSectors, MSATSectors: 3, SATSectors: satSectors, DirSectors: 1}, r.Layout())

	stream, err := r.ReadStream("Workbook")
	require.NoError(t, err)
	require.Equal(t, padded(data, dataSectors*sectorBytes), stream)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xls")
	data := repeated(17000)
	require.NoError(t, WriteFile(path, data))

	r, err := Open(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, r.Close())
	}()

	require.NoError(t, r.Verify())
	require.Equal(t, int32(41), r.Header().DirStart)
	stream, err := r.ReadStream("Workbook")
	require.NoError(t, err)
	require.Equal(t, padded(data, 20480), stream)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xls"))
	require.Error(t, err)
}

func TestReader_Corrupt(t *testing.T) {
	valid, err := Encode(repeated(17000))
	require.NoError(t, err)

	corrupt := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return f(b)
	}
	putSATSlot := func(b []byte, slot int, v int32) {
		binary.LittleEndian.PutUint32(b[sectorOffset(40)+4*slot:], uint32(v))
	}

	for name, b := range map[string][]byte{
		"short file": valid[:100],
		"bad magic": corrupt(func(b []byte) []byte {
			b[0] = 0
			return b
		}),
		"truncated directory": valid[:len(valid)-sectorBytes],
		"directory start out of range": corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[48:], 1000)
			return b
		}),
		"SAT id out of range": corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[76:], 5000)
			return b
		}),
		"unknown SAT code": corrupt(func(b []byte) []byte {
			putSATSlot(b, 3, -9)
			return b
		}),
		"directory chain loops": corrupt(func(b []byte) []byte {
			putSATSlot(b, 41, 41)
			return b
		}),
		"missing MSAT overflow": corrupt(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[44:], 2)
			return b
		}),
	} {
		_, err := openBytes(t, b)
		require.ErrorIs(t, err, ErrCorrupt, name)
	}
}

func TestReader_CorruptChains(t *testing.T) {
	valid, err := Encode(repeated(17000))
	require.NoError(t, err)

	putSATSlot := func(b []byte, slot int, v int32) {
		binary.LittleEndian.PutUint32(b[sectorOffset(40)+4*slot:], uint32(v))
	}

	// data chain loops back on itself
	b := append([]byte(nil), valid...)
	putSATSlot(b, 39, 0)
	r, err := openBytes(t, b)
	require.NoError(t, err)
	_, err = r.ReadStream("Workbook")
	require.ErrorIs(t, err, ErrCorrupt)
	require.ErrorIs(t, r.Verify(), ErrCorrupt)

	// data chain ends early
	b = append([]byte(nil), valid...)
	putSATSlot(b, 20, endOfChain)
	r, err = openBytes(t, b)
	require.NoError(t, err)
	_, err = r.ReadStream("Workbook")
	require.ErrorIs(t, err, ErrCorrupt)
	require.ErrorIs(t, r.Verify(), ErrCorrupt)

	// data chain runs into the directory
	b = append([]byte(nil), valid...)
	putSATSlot(b, 39, 41)
	r, err = openBytes(t, b)
	require.NoError(t, err)
	require.ErrorIs(t, r.Verify(), ErrCorrupt)

	// SAT sector not marked as such
	b = append([]byte(nil), valid...)
	putSATSlot(b, 40, freeID)
	r, err = openBytes(t, b)
	require.NoError(t, err)
	require.ErrorIs(t, r.Verify(), ErrCorrupt)

	// stale entry in the unused part of the header MSAT
	b = append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(b[80:], 3)
	r, err = openBytes(t, b)
	require.NoError(t, err)
	require.ErrorIs(t, r.Verify(), ErrCorrupt)
}
