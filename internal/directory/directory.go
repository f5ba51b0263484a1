// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package directory renders and parses the 128-byte directory entries of a
// compound document.
//
// Every container this module writes has the same four entries, in order:
// the root storage, the single data stream, and two empty entries that
// pad the directory out to exactly one sector.
package directory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/bpowers/compdoc/internal/sector"
)

const (
	EntrySize      = 128
	EntriesPerSect = sector.Size / EntrySize
	nameFieldSize  = 64

	// MaxNameLen is in UTF-16 units, excluding the terminator.
	MaxNameLen = nameFieldSize/2 - 1

	RootName      = "Root Entry"
	DefaultStream = "Workbook"

	noSibling        = -1
	colourBlack      = 1
	rootFirstChild   = 1 // the stream entry
	invalidNameChars = "/\\:!"
)

var (
	ErrInvalidName = errors.New("invalid directory entry name")

	utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// Kind is the object type stored in an entry.
type Kind uint8

const (
	KindEmpty   Kind = 0
	KindStorage Kind = 1
	KindStream  Kind = 2
	KindRoot    Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindStorage:
		return "storage"
	case KindStream:
		return "stream"
	case KindRoot:
		return "root"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Entry is a decoded directory entry.
type Entry struct {
	Name   string
	Kind   Kind
	Colour uint8
	Left   int32
	Right  int32
	Child  int32
	Start  int32
	Size   uint32
}

// Root is the root storage entry.  The directory has no short stream, so
// it owns no sectors.
func Root() Entry {
	return Entry{
		Name:   RootName,
		Kind:   KindRoot,
		Colour: colourBlack,
		Left:   noSibling,
		Right:  noSibling,
		Child:  rootFirstChild,
		Start:  sector.EndOfChainID,
	}
}

// Stream is the entry for the data stream, which always starts at sector 0.
func Stream(name string, size uint32) Entry {
	return Entry{
		Name:   name,
		Kind:   KindStream,
		Colour: colourBlack,
		Left:   noSibling,
		Right:  noSibling,
		Child:  noSibling,
		Start:  0,
		Size:   size,
	}
}

// Empty is an unused entry.
func Empty() Entry {
	return Entry{
		Kind:   KindEmpty,
		Colour: colourBlack,
		Left:   noSibling,
		Right:  noSibling,
		Child:  noSibling,
		Start:  sector.EndOfChainID,
	}
}

// ValidateName reports whether name can be stored in an entry.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("%w: %q contains one of %q", ErrInvalidName, name, invalidNameChars)
	}
	encoded, err := utf16le.NewEncoder().String(name)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidName, name, err)
	}
	if n := len(encoded) / 2; n > MaxNameLen {
		return fmt.Errorf("%w: %q is %d UTF-16 units long (max %d)", ErrInvalidName, name, n, MaxNameLen)
	}
	return nil
}

// MarshalTo writes e into the first EntrySize bytes of b.
func (e Entry) MarshalTo(b []byte) error {
	if len(b) < EntrySize {
		return fmt.Errorf("buffer too short for directory entry: %d < %d", len(b), EntrySize)
	}
	b = b[:EntrySize]
	clear(b)

	if e.Kind != KindEmpty {
		if err := ValidateName(e.Name); err != nil {
			return err
		}
		encoded, err := utf16le.NewEncoder().Bytes([]byte(e.Name))
		if err != nil {
			return fmt.Errorf("utf16 encode: %w", err)
		}
		copy(b[:nameFieldSize], encoded)
		// the length includes the 2-byte terminator, which is already zero
		binary.LittleEndian.PutUint16(b[64:66], uint16(len(encoded)+2))
	}
	b[66] = uint8(e.Kind)
	b[67] = e.Colour
	binary.LittleEndian.PutUint32(b[68:72], uint32(e.Left))
	binary.LittleEndian.PutUint32(b[72:76], uint32(e.Right))
	binary.LittleEndian.PutUint32(b[76:80], uint32(e.Child))
	// 80:116 holds the CLSID, state bits and timestamps, all zero
	binary.LittleEndian.PutUint32(b[116:120], uint32(e.Start))
	binary.LittleEndian.PutUint32(b[120:124], e.Size)

	return nil
}

func (e *Entry) UnmarshalBytes(b []byte) error {
	if len(b) < EntrySize {
		return fmt.Errorf("entry too short: %d < %d", len(b), EntrySize)
	}
	b = b[:EntrySize]

	nameLen := int(binary.LittleEndian.Uint16(b[64:66]))
	if nameLen > nameFieldSize || nameLen%2 != 0 {
		return fmt.Errorf("bad name length %d", nameLen)
	}
	e.Name = ""
	if nameLen > 2 {
		decoded, err := utf16le.NewDecoder().Bytes(b[:nameLen-2])
		if err != nil {
			return fmt.Errorf("utf16 decode: %w", err)
		}
		e.Name = string(decoded)
	}
	e.Kind = Kind(b[66])
	e.Colour = b[67]
	e.Left = int32(binary.LittleEndian.Uint32(b[68:72]))
	e.Right = int32(binary.LittleEndian.Uint32(b[72:76]))
	e.Child = int32(binary.LittleEndian.Uint32(b[76:80]))
	e.Start = int32(binary.LittleEndian.Uint32(b[116:120]))
	e.Size = binary.LittleEndian.Uint32(b[120:124])

	return nil
}

// Build renders the four-entry directory for a stream called name holding
// size bytes.  The result is exactly one sector.
func Build(name string, size uint32) ([]byte, error) {
	entries := []Entry{
		Root(),
		Stream(name, size),
		Empty(),
		Empty(),
	}

	buf := make([]byte, len(entries)*EntrySize)
	for i, e := range entries {
		if err := e.MarshalTo(buf[i*EntrySize:]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return buf, nil
}

// Parse decodes every entry in buf, which must be a whole number of entries.
func Parse(buf []byte) ([]Entry, error) {
	if len(buf)%EntrySize != 0 {
		return nil, fmt.Errorf("directory length %d is not a multiple of %d", len(buf), EntrySize)
	}
	entries := make([]Entry, len(buf)/EntrySize)
	for i := range entries {
		if err := entries[i].UnmarshalBytes(buf[i*EntrySize:]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return entries, nil
}
