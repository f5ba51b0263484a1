// Copyright 2026 The compdoc Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package compdoc packages a single byte stream (usually a BIFF workbook
// stream) into a compound document, the sector-based container legacy
// spreadsheet readers expect in an .xls file.
//
// A compound document written by this package always looks like:
//
//	┌───────────────────────┐ offset 0
//	│ header (76 bytes)     │
//	│ MSAT, first 109 ids   │
//	├───────────────────────┤ offset 512, sector 0
//	│ data stream, padded   │
//	│ to a multiple of 4096 │
//	│                       │
//	├───────────────────────┤
//	│ MSAT overflow sectors │ only when the SAT needs more than 109 sectors
//	├───────────────────────┤
//	│ SAT sectors           │
//	├───────────────────────┤
//	│ directory (1 sector)  │ root, the stream, two empty entries
//	└───────────────────────┘
//
// Sectors are 512 bytes and numbered from 0 starting right after the
// header.  The SAT holds one little-endian int32 per sector: the id of the
// next sector in the same chain, or one of the sentinels -1 (free),
// -2 (end of chain), -3 (SAT sector) or -4 (MSAT sector).
//
// The data stream is always padded with at least one byte; a stream that is
// already a multiple of 4096 bytes long gains a whole extra block.  The
// directory records the padded length as the stream size.
package compdoc
