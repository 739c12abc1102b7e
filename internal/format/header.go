// Package format defines the RIDX binary container layout shared by the
// writer and reader in internal/ridx.
package format

import (
	"encoding/binary"
	"errors"
)

// Container layout:
//
//	header:   magic "RIDX" (4) | version (1) | flags (1) | section count (2, LE)
//	table:    section count × section entry
//	payloads: concatenated compressed section payloads
//	trailer:  SHA-256 over everything before it (32)
//
// Section table entry:
//
//	kind (1) | offset (8, LE, from file start) | compressed len (8, LE) |
//	uncompressed len (8, LE) | SHA-256 of compressed payload (32)
//
// Section kinds:
//
//	'r' = region table
//	't' = tries (name / pinyin / short pinyin)
//	'i' = inverted indexes
//	'n' = n-gram indexes
//	'm' = build metadata
const (
	Magic      = "RIDX"
	Version    = 0x01
	HeaderSize = 8

	EntrySize    = 1 + 8 + 8 + 8 + DigestSize
	DigestSize   = 32
	TrailerSize  = DigestSize
	MaxSections  = 64 // sanity cap; the format currently defines five kinds
	FlagReserved = 0x00

	KindRegionTable = 'r'
	KindTries       = 't'
	KindInverted    = 'i'
	KindNgrams      = 'n'
	KindMetadata    = 'm'
)

var (
	ErrTooSmall        = errors.New("container too small")
	ErrMagicMismatch   = errors.New("magic mismatch")
	ErrVersionMismatch = errors.New("version mismatch")
	ErrTooManySections = errors.New("section count exceeds limit")
)

// Header is the decoded fixed-size container header.
type Header struct {
	Version  byte
	Flags    byte
	Sections uint16
}

// EncodeInto writes the header into buf at offset 0 and returns HeaderSize.
// buf must be at least HeaderSize bytes.
func (h Header) EncodeInto(buf []byte) int {
	copy(buf, Magic)
	buf[4] = h.Version
	buf[5] = h.Flags
	binary.LittleEndian.PutUint16(buf[6:], h.Sections)
	return HeaderSize
}

// DecodeHeader reads and validates the fixed-size header.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrTooSmall
	}
	if string(buf[:4]) != Magic {
		return Header{}, ErrMagicMismatch
	}
	h := Header{
		Version:  buf[4],
		Flags:    buf[5],
		Sections: binary.LittleEndian.Uint16(buf[6:]),
	}
	if h.Version != Version {
		return Header{}, ErrVersionMismatch
	}
	if h.Sections > MaxSections {
		return Header{}, ErrTooManySections
	}
	return h, nil
}

// SectionEntry is one row of the section table.
type SectionEntry struct {
	Kind             byte
	Offset           uint64
	CompressedLen    uint64
	UncompressedLen  uint64
	Digest           [DigestSize]byte
}

// EncodeInto writes the entry into buf at offset 0 and returns EntrySize.
// buf must be at least EntrySize bytes.
func (e SectionEntry) EncodeInto(buf []byte) int {
	buf[0] = e.Kind
	binary.LittleEndian.PutUint64(buf[1:], e.Offset)
	binary.LittleEndian.PutUint64(buf[9:], e.CompressedLen)
	binary.LittleEndian.PutUint64(buf[17:], e.UncompressedLen)
	copy(buf[25:], e.Digest[:])
	return EntrySize
}

// DecodeEntry reads one section table entry.
func DecodeEntry(buf []byte) (SectionEntry, error) {
	if len(buf) < EntrySize {
		return SectionEntry{}, ErrTooSmall
	}
	e := SectionEntry{
		Kind:            buf[0],
		Offset:          binary.LittleEndian.Uint64(buf[1:]),
		CompressedLen:   binary.LittleEndian.Uint64(buf[9:]),
		UncompressedLen: binary.LittleEndian.Uint64(buf[17:]),
	}
	copy(e.Digest[:], buf[25:])
	return e, nil
}
