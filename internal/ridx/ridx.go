// Package ridx is the storage codec for the frozen index bundle: one
// binary container holding independently compressed, independently
// checksummed sections (region table, tries, inverted indexes, n-grams,
// build metadata) behind a whole-file checksum.
//
// Layout is defined in internal/format. Payloads are msgpack-encoded and
// zstd-compressed; checksums are SHA-256 over the compressed bytes, so a
// flipped byte is detected before decompression is attempted. Corruption
// and version errors abort the load only; the caller decides whether to
// fall back to rebuilding from source data.
package ridx

import (
	"errors"
	"time"

	"github.com/klauspost/compress/zstd"

	"regionsearch/internal/index"
)

var (
	// ErrCorruption covers checksum mismatches, truncation, and malformed
	// section tables or payload encodings.
	ErrCorruption = errors.New("index file corrupted")

	// ErrFormatVersion marks a container written by an unsupported format
	// version.
	ErrFormatVersion = errors.New("unsupported index format version")

	// ErrDecompression marks a section whose checksum matched but whose
	// compressed payload would not inflate.
	ErrDecompression = errors.New("index section decompression failed")
)

// Meta is the build metadata section.
type Meta struct {
	FormatVersion byte        `msgpack:"format_version" json:"format_version"`
	BuildID       string      `msgpack:"build_id" json:"build_id"`
	BuiltAt       time.Time   `msgpack:"built_at" json:"built_at"`
	Stats         index.Stats `msgpack:"stats" json:"stats"`
}

// zstdDec is a package-level decoder, concurrent-safe, always available
// for loads.
var zstdDec *zstd.Decoder

func init() {
	var err error
	zstdDec, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic("zstd: init decoder: " + err.Error())
	}
}
