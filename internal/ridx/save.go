package ridx

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"regionsearch/internal/format"
	"regionsearch/internal/index"
	"regionsearch/internal/logging"
)

// Save serializes the frozen index into one RIDX container at path,
// writing to a temp file in the same directory and renaming into place so
// a failed save never leaves a partial container behind. logger may be nil.
func Save(path string, ix *index.Index, logger *slog.Logger) error {
	logger = logging.Default(logger).With("component", "ridx")
	start := time.Now()

	meta := Meta{
		FormatVersion: format.Version,
		BuildID:       uuid.NewString(),
		BuiltAt:       time.Now().UTC(),
		Stats:         ix.Stats(),
	}

	parts := ix.Parts()
	payloads := []struct {
		kind byte
		body any
	}{
		{format.KindRegionTable, regionPayload{Regions: parts.Regions}},
		{format.KindTries, triesPayload{Name: parts.NameTrie, Pinyin: parts.PinyinTrie, Short: parts.ShortTrie}},
		{format.KindInverted, invertedPayload{Name: parts.NameExact, Pinyin: parts.PinyinExact, Short: parts.ShortExact}},
		{format.KindNgrams, ngramPayload{Name: parts.NameNgrams, Pinyin: parts.PinyinNgrams}},
		{format.KindMetadata, meta},
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("init zstd encoder: %w", err)
	}
	defer func() { _ = enc.Close() }()

	// Encode, compress, and checksum each section independently.
	entries := make([]format.SectionEntry, len(payloads))
	blobs := make([][]byte, len(payloads))
	offset := uint64(format.HeaderSize + len(payloads)*format.EntrySize)
	for i, p := range payloads {
		raw, err := msgpack.Marshal(p.body)
		if err != nil {
			return fmt.Errorf("encode section %q: %w", p.kind, err)
		}
		compressed := enc.EncodeAll(raw, nil)
		entries[i] = format.SectionEntry{
			Kind:            p.kind,
			Offset:          offset,
			CompressedLen:   uint64(len(compressed)),
			UncompressedLen: uint64(len(raw)),
			Digest:          sha256.Sum256(compressed),
		}
		blobs[i] = compressed
		offset += uint64(len(compressed))
	}

	var buf bytes.Buffer
	hdr := make([]byte, format.HeaderSize)
	format.Header{Version: format.Version, Sections: uint16(len(entries))}.EncodeInto(hdr)
	buf.Write(hdr)
	entryBuf := make([]byte, format.EntrySize)
	for _, e := range entries {
		e.EncodeInto(entryBuf)
		buf.Write(entryBuf)
	}
	for _, blob := range blobs {
		buf.Write(blob)
	}

	// Trailing whole-file checksum guards the header and section table.
	fileSum := sha256.Sum256(buf.Bytes())
	buf.Write(fileSum[:])

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return err
	}

	logger.Info("index saved",
		"path", path,
		"bytes", buf.Len(),
		"sections", len(entries),
		"build_id", meta.BuildID,
		"elapsed", time.Since(start))
	return nil
}

// writeAtomic writes data to a temp file next to path and renames it into
// place, removing the temp file on any failure.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ridx-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close container: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename container: %w", err)
	}
	return nil
}
