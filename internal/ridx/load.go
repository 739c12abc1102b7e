package ridx

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"regionsearch/internal/format"
	"regionsearch/internal/index"
	"regionsearch/internal/logging"
)

// section is one verified, still-compressed section.
type section struct {
	entry format.SectionEntry
	blob  []byte
}

// Load reads, verifies, and assembles a frozen index from a RIDX container.
// The whole-file checksum is verified first, then each section's checksum
// before its payload is decompressed. logger may be nil.
func Load(path string, logger *slog.Logger) (*index.Index, Meta, error) {
	logger = logging.Default(logger).With("component", "ridx")
	start := time.Now()

	sections, err := readSections(path)
	if err != nil {
		return nil, Meta{}, err
	}

	parts := &index.Parts{}
	var meta Meta
	var seen int
	for _, s := range sections {
		raw, err := inflate(s)
		if err != nil {
			return nil, Meta{}, err
		}
		switch s.entry.Kind {
		case format.KindRegionTable:
			var p regionPayload
			if err := msgpack.Unmarshal(raw, &p); err != nil {
				return nil, Meta{}, fmt.Errorf("%w: region table: %v", ErrCorruption, err)
			}
			parts.Regions = p.Regions
		case format.KindTries:
			var p triesPayload
			if err := msgpack.Unmarshal(raw, &p); err != nil {
				return nil, Meta{}, fmt.Errorf("%w: tries: %v", ErrCorruption, err)
			}
			parts.NameTrie, parts.PinyinTrie, parts.ShortTrie = p.Name, p.Pinyin, p.Short
		case format.KindInverted:
			var p invertedPayload
			if err := msgpack.Unmarshal(raw, &p); err != nil {
				return nil, Meta{}, fmt.Errorf("%w: inverted indexes: %v", ErrCorruption, err)
			}
			parts.NameExact, parts.PinyinExact, parts.ShortExact = p.Name, p.Pinyin, p.Short
		case format.KindNgrams:
			var p ngramPayload
			if err := msgpack.Unmarshal(raw, &p); err != nil {
				return nil, Meta{}, fmt.Errorf("%w: ngram indexes: %v", ErrCorruption, err)
			}
			parts.NameNgrams, parts.PinyinNgrams = p.Name, p.Pinyin
		case format.KindMetadata:
			if err := msgpack.Unmarshal(raw, &meta); err != nil {
				return nil, Meta{}, fmt.Errorf("%w: metadata: %v", ErrCorruption, err)
			}
		default:
			return nil, Meta{}, fmt.Errorf("%w: unknown section kind 0x%02x", ErrCorruption, s.entry.Kind)
		}
		seen++
	}
	if seen != 5 ||
		parts.Regions == nil ||
		parts.NameTrie == nil || parts.PinyinTrie == nil || parts.ShortTrie == nil ||
		parts.NameExact == nil || parts.PinyinExact == nil || parts.ShortExact == nil ||
		parts.NameNgrams == nil || parts.PinyinNgrams == nil {
		return nil, Meta{}, fmt.Errorf("%w: missing sections", ErrCorruption)
	}

	ix, err := index.NewFromParts(parts)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("assemble index: %w", err)
	}

	logger.Info("index loaded",
		"path", path,
		"regions", ix.Len(),
		"build_id", meta.BuildID,
		"elapsed", time.Since(start))
	return ix, meta, nil
}

// ReadMeta verifies the container and decodes only the metadata section.
func ReadMeta(path string) (Meta, error) {
	sections, err := readSections(path)
	if err != nil {
		return Meta{}, err
	}
	for _, s := range sections {
		if s.entry.Kind != format.KindMetadata {
			continue
		}
		raw, err := inflate(s)
		if err != nil {
			return Meta{}, err
		}
		var meta Meta
		if err := msgpack.Unmarshal(raw, &meta); err != nil {
			return Meta{}, fmt.Errorf("%w: metadata: %v", ErrCorruption, err)
		}
		return meta, nil
	}
	return Meta{}, fmt.Errorf("%w: missing metadata section", ErrCorruption)
}

// readSections reads the container, checks the whole-file checksum, and
// verifies every section checksum. Payloads stay compressed.
func readSections(path string) ([]section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	if len(data) < format.HeaderSize+format.TrailerSize {
		return nil, fmt.Errorf("%w: truncated container", ErrCorruption)
	}

	// Whole-file checksum first: it guards the section table itself.
	body, trailer := data[:len(data)-format.TrailerSize], data[len(data)-format.TrailerSize:]
	if sum := sha256.Sum256(body); !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("%w: whole-file checksum mismatch", ErrCorruption)
	}

	hdr, err := format.DecodeHeader(body)
	if err != nil {
		if errors.Is(err, format.ErrVersionMismatch) {
			return nil, fmt.Errorf("%w: %v", ErrFormatVersion, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
	}

	tableEnd := format.HeaderSize + int(hdr.Sections)*format.EntrySize
	if tableEnd > len(body) {
		return nil, fmt.Errorf("%w: truncated section table", ErrCorruption)
	}

	sections := make([]section, 0, hdr.Sections)
	for i := 0; i < int(hdr.Sections); i++ {
		entry, err := format.DecodeEntry(body[format.HeaderSize+i*format.EntrySize:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruption, err)
		}
		end := entry.Offset + entry.CompressedLen
		if entry.Offset < uint64(tableEnd) || end > uint64(len(body)) || end < entry.Offset {
			return nil, fmt.Errorf("%w: section 0x%02x out of bounds", ErrCorruption, entry.Kind)
		}
		blob := body[entry.Offset:end]
		if sum := sha256.Sum256(blob); sum != entry.Digest {
			return nil, fmt.Errorf("%w: section 0x%02x checksum mismatch", ErrCorruption, entry.Kind)
		}
		sections = append(sections, section{entry: entry, blob: blob})
	}
	return sections, nil
}

// inflate decompresses one verified section and checks its declared size.
func inflate(s section) ([]byte, error) {
	raw, err := zstdDec.DecodeAll(s.blob, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: section 0x%02x: %v", ErrDecompression, s.entry.Kind, err)
	}
	if uint64(len(raw)) != s.entry.UncompressedLen {
		return nil, fmt.Errorf("%w: section 0x%02x size mismatch", ErrCorruption, s.entry.Kind)
	}
	return raw, nil
}
