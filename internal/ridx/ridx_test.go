package ridx

import (
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"regionsearch/internal/format"
	"regionsearch/internal/index"
	"regionsearch/internal/region"
)

func buildTestIndex(t *testing.T) *index.Index {
	t.Helper()
	b := index.NewBuilder(nil)
	b.Add(
		region.Record{ID: 1, Name: "广东省", Level: region.LevelProvince, PinyinFull: "guangdong", PinyinShort: "gd"},
		region.Record{ID: 2, Name: "佛山市", Level: region.LevelCity, ParentID: 1, PinyinFull: "foshan", PinyinShort: "fs"},
		region.Record{ID: 3, Name: "广州市", Level: region.LevelCity, ParentID: 1, PinyinFull: "guangzhou", PinyinShort: "gz"},
		region.Record{ID: 4, Name: "禅城区", Level: region.LevelDistrict, ParentID: 2, PinyinFull: "chancheng", PinyinShort: "cc"},
	)
	ix, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func saveTestIndex(t *testing.T) (string, *index.Index) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.ridx")
	ix := buildTestIndex(t)
	if err := Save(path, ix, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path, ix
}

// load(save(index)) must answer a benchmark query set identically.
func TestRoundTrip(t *testing.T) {
	path, orig := saveTestIndex(t)

	loaded, meta, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if meta.FormatVersion != format.Version {
		t.Errorf("meta.FormatVersion = %d, want %d", meta.FormatVersion, format.Version)
	}
	if meta.BuildID == "" || meta.BuiltAt.IsZero() {
		t.Errorf("meta missing build identity: %+v", meta)
	}
	if meta.Stats != orig.Stats() {
		t.Errorf("meta.Stats = %+v, want %+v", meta.Stats, orig.Stats())
	}

	queries := []string{"广东省", "佛山", "禅", "guang", "foshan", "gd", "fs", "fozan", "zzz"}
	for _, q := range queries {
		if !reflect.DeepEqual(loaded.ExactName(q).Slice(), orig.ExactName(q).Slice()) {
			t.Errorf("ExactName(%q) differs after round trip", q)
		}
		if !reflect.DeepEqual(loaded.PinyinPrefix(q).Slice(), orig.PinyinPrefix(q).Slice()) {
			t.Errorf("PinyinPrefix(%q) differs after round trip", q)
		}
		if !reflect.DeepEqual(loaded.ExactShort(q).Slice(), orig.ExactShort(q).Slice()) {
			t.Errorf("ExactShort(%q) differs after round trip", q)
		}
		if !reflect.DeepEqual(loaded.NgramCandidates(q).Slice(), orig.NgramCandidates(q).Slice()) {
			t.Errorf("NgramCandidates(%q) differs after round trip", q)
		}
	}

	// Derived fields are recomputed on load.
	r, ok := loaded.Region(4)
	if !ok {
		t.Fatal("region 4 missing after load")
	}
	if !reflect.DeepEqual(r.Path, []string{"广东省", "佛山市", "禅城区"}) {
		t.Errorf("path of 禅城区 after load = %v", r.Path)
	}
}

func TestReadMeta(t *testing.T) {
	path, orig := saveTestIndex(t)

	meta, err := ReadMeta(path)
	if err != nil {
		t.Fatalf("ReadMeta: %v", err)
	}
	if meta.Stats.Regions != orig.Len() {
		t.Errorf("meta.Stats.Regions = %d, want %d", meta.Stats.Regions, orig.Len())
	}
}

// Flipping any byte inside a section payload must fail the load with a
// corruption error, never silently return wrong data.
func TestCorruptionDetection(t *testing.T) {
	path, _ := saveTestIndex(t)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one byte in the middle of the payload area (past the section
	// table, before the trailer).
	tableEnd := format.HeaderSize + 5*format.EntrySize
	positions := []int{
		tableEnd + 1,
		tableEnd + (len(data)-tableEnd-format.TrailerSize)/2,
		len(data) - format.TrailerSize - 2,
	}

	for _, pos := range positions {
		corrupted := append([]byte(nil), data...)
		corrupted[pos] ^= 0xFF
		if err := os.WriteFile(path, corrupted, 0o644); err != nil {
			t.Fatal(err)
		}

		if _, _, err := Load(path, nil); !errors.Is(err, ErrCorruption) {
			t.Errorf("Load with byte %d flipped = %v, want ErrCorruption", pos, err)
		}
	}
}

func TestHeaderTampering(t *testing.T) {
	path, _ := saveTestIndex(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Any header edit breaks the whole-file checksum first.
	bad := append([]byte(nil), data...)
	bad[0] = 'X'
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path, nil); !errors.Is(err, ErrCorruption) {
		t.Errorf("Load with broken magic = %v, want ErrCorruption", err)
	}
}

func TestFormatVersionRejected(t *testing.T) {
	path, _ := saveTestIndex(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Bump the version byte and recompute the trailer so only the version
	// check can fire.
	bad := append([]byte(nil), data...)
	bad[4] = format.Version + 1
	bad = resign(bad)
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path, nil); !errors.Is(err, ErrFormatVersion) {
		t.Errorf("Load with future version = %v, want ErrFormatVersion", err)
	}
}

func TestDecompressionFailure(t *testing.T) {
	path, _ := saveTestIndex(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Garble the first section's payload and re-sign both its digest and
	// the whole file, so checksums pass and only the zstd frame is bad.
	entryOff := format.HeaderSize
	entry, err := format.DecodeEntry(data[entryOff:])
	if err != nil {
		t.Fatal(err)
	}
	bad := append([]byte(nil), data...)
	for i := uint64(0); i < entry.CompressedLen; i++ {
		bad[entry.Offset+i] = byte(i)
	}
	entry.Digest = sum256(bad[entry.Offset : entry.Offset+entry.CompressedLen])
	entry.EncodeInto(bad[entryOff:])
	bad = resign(bad)
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := Load(path, nil); !errors.Is(err, ErrDecompression) {
		t.Errorf("Load with garbled payload = %v, want ErrDecompression", err)
	}
}

func TestTruncated(t *testing.T) {
	path, _ := saveTestIndex(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, 3, format.HeaderSize, len(data) / 2} {
		if err := os.WriteFile(path, data[:n], 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Load(path, nil); !errors.Is(err, ErrCorruption) {
			t.Errorf("Load of %d-byte file = %v, want ErrCorruption", n, err)
		}
	}
}

func sum256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// resign recomputes the trailing whole-file checksum after a deliberate edit.
func resign(data []byte) []byte {
	body := data[:len(data)-format.TrailerSize]
	sum := sha256.Sum256(body)
	return append(append([]byte(nil), body...), sum[:]...)
}

func TestMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.ridx"), nil)
	if err == nil || errors.Is(err, ErrCorruption) {
		t.Errorf("Load(missing) = %v, want plain I/O error", err)
	}
}
