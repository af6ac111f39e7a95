package internals

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func buildThreeFixtureCorpus(t *testing.T) (*DocumentCollection, string) {
	t.Helper()
	dir := t.TempDir()
	yesPath := writeFixture(t, dir, "yes.bin", []byte(strings.Repeat("y\n", 256)))
	writeFixture(t, dir, "zero.bin", make([]byte, 512))
	writeFixture(t, dir, "zero-length", nil)

	dc := NewDocumentCollection()
	for _, name := range []string{"yes.bin", "zero.bin", "zero-length"} {
		p := filepath.Join(dir, name)
		if _, _, _, err := dc.AddFile(p); err != nil {
			t.Fatalf("AddFile(%s): %s", p, err)
		}
	}
	return dc, yesPath
}

func TestComputeDigestOfYesBin(t *testing.T) {
	dc, yesPath := buildThreeFixtureCorpus(t)

	digest, err := dc.ComputeDigest(yesPath)
	if err != nil {
		t.Fatalf("ComputeDigest: %s", err)
	}

	if len(digest) != 2 {
		t.Fatalf("expected 2 digest entries, got %d: %+v", len(digest), digest)
	}

	wantWeight := math.Log10(3.0/253.0) * math.Log10(1+253.0)
	for _, e := range digest {
		if math.Abs(e.Weight-wantWeight) > 1e-9 {
			t.Errorf("entry %d: expected weight %.15f, got %.15f", e.Chunk, wantWeight, e.Weight)
		}
	}

	for i := 1; i < len(digest); i++ {
		if digest[i-1].Chunk >= digest[i].Chunk {
			t.Errorf("digest entries not strictly ascending by chunk: %+v", digest)
		}
	}
}

func TestComputeDocumentDigestDropsUnknownChunks(t *testing.T) {
	dc := NewDocumentCollection()
	dc.MergeFrequencies(map[uint64]uint64{1: 5}, []string{"known.txt"})

	digest := dc.ComputeDocumentDigest([]uint64{1, 2, 2})
	for _, e := range digest {
		if e.Chunk == 2 {
			t.Errorf("expected chunk 2 (unknown to the model) to be dropped, got entry %+v", e)
		}
	}
}

func TestComputeDocumentDigestDropsZeroCorpusCount(t *testing.T) {
	dc := NewDocumentCollection()
	dc.MergeFrequencies(map[uint64]uint64{7: 0}, nil)

	digest := dc.ComputeDocumentDigest([]uint64{7})
	if len(digest) != 0 {
		t.Errorf("expected digest to be empty when corpus count is 0, got %+v", digest)
	}
}

func TestComputeDigestUnreadableFile(t *testing.T) {
	dc := NewDocumentCollection()
	_, err := dc.ComputeDigest(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	var fileErr *FileError
	if !asFileError(err, &fileErr) {
		t.Fatalf("expected a *FileError, got %T: %s", err, err)
	}
}

func asFileError(err error, target **FileError) bool {
	fe, ok := err.(*FileError)
	if ok {
		*target = fe
	}
	return ok
}

func TestZeroLengthFixtureExists(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "zero-length", nil)
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %s", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected zero-length fixture, got size %d", info.Size())
	}
}
