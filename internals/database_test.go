package internals

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleDocuments() []*Document {
	return []*Document{
		{File: "a.txt", Digest: []DigestEntry{{Chunk: 1, Weight: 0.5}, {Chunk: 9, Weight: 1.25}}},
		{File: "b.txt", Digest: []DigestEntry{{Chunk: 2, Weight: 2.0}}},
		{File: "c.txt", Digest: nil},
	}
}

func equalDocuments(a, b []*Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].File != b[i].File || len(a[i].Digest) != len(b[i].Digest) {
			return false
		}
		for j := range a[i].Digest {
			if a[i].Digest[j] != b[i].Digest[j] {
				return false
			}
		}
	}
	return true
}

func TestWriteReadDatabaseTextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.json")
	docs := sampleDocuments()

	if err := WriteDatabase(path, docs, FormatText); err != nil {
		t.Fatalf("WriteDatabase: %s", err)
	}

	got, err := ReadDatabase(path, FormatText)
	if err != nil {
		t.Fatalf("ReadDatabase: %s", err)
	}
	if !equalDocuments(docs, got) {
		t.Errorf("round-tripped documents differ: got %+v", got)
	}
	for _, d := range got {
		if len(d.Chunks) != 0 {
			t.Errorf("expected empty chunks for %s, got %v", d.File, d.Chunks)
		}
	}
}

func TestWriteReadDatabaseBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.bin")
	docs := sampleDocuments()

	if err := WriteDatabase(path, docs, FormatBinary); err != nil {
		t.Fatalf("WriteDatabase: %s", err)
	}

	got, err := ReadDatabase(path, FormatBinary)
	if err != nil {
		t.Fatalf("ReadDatabase: %s", err)
	}
	if !equalDocuments(docs, got) {
		t.Errorf("round-tripped documents differ: got %+v", got)
	}
}

func TestDatabaseTextLinesAreOneJSONObjectEach(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.json")
	docs := sampleDocuments()

	if err := WriteDatabase(path, docs, FormatText); err != nil {
		t.Fatalf("WriteDatabase: %s", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading database file: %s", err)
	}

	lines := 0
	for _, b := range raw {
		if b == '\n' {
			lines++
		}
	}
	if lines != len(docs) {
		t.Errorf("expected %d lines, got %d", len(docs), lines)
	}
}

func TestReadDatabaseMismatchedFormatFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.bin")
	docs := sampleDocuments()

	if err := WriteDatabase(path, docs, FormatBinary); err != nil {
		t.Fatalf("WriteDatabase: %s", err)
	}

	if _, err := ReadDatabase(path, FormatText); err == nil {
		t.Fatalf("expected reading a binary database as text to fail")
	}
}

func TestDigestEntryJSONPreservesLargeChunkIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.json")
	docs := []*Document{
		{File: "yes.bin", Digest: []DigestEntry{
			{Chunk: 33279275454869446, Weight: -5.055178171138189},
			{Chunk: 801385653117583578, Weight: 0.25},
		}},
	}

	if err := WriteDatabase(path, docs, FormatText); err != nil {
		t.Fatalf("WriteDatabase: %s", err)
	}

	got, err := ReadDatabase(path, FormatText)
	if err != nil {
		t.Fatalf("ReadDatabase: %s", err)
	}
	if !equalDocuments(docs, got) {
		t.Errorf("large chunk ids did not round-trip exactly: got %+v", got[0].Digest)
	}
	for i, e := range got[0].Digest {
		if e.Chunk != docs[0].Digest[i].Chunk {
			t.Errorf("chunk %d: expected %d, got %d", i, docs[0].Digest[i].Chunk, e.Chunk)
		}
	}
}

func TestReadDatabaseTextGarbageFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.json")
	if err := os.WriteFile(path, []byte("not json\n"), 0o644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}

	if _, err := ReadDatabase(path, FormatText); err == nil {
		t.Fatalf("expected malformed JSON to fail")
	}
}
