package internals

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"
)

func buildSampleCollection() *DocumentCollection {
	dc := NewDocumentCollection()
	dc.MergeFrequencies(map[uint64]uint64{100: 3, 1: 7, 50: 2}, []string{"b.txt", "a.txt"})
	return dc
}

func TestWriteReadStateTextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	dc := buildSampleCollection()

	if err := WriteState(path, dc, FormatText); err != nil {
		t.Fatalf("WriteState: %s", err)
	}

	got, err := ReadState(path, FormatText)
	if err != nil {
		t.Fatalf("ReadState: %s", err)
	}
	if !dc.Equal(got) {
		t.Errorf("round-tripped collection differs from original")
	}
}

func TestWriteReadStateBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")
	dc := buildSampleCollection()

	if err := WriteState(path, dc, FormatBinary); err != nil {
		t.Fatalf("WriteState: %s", err)
	}

	got, err := ReadState(path, FormatBinary)
	if err != nil {
		t.Fatalf("ReadState: %s", err)
	}
	if !dc.Equal(got) {
		t.Errorf("round-tripped collection differs from original")
	}
}

func TestStateFileChunkCountsAreSortedOnDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	dc := buildSampleCollection()

	if err := WriteState(path, dc, FormatText); err != nil {
		t.Fatalf("WriteState: %s", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading state file: %s", err)
	}

	var schema stateSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("unmarshalling state file: %s", err)
	}
	for i := 1; i < len(schema.ChunkCounts); i++ {
		if schema.ChunkCounts[i-1].Chunk > schema.ChunkCounts[i].Chunk {
			t.Fatalf("chunk_counts not ascending on disk: %+v", schema.ChunkCounts)
		}
	}
	for i := 1; i < len(schema.Files); i++ {
		if schema.Files[i-1] > schema.Files[i] {
			t.Fatalf("files not ascending on disk: %+v", schema.Files)
		}
	}
}

func TestReadStateWrongFormatFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.bin")
	dc := buildSampleCollection()

	if err := WriteState(path, dc, FormatBinary); err != nil {
		t.Fatalf("WriteState: %s", err)
	}

	if _, err := ReadState(path, FormatText); err == nil {
		t.Fatalf("expected reading a binary file as text to fail")
	}
}
