package internals

import (
	"bytes"
	"strings"
	"testing"
)

func TestChunkSequenceZeroBytes(t *testing.T) {
	r := bytes.NewReader(make([]byte, 512))
	chunks := ChunkSequence(r)

	if len(chunks) != 506 {
		t.Fatalf("expected 506 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c != 0 {
			t.Errorf("chunk %d: expected digest 0, got %d", i, c)
		}
	}
}

func TestChunkSequenceEmptyFile(t *testing.T) {
	r := bytes.NewReader(nil)
	chunks := ChunkSequence(r)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != 0 {
		t.Errorf("expected digest 0, got %d", chunks[0])
	}
}

func TestChunkSequenceShortFile(t *testing.T) {
	r := bytes.NewReader([]byte{1, 2, 3})
	chunks := ChunkSequence(r)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := digestOf([chunkWindow]byte{1, 2, 3, 0, 0, 0, 0})
	if chunks[0] != want {
		t.Errorf("expected digest %d, got %d", want, chunks[0])
	}
}

func TestChunkSequenceAlternatingBytes(t *testing.T) {
	content := strings.Repeat("y\n", 256)
	r := strings.NewReader(content)
	chunks := ChunkSequence(r)

	if len(chunks) != 506 {
		t.Fatalf("expected 506 chunks, got %d", len(chunks))
	}

	const evenDigest = uint64(33279275454869446)
	const oddDigest = uint64(2879926931474365)
	for i, c := range chunks {
		var want uint64
		if i%2 == 0 {
			want = evenDigest
		} else {
			want = oddDigest
		}
		if c != want {
			t.Fatalf("chunk %d: expected digest %d, got %d", i, want, c)
		}
	}
}

func TestChunkDeterminism(t *testing.T) {
	content := []byte("the quick brown fox jumps over the lazy dog, twice over")
	first := ChunkSequence(bytes.NewReader(content))
	second := ChunkSequence(bytes.NewReader(content))

	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestRollingMatchesDirectFormula(t *testing.T) {
	content := []byte("a rolling hash must agree with the direct polynomial formula bit-for-bit")
	if len(content) < chunkWindow {
		t.Fatalf("fixture too short")
	}

	got := ChunkSequence(bytes.NewReader(content))
	expectedCount := len(content) - chunkWindow + 1
	if len(got) != expectedCount {
		t.Fatalf("expected %d chunks, got %d", expectedCount, len(got))
	}

	for i := 0; i < expectedCount; i++ {
		var window [chunkWindow]byte
		copy(window[:], content[i:i+chunkWindow])
		want := digestOf(window)
		if got[i] != want {
			t.Errorf("position %d: rolling digest %d disagrees with direct formula %d", i, got[i], want)
		}
	}
}
