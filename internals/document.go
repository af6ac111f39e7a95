package internals

import (
	"math"
	"sort"
)

// DigestEntry is one (chunk, weight) pair of a document's TF-IDF digest.
// A digest is a sequence of these, strictly ascending by Chunk (spec §3, §4.4).
type DigestEntry struct {
	Chunk  uint64
	Weight float64
}

// Document is a single indexed file: its path, its chunk sequence (only
// populated during indexing, before finalization — spec §3), and its
// finalized digest.
type Document struct {
	File   string
	Chunks []uint64
	Digest []DigestEntry
}

// ComputeDocumentDigest builds the TF-IDF digest of a chunk sequence against
// the receiver's current (or frozen) state (spec §4.4):
//
//  1. count per-chunk occurrences within chunks ("doc_freq")
//  2. for each chunk present in both doc_freq and the model, weight it as
//     log10(N/C) * log10(1+freq), where N is the number of distinct chunks
//     known to the model and C is the model's accumulated count for chunk
//  3. drop entries where the chunk is unknown to the model, C == 0,
//     freq == 0, or the weight is not finite
//  4. return survivors ordered by ascending chunk digest
func (dc *DocumentCollection) ComputeDocumentDigest(chunks []uint64) []DigestEntry {
	docFreq := frequenciesOf(chunks)

	sortedChunks := make([]uint64, 0, len(docFreq))
	for c := range docFreq {
		sortedChunks = append(sortedChunks, c)
	}
	sort.Slice(sortedChunks, func(i, j int) bool { return sortedChunks[i] < sortedChunks[j] })

	n := float64(dc.NumberOfChunks())
	digest := make([]DigestEntry, 0, len(sortedChunks))
	for _, chunk := range sortedChunks {
		freq := docFreq[chunk]
		if freq == 0 {
			continue
		}
		count, known := dc.ChunkCount(chunk)
		if !known || count == 0 {
			continue
		}
		weight := math.Log10(n/float64(count)) * math.Log10(1+float64(freq))
		if math.IsInf(weight, 0) || math.IsNaN(weight) {
			continue
		}
		digest = append(digest, DigestEntry{Chunk: chunk, Weight: weight})
	}
	return digest
}

// ComputeDigest hashes the file at path on the fly and builds its digest
// against the receiver's current state — used at query time, where the
// model has already been loaded and frozen (spec §4.3, §4.7).
func (dc *DocumentCollection) ComputeDigest(path string) ([]DigestEntry, error) {
	chunks, err := ChunkFile(path)
	if err != nil {
		return nil, err
	}
	return dc.ComputeDocumentDigest(chunks), nil
}
