package internals

import "sort"

// DocumentCollection is the corpus model (spec §3, §4.3): the set of known
// file paths plus the accumulated per-chunk occurrence counts across every
// indexed file. Despite the name, chunkCounts stores total occurrences, not
// classical document frequency — see spec §9, a deliberately preserved
// quirk of the reference implementation.
//
// DocumentCollection is created empty, mutated only during the indexing
// merge phase (AddFile / MergeFrequencies), then frozen via Snapshot before
// digest computation begins. It is not safe for concurrent mutation; the
// index pipeline guarantees a single goroutine ever calls AddFile or
// MergeFrequencies on a given instance.
type DocumentCollection struct {
	files       map[string]struct{}
	chunkCounts map[uint64]uint64
}

// NewDocumentCollection returns an empty corpus model.
func NewDocumentCollection() *DocumentCollection {
	return &DocumentCollection{
		files:       make(map[string]struct{}),
		chunkCounts: make(map[uint64]uint64),
	}
}

// Contains reports whether path has already been indexed.
func (dc *DocumentCollection) Contains(path string) bool {
	_, ok := dc.files[path]
	return ok
}

// NumberOfFiles returns the number of indexed files.
func (dc *DocumentCollection) NumberOfFiles() int {
	return len(dc.files)
}

// NumberOfChunks returns N, the number of distinct chunk digests known to
// the model — used as the TF-IDF "collection size" term.
func (dc *DocumentCollection) NumberOfChunks() int {
	return len(dc.chunkCounts)
}

// Files returns the indexed paths in ascending lexicographic order
// (spec §3: "ordered set ... sorted lexicographically").
func (dc *DocumentCollection) Files() []string {
	out := make([]string, 0, len(dc.files))
	for f := range dc.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ChunkCount looks up the accumulated occurrence count for a chunk digest.
func (dc *DocumentCollection) ChunkCount(chunk uint64) (uint64, bool) {
	c, ok := dc.chunkCounts[chunk]
	return c, ok
}

// SortedChunkCounts returns every (chunk, count) pair ordered by ascending
// chunk digest — the ordering invariant required for deterministic
// serialization (spec §4.3, §6).
func (dc *DocumentCollection) SortedChunkCounts() []ChunkCount {
	out := make([]ChunkCount, 0, len(dc.chunkCounts))
	for chunk, count := range dc.chunkCounts {
		out = append(out, ChunkCount{Chunk: chunk, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Chunk < out[j].Chunk })
	return out
}

// ChunkCount is a single (chunk digest, accumulated count) entry.
type ChunkCount struct {
	Chunk uint64
	Count uint64
}

// AddFile reads path (unless already indexed), computes its full chunk
// sequence, folds the per-chunk occurrence counts into the model, inserts
// path into the known-files set, and returns the chunk sequence plus the
// per-file frequency map. If path is already known, it returns
// (nil, nil, false, nil) without touching any state (spec §4.3).
func (dc *DocumentCollection) AddFile(path string) ([]uint64, map[uint64]uint64, bool, error) {
	if dc.Contains(path) {
		return nil, nil, false, nil
	}

	chunks, err := ChunkFile(path)
	if err != nil {
		return nil, nil, false, err
	}

	freq := frequenciesOf(chunks)
	for chunk, count := range freq {
		dc.chunkCounts[chunk] += count
	}
	dc.files[path] = struct{}{}

	return chunks, freq, true, nil
}

// MergeFrequencies folds a per-file frequency map (computed off the
// critical section by a worker) into the shared model and records the
// associated file paths as indexed. This is the only mutation path used by
// the parallel index pipeline's merge phase (spec §4.6 phase 3).
func (dc *DocumentCollection) MergeFrequencies(freq map[uint64]uint64, paths []string) {
	for chunk, count := range freq {
		dc.chunkCounts[chunk] += count
	}
	for _, p := range paths {
		dc.files[p] = struct{}{}
	}
}

// Snapshot returns a deep copy of the model, frozen for read-only use while
// digest finalization proceeds in parallel (spec §4.3, §5).
func (dc *DocumentCollection) Snapshot() *DocumentCollection {
	cp := NewDocumentCollection()
	for f := range dc.files {
		cp.files[f] = struct{}{}
	}
	for c, n := range dc.chunkCounts {
		cp.chunkCounts[c] = n
	}
	return cp
}

// Equal reports whether two corpus models have identical files and chunk
// counts, independent of internal map iteration order.
func (dc *DocumentCollection) Equal(other *DocumentCollection) bool {
	if other == nil || len(dc.files) != len(other.files) || len(dc.chunkCounts) != len(other.chunkCounts) {
		return false
	}
	for f := range dc.files {
		if _, ok := other.files[f]; !ok {
			return false
		}
	}
	for c, n := range dc.chunkCounts {
		if on, ok := other.chunkCounts[c]; !ok || on != n {
			return false
		}
	}
	return true
}

// NewDocumentCollectionFrom rebuilds a corpus model from its serialized
// parts (spec §6 state-file logical schema), used by state-file loading.
func NewDocumentCollectionFrom(files []string, counts []ChunkCount) *DocumentCollection {
	dc := NewDocumentCollection()
	for _, f := range files {
		dc.files[f] = struct{}{}
	}
	for _, c := range counts {
		dc.chunkCounts[c.Chunk] = c.Count
	}
	return dc
}

// frequenciesOf builds the per-chunk occurrence count map for one chunk
// sequence (spec §4.3 "per_file_frequencies").
func frequenciesOf(chunks []uint64) map[uint64]uint64 {
	freq := make(map[uint64]uint64, len(chunks))
	for _, c := range chunks {
		freq[c]++
	}
	return freq
}
