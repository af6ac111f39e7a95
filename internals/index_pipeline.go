package internals

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// IndexOptions configures one call to IndexPaths.
type IndexOptions struct {
	Roots        []string
	StatePath    string
	DatabasePath string
	Format       OutputFormat
	Workers      int

	// OnPhase, if set, is called once per pipeline phase with its 1-based
	// index, the total phase count, and a short label — the "[n/5]"
	// progress lines of spec §4.6. Purely cosmetic; never affects results.
	OnPhase func(phase, total int, label string)
	// OnFileError, if set, is called for every walk error during phase 1
	// and for every input file that fails to open during phase 2 (spec
	// §4.6: "dropped with no fatal error").
	OnFileError func(path string, err error)
	// OnWalkStatistics, if set, is called once after phase 1 with a
	// summary of what enumeration found, before hashing begins.
	OnWalkStatistics func(WalkStatistics)
}

const indexPhaseCount = 5

func (o *IndexOptions) phase(n int, label string) {
	if o.OnPhase != nil {
		o.OnPhase(n, indexPhaseCount, label)
	}
}

// hashResult is what a phase-2 worker publishes for one successfully
// hashed file.
type hashResult struct {
	path   string
	chunks []uint64
	freq   map[uint64]uint64
}

// hashFilesParallel runs phase 2 of the index pipeline: a worker pool
// reads paths off a shared channel, each worker opens its own file
// descriptor, chunks it to completion, and publishes the result. Files
// that fail to open are dropped via onFileError rather than aborting the
// pool (spec §4.6 phase 2, §7); a read error after opening only ends that
// file's chunk sequence early (see ChunkFile).
func hashFilesParallel(paths []string, workers int, onFileError func(string, error)) []hashResult {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan hashResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				chunks, err := ChunkFile(path)
				if err != nil {
					if onFileError != nil {
						onFileError(path, err)
					}
					continue
				}
				results <- hashResult{path: path, chunks: chunks, freq: frequenciesOf(chunks)}
			}
		}()
	}

	go func() {
		for _, p := range paths {
			jobs <- p
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]hashResult, 0, len(paths))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// finalizeDigests runs phase 5: against a frozen snapshot of the corpus
// model, compute every document's final digest and drop its chunk
// sequence. Documents are independent, so an errgroup.Group (rather than
// the channel/WaitGroup idiom used for hashing) maps over them — there is
// no shared mutable state to serialize access to.
func finalizeDigests(snapshot *DocumentCollection, docs []*Document) error {
	var eg errgroup.Group
	for _, d := range docs {
		d := d
		eg.Go(func() error {
			d.Digest = snapshot.ComputeDocumentDigest(d.Chunks)
			d.Chunks = nil
			return nil
		})
	}
	return eg.Wait()
}

// IndexPaths runs the full five-phase index pipeline (spec §4.6):
// enumerate, hash in parallel, merge serially into the corpus model,
// persist the state file, then finalize digests in parallel against a
// frozen snapshot and persist the database file. It returns the final
// corpus model and documents for callers that want them (e.g. tests)
// without re-reading the files just written.
func IndexPaths(opts IndexOptions) (*DocumentCollection, []*Document, error) {
	opts.phase(1, "enumerate")
	paths, stats := EnumerateFiles(opts.Roots, opts.OnFileError)
	if opts.OnWalkStatistics != nil {
		opts.OnWalkStatistics(stats)
	}

	opts.phase(2, "hash in parallel")
	results := hashFilesParallel(paths, opts.Workers, opts.OnFileError)

	opts.phase(3, "merge")
	dc := NewDocumentCollection()
	docs := make([]*Document, 0, len(results))
	for _, r := range results {
		if dc.Contains(r.path) {
			continue
		}
		dc.MergeFrequencies(r.freq, []string{r.path})
		docs = append(docs, &Document{File: r.path, Chunks: r.chunks})
	}

	opts.phase(4, "persist state")
	if err := WriteState(opts.StatePath, dc, opts.Format); err != nil {
		return nil, nil, err
	}

	opts.phase(5, "finalize digests")
	snapshot := dc.Snapshot()
	if err := finalizeDigests(snapshot, docs); err != nil {
		return nil, nil, err
	}
	if err := WriteDatabase(opts.DatabasePath, docs, opts.Format); err != nil {
		return nil, nil, err
	}

	return dc, docs, nil
}
