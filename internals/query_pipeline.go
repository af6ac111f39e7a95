package internals

import (
	"sort"

	"golang.org/x/sync/errgroup"
)

// LoadCorpus loads the state file and database file written by IndexPaths
// and verifies their consistency (spec §4.7 steps 1-3): the set of paths
// recorded in the state file must equal the set of File fields across the
// database's documents. A mismatch is reported as an
// InconsistentInputsError rather than silently ignored.
func LoadCorpus(statePath, databasePath string, format OutputFormat) (*DocumentCollection, []*Document, error) {
	dc, err := ReadState(statePath, format)
	if err != nil {
		return nil, nil, err
	}

	docs, err := ReadDatabase(databasePath, format)
	if err != nil {
		return nil, nil, err
	}

	if !consistent(dc, docs) {
		return nil, nil, &InconsistentInputsError{StatePath: statePath, DatabasePath: databasePath}
	}

	return dc, docs, nil
}

func consistent(dc *DocumentCollection, docs []*Document) bool {
	if dc.NumberOfFiles() != len(docs) {
		return false
	}
	for _, d := range docs {
		if !dc.Contains(d.File) {
			return false
		}
	}
	return true
}

// QueryResult is the ranked-search outcome for one query file.
type QueryResult struct {
	File    string
	Matches []RankResult
}

// QueryFile hashes one file against the loaded model and ranks it against
// every document in the database (spec §4.7 step 4).
func QueryFile(dc *DocumentCollection, documents []*Document, path string, k int) (QueryResult, error) {
	digest, err := dc.ComputeDigest(path)
	if err != nil {
		return QueryResult{}, err
	}

	matches := RankedSearch(digest, documents, k)
	return QueryResult{File: path, Matches: matches}, nil
}

// QueryFiles runs QueryFile concurrently over every requested path (spec
// §4.7 step 4-5). Each query is independent and only reads dc/documents,
// so fanning out with an errgroup.Group is safe without additional
// synchronization. A failure on one query file (e.g. unreadable, spec §7
// "Fatal to that query, continue to next") does not abort the others;
// its error is returned alongside whatever results did succeed, indexed
// by its position in paths.
func QueryFiles(dc *DocumentCollection, documents []*Document, paths []string, k int) ([]QueryResult, []error) {
	results := make([]QueryResult, len(paths))
	errs := make([]error, len(paths))

	var eg errgroup.Group
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			r, err := QueryFile(dc, documents, path, k)
			results[i] = r
			errs[i] = err
			return nil
		})
	}
	_ = eg.Wait()

	return results, errs
}

// SortedMatches returns matches ordered by ascending distance, then
// ascending file path as a stable tiebreaker (spec §4.5, §4.7 step 5).
func SortedMatches(matches []RankResult) []RankResult {
	out := make([]RankResult, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Document.File < out[j].Document.File
	})
	return out
}
