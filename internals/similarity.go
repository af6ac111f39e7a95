package internals

import (
	"math"
	"sort"
)

// CosineSimilarity computes the cosine similarity of two sparse digests,
// both required to be ordered ascending by Chunk (spec §4.5). Missing
// entries are treated as zero. If either vector is empty, 0 is returned —
// matching the reference implementation's convention even for the
// empty-vs-empty case (spec §9 open question: preserved, not "fixed" to 1).
func CosineSimilarity(u, v []DigestEntry) float64 {
	if len(u) == 0 || len(v) == 0 {
		return 0
	}

	var sumUU, sumVV, sumUV float64
	i, j := 0, 0
	for i < len(u) && j < len(v) {
		switch {
		case u[i].Chunk == v[j].Chunk:
			sumUV += u[i].Weight * v[j].Weight
			sumUU += u[i].Weight * u[i].Weight
			sumVV += v[j].Weight * v[j].Weight
			i++
			j++
		case u[i].Chunk < v[j].Chunk:
			sumUU += u[i].Weight * u[i].Weight
			i++
		default:
			sumVV += v[j].Weight * v[j].Weight
			j++
		}
	}
	for ; i < len(u); i++ {
		sumUU += u[i].Weight * u[i].Weight
	}
	for ; j < len(v); j++ {
		sumVV += v[j].Weight * v[j].Weight
	}

	normU := math.Sqrt(sumUU)
	normV := math.Sqrt(sumVV)
	if normU == 0 || normV == 0 {
		return 0
	}
	return sumUV / (normU * normV)
}

// CosineDistance is 1 - CosineSimilarity(u, v); smaller means more similar.
func CosineDistance(u, v []DigestEntry) float64 {
	return 1 - CosineSimilarity(u, v)
}

// RankResult is a single entry of a ranked-search result: the file whose
// digest scored Distance against the query digest.
type RankResult struct {
	Distance float64
	Document *Document
}

// RankedSearch scores query against every document's digest by cosine
// distance and returns the k closest, in ascending-distance order (spec
// §4.5). Ties are broken by ascending file path for determinism.
func RankedSearch(query []DigestEntry, documents []*Document, k int) []RankResult {
	heap := NewTopKHeap(k)
	for _, doc := range documents {
		distance := CosineDistance(doc.Digest, query)
		heap.Insert(distance, doc)
	}

	items := heap.IntoSortedAscending()
	results := make([]RankResult, len(items))
	for i, item := range items {
		results[i] = RankResult{Distance: item.score, Document: item.payload.(*Document)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Document.File < results[j].Document.File
	})
	return results
}
