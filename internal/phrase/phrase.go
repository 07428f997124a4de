// Package phrase implements exact phrase matching over a positional index:
// a candidate-set intersection followed by an adjacency check.
package phrase

import "github.com/example/pubsearch/internal/index"

// Match returns the set of doc IDs in ix whose combined field text contains
// terms as a contiguous, in-order sequence. It returns the empty (non-nil)
// set if terms is empty or any term is absent from the index.
func Match(ix *index.Index, terms []string) map[int]struct{} {
	result := make(map[int]struct{})
	if len(terms) == 0 {
		return result
	}

	firstPostings, ok := ix.Positional[terms[0]]
	if !ok {
		return result
	}

	candidates := make(map[int]struct{}, len(firstPostings))
	for docID := range firstPostings {
		candidates[docID] = struct{}{}
	}

	for i := 1; i < len(terms); i++ {
		if len(candidates) == 0 {
			break
		}
		postings, ok := ix.Positional[terms[i]]
		if !ok {
			return make(map[int]struct{})
		}

		next := make(map[int]struct{})
		for docID := range candidates {
			currentPositions, hasTerm := postings[docID]
			if !hasTerm {
				continue
			}
			prevPositions := ix.Positional[terms[i-1]][docID]
			if adjacent(prevPositions, currentPositions) {
				next[docID] = struct{}{}
			}
		}
		candidates = next
	}

	return candidates
}

// adjacent reports whether some position in prev is immediately followed
// by a position in current (prev position + 1 == a current position).
func adjacent(prev, current []int) bool {
	currentSet := make(map[int]struct{}, len(current))
	for _, p := range current {
		currentSet[p] = struct{}{}
	}
	for _, p := range prev {
		if _, ok := currentSet[p+1]; ok {
			return true
		}
	}
	return false
}
