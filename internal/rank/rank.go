// Package rank orders aggregated search results by textual similarity to the
// query, closest match first.
package rank

import (
	"sort"

	"github.com/hyperifyio/cinefind/internal/normalize"
	"github.com/hyperifyio/cinefind/internal/site"
)

// Distance returns the Levenshtein edit distance between a and b: the minimum
// number of single-rune insertions, deletions, and substitutions turning one
// into the other. Symmetric, and Distance(x, x) == 0.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	// Let the shorter operand drive the row width. The result is unaffected
	// since the metric is symmetric.
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return len(rb)
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

// Scored pairs a result with its computed distance to the query.
type Scored struct {
	site.Result
	Score int
}

// Score normalizes the query and every title and computes the per-result
// distances, preserving input order.
func Score(query string, results []site.Result) []Scored {
	q := normalize.String(query)
	scored := make([]Scored, len(results))
	for i, r := range results {
		scored[i] = Scored{Result: r, Score: Distance(q, normalize.String(r.Title))}
	}
	return scored
}

// Results returns a permutation of results sorted ascending by edit distance
// between the normalized query and each normalized title. The sort is stable,
// so equal scores keep their input order — which is the deterministic
// site-config aggregation order. The input slice is not mutated.
func Results(query string, results []site.Result) []site.Result {
	scored := Score(query, results)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})
	out := make([]site.Result, len(scored))
	for i, s := range scored {
		out[i] = s.Result
	}
	return out
}
