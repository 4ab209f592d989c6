package sample

import (
	"math/rand"
	"sort"

	"github.com/rcliao/skillgraph/internal/model"
)

// buildSubgraph extracts the sampled jobs plus every skill and category
// node reachable from them, keeping only edges whose source is a
// sampled job. Category job counts are recomputed on the result so the
// count invariant holds after sampling.
func buildSubgraph(original *model.Graph, sampled map[string]struct{}) *model.Graph {
	sub := model.NewGraph()

	for jobID := range sampled {
		if n, ok := original.Nodes[jobID]; ok {
			sub.AddNode(n.Clone())
		}
	}

	connected := make(map[string]struct{})
	for _, e := range original.Edges {
		if _, ok := sampled[e.Source]; !ok {
			continue
		}
		sub.AddEdge(e)
		connected[e.Target] = struct{}{}
	}

	for id := range connected {
		if n, ok := original.Nodes[id]; ok {
			sub.AddNode(n.Clone())
		}
	}

	sub.RecomputeCategoryCounts()

	return sub
}

// sampleWithoutReplacement draws n ids uniformly from ids. The input
// slice must be in a deterministic order for reproducibility; it is not
// modified.
func sampleWithoutReplacement(rng *rand.Rand, ids []string, n int) []string {
	if n >= len(ids) {
		return append([]string(nil), ids...)
	}
	perm := rng.Perm(len(ids))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ids[perm[i]]
	}
	return out
}

// stratify groups job ids by resolved category id. Jobs with no
// IN_CATEGORY edge fall into the synthetic "uncategorized" stratum.
// The returned key list is sorted so stratum processing order is fixed
// across runs.
func stratify(jobIDs []string, jobCategory map[string]string) (map[string][]string, []string) {
	strata := make(map[string][]string)
	for _, jobID := range jobIDs {
		cat, ok := jobCategory[jobID]
		if !ok {
			cat = "uncategorized"
		}
		strata[cat] = append(strata[cat], jobID)
	}

	keys := make([]string, 0, len(strata))
	for k := range strata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return strata, keys
}
