package sample

import (
	"math/rand"
	"sort"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
)

// Per-entity export cost model, in bytes.
const (
	jobNodeBytes        = 500
	categoryEdgeBytes   = 100
	skillEdgeBytes      = 150
	skillNodeBytes      = 20 // amortized across jobs
	defaultSkillsPerJob = 8
	sizeSafetyMargin    = 0.8
	minEstimatedJobs    = 100
)

// PerformanceSampler bounds the subset by an estimated output byte
// budget. It makes no statistical claim; it exists to keep exports
// loadable by visualization tools. Jobs with no resolved category are
// excluded from this mode.
type PerformanceSampler struct{}

// Sample implements Sampler.
func (s *PerformanceSampler) Sample(g *model.Graph, cfg *config.Config) (*model.Graph, *Report, error) {
	rng := rand.New(rand.NewSource(cfg.SubsetSeed))

	jobCategory := g.JobCategories()
	categories := selectCategories(g, cfg)

	var eligible []string
	for _, jobID := range g.JobIDs() {
		if _, ok := categories[jobCategory[jobID]]; ok {
			eligible = append(eligible, jobID)
		}
	}

	maxJobs := estimateMaxJobs(cfg)

	sampled := sampleWithinBudget(rng, eligible, jobCategory, maxJobs)

	report := &Report{
		Mode: config.ModePerf,
		Constraints: &Constraints{
			MaxBytes:      cfg.SubsetMaxBytes,
			TopKSkills:    cfg.TopKSkills,
			MinSimilarity: cfg.MinSimilarity,
			DropThinking:  cfg.DropThinking,
			NumCategories: len(categories),
			Seed:          cfg.SubsetSeed,
		},
		Result: &Result{
			EligibleJobs:       len(eligible),
			JobsSampled:        len(sampled),
			CategoriesIncluded: len(categories),
		},
	}

	return buildSubgraph(g, sampled), report, nil
}

// selectCategories picks the category node ids to include. An explicit
// list overrides everything; otherwise a positive limit takes the top-N
// categories by job count; otherwise every category with at least one
// job is included.
func selectCategories(g *model.Graph, cfg *config.Config) map[string]struct{} {
	selected := make(map[string]struct{})

	if len(cfg.CategoryList) > 0 {
		for _, c := range cfg.CategoryList {
			selected[model.CategoryNodeID(c)] = struct{}{}
		}
		return selected
	}

	counts := make(map[string]int)
	for _, e := range g.Edges {
		if e.Rel == model.RelInCategory {
			counts[e.Target]++
		}
	}

	if cfg.SubsetCategories > 0 {
		type catCount struct {
			id    string
			count int
		}
		ranked := make([]catCount, 0, len(counts))
		for id, c := range counts {
			ranked = append(ranked, catCount{id, c})
		}
		// Ties broken by id so the top-N cut is deterministic
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].id < ranked[j].id
		})
		limit := cfg.SubsetCategories
		if limit > len(ranked) {
			limit = len(ranked)
		}
		for _, cc := range ranked[:limit] {
			selected[cc.id] = struct{}{}
		}
		return selected
	}

	for id := range counts {
		selected[id] = struct{}{}
	}
	return selected
}

// estimateMaxJobs derives the affordable job count from the fixed
// per-entity cost model and the byte budget.
func estimateMaxJobs(cfg *config.Config) int {
	avgSkills := defaultSkillsPerJob
	if cfg.TopKSkills > 0 {
		avgSkills = cfg.TopKSkills
	}

	bytesPerJob := jobNodeBytes + categoryEdgeBytes +
		avgSkills*(skillEdgeBytes+skillNodeBytes)

	maxJobs := int(float64(cfg.SubsetMaxBytes) / float64(bytesPerJob) * sizeSafetyMargin)
	if maxJobs < minEstimatedJobs {
		maxJobs = minEstimatedJobs
	}
	return maxJobs
}

// sampleWithinBudget keeps every eligible job when the budget allows,
// otherwise samples proportionally per category stratum. Strata are
// processed in sorted category order, stopping once the running total
// reaches the budget; the fixed order keeps results reproducible.
func sampleWithinBudget(rng *rand.Rand, eligible []string, jobCategory map[string]string, maxJobs int) map[string]struct{} {
	sampled := make(map[string]struct{})

	if len(eligible) <= maxJobs {
		for _, id := range eligible {
			sampled[id] = struct{}{}
		}
		return sampled
	}

	strata, order := stratify(eligible, jobCategory)
	N := len(eligible)

	for _, cat := range order {
		jobs := strata[cat]
		share := float64(len(jobs)) / float64(N)
		n := int(float64(maxJobs) * share)
		if n < 1 {
			n = 1
		}
		if n > len(jobs) {
			n = len(jobs)
		}

		for _, id := range sampleWithoutReplacement(rng, jobs, n) {
			sampled[id] = struct{}{}
		}

		if len(sampled) >= maxJobs {
			break
		}
	}

	return sampled
}
