package sample

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
)

// StatisticalSampler draws a stratified sample sized by Cochran's
// formula for proportion estimation:
//
//	n0 = Z^2 * p * (1-p) / e^2
//
// with optional finite population correction
//
//	n = n0 / (1 + (n0-1)/N)
//
// Jobs are stratified by category with proportional allocation and a
// minimum-per-category floor.
type StatisticalSampler struct{}

// Sample implements Sampler.
func (s *StatisticalSampler) Sample(g *model.Graph, cfg *config.Config) (*model.Graph, *Report, error) {
	rng := rand.New(rand.NewSource(cfg.SubsetSeed))

	jobIDs := g.JobIDs()
	N := len(jobIDs)

	target, formula := sampleSize(N, cfg)

	strata, order := stratify(jobIDs, g.JobCategories())

	allocation, warnings := allocate(strata, order, target, cfg.MinPerCategory)

	sampled := make(map[string]struct{})
	for _, cat := range order {
		jobs := strata[cat]
		n := allocation[cat]
		if n > len(jobs) {
			n = len(jobs)
		}
		for _, id := range sampleWithoutReplacement(rng, jobs, n) {
			sampled[id] = struct{}{}
		}
	}

	p := cfg.PEstimate
	if cfg.PWorstcase {
		p = 0.5
	}

	report := &Report{
		Mode:     config.ModeStats,
		Warnings: warnings,
		Population: &Population{
			TotalJobs:       N,
			TotalCategories: len(strata),
		},
		Parameters: &Parameters{
			ConfidenceLevel:  cfg.ConfLevel,
			MarginOfError:    cfg.MarginError,
			PEstimate:        p,
			PWorstcase:       cfg.PWorstcase,
			FiniteCorrection: cfg.FiniteCorrection,
			MinPerCategory:   cfg.MinPerCategory,
			Seed:             cfg.SubsetSeed,
		},
		Formula: formula,
		Sample: &SampleCounts{
			TargetN: target,
			ActualN: len(sampled),
		},
	}
	for _, cat := range order {
		count := 0
		for _, id := range strata[cat] {
			if _, ok := sampled[id]; ok {
				count++
			}
		}
		report.Strata = append(report.Strata, StratumReport{
			CategoryID: cat,
			Population: len(strata[cat]),
			Allocated:  allocation[cat],
			Sampled:    count,
		})
	}

	return buildSubgraph(g, sampled), report, nil
}

// sampleSize computes the Cochran target for a population of N jobs.
func sampleSize(N int, cfg *config.Config) (int, *Formula) {
	Z := zScore(cfg.ConfLevel)
	e := cfg.MarginError

	p := cfg.PEstimate
	if cfg.PWorstcase {
		p = 0.5
	}

	n0 := Z * Z * p * (1 - p) / (e * e)

	n := n0
	if cfg.FiniteCorrection && N > 0 {
		n = n0 / (1 + (n0-1)/float64(N))
	}

	target := int(math.Ceil(n))

	return target, &Formula{
		Method:           "cochran_proportion",
		Z:                math.Round(Z*10000) / 10000,
		P:                p,
		E:                e,
		N0:               math.Round(n0*100) / 100,
		N:                N,
		FiniteCorrection: cfg.FiniteCorrection,
		NFinal:           target,
	}
}

// allocate assigns per-stratum sample sizes: proportional allocation
// ceil(target * N_h / N), then a minimum-per-category floor. A stratum
// smaller than the floor is taken whole and recorded as a warning. The
// allocation total is allowed to overshoot the formula target; it is
// never rebalanced down, only flagged when it exceeds 1.5x the target.
func allocate(strata map[string][]string, order []string, target, minPer int) (map[string]int, []string) {
	N := 0
	for _, jobs := range strata {
		N += len(jobs)
	}

	allocation := make(map[string]int, len(strata))
	var warnings []string

	for _, cat := range order {
		Nh := len(strata[cat])
		nh := 0
		if N > 0 {
			nh = int(math.Ceil(float64(target) * float64(Nh) / float64(N)))
		}

		if Nh < minPer {
			allocation[cat] = Nh
			warnings = append(warnings, fmt.Sprintf(
				"category %q has only %d jobs (below min_per_category=%d)", cat, Nh, minPer))
			continue
		}
		if nh < minPer {
			nh = minPer
		}
		allocation[cat] = nh
	}

	total := 0
	for _, n := range allocation {
		total += n
	}
	if float64(total) > float64(target)*1.5 {
		warnings = append(warnings, fmt.Sprintf(
			"allocation (%d) exceeds target (%d) due to minimum constraints", total, target))
	}

	return allocation, warnings
}
