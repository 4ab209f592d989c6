// Package sample reduces an assembled graph to a representative
// (stats) or size-bounded (perf) subset of its jobs.
package sample

import (
	"fmt"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
)

// Sampler reduces a graph to a subgraph and reports how it did so.
// Implementations must derive all randomness from cfg.SubsetSeed so a
// run is reproducible.
type Sampler interface {
	Sample(g *model.Graph, cfg *config.Config) (*model.Graph, *Report, error)
}

// New returns the sampler for the given mode.
func New(mode string) (Sampler, error) {
	switch mode {
	case config.ModeStats:
		return &StatisticalSampler{}, nil
	case config.ModePerf:
		return &PerformanceSampler{}, nil
	default:
		return nil, fmt.Errorf("unknown sampling mode: %q", mode)
	}
}

// Report is the machine-readable sampling report. Mode-specific
// sections are nil for the other mode.
type Report struct {
	Mode     string   `json:"sampling_mode"`
	Warnings []string `json:"warnings,omitempty"`

	// stats mode
	Population *Population     `json:"population,omitempty"`
	Parameters *Parameters     `json:"parameters,omitempty"`
	Formula    *Formula        `json:"formula,omitempty"`
	Sample     *SampleCounts   `json:"sample,omitempty"`
	Strata     []StratumReport `json:"stratification,omitempty"`

	// perf mode
	Constraints *Constraints `json:"constraints,omitempty"`
	Result      *Result      `json:"result,omitempty"`
}

// Population describes the full graph the sample was drawn from.
type Population struct {
	TotalJobs       int `json:"total_jobs"`
	TotalCategories int `json:"total_categories"`
}

// Parameters records the statistical-sampling inputs.
type Parameters struct {
	ConfidenceLevel  float64 `json:"confidence_level"`
	MarginOfError    float64 `json:"margin_of_error"`
	PEstimate        float64 `json:"p_estimate"`
	PWorstcase       bool    `json:"p_worstcase"`
	FiniteCorrection bool    `json:"finite_correction"`
	MinPerCategory   int     `json:"min_per_category"`
	Seed             int64   `json:"seed"`
}

// Formula records the Cochran computation step by step.
type Formula struct {
	Method           string  `json:"method"`
	Z                float64 `json:"Z"`
	P                float64 `json:"p"`
	E                float64 `json:"e"`
	N0               float64 `json:"n0"`
	N                int     `json:"N"`
	FiniteCorrection bool    `json:"finite_correction"`
	NFinal           int     `json:"n_final"`
}

// SampleCounts holds target and achieved sample sizes.
type SampleCounts struct {
	TargetN int `json:"target_n"`
	ActualN int `json:"actual_n"`
}

// StratumReport holds per-category allocation results.
type StratumReport struct {
	CategoryID string `json:"category_id"`
	Population int    `json:"population"`
	Allocated  int    `json:"allocated"`
	Sampled    int    `json:"sampled"`
}

// Constraints records the performance-sampling inputs.
type Constraints struct {
	MaxBytes      int64   `json:"max_bytes"`
	TopKSkills    int     `json:"top_k_skills_per_job"`
	MinSimilarity float64 `json:"min_similarity"`
	DropThinking  bool    `json:"drop_thinking"`
	NumCategories int     `json:"num_categories"`
	Seed          int64   `json:"seed"`
}

// Result records the performance-sampling outcome.
type Result struct {
	EligibleJobs       int `json:"eligible_jobs"`
	JobsSampled        int `json:"jobs_sampled"`
	CategoriesIncluded int `json:"categories_included"`
}
