// Package config holds the option set for a graph build run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sampling modes.
const (
	ModeStats = "stats"
	ModePerf  = "perf"
)

// Config is the full option set. Zero values are not meaningful
// defaults; start from Default() and overlay file and flag values.
type Config struct {
	// Input / output
	InputPath string   `yaml:"input"`
	OutputDir string   `yaml:"outdir"`
	Formats   []string `yaml:"formats"`

	// Output shaping
	DropThinking   bool `yaml:"drop_thinking"`
	IncludeAliases bool `yaml:"include_aliases"`

	// Edge filtering
	MinSimilarity float64  `yaml:"min_similarity"`
	TopKSkills    int      `yaml:"top_k_skills"`
	Buckets       []string `yaml:"buckets"`

	// Column mappings
	SkillsColumn           string `yaml:"skills_column"`
	CategoryColumn         string `yaml:"category_column"`
	FallbackCategoryColumn string `yaml:"fallback_category_column"`
	JobIDColumn            string `yaml:"job_id_column"`

	Verbose bool `yaml:"verbose"`

	// Sampling
	Subset     bool   `yaml:"subset"`
	SubsetMode string `yaml:"subset_mode"`

	// Statistical sampling (subset_mode = stats)
	ConfLevel        float64 `yaml:"conf_level"`
	MarginError      float64 `yaml:"margin_error"`
	PWorstcase       bool    `yaml:"p_worstcase"`
	PEstimate        float64 `yaml:"p_estimate"`
	FiniteCorrection bool    `yaml:"finite_correction"`
	MinPerCategory   int     `yaml:"min_per_category"`

	// Reserved: declared for a mean-based sample-size formula that has
	// no implementation. Setting MeanTargetColumn only produces a
	// warning; the proportion formula is always used.
	MeanTargetColumn string  `yaml:"mean_target_column"`
	MeanMarginError  float64 `yaml:"mean_margin_error"`
	PilotN           int     `yaml:"pilot_n"`

	// Performance sampling (subset_mode = perf)
	SubsetMaxBytes   int64    `yaml:"subset_max_bytes"`
	SubsetSeed       int64    `yaml:"subset_seed"`
	SubsetCategories int      `yaml:"subset_categories"`
	CategoryList     []string `yaml:"category_list"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		OutputDir:              "./output",
		Formats:                []string{"csv", "graphml"},
		DropThinking:           true,
		IncludeAliases:         true,
		MinSimilarity:          0,
		TopKSkills:             0,
		SkillsColumn:           "importance_standardised",
		CategoryColumn:         "Assigned_Occupation_Group",
		FallbackCategoryColumn: "Group",
		JobIDColumn:            "auto",
		SubsetMode:             ModePerf,
		ConfLevel:              0.95,
		MarginError:            0.03,
		PWorstcase:             true,
		PEstimate:              0.5,
		FiniteCorrection:       true,
		MinPerCategory:         30,
		MeanMarginError:        2000,
		SubsetMaxBytes:         100_000_000,
		SubsetSeed:             42,
		SubsetCategories:       0,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate returns a list of problems, empty when the config is usable.
func (c *Config) Validate() []string {
	var errs []string

	for _, f := range c.Formats {
		if f != "csv" && f != "graphml" {
			errs = append(errs, fmt.Sprintf("invalid format %q: use csv or graphml", f))
		}
	}

	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		errs = append(errs, fmt.Sprintf("min_similarity must be 0.0-1.0, got %v", c.MinSimilarity))
	}
	if c.TopKSkills < 0 {
		errs = append(errs, fmt.Sprintf("top_k_skills must be >= 0, got %d", c.TopKSkills))
	}

	if c.SubsetMode != ModeStats && c.SubsetMode != ModePerf {
		errs = append(errs, fmt.Sprintf("subset_mode must be stats or perf, got %q", c.SubsetMode))
	}
	if c.ConfLevel < 0.80 || c.ConfLevel > 0.999 {
		errs = append(errs, fmt.Sprintf("conf_level must be 0.80-0.999, got %v", c.ConfLevel))
	}
	if c.MarginError < 0.001 || c.MarginError > 0.5 {
		errs = append(errs, fmt.Sprintf("margin_error must be 0.001-0.5, got %v", c.MarginError))
	}
	if c.PEstimate < 0 || c.PEstimate > 1 {
		errs = append(errs, fmt.Sprintf("p_estimate must be 0.0-1.0, got %v", c.PEstimate))
	}
	if c.MinPerCategory < 0 {
		errs = append(errs, fmt.Sprintf("min_per_category must be >= 0, got %d", c.MinPerCategory))
	}
	if c.SubsetMaxBytes <= 0 {
		errs = append(errs, fmt.Sprintf("subset_max_bytes must be > 0, got %d", c.SubsetMaxBytes))
	}
	if c.SubsetCategories < 0 {
		errs = append(errs, fmt.Sprintf("subset_categories must be >= 0, got %d", c.SubsetCategories))
	}

	return errs
}

// Summary is the config subset recorded in report.json.
type Summary struct {
	InputPath      string   `json:"input_path"`
	OutputDir      string   `json:"output_dir"`
	Formats        []string `json:"formats"`
	DropThinking   bool     `json:"drop_thinking"`
	MinSimilarity  float64  `json:"min_similarity"`
	TopKSkills     int      `json:"top_k_skills"`
	Subset         bool     `json:"subset"`
	SubsetMode     string   `json:"subset_mode,omitempty"`
	ConfLevel      float64  `json:"conf_level,omitempty"`
	MarginError    float64  `json:"margin_error,omitempty"`
	SubsetMaxBytes int64    `json:"subset_max_bytes,omitempty"`
	SubsetSeed     int64    `json:"subset_seed,omitempty"`
}

// Summarize returns the report view of the config.
func (c *Config) Summarize() Summary {
	s := Summary{
		InputPath:     c.InputPath,
		OutputDir:     c.OutputDir,
		Formats:       c.Formats,
		DropThinking:  c.DropThinking,
		MinSimilarity: c.MinSimilarity,
		TopKSkills:    c.TopKSkills,
		Subset:        c.Subset,
	}
	if c.Subset {
		s.SubsetMode = c.SubsetMode
		s.SubsetSeed = c.SubsetSeed
		switch c.SubsetMode {
		case ModeStats:
			s.ConfLevel = c.ConfLevel
			s.MarginError = c.MarginError
		case ModePerf:
			s.SubsetMaxBytes = c.SubsetMaxBytes
		}
	}
	return s
}
