// Package validate runs post-hoc quality checks over a built graph and
// assembles report.json. Quality problems never abort a run; they
// surface here as warnings or errors in the report.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/graph"
	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
	"github.com/rcliao/skillgraph/internal/parse"
	"github.com/rcliao/skillgraph/internal/sample"
)

// Version is stamped into report.json.
const Version = "2.0.0"

// Quality thresholds from the original pipeline contract.
const (
	minJobsWithSkillsWarnPct = 95.0
	minJobsWithSkillsErrPct  = 80.0
	minDedupRatio            = 0.5
	minAvgSkillsPerJob       = 3.0
	maxBadRowPct             = 5.0
)

// Meta identifies one run.
type Meta struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	InputFile string `json:"input_file"`
	OutputDir string `json:"output_dir"`
}

// InputStats summarizes the parsing phase.
type InputStats struct {
	RowsTotal  int      `json:"rows_total"`
	RowsParsed int      `json:"rows_parsed"`
	RowsFailed int      `json:"rows_failed"`
	Columns    []string `json:"columns,omitempty"`
}

// TopSkill is one entry of the top-skills ranking.
type TopSkill struct {
	Skill    string `json:"skill"`
	JobCount int    `json:"job_count"`
}

// Quality holds the derived quality metrics.
type Quality struct {
	JobsWithSkillsPct   float64            `json:"jobs_with_skills_pct"`
	JobsWithCategoryPct float64            `json:"jobs_with_category_pct"`
	AvgSkillsPerJob     float64            `json:"avg_skills_per_job"`
	BadRowsCount        int                `json:"bad_rows_count"`
	MetadataCoverage    map[string]float64 `json:"metadata_coverage"`
	TopSkills           []TopSkill         `json:"top_skills"`
}

// OutputFile describes one written output.
type OutputFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// Report is the complete report.json payload.
type Report struct {
	Meta          Meta                  `json:"meta"`
	Config        config.Summary        `json:"config"`
	Input         InputStats            `json:"input"`
	Normalization normalize.Stats       `json:"normalization"`
	Graph         graph.Stats           `json:"graph"`
	Quality       Quality               `json:"quality"`
	OutputFiles   map[string]OutputFile `json:"output_files"`
	Sampling      *sample.Report        `json:"sampling,omitempty"`
	Warnings      []string              `json:"warnings"`
	Errors        []string              `json:"errors"`
}

// Validator evaluates quality thresholds after the fact. The core
// pipeline never rejects a graph; escalation happens here.
type Validator struct {
	cfg *config.Config
}

// New returns a validator for the given config.
func New(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate assembles the full report and evaluates the thresholds.
func (v *Validator) Validate(g *model.Graph, gstats graph.Stats, n *normalize.Normalizer, p *parse.Parser, files map[string]string, sampling *sample.Report) *Report {
	r := &Report{
		Meta: Meta{
			Version:   Version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			InputFile: v.cfg.InputPath,
			OutputDir: v.cfg.OutputDir,
		},
		Config:        v.cfg.Summarize(),
		Normalization: n.Stats(),
		Graph:         gstats,
		Quality:       v.quality(g, gstats, p),
		OutputFiles:   outputStats(files),
		Sampling:      sampling,
		Warnings:      []string{},
		Errors:        []string{},
	}
	if p != nil {
		r.Input = InputStats{
			RowsTotal:  p.TotalRows,
			RowsParsed: p.ParsedRows,
			RowsFailed: len(p.BadRows),
			Columns:    p.Columns(),
		}
	}

	v.evaluate(r)
	return r
}

// WriteReport writes the report into the output directory.
func (v *Validator) WriteReport(r *Report) (string, error) {
	path := filepath.Join(v.cfg.OutputDir, "report.json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func (v *Validator) quality(g *model.Graph, gstats graph.Stats, p *parse.Parser) Quality {
	jobs := gstats.NodesByKind[model.KindJob]

	withCategoryPct := 0.0
	if jobs > 0 {
		withCategoryPct = float64(gstats.JobsWithCategory) / float64(jobs) * 100
	}

	q := Quality{
		JobsWithSkillsPct:   gstats.JobsWithSkillsPct,
		JobsWithCategoryPct: round2(withCategoryPct),
		AvgSkillsPerJob:     gstats.AvgSkillsPerJob,
		MetadataCoverage:    metadataCoverage(g),
		TopSkills:           topSkills(g, 10),
	}
	if p != nil {
		q.BadRowsCount = len(p.BadRows)
	}
	return q
}

// metadataFields are the job attributes whose coverage is reported.
var metadataFields = []string{
	"job_title", "company_name", "district", "nco_code",
	"salary_mean_inr_month", "schedule_type", "posted_at",
	"work_from_home", "assigned_occupation_group",
}

func metadataCoverage(g *model.Graph) map[string]float64 {
	jobs := 0
	filled := make(map[string]int, len(metadataFields))

	for _, n := range g.Nodes {
		if n.Kind != model.KindJob || n.Job == nil {
			continue
		}
		jobs++
		j := n.Job
		values := map[string]bool{
			"job_title":                 j.JobTitle != "",
			"company_name":              j.CompanyName != "",
			"district":                  j.District != "",
			"nco_code":                  j.NCOCode != "",
			"salary_mean_inr_month":     j.SalaryMean != 0,
			"schedule_type":             j.ScheduleType != "",
			"posted_at":                 j.PostedAt != "",
			"work_from_home":            j.WorkFromHome != "",
			"assigned_occupation_group": j.AssignedOccupationGroup != "",
		}
		for _, f := range metadataFields {
			if values[f] {
				filled[f]++
			}
		}
	}

	coverage := make(map[string]float64, len(metadataFields))
	if jobs == 0 {
		return coverage
	}
	for _, f := range metadataFields {
		coverage[f] = round1(float64(filled[f]) / float64(jobs) * 100)
	}
	return coverage
}

func topSkills(g *model.Graph, n int) []TopSkill {
	counts := make(map[string]int)
	for _, e := range g.Edges {
		if e.Rel == model.RelRequiresSkill {
			counts[e.Target]++
		}
	}

	type ranked struct {
		id    string
		count int
	}
	all := make([]ranked, 0, len(counts))
	for id, c := range counts {
		all = append(all, ranked{id, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].id < all[j].id
	})

	if n > len(all) {
		n = len(all)
	}
	top := make([]TopSkill, 0, n)
	for _, r := range all[:n] {
		label := r.id
		if node, ok := g.Nodes[r.id]; ok {
			label = node.Label
		}
		top = append(top, TopSkill{Skill: label, JobCount: r.count})
	}
	return top
}

// evaluate applies the quality thresholds, escalating to warnings or
// errors at the validator's discretion.
func (v *Validator) evaluate(r *Report) {
	q := r.Quality

	if q.JobsWithSkillsPct < minJobsWithSkillsWarnPct {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"only %.1f%% of jobs have skill edges (target: >%.0f%%)",
			q.JobsWithSkillsPct, minJobsWithSkillsWarnPct))
	}
	if q.JobsWithSkillsPct < minJobsWithSkillsErrPct {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"critical: only %.1f%% of jobs have skill edges", q.JobsWithSkillsPct))
	}

	if r.Normalization.DedupRatio < minDedupRatio {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"skill deduplication ratio is only %.1f%% (expected >%.0f%%)",
			r.Normalization.DedupRatio*100, minDedupRatio*100))
	}

	if q.AvgSkillsPerJob < minAvgSkillsPerJob {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"average skills per job is low: %.1f (expected 5-15)", q.AvgSkillsPerJob))
	}

	if r.Input.RowsTotal > 0 && r.Input.RowsFailed > 0 {
		failPct := float64(r.Input.RowsFailed) / float64(r.Input.RowsTotal) * 100
		if failPct > maxBadRowPct {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"%d rows failed to parse (%.1f%%), see bad_rows.csv",
				r.Input.RowsFailed, failPct))
		}
	}

	if r.Sampling != nil {
		r.Warnings = append(r.Warnings, r.Sampling.Warnings...)
	}
}

func outputStats(files map[string]string) map[string]OutputFile {
	stats := make(map[string]OutputFile, len(files))
	for name, path := range files {
		of := OutputFile{Path: path}
		if info, err := os.Stat(path); err == nil {
			of.SizeBytes = info.Size()
		}
		stats[name] = of
	}
	return stats
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
