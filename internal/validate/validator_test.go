package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/graph"
	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
	"github.com/rcliao/skillgraph/internal/sample"
)

// qualityGraph builds a graph where jobsWithSkills of the total jobs
// carry skillsPer skill edges each.
func qualityGraph(totalJobs, jobsWithSkills, skillsPer int) *model.Graph {
	g := model.NewGraph()

	for s := 0; s < skillsPer; s++ {
		key := fmt.Sprintf("skill-%d", s)
		g.AddNode(&model.Node{
			ID:    model.SkillNodeID(key),
			Label: fmt.Sprintf("Skill %d", s),
			Kind:  model.KindSkill,
			Skill: &model.SkillAttrs{CanonicalKey: key},
		})
	}

	for j := 0; j < totalJobs; j++ {
		jobID := model.JobNodeID(fmt.Sprintf("j%04d", j))
		g.AddNode(&model.Node{
			ID:    jobID,
			Label: "Job",
			Kind:  model.KindJob,
			Job:   &model.JobAttrs{JobTitle: "Job", CompanyName: "Acme"},
		})
		if j < jobsWithSkills {
			for s := 0; s < skillsPer; s++ {
				g.AddEdge(model.Edge{
					Source: jobID,
					Target: model.SkillNodeID(fmt.Sprintf("skill-%d", s)),
					Rel:    model.RelRequiresSkill,
					Weight: 0.9,
				})
			}
		}
	}

	return g
}

func wellDedupedNormalizer() *normalize.Normalizer {
	n := normalize.New()
	n.Register("Python", 0.9, "")
	n.Register("python", 0.9, "")
	n.Register("PYTHON.", 0.9, "")
	return n
}

func validateGraph(t *testing.T, g *model.Graph, n *normalize.Normalizer) *Report {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	return New(cfg).Validate(g, graph.GraphStats(g), n, nil, nil, nil)
}

func TestValidate_CleanGraph(t *testing.T) {
	g := qualityGraph(20, 20, 5)

	r := validateGraph(t, g, wellDedupedNormalizer())

	if len(r.Errors) != 0 {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
	if r.Meta.Version != Version {
		t.Errorf("version: got %q", r.Meta.Version)
	}
	if r.Quality.JobsWithSkillsPct != 100 {
		t.Errorf("jobs with skills: got %v", r.Quality.JobsWithSkillsPct)
	}
}

func TestValidate_LowSkillCoverageWarns(t *testing.T) {
	// 90% coverage: below the 95% warning line, above the 80% error line
	g := qualityGraph(20, 18, 5)

	r := validateGraph(t, g, wellDedupedNormalizer())

	if len(r.Errors) != 0 {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "have skill edges") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected coverage warning, got %v", r.Warnings)
	}
}

func TestValidate_CriticalSkillCoverageErrors(t *testing.T) {
	g := qualityGraph(20, 10, 5)

	r := validateGraph(t, g, wellDedupedNormalizer())

	if len(r.Errors) == 0 {
		t.Fatal("expected critical error for 50% coverage")
	}
	if !strings.Contains(r.Errors[0], "critical") {
		t.Errorf("unexpected error text: %v", r.Errors)
	}
}

func TestValidate_LowAvgSkillsWarns(t *testing.T) {
	g := qualityGraph(20, 20, 2)

	r := validateGraph(t, g, wellDedupedNormalizer())

	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "average skills per job") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected avg-skills warning, got %v", r.Warnings)
	}
}

func TestValidate_LowDedupRatioWarns(t *testing.T) {
	g := qualityGraph(20, 20, 5)

	// Every registration unique: dedup ratio 0
	n := normalize.New()
	n.Register("Go", 0.9, "")
	n.Register("Rust", 0.9, "")

	r := validateGraph(t, g, n)

	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "deduplication ratio") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected dedup warning, got %v", r.Warnings)
	}
}

func TestValidate_SamplingWarningsPropagate(t *testing.T) {
	g := qualityGraph(20, 20, 5)

	sampling := &sample.Report{
		Mode:     config.ModeStats,
		Warnings: []string{`category "tiny" has only 3 jobs (below min_per_category=30)`},
	}

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	r := New(cfg).Validate(g, graph.GraphStats(g), wellDedupedNormalizer(), nil, nil, sampling)

	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "below min_per_category") {
			found = true
		}
	}
	if !found {
		t.Errorf("sampling warnings not propagated: %v", r.Warnings)
	}
	if r.Sampling == nil {
		t.Error("sampling section missing from report")
	}
}

func TestTopSkills(t *testing.T) {
	g := qualityGraph(10, 10, 3)

	top := topSkills(g, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	// Equal counts: ties broken by node id
	if top[0].Skill != "Skill 0" || top[0].JobCount != 10 {
		t.Errorf("unexpected top skill: %+v", top[0])
	}
}

func TestMetadataCoverage(t *testing.T) {
	g := model.NewGraph()
	g.AddNode(&model.Node{
		ID:   model.JobNodeID("j1"),
		Kind: model.KindJob,
		Job:  &model.JobAttrs{JobTitle: "Engineer", District: "Pune"},
	})
	g.AddNode(&model.Node{
		ID:   model.JobNodeID("j2"),
		Kind: model.KindJob,
		Job:  &model.JobAttrs{JobTitle: "Analyst"},
	})

	cov := metadataCoverage(g)
	if cov["job_title"] != 100 {
		t.Errorf("job_title coverage: got %v", cov["job_title"])
	}
	if cov["district"] != 50 {
		t.Errorf("district coverage: got %v", cov["district"])
	}
	if cov["company_name"] != 0 {
		t.Errorf("company_name coverage: got %v", cov["company_name"])
	}
}

func TestWriteReport(t *testing.T) {
	g := qualityGraph(5, 5, 5)
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	v := New(cfg)
	r := v.Validate(g, graph.GraphStats(g), wellDedupedNormalizer(), nil, nil, nil)

	path, err := v.WriteReport(r)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if filepath.Base(path) != "report.json" {
		t.Errorf("unexpected report path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Meta.Version != Version {
		t.Errorf("round-tripped version: %q", decoded.Meta.Version)
	}
	// Empty slices serialize as [], not null
	if decoded.Warnings == nil || decoded.Errors == nil {
		t.Error("warnings/errors should be empty arrays")
	}
}
