package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storeGraph() *model.Graph {
	g := model.NewGraph()
	g.AddNode(&model.Node{
		ID:    model.JobNodeID("j1"),
		Label: "Engineer",
		Kind:  model.KindJob,
		Job:   &model.JobAttrs{JobTitle: "Engineer", CompanyName: "Acme", SkillCount: 1},
	})
	g.AddNode(&model.Node{
		ID:    model.SkillNodeID("python"),
		Label: "Python",
		Kind:  model.KindSkill,
		Skill: &model.SkillAttrs{CanonicalKey: "python", OccurrenceCount: 3, MaxSimilarity: 0.9},
	})
	g.AddNode(&model.Node{
		ID:       model.CategoryNodeID("engineering"),
		Label:    "Engineering",
		Kind:     model.KindCategory,
		Category: &model.CategoryAttrs{JobCount: 1},
	})
	g.AddEdge(model.Edge{
		Source:            model.JobNodeID("j1"),
		Target:            model.SkillNodeID("python"),
		Rel:               model.RelRequiresSkill,
		Bucket:            "core",
		MappingSimilarity: 0.9,
		Weight:            0.9,
	})
	g.AddEdge(model.Edge{
		Source: model.JobNodeID("j1"),
		Target: model.CategoryNodeID("engineering"),
		Rel:    model.RelInCategory,
	})
	return g
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.InputPath = "jobs.csv"
	g := storeGraph()

	id, err := s.SaveRun(ctx, cfg, g)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if len(id) != 26 {
		t.Errorf("expected ULID run id, got %q", id)
	}

	loaded, err := s.LoadGraph(ctx, id)
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	if len(loaded.Nodes) != len(g.Nodes) {
		t.Fatalf("node count: %d != %d", len(loaded.Nodes), len(g.Nodes))
	}
	if len(loaded.Edges) != len(g.Edges) {
		t.Fatalf("edge count: %d != %d", len(loaded.Edges), len(g.Edges))
	}

	job := loaded.Nodes[model.JobNodeID("j1")]
	if job == nil || job.Job == nil {
		t.Fatal("job node lost its attributes")
	}
	if job.Job.CompanyName != "Acme" || job.Job.SkillCount != 1 {
		t.Errorf("job attrs mangled: %+v", job.Job)
	}

	skill := loaded.Nodes[model.SkillNodeID("python")]
	if skill == nil || skill.Skill == nil || skill.Skill.MaxSimilarity != 0.9 {
		t.Errorf("skill attrs mangled: %+v", skill)
	}

	// Edge order survives via seq
	if loaded.Edges[0].Rel != model.RelRequiresSkill || loaded.Edges[0].Bucket != "core" {
		t.Errorf("first edge mangled: %+v", loaded.Edges[0])
	}
	if loaded.Edges[1].Rel != model.RelInCategory {
		t.Errorf("second edge mangled: %+v", loaded.Edges[1])
	}
}

func TestLoadGraph_UnknownRun(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LoadGraph(context.Background(), "01J00000000000000000000000"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestLatestRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.LatestRunID(ctx); err == nil {
		t.Fatal("expected error with no runs stored")
	}

	g := storeGraph()
	first, err := s.SaveRun(ctx, config.Default(), g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.SaveRun(ctx, config.Default(), g)
	if err != nil {
		t.Fatal(err)
	}

	latest, err := s.LatestRunID(ctx)
	if err != nil {
		t.Fatalf("LatestRunID: %v", err)
	}
	if latest != second {
		t.Errorf("expected latest %q, got %q (first was %q)", second, latest, first)
	}
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}

	cfg := config.Default()
	cfg.InputPath = "jobs.csv"
	g := storeGraph()

	id1, _ := s.SaveRun(ctx, cfg, g)
	id2, _ := s.SaveRun(ctx, cfg, g)

	runs, err = s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first
	if runs[0].ID != id2 || runs[1].ID != id1 {
		t.Errorf("unexpected order: %q, %q", runs[0].ID, runs[1].ID)
	}
	if runs[0].InputPath != "jobs.csv" {
		t.Errorf("input path lost: %+v", runs[0])
	}
	if runs[0].NodeCount != 3 || runs[0].EdgeCount != 2 {
		t.Errorf("counts wrong: %+v", runs[0])
	}
}
