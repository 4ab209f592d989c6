package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
	"github.com/rcliao/skillgraph/internal/parse"
)

func exportGraph() (*model.Graph, *normalize.Normalizer) {
	n := normalize.New()
	n.Register("Python", 0.9, "core")
	n.Register("python", 0.8, "core")

	g := model.NewGraph()
	g.AddNode(&model.Node{
		ID:    model.JobNodeID("j1"),
		Label: "Data Engineer <Senior>",
		Kind:  model.KindJob,
		Job: &model.JobAttrs{
			JobTitle:    "Data Engineer <Senior>",
			CompanyName: `Acme "Labs" & Co`,
			SkillCount:  1,
		},
	})
	g.AddNode(&model.Node{
		ID:    model.SkillNodeID("python"),
		Label: "Python",
		Kind:  model.KindSkill,
		Skill: &model.SkillAttrs{
			CanonicalKey:    "python",
			Aliases:         []string{"Python", "python"},
			OccurrenceCount: 2,
			MaxSimilarity:   0.9,
			AvgSimilarity:   0.85,
		},
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
		Thinking:          "clear match",
	})
	g.AddEdge(model.Edge{
		Source: model.JobNodeID("j1"),
		Target: model.CategoryNodeID("engineering"),
		Rel:    model.RelInCategory,
	})
	return g, n
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return recs
}

func TestExport_WritesAllFiles(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	files, err := New(cfg).Export(g, n, []parse.BadRow{
		{RowIndex: 7, JobTitle: "Broken", Error: "invalid skills JSON"},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, name := range []string{"nodes.csv", "edges.csv", "graph.graphml", "skill_dictionary.csv", "bad_rows.csv"} {
		path, ok := files[name]
		if !ok {
			t.Fatalf("missing output %s", name)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("output %s not on disk: %v", name, err)
		}
	}
}

func TestExport_CSVOnly(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Formats = []string{"csv"}

	files, err := New(cfg).Export(g, n, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, ok := files["graph.graphml"]; ok {
		t.Error("graphml written despite csv-only formats")
	}
	if _, ok := files["nodes.csv"]; !ok {
		t.Error("nodes.csv missing")
	}
}

func TestExport_NodesCSV(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	files, err := New(cfg).Export(g, n, nil)
	if err != nil {
		t.Fatal(err)
	}

	recs := readCSV(t, files["nodes.csv"])
	if len(recs) != 4 { // header + 3 nodes
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	header := recs[0]
	if header[0] != "id" || header[1] != "label" || header[2] != "kind" {
		t.Errorf("unexpected header: %v", header[:3])
	}

	// NodeIDs sorts: cat: < job: < skill:
	if recs[1][0] != model.CategoryNodeID("engineering") {
		t.Errorf("expected category first, got %q", recs[1][0])
	}
	if recs[2][0] != model.JobNodeID("j1") || recs[2][2] != model.KindJob {
		t.Errorf("unexpected job row: %v", recs[2][:3])
	}
}

func TestExport_EdgesCSVThinkingColumn(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	files, err := New(cfg).Export(g, n, nil)
	if err != nil {
		t.Fatal(err)
	}
	recs := readCSV(t, files["edges.csv"])
	if len(recs[0]) != 6 {
		t.Errorf("thinking column present despite drop_thinking: %v", recs[0])
	}

	cfg2 := config.Default()
	cfg2.OutputDir = t.TempDir()
	cfg2.DropThinking = false

	files, err = New(cfg2).Export(g, n, nil)
	if err != nil {
		t.Fatal(err)
	}
	recs = readCSV(t, files["edges.csv"])
	if recs[0][len(recs[0])-1] != "thinking" {
		t.Errorf("expected thinking column: %v", recs[0])
	}
	if recs[1][len(recs[1])-1] != "clear match" {
		t.Errorf("expected thinking value: %v", recs[1])
	}
}

func TestExport_SkillDictionary(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	files, err := New(cfg).Export(g, n, nil)
	if err != nil {
		t.Fatal(err)
	}

	recs := readCSV(t, files["skill_dictionary.csv"])
	if len(recs) != 2 {
		t.Fatalf("expected header + 1 skill, got %d records", len(recs))
	}
	row := recs[1]
	if row[0] != model.SkillNodeID("python") || row[1] != "python" {
		t.Errorf("unexpected dictionary row: %v", row)
	}
	if row[4] != "2" || row[5] != "2" { // alias_count, occurrence_count
		t.Errorf("unexpected counts: %v", row)
	}
}

func TestExport_BadRowsCSV(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	files, err := New(cfg).Export(g, n, []parse.BadRow{
		{RowIndex: 3, JobTitle: "Oops", CompanyName: "Beta", Error: "invalid skills JSON"},
	})
	if err != nil {
		t.Fatal(err)
	}

	recs := readCSV(t, files["bad_rows.csv"])
	if len(recs) != 2 {
		t.Fatalf("expected header + 1 bad row, got %d", len(recs))
	}
	if recs[1][0] != "3" || recs[1][1] != "Oops" {
		t.Errorf("unexpected bad row record: %v", recs[1])
	}
}

func TestExport_GraphMLEscaping(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	files, err := New(cfg).Export(g, n, nil)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(files["graph.graphml"])
	if err != nil {
		t.Fatal(err)
	}
	doc := string(raw)

	if !strings.Contains(doc, "Data Engineer &lt;Senior&gt;") {
		t.Error("angle brackets not escaped")
	}
	if !strings.Contains(doc, "Acme &quot;Labs&quot; &amp; Co") {
		t.Error("quotes and ampersand not escaped")
	}
	if strings.Contains(doc, "<Senior>") {
		t.Error("raw markup leaked into document")
	}
	if !strings.Contains(doc, `<graph id="G" edgedefault="directed">`) {
		t.Error("missing graph element")
	}
	if !strings.Contains(doc, `<key id="e_weight" for="edge" attr.name="weight" attr.type="double"/>`) {
		t.Error("missing typed edge key declaration")
	}
}

func TestEscapeXML_StripsControlChars(t *testing.T) {
	in := "ok\x01\x02\ttab\nnewline\x7f"
	got := escapeXML(in)
	if strings.ContainsAny(got, "\x01\x02\x7f") {
		t.Errorf("control characters survived: %q", got)
	}
	if !strings.Contains(got, "\t") || !strings.Contains(got, "\n") {
		t.Errorf("whitespace should survive: %q", got)
	}
}

func TestExport_OutputDirCreated(t *testing.T) {
	g, n := exportGraph()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "nested", "out")

	if _, err := New(cfg).Export(g, n, nil); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		t.Fatalf("output dir not created: %v", err)
	}
}
