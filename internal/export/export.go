// Package export writes graph, dictionary, and diagnostic outputs in
// the formats downstream tools expect.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
	"github.com/rcliao/skillgraph/internal/parse"
)

// Exporter writes the configured output files.
type Exporter struct {
	cfg *config.Config
}

// New returns an exporter for the given config.
func New(cfg *config.Config) *Exporter {
	return &Exporter{cfg: cfg}
}

// Export writes all requested outputs into the output directory and
// returns a map from output name to file path.
func (e *Exporter) Export(g *model.Graph, n *normalize.Normalizer, badRows []parse.BadRow) (map[string]string, error) {
	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := make(map[string]string)

	for _, format := range e.cfg.Formats {
		switch format {
		case "csv":
			path, err := e.writeNodesCSV(g)
			if err != nil {
				return files, err
			}
			files["nodes.csv"] = path

			path, err = e.writeEdgesCSV(g)
			if err != nil {
				return files, err
			}
			files["edges.csv"] = path
		case "graphml":
			path, err := e.writeGraphML(g)
			if err != nil {
				return files, err
			}
			files["graph.graphml"] = path
		}
	}

	path, err := e.writeSkillDictionary(n)
	if err != nil {
		return files, err
	}
	files["skill_dictionary.csv"] = path

	path, err = e.writeBadRows(badRows)
	if err != nil {
		return files, err
	}
	files["bad_rows.csv"] = path

	return files, nil
}

var nodeColumns = []string{
	"id", "label", "kind",
	// job
	"job_title", "company_name", "posted_at", "schedule_type",
	"work_from_home", "district", "nco_code", "group_name",
	"assigned_occupation_group", "salary_mean_inr_month",
	"salary_currency_unit", "salary_source", "skill_count",
	"token_count", "highest_similarity_spec", "highest_similarity_score",
	// skill (job_count doubles as category job count)
	"canonical_key", "aliases", "job_count", "max_similarity", "avg_similarity",
}

func (e *Exporter) writeNodesCSV(g *model.Graph) (string, error) {
	path := filepath.Join(e.cfg.OutputDir, "nodes.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create nodes.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(nodeColumns); err != nil {
		return "", err
	}

	for _, id := range g.NodeIDs() {
		if err := w.Write(nodeRow(g.Nodes[id])); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

func nodeRow(n *model.Node) []string {
	row := make([]string, len(nodeColumns))
	row[0] = n.ID
	row[1] = n.Label
	row[2] = n.Kind

	set := func(col, val string) {
		for i, c := range nodeColumns {
			if c == col {
				row[i] = val
				return
			}
		}
	}

	switch {
	case n.Job != nil:
		j := n.Job
		set("job_title", j.JobTitle)
		set("company_name", j.CompanyName)
		set("posted_at", j.PostedAt)
		set("schedule_type", j.ScheduleType)
		set("work_from_home", j.WorkFromHome)
		set("district", j.District)
		set("nco_code", j.NCOCode)
		set("group_name", j.GroupName)
		set("assigned_occupation_group", j.AssignedOccupationGroup)
		set("salary_mean_inr_month", formatFloat(j.SalaryMean))
		set("salary_currency_unit", j.SalaryCurrency)
		set("salary_source", j.SalarySource)
		set("skill_count", strconv.Itoa(j.SkillCount))
		set("token_count", strconv.Itoa(j.TokenCount))
		set("highest_similarity_spec", j.HighestSimilaritySpec)
		set("highest_similarity_score", formatFloat(j.HighestSimilarityScore))
	case n.Skill != nil:
		s := n.Skill
		set("canonical_key", s.CanonicalKey)
		set("aliases", strings.Join(s.Aliases, "|"))
		set("job_count", strconv.Itoa(s.OccurrenceCount))
		set("max_similarity", formatFloat(s.MaxSimilarity))
		set("avg_similarity", formatFloat(s.AvgSimilarity))
	case n.Category != nil:
		set("nco_code", n.Category.NCOCode)
		set("job_count", strconv.Itoa(n.Category.JobCount))
	}

	return row
}

func (e *Exporter) writeEdgesCSV(g *model.Graph) (string, error) {
	path := filepath.Join(e.cfg.OutputDir, "edges.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create edges.csv: %w", err)
	}
	defer f.Close()

	columns := []string{"source", "target", "rel", "bucket", "mapping_similarity", "weight"}
	if !e.cfg.DropThinking {
		columns = append(columns, "thinking")
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", err
	}

	for _, edge := range g.Edges {
		row := []string{
			edge.Source, edge.Target, edge.Rel, edge.Bucket,
			formatFloat(edge.MappingSimilarity), formatFloat(edge.Weight),
		}
		if !e.cfg.DropThinking {
			row = append(row, edge.Thinking)
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

func (e *Exporter) writeSkillDictionary(n *normalize.Normalizer) (string, error) {
	path := filepath.Join(e.cfg.OutputDir, "skill_dictionary.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create skill_dictionary.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"skill_id", "canonical_key", "canonical_label", "aliases",
		"alias_count", "occurrence_count", "max_similarity",
		"avg_similarity", "buckets",
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, key := range n.KeysByOccurrence() {
		entry, _ := n.Entry(key)
		row := []string{
			model.SkillNodeID(key),
			key,
			entry.CanonicalLabel,
			strings.Join(entry.SortedAliases(), "|"),
			strconv.Itoa(len(entry.Aliases)),
			strconv.Itoa(entry.OccurrenceCount),
			formatFloat(round4(entry.MaxSimilarity)),
			formatFloat(round4(entry.AvgSimilarity())),
			strings.Join(entry.SortedBuckets(), "|"),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

func (e *Exporter) writeBadRows(badRows []parse.BadRow) (string, error) {
	path := filepath.Join(e.cfg.OutputDir, "bad_rows.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create bad_rows.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"row_idx", "job_title", "company_name", "error"}); err != nil {
		return "", err
	}
	for _, r := range badRows {
		row := []string{strconv.Itoa(r.RowIndex), r.JobTitle, r.CompanyName, r.Error}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return path, w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
