package export

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcliao/skillgraph/internal/model"
)

type graphmlKey struct {
	id  string
	typ string // string, int, double
}

var nodeKeys = []graphmlKey{
	{"label", "string"},
	{"kind", "string"},
	{"job_title", "string"},
	{"company_name", "string"},
	{"posted_at", "string"},
	{"schedule_type", "string"},
	{"work_from_home", "string"},
	{"district", "string"},
	{"nco_code", "string"},
	{"group_name", "string"},
	{"assigned_occupation_group", "string"},
	{"salary_mean_inr_month", "double"},
	{"salary_currency_unit", "string"},
	{"salary_source", "string"},
	{"skill_count", "int"},
	{"token_count", "int"},
	{"highest_similarity_spec", "string"},
	{"highest_similarity_score", "double"},
	{"canonical_key", "string"},
	{"aliases", "string"},
	{"job_count", "int"},
	{"max_similarity", "double"},
	{"avg_similarity", "double"},
}

var edgeKeys = []graphmlKey{
	{"rel", "string"},
	{"bucket", "string"},
	{"mapping_similarity", "double"},
	{"weight", "double"},
	{"thinking", "string"},
}

// writeGraphML writes the graph in GraphML with typed key declarations,
// ready for Gephi.
func (e *Exporter) writeGraphML(g *model.Graph) (string, error) {
	path := filepath.Join(e.cfg.OutputDir, "graph.graphml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create graph.graphml: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintln(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintln(w, `<graphml xmlns="http://graphml.graphdrawing.org/xmlns">`)

	for _, k := range nodeKeys {
		fmt.Fprintf(w, "  <key id=\"%s\" for=\"node\" attr.name=\"%s\" attr.type=\"%s\"/>\n", k.id, k.id, k.typ)
	}
	for _, k := range edgeKeys {
		fmt.Fprintf(w, "  <key id=\"e_%s\" for=\"edge\" attr.name=\"%s\" attr.type=\"%s\"/>\n", k.id, k.id, k.typ)
	}

	fmt.Fprintln(w, `  <graph id="G" edgedefault="directed">`)

	for _, id := range g.NodeIDs() {
		writeGraphMLNode(w, g.Nodes[id])
	}
	for i, edge := range g.Edges {
		writeGraphMLEdge(w, i, edge, e.cfg.DropThinking)
	}

	fmt.Fprintln(w, "  </graph>")
	fmt.Fprintln(w, "</graphml>")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write graph.graphml: %w", err)
	}
	return path, nil
}

func writeGraphMLNode(w *bufio.Writer, n *model.Node) {
	fmt.Fprintf(w, "    <node id=\"%s\">\n", escapeXML(n.ID))
	data(w, "label", n.Label)
	data(w, "kind", n.Kind)

	switch {
	case n.Job != nil:
		j := n.Job
		data(w, "job_title", j.JobTitle)
		data(w, "company_name", j.CompanyName)
		data(w, "posted_at", j.PostedAt)
		data(w, "schedule_type", j.ScheduleType)
		data(w, "work_from_home", j.WorkFromHome)
		data(w, "district", j.District)
		data(w, "nco_code", j.NCOCode)
		data(w, "group_name", j.GroupName)
		data(w, "assigned_occupation_group", j.AssignedOccupationGroup)
		data(w, "salary_mean_inr_month", formatFloat(j.SalaryMean))
		data(w, "salary_currency_unit", j.SalaryCurrency)
		data(w, "salary_source", j.SalarySource)
		data(w, "skill_count", fmt.Sprint(j.SkillCount))
		data(w, "token_count", fmt.Sprint(j.TokenCount))
		data(w, "highest_similarity_spec", j.HighestSimilaritySpec)
		data(w, "highest_similarity_score", formatFloat(j.HighestSimilarityScore))
	case n.Skill != nil:
		s := n.Skill
		data(w, "canonical_key", s.CanonicalKey)
		data(w, "aliases", strings.Join(s.Aliases, "|"))
		data(w, "job_count", fmt.Sprint(s.OccurrenceCount))
		data(w, "max_similarity", formatFloat(s.MaxSimilarity))
		data(w, "avg_similarity", formatFloat(s.AvgSimilarity))
	case n.Category != nil:
		data(w, "nco_code", n.Category.NCOCode)
		data(w, "job_count", fmt.Sprint(n.Category.JobCount))
	}

	fmt.Fprintln(w, "    </node>")
}

func writeGraphMLEdge(w *bufio.Writer, i int, e model.Edge, dropThinking bool) {
	fmt.Fprintf(w, "    <edge id=\"e%d\" source=\"%s\" target=\"%s\">\n",
		i, escapeXML(e.Source), escapeXML(e.Target))
	data(w, "e_rel", e.Rel)
	if e.Rel == model.RelRequiresSkill {
		data(w, "e_bucket", e.Bucket)
		data(w, "e_mapping_similarity", formatFloat(e.MappingSimilarity))
		data(w, "e_weight", formatFloat(e.Weight))
		if !dropThinking && e.Thinking != "" {
			data(w, "e_thinking", e.Thinking)
		}
	}
	fmt.Fprintln(w, "    </edge>")
}

func data(w *bufio.Writer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "      <data key=\"%s\">%s</data>\n", key, escapeXML(value))
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeXML escapes markup characters and strips control characters
// that are invalid in XML 1.0.
func escapeXML(s string) string {
	s = xmlReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
