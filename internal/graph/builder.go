// Package graph assembles the job-skill-category graph from parsed rows
// and a populated skill dictionary.
package graph

import (
	"math"
	"sort"
	"strings"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
)

// Builder assembles a graph under the configured filters.
type Builder struct {
	cfg       *config.Config
	bucketSet map[string]struct{}

	jobsWithSkills   map[string]struct{}
	jobsWithCategory map[string]struct{}

	skillEdges         int
	categoryEdges      int
	filteredSimilarity int
	filteredBucket     int
}

// NewBuilder returns a builder for the given config.
func NewBuilder(cfg *config.Config) *Builder {
	b := &Builder{
		cfg:              cfg,
		jobsWithSkills:   make(map[string]struct{}),
		jobsWithCategory: make(map[string]struct{}),
	}
	if len(cfg.Buckets) > 0 {
		b.bucketSet = make(map[string]struct{}, len(cfg.Buckets))
		for _, bk := range cfg.Buckets {
			b.bucketSet[bk] = struct{}{}
		}
	}
	return b
}

// Build assembles the full graph from an already-materialized row
// collection. A row with no valid skill mentions still produces a fully
// assembled job node; it just carries no REQUIRES_SKILL edges.
func (b *Builder) Build(rows []model.JobRecord, n *normalize.Normalizer) *model.Graph {
	g := model.NewGraph()

	for i := range rows {
		b.processRow(g, &rows[i], n)
	}

	b.addSkillNodes(g, n)
	g.RecomputeCategoryCounts()

	return g
}

func (b *Builder) processRow(g *model.Graph, row *model.JobRecord, n *normalize.Normalizer) {
	jobID := model.JobNodeID(row.JobID)
	g.AddNode(jobNode(jobID, row))

	if catID := b.ensureCategory(g, row); catID != "" {
		g.AddEdge(model.Edge{Source: jobID, Target: catID, Rel: model.RelInCategory})
		b.jobsWithCategory[jobID] = struct{}{}
		b.categoryEdges++
	}

	b.addSkillEdges(g, jobID, row, n)
}

func jobNode(id string, row *model.JobRecord) *model.Node {
	label := row.JobTitle
	if label == "" {
		label = "Untitled Job"
	}
	return &model.Node{
		ID:    id,
		Label: label,
		Kind:  model.KindJob,
		Job: &model.JobAttrs{
			JobTitle:                row.JobTitle,
			CompanyName:             row.CompanyName,
			PostedAt:                row.PostedAt,
			ScheduleType:            row.ScheduleType,
			WorkFromHome:            row.WorkFromHome,
			District:                row.District,
			NCOCode:                 row.NCOCode,
			GroupName:               row.GroupName,
			AssignedOccupationGroup: row.AssignedOccupationGroup,
			TokenCount:              row.TokenCount,
			HighestSimilaritySpec:   row.HighestSimilaritySpec,
			HighestSimilarityScore:  row.HighestSimilarityScore,
			SalaryMean:              row.SalaryMean,
			SalaryCurrency:          row.SalaryCurrency,
			SalarySource:            row.SalarySource,
			SkillCount:              len(row.Skills),
		},
	}
}

// ensureCategory resolves the row's category and creates the category
// node the first time its slug is seen. Returns "" when no category
// resolves; the job stays uncategorized.
func (b *Builder) ensureCategory(g *model.Graph, row *model.JobRecord) string {
	name := strings.TrimSpace(row.AssignedOccupationGroup)
	if name == "" {
		name = strings.TrimSpace(row.GroupName)
	}
	if name == "" {
		return ""
	}

	slug := normalize.Slugify(strings.ToLower(name))
	if slug == "" {
		return ""
	}
	catID := model.CategoryNodeID(slug)

	if _, ok := g.Nodes[catID]; !ok {
		g.AddNode(&model.Node{
			ID:    catID,
			Label: name,
			Kind:  model.KindCategory,
			Category: &model.CategoryAttrs{
				NCOCode: row.NCOCode,
			},
		})
	}

	return catID
}

func (b *Builder) addSkillEdges(g *model.Graph, jobID string, row *model.JobRecord, n *normalize.Normalizer) {
	if len(row.Skills) == 0 {
		return
	}

	// Higher-confidence mentions must win the per-job dedup and fill
	// the top-k cap first. Stable to keep original order on ties.
	mentions := append([]model.SkillMention(nil), row.Skills...)
	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].MappingSimilarity > mentions[j].MappingSimilarity
	})

	seen := make(map[string]struct{})
	created := 0

	for _, m := range mentions {
		if b.bucketSet != nil {
			if _, ok := b.bucketSet[m.Bucket]; !ok {
				b.filteredBucket++
				continue
			}
		}

		if m.MappingSimilarity < b.cfg.MinSimilarity {
			b.filteredSimilarity++
			continue
		}

		key, ok := n.Lookup(m.Skill)
		if !ok {
			continue
		}
		skillID := model.SkillNodeID(key)

		if _, dup := seen[skillID]; dup {
			continue
		}

		sim := round4(m.MappingSimilarity)
		edge := model.Edge{
			Source:            jobID,
			Target:            skillID,
			Rel:               model.RelRequiresSkill,
			Bucket:            m.Bucket,
			MappingSimilarity: sim,
			Weight:            sim,
		}
		if !b.cfg.DropThinking {
			edge.Thinking = m.Thinking
		}

		g.AddEdge(edge)
		seen[skillID] = struct{}{}
		created++

		if b.cfg.TopKSkills > 0 && created >= b.cfg.TopKSkills {
			break
		}
	}

	if created > 0 {
		b.jobsWithSkills[jobID] = struct{}{}
		b.skillEdges += created
	}
}

// addSkillNodes adds one node per canonical skill that has at least one
// surviving edge. Membership is checked against a set of edge targets
// so the pass stays near-linear in edges plus dictionary size.
func (b *Builder) addSkillNodes(g *model.Graph, n *normalize.Normalizer) {
	withEdges := make(map[string]struct{})
	for _, e := range g.Edges {
		if e.Rel == model.RelRequiresSkill {
			withEdges[e.Target] = struct{}{}
		}
	}

	for _, key := range n.Keys() {
		skillID := model.SkillNodeID(key)
		if _, ok := withEdges[skillID]; !ok {
			continue
		}

		entry, _ := n.Entry(key)
		attrs := &model.SkillAttrs{
			CanonicalKey:    key,
			OccurrenceCount: entry.OccurrenceCount,
			MaxSimilarity:   round4(entry.MaxSimilarity),
			AvgSimilarity:   round4(entry.AvgSimilarity()),
		}
		if b.cfg.IncludeAliases {
			attrs.Aliases = entry.SortedAliases()
		}

		g.AddNode(&model.Node{
			ID:    skillID,
			Label: entry.CanonicalLabel,
			Kind:  model.KindSkill,
			Skill: attrs,
		})
	}
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
