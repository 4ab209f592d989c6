package graph

import (
	"math"

	"github.com/rcliao/skillgraph/internal/model"
)

// Stats summarizes an assembled graph for reporting.
type Stats struct {
	NodesTotal  int            `json:"nodes_total"`
	NodesByKind map[string]int `json:"nodes_by_kind"`
	EdgesTotal  int            `json:"edges_total"`
	EdgesByRel  map[string]int `json:"edges_by_rel"`

	JobsWithSkills       int     `json:"jobs_with_skills_count"`
	JobsWithSkillsPct    float64 `json:"jobs_with_skills_pct"`
	JobsWithCategory     int     `json:"jobs_with_category_count"`
	AvgSkillsPerJob      float64 `json:"avg_skills_per_job"`
	FilteredBySimilarity int     `json:"skills_filtered_by_similarity"`
	FilteredByBucket     int     `json:"skills_filtered_by_bucket"`
}

// Stats reports counts for the last built graph.
func (b *Builder) Stats(g *model.Graph) Stats {
	jobs := g.CountKind(model.KindJob)
	skillEdges := g.CountRel(model.RelRequiresSkill)

	withSkillsPct := 0.0
	avgSkills := 0.0
	if jobs > 0 {
		withSkillsPct = float64(len(b.jobsWithSkills)) / float64(jobs) * 100
		avgSkills = float64(skillEdges) / float64(jobs)
	}

	return Stats{
		NodesTotal: len(g.Nodes),
		NodesByKind: map[string]int{
			model.KindJob:      jobs,
			model.KindSkill:    g.CountKind(model.KindSkill),
			model.KindCategory: g.CountKind(model.KindCategory),
		},
		EdgesTotal: len(g.Edges),
		EdgesByRel: map[string]int{
			model.RelRequiresSkill: skillEdges,
			model.RelInCategory:    g.CountRel(model.RelInCategory),
		},
		JobsWithSkills:       len(b.jobsWithSkills),
		JobsWithSkillsPct:    math.Round(withSkillsPct*100) / 100,
		JobsWithCategory:     len(b.jobsWithCategory),
		AvgSkillsPerJob:      math.Round(avgSkills*100) / 100,
		FilteredBySimilarity: b.filteredSimilarity,
		FilteredByBucket:     b.filteredBucket,
	}
}

// GraphStats computes the kind/rel counts for any graph, without
// builder tracking state. Used for stored or sampled graphs.
func GraphStats(g *model.Graph) Stats {
	jobs := g.CountKind(model.KindJob)
	skillEdges := g.CountRel(model.RelRequiresSkill)

	jobsWithSkills := make(map[string]struct{})
	jobsWithCategory := make(map[string]struct{})
	for _, e := range g.Edges {
		switch e.Rel {
		case model.RelRequiresSkill:
			jobsWithSkills[e.Source] = struct{}{}
		case model.RelInCategory:
			jobsWithCategory[e.Source] = struct{}{}
		}
	}

	withSkillsPct := 0.0
	avgSkills := 0.0
	if jobs > 0 {
		withSkillsPct = float64(len(jobsWithSkills)) / float64(jobs) * 100
		avgSkills = float64(skillEdges) / float64(jobs)
	}

	return Stats{
		NodesTotal: len(g.Nodes),
		NodesByKind: map[string]int{
			model.KindJob:      jobs,
			model.KindSkill:    g.CountKind(model.KindSkill),
			model.KindCategory: g.CountKind(model.KindCategory),
		},
		EdgesTotal: len(g.Edges),
		EdgesByRel: map[string]int{
			model.RelRequiresSkill: skillEdges,
			model.RelInCategory:    g.CountRel(model.RelInCategory),
		},
		JobsWithSkills:    len(jobsWithSkills),
		JobsWithSkillsPct: math.Round(withSkillsPct*100) / 100,
		JobsWithCategory:  len(jobsWithCategory),
		AvgSkillsPerJob:   math.Round(avgSkills*100) / 100,
	}
}
