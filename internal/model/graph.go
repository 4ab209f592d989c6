package model

import "sort"

// Node kinds.
const (
	KindJob      = "job"
	KindSkill    = "skill"
	KindCategory = "category"
)

// Edge relations.
const (
	RelRequiresSkill = "REQUIRES_SKILL"
	RelInCategory    = "IN_CATEGORY"
)

// Node id prefixes. A node id is always "<prefix><key>" and is unique
// within a graph.
const (
	jobPrefix      = "job:"
	skillPrefix    = "skill:"
	categoryPrefix = "cat:"
)

// JobNodeID returns the node id for a job key.
func JobNodeID(jobID string) string { return jobPrefix + jobID }

// SkillNodeID returns the node id for a canonical skill key.
func SkillNodeID(key string) string { return skillPrefix + key }

// CategoryNodeID returns the node id for a category slug.
func CategoryNodeID(slug string) string { return categoryPrefix + slug }

// JobAttrs carries the full job-posting metadata on a job node.
type JobAttrs struct {
	JobTitle                string  `json:"job_title"`
	CompanyName             string  `json:"company_name"`
	PostedAt                string  `json:"posted_at"`
	ScheduleType            string  `json:"schedule_type"`
	WorkFromHome            string  `json:"work_from_home"`
	District                string  `json:"district"`
	NCOCode                 string  `json:"nco_code"`
	GroupName               string  `json:"group_name"`
	AssignedOccupationGroup string  `json:"assigned_occupation_group"`
	TokenCount              int     `json:"token_count"`
	HighestSimilaritySpec   string  `json:"highest_similarity_spec"`
	HighestSimilarityScore  float64 `json:"highest_similarity_score"`
	SalaryMean              float64 `json:"salary_mean_inr_month"`
	SalaryCurrency          string  `json:"salary_currency_unit"`
	SalarySource            string  `json:"salary_source"`

	// SkillCount is the number of mention entries on the source row,
	// counted before any edge filtering.
	SkillCount int `json:"skill_count"`
}

// SkillAttrs carries canonical-skill aggregates on a skill node. The
// aggregates reflect every registered occurrence, independent of
// post-filter edge survival.
type SkillAttrs struct {
	CanonicalKey    string   `json:"canonical_key"`
	Aliases         []string `json:"aliases,omitempty"`
	OccurrenceCount int      `json:"occurrence_count"`
	MaxSimilarity   float64  `json:"max_similarity"`
	AvgSimilarity   float64  `json:"avg_similarity"`
}

// CategoryAttrs carries occupation-category attributes. JobCount always
// equals the number of IN_CATEGORY edges targeting the node and is
// recomputed after assembly and after sampling.
type CategoryAttrs struct {
	NCOCode  string `json:"nco_code,omitempty"`
	JobCount int    `json:"job_count"`
}

// Node is a graph node discriminated by Kind. Exactly one of the
// kind-specific attribute structs is non-nil.
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Kind     string         `json:"kind"`
	Job      *JobAttrs      `json:"job,omitempty"`
	Skill    *SkillAttrs    `json:"skill,omitempty"`
	Category *CategoryAttrs `json:"category,omitempty"`
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	if n.Job != nil {
		j := *n.Job
		c.Job = &j
	}
	if n.Skill != nil {
		s := *n.Skill
		s.Aliases = append([]string(nil), n.Skill.Aliases...)
		c.Skill = &s
	}
	if n.Category != nil {
		cat := *n.Category
		c.Category = &cat
	}
	return &c
}

// Edge connects two nodes by id. Bucket, MappingSimilarity, Weight and
// Thinking are only set on REQUIRES_SKILL edges.
type Edge struct {
	Source            string  `json:"source"`
	Target            string  `json:"target"`
	Rel               string  `json:"rel"`
	Bucket            string  `json:"bucket,omitempty"`
	MappingSimilarity float64 `json:"mapping_similarity,omitempty"`
	Weight            float64 `json:"weight,omitempty"`
	Thinking          string  `json:"thinking,omitempty"`
}

// Graph is a node collection keyed by id plus an edge list.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges []Edge           `json:"edges"`
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[string]*Node)}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddEdge appends an edge.
func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// CountKind returns the number of nodes of the given kind.
func (g *Graph) CountKind(kind string) int {
	c := 0
	for _, n := range g.Nodes {
		if n.Kind == kind {
			c++
		}
	}
	return c
}

// CountRel returns the number of edges with the given relation.
func (g *Graph) CountRel(rel string) int {
	c := 0
	for _, e := range g.Edges {
		if e.Rel == rel {
			c++
		}
	}
	return c
}

// NodeIDs returns all node ids in lexical order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// JobIDs returns all job node ids in lexical order.
func (g *Graph) JobIDs() []string {
	var ids []string
	for id, n := range g.Nodes {
		if n.Kind == KindJob {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// JobCategories maps each job node id to its category node id, derived
// from the IN_CATEGORY edges. Jobs with no category edge are absent.
func (g *Graph) JobCategories() map[string]string {
	m := make(map[string]string)
	for _, e := range g.Edges {
		if e.Rel == RelInCategory {
			m[e.Source] = e.Target
		}
	}
	return m
}

// RecomputeCategoryCounts sets every category node's JobCount to the
// number of IN_CATEGORY edges targeting it.
func (g *Graph) RecomputeCategoryCounts() {
	counts := make(map[string]int)
	for _, e := range g.Edges {
		if e.Rel == RelInCategory {
			counts[e.Target]++
		}
	}
	for id, n := range g.Nodes {
		if n.Kind == KindCategory && n.Category != nil {
			n.Category.JobCount = counts[id]
		}
	}
}
