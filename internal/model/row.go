// Package model defines the core row and graph data types.
package model

// SkillMention is one raw skill reference inside one job row, with its
// pre-computed mapping confidence and bucket label.
type SkillMention struct {
	Skill             string  `json:"skill"`
	Bucket            string  `json:"bucket"`
	MappingSimilarity float64 `json:"mapping_similarity"`
	Thinking          string  `json:"thinking,omitempty"`
}

// JobRecord is one parsed input row. Created once per row, consumed by
// the graph builder, never mutated afterward.
type JobRecord struct {
	JobID                   string         `json:"job_id"`
	JobTitle                string         `json:"job_title"`
	CompanyName             string         `json:"company_name"`
	PostedAt                string         `json:"posted_at"`
	ScheduleType            string         `json:"schedule_type"`
	WorkFromHome            string         `json:"work_from_home"` // "yes", "no", or "" for unknown
	District                string         `json:"district"`
	NCOCode                 string         `json:"nco_code"`
	GroupName               string         `json:"group_name"`
	AssignedOccupationGroup string         `json:"assigned_occupation_group"`
	TokenCount              int            `json:"token_count"`
	HighestSimilaritySpec   string         `json:"highest_similarity_spec"`
	HighestSimilarityScore  float64        `json:"highest_similarity_score"`
	SalaryMean              float64        `json:"salary_mean"`
	SalaryCurrency          string         `json:"salary_currency"`
	SalarySource            string         `json:"salary_source"`
	Skills                  []SkillMention `json:"skills"`
	RowIndex                int            `json:"-"`
}
