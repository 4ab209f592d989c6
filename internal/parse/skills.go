package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/skillgraph/internal/model"
)

// parseSkills decodes a row's skills JSON. A list that cannot be parsed
// at all rejects the whole row; individual malformed entries are
// skipped silently.
func parseSkills(text string) ([]model.SkillMention, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("invalid skills JSON: %w", err)
	}

	var mentions []model.SkillMention
	for _, entry := range raw {
		var m struct {
			Skill             string          `json:"skill"`
			Bucket            string          `json:"bucket"`
			MappingSimilarity json.RawMessage `json:"mapping_similarity"`
			Thinking          string          `json:"thinking"`
		}
		if err := json.Unmarshal(entry, &m); err != nil {
			continue // malformed mention, not a row failure
		}

		skill := strings.TrimSpace(m.Skill)
		if skill == "" {
			continue
		}

		mentions = append(mentions, model.SkillMention{
			Skill:             skill,
			Bucket:            strings.TrimSpace(m.Bucket),
			MappingSimilarity: looseFloat(m.MappingSimilarity),
			Thinking:          strings.TrimSpace(m.Thinking),
		})
	}

	return mentions, nil
}

// looseFloat accepts a JSON number or numeric string, defaulting to 0.
func looseFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return safeFloat(strings.TrimSpace(s))
	}
	return 0
}
