package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
	"github.com/rcliao/skillgraph/internal/parse"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Build and print the canonical skill dictionary",
		Long: "Parse the input CSV and print the canonical skill dictionary as JSON, " +
			"without assembling a graph. Useful for inspecting normalization quality.",
		Run: runDict,
	}

	cmd.Flags().StringP("input", "i", "", "Input CSV file (required)")
	cmd.Flags().IntP("top", "t", 0, "Only print the top N skills by occurrence, 0 for all")

	RootCmd.AddCommand(cmd)
}

type dictEntry struct {
	SkillID         string   `json:"skill_id"`
	CanonicalKey    string   `json:"canonical_key"`
	CanonicalLabel  string   `json:"canonical_label"`
	Aliases         []string `json:"aliases"`
	OccurrenceCount int      `json:"occurrence_count"`
	MaxSimilarity   float64  `json:"max_similarity"`
	AvgSimilarity   float64  `json:"avg_similarity"`
	Buckets         []string `json:"buckets,omitempty"`
}

func runDict(cmd *cobra.Command, args []string) {
	cfg, err := baseConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		cfg.InputPath = input
	}
	if cfg.InputPath == "" {
		exitConfigErrors([]string{"input is required: pass --input or set it in the config file"})
	}

	parser := parse.NewParser(cfg)
	rows, err := parser.ParseFile(cfg.InputPath)
	if err != nil {
		exitErr("parse input", err)
	}

	normalizer := normalize.New()
	for i := range rows {
		for _, m := range rows[i].Skills {
			normalizer.Register(m.Skill, m.MappingSimilarity, m.Bucket)
		}
	}

	keys := normalizer.KeysByOccurrence()
	if top, _ := cmd.Flags().GetInt("top"); top > 0 && top < len(keys) {
		keys = keys[:top]
	}

	entries := make([]dictEntry, 0, len(keys))
	for _, key := range keys {
		e, _ := normalizer.Entry(key)
		entries = append(entries, dictEntry{
			SkillID:         model.SkillNodeID(key),
			CanonicalKey:    key,
			CanonicalLabel:  e.CanonicalLabel,
			Aliases:         e.SortedAliases(),
			OccurrenceCount: e.OccurrenceCount,
			MaxSimilarity:   e.MaxSimilarity,
			AvgSimilarity:   e.AvgSimilarity(),
			Buckets:         e.SortedBuckets(),
		})
	}

	out := map[string]any{
		"stats":  normalizer.Stats(),
		"skills": entries,
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
