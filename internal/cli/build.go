package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/export"
	"github.com/rcliao/skillgraph/internal/graph"
	"github.com/rcliao/skillgraph/internal/model"
	"github.com/rcliao/skillgraph/internal/normalize"
	"github.com/rcliao/skillgraph/internal/parse"
	"github.com/rcliao/skillgraph/internal/sample"
	"github.com/rcliao/skillgraph/internal/validate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the graph from an input CSV",
		Long: "Parse the input CSV, canonicalize skills, assemble the graph, " +
			"optionally reduce it to a subset, and export the results.",
		Run: runBuild,
	}

	f := cmd.Flags()
	f.StringP("input", "i", "", "Input CSV file (required)")
	f.StringP("outdir", "o", "./output", "Output directory")
	f.StringSlice("format", []string{"csv", "graphml"}, "Output formats: csv, graphml")
	f.Float64("min-similarity", 0, "Minimum mapping similarity for skill edges")
	f.Int("top-k-skills", 0, "Max skill edges per job, 0 for unlimited")
	f.StringSlice("buckets", nil, "Bucket allow-list, empty for all")
	f.Bool("drop-thinking", true, "Omit thinking text from edges")
	f.Bool("include-aliases", true, "Include alias lists on skill nodes")
	f.String("skills-column", "", "Column holding the skills JSON")
	f.String("category-column", "", "Primary category column")
	f.String("fallback-category-column", "", "Fallback category column")
	f.String("job-id-column", "", "Job id column, or auto")
	f.Bool("subset", false, "Reduce the graph to a subset")
	f.String("subset-mode", config.ModePerf, "Subset mode: stats or perf")
	f.Float64("conf-level", 0.95, "Confidence level (stats mode)")
	f.Float64("margin-error", 0.03, "Margin of error (stats mode)")
	f.Bool("p-worstcase", true, "Use p=0.5 worst-case variance (stats mode)")
	f.Float64("p-estimate", 0.5, "Proportion estimate when not worst-case")
	f.Bool("finite-correction", true, "Apply finite population correction")
	f.Int("min-per-category", 30, "Minimum samples per category (stats mode)")
	f.Int64("subset-max-bytes", 100_000_000, "Byte budget (perf mode)")
	f.Int64("subset-seed", 42, "Random seed for sampling")
	f.Int("subset-categories", 0, "Limit to top N categories, 0 for all (perf mode)")
	f.StringSlice("category-list", nil, "Explicit category slugs (perf mode)")
	f.Bool("save", false, "Persist the full graph to the run database")

	RootCmd.AddCommand(cmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	cfg, err := baseConfig()
	if err != nil {
		exitErr("load config", err)
	}
	applyBuildFlags(cmd, cfg)

	if cfg.InputPath == "" {
		exitConfigErrors([]string{"input is required: pass --input or set it in the config file"})
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		exitConfigErrors(errs)
	}
	if cfg.MeanTargetColumn != "" {
		logger.Printf("warning: mean_target_column is reserved and has no sampling formula; using the proportion formula")
	}

	// Parse
	parser := parse.NewParser(cfg)
	rows, err := parser.ParseFile(cfg.InputPath)
	if err != nil {
		exitErr("parse input", err)
	}
	logger.Printf("parsed %d/%d rows (%d failures)", parser.ParsedRows, parser.TotalRows, len(parser.BadRows))

	// Normalize
	normalizer := normalize.New()
	for i := range rows {
		for _, m := range rows[i].Skills {
			normalizer.Register(m.Skill, m.MappingSimilarity, m.Bucket)
		}
	}
	nstats := normalizer.Stats()
	logger.Printf("skill normalization: %d raw -> %d canonical (%.1f%% reduction)",
		nstats.RawSkillStrings, nstats.CanonicalSkills, nstats.DedupRatio*100)

	// Assemble
	builder := graph.NewBuilder(cfg)
	g := builder.Build(rows, normalizer)
	gstats := builder.Stats(g)
	logger.Printf("graph built: %d nodes, %d edges", gstats.NodesTotal, gstats.EdgesTotal)

	// Persist before sampling so the full graph is recoverable
	var runID string
	if save, _ := cmd.Flags().GetBool("save"); save {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		runID, err = s.SaveRun(cmd.Context(), cfg, g)
		s.Close()
		if err != nil {
			exitErr("save run", err)
		}
		logger.Printf("run saved: %s", runID)
	}

	// Sample
	var samplingReport *sample.Report
	out := g
	outStats := gstats
	if cfg.Subset {
		sampler, err := sample.New(cfg.SubsetMode)
		if err != nil {
			exitErr("select sampler", err)
		}
		sub, report, err := sampler.Sample(g, cfg)
		if err != nil {
			exitErr("sample graph", err)
		}
		logger.Printf("subset (%s): %d nodes, %d edges", cfg.SubsetMode, len(sub.Nodes), len(sub.Edges))
		out = sub
		outStats = graph.GraphStats(sub)
		samplingReport = report
	}

	// Export
	exporter := export.New(cfg)
	files, err := exporter.Export(out, normalizer, parser.BadRows)
	if err != nil {
		exitErr("export", err)
	}
	for name, path := range files {
		debugf("wrote %s: %s", name, path)
	}

	// Validate and report
	validator := validate.New(cfg)
	report := validator.Validate(out, outStats, normalizer, parser, files, samplingReport)
	reportPath, err := validator.WriteReport(report)
	if err != nil {
		exitErr("write report", err)
	}
	for _, w := range report.Warnings {
		logger.Printf("warning: %s", w)
	}
	for _, e := range report.Errors {
		logger.Printf("error: %s", e)
	}

	summary := map[string]any{
		"ok":         len(report.Errors) == 0,
		"nodes":      len(out.Nodes),
		"edges":      len(out.Edges),
		"jobs":       out.CountKind(model.KindJob),
		"skills":     out.CountKind(model.KindSkill),
		"categories": out.CountKind(model.KindCategory),
		"bad_rows":   len(parser.BadRows),
		"report":     reportPath,
		"warnings":   len(report.Warnings),
		"errors":     len(report.Errors),
	}
	if runID != "" {
		summary["run_id"] = runID
	}
	b, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(b))
}

// applyBuildFlags copies explicitly set flags over the loaded config so
// flags win over the YAML file.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.InputPath, _ = f.GetString("input")
	}
	if f.Changed("outdir") {
		cfg.OutputDir, _ = f.GetString("outdir")
	}
	if f.Changed("format") {
		cfg.Formats, _ = f.GetStringSlice("format")
	}
	if f.Changed("min-similarity") {
		cfg.MinSimilarity, _ = f.GetFloat64("min-similarity")
	}
	if f.Changed("top-k-skills") {
		cfg.TopKSkills, _ = f.GetInt("top-k-skills")
	}
	if f.Changed("buckets") {
		cfg.Buckets, _ = f.GetStringSlice("buckets")
	}
	if f.Changed("drop-thinking") {
		cfg.DropThinking, _ = f.GetBool("drop-thinking")
	}
	if f.Changed("include-aliases") {
		cfg.IncludeAliases, _ = f.GetBool("include-aliases")
	}
	if f.Changed("skills-column") {
		cfg.SkillsColumn, _ = f.GetString("skills-column")
	}
	if f.Changed("category-column") {
		cfg.CategoryColumn, _ = f.GetString("category-column")
	}
	if f.Changed("fallback-category-column") {
		cfg.FallbackCategoryColumn, _ = f.GetString("fallback-category-column")
	}
	if f.Changed("job-id-column") {
		cfg.JobIDColumn, _ = f.GetString("job-id-column")
	}
	if f.Changed("subset") {
		cfg.Subset, _ = f.GetBool("subset")
	}
	if f.Changed("subset-mode") {
		cfg.SubsetMode, _ = f.GetString("subset-mode")
	}
	if f.Changed("conf-level") {
		cfg.ConfLevel, _ = f.GetFloat64("conf-level")
	}
	if f.Changed("margin-error") {
		cfg.MarginError, _ = f.GetFloat64("margin-error")
	}
	if f.Changed("p-worstcase") {
		cfg.PWorstcase, _ = f.GetBool("p-worstcase")
	}
	if f.Changed("p-estimate") {
		cfg.PEstimate, _ = f.GetFloat64("p-estimate")
	}
	if f.Changed("finite-correction") {
		cfg.FiniteCorrection, _ = f.GetBool("finite-correction")
	}
	if f.Changed("min-per-category") {
		cfg.MinPerCategory, _ = f.GetInt("min-per-category")
	}
	if f.Changed("subset-max-bytes") {
		cfg.SubsetMaxBytes, _ = f.GetInt64("subset-max-bytes")
	}
	if f.Changed("subset-seed") {
		cfg.SubsetSeed, _ = f.GetInt64("subset-seed")
	}
	if f.Changed("subset-categories") {
		cfg.SubsetCategories, _ = f.GetInt("subset-categories")
	}
	if f.Changed("category-list") {
		cfg.CategoryList, _ = f.GetStringSlice("category-list")
	}
}
