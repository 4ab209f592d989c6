// Package cli implements the skillgraph CLI commands.
package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/store"
)

var (
	configPath string
	dbPath     string
	verbose    bool
)

// logger writes phase progress to stderr; stdout is reserved for
// machine-readable command output.
var logger = log.New(os.Stderr, "", log.LstdFlags)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "skillgraph",
	Short: "Build job-skill-category graphs from job posting data",
	Long: "skillgraph turns a CSV of job postings with skill mentions into a " +
		"labeled graph of jobs, canonical skills, and occupation categories, " +
		"with optional representative or size-bounded subsetting.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Run database path (default: $SKILLGRAPH_DB or ~/.skillgraph/runs.db)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// baseConfig loads the YAML config when --config is set, defaults
// otherwise. Flags are applied on top by each command.
func baseConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		verbose = true
	}
	return cfg, nil
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("SKILLGRAPH_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".skillgraph", "runs.db")
}

func openStore() (*store.RunStore, error) {
	return store.Open(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func exitConfigErrors(errs []string) {
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
	os.Exit(1)
}

func debugf(format string, args ...any) {
	if verbose {
		logger.Printf(format, args...)
	}
}
