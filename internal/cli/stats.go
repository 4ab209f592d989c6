package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/skillgraph/internal/graph"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for a stored run",
		Run:   runStats,
	}

	cmd.Flags().String("run", "", "Run id (default: latest)")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		runID, err = s.LatestRunID(cmd.Context())
		if err != nil {
			exitErr("resolve run", err)
		}
	}

	g, err := s.LoadGraph(cmd.Context(), runID)
	if err != nil {
		exitErr("load graph", err)
	}

	out := map[string]any{
		"run_id": runID,
		"graph":  graph.GraphStats(g),
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
