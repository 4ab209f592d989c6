package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/skillgraph/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Run:   runRuns,
	}

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context())
	if err != nil {
		exitErr("list runs", err)
	}
	if runs == nil {
		runs = []store.RunInfo{}
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Println(string(b))
}
