package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrynew/workflowbot/store"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the workflow snapshot",
	Long: `Load the snapshot, verify its checksum, and report any dangling
Project-Team references. Dangling references are dropped automatically the
next time the bot loads the snapshot; this command shows what would go.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.LoadDocument()
	if err != nil {
		return fmt.Errorf("snapshot failed to load: %w", err)
	}

	problems := store.Verify(doc)
	for _, p := range problems {
		cmd.Println("dangling:", p)
	}

	projects, tasks, teams := 0, 0, 0
	for _, snap := range doc {
		projects += len(snap.Projects)
		teams += len(snap.Teams)
		for _, p := range snap.Projects {
			tasks += len(p.Tasks)
		}
	}
	cmd.Printf("%d guilds, %d projects, %d tasks, %d teams\n", len(doc), projects, tasks, teams)

	if len(problems) > 0 {
		cmd.Printf("%d dangling reference(s) found\n", len(problems))
	} else {
		cmd.Println("Snapshot OK.")
	}
	return nil
}
