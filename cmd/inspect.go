package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [guildID]",
	Short: "Print the contents of the workflow snapshot",
	Long: `Print every guild's projects, tasks, teams and Project-Team links
from the persisted snapshot.

Without arguments, all guilds are printed. With a guild id, only that
guild is printed.

Examples:
  workflowbot inspect
  workflowbot inspect 997381355930132520`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.LoadDocument()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	guildIDs := make([]string, 0, len(doc))
	for id := range doc {
		guildIDs = append(guildIDs, id)
	}
	sort.Strings(guildIDs)

	if len(args) == 1 {
		if _, ok := doc[args[0]]; !ok {
			return fmt.Errorf("guild %s not found in snapshot", args[0])
		}
		guildIDs = args[:1]
	}

	if len(guildIDs) == 0 {
		cmd.Println("Snapshot is empty.")
		return nil
	}

	for _, guildID := range guildIDs {
		snap := doc[guildID]
		cmd.Printf("Guild %s (%d projects, %d teams)\n", guildID, len(snap.Projects), len(snap.Teams))

		projectKeys := sortedKeys(len(snap.Projects), func(yield func(string)) {
			for k := range snap.Projects {
				yield(k)
			}
		})
		for _, key := range projectKeys {
			p := snap.Projects[key]
			deadline := "no deadline"
			if p.Deadline != nil {
				deadline = p.Deadline.String()
			}
			cmd.Printf("  Project %s: %s [%s] (%s)\n", key, p.Name, p.Status, deadline)
			for _, t := range p.Tasks {
				archived := ""
				if t.Archive {
					archived = " (archived)"
				}
				cmd.Printf("    Task %d: %s [%s]%s\n", t.ID, t.Name, t.Status, archived)
			}
			if len(p.TeamIDs) > 0 {
				cmd.Printf("    Teams: %v\n", p.TeamIDs)
			}
		}

		teamKeys := sortedKeys(len(snap.Teams), func(yield func(string)) {
			for k := range snap.Teams {
				yield(k)
			}
		})
		for _, key := range teamKeys {
			t := snap.Teams[key]
			cmd.Printf("  Team %s: %s (projects %v)\n", key, t.Name, t.ProjectIDs)
		}
	}
	return nil
}

// sortedKeys collects map keys and sorts them numerically where possible.
func sortedKeys(n int, each func(func(string))) []string {
	keys := make([]string, 0, n)
	each(func(k string) { keys = append(keys, k) })
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
