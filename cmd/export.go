package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrynew/workflowbot/store"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-encode the snapshot in another format",
	Long: `Read the snapshot and write it back out in the requested encoding.

Examples:
  workflowbot export --format yaml
  workflowbot export --format toml -o workflows.toml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json, yaml or toml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	doc, err := s.LoadDocument()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	data, err := store.MarshalDocument(doc, exportFormat)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		cmd.Print(string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOutput, err)
	}
	cmd.Printf("Wrote %s (%d bytes)\n", exportOutput, len(data))
	return nil
}
