package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/harrynew/workflowbot/store"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.3.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "workflowbot",
	Short: "workflowbot manages the guild workflow snapshot.",
	Long: `workflowbot is the tooling surface for the guild workflow tracker.
It inspects, verifies and re-encodes the persisted snapshot that the bot
process reads at startup and writes at shutdown.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.workflowbot.yaml or ./.workflowbot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetStore initializes and returns the snapshot store from the unified
// types.AppConfig.
func GetStore() (*store.FileWorkflowStore, error) {
	s := store.NewFileWorkflowStore()
	config := GetConfig()

	err := s.Initialize(map[string]string{
		"snapshotFile":   config.Snapshot.File,
		"snapshotFormat": config.Snapshot.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", config.Snapshot.File, err)
	}
	return s, nil
}
