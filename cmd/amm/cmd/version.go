package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information set at build time
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// VersionInfo is the machine-readable form of the version command.
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the version, git commit, and build date of the amm CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.print([]string{
			"amm CLI",
			fmt.Sprintf("  Version:    %s", Version),
			fmt.Sprintf("  Git Commit: %s", GitCommit),
			fmt.Sprintf("  Build Date: %s", BuildDate),
		}, VersionInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
