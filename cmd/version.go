package cmd

import (
	"gemini-chat-cli/cmd/utils"
	"gemini-chat-cli/cmd/version"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gchat",
	Run: func(cmd *cobra.Command, args []string) {
		v := version.CurrentVersion
		line := "gchat " + version.FormatVersionForDisplay(v)
		if version.Prerelease(v) {
			line += " (pre-release)"
		}
		utils.OutputInfo("%s", line)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
