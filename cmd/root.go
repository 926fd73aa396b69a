package cmd

import (
	"fmt"

	"github.com/nikfortgames/beamroom/config"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "beamroom",
		Short:         "Beamroom client: join a room and play from the terminal",
		Long:          "beamroom connects to a coordination server, joins or creates a room for its version tag and replicates the local player's state to everyone else in the room.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newPlayCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version tag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Session.VersionTag)
			return err
		},
	}
}
