package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "uplift",
		Short:         "Uplift migrates scaffolded projects to a newer toolkit revision",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(newStartCmd(flags))
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newApplyCmd(flags))
	cmd.AddCommand(newAbandonCmd())
	cmd.AddCommand(newResolveConflictsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
