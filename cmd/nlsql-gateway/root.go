package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Running with no subcommand serves.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nlsql-gateway",
		Short:        "Natural-language to SQL query gateway",
		Long:         "Translates natural-language questions into read-only SQL, validates it and runs it against the customer store.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newHashKeyCmd(),
		newVersionCmd(),
	)
	return root
}
