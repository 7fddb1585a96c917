package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sipico/nlsql-gateway/internal/sqlguard"
)

// errUnsafe reports a rejected statement.
type errUnsafe struct{ verdict sqlguard.Verdict }

func (e errUnsafe) Error() string {
	return fmt.Sprintf("unsafe (%s): %s", e.verdict.Rule, e.verdict.Reason)
}

func newCheckCmd() *cobra.Command {
	var denylistPath string

	cmd := &cobra.Command{
		Use:   "check <sql>",
		Short: "Run the SQL safety validator offline",
		Long:  "Validates a statement with the same rules the gateway applies and exits non-zero when it would be rejected.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			denylist, err := sqlguard.LoadDenylist(denylistPath)
			if err != nil {
				return err
			}

			verdict := sqlguard.New(denylist).Validate(strings.Join(args, " "))
			if !verdict.Safe {
				return errUnsafe{verdict: verdict}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "safe")
			return nil
		},
	}

	cmd.Flags().StringVar(&denylistPath, "denylist", "", "YAML file with extra denied keywords")
	return cmd
}
