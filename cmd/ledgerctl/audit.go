package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errDrift = errors.New("locked balances disagree with active holds")

func newAuditCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check every balance's locked funds against its active holds",
		Long: "Sums ACTIVE holds per (user, asset) and compares them with the locked side\n" +
			"of each balance. Exits non-zero when any pair disagrees.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				drift, err := l.repo.FindLockedDrift(ctx)
				if err != nil {
					return err
				}
				if len(drift) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "ok: locked balances match active holds")
					return nil
				}
				if err := printJSON(cmd, drift); err != nil {
					return err
				}
				return fmt.Errorf("%w: %d balance(s)", errDrift, len(drift))
			})
		},
	}
}
