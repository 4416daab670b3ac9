package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAssetsCmd(rc *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the asset catalog",
	}
	cmd.AddCommand(
		newAssetsAddCmd(rc),
		newAssetsListCmd(rc),
	)
	return cmd
}

func newAssetsAddCmd(rc *rootConfig) *cobra.Command {
	var cash bool

	cmd := &cobra.Command{
		Use:   "add SYMBOL",
		Short: "Register an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				asset, err := l.assets.Create(ctx, args[0], cash)
				if err != nil {
					return err
				}
				return printJSON(cmd, asset)
			})
		},
	}
	cmd.Flags().BoolVar(&cash, "cash", false, "deposits of this asset count toward the USD deposit limit")
	return cmd
}

func newAssetsListCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				list, err := l.assets.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSYMBOL\tCASH")
				for _, a := range list {
					fmt.Fprintf(w, "%d\t%s\t%t\n", a.ID, a.Symbol, a.IsCash)
				}
				return w.Flush()
			})
		},
	}
}
