package main

import (
	"context"
	"fmt"
	"strconv"

	"simex/internal/models"
	"simex/internal/services/wallet"
	"simex/internal/validation"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func parseUint(name, raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", name, raw, err)
	}
	return uint(v), nil
}

func newDepositCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit USER_ID ASSET_ID AMOUNT",
		Short: "Credit a user's available balance",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUint("user id", args[0])
			if err != nil {
				return err
			}
			assetID, err := parseUint("asset id", args[1])
			if err != nil {
				return err
			}
			amount, err := validation.ParseAmount(args[2])
			if err != nil {
				return err
			}
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				balance, err := l.wallet.Deposit(ctx, userID, assetID, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd, balance)
			})
		},
	}
}

func newDepositCurrencyCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit-currency USER_ID SYMBOL AMOUNT",
		Short: "Credit a user by asset symbol, applying the cash deposit limit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUint("user id", args[0])
			if err != nil {
				return err
			}
			amount, err := validation.ParseAmount(args[2])
			if err != nil {
				return err
			}
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				balance, err := l.wallet.DepositByCurrency(ctx, userID, args[1], amount)
				if err != nil {
					return err
				}
				return printJSON(cmd, balance)
			})
		},
	}
}

func newLockCmd(rc *rootConfig) *cobra.Command {
	var refType, refID string

	cmd := &cobra.Command{
		Use:   "lock USER_ID ASSET_ID AMOUNT",
		Short: "Move funds from available to locked under a reference",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUint("user id", args[0])
			if err != nil {
				return err
			}
			assetID, err := parseUint("asset id", args[1])
			if err != nil {
				return err
			}
			amount, err := validation.ParseAmount(args[2])
			if err != nil {
				return err
			}
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				balance, hold, err := l.wallet.LockFundsWithHold(ctx, userID, assetID, amount, refType, refID)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]interface{}{"balance": balance, "hold": hold})
			})
		},
	}
	cmd.Flags().StringVar(&refType, "ref-type", wallet.RefTypeOrder, "reference type (ORDER, WITHDRAWAL)")
	cmd.Flags().StringVar(&refID, "ref-id", "", "reference id")
	_ = cmd.MarkFlagRequired("ref-id")
	return cmd
}

func newSettleCmd(rc *rootConfig, use, short string, settle func(wallet.Service) func(context.Context, uuid.UUID) (*models.Hold, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " HOLD_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			holdID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad hold id %q: %w", args[0], err)
			}
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				hold, err := settle(l.wallet)(ctx, holdID)
				if err != nil {
					return err
				}
				return printJSON(cmd, hold)
			})
		},
	}
}

func newReleaseCmd(rc *rootConfig) *cobra.Command {
	return newSettleCmd(rc, "release", "Return a hold's funds to available",
		func(s wallet.Service) func(context.Context, uuid.UUID) (*models.Hold, error) { return s.ReleaseHold })
}

func newCaptureCmd(rc *rootConfig) *cobra.Command {
	return newSettleCmd(rc, "capture", "Consume a hold's locked funds",
		func(s wallet.Service) func(context.Context, uuid.UUID) (*models.Hold, error) { return s.CaptureHold })
}

func newBalancesCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "balances USER_ID",
		Short: "Show a user's balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUint("user id", args[0])
			if err != nil {
				return err
			}
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				balances, err := l.wallet.GetBalances(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd, balances)
			})
		},
	}
}

func newHoldsCmd(rc *rootConfig) *cobra.Command {
	var (
		status string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "holds USER_ID",
		Short: "List a user's holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUint("user id", args[0])
			if err != nil {
				return err
			}
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				holds, err := l.wallet.ListHolds(ctx, userID, wallet.HoldQuery{
					Status: models.HoldStatus(status),
					Limit:  limit,
					Offset: offset,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, holds)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (ACTIVE, RELEASED, CAPTURED)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max holds to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "holds to skip")
	return cmd
}
