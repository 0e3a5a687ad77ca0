package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"feedtrans/internal/store"
)

func newTokensCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "Print the cumulative number of backend tokens spent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ledger := store.LoadTokenLedger(cfg.TokenLedgerPath())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ledger.Total())
			return err
		},
	}
}
