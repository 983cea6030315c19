package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"currency_flip/internal/domain/policy"
)

// Синхронизация тайников пока только проверяет учётные данные в конфиге.
func newSyncCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync your public stashes into your config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userCfg, err := policy.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("policy.Load: %w", err)
			}

			if err := userCfg.HasAccount(); err != nil {
				return err
			}

			logger(cmd.Context()).Info("stash sync", slog.String("account", userCfg.AccountName))

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", userCfg.PoeSessionID, userCfg.AccountName)

			return err
		},
	}
}
