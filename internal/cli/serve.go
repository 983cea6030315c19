package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"currency_flip/internal/application"
	"currency_flip/internal/config"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, scan queue, periodic scanner and Telegram bots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config.Load: %w", err)
			}

			ctx := cmd.Context()

			if cfg.App.LogFormat != logx.FormatText {
				log := logx.NewLogger(cmd.ErrOrStderr(), opts.level(), cfg.App.LogFormat)
				slog.SetDefault(log)
				ctx = contextx.WithLogger(ctx, log)
			}

			ctx = contextx.WithLogger(ctx, logger(ctx).With(
				slog.String(logx.FieldAppName, cfg.App.Name),
				slog.String(logx.FieldAppVersion, cfg.App.Version),
			))

			return application.Run(ctx, cfg, opts.configPath)
		},
	}
}
