package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// options глобальные флаги, общие для всех команд.
type options struct {
	configPath string
	debug      bool
}

// NewRootCommand собирает CLI. Без подкоманды выполняется pathfinding.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "flip",
		Short:         "Find profitable currency conversion cycles on the trade market",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log := logx.NewLogger(cmd.ErrOrStderr(), opts.level(), logx.FormatText)
			slog.SetDefault(log)

			cmd.SetContext(contextx.WithLogger(contextOf(cmd), log))
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "user config file path (default config/config.json, then config/config.default.json)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	pathfinding := newPathfindingCommand(opts)

	root.AddCommand(pathfinding, newSyncCommand(opts), newServeCommand(opts))

	root.RunE = pathfinding.RunE
	root.Flags().AddFlagSet(pathfinding.Flags())

	return root
}

func (o *options) level() slog.Level {
	if o.debug {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
