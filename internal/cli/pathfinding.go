package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"currency_flip/internal/application"
	"currency_flip/internal/config"
	"currency_flip/internal/domain/service/market"
	"currency_flip/pkg/logx"
)

type pathfindingOptions struct {
	league    string
	currency  string
	limit     int
	fullBulk  bool
	noFilter  bool
	maxLength int
}

func newPathfindingCommand(opts *options) *cobra.Command {
	pf := &pathfindingOptions{}

	cmd := &cobra.Command{
		Use:   "pathfinding",
		Short: "Find profitable conversion paths (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.LoadStandalone()
			if err != nil {
				return fmt.Errorf("config.LoadStandalone: %w", err)
			}

			if pf.maxLength > 0 {
				cfg.Scanner.MaxLength = pf.maxLength
			}

			mkt, err := application.NewMarket(cfg, opts.configPath)
			if err != nil {
				return err
			}

			report, err := mkt.Service.Scan(ctx, market.ScanRequest{
				League:   pf.league,
				Currency: pf.currency,
				FullBulk: pf.fullBulk,
				NoFilter: pf.noFilter,
				Limit:    pf.limit,
			})
			if err != nil {
				return fmt.Errorf("market.Scan: %w", err)
			}

			logger(ctx).Debug("pathfinding finished",
				slog.String(logx.FieldSnapshotID, report.SnapshotID),
				slog.Int64(logx.FieldDurationMs, report.Duration.Milliseconds()),
			)

			return PrintReport(cmd.OutOrStdout(), report)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&pf.league, "league", market.LeagueNames[0], "league name, ie. 'Standard' or 'Hardcore Kalandra'")
	flags.StringVar(&pf.currency, "currency", market.AllCurrencies, "full name of the currency to flip, ie. 'Chaos Orb'")
	flags.IntVar(&pf.limit, "limit", market.DefaultLimit, "limit the number of displayed conversions")
	flags.BoolVar(&pf.fullBulk, "fullbulk", false, "use all supported bulk items")
	flags.BoolVar(&pf.noFilter, "nofilter", false, "disable offer filters")
	flags.IntVar(&pf.maxLength, "max-length", 0, fmt.Sprintf("maximum path length, up to %d (default from SCAN_MAX_LENGTH)", market.MaxPathLength))

	return cmd
}

// PrintReport печатает цепочки по каждой валюте в порядке выгоды.
func PrintReport(w io.Writer, report market.ScanReport) error {
	for _, asset := range report.Results.Assets() {
		for _, c := range report.Results[asset] {
			if _, err := fmt.Fprintln(w, market.FormatConversion(c)); err != nil {
				return fmt.Errorf("fmt.Fprintln: %w", err)
			}
		}
	}

	return nil
}
