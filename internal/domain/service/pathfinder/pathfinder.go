package pathfinder

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"currency_flip/internal/domain/entity"
	"currency_flip/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// DefaultMaxLength максимальное число сделок в цепочке по умолчанию.
const DefaultMaxLength = 2

// Results найденные цепочки по стартовому активу, лучшие первыми.
type Results map[string][]entity.Conversion

// Assets возвращает активы, для которых найдена хотя бы одна цепочка.
func (r Results) Assets() []string {
	return slices.Sorted(maps.Keys(r))
}

func (r Results) Count() int {
	var n int
	for _, conversions := range r {
		n += len(conversions)
	}
	return n
}

// Stats счётчики последнего прогона.
type Stats struct {
	Offers      int
	Assets      int
	Paths       int
	Infeasible  int
	Conversions int
}

type PathFinder struct {
	policy    Policy
	maxLength int
	workers   int
}

func New(policy Policy) *PathFinder {
	return &PathFinder{
		policy:    policy,
		maxLength: DefaultMaxLength,
		workers:   runtime.GOMAXPROCS(0),
	}
}

func (p *PathFinder) WithMaxLength(maxLength int) *PathFinder {
	p.maxLength = maxLength
	return p
}

func (p *PathFinder) WithWorkers(workers int) *PathFinder {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

func (p *PathFinder) MaxLength() int {
	return p.maxLength
}

// Run ищет прибыльные циклы для каждого актива графа.
func (p *PathFinder) Run(ctx context.Context, offers []entity.Offer) (Results, error) {
	results, _, err := p.RunWithStats(ctx, offers)
	return results, err
}

// RunWithStats Run со счётчиками для метрик и логов.
func (p *PathFinder) RunWithStats(ctx context.Context, offers []entity.Offer) (Results, Stats, error) {
	graph := BuildGraph(offers)
	assets := graph.Assets()

	// Каждая горутина пишет только в свою ячейку.
	slots := make([]assetResult, len(assets))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, asset := range assets {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			res, err := p.search(graph, asset)
			if err != nil {
				return fmt.Errorf("asset %s: %w", asset, err)
			}
			slots[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("pathfinder.Run: %w", err)
	}

	stats := Stats{Offers: len(offers), Assets: len(assets)}
	results := make(Results)

	for i, asset := range assets {
		stats.Paths += slots[i].paths
		stats.Infeasible += slots[i].infeasible

		if len(slots[i].conversions) == 0 {
			continue
		}
		results[asset] = slots[i].conversions
		stats.Conversions += len(slots[i].conversions)
	}

	logger(ctx).Debug("pathfinding finished",
		slog.Int("offers", stats.Offers),
		slog.Int("assets", stats.Assets),
		slog.Int("paths", stats.Paths),
		slog.Int("conversions", stats.Conversions),
		slog.Int("max_length", p.maxLength),
	)

	return results, stats, nil
}

// Search ищет прибыльные циклы из asset в asset на готовом графе.
func (p *PathFinder) Search(graph Graph, asset string) ([]entity.Conversion, error) {
	res, err := p.search(graph, asset)
	if err != nil {
		return nil, fmt.Errorf("pathfinder.Search: %w", err)
	}
	return res.conversions, nil
}

type assetResult struct {
	conversions []entity.Conversion
	paths       int
	infeasible  int
}

func (p *PathFinder) search(graph Graph, asset string) (assetResult, error) {
	paths := FindPaths(graph, asset, asset, p.policy, p.maxLength)
	res := assetResult{paths: len(paths)}

	for _, path := range paths {
		conversion, err := BuildConversion(path, p.policy)
		if err != nil {
			return assetResult{}, err
		}

		if conversion == nil {
			res.infeasible++
			continue
		}

		if conversion.Winnings <= 0 {
			continue
		}

		res.conversions = append(res.conversions, *conversion)
	}

	SortConversions(res.conversions)

	return res, nil
}
