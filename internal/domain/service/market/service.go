package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"
	"github.com/samber/lo"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/catalog"
	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/errcodes"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
)

var (
	logger   = contextx.LoggerFromContextOrDefault                   //nolint:gochecknoglobals
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals
)

const (
	AllCurrencies     = "all"
	DefaultLimit      = 5
	DefaultFetchLimit = 10
	MaxPathLength     = 5

	notifiedTTL       = 30 * time.Minute
	snapshotCacheSize = 64
)

// LeagueNames лиги, которые предлагаются по умолчанию; первая — основная.
var LeagueNames = []string{"Kalandra", "Hardcore Kalandra", "Standard", "Hardcore"} //nolint:gochecknoglobals

var ErrResultsNotCached = errors.New("results not cached")

// OfferSource источник котировок (бэкенд торговой площадки или пул бэкендов).
type OfferSource interface {
	Name() string
	FetchOffers(ctx context.Context, league string, pairs []catalog.Pair, limit int) ([]entity.Offer, error)
}

type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.Snapshot) error
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
	Latest(ctx context.Context, league string) (*entity.Snapshot, error)
	List(ctx context.Context, league string, limit int) ([]entity.Snapshot, error)
}

type ResultsCache interface {
	SetResults(ctx context.Context, league string, results pathfinder.Results) error
	GetResults(ctx context.Context, league string) (pathfinder.Results, error)
}

// ScanRequest параметры сканирования. Currencies, если задан, заменяет
// Currency: котировки загружаются один раз, цепочки отбираются по каждой
// валюте из списка.
type ScanRequest struct {
	League     string   `json:"league" validate:"required"`
	Currency   string   `json:"currency"`
	Currencies []string `json:"currencies,omitempty"`
	FullBulk bool   `json:"fullbulk"`
	NoFilter bool   `json:"nofilter"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

// ScanReport итог сканирования: лучшие цепочки без повторяющихся
// контрагентов по каждой валюте.
type ScanReport struct {
	SnapshotID string
	League     string
	Currency   string
	Offers     int
	Results    pathfinder.Results
	Missing    []string
	Duration   time.Duration
}

func (r ScanReport) Empty() bool {
	return r.Results.Count() == 0
}

type Service struct {
	source          OfferSource
	catalog         *catalog.Catalog
	policy          pathfinder.Policy
	snapshots       SnapshotRepository
	results         ResultsCache
	excludedTraders []string
	maxLength       int
	fetchLimit      int
	notified        *cache.Cache
	snapshotCache   *lru.Cache[string, *entity.Snapshot]
}

func NewService(source OfferSource, items *catalog.Catalog, policy pathfinder.Policy) *Service {
	return &Service{
		source:        source,
		catalog:       items,
		policy:        policy,
		maxLength:     pathfinder.DefaultMaxLength,
		fetchLimit:    DefaultFetchLimit,
		notified:      cache.New(notifiedTTL, 2*notifiedTTL),
		snapshotCache: lo.Must(lru.New[string, *entity.Snapshot](snapshotCacheSize)),
	}
}

func (s *Service) WithSnapshots(repo SnapshotRepository) *Service {
	s.snapshots = repo
	return s
}

func (s *Service) WithResultsCache(results ResultsCache) *Service {
	s.results = results
	return s
}

func (s *Service) WithExcludedTraders(traders []string) *Service {
	s.excludedTraders = traders
	return s
}

func (s *Service) WithMaxLength(maxLength int) *Service {
	s.maxLength = maxLength
	return s
}

func (s *Service) WithFetchLimit(limit int) *Service {
	s.fetchLimit = limit
	return s
}

func (s *Service) Leagues() []string {
	return slices.Clone(LeagueNames)
}

// Scan загружает котировки, фильтрует их и ищет прибыльные цепочки.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (ScanReport, error) {
	started := time.Now()

	req, err := s.normalize(req)
	if err != nil {
		return ScanReport{}, err
	}

	ctx = contextx.WithLeague(ctx, contextx.League(req.League))

	pairs := s.catalog.Pairs(s.source.Name(), req.FullBulk)
	if err := s.catalog.Supports(pairs, s.source.Name()); err != nil {
		return ScanReport{}, domain.WrapError(err, errcodes.UnsupportedItem, "catalog does not match backend")
	}

	logger(ctx).Info("fetching offers",
		slog.String(logx.FieldLeague, req.League),
		slog.String(logx.FieldBackend, s.source.Name()),
		slog.Int("pairs", len(pairs)),
	)

	fetched, err := s.source.FetchOffers(ctx, req.League, pairs, s.fetchLimit)
	if err != nil {
		return ScanReport{}, fmt.Errorf("source.FetchOffers: %w", err)
	}

	metrics.OffersFetchedTotal.WithLabelValues(s.source.Name()).Add(float64(len(fetched)))

	offers := s.prepare(ctx, req, fetched)

	results, stats, err := pathfinder.New(s.policy).WithMaxLength(s.maxLength).RunWithStats(ctx, offers)
	if err != nil {
		return ScanReport{}, fmt.Errorf("pathfinder.Run: %w", err)
	}

	metrics.PathsEvaluatedTotal.Add(float64(stats.Paths))
	metrics.ConversionsFoundTotal.WithLabelValues(req.League).Add(float64(stats.Conversions))

	snapshot := &entity.Snapshot{
		ID:         xid.New().String(),
		League:     req.League,
		Currencies: currencies(pairs),
		Offers:     offers,
		Results:    results,
		CreatedAt:  time.Now().UTC(),
	}
	s.store(ctx, snapshot)

	report := ScanReport{
		SnapshotID: snapshot.ID,
		League:     req.League,
		Currency:   req.Currency,
		Offers:     len(offers),
		Results:    s.pick(results, req),
	}

	for _, currency := range s.requested(req, results) {
		if len(report.Results[currency]) == 0 {
			report.Missing = append(report.Missing, currency)
		}
	}

	if req.Currency == AllCurrencies && len(req.Currencies) == 0 && report.Empty() {
		report.Missing = append(report.Missing, AllCurrencies)
	}

	for _, currency := range report.Missing {
		logger(ctx).Warn(fmt.Sprintf("Could not find any profitable conversions for %s in %s", currency, req.League))
	}

	report.Duration = time.Since(started)
	metrics.ScanDurationSeconds.WithLabelValues(req.League).Observe(report.Duration.Seconds())

	logger(ctx).Info("scan finished",
		slog.String(logx.FieldLeague, req.League),
		slog.String(logx.FieldSnapshotID, snapshot.ID),
		slog.Int("offers", len(offers)),
		slog.Int("conversions", stats.Conversions),
		slog.Int64(logx.FieldDurationMs, report.Duration.Milliseconds()),
	)

	return report, nil
}

// Pathfind ищет цепочки на переданных котировках, без обращения к бэкенду.
func (s *Service) Pathfind(ctx context.Context, offers []entity.Offer, maxLength int) (pathfinder.Results, error) {
	if maxLength == 0 {
		maxLength = s.maxLength
	}

	if maxLength < 1 || maxLength > MaxPathLength {
		return nil, domain.NewError(errcodes.InvalidPathfind,
			fmt.Sprintf("max length must be between 1 and %d", MaxPathLength))
	}

	results, err := pathfinder.New(s.policy).WithMaxLength(maxLength).Run(ctx, ValidOffers(ctx, offers))
	if err != nil {
		return nil, fmt.Errorf("pathfinder.Run: %w", err)
	}

	return results, nil
}

// FreshConversions возвращает цепочки отчёта, о которых ещё не сообщали
// за последние полчаса, и запоминает их.
func (s *Service) FreshConversions(report ScanReport) []entity.Conversion {
	var fresh []entity.Conversion

	for _, asset := range report.Results.Assets() {
		for _, conversion := range report.Results[asset] {
			key := report.League + "|" + conversion.Key()

			if _, found := s.notified.Get(key); found {
				continue
			}

			s.notified.Set(key, struct{}{}, cache.DefaultExpiration)
			fresh = append(fresh, conversion)
		}
	}

	return fresh
}

// LatestResults результаты последнего сканирования лиги: из кэша,
// иначе из последнего сохранённого снимка.
func (s *Service) LatestResults(ctx context.Context, league string) (pathfinder.Results, error) {
	if s.results != nil {
		results, err := s.results.GetResults(ctx, league)
		if err == nil {
			return results, nil
		}

		if !errors.Is(err, ErrResultsNotCached) {
			logger(ctx).Warn("results cache unavailable", slog.String(logx.FieldLeague, league), logx.Error(err))
		}
	}

	if s.snapshots == nil {
		return nil, domain.Errorf(errcodes.SnapshotNotFound, "no scans for league %q", league)
	}

	snapshot, err := s.snapshots.Latest(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("snapshots.Latest: %w", err)
	}

	return snapshot.Results, nil
}

func (s *Service) Snapshot(ctx context.Context, id string) (*entity.Snapshot, error) {
	if snapshot, ok := s.snapshotCache.Get(id); ok {
		return snapshot, nil
	}

	if s.snapshots == nil {
		return nil, domain.NewError(errcodes.SnapshotNotFound, "snapshot not found")
	}

	snapshot, err := s.snapshots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("snapshots.GetByID: %w", err)
	}

	s.snapshotCache.Add(id, snapshot)

	return snapshot, nil
}

func (s *Service) Snapshots(ctx context.Context, league string, limit int) ([]entity.Snapshot, error) {
	if s.snapshots == nil {
		return nil, nil
	}

	snapshots, err := s.snapshots.List(ctx, league, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshots.List: %w", err)
	}

	return snapshots, nil
}

func (s *Service) normalize(req ScanRequest) (ScanRequest, error) {
	if err := validate.Struct(req); err != nil {
		return req, domain.WrapError(err, errcodes.InvalidPathfind, "invalid scan request")
	}

	if req.Currency == "" {
		req.Currency = AllCurrencies
	}

	if req.Currency != AllCurrencies && !s.catalog.Has(req.Currency) {
		return req, domain.Errorf(errcodes.InvalidCurrency, "unknown currency %q", req.Currency)
	}

	for _, currency := range req.Currencies {
		if !s.catalog.Has(currency) {
			return req, domain.Errorf(errcodes.InvalidCurrency, "unknown currency %q", currency)
		}
	}

	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}

	return req, nil
}

// prepare корректность и исключённые контрагенты применяются всегда,
// остальные фильтры отключаются NoFilter.
func (s *Service) prepare(ctx context.Context, req ScanRequest, fetched []entity.Offer) []entity.Offer {
	offers := ValidOffers(ctx, fetched)
	offers = ExcludeTraders(offers, s.excludedTraders)

	if !req.NoFilter {
		offers = ViableOffers(offers, s.catalog)
		offers = WithoutOutliers(offers)
	}

	return append(offers, VendorOffers(req.League)...)
}

func (s *Service) pick(results pathfinder.Results, req ScanRequest) pathfinder.Results {
	selected := make(pathfinder.Results)

	for _, currency := range s.requested(req, results) {
		if conversions := UniqueConversions(results[currency], req.Limit); len(conversions) > 0 {
			selected[currency] = conversions
		}
	}

	return selected
}

func (s *Service) requested(req ScanRequest, results pathfinder.Results) []string {
	if len(req.Currencies) > 0 {
		return req.Currencies
	}

	if req.Currency == AllCurrencies {
		return results.Assets()
	}
	return []string{req.Currency}
}

// store сохраняет снимок и кэш результатов; сбои не прерывают сканирование.
func (s *Service) store(ctx context.Context, snapshot *entity.Snapshot) {
	if s.snapshots != nil {
		if err := s.snapshots.Create(ctx, snapshot); err != nil {
			logger(ctx).Error("failed to save snapshot",
				slog.String(logx.FieldSnapshotID, snapshot.ID),
				logx.Error(err),
			)
		} else {
			s.snapshotCache.Add(snapshot.ID, snapshot)
		}
	}

	if s.results != nil {
		if err := s.results.SetResults(ctx, snapshot.League, snapshot.Results); err != nil {
			logger(ctx).Error("failed to cache results", slog.String(logx.FieldLeague, snapshot.League), logx.Error(err))
		}
	}
}

func currencies(pairs []catalog.Pair) []string {
	names := lo.Uniq(lo.Map(pairs, func(p catalog.Pair, _ int) string { return p.Have }))
	slices.Sort(names)
	return names
}
