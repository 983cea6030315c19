package market_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/catalog"
	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/policy"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/pkg/errcodes"
)

type fakeSource struct {
	offers []entity.Offer
	err    error
	pairs  int
	calls  int
}

func (f *fakeSource) Name() string {
	return "poeofficial"
}

func (f *fakeSource) FetchOffers(_ context.Context, _ string, pairs []catalog.Pair, _ int) ([]entity.Offer, error) {
	f.pairs = len(pairs)
	f.calls++
	return f.offers, f.err
}

type memorySnapshots struct {
	mu        sync.Mutex
	snapshots []entity.Snapshot
	reads     int
}

func (m *memorySnapshots) Create(_ context.Context, snapshot *entity.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots = append(m.snapshots, *snapshot)
	return nil
}

func (m *memorySnapshots) GetByID(_ context.Context, id string) (*entity.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	for _, s := range m.snapshots {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, domain.NewError(errcodes.SnapshotNotFound, "snapshot not found")
}

func (m *memorySnapshots) Latest(_ context.Context, league string) (*entity.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].League == league {
			return &m.snapshots[i], nil
		}
	}
	return nil, domain.NewError(errcodes.SnapshotNotFound, "snapshot not found")
}

func (m *memorySnapshots) List(_ context.Context, league string, limit int) ([]entity.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var list []entity.Snapshot
	for _, s := range m.snapshots {
		if s.League == league && len(list) < limit {
			list = append(list, s)
		}
	}
	return list, nil
}

type memoryResults map[string]pathfinder.Results

func (m memoryResults) SetResults(_ context.Context, league string, results pathfinder.Results) error {
	m[league] = results
	return nil
}

func (m memoryResults) GetResults(_ context.Context, league string) (pathfinder.Results, error) {
	results, ok := m[league]
	if !ok {
		return nil, market.ErrResultsNotCached
	}
	return results, nil
}

func scanOffers() []entity.Offer {
	return []entity.Offer{
		offer("Chaos Orb", "Orb of Fusing", "fusing_seller", 2, 10),
		offer("Orb of Fusing", "Chaos Orb", "chaos_seller", 0.75, 100),
		offer("Orb of Fusing", "Chaos Orb", "Scammer", 5, 100),
	}
}

func newService(t *testing.T, source market.OfferSource) (*market.Service, *memorySnapshots, memoryResults) {
	t.Helper()

	items, err := catalog.Default()
	require.NoError(t, err)

	snapshots := &memorySnapshots{}
	results := memoryResults{}

	svc := market.NewService(source, items, policy.Default()).
		WithSnapshots(snapshots).
		WithResultsCache(results).
		WithExcludedTraders([]string{"Scammer"})

	return svc, snapshots, results
}

func TestScan(t *testing.T) {
	testCases := []struct {
		name            string
		req             market.ScanRequest
		expectedAssets  []string
		expectedMissing []string
	}{
		{
			name:           "all currencies",
			req:            market.ScanRequest{League: "Kalandra"},
			expectedAssets: []string{"Chaos Orb", "Orb of Fusing"},
		},
		{
			name:           "single currency",
			req:            market.ScanRequest{League: "Kalandra", Currency: "Chaos Orb", Limit: 1},
			expectedAssets: []string{"Chaos Orb"},
		},
		{
			name:            "currency without conversions",
			req:             market.ScanRequest{League: "Kalandra", Currency: "Exalted Orb", FullBulk: true},
			expectedAssets:  nil,
			expectedMissing: []string{"Exalted Orb"},
		},
		{
			name: "watched currencies",
			req: market.ScanRequest{
				League:     "Kalandra",
				Currency:   market.AllCurrencies,
				Currencies: []string{"Chaos Orb", "Exalted Orb"},
			},
			expectedAssets:  []string{"Chaos Orb"},
			expectedMissing: []string{"Exalted Orb"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)
			ctx := context.Background()

			source := &fakeSource{offers: scanOffers()}
			svc, snapshots, results := newService(t, source)

			report, err := svc.Scan(ctx, tc.req)
			rq.NoError(err)
			rq.NotEmpty(report.SnapshotID)
			rq.Equal("Kalandra", report.League)
			rq.Equal(tc.expectedAssets, report.Results.Assets())
			rq.Equal(tc.expectedMissing, report.Missing)
			rq.Positive(source.pairs)
			rq.Equal(1, source.calls)

			for _, conversions := range report.Results {
				for _, c := range conversions {
					rq.Positive(c.Winnings)
					rq.NotContains(c.Traders(), "Scammer")
				}
			}

			rq.Len(snapshots.snapshots, 1)
			stored := snapshots.snapshots[0]
			rq.Equal(report.SnapshotID, stored.ID)
			rq.Contains(stored.Currencies, "Chaos Orb")
			rq.Len(stored.Offers, 2+len(market.VendorOffers("Kalandra")))

			cached, err := svc.LatestResults(ctx, "Kalandra")
			rq.NoError(err)
			rq.Equal(results["Kalandra"], cached)
			rq.Len(cached["Chaos Orb"], 1)
		})
	}
}

func TestScanNoFilterKeepsOutliers(t *testing.T) {
	rq := require.New(t)

	source := &fakeSource{offers: []entity.Offer{
		offer("Exalted Orb", "Chaos Orb", "a", 150, 1000),
		offer("Chaos Orb", "Exalted Orb", "too_good", 2, 10),
	}}
	svc, _, _ := newService(t, source)

	report, err := svc.Scan(context.Background(), market.ScanRequest{League: "Standard"})
	rq.NoError(err)
	rq.Equal([]string{market.AllCurrencies}, report.Missing)

	report, err = svc.Scan(context.Background(), market.ScanRequest{League: "Standard", NoFilter: true})
	rq.NoError(err)
	rq.NotEmpty(report.Results["Chaos Orb"])
}

func TestScanErrors(t *testing.T) {
	testCases := []struct {
		name         string
		req          market.ScanRequest
		sourceErr    error
		expectedCode string
	}{
		{name: "missing league", req: market.ScanRequest{}, expectedCode: string(errcodes.InvalidPathfind)},
		{name: "negative limit", req: market.ScanRequest{League: "Standard", Limit: -1}, expectedCode: string(errcodes.InvalidPathfind)},
		{name: "unknown currency", req: market.ScanRequest{League: "Standard", Currency: "Mirror of Kalandra"}, expectedCode: string(errcodes.InvalidCurrency)},
		{name: "unknown watched currency", req: market.ScanRequest{League: "Standard", Currencies: []string{"Chaos Orb", "Mirror of Kalandra"}}, expectedCode: string(errcodes.InvalidCurrency)},
		{name: "backend failure", req: market.ScanRequest{League: "Standard"}, sourceErr: errors.New("rate limited")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			svc, _, _ := newService(t, &fakeSource{err: tc.sourceErr})

			_, err := svc.Scan(context.Background(), tc.req)
			rq.Error(err)

			if tc.sourceErr != nil {
				rq.ErrorIs(err, tc.sourceErr)
				return
			}

			code, ok := domain.GetCode(err)
			rq.True(ok)
			rq.Equal(tc.expectedCode, string(code))
		})
	}
}

func TestFreshConversions(t *testing.T) {
	rq := require.New(t)

	svc, _, _ := newService(t, &fakeSource{offers: scanOffers()})

	report, err := svc.Scan(context.Background(), market.ScanRequest{League: "Kalandra"})
	rq.NoError(err)

	rq.Len(svc.FreshConversions(report), 2)
	rq.Empty(svc.FreshConversions(report))

	report.League = "Standard"
	rq.Len(svc.FreshConversions(report), 2)
}

func TestSnapshot(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, snapshots, results := newService(t, &fakeSource{offers: scanOffers()})

	report, err := svc.Scan(ctx, market.ScanRequest{League: "Kalandra"})
	rq.NoError(err)

	snapshot, err := svc.Snapshot(ctx, report.SnapshotID)
	rq.NoError(err)
	rq.Equal("Kalandra", snapshot.League)
	rq.Equal(0, snapshots.reads)

	_, err = svc.Snapshot(ctx, "unknown")
	rq.True(domain.HasCode(err, errcodes.SnapshotNotFound))

	delete(results, "Kalandra")
	latest, err := svc.LatestResults(ctx, "Kalandra")
	rq.NoError(err)
	rq.Equal(snapshot.Results, latest)

	_, err = svc.LatestResults(ctx, "Hardcore")
	rq.True(domain.HasCode(err, errcodes.SnapshotNotFound))

	list, err := svc.Snapshots(ctx, "Kalandra", 10)
	rq.NoError(err)
	rq.Len(list, 1)
}

func TestPathfind(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, _, _ := newService(t, &fakeSource{})

	results, err := svc.Pathfind(ctx, scanOffers(), 0)
	rq.NoError(err)
	rq.Equal([]string{"Chaos Orb", "Orb of Fusing"}, results.Assets())

	_, err = svc.Pathfind(ctx, scanOffers(), market.MaxPathLength+1)
	rq.True(domain.HasCode(err, errcodes.InvalidPathfind))

	rq.Equal(market.LeagueNames, svc.Leagues())
}
