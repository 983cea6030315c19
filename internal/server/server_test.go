package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/internal/server"
	"currency_flip/internal/worker"
	"currency_flip/pkg/errcodes"
	"currency_flip/pkg/rest"
	"currency_flip/pkg/tests"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

func edge(trader, have, want string, rate float64, paid, received int) entity.Edge {
	return entity.Edge{
		Offer: entity.Offer{
			League:         "Standard",
			Have:           have,
			Want:           want,
			Counterparty:   trader,
			ConversionRate: rate,
			Stock:          100,
		},
		Paid:     paid,
		Received: received,
	}
}

func conversion(winnings int, traders ...string) entity.Conversion {
	transactions := make([]entity.Edge, 0, len(traders))
	for _, trader := range traders {
		transactions = append(transactions, edge(trader, "Chaos Orb", "Chaos Orb", 2, 5, 10))
	}

	return entity.Conversion{
		From:         "Chaos Orb",
		To:           "Chaos Orb",
		Starting:     5,
		Ending:       5 + winnings,
		Winnings:     winnings,
		Transactions: transactions,
	}
}

type fakeFlipService struct {
	results   pathfinder.Results
	snapshots map[string]*entity.Snapshot
	maxLength int
	offers    []entity.Offer
}

func (*fakeFlipService) Leagues() []string {
	return market.LeagueNames
}

func (f *fakeFlipService) LatestResults(_ context.Context, league string) (pathfinder.Results, error) {
	if league != "Standard" {
		return nil, domain.NewError(errcodes.SnapshotNotFound, "no scans for league "+league)
	}
	return f.results, nil
}

func (f *fakeFlipService) Snapshot(_ context.Context, id string) (*entity.Snapshot, error) {
	snapshot, ok := f.snapshots[id]
	if !ok {
		return nil, domain.NewError(errcodes.SnapshotNotFound, "snapshot not found")
	}
	return snapshot, nil
}

func (f *fakeFlipService) Snapshots(_ context.Context, league string, _ int) ([]entity.Snapshot, error) {
	var out []entity.Snapshot
	for _, s := range f.snapshots {
		if s.League == league {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeFlipService) Pathfind(_ context.Context, offers []entity.Offer, maxLength int) (pathfinder.Results, error) {
	if maxLength > market.MaxPathLength {
		return nil, domain.NewError(errcodes.InvalidPathfind, "max length must be between 1 and 5")
	}

	f.offers = offers
	f.maxLength = maxLength

	return f.results, nil
}

type fakeQueue struct {
	tasks []*asynq.Task
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: worker.ScanQueue, Type: task.Type()}, nil
}

func newTestServer(svc *fakeFlipService, queue *fakeQueue) *httptest.Server {
	r := chi.NewRouter()
	server.NewServer(server.NewFlipServer(svc, queue)).RegisterRoutes(r)

	return httptest.NewServer(r)
}

func newFake() *fakeFlipService {
	return &fakeFlipService{
		results: pathfinder.Results{
			"Chaos Orb": {conversion(9, "A", "B"), conversion(5, "B"), conversion(3, "C")},
		},
		snapshots: map[string]*entity.Snapshot{
			"snap1": {
				ID:         "snap1",
				League:     "Standard",
				Currencies: []string{"Chaos Orb"},
				Offers:     []entity.Offer{{Have: "Chaos Orb", Want: "Chaos Orb"}},
				Results:    map[string][]entity.Conversion{"Chaos Orb": {conversion(9, "A")}},
			},
		},
	}
}

func TestRoutes(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		check      func(body []byte)
	}{
		{
			name:       "leagues",
			method:     http.MethodGet,
			path:       "/v1/leagues",
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Leagues
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Equal(market.LeagueNames, resp.Leagues)
			},
		},
		{
			name:       "conversions unique by trader",
			method:     http.MethodGet,
			path:       "/v1/leagues/Standard/conversions?currency=Chaos%20Orb&limit=5",
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Conversions
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Equal("Standard", resp.League)
				rq.Len(resp.Results["Chaos Orb"], 2)
				rq.Equal(9, resp.Results["Chaos Orb"][0].Winnings)
				rq.Equal(3, resp.Results["Chaos Orb"][1].Winnings)
				rq.Equal("@A Hi, I'd like to buy your 10 Chaos Orb for 5 Chaos Orb in Standard. (2x)",
					resp.Results["Chaos Orb"][0].Transactions[0].Message)
			},
		},
		{
			name:       "conversions without limit",
			method:     http.MethodGet,
			path:       "/v1/leagues/Standard/conversions",
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Conversions
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Len(resp.Results["Chaos Orb"], 3)
			},
		},
		{
			name:       "conversions for unknown currency",
			method:     http.MethodGet,
			path:       "/v1/leagues/Standard/conversions?currency=Exalted%20Orb",
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Conversions
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Empty(resp.Results)
			},
		},
		{
			name:       "conversions for league without scans",
			method:     http.MethodGet,
			path:       "/v1/leagues/Hardcore/conversions",
			wantStatus: http.StatusNotFound,
			check: func(body []byte) {
				var resp rest.Error
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Equal(rest.ErrorCode(errcodes.SnapshotNotFound), resp.Code)
			},
		},
		{
			name:       "invalid limit",
			method:     http.MethodGet,
			path:       "/v1/leagues/Standard/conversions?limit=-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "snapshot",
			method:     http.MethodGet,
			path:       "/v1/snapshots/snap1",
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Snapshot
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Equal("snap1", resp.ID)
				rq.Equal(1, resp.Offers)
				rq.Equal(1, resp.Conversions)
				rq.Len(resp.Results["Chaos Orb"], 1)
			},
		},
		{
			name:       "snapshot not found",
			method:     http.MethodGet,
			path:       "/v1/snapshots/missing",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "league snapshots",
			method:     http.MethodGet,
			path:       "/v1/leagues/Standard/snapshots?limit=10",
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Snapshots
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Len(resp.Snapshots, 1)
				rq.Nil(resp.Snapshots[0].Results)
			},
		},
		{
			name:   "pathfind",
			method: http.MethodPost,
			path:   "/v1/pathfind",
			body: `{"max_length":3,"offers":[
				{"league":"Standard","have":"Chaos Orb","want":"Chaos Orb","contact_ign":"A","conversion_rate":2,"stock":10}
			]}`,
			wantStatus: http.StatusOK,
			check: func(body []byte) {
				var resp rest.Conversions
				rq.NoError(json.Unmarshal(body, &resp))
				rq.Len(resp.Results["Chaos Orb"], 3)
			},
		},
		{
			name:       "pathfind without offers",
			method:     http.MethodPost,
			path:       "/v1/pathfind",
			body:       `{"offers":[]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "pathfind broken json",
			method:     http.MethodPost,
			path:       "/v1/pathfind",
			body:       `{"offers":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "scan without league",
			method:     http.MethodPost,
			path:       "/v1/scans",
			body:       `{"currency":"Chaos Orb"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			srv := newTestServer(newFake(), &fakeQueue{})
			defer srv.Close()

			req, err := http.NewRequestWithContext(context.Background(), tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
			rq.NoError(err)

			resp, err := http.DefaultClient.Do(req)
			rq.NoError(err)
			defer resp.Body.Close()

			rq.Equal(tc.wantStatus, resp.StatusCode)

			if tc.check != nil {
				var raw jsoniter.RawMessage
				rq.NoError(json.NewDecoder(resp.Body).Decode(&raw))
				tc.check(raw)
			}
		})
	}
}

func TestPathfindPassesOffers(t *testing.T) {
	rq := require.New(t)

	svc := newFake()
	srv := newTestServer(svc, &fakeQueue{})
	defer srv.Close()

	client := tests.NewAPIClient(srv.URL, srv.Client())

	request := rest.PathfindRequest{
		MaxLength: 3,
		Offers: []rest.Offer{{
			League:         "Standard",
			Have:           "Chaos Orb",
			Want:           "Orb of Fusing",
			ContactIGN:     "A",
			ConversionRate: 2.5,
			Stock:          10,
		}},
	}

	var conversions rest.Conversions

	resp, err := client.Post(context.Background(), "/v1/pathfind", nil, request, &conversions, nil)
	rq.NoError(err)

	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Len(conversions.Results["Chaos Orb"], 3)
	rq.Equal(3, svc.maxLength)
	rq.Equal([]entity.Offer{{
		League:         "Standard",
		Have:           "Chaos Orb",
		Want:           "Orb of Fusing",
		Counterparty:   "A",
		ConversionRate: 2.5,
		Stock:          10,
	}}, svc.offers)
}

func TestPathfindTooLong(t *testing.T) {
	rq := require.New(t)

	srv := newTestServer(newFake(), &fakeQueue{})
	defer srv.Close()

	client := tests.NewAPIClient(srv.URL, srv.Client())

	var restErr rest.Error

	resp, err := client.PostJSON(context.Background(), "/v1/pathfind", nil,
		`{"max_length":6,"offers":[{"league":"Standard","have":"Chaos Orb","want":"Chaos Orb","contact_ign":"A","conversion_rate":2,"stock":1}]}`,
		nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusBadRequest, resp.StatusCode)
	rq.NotEmpty(restErr.Message)
}

func TestGetSnapshot(t *testing.T) {
	rq := require.New(t)

	srv := newTestServer(newFake(), &fakeQueue{})
	defer srv.Close()

	client := tests.NewAPIClient(srv.URL, srv.Client())

	var snapshot rest.Snapshot

	resp, err := client.Get(context.Background(), "/v1/snapshots/snap1", nil, &snapshot, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal("Standard", snapshot.League)

	var restErr rest.Error

	resp, err = client.Get(context.Background(), "/v1/snapshots/unknown", nil, nil, &restErr)
	rq.NoError(err)
	rq.Equal(http.StatusNotFound, resp.StatusCode)
	rq.Equal(rest.ErrorCode(errcodes.SnapshotNotFound), restErr.Code)
}

func TestPostScan(t *testing.T) {
	rq := require.New(t)

	queue := &fakeQueue{}
	srv := newTestServer(newFake(), queue)
	defer srv.Close()

	client := tests.NewAPIClient(srv.URL, srv.Client())

	var task rest.ScanTask

	resp, err := client.PostJSON(context.Background(), "/v1/scans", nil,
		`{"league":"Standard","currency":"Chaos Orb","limit":3,"fullbulk":true}`, &task, nil)
	rq.NoError(err)

	rq.Equal(http.StatusAccepted, resp.StatusCode)
	rq.Equal("task-1", task.ID)
	rq.Equal(worker.ScanQueue, task.Queue)

	rq.Len(queue.tasks, 1)
	rq.Equal(worker.TypeFlipScan, queue.tasks[0].Type())

	var req market.ScanRequest
	rq.NoError(json.Unmarshal(queue.tasks[0].Payload(), &req))
	rq.Equal(market.ScanRequest{League: "Standard", Currency: "Chaos Orb", FullBulk: true, Limit: 3}, req)
}
