package backend_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"currency_flip/internal/domain/catalog"
	"currency_flip/internal/domain/entity"
	"currency_flip/internal/infrastructure/backend"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const fetchBody = `{"result":[
	{"id":"a1","listing":{"account":{"name":"acc1","lastCharacterName":"Seller_One"},
		"price":{"exchange":{"currency":"chaos","amount":10},"item":{"currency":"alt","amount":37,"stock":500}}}},
	null,
	{"id":"a2","listing":{"account":{"name":"acc2","lastCharacterName":"Seller_Two"},
		"price":{"exchange":{"currency":"chaos","amount":3},"item":{"currency":"alt","amount":1,"stock":12}}}}
]}`

type tradeServer struct {
	searches  int
	fetchPath string
	query     string
	body      map[string]any
	cookie    string
}

func (s *tradeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("POESESSID"); err == nil {
			s.cookie = c.Value
		}

		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/trade/exchange/"):
			s.searches++

			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, &s.body))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"q42","result":["a1","a2","a3","a4"]}`))
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/trade/fetch/"):
			s.fetchPath = r.URL.Path
			s.query = r.URL.Query().Get("query")

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(fetchBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestPoeOfficialFetchPair(t *testing.T) {
	rq := require.New(t)

	ts := &tradeServer{}
	srv := httptest.NewServer(ts.handler(t))
	defer srv.Close()

	items := lo.Must(catalog.Default())
	client := backend.NewPoeOfficial(srv.URL, items).WithSession("secret-session")

	offers, err := client.FetchPair(context.Background(), backend.Task{
		League: "Standard",
		Have:   "Chaos Orb",
		Want:   "Orb of Alteration",
		Limit:  2,
	})
	rq.NoError(err)

	rq.Equal(1, ts.searches)
	rq.Equal("/api/trade/fetch/a1,a2", ts.fetchPath)
	rq.Equal("q42", ts.query)
	rq.Equal("secret-session", ts.cookie)

	exchange := ts.body["exchange"].(map[string]any)
	rq.Equal([]any{"chaos"}, exchange["have"])
	rq.Equal([]any{"alt"}, exchange["want"])
	rq.Equal(map[string]any{"option": "online"}, exchange["status"])

	rq.Equal([]entity.Offer{
		{League: "Standard", Have: "Chaos Orb", Want: "Orb of Alteration", Counterparty: "Seller_One", ConversionRate: 3.7, Stock: 500},
		{League: "Standard", Have: "Chaos Orb", Want: "Orb of Alteration", Counterparty: "Seller_Two", ConversionRate: 0.3333, Stock: 12},
	}, offers)
}

func TestPoeOfficialFetchPairErrors(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name    string
		have    string
		status  int
		wantErr error
	}{
		{
			name:    "rate limited",
			have:    "Chaos Orb",
			status:  http.StatusTooManyRequests,
			wantErr: backend.ErrRateLimited,
		},
		{
			name:    "server error",
			have:    "Chaos Orb",
			status:  http.StatusInternalServerError,
			wantErr: backend.ErrBadResponse,
		},
		{
			name:    "unknown item",
			have:    "Mirror of Kalandra",
			status:  http.StatusOK,
			wantErr: backend.ErrUnsupportedPair,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error":{"code":3,"message":"Rate limit exceeded"}}`))
			}))
			defer srv.Close()

			client := backend.NewPoeOfficial(srv.URL, lo.Must(catalog.Default()))

			_, err := client.FetchPair(context.Background(), backend.Task{
				League: "Standard",
				Have:   tc.have,
				Want:   "Exalted Orb",
				Limit:  10,
			})
			rq.ErrorIs(err, tc.wantErr)
		})
	}
}

func TestPoeOfficialNoResults(t *testing.T) {
	rq := require.New(t)

	fetched := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fetched = true
		}
		w.Write([]byte(`{"id":"q1","result":[]}`))
	}))
	defer srv.Close()

	client := backend.NewPoeOfficial(srv.URL, lo.Must(catalog.Default()))

	offers, err := client.FetchPair(context.Background(), backend.Task{
		League: "Standard",
		Have:   "Chaos Orb",
		Want:   "Exalted Orb",
		Limit:  10,
	})
	rq.NoError(err)
	rq.Empty(offers)
	rq.False(fetched)
}
