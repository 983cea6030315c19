package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"currency_flip/internal/domain/entity"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/httpx"
	"currency_flip/pkg/logx"
)

var (
	logger = contextx.LoggerFromContextOrDefault         //nolint:gochecknoglobals
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals
)

const (
	PoeOfficialName = "poeofficial"

	DefaultPoeOfficialURL = "https://www.pathofexile.com"

	sessionCookie  = "POESESSID"
	requestTimeout = 15 * time.Second
	logFieldMaxLen = 2048
)

var (
	ErrRateLimited     = errors.New("rate limited")
	ErrBadResponse     = errors.New("bad response")
	ErrUnsupportedPair = errors.New("unsupported pair")
)

// ItemMapper переводит название предмета в идентификатор бэкенда.
type ItemMapper interface {
	MapItem(name, backend string) (string, error)
}

// PoeOfficial клиент биржи обмена официального торгового сайта.
type PoeOfficial struct {
	baseURL   string
	items     ItemMapper
	client    *http.Client
	userAgent string
}

func NewPoeOfficial(baseURL string, items ItemMapper) *PoeOfficial {
	return &PoeOfficial{
		baseURL:   strings.TrimRight(baseURL, "/"),
		items:     items,
		client:    NewHTTPClient(""),
		userAgent: "currency_flip/1.0",
	}
}

// NewHTTPClient собирает клиент с логированием запросов; sessionID
// передаётся cookie, если задан.
func NewHTTPClient(sessionID string) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport

	transport = httpx.NewSessionCookieRoundTripper(transport, sessionCookie, sessionID)
	transport = httpx.NewLoggingRoundTripper(transport,
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		httpx.WithLogFieldMaxLen(logFieldMaxLen),
		httpx.WithLogLevel(slog.LevelDebug),
	)

	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}
}

func (p *PoeOfficial) WithHTTPClient(client *http.Client) *PoeOfficial {
	p.client = client
	return p
}

func (p *PoeOfficial) WithSession(sessionID string) *PoeOfficial {
	p.client = NewHTTPClient(sessionID)
	return p
}

func (p *PoeOfficial) Name() string {
	return PoeOfficialName
}

type exchangeQuery struct {
	Exchange exchangeFilter `json:"exchange"`
}

type exchangeFilter struct {
	Status exchangeStatus `json:"status"`
	Have   []string       `json:"have"`
	Want   []string       `json:"want"`
}

type exchangeStatus struct {
	Option string `json:"option"`
}

type exchangeSearchResponse struct {
	ID     string   `json:"id"`
	Result []string `json:"result"`
}

type fetchResponse struct {
	Result []*listingResult `json:"result"`
}

type listingResult struct {
	ID      string  `json:"id"`
	Listing listing `json:"listing"`
}

type listing struct {
	Account struct {
		Name              string `json:"name"`
		LastCharacterName string `json:"lastCharacterName"`
	} `json:"account"`
	Price struct {
		Exchange struct {
			Currency string  `json:"currency"`
			Amount   float64 `json:"amount"`
		} `json:"exchange"`
		Item struct {
			Currency string  `json:"currency"`
			Amount   float64 `json:"amount"`
			Stock    int     `json:"stock"`
		} `json:"item"`
	} `json:"price"`
}

// FetchPair ищет предложения «отдать Have, получить Want» и загружает
// первые task.Limit из них.
func (p *PoeOfficial) FetchPair(ctx context.Context, task Task) ([]entity.Offer, error) {
	have, err := p.items.MapItem(task.Have, PoeOfficialName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedPair, err)
	}

	want, err := p.items.MapItem(task.Want, PoeOfficialName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedPair, err)
	}

	search, err := p.search(ctx, task.League, have, want)
	if err != nil {
		return nil, fmt.Errorf("search %s -> %s: %w", task.Have, task.Want, err)
	}

	ids := search.Result
	if len(ids) == 0 {
		return nil, nil
	}

	if task.Limit > 0 && len(ids) > task.Limit {
		ids = ids[:task.Limit]
	}

	listings, err := p.fetch(ctx, search.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch %s -> %s: %w", task.Have, task.Want, err)
	}

	offers := make([]entity.Offer, 0, len(listings))
	for _, l := range listings {
		if l == nil || l.Listing.Price.Exchange.Amount <= 0 {
			continue
		}

		offers = append(offers, entity.Offer{
			League:         task.League,
			Have:           task.Have,
			Want:           task.Want,
			Counterparty:   l.Listing.Account.LastCharacterName,
			ConversionRate: roundRate(l.Listing.Price.Item.Amount / l.Listing.Price.Exchange.Amount),
			Stock:          l.Listing.Price.Item.Stock,
		})
	}

	return offers, nil
}

func (p *PoeOfficial) search(ctx context.Context, league, have, want string) (*exchangeSearchResponse, error) {
	body, err := json.Marshal(exchangeQuery{
		Exchange: exchangeFilter{
			Status: exchangeStatus{Option: "online"},
			Have:   []string{have},
			Want:   []string{want},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	endpoint := p.baseURL + "/api/trade/exchange/" + url.PathEscape(league)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp exchangeSearchResponse
	if err := p.do(req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (p *PoeOfficial) fetch(ctx context.Context, queryID string, ids []string) ([]*listingResult, error) {
	endpoint := fmt.Sprintf("%s/api/trade/fetch/%s?query=%s&exchange",
		p.baseURL, strings.Join(ids, ","), url.QueryEscape(queryID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	var resp fetchResponse
	if err := p.do(req, &resp); err != nil {
		return nil, err
	}

	return resp.Result, nil
}

func (p *PoeOfficial) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		logger(req.Context()).Warn("rate limited",
			slog.String(logx.FieldBackend, PoeOfficialName),
			slog.String("retry-after", resp.Header.Get("Retry-After")),
		)
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrBadResponse, resp.Status, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

// roundRate округляет курс до четырёх знаков, как его показывает сайт.
func roundRate(rate float64) float64 {
	return math.Round(rate*10_000) / 10_000
}
