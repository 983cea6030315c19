package probe

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/httpx"
	"currency_flip/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const DefaultCheckTimeout = 2 * time.Second

// Check проверяет доступность зависимости (postgres, redis).
type Check func(ctx context.Context) error

type Options struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	Checks       map[string]Check `json:"-"`
	CheckTimeout time.Duration    `json:"-"`
}

type state struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

type Server struct {
	listenAddress string
	options       Options
	healthz       []byte
}

func NewServer(listenAddress string, options Options) Server {
	if options.CheckTimeout <= 0 {
		options.CheckTimeout = DefaultCheckTimeout
	}

	healthz, _ := json.Marshal(state{Name: options.Name, Version: options.Version}) //nolint:errcheck,errchkjson

	return Server{
		listenAddress: listenAddress,
		options:       options,
		healthz:       healthz,
	}
}

func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handlerHealthz)
	mux.HandleFunc("/ready", s.handlerReady)

	return mux
}

func (s Server) Run(ctx context.Context) error {
	//nolint:exhaustruct
	return httpx.Serve(ctx, "probe", &http.Server{Addr: s.listenAddress, Handler: s.Handler()}, 0)
}

func (s Server) handlerHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(s.healthz) //nolint:errcheck
}

// handlerReady отвечает 503, если хотя бы одна проверка не прошла.
func (s Server) handlerReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.options.CheckTimeout)
	defer cancel()

	names := make([]string, 0, len(s.options.Checks))
	for name := range s.options.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	resp := state{Name: s.options.Name, Version: s.options.Version}

	for _, name := range names {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(names))
		}

		if err := s.options.Checks[name](ctx); err != nil {
			logger(ctx).Warn("probe check failed", slog.String("check", name), logx.Error(err))
			resp.Checks[name] = err.Error()
			status = http.StatusServiceUnavailable

			continue
		}

		resp.Checks[name] = "ok"
	}

	body, _ := json.Marshal(resp) //nolint:errcheck,errchkjson

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}
