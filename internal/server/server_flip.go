package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/hibiken/asynq"

	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/domain/service/pathfinder"
	"currency_flip/internal/worker"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/errcodes"
	"currency_flip/pkg/httpx/reply"
	"currency_flip/pkg/httpx/req"
	"currency_flip/pkg/lox"
	"currency_flip/pkg/rest"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type flipService interface {
	Leagues() []string
	LatestResults(ctx context.Context, league string) (pathfinder.Results, error)
	Snapshot(ctx context.Context, id string) (*entity.Snapshot, error)
	Snapshots(ctx context.Context, league string, limit int) ([]entity.Snapshot, error)
	Pathfind(ctx context.Context, offers []entity.Offer, maxLength int) (pathfinder.Results, error)
}

type scanQueue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type FlipServer struct {
	flipService flipService
	scanQueue   scanQueue
}

func NewFlipServer(flipService flipService, scanQueue scanQueue) FlipServer {
	return FlipServer{
		flipService: flipService,
		scanQueue:   scanQueue,
	}
}

func (s FlipServer) getV1Leagues(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, rest.Leagues{Leagues: s.flipService.Leagues()})

	return nil
}

func (s FlipServer) getV1Conversions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	league := leagueOf(ctx)

	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	results, err := s.flipService.LatestResults(ctx, league)
	if err != nil {
		return fmt.Errorf("flipService.LatestResults: %w", err)
	}

	if currency := r.URL.Query().Get("currency"); currency != "" && currency != market.AllCurrencies {
		results = pathfinder.Results{currency: results[currency]}
	}

	selected := make(pathfinder.Results, len(results))
	for asset, conversions := range results {
		if limit > 0 {
			conversions = market.UniqueConversions(conversions, limit)
		}
		if len(conversions) > 0 {
			selected[asset] = conversions
		}
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Conversions{League: league, Results: newRESTResults(selected)})

	return nil
}

func (s FlipServer) getV1Snapshots(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}

	snapshots, err := s.flipService.Snapshots(ctx, leagueOf(ctx), limit)
	if err != nil {
		return fmt.Errorf("flipService.Snapshots: %w", err)
	}

	response := rest.Snapshots{Snapshots: make([]rest.Snapshot, 0, len(snapshots))}
	for _, snapshot := range snapshots {
		response.Snapshots = append(response.Snapshots, newRESTSnapshot(snapshot, false))
	}

	reply.JSON(ctx, w, http.StatusOK, response)

	return nil
}

func (s FlipServer) getV1Snapshot(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	snapshot, err := s.flipService.Snapshot(ctx, r.PathValue("id"))
	if err != nil {
		return fmt.Errorf("flipService.Snapshot: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSnapshot(*snapshot, true))

	return nil
}

func (s FlipServer) postV1Pathfind(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.PathfindRequest

	if err := req.Read(w, r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	results, err := s.flipService.Pathfind(ctx, lox.Map(request.Offers, newDomainOffer), request.MaxLength)
	if err != nil {
		return fmt.Errorf("flipService.Pathfind: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Conversions{Results: newRESTResults(results)})

	return nil
}

func (s FlipServer) postV1Scans(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ScanRequest

	if err := req.Read(w, r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	task, err := worker.NewFlipScanTask(newDomainScanRequest(request))
	if err != nil {
		return fmt.Errorf("worker.NewFlipScanTask: %w", err)
	}

	info, err := s.scanQueue.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("scanQueue.EnqueueContext: %w", err)
	}

	reply.JSON(ctx, w, http.StatusAccepted, rest.ScanTask{ID: info.ID, Queue: info.Queue})

	return nil
}

// leagueOf читает лигу, положенную middlewarex.League; пустая строка
// отклоняется сервисом как неизвестная лига.
func leagueOf(ctx context.Context) string {
	league, err := contextx.LeagueFromContext(ctx)
	if err != nil {
		return ""
	}

	return league.String()
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, failure.NewInvalidArgumentError(
			"invalid query parameter "+name,
			failure.WithCode(errcodes.ValidationError),
			failure.WithDescription(name+" must be a non-negative integer"),
		)
	}

	return n, nil
}
