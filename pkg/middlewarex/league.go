package middlewarex

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

// League кладёт лигу из параметра маршрута {league} в контекст и в логгер запроса.
func League(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		league := contextx.League(chi.URLParam(r, "league"))
		if league == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := contextx.WithLeague(r.Context(), league)
		ctx = contextx.WithLogger(ctx, logger(ctx).With(logx.Stringer(logx.FieldLeague, league)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
