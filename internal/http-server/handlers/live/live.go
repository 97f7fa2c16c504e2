package live

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"liveqa/entity"
	"liveqa/internal/http-server/handlers/errors"
	"liveqa/lib/sl"
)

type Core interface {
	SessionBySlug(ctx context.Context, slug string) (*entity.Session, error)
	Listen(w http.ResponseWriter, r *http.Request, sessionID string) error
}

// Listen upgrades the connection and streams question events of one session.
func Listen(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.live")

		slug := chi.URLParam(r, "slug")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
		)

		session, err := handler.SessionBySlug(r.Context(), slug)
		if err != nil {
			errors.Render(w, r, logger, err, "Session not found")
			return
		}

		// the upgrader has already answered the client on failure
		if err = handler.Listen(w, r, session.Id); err != nil {
			logger.Debug("websocket upgrade", sl.Err(err))
		}
	}
}
