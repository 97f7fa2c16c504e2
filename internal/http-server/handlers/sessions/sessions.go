package sessions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"liveqa/entity"
	"liveqa/internal/http-server/handlers/errors"
	"liveqa/lib/api/response"
	"liveqa/lib/sl"
	"liveqa/lib/validate"
)

const notFound = "Session not found"

type Core interface {
	ListSessions(ctx context.Context, q *entity.SessionListQuery) ([]*entity.SessionListItem, *entity.Pagination, error)
	SessionBySlug(ctx context.Context, slug string) (*entity.Session, error)
	CreateSession(ctx context.Context, cmd *entity.CreateSessionCommand) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.sessions")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q, err := entity.ParseSessionListQuery(r.URL.Query())
		if err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		items, pagination, err := handler.ListSessions(r.Context(), q)
		if err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}

		render.JSON(w, r, response.Page(items, pagination))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.sessions")

		slug := chi.URLParam(r, "slug")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
		)

		if err := validate.Var("slug", slug, "required,max=255"); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		session, err := handler.SessionBySlug(r.Context(), slug)
		if err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}

		render.JSON(w, r, session)
	}
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.sessions")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var cmd entity.CreateSessionCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		session, err := handler.CreateSession(r.Context(), &cmd)
		if err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}
		logger.With(
			slog.String("id", session.Id),
			slog.String("slug", session.UniqueUrlSlug),
		).Info("session created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, session)
	}
}

// Delete removes a session by the id in the request body; questions go with it.
func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.sessions")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var cmd entity.DeleteSessionCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		if err := handler.DeleteSession(r.Context(), cmd.Id); err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}
		logger.With(slog.String("id", cmd.Id)).Info("session deleted")

		render.NoContent(w, r)
	}
}
