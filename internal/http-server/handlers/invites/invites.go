package invites

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"liveqa/entity"
	"liveqa/internal/http-server/handlers/errors"
	"liveqa/lib/api/cont"
	"liveqa/lib/api/response"
	"liveqa/lib/sl"
	"liveqa/lib/validate"
)

const notFound = "Invite not found"

type Core interface {
	CreateInvite(ctx context.Context, moderator *entity.Moderator) (*entity.InviteWithUrl, error)
	ListInvites(ctx context.Context, q *entity.PageQuery) ([]*entity.Invite, *entity.Pagination, error)
	ValidateInvite(ctx context.Context, token string) (*entity.InviteValidation, error)
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.invites")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q, err := entity.ParsePageQuery(r.URL.Query())
		if err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		items, pagination, err := handler.ListInvites(r.Context(), q)
		if err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}

		render.JSON(w, r, response.Page(items, pagination))
	}
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.invites")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		moderator := cont.GetModerator(r.Context())
		if moderator != nil {
			logger = logger.With(slog.String("moderator", moderator.Email))
		}

		invite, err := handler.CreateInvite(r.Context(), moderator)
		if err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}
		logger.With(slog.String("id", invite.Id)).Info("invite created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, invite)
	}
}

// Validate reports whether a token can still be used to register.
func Validate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.invites")

		token := chi.URLParam(r, "token")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Secret("token", token),
		)

		if err := validate.Var("token", token, "required,max=255"); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		result, err := handler.ValidateInvite(r.Context(), token)
		if err != nil {
			errors.Render(w, r, logger, err, notFound)
			return
		}

		render.JSON(w, r, result)
	}
}
