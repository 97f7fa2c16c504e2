package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"liveqa/entity"
	"liveqa/internal/http-server/handlers/errors"
	"liveqa/lib/api/cont"
	"liveqa/lib/api/response"
	"liveqa/lib/sl"
)

type Core interface {
	Register(ctx context.Context, cmd *entity.RegisterCommand) (*entity.AuthResponse, error)
	Login(ctx context.Context, cmd *entity.LoginCommand) (*entity.AuthResponse, error)
	ChangePassword(ctx context.Context, moderator *entity.Moderator, cmd *entity.ChangePasswordCommand) error
}

func Register(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.account")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var cmd entity.RegisterCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}
		logger = logger.With(slog.String("email", cmd.Email))

		result, err := handler.Register(r.Context(), &cmd)
		if err != nil {
			errors.Render(w, r, logger, err, "Invite not found")
			return
		}
		logger.Info("moderator registered")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, result)
	}
}

func Login(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.account")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var cmd entity.LoginCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}
		logger = logger.With(slog.String("email", cmd.Email))

		result, err := handler.Login(r.Context(), &cmd)
		if err != nil {
			errors.Render(w, r, logger, err, "Moderator not found")
			return
		}
		logger.Debug("moderator logged in")

		render.JSON(w, r, result)
	}
}

// ChangePassword runs behind the authentication guard.
func ChangePassword(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.account")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		moderator := cont.GetModerator(r.Context())
		if moderator == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}
		logger = logger.With(slog.String("moderator_id", moderator.Id))

		var cmd entity.ChangePasswordCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		if err := handler.ChangePassword(r.Context(), moderator, &cmd); err != nil {
			errors.Render(w, r, logger, err, "Moderator not found")
			return
		}
		logger.Info("password changed")

		render.NoContent(w, r)
	}
}
