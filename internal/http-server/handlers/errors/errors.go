package errors

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"liveqa/impl/auth"
	"liveqa/impl/repository"
	"liveqa/lib/api/response"
	"liveqa/lib/sl"
	"liveqa/lib/validate"
)

func NotFound(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Requested resource not found"))
	}
}

func NotAllowed(_ *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusMethodNotAllowed)
		render.JSON(w, r, response.Error("Method not allowed"))
	}
}

// BadRequest answers a failed bind or validation; only validation details reach the client.
func BadRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Debug("invalid request", sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Invalid(err))
}

// Render maps an operation error onto its status code. notFound is the
// message used for a missing resource. Store failures are logged and
// reported without driver details.
func Render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, notFound string) {
	var ve *validate.Error
	switch {
	case stderrors.As(err, &ve):
		BadRequest(w, r, logger, err)
		return
	case stderrors.Is(err, repository.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(notFound))
		return
	case stderrors.Is(err, repository.ErrInviteInvalid):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid or inactive invite token"))
		return
	case stderrors.Is(err, repository.ErrInviteExpired):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invite token has expired"))
		return
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Invalid email or password"))
		return
	case stderrors.Is(err, auth.ErrWrongPassword):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Current password is incorrect"))
		return
	case stderrors.Is(err, auth.ErrInvalidToken):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Unauthorized"))
		return
	case stderrors.Is(err, auth.ErrModeratorExists):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("Moderator with this email already exists"))
		return
	case repository.IsStoreError(err):
		logger.Error("store failure", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Internal server error"))
		return
	case stderrors.Is(err, repository.ErrSlugExhausted):
		logger.Error("slug generation", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Could not generate a unique session address"))
		return
	}
	logger.Error("request failed", sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error("Internal server error"))
}
