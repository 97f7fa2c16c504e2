package questions

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"liveqa/entity"
	"liveqa/internal/http-server/handlers/errors"
	"liveqa/lib/api/response"
	"liveqa/lib/sl"
	"liveqa/lib/validate"
)

const (
	sessionNotFound  = "Session not found"
	questionNotFound = "Question not found"
)

type Core interface {
	ListQuestions(ctx context.Context, slug string, includeAnswered bool) ([]*entity.Question, error)
	CreateQuestion(ctx context.Context, slug string, cmd *entity.CreateQuestionCommand) (*entity.Question, error)
	UpvoteQuestion(ctx context.Context, id string) (*entity.UpvoteResult, error)
	UpdateQuestion(ctx context.Context, id string, cmd *entity.UpdateQuestionCommand) (*entity.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// List returns the ranked questions of a session. Listings are polled by
// audiences, so a short public cache is allowed.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.questions")

		slug := chi.URLParam(r, "slug")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
		)

		includeAnswered, err := entity.ParseIncludeAnswered(r.URL.Query())
		if err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		questions, err := handler.ListQuestions(r.Context(), slug, includeAnswered)
		if err != nil {
			errors.Render(w, r, logger, err, sessionNotFound)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=5")
		render.JSON(w, r, response.Items(questions))
	}
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.questions")

		slug := chi.URLParam(r, "slug")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("slug", slug),
		)

		var cmd entity.CreateQuestionCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		question, err := handler.CreateQuestion(r.Context(), slug, &cmd)
		if err != nil {
			errors.Render(w, r, logger, err, sessionNotFound)
			return
		}
		logger.With(sl.Question(question.Id)).Debug("question created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, question)
	}
}

func Upvote(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.questions")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Question(id),
		)

		if err := validate.UUID("id", id); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}
		id = strings.ToLower(id)

		result, err := handler.UpvoteQuestion(r.Context(), id)
		if err != nil {
			errors.Render(w, r, logger, err, questionNotFound)
			return
		}

		render.JSON(w, r, result)
	}
}

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.questions")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Question(id),
		)

		if err := validate.UUID("id", id); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}
		id = strings.ToLower(id)

		var cmd entity.UpdateQuestionCommand
		if err := render.Bind(r, &cmd); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}

		question, err := handler.UpdateQuestion(r.Context(), id, &cmd)
		if err != nil {
			errors.Render(w, r, logger, err, questionNotFound)
			return
		}

		render.JSON(w, r, question)
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.questions")

		id := chi.URLParam(r, "id")
		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Question(id),
		)

		if err := validate.UUID("id", id); err != nil {
			errors.BadRequest(w, r, logger, err)
			return
		}
		id = strings.ToLower(id)

		if err := handler.DeleteQuestion(r.Context(), id); err != nil {
			errors.Render(w, r, logger, err, questionNotFound)
			return
		}
		logger.Info("question deleted")

		render.NoContent(w, r)
	}
}
