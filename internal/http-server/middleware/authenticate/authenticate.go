package authenticate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"liveqa/entity"
	"liveqa/lib/api/cont"
	"liveqa/lib/api/response"
	"liveqa/lib/sl"
)

type Authenticate interface {
	AuthenticateByToken(ctx context.Context, token string) (*entity.Moderator, error)
}

// New guards moderator-only routes with a bearer token. The resolved
// moderator is stored in the request context.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {

		fn := func(w http.ResponseWriter, r *http.Request) {
			logger := log.With(
				mod,
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			header := r.Header.Get("Authorization")
			if len(header) == 0 {
				logger.Debug("access denied", sl.Err(fmt.Errorf("authorization header not found")))
				authFailed(w, r, "Authorization header not found")
				return
			}
			token, ok := bearer(header)
			if !ok {
				logger.Debug("access denied", sl.Err(fmt.Errorf("token not found")))
				authFailed(w, r, "Token not found")
				return
			}

			if auth == nil {
				authFailed(w, r, "Unauthorized: authentication not enabled")
				return
			}

			moderator, err := auth.AuthenticateByToken(r.Context(), token)
			if err != nil {
				logger.With(sl.Secret("token", token)).Debug("access denied", sl.Err(err))
				authFailed(w, r, "Unauthorized: invalid or expired token")
				return
			}
			ctx := cont.PutModerator(r.Context(), moderator)

			w.Header().Set("X-Moderator", moderator.Id)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func authFailed(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(message))
}
