package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"liveqa/internal/config"
	"liveqa/internal/http-server/handlers/account"
	"liveqa/internal/http-server/handlers/errors"
	"liveqa/internal/http-server/handlers/invites"
	"liveqa/internal/http-server/handlers/live"
	"liveqa/internal/http-server/handlers/questions"
	"liveqa/internal/http-server/handlers/sessions"
	"liveqa/internal/http-server/middleware/authenticate"
	"liveqa/internal/http-server/middleware/requestlog"
	"liveqa/internal/http-server/middleware/timeout"
	"liveqa/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	sessions.Core
	questions.Core
	invites.Core
	account.Core
	live.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) *Server {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      NewRouter(conf, log, handler),
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return &server
}

// NewRouter mounts every endpoint under /api.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(timeout.Timeout(conf.Listen.RequestTimeout))
	router.Use(middleware.RequestID)
	router.Use(requestlog.New(log))
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	guard := authenticate.New(log, handler)

	router.Route("/api", func(rootApi chi.Router) {
		rootApi.Route("/sessions", func(s chi.Router) {
			s.Get("/", sessions.List(log, handler))
			s.With(guard).Post("/", sessions.Create(log, handler))
			s.With(guard).Delete("/", sessions.Delete(log, handler))
			s.Route("/{slug}", func(one chi.Router) {
				one.Get("/", sessions.Get(log, handler))
				one.Get("/questions", questions.List(log, handler))
				one.Post("/questions", questions.Create(log, handler))
				one.Get("/live", live.Listen(log, handler))
			})
		})
		rootApi.Route("/questions/{id}", func(q chi.Router) {
			q.Post("/upvote", questions.Upvote(log, handler))
			q.With(guard).Patch("/", questions.Update(log, handler))
			q.With(guard).Delete("/", questions.Delete(log, handler))
		})
		rootApi.Route("/auth", func(a chi.Router) {
			a.Post("/register", account.Register(log, handler))
			a.Post("/login", account.Login(log, handler))
			a.With(guard).Post("/change-password", account.ChangePassword(log, handler))
		})
		rootApi.Route("/invites", func(i chi.Router) {
			i.With(guard).Get("/", invites.List(log, handler))
			i.With(guard).Post("/", invites.Create(log, handler))
			i.Get("/{token}/validate", invites.Validate(log, handler))
		})
	})

	return router
}

// Start blocks serving requests until the server is shut down.
func (s *Server) Start() error {
	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIp, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	s.log.Info("starting api server", slog.String("address", serverAddress))

	err = s.httpServer.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("stopping api server")
	return s.httpServer.Shutdown(ctx)
}
