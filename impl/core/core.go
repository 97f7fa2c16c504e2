package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"liveqa/entity"
	"liveqa/impl/repository"
	"liveqa/internal/live"
	"liveqa/lib/sl"
)

type AuthService interface {
	Register(ctx context.Context, cmd *entity.RegisterCommand) (*entity.AuthResponse, error)
	Login(ctx context.Context, cmd *entity.LoginCommand) (*entity.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*entity.Moderator, error)
	ChangePassword(ctx context.Context, moderator *entity.Moderator, cmd *entity.ChangePasswordCommand) error
}

// Publisher delivers question events to live listeners.
type Publisher interface {
	Publish(sessionID string, event live.Event)
	Serve(w http.ResponseWriter, r *http.Request, sessionID string) error
}

type Core struct {
	sessions  *repository.SessionRepository
	questions *repository.QuestionRepository
	invites   *repository.InviteRepository
	auth      AuthService
	live      Publisher
	inviteUrl string
	log       *slog.Logger
}

func New(store repository.Store, invites *repository.InviteRepository, inviteBaseUrl string, log *slog.Logger) *Core {
	if store == nil {
		panic("store is nil")
	}
	return &Core{
		sessions:  repository.NewSessionRepository(store, log),
		questions: repository.NewQuestionRepository(store),
		invites:   invites,
		inviteUrl: strings.TrimRight(inviteBaseUrl, "/") + "/register?token=",
		log:       log.With(sl.Module("core")),
	}
}

func (c *Core) SetAuthService(auth AuthService) {
	c.auth = auth
}

func (c *Core) SetPublisher(p Publisher) {
	c.live = p
}

func (c *Core) publish(sessionID, eventType string, data interface{}) {
	if c.live == nil {
		return
	}
	c.live.Publish(sessionID, live.Event{Type: eventType, Data: data})
}

func (c *Core) ListSessions(ctx context.Context, q *entity.SessionListQuery) ([]*entity.SessionListItem, *entity.Pagination, error) {
	items, total, err := c.sessions.ListPaginated(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	p := entity.NewPagination(q.Page, q.Limit, total)
	return items, &p, nil
}

func (c *Core) SessionBySlug(ctx context.Context, slug string) (*entity.Session, error) {
	return c.sessions.GetBySlug(ctx, slug)
}

func (c *Core) CreateSession(ctx context.Context, cmd *entity.CreateSessionCommand) (*entity.Session, error) {
	session, err := c.sessions.Create(ctx, cmd)
	if err != nil {
		return nil, err
	}
	c.log.Info("session created",
		sl.Session(session.Id),
		slog.String("slug", session.UniqueUrlSlug),
	)
	return session, nil
}

func (c *Core) DeleteSession(ctx context.Context, id string) error {
	if err := c.sessions.Delete(ctx, id); err != nil {
		return err
	}
	c.log.Info("session deleted", sl.Session(id))
	return nil
}

func (c *Core) ListQuestions(ctx context.Context, slug string, includeAnswered bool) ([]*entity.Question, error) {
	session, err := c.sessions.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return c.questions.ListBySession(ctx, session.Id, includeAnswered)
}

func (c *Core) CreateQuestion(ctx context.Context, slug string, cmd *entity.CreateQuestionCommand) (*entity.Question, error) {
	session, err := c.sessions.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	question, err := c.questions.Create(ctx, session.Id, cmd)
	if err != nil {
		return nil, err
	}
	c.publish(session.Id, live.EventQuestionCreated, question)
	return question, nil
}

func (c *Core) UpvoteQuestion(ctx context.Context, id string) (*entity.UpvoteResult, error) {
	result, err := c.questions.Upvote(ctx, id)
	if err != nil {
		return nil, err
	}
	c.publish(result.SessionId, live.EventQuestionUpvoted, result)
	return result, nil
}

func (c *Core) UpdateQuestion(ctx context.Context, id string, cmd *entity.UpdateQuestionCommand) (*entity.Question, error) {
	question, err := c.questions.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	if !cmd.IsEmpty() {
		c.publish(question.SessionId, live.EventQuestionUpdated, question)
	}
	return question, nil
}

func (c *Core) DeleteQuestion(ctx context.Context, id string) error {
	sessionID, err := c.questions.Delete(ctx, id)
	if err != nil {
		return err
	}
	c.log.Info("question deleted", sl.Question(id), sl.Session(sessionID))
	c.publish(sessionID, live.EventQuestionDeleted, map[string]string{"id": id})
	return nil
}

// Listen streams live events of the session to the caller.
func (c *Core) Listen(w http.ResponseWriter, r *http.Request, sessionID string) error {
	if c.live == nil {
		return fmt.Errorf("live updates not connected")
	}
	return c.live.Serve(w, r, sessionID)
}

func (c *Core) Register(ctx context.Context, cmd *entity.RegisterCommand) (*entity.AuthResponse, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.Register(ctx, cmd)
}

func (c *Core) Login(ctx context.Context, cmd *entity.LoginCommand) (*entity.AuthResponse, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.Login(ctx, cmd)
}

func (c *Core) ChangePassword(ctx context.Context, moderator *entity.Moderator, cmd *entity.ChangePasswordCommand) error {
	if c.auth == nil {
		return fmt.Errorf("auth service not connected")
	}
	return c.auth.ChangePassword(ctx, moderator, cmd)
}

func (c *Core) AuthenticateByToken(ctx context.Context, token string) (*entity.Moderator, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.Authenticate(ctx, token)
}

// CreateInvite issues an invite; moderator is nil for invites requested outside the API.
func (c *Core) CreateInvite(ctx context.Context, moderator *entity.Moderator) (*entity.InviteWithUrl, error) {
	var moderatorID *string
	if moderator != nil {
		id := moderator.Id
		moderatorID = &id
	}
	invite, err := c.invites.Create(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	c.log.Info("invite created", slog.String("invite_id", invite.Id))
	return &entity.InviteWithUrl{
		Invite:    *invite,
		InviteUrl: c.inviteUrl + url.QueryEscape(invite.Token),
	}, nil
}

func (c *Core) ListInvites(ctx context.Context, q *entity.PageQuery) ([]*entity.Invite, *entity.Pagination, error) {
	invites, total, err := c.invites.ListPaginated(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	p := entity.NewPagination(q.Page, q.Limit, total)
	return invites, &p, nil
}

func (c *Core) ValidateInvite(ctx context.Context, token string) (*entity.InviteValidation, error) {
	return c.invites.Validate(ctx, token)
}
