package repository

import "context"

// SessionPage selects one page of sessions ordered by a store column.
type SessionPage struct {
	OrderBy   string
	Ascending bool
	Offset    int
	Limit     int
}

// SessionStore is the session side of the persistence client.
// Implementations return ErrNoRows and ErrUniqueViolation for the matching driver conditions.
type SessionStore interface {
	CountSessions(ctx context.Context) (int, error)
	ListSessions(ctx context.Context, page SessionPage) ([]SessionListRecord, error)
	InsertSession(ctx context.Context, rec *SessionRecord) (*SessionRecord, error)
	SessionBySlug(ctx context.Context, slug string) (*SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
}

type QuestionStore interface {
	InsertQuestion(ctx context.Context, rec *QuestionRecord) (*QuestionRecord, error)
	ListQuestions(ctx context.Context, sessionID string, includeAnswered bool) ([]QuestionRecord, error)
	// IncrementUpvote adds one to the counter in a single statement.
	IncrementUpvote(ctx context.Context, id string) (*UpvoteRecord, error)
	// UpdateQuestion applies column values; an empty map only reads the row.
	UpdateQuestion(ctx context.Context, id string, fields map[string]any) (*QuestionRecord, error)
	// DeleteQuestion returns the owning session id of the removed row.
	DeleteQuestion(ctx context.Context, id string) (string, error)
}

type InviteStore interface {
	InsertInvite(ctx context.Context, rec *InviteRecord) (*InviteRecord, error)
	CountInvites(ctx context.Context) (int, error)
	ListInvites(ctx context.Context, offset, limit int) ([]InviteRecord, error)
	InviteByToken(ctx context.Context, token string) (*InviteRecord, error)
	// SetInviteStatus moves an active invite to status; false when it was not active.
	SetInviteStatus(ctx context.Context, id, status string) (bool, error)
}

// Store is the full persistence client.
type Store interface {
	SessionStore
	QuestionStore
	InviteStore
	Close()
}
