package repository

import (
	"context"
	"errors"
	"log/slog"

	"liveqa/entity"
	"liveqa/lib/sl"
	"liveqa/lib/slug"
)

const maxSlugAttempts = 5

var sortColumns = map[string]string{
	entity.SortByCreatedAt:   "created_at",
	entity.SortBySessionDate: "session_date",
	entity.SortByName:        "name",
}

type SessionRepository struct {
	store  SessionStore
	suffix func() string
	log    *slog.Logger
}

func NewSessionRepository(store SessionStore, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		store:  store,
		suffix: slug.Suffix,
		log:    log.With(sl.Module("repository.session")),
	}
}

// SetSuffixFunc replaces the random slug suffix generator.
func (r *SessionRepository) SetSuffixFunc(f func() string) {
	r.suffix = f
}

func (r *SessionRepository) GetBySlug(ctx context.Context, slug string) (*entity.Session, error) {
	rec, err := r.store.SessionBySlug(ctx, slug)
	if errors.Is(err, ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("failed to fetch session", err)
	}
	return rec.Entity(), nil
}

// ListPaginated returns one page of sessions and the total number of sessions.
func (r *SessionRepository) ListPaginated(ctx context.Context, q *entity.SessionListQuery) ([]*entity.SessionListItem, int, error) {
	total, err := r.store.CountSessions(ctx)
	if err != nil {
		return nil, 0, wrap("failed to fetch sessions count", err)
	}
	if q.Offset() >= total {
		return []*entity.SessionListItem{}, total, nil
	}
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[entity.SortByCreatedAt]
	}
	records, err := r.store.ListSessions(ctx, SessionPage{
		OrderBy:   column,
		Ascending: q.Ascending(),
		Offset:    q.Offset(),
		Limit:     q.Limit,
	})
	if err != nil {
		return nil, 0, wrap("failed to fetch sessions", err)
	}
	items := make([]*entity.SessionListItem, 0, len(records))
	for i := range records {
		items = append(items, records[i].Entity())
	}
	return items, total, nil
}

// Create inserts a session under a freshly generated slug, regenerating the
// random suffix when the slug is already taken.
func (r *SessionRepository) Create(ctx context.Context, cmd *entity.CreateSessionCommand) (*entity.Session, error) {
	rec := &SessionRecord{
		Name:        cmd.Name,
		Speaker:     cmd.Speaker,
		Description: cmd.Description,
		SessionDate: cmd.Date(),
	}
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		rec.UniqueURLSlug = slug.Make(cmd.Name, r.suffix())
		created, err := r.store.InsertSession(ctx, rec)
		if err == nil {
			return created.Entity(), nil
		}
		if !errors.Is(err, ErrUniqueViolation) {
			return nil, wrap("failed to create session", err)
		}
		r.log.Debug("slug collision",
			slog.String("slug", rec.UniqueURLSlug),
			slog.Int("attempt", attempt),
		)
	}
	r.log.Warn("slug attempts exhausted", slog.String("name", cmd.Name))
	return nil, ErrSlugExhausted
}

// Delete removes the session; its questions go with it through the foreign key.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteSession(ctx, id); err != nil {
		return wrap("failed to delete session", err)
	}
	return nil
}
