package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"liveqa/entity"
	"liveqa/lib/clock"
	"liveqa/lib/sl"
)

const (
	ReasonNotFound = "not_found"
	ReasonUsed     = "used"
	ReasonExpired  = "expired"
)

type InviteRepository struct {
	store InviteStore
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger
}

func NewInviteRepository(store InviteStore, ttl time.Duration, log *slog.Logger) *InviteRepository {
	return &InviteRepository{
		store: store,
		ttl:   ttl,
		now:   clock.Now,
		log:   log.With(sl.Module("repository.invite")),
	}
}

func (r *InviteRepository) SetClock(now func() time.Time) {
	r.now = now
}

// Create issues a new active invite; moderatorID is nil for invites issued outside the API.
func (r *InviteRepository) Create(ctx context.Context, moderatorID *string) (*entity.Invite, error) {
	now := r.now()
	rec, err := r.store.InsertInvite(ctx, &InviteRecord{
		Token:                uuid.New().String(),
		CreatedByModeratorID: moderatorID,
		ExpiresAt:            now.Add(r.ttl),
		Status:               string(entity.InviteActive),
		CreatedAt:            now,
	})
	if err != nil {
		return nil, wrap("failed to create invite", err)
	}
	return rec.Entity(), nil
}

func (r *InviteRepository) ListPaginated(ctx context.Context, q *entity.PageQuery) ([]*entity.Invite, int, error) {
	total, err := r.store.CountInvites(ctx)
	if err != nil {
		return nil, 0, wrap("failed to fetch invites count", err)
	}
	if q.Offset() >= total {
		return []*entity.Invite{}, total, nil
	}
	records, err := r.store.ListInvites(ctx, q.Offset(), q.Limit)
	if err != nil {
		return nil, 0, wrap("failed to fetch invites", err)
	}
	invites := make([]*entity.Invite, 0, len(records))
	for i := range records {
		invites = append(invites, records[i].Entity())
	}
	return invites, total, nil
}

// Validate reports whether a token may still be used, without changing it.
func (r *InviteRepository) Validate(ctx context.Context, token string) (*entity.InviteValidation, error) {
	rec, err := r.store.InviteByToken(ctx, token)
	if errors.Is(err, ErrNoRows) {
		return &entity.InviteValidation{Valid: false, Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return nil, wrap("failed to fetch invite", err)
	}
	invite := rec.Entity()
	switch {
	case invite.Status == entity.InviteUsed:
		return &entity.InviteValidation{Valid: false, Reason: ReasonUsed}, nil
	case invite.Status == entity.InviteExpired || invite.IsExpired(r.now()):
		return &entity.InviteValidation{Valid: false, Reason: ReasonExpired}, nil
	}
	return &entity.InviteValidation{Valid: true, ExpiresAt: &invite.ExpiresAt}, nil
}

// CheckToken returns the invite behind an active, unexpired token. A token
// found past its expiry is marked expired on the way out.
func (r *InviteRepository) CheckToken(ctx context.Context, token string) (*entity.Invite, error) {
	rec, err := r.store.InviteByToken(ctx, token)
	if errors.Is(err, ErrNoRows) {
		return nil, ErrInviteInvalid
	}
	if err != nil {
		return nil, wrap("failed to fetch invite", err)
	}
	invite := rec.Entity()
	switch invite.Status {
	case entity.InviteUsed:
		return nil, ErrInviteInvalid
	case entity.InviteExpired:
		return nil, ErrInviteExpired
	}
	if invite.IsExpired(r.now()) {
		if _, err = r.store.SetInviteStatus(ctx, invite.Id, string(entity.InviteExpired)); err != nil {
			r.log.Error("mark invite expired", slog.String("invite_id", invite.Id), sl.Err(err))
		}
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// MarkUsed consumes an active invite; a concurrent consumer makes it fail with ErrInviteInvalid.
func (r *InviteRepository) MarkUsed(ctx context.Context, id string) error {
	ok, err := r.store.SetInviteStatus(ctx, id, string(entity.InviteUsed))
	if err != nil {
		return wrap("failed to update invite", err)
	}
	if !ok {
		return ErrInviteInvalid
	}
	return nil
}
