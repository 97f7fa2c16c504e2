package repository

import (
	"time"

	"liveqa/entity"
)

// SessionRecord is the persisted shape of a session row.
type SessionRecord struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	Speaker       string     `db:"speaker"`
	Description   *string    `db:"description"`
	SessionDate   *time.Time `db:"session_date"`
	UniqueURLSlug string     `db:"unique_url_slug"`
	CreatedAt     time.Time  `db:"created_at"`
}

func (r *SessionRecord) Entity() *entity.Session {
	return &entity.Session{
		Id:            r.ID,
		Name:          r.Name,
		Speaker:       r.Speaker,
		Description:   r.Description,
		SessionDate:   r.SessionDate,
		UniqueUrlSlug: r.UniqueURLSlug,
		CreatedAt:     r.CreatedAt,
	}
}

func NewSessionRecord(s *entity.Session) *SessionRecord {
	return &SessionRecord{
		ID:            s.Id,
		Name:          s.Name,
		Speaker:       s.Speaker,
		Description:   s.Description,
		SessionDate:   s.SessionDate,
		UniqueURLSlug: s.UniqueUrlSlug,
		CreatedAt:     s.CreatedAt,
	}
}

// SessionListRecord is a session row joined with its question count.
type SessionListRecord struct {
	SessionRecord
	QuestionCount int `db:"question_count"`
}

func (r *SessionListRecord) Entity() *entity.SessionListItem {
	return &entity.SessionListItem{
		Session:       *r.SessionRecord.Entity(),
		QuestionCount: r.QuestionCount,
	}
}

type QuestionRecord struct {
	ID          string    `db:"id"`
	SessionID   string    `db:"session_id"`
	Content     string    `db:"content"`
	AuthorName  string    `db:"author_name"`
	IsAnswered  bool      `db:"is_answered"`
	UpvoteCount int       `db:"upvote_count"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *QuestionRecord) Entity() *entity.Question {
	return &entity.Question{
		Id:          r.ID,
		SessionId:   r.SessionID,
		Content:     r.Content,
		AuthorName:  r.AuthorName,
		IsAnswered:  r.IsAnswered,
		UpvoteCount: r.UpvoteCount,
		CreatedAt:   r.CreatedAt,
	}
}

func NewQuestionRecord(q *entity.Question) *QuestionRecord {
	return &QuestionRecord{
		ID:          q.Id,
		SessionID:   q.SessionId,
		Content:     q.Content,
		AuthorName:  q.AuthorName,
		IsAnswered:  q.IsAnswered,
		UpvoteCount: q.UpvoteCount,
		CreatedAt:   q.CreatedAt,
	}
}

// UpvoteRecord is what the store reports back after an increment.
type UpvoteRecord struct {
	ID          string `db:"id"`
	SessionID   string `db:"session_id"`
	UpvoteCount int    `db:"upvote_count"`
}

func (r *UpvoteRecord) Entity() *entity.UpvoteResult {
	return &entity.UpvoteResult{
		Id:          r.ID,
		UpvoteCount: r.UpvoteCount,
		SessionId:   r.SessionID,
	}
}

type InviteRecord struct {
	ID                   string    `db:"id"`
	Token                string    `db:"token"`
	CreatedByModeratorID *string   `db:"created_by_moderator_id"`
	ExpiresAt            time.Time `db:"expires_at"`
	Status               string    `db:"status"`
	CreatedAt            time.Time `db:"created_at"`
}

func (r *InviteRecord) Entity() *entity.Invite {
	return &entity.Invite{
		Id:                   r.ID,
		Token:                r.Token,
		CreatedByModeratorId: r.CreatedByModeratorID,
		ExpiresAt:            r.ExpiresAt,
		Status:               entity.InviteStatus(r.Status),
		CreatedAt:            r.CreatedAt,
	}
}

func NewInviteRecord(i *entity.Invite) *InviteRecord {
	return &InviteRecord{
		ID:                   i.Id,
		Token:                i.Token,
		CreatedByModeratorID: i.CreatedByModeratorId,
		ExpiresAt:            i.ExpiresAt,
		Status:               string(i.Status),
		CreatedAt:            i.CreatedAt,
	}
}
