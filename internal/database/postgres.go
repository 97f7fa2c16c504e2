package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"liveqa/impl/repository"
)

const (
	sessionColumns  = "id, name, speaker, description, session_date, unique_url_slug, created_at"
	questionColumns = "id, session_id, content, author_name, is_answered, upvote_count, created_at"
	inviteColumns   = "id, token, created_by_moderator_id, expires_at, status, created_at"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// RunMigration creates missing tables and indexes.
func (p *Postgres) RunMigration(ctx context.Context) error {
	for _, s := range postgresSchema {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, normalize(err)
}

func (p *Postgres) ListSessions(ctx context.Context, page repository.SessionPage) ([]repository.SessionListRecord, error) {
	order, err := orderClause(page)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, fmt.Sprintf(
		`SELECT s.id, s.name, s.speaker, s.description, s.session_date, s.unique_url_slug, s.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.session_id = s.id) AS question_count
		 FROM sessions s
		 ORDER BY %s
		 LIMIT $1 OFFSET $2`, order),
		page.Limit, page.Offset)
	if err != nil {
		return nil, normalize(err)
	}
	defer rows.Close()

	list := make([]repository.SessionListRecord, 0, page.Limit)
	for rows.Next() {
		var rec repository.SessionListRecord
		if err = rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Speaker,
			&rec.Description,
			&rec.SessionDate,
			&rec.UniqueURLSlug,
			&rec.CreatedAt,
			&rec.QuestionCount,
		); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, normalize(rows.Err())
}

func (p *Postgres) InsertSession(ctx context.Context, rec *repository.SessionRecord) (*repository.SessionRecord, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO sessions (name, speaker, description, session_date, unique_url_slug)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+sessionColumns,
		rec.Name, rec.Speaker, rec.Description, rec.SessionDate, rec.UniqueURLSlug)
	return scanSession(row)
}

func (p *Postgres) SessionBySlug(ctx context.Context, slug string) (*repository.SessionRecord, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE unique_url_slug = $1`,
		slug)
	return scanSession(row)
}

func (p *Postgres) DeleteSession(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return normalize(err)
}

func (p *Postgres) InsertQuestion(ctx context.Context, rec *repository.QuestionRecord) (*repository.QuestionRecord, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO questions (session_id, content, author_name)
		 VALUES ($1, $2, $3)
		 RETURNING `+questionColumns,
		rec.SessionID, rec.Content, rec.AuthorName)
	return scanQuestion(row)
}

func (p *Postgres) ListQuestions(ctx context.Context, sessionID string, includeAnswered bool) ([]repository.QuestionRecord, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE session_id = $1`
	if !includeAnswered {
		query += ` AND is_answered = FALSE`
	}
	query += ` ORDER BY upvote_count DESC, created_at ASC`
	rows, err := p.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, normalize(err)
	}
	defer rows.Close()

	list := make([]repository.QuestionRecord, 0)
	for rows.Next() {
		rec, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, normalize(rows.Err())
}

func (p *Postgres) IncrementUpvote(ctx context.Context, id string) (*repository.UpvoteRecord, error) {
	var rec repository.UpvoteRecord
	err := p.pool.QueryRow(ctx,
		`UPDATE questions SET upvote_count = COALESCE(upvote_count, 0) + 1
		 WHERE id = $1
		 RETURNING id, session_id, upvote_count`,
		id).Scan(&rec.ID, &rec.SessionID, &rec.UpvoteCount)
	if err != nil {
		return nil, normalize(err)
	}
	return &rec, nil
}

func (p *Postgres) UpdateQuestion(ctx context.Context, id string, fields map[string]any) (*repository.QuestionRecord, error) {
	if len(fields) == 0 {
		row := p.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
		return scanQuestion(row)
	}
	set, args, err := setClause(fields, dollar)
	if err != nil {
		return nil, err
	}
	args = append(args, id)
	row := p.pool.QueryRow(ctx, fmt.Sprintf(
		`UPDATE questions SET %s WHERE id = $%d RETURNING %s`, set, len(args), questionColumns),
		args...)
	return scanQuestion(row)
}

func (p *Postgres) DeleteQuestion(ctx context.Context, id string) (string, error) {
	var sessionID string
	err := p.pool.QueryRow(ctx,
		`DELETE FROM questions WHERE id = $1 RETURNING session_id`, id).Scan(&sessionID)
	return sessionID, normalize(err)
}

func (p *Postgres) InsertInvite(ctx context.Context, rec *repository.InviteRecord) (*repository.InviteRecord, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO invites (token, created_by_moderator_id, expires_at, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+inviteColumns,
		rec.Token, rec.CreatedByModeratorID, rec.ExpiresAt, rec.Status, rec.CreatedAt)
	return scanInvite(row)
}

func (p *Postgres) CountInvites(ctx context.Context) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invites`).Scan(&count)
	return count, normalize(err)
}

func (p *Postgres) ListInvites(ctx context.Context, offset, limit int) ([]repository.InviteRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, normalize(err)
	}
	defer rows.Close()

	list := make([]repository.InviteRecord, 0, limit)
	for rows.Next() {
		rec, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, normalize(rows.Err())
}

func (p *Postgres) InviteByToken(ctx context.Context, token string) (*repository.InviteRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = $1`, token)
	return scanInvite(row)
}

func (p *Postgres) SetInviteStatus(ctx context.Context, id, status string) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE invites SET status = $2 WHERE id = $1 AND status = 'active'`, id, status)
	if err != nil {
		return false, normalize(err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanner is satisfied by pgx.Row, pgx.Rows and *sql.Row, *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*repository.SessionRecord, error) {
	var rec repository.SessionRecord
	if err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Speaker,
		&rec.Description,
		&rec.SessionDate,
		&rec.UniqueURLSlug,
		&rec.CreatedAt,
	); err != nil {
		return nil, normalize(err)
	}
	return &rec, nil
}

func scanQuestion(row scanner) (*repository.QuestionRecord, error) {
	var rec repository.QuestionRecord
	if err := row.Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.Content,
		&rec.AuthorName,
		&rec.IsAnswered,
		&rec.UpvoteCount,
		&rec.CreatedAt,
	); err != nil {
		return nil, normalize(err)
	}
	return &rec, nil
}

func scanInvite(row scanner) (*repository.InviteRecord, error) {
	var rec repository.InviteRecord
	if err := row.Scan(
		&rec.ID,
		&rec.Token,
		&rec.CreatedByModeratorID,
		&rec.ExpiresAt,
		&rec.Status,
		&rec.CreatedAt,
	); err != nil {
		return nil, normalize(err)
	}
	return &rec, nil
}

func orderClause(page repository.SessionPage) (string, error) {
	if !sessionOrderColumns[page.OrderBy] {
		return "", fmt.Errorf("unsupported order column %q", page.OrderBy)
	}
	direction := "DESC"
	if page.Ascending {
		direction = "ASC"
	}
	return fmt.Sprintf("s.%s %s, s.id %s", page.OrderBy, direction, direction), nil
}

// dollar numbers placeholders the way pgx expects them.
func dollar(n int) string {
	return fmt.Sprintf("$%d", n)
}

// setClause builds "col = ph, ..." in a stable column order.
func setClause(fields map[string]any, placeholder func(n int) string) (string, []any, error) {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		if !updatableQuestionColumns[column] {
			return "", nil, fmt.Errorf("column %q cannot be updated", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		parts = append(parts, fmt.Sprintf("%s = %s", column, placeholder(i+1)))
		args = append(args, fields[column])
	}
	return strings.Join(parts, ", "), args, nil
}
