package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"liveqa/impl/repository"
	"liveqa/internal/config"
	"liveqa/lib/clock"
)

// SqlClient serves MySQL and SQLite through database/sql. Identifiers and
// timestamps are generated here since neither dialect can return inserted rows.
type SqlClient struct {
	db         *sql.DB
	driver     string
	statements map[string]*sql.Stmt
	mu         sync.Mutex
}

func NewSQLClient(conf *config.Config) (*SqlClient, error) {
	var db *sql.DB
	var err error
	switch conf.Store.Driver {
	case config.DriverMySql:
		db, err = openMySql(conf.Store.Dsn)
	case config.DriverSqlite:
		db, err = openSqlite(conf.Store.Dsn)
	default:
		return nil, fmt.Errorf("sql client: unsupported driver %q", conf.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try to ping three times; wait for a database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(10 * time.Second)
	}

	return newSqlClient(db, conf.Store.Driver)
}

func newSqlClient(db *sql.DB, driver string) (*SqlClient, error) {
	s := &SqlClient{
		db:         db,
		driver:     driver,
		statements: make(map[string]*sql.Stmt),
	}
	if err := s.runMigration(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func openMySql(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// openSqlite keeps a single connection so that in-memory databases survive
// between calls and writers never contend.
func openSqlite(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (s *SqlClient) runMigration() error {
	schema := sqliteSchema
	if s.driver == config.DriverMySql {
		schema = mysqlSchema
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}

func (s *SqlClient) Close() {
	s.closeStmt()
	_ = s.db.Close()
}

func (s *SqlClient) CountSessions(ctx context.Context) (int, error) {
	stmt, err := s.stmtCountSessions()
	if err != nil {
		return 0, err
	}
	var count int
	err = stmt.QueryRowContext(ctx).Scan(&count)
	return count, normalize(err)
}

func (s *SqlClient) ListSessions(ctx context.Context, page repository.SessionPage) ([]repository.SessionListRecord, error) {
	stmt, err := s.stmtListSessions(page)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, page.Limit, page.Offset)
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

func (s *SqlClient) InsertSession(ctx context.Context, rec *repository.SessionRecord) (*repository.SessionRecord, error) {
	stmt, err := s.stmtInsertSession()
	if err != nil {
		return nil, err
	}
	created := *rec
	created.ID = uuid.New().String()
	created.CreatedAt = clock.Now()
	if created.SessionDate != nil {
		date := created.SessionDate.UTC()
		created.SessionDate = &date
	}
	_, err = stmt.ExecContext(ctx,
		created.ID,
		created.Name,
		created.Speaker,
		created.Description,
		created.SessionDate,
		created.UniqueURLSlug,
		created.CreatedAt,
	)
	if err != nil {
		return nil, normalize(err)
	}
	return &created, nil
}

func (s *SqlClient) SessionBySlug(ctx context.Context, slug string) (*repository.SessionRecord, error) {
	stmt, err := s.stmtSessionBySlug()
	if err != nil {
		return nil, err
	}
	return scanSession(stmt.QueryRowContext(ctx, slug))
}

func (s *SqlClient) DeleteSession(ctx context.Context, id string) error {
	stmt, err := s.stmtDeleteSession()
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, id)
	return normalize(err)
}

func (s *SqlClient) InsertQuestion(ctx context.Context, rec *repository.QuestionRecord) (*repository.QuestionRecord, error) {
	stmt, err := s.stmtInsertQuestion()
	if err != nil {
		return nil, err
	}
	created := *rec
	created.ID = uuid.New().String()
	created.IsAnswered = false
	created.UpvoteCount = 0
	created.CreatedAt = clock.Now()
	_, err = stmt.ExecContext(ctx,
		created.ID,
		created.SessionID,
		created.Content,
		created.AuthorName,
		created.CreatedAt,
	)
	if err != nil {
		return nil, normalize(err)
	}
	return &created, nil
}

func (s *SqlClient) ListQuestions(ctx context.Context, sessionID string, includeAnswered bool) ([]repository.QuestionRecord, error) {
	stmt, err := s.stmtListQuestions(includeAnswered)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, sessionID)
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

// IncrementUpvote updates and reads back the counter inside one transaction.
func (s *SqlClient) IncrementUpvote(ctx context.Context, id string) (*repository.UpvoteRecord, error) {
	update, err := s.stmtIncrementUpvote()
	if err != nil {
		return nil, err
	}
	read, err := s.stmtUpvoteById()
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.StmtContext(ctx, update).ExecContext(ctx, id)
	if err != nil {
		return nil, normalize(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, repository.ErrNoRows
	}

	var rec repository.UpvoteRecord
	if err = tx.StmtContext(ctx, read).QueryRowContext(ctx, id).Scan(&rec.ID, &rec.SessionID, &rec.UpvoteCount); err != nil {
		return nil, &repository.StoreError{Op: "failed to fetch question", Err: normalize(err)}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateQuestion writes the given columns and reads the row back; a missing
// row is detected by the read so unchanged values are not reported as absent.
func (s *SqlClient) UpdateQuestion(ctx context.Context, id string, fields map[string]any) (*repository.QuestionRecord, error) {
	read, err := s.stmtQuestionById()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return scanQuestion(read.QueryRowContext(ctx, id))
	}
	set, args, err := setClause(fields, func(int) string { return "?" })
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	args = append(args, id)
	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`UPDATE questions SET %s WHERE id = ?`, set), args...); err != nil {
		return nil, normalize(err)
	}
	rec, err := scanQuestion(tx.StmtContext(ctx, read).QueryRowContext(ctx, id))
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SqlClient) DeleteQuestion(ctx context.Context, id string) (string, error) {
	owner, err := s.stmtQuestionSession()
	if err != nil {
		return "", err
	}
	del, err := s.stmtDeleteQuestion()
	if err != nil {
		return "", err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var sessionID string
	if err = tx.StmtContext(ctx, owner).QueryRowContext(ctx, id).Scan(&sessionID); err != nil {
		return "", normalize(err)
	}
	if _, err = tx.StmtContext(ctx, del).ExecContext(ctx, id); err != nil {
		return "", normalize(err)
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *SqlClient) InsertInvite(ctx context.Context, rec *repository.InviteRecord) (*repository.InviteRecord, error) {
	stmt, err := s.stmtInsertInvite()
	if err != nil {
		return nil, err
	}
	created := *rec
	created.ID = uuid.New().String()
	created.ExpiresAt = created.ExpiresAt.UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = clock.Now()
	}
	_, err = stmt.ExecContext(ctx,
		created.ID,
		created.Token,
		created.CreatedByModeratorID,
		created.ExpiresAt,
		created.Status,
		created.CreatedAt,
	)
	if err != nil {
		return nil, normalize(err)
	}
	return &created, nil
}

func (s *SqlClient) CountInvites(ctx context.Context) (int, error) {
	stmt, err := s.stmtCountInvites()
	if err != nil {
		return 0, err
	}
	var count int
	err = stmt.QueryRowContext(ctx).Scan(&count)
	return count, normalize(err)
}

func (s *SqlClient) ListInvites(ctx context.Context, offset, limit int) ([]repository.InviteRecord, error) {
	stmt, err := s.stmtListInvites()
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, limit, offset)
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

func (s *SqlClient) InviteByToken(ctx context.Context, token string) (*repository.InviteRecord, error) {
	stmt, err := s.stmtInviteByToken()
	if err != nil {
		return nil, err
	}
	return scanInvite(stmt.QueryRowContext(ctx, token))
}

func (s *SqlClient) SetInviteStatus(ctx context.Context, id, status string) (bool, error) {
	stmt, err := s.stmtSetInviteStatus()
	if err != nil {
		return false, err
	}
	res, err := stmt.ExecContext(ctx, status, id)
	if err != nil {
		return false, normalize(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
