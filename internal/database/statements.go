package database

import (
	"database/sql"
	"fmt"

	"liveqa/impl/repository"
)

func (s *SqlClient) prepareStmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}

	s.statements[name] = stmt
	return stmt, nil
}

func (s *SqlClient) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}

func (s *SqlClient) stmtCountSessions() (*sql.Stmt, error) {
	return s.prepareStmt("countSessions", `SELECT COUNT(*) FROM sessions`)
}

// stmtListSessions caches one statement per order column and direction.
func (s *SqlClient) stmtListSessions(page repository.SessionPage) (*sql.Stmt, error) {
	order, err := orderClause(page)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT s.id, s.name, s.speaker, s.description, s.session_date, s.unique_url_slug, s.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.session_id = s.id) AS question_count
		 FROM sessions s
		 ORDER BY %s
		 LIMIT ? OFFSET ?`,
		order,
	)
	return s.prepareStmt(fmt.Sprintf("listSessions_%s_%t", page.OrderBy, page.Ascending), query)
}

func (s *SqlClient) stmtInsertSession() (*sql.Stmt, error) {
	return s.prepareStmt("insertSession",
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`)
}

func (s *SqlClient) stmtSessionBySlug() (*sql.Stmt, error) {
	return s.prepareStmt("sessionBySlug",
		`SELECT `+sessionColumns+` FROM sessions WHERE unique_url_slug = ?`)
}

func (s *SqlClient) stmtDeleteSession() (*sql.Stmt, error) {
	return s.prepareStmt("deleteSession", `DELETE FROM sessions WHERE id = ?`)
}

func (s *SqlClient) stmtInsertQuestion() (*sql.Stmt, error) {
	return s.prepareStmt("insertQuestion",
		`INSERT INTO questions (id, session_id, content, author_name, created_at) VALUES (?, ?, ?, ?, ?)`)
}

func (s *SqlClient) stmtListQuestions(includeAnswered bool) (*sql.Stmt, error) {
	if includeAnswered {
		return s.prepareStmt("listQuestionsAll",
			`SELECT `+questionColumns+` FROM questions
			 WHERE session_id = ?
			 ORDER BY upvote_count DESC, created_at ASC`)
	}
	return s.prepareStmt("listQuestionsOpen",
		`SELECT `+questionColumns+` FROM questions
		 WHERE session_id = ? AND is_answered = 0
		 ORDER BY upvote_count DESC, created_at ASC`)
}

func (s *SqlClient) stmtQuestionById() (*sql.Stmt, error) {
	return s.prepareStmt("questionById",
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`)
}

func (s *SqlClient) stmtQuestionSession() (*sql.Stmt, error) {
	return s.prepareStmt("questionSession", `SELECT session_id FROM questions WHERE id = ?`)
}

func (s *SqlClient) stmtIncrementUpvote() (*sql.Stmt, error) {
	return s.prepareStmt("incrementUpvote",
		`UPDATE questions SET upvote_count = COALESCE(upvote_count, 0) + 1 WHERE id = ?`)
}

func (s *SqlClient) stmtUpvoteById() (*sql.Stmt, error) {
	return s.prepareStmt("upvoteById",
		`SELECT id, session_id, upvote_count FROM questions WHERE id = ?`)
}

func (s *SqlClient) stmtDeleteQuestion() (*sql.Stmt, error) {
	return s.prepareStmt("deleteQuestion", `DELETE FROM questions WHERE id = ?`)
}

func (s *SqlClient) stmtInsertInvite() (*sql.Stmt, error) {
	return s.prepareStmt("insertInvite",
		`INSERT INTO invites (`+inviteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`)
}

func (s *SqlClient) stmtCountInvites() (*sql.Stmt, error) {
	return s.prepareStmt("countInvites", `SELECT COUNT(*) FROM invites`)
}

func (s *SqlClient) stmtListInvites() (*sql.Stmt, error) {
	return s.prepareStmt("listInvites",
		`SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)
}

func (s *SqlClient) stmtInviteByToken() (*sql.Stmt, error) {
	return s.prepareStmt("inviteByToken",
		`SELECT `+inviteColumns+` FROM invites WHERE token = ?`)
}

func (s *SqlClient) stmtSetInviteStatus() (*sql.Stmt, error) {
	return s.prepareStmt("setInviteStatus",
		`UPDATE invites SET status = ? WHERE id = ? AND status = 'active'`)
}
