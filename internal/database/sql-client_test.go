package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"liveqa/entity"
	"liveqa/impl/repository"
	"liveqa/internal/config"
)

func newTestClient(t *testing.T) *SqlClient {
	t.Helper()
	db, err := openSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	client, err := newSqlClient(db, config.DriverSqlite)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func insertSession(t *testing.T, s *SqlClient, name, slug string) *repository.SessionRecord {
	t.Helper()
	rec, err := s.InsertSession(context.Background(), &repository.SessionRecord{
		Name:          name,
		Speaker:       "Speaker",
		UniqueURLSlug: slug,
	})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return rec
}

func insertQuestion(t *testing.T, s *SqlClient, sessionID, content string) *repository.QuestionRecord {
	t.Helper()
	rec, err := s.InsertQuestion(context.Background(), &repository.QuestionRecord{
		SessionID:  sessionID,
		Content:    content,
		AuthorName: entity.AnonymousAuthor,
	})
	if err != nil {
		t.Fatalf("insert question: %v", err)
	}
	return rec
}

func TestSqlClient_SessionRoundTrip(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	desc := "Deep dive"
	date := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	created, err := s.InsertSession(ctx, &repository.SessionRecord{
		Name:          "Go",
		Speaker:       "Gopher",
		Description:   &desc,
		SessionDate:   &date,
		UniqueURLSlug: "go-abc123",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.SessionBySlug(ctx, "go-abc123")
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if got.ID != created.ID || got.Name != "Go" || got.Speaker != "Gopher" || got.UniqueURLSlug != "go-abc123" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("description lost: %v", got.Description)
	}
	if got.SessionDate == nil || !got.SessionDate.Equal(date) {
		t.Fatalf("session date lost: %v", got.SessionDate)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created at %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	plain := insertSession(t, s, "Plain", "plain-000000")
	got, err = s.SessionBySlug(ctx, plain.UniqueURLSlug)
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if got.Description != nil || got.SessionDate != nil {
		t.Fatalf("nullable fields should stay null: %+v", got)
	}

	if _, err = s.SessionBySlug(ctx, "missing"); !errors.Is(err, repository.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestSqlClient_DuplicateSlug(t *testing.T) {
	s := newTestClient(t)
	insertSession(t, s, "Talk", "talk-aaaaaa")
	_, err := s.InsertSession(context.Background(), &repository.SessionRecord{
		Name: "Talk", Speaker: "X", UniqueURLSlug: "talk-aaaaaa",
	})
	if !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}
}

func TestSqlClient_RepositorySlugs(t *testing.T) {
	s := newTestClient(t)
	repo := repository.NewSessionRepository(s, testLogger())
	suffixes := []string{"aaaaaa", "aaaaaa", "bbbbbb"}
	n := 0
	repo.SetSuffixFunc(func() string {
		v := suffixes[n]
		n++
		return v
	})
	ctx := context.Background()
	a, err := repo.Create(ctx, &entity.CreateSessionCommand{Name: "Keynote", Speaker: "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.Create(ctx, &entity.CreateSessionCommand{Name: "Keynote", Speaker: "B"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.UniqueUrlSlug != "keynote-aaaaaa" || b.UniqueUrlSlug != "keynote-bbbbbb" {
		t.Fatalf("unexpected slugs %q %q", a.UniqueUrlSlug, b.UniqueUrlSlug)
	}
	got, err := repo.GetBySlug(ctx, b.UniqueUrlSlug)
	if err != nil || got.Speaker != "B" {
		t.Fatalf("resolve slug: %+v, %v", got, err)
	}
}

func TestSqlClient_ListSessions(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	names := []string{"Charlie", "Alpha", "Bravo"}
	for i, name := range names {
		rec := insertSession(t, s, name, name+"-slug")
		for j := 0; j <= i; j++ {
			insertQuestion(t, s, rec.ID, "Question body")
		}
	}

	count, err := s.CountSessions(ctx)
	if err != nil || count != 3 {
		t.Fatalf("count = %d, %v", count, err)
	}
	list, err := s.ListSessions(ctx, repository.SessionPage{OrderBy: "name", Ascending: true, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Alpha" || list[1].Name != "Bravo" {
		t.Fatalf("unexpected page: %+v", list)
	}
	if list[0].QuestionCount != 2 || list[1].QuestionCount != 3 {
		t.Fatalf("unexpected counts: %d %d", list[0].QuestionCount, list[1].QuestionCount)
	}

	list, err = s.ListSessions(ctx, repository.SessionPage{OrderBy: "name", Ascending: false, Offset: 2, Limit: 2})
	if err != nil || len(list) != 1 || list[0].Name != "Alpha" {
		t.Fatalf("unexpected last page: %+v, %v", list, err)
	}

	list, err = s.ListSessions(ctx, repository.SessionPage{OrderBy: "created_at", Offset: 10, Limit: 2})
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("page beyond the end should be empty: %+v, %v", list, err)
	}

	if _, err = s.ListSessions(ctx, repository.SessionPage{OrderBy: "speaker; DROP TABLE sessions", Limit: 2}); err == nil {
		t.Fatal("unknown order column must be rejected")
	}
}

func TestSqlClient_DeleteSessionCascades(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	rec := insertSession(t, s, "Cascade", "cascade-1")
	q := insertQuestion(t, s, rec.ID, "Orphan to be?")

	if err := s.DeleteSession(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.UpdateQuestion(ctx, q.ID, nil); !errors.Is(err, repository.ErrNoRows) {
		t.Fatalf("question should be gone, got %v", err)
	}
	if err := s.DeleteSession(ctx, rec.ID); err != nil {
		t.Fatalf("deleting a missing session should succeed: %v", err)
	}
}

func TestSqlClient_QuestionForeignKey(t *testing.T) {
	s := newTestClient(t)
	_, err := s.InsertQuestion(context.Background(), &repository.QuestionRecord{
		SessionID: "00000000-0000-4000-8000-000000000000", Content: "No session", AuthorName: "x",
	})
	if err == nil {
		t.Fatal("question without a session must be rejected")
	}
}

func TestSqlClient_QuestionRanking(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	rec := insertSession(t, s, "Ranking", "ranking-1")
	b := insertQuestion(t, s, rec.ID, "Question B")
	time.Sleep(2 * time.Millisecond)
	c := insertQuestion(t, s, rec.ID, "Question C")
	time.Sleep(2 * time.Millisecond)
	a := insertQuestion(t, s, rec.ID, "Question A")
	upvote := func(id string, n int) {
		for i := 0; i < n; i++ {
			if _, err := s.IncrementUpvote(ctx, id); err != nil {
				t.Fatalf("upvote: %v", err)
			}
		}
	}
	upvote(a.ID, 3)
	upvote(b.ID, 1)
	upvote(c.ID, 1)

	list, err := s.ListQuestions(ctx, rec.ID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{a.ID, b.ID, c.ID}
	for i := range want {
		if list[i].ID != want[i] {
			t.Fatalf("position %d = %s (%q), want %s", i, list[i].ID, list[i].Content, want[i])
		}
	}
}

func TestSqlClient_Upvote(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	rec := insertSession(t, s, "Votes", "votes-1")
	q := insertQuestion(t, s, rec.ID, "Count me")

	res, err := s.IncrementUpvote(ctx, q.ID)
	if err != nil {
		t.Fatalf("upvote: %v", err)
	}
	if res.UpvoteCount != 1 || res.SessionID != rec.ID || res.ID != q.ID {
		t.Fatalf("unexpected result: %+v", res)
	}
	res, _ = s.IncrementUpvote(ctx, q.ID)
	if res.UpvoteCount != 2 {
		t.Fatalf("count = %d, want 2", res.UpvoteCount)
	}
	if _, err = s.IncrementUpvote(ctx, "00000000-0000-4000-8000-000000000000"); !errors.Is(err, repository.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestSqlClient_UpdateAndFilterAnswered(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	rec := insertSession(t, s, "Answers", "answers-1")
	q := insertQuestion(t, s, rec.ID, "Answer me")
	insertQuestion(t, s, rec.ID, "Still open")

	updated, err := s.UpdateQuestion(ctx, q.ID, map[string]any{"is_answered": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.IsAnswered || updated.Content != "Answer me" {
		t.Fatalf("unexpected update: %+v", updated)
	}
	updated, err = s.UpdateQuestion(ctx, q.ID, map[string]any{"is_answered": true})
	if err != nil || !updated.IsAnswered {
		t.Fatalf("unchanged update must still find the row: %+v, %v", updated, err)
	}

	open, err := s.ListQuestions(ctx, rec.ID, false)
	if err != nil || len(open) != 1 || open[0].Content != "Still open" {
		t.Fatalf("unexpected open questions: %+v, %v", open, err)
	}
	all, _ := s.ListQuestions(ctx, rec.ID, true)
	if len(all) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(all))
	}

	if _, err = s.UpdateQuestion(ctx, q.ID, map[string]any{"content": "hacked"}); err == nil {
		t.Fatal("only is_answered may be updated")
	}
	if _, err = s.UpdateQuestion(ctx, "missing", map[string]any{"is_answered": false}); !errors.Is(err, repository.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestSqlClient_DeleteQuestion(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	rec := insertSession(t, s, "Delete", "delete-1")
	q := insertQuestion(t, s, rec.ID, "Remove me")

	sessionID, err := s.DeleteQuestion(ctx, q.ID)
	if err != nil || sessionID != rec.ID {
		t.Fatalf("delete: %q, %v", sessionID, err)
	}
	if _, err = s.DeleteQuestion(ctx, q.ID); !errors.Is(err, repository.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestSqlClient_Invites(t *testing.T) {
	s := newTestClient(t)
	ctx := context.Background()
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	moderator := "m-1"
	inv, err := s.InsertInvite(ctx, &repository.InviteRecord{
		Token:                "token-1",
		CreatedByModeratorID: &moderator,
		ExpiresAt:            expires,
		Status:               "active",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err = s.InsertInvite(ctx, &repository.InviteRecord{Token: "token-1", ExpiresAt: expires, Status: "active"}); !errors.Is(err, repository.ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got %v", err)
	}

	got, err := s.InviteByToken(ctx, "token-1")
	if err != nil {
		t.Fatalf("by token: %v", err)
	}
	if got.ID != inv.ID || !got.ExpiresAt.Equal(expires) || *got.CreatedByModeratorID != moderator {
		t.Fatalf("unexpected invite: %+v", got)
	}

	ok, err := s.SetInviteStatus(ctx, inv.ID, "used")
	if err != nil || !ok {
		t.Fatalf("set status: %v, %v", ok, err)
	}
	ok, err = s.SetInviteStatus(ctx, inv.ID, "expired")
	if err != nil || ok {
		t.Fatalf("status must not change after leaving active: %v, %v", ok, err)
	}

	count, _ := s.CountInvites(ctx)
	list, err := s.ListInvites(ctx, 0, 10)
	if err != nil || count != 1 || len(list) != 1 || list[0].Status != "used" {
		t.Fatalf("unexpected list: %+v (count %d), %v", list, count, err)
	}
	if _, err = s.InviteByToken(ctx, "nope"); !errors.Is(err, repository.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}
