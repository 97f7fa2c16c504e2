package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store used by the repository tests.
type memStore struct {
	mu        sync.Mutex
	seq       int
	now       time.Time
	sessions  map[string]*SessionRecord
	questions map[string]*QuestionRecord
	invites   map[string]*InviteRecord
	fail      error
	pages     []SessionPage
}

func newMemStore() *memStore {
	return &memStore{
		now:       time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		sessions:  map[string]*SessionRecord{},
		questions: map[string]*QuestionRecord{},
		invites:   map[string]*InviteRecord{},
	}
}

func (m *memStore) nextID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
}

func (m *memStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *memStore) Close() {}

func (m *memStore) CountSessions(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	return len(m.sessions), nil
}

func (m *memStore) ListSessions(_ context.Context, page SessionPage) ([]SessionListRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	m.pages = append(m.pages, page)
	var list []SessionListRecord
	for _, s := range m.sessions {
		item := SessionListRecord{SessionRecord: *s}
		for _, q := range m.questions {
			if q.SessionID == s.ID {
				item.QuestionCount++
			}
		}
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		less := list[i].CreatedAt.Before(list[j].CreatedAt)
		if page.Ascending {
			return less
		}
		return !less
	})
	if page.Offset >= len(list) {
		return []SessionListRecord{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[page.Offset:end], nil
}

func (m *memStore) InsertSession(_ context.Context, rec *SessionRecord) (*SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, s := range m.sessions {
		if s.UniqueURLSlug == rec.UniqueURLSlug {
			return nil, ErrUniqueViolation
		}
	}
	stored := *rec
	stored.ID = m.nextID()
	stored.CreatedAt = m.tick()
	m.sessions[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) SessionBySlug(_ context.Context, slug string) (*SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, s := range m.sessions {
		if s.UniqueURLSlug == slug {
			out := *s
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.sessions, id)
	for qid, q := range m.questions {
		if q.SessionID == id {
			delete(m.questions, qid)
		}
	}
	return nil
}

func (m *memStore) InsertQuestion(_ context.Context, rec *QuestionRecord) (*QuestionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	stored := *rec
	stored.ID = m.nextID()
	stored.CreatedAt = m.tick()
	m.questions[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) ListQuestions(_ context.Context, sessionID string, includeAnswered bool) ([]QuestionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	list := []QuestionRecord{}
	for _, q := range m.questions {
		if q.SessionID != sessionID || (!includeAnswered && q.IsAnswered) {
			continue
		}
		list = append(list, *q)
	}
	return list, nil
}

func (m *memStore) IncrementUpvote(_ context.Context, id string) (*UpvoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, ErrNoRows
	}
	q.UpvoteCount++
	return &UpvoteRecord{ID: q.ID, SessionID: q.SessionID, UpvoteCount: q.UpvoteCount}, nil
}

func (m *memStore) UpdateQuestion(_ context.Context, id string, fields map[string]any) (*QuestionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, ErrNoRows
	}
	if v, ok := fields["is_answered"]; ok {
		q.IsAnswered = v.(bool)
	}
	out := *q
	return &out, nil
}

func (m *memStore) DeleteQuestion(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	q, ok := m.questions[id]
	if !ok {
		return "", ErrNoRows
	}
	delete(m.questions, id)
	return q.SessionID, nil
}

func (m *memStore) InsertInvite(_ context.Context, rec *InviteRecord) (*InviteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	stored := *rec
	stored.ID = m.nextID()
	m.invites[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memStore) CountInvites(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.invites), m.fail
}

func (m *memStore) ListInvites(_ context.Context, offset, limit int) ([]InviteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var list []InviteRecord
	for _, i := range m.invites {
		list = append(list, *i)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if offset >= len(list) {
		return []InviteRecord{}, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (m *memStore) InviteByToken(_ context.Context, token string) (*InviteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, i := range m.invites {
		if i.Token == token {
			out := *i
			return &out, nil
		}
	}
	return nil, ErrNoRows
}

func (m *memStore) SetInviteStatus(_ context.Context, id, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return false, m.fail
	}
	i, ok := m.invites[id]
	if !ok || i.Status != "active" {
		return false, nil
	}
	i.Status = status
	return true, nil
}

var _ Store = (*memStore)(nil)
