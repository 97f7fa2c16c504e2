package repository

import (
	"context"
	"errors"
	"sort"

	"liveqa/entity"
)

type QuestionRepository struct {
	store QuestionStore
}

func NewQuestionRepository(store QuestionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

func (r *QuestionRepository) Create(ctx context.Context, sessionID string, cmd *entity.CreateQuestionCommand) (*entity.Question, error) {
	rec, err := r.store.InsertQuestion(ctx, &QuestionRecord{
		SessionID:  sessionID,
		Content:    cmd.Content,
		AuthorName: entity.AuthorOrAnonymous(cmd.AuthorName),
	})
	if err != nil {
		return nil, wrap("failed to create question", err)
	}
	return rec.Entity(), nil
}

// ListBySession returns questions ranked by upvotes, oldest first among equals.
func (r *QuestionRepository) ListBySession(ctx context.Context, sessionID string, includeAnswered bool) ([]*entity.Question, error) {
	records, err := r.store.ListQuestions(ctx, sessionID, includeAnswered)
	if err != nil {
		return nil, wrap("failed to fetch questions", err)
	}
	questions := make([]*entity.Question, 0, len(records))
	for i := range records {
		questions = append(questions, records[i].Entity())
	}
	Rank(questions)
	return questions, nil
}

// Rank orders by upvote count descending, then creation time ascending.
func Rank(questions []*entity.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		if a.UpvoteCount != b.UpvoteCount {
			return a.UpvoteCount > b.UpvoteCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (r *QuestionRepository) Upvote(ctx context.Context, id string) (*entity.UpvoteResult, error) {
	rec, err := r.store.IncrementUpvote(ctx, id)
	if errors.Is(err, ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("failed to upvote question", err)
	}
	return rec.Entity(), nil
}

func (r *QuestionRepository) Update(ctx context.Context, id string, cmd *entity.UpdateQuestionCommand) (*entity.Question, error) {
	fields := map[string]any{}
	if cmd.IsAnswered != nil {
		fields["is_answered"] = *cmd.IsAnswered
	}
	rec, err := r.store.UpdateQuestion(ctx, id, fields)
	if errors.Is(err, ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("failed to update question", err)
	}
	return rec.Entity(), nil
}

// Delete returns the id of the session the question belonged to.
func (r *QuestionRepository) Delete(ctx context.Context, id string) (string, error) {
	sessionID, err := r.store.DeleteQuestion(ctx, id)
	if errors.Is(err, ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", wrap("failed to delete question", err)
	}
	return sessionID, nil
}
