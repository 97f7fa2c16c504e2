package entity

import (
	"net/http"
	"strings"
	"time"

	"liveqa/lib/validate"
)

const (
	AnonymousAuthor  = "Anonymous"
	MinContentLength = 5
	MaxContentLength = 500
)

type Question struct {
	Id          string    `json:"id"`
	SessionId   string    `json:"sessionId"`
	Content     string    `json:"content"`
	AuthorName  string    `json:"authorName"`
	IsAnswered  bool      `json:"isAnswered"`
	UpvoteCount int       `json:"upvoteCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateQuestionCommand struct {
	Content    string `json:"content" validate:"required,min=5,max=500"`
	AuthorName string `json:"authorName,omitempty" validate:"max=255"`
}

func (c *CreateQuestionCommand) Bind(_ *http.Request) error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	c.AuthorName = AuthorOrAnonymous(c.AuthorName)
	return nil
}

// AuthorOrAnonymous substitutes the anonymous author for blank names.
func AuthorOrAnonymous(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousAuthor
	}
	return name
}

// UpdateQuestionCommand carries only the fields a moderator may change;
// nil fields are left untouched.
type UpdateQuestionCommand struct {
	IsAnswered *bool `json:"isAnswered,omitempty"`
}

func (c *UpdateQuestionCommand) Bind(_ *http.Request) error {
	return nil
}

func (c *UpdateQuestionCommand) IsEmpty() bool {
	return c.IsAnswered == nil
}

type UpvoteResult struct {
	Id          string `json:"id"`
	UpvoteCount int    `json:"upvoteCount"`
	SessionId   string `json:"-"`
}
