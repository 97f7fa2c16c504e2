package entity

import (
	"net/http"
	"strings"
	"time"

	"liveqa/lib/clock"
	"liveqa/lib/validate"
)

// Session is a Q&A event owned by a moderator, addressed publicly by its slug.
type Session struct {
	Id            string     `json:"id"`
	Name          string     `json:"name"`
	Speaker       string     `json:"speaker"`
	Description   *string    `json:"description"`
	SessionDate   *time.Time `json:"sessionDate"`
	UniqueUrlSlug string     `json:"uniqueUrlSlug"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SessionListItem is a Session as it appears in the paginated listing.
type SessionListItem struct {
	Session
	QuestionCount int `json:"questionCount"`
}

type CreateSessionCommand struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Speaker     string  `json:"speaker" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	SessionDate string  `json:"sessionDate,omitempty"`

	date *time.Time
}

func (c *CreateSessionCommand) Bind(_ *http.Request) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Speaker = strings.TrimSpace(c.Speaker)
	if c.Description != nil {
		d := strings.TrimSpace(*c.Description)
		if d == "" {
			c.Description = nil
		} else {
			c.Description = &d
		}
	}
	var dateErr error
	date, err := clock.Parse(c.SessionDate)
	if err != nil {
		dateErr = validate.NewError("sessionDate", "sessionDate must be a valid date")
	}
	c.date = date
	return validate.Merge(validate.Struct(c), dateErr)
}

// Date is the parsed session date, nil when none was supplied.
func (c *CreateSessionCommand) Date() *time.Time {
	return c.date
}

type DeleteSessionCommand struct {
	Id string `json:"id"`
}

func (c *DeleteSessionCommand) Bind(_ *http.Request) error {
	c.Id = strings.TrimSpace(c.Id)
	return validate.UUID("id", c.Id)
}
