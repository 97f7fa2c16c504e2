package entity

import (
	"net/http"
	"strings"
	"time"

	"liveqa/lib/validate"
)

// Moderator is an authenticated user allowed to manage sessions, questions
// and invites. Accounts are kept by the identity store, not the relational one.
type Moderator struct {
	Id           string    `json:"id" bson:"id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	InviteId     string    `json:"-" bson:"invite_id"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

type RegisterCommand struct {
	Token           string `json:"token" validate:"required"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (c *RegisterCommand) Bind(_ *http.Request) error {
	c.Token = strings.TrimSpace(c.Token)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return validate.Struct(c)
}

type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *LoginCommand) Bind(_ *http.Request) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return validate.Struct(c)
}

type ChangePasswordCommand struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72,password,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (c *ChangePasswordCommand) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

type AuthResponse struct {
	Moderator *Moderator `json:"moderator"`
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expiresIn"`
}
