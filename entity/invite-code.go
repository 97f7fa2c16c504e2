package entity

import "time"

type InviteStatus string

const (
	InviteActive  InviteStatus = "active"
	InviteUsed    InviteStatus = "used"
	InviteExpired InviteStatus = "expired"
)

// Invite is a single-use, time-bounded token gating moderator registration.
// Status only ever moves from active to used or expired.
type Invite struct {
	Id                   string       `json:"id"`
	Token                string       `json:"token"`
	CreatedByModeratorId *string      `json:"createdByModeratorId"`
	ExpiresAt            time.Time    `json:"expiresAt"`
	Status               InviteStatus `json:"status"`
	CreatedAt            time.Time    `json:"createdAt"`
}

func (i *Invite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

type InviteWithUrl struct {
	Invite
	InviteUrl string `json:"inviteUrl"`
}

type InviteValidation struct {
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}
