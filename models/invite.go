package models

import "time"

// UserInvite records an invitation sent to an email address that has no
// account yet. It is converted into a pending event when that address signs
// up.
type UserInvite struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}
