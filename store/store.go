package store

import (
	"context"
	"time"

	"github.com/gatherhq/gather-api/models"
)

// Store is the persistence boundary for the API. Both the Postgres backend
// and the in-memory backend implement it; services and handlers never touch
// a database handle directly.
//
// Lookups that miss return models.ErrNotFound. Implementations wrap backend
// failures in *models.StorageError.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	// UsersByIDs batch-resolves a set of user ids to full records. Unknown
	// ids are simply absent from the result.
	UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)

	// Sessions
	CreateSession(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Events
	CreateEvent(ctx context.Context, e *models.Event) error
	EventByID(ctx context.Context, id string) (*models.Event, error)
	// UpdateEvent persists the event's updatable fields and replaces its
	// item list. Membership is managed through AddMember and the pending
	// tables, not here.
	UpdateEvent(ctx context.Context, e *models.Event) error
	// DeleteEventOwnedBy deletes the event only when organizerID matches its
	// organizer, and returns the deleted event. A requester who is not the
	// organizer gets models.ErrNotFound, same as a missing id.
	DeleteEventOwnedBy(ctx context.Context, id, organizerID string) (*models.Event, error)
	EventsByOrganizer(ctx context.Context, userID string) ([]models.Event, error)
	EventsByMember(ctx context.Context, userID string) ([]models.Event, error)
	EventsByIDs(ctx context.Context, ids []string) ([]models.Event, error)

	// Membership
	AddMember(ctx context.Context, eventID, userID string) error
	PendingEventIDs(ctx context.Context, userID string) ([]string, error)
	AddPendingEvent(ctx context.Context, userID, eventID string) error
	// RemovePendingEvent reports whether the pair existed.
	RemovePendingEvent(ctx context.Context, userID, eventID string) (bool, error)

	// Invites for addresses without an account
	CreateUserInvite(ctx context.Context, inv *models.UserInvite) error
	UserInvitesByEmail(ctx context.Context, email string) ([]models.UserInvite, error)
	DeleteUserInvitesByEmail(ctx context.Context, email string) error
}
