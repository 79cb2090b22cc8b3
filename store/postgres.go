package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/utils"
)

// Postgres implements Store on top of database/sql with lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func storageErr(op string, err error) error {
	return &models.StorageError{Op: op, Err: err}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, totp_secret, totp_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Email, u.PasswordHash, u.Name, u.TOTPSecret, u.TOTPEnabled, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return storageErr("create user", err)
	}
	return nil
}

func (s *Postgres) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, COALESCE(totp_secret, ''), totp_enabled, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, COALESCE(totp_secret, ''), totp_enabled, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email))
}

func (s *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("fetch user", err)
	}
	return &u, nil
}

func (s *Postgres) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, totp_secret = $3, totp_enabled = $4, updated_at = $5
		WHERE id = $1
	`, u.ID, u.Name, u.TOTPSecret, u.TOTPEnabled, u.UpdatedAt)
	if err != nil {
		return storageErr("update user", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Postgres) UsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := map[string]models.User{}
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, name, COALESCE(totp_secret, ''), totp_enabled, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, storageErr("fetch users", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, storageErr("scan user", err)
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (s *Postgres) CreateSession(ctx context.Context, userID, refreshToken string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.New().String(), userID, refreshToken, expiresAt)
	if err != nil {
		return storageErr("create session", err)
	}
	return nil
}

func (s *Postgres) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, storageErr("delete expired sessions", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

func (s *Postgres) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (id, name, description, location, event_date, organizer, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, e.ID, e.Name, e.Description, e.Location, e.Date, e.Organizer, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return err
		}

		// Organizer is implicitly a member.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO event_members (id, event_id, user_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (event_id, user_id) DO NOTHING
		`, uuid.New().String(), e.ID, e.Organizer)
		return err
	})
	if err != nil {
		return storageErr("create event", err)
	}

	e.Members = []string{e.Organizer}
	if e.PendingMembers == nil {
		e.PendingMembers = []string{}
	}
	if e.Items == nil {
		e.Items = []models.Item{}
	}
	return nil
}

func (s *Postgres) EventByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, location, event_date, organizer, created_at, updated_at
		FROM events
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.Organizer, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("fetch event", err)
	}

	if err := s.loadEventRelations(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Postgres) loadEventRelations(ctx context.Context, e *models.Event) error {
	e.Members = []string{}
	e.PendingMembers = []string{}
	e.Items = []models.Item{}

	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM event_members WHERE event_id = $1`, e.ID)
	if err != nil {
		return storageErr("fetch members", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return storageErr("scan member", err)
		}
		e.Members = append(e.Members, id)
	}
	if err := rows.Err(); err != nil {
		return storageErr("fetch members", err)
	}

	pending, err := s.db.QueryContext(ctx, `SELECT user_id FROM user_pending_events WHERE event_id = $1`, e.ID)
	if err != nil {
		return storageErr("fetch pending members", err)
	}
	defer pending.Close()
	for pending.Next() {
		var id string
		if err := pending.Scan(&id); err != nil {
			return storageErr("scan pending member", err)
		}
		e.PendingMembers = append(e.PendingMembers, id)
	}
	if err := pending.Err(); err != nil {
		return storageErr("fetch pending members", err)
	}

	items, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(assigned_to::text, '')
		FROM items
		WHERE event_id = $1
		ORDER BY position
	`, e.ID)
	if err != nil {
		return storageErr("fetch items", err)
	}
	defer items.Close()
	for items.Next() {
		var item models.Item
		if err := items.Scan(&item.ID, &item.Name, &item.AssignedTo); err != nil {
			return storageErr("scan item", err)
		}
		e.Items = append(e.Items, item)
	}
	return items.Err()
}

func (s *Postgres) UpdateEvent(ctx context.Context, e *models.Event) error {
	e.UpdatedAt = time.Now()

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE events
			SET name = $2, description = $3, location = $4, event_date = $5, updated_at = $6
			WHERE id = $1
		`, e.ID, e.Name, e.Description, e.Location, e.Date, e.UpdatedAt)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return models.ErrNotFound
		}

		// Replace the item list wholesale; the event owns its items.
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE event_id = $1`, e.ID); err != nil {
			return err
		}
		for i, item := range e.Items {
			if item.ID == "" {
				item.ID = uuid.New().String()
				e.Items[i].ID = item.ID
			}
			var assignedTo interface{}
			if item.AssignedTo != "" {
				assignedTo = item.AssignedTo
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO items (id, event_id, name, assigned_to, position)
				VALUES ($1, $2, $3, $4, $5)
			`, item.ID, e.ID, item.Name, assignedTo, i)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err == models.ErrNotFound {
		return err
	}
	if err != nil {
		return storageErr("update event", err)
	}
	return nil
}

func (s *Postgres) DeleteEventOwnedBy(ctx context.Context, id, organizerID string) (*models.Event, error) {
	event, err := s.EventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Organizer != organizerID {
		return nil, models.ErrNotFound
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE id = $1 AND organizer = $2
	`, id, organizerID)
	if err != nil {
		return nil, storageErr("delete event", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, models.ErrNotFound
	}
	return event, nil
}

func (s *Postgres) EventsByOrganizer(ctx context.Context, userID string) ([]models.Event, error) {
	return s.queryEvents(ctx, `
		SELECT id, name, description, location, event_date, organizer, created_at, updated_at
		FROM events
		WHERE organizer = $1
	`, userID)
}

func (s *Postgres) EventsByMember(ctx context.Context, userID string) ([]models.Event, error) {
	return s.queryEvents(ctx, `
		SELECT e.id, e.name, e.description, e.location, e.event_date, e.organizer, e.created_at, e.updated_at
		FROM events e
		INNER JOIN event_members em ON e.id = em.event_id
		WHERE em.user_id = $1
	`, userID)
}

func (s *Postgres) EventsByIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	return s.queryEvents(ctx, `
		SELECT id, name, description, location, event_date, organizer, created_at, updated_at
		FROM events
		WHERE id = ANY($1)
	`, pq.Array(ids))
}

func (s *Postgres) queryEvents(ctx context.Context, query string, arg interface{}) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, storageErr("fetch events", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.Organizer, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, storageErr("scan event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("fetch events", err)
	}

	for i := range events {
		if err := s.loadEventRelations(ctx, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// ---------------------------------------------------------------------------
// Membership
// ---------------------------------------------------------------------------

func (s *Postgres) AddMember(ctx context.Context, eventID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_members (id, event_id, user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, uuid.New().String(), eventID, userID)
	if err != nil {
		return storageErr("add member", err)
	}
	return nil
}

func (s *Postgres) PendingEventIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id FROM user_pending_events WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, storageErr("fetch pending events", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan pending event", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Postgres) AddPendingEvent(ctx context.Context, userID, eventID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_pending_events (id, user_id, event_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, uuid.New().String(), userID, eventID)
	if err != nil {
		return storageErr("add pending event", err)
	}
	return nil
}

func (s *Postgres) RemovePendingEvent(ctx context.Context, userID, eventID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM user_pending_events WHERE user_id = $1 AND event_id = $2
	`, userID, eventID)
	if err != nil {
		return false, storageErr("remove pending event", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ---------------------------------------------------------------------------
// User invites
// ---------------------------------------------------------------------------

func (s *Postgres) CreateUserInvite(ctx context.Context, inv *models.UserInvite) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_invites (id, email, event_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email, event_id) DO NOTHING
	`, inv.ID, inv.Email, inv.EventID, inv.CreatedAt)
	if err != nil {
		return storageErr("create user invite", err)
	}
	return nil
}

func (s *Postgres) UserInvitesByEmail(ctx context.Context, email string) ([]models.UserInvite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, event_id, created_at
		FROM user_invites
		WHERE email = $1
		ORDER BY created_at
	`, email)
	if err != nil {
		return nil, storageErr("fetch user invites", err)
	}
	defer rows.Close()

	invites := []models.UserInvite{}
	for rows.Next() {
		var inv models.UserInvite
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.EventID, &inv.CreatedAt); err != nil {
			return nil, storageErr("scan user invite", err)
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (s *Postgres) DeleteUserInvitesByEmail(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_invites WHERE email = $1`, email)
	if err != nil {
		return storageErr("delete user invites", err)
	}
	return nil
}
