package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
)

type stubMailer struct {
	mu          sync.Mutex
	invitations []string
	reminders   []string
}

func (m *stubMailer) SendInvitation(to, eventName string) <-chan error {
	m.mu.Lock()
	m.invitations = append(m.invitations, to)
	m.mu.Unlock()
	done := make(chan error, 1)
	done <- nil
	return done
}

func (m *stubMailer) SendReminder(to, eventName, itemList string) <-chan error {
	m.mu.Lock()
	m.reminders = append(m.reminders, to)
	m.mu.Unlock()
	done := make(chan error, 1)
	done <- nil
	return done
}

type stubGate struct {
	err error
}

func (g stubGate) CheckSendMail() error { return g.err }

func seedInviteFixture(t *testing.T, st store.Store) *models.Event {
	t.Helper()
	event := &models.Event{Name: "Team BBQ", Organizer: uuid.New().String()}
	if err := st.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	return event
}

func TestInvite_UnknownEmail(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	svc := NewInvitationService(st, mailer, stubGate{})
	event := seedInviteFixture(t, st)
	ctx := context.Background()

	if err := svc.Invite(ctx, "stranger@example.com", event); err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	if len(mailer.invitations) != 1 || mailer.invitations[0] != "stranger@example.com" {
		t.Errorf("invitation emails = %v, want one to stranger@example.com", mailer.invitations)
	}

	invites, err := st.UserInvitesByEmail(ctx, "stranger@example.com")
	if err != nil {
		t.Fatalf("UserInvitesByEmail() error = %v", err)
	}
	if len(invites) != 1 || invites[0].EventID != event.ID {
		t.Errorf("invites = %+v, want one for event %s", invites, event.ID)
	}

	// A second invite for the same email and event stays a single record.
	if err := svc.Invite(ctx, "stranger@example.com", event); err != nil {
		t.Fatalf("second Invite() error = %v", err)
	}
	invites, _ = st.UserInvitesByEmail(ctx, "stranger@example.com")
	if len(invites) != 1 {
		t.Errorf("expected a single invite record, got %d", len(invites))
	}
}

func TestInvite_KnownUser(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	svc := NewInvitationService(st, mailer, stubGate{})
	event := seedInviteFixture(t, st)
	ctx := context.Background()

	user := &models.User{Email: "bob@example.com", Name: "Bob"}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := svc.Invite(ctx, "bob@example.com", event); err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	pending, err := st.PendingEventIDs(ctx, user.ID)
	if err != nil {
		t.Fatalf("PendingEventIDs() error = %v", err)
	}
	if len(pending) != 1 || pending[0] != event.ID {
		t.Errorf("pending = %v, want [%s]", pending, event.ID)
	}
	if len(mailer.invitations) != 0 {
		t.Errorf("known user should not get a signup email, got %v", mailer.invitations)
	}

	// Idempotency: the second invite fails.
	err = svc.Invite(ctx, "bob@example.com", event)
	if !errors.Is(err, models.ErrDuplicateInvite) {
		t.Fatalf("second Invite() error = %v, want ErrDuplicateInvite", err)
	}
	pending, _ = st.PendingEventIDs(ctx, user.ID)
	if len(pending) != 1 {
		t.Errorf("duplicate invite mutated pending set: %v", pending)
	}
}

func TestInvite_GateFailure(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	gateErr := errors.New("mail quota exceeded")
	svc := NewInvitationService(st, mailer, stubGate{err: gateErr})
	event := seedInviteFixture(t, st)
	ctx := context.Background()

	err := svc.Invite(ctx, "stranger@example.com", event)
	if !errors.Is(err, gateErr) {
		t.Fatalf("Invite() error = %v, want gate error propagated", err)
	}

	if len(mailer.invitations) != 0 {
		t.Errorf("gate failure must prevent sends, got %v", mailer.invitations)
	}
	invites, _ := st.UserInvitesByEmail(ctx, "stranger@example.com")
	if len(invites) != 0 {
		t.Errorf("gate failure must prevent state changes, got %+v", invites)
	}
}
