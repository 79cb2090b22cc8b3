package services

import (
	"context"
	"errors"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
)

// InvitationService bridges known and unknown users: an email with an
// account gets the event appended to its pending set, anyone else gets a
// best-effort email plus a durable UserInvite that converts on signup.
type InvitationService struct {
	store  store.Store
	mailer Mailer
	gate   MailGate
}

func NewInvitationService(st store.Store, mailer Mailer, gate MailGate) *InvitationService {
	return &InvitationService{store: st, mailer: mailer, gate: gate}
}

func (s *InvitationService) Invite(ctx context.Context, email string, event *models.Event) error {
	if err := s.gate.CheckSendMail(); err != nil {
		return err
	}

	user, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		// The invite record is created whether or not the email lands.
		s.mailer.SendInvitation(email, event.Name)
		return s.store.CreateUserInvite(ctx, &models.UserInvite{Email: email, EventID: event.ID})
	}
	if err != nil {
		return err
	}

	pending, err := s.store.PendingEventIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, id := range pending {
		if id == event.ID {
			return models.ErrDuplicateInvite
		}
	}
	return s.store.AddPendingEvent(ctx, user.ID, event.ID)
}
