package services

import (
	"context"
	"strings"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
)

type ReminderService struct {
	store  store.Store
	mailer Mailer
	gate   MailGate
}

func NewReminderService(st store.Store, mailer Mailer, gate MailGate) *ReminderService {
	return &ReminderService{store: st, mailer: mailer, gate: gate}
}

// Remind emails every member the list of unclaimed items. It returns the
// joined item list, or "" when nothing is pending and no mail goes out.
func (s *ReminderService) Remind(ctx context.Context, event *models.Event) (string, error) {
	if err := s.gate.CheckSendMail(); err != nil {
		return "", err
	}

	pending := []string{}
	for _, item := range event.Items {
		if item.AssignedTo == "" {
			pending = append(pending, item.Name)
		}
	}
	if len(pending) == 0 {
		return "", nil
	}

	members, err := s.store.UsersByIDs(ctx, event.Members)
	if err != nil {
		return "", err
	}

	itemList := strings.Join(pending, ", ")
	for _, member := range members {
		s.mailer.SendReminder(member.Email, event.Name, itemList)
	}
	return itemList, nil
}
