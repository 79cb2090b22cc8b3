package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
)

func seedReminderFixture(t *testing.T, st store.Store, memberCount int, items ...models.Item) *models.Event {
	t.Helper()
	ctx := context.Background()

	organizer := &models.User{Email: "organizer@example.com", Name: "Organizer"}
	if err := st.CreateUser(ctx, organizer); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	event := &models.Event{Name: "Team BBQ", Organizer: organizer.ID}
	if err := st.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	for i := 1; i < memberCount; i++ {
		member := &models.User{ID: uuid.New().String(), Email: uuid.New().String() + "@example.com", Name: "Member"}
		if err := st.CreateUser(ctx, member); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		if err := st.AddMember(ctx, event.ID, member.ID); err != nil {
			t.Fatalf("AddMember() error = %v", err)
		}
	}

	event.Items = items
	if err := st.UpdateEvent(ctx, event); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	got, err := st.EventByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("EventByID() error = %v", err)
	}
	return got
}

func TestRemind(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	svc := NewReminderService(st, mailer, stubGate{})

	event := seedReminderFixture(t, st, 3,
		models.Item{ID: "i1", Name: "milk"},
		models.Item{ID: "i2", Name: "cups", AssignedTo: "u1"},
	)

	itemList, err := svc.Remind(context.Background(), event)
	if err != nil {
		t.Fatalf("Remind() error = %v", err)
	}

	if itemList != "milk" {
		t.Errorf("pending items = %q, want %q", itemList, "milk")
	}
	if len(mailer.reminders) != 3 {
		t.Errorf("sent %d reminders, want one per member (3)", len(mailer.reminders))
	}
}

func TestRemind_JoinsPendingNames(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	svc := NewReminderService(st, mailer, stubGate{})

	event := seedReminderFixture(t, st, 1,
		models.Item{ID: "i1", Name: "milk"},
		models.Item{ID: "i2", Name: "cups"},
	)

	itemList, err := svc.Remind(context.Background(), event)
	if err != nil {
		t.Fatalf("Remind() error = %v", err)
	}
	if itemList != "milk, cups" {
		t.Errorf("pending items = %q, want %q", itemList, "milk, cups")
	}
}

func TestRemind_NothingPending(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	svc := NewReminderService(st, mailer, stubGate{})

	event := seedReminderFixture(t, st, 2,
		models.Item{ID: "i1", Name: "cups", AssignedTo: "u1"},
	)

	itemList, err := svc.Remind(context.Background(), event)
	if err != nil {
		t.Fatalf("Remind() error = %v", err)
	}
	if itemList != "" {
		t.Errorf("pending items = %q, want empty", itemList)
	}
	if len(mailer.reminders) != 0 {
		t.Errorf("no reminders should go out, got %d", len(mailer.reminders))
	}
}

func TestRemind_GateFailure(t *testing.T) {
	st := store.NewMemory()
	mailer := &stubMailer{}
	gateErr := errors.New("mail quota exceeded")
	svc := NewReminderService(st, mailer, stubGate{err: gateErr})

	event := seedReminderFixture(t, st, 2, models.Item{ID: "i1", Name: "milk"})

	_, err := svc.Remind(context.Background(), event)
	if !errors.Is(err, gateErr) {
		t.Fatalf("Remind() error = %v, want gate error propagated", err)
	}
	if len(mailer.reminders) != 0 {
		t.Errorf("gate failure must prevent sends, got %d", len(mailer.reminders))
	}
}
