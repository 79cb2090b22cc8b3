package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
)

func newEventService() (*EventService, store.Store) {
	st := store.NewMemory()
	return NewEventService(st), st
}

func validCreateRequest(organizer string) models.CreateEventRequest {
	return models.CreateEventRequest{
		Name:      "Team BBQ",
		Location:  "Riverside park",
		Date:      time.Now().Add(72 * time.Hour),
		Organizer: organizer,
	}
}

func TestEventCreate(t *testing.T) {
	svc, _ := newEventService()
	organizer := uuid.New().String()

	event, err := svc.Create(context.Background(), validCreateRequest(organizer))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if event.Organizer != organizer {
		t.Errorf("organizer = %q, want %q", event.Organizer, organizer)
	}
	if len(event.Items) != 0 {
		t.Errorf("new event should have no items, got %d", len(event.Items))
	}
	if len(event.Members) != 1 || event.Members[0] != organizer {
		t.Errorf("organizer should be the only member, got %v", event.Members)
	}
	if event.ID == "" {
		t.Error("event should get an id")
	}
}

func TestEventCreate_Validation(t *testing.T) {
	svc, _ := newEventService()

	tests := []struct {
		name  string
		req   models.CreateEventRequest
		field string
	}{
		{
			name:  "name too short",
			req:   models.CreateEventRequest{Name: "x", Organizer: uuid.New().String()},
			field: "name",
		},
		{
			name:  "name too long",
			req:   models.CreateEventRequest{Name: strings.Repeat("a", 101), Organizer: uuid.New().String()},
			field: "name",
		},
		{
			name: "description too long",
			req: models.CreateEventRequest{
				Name:        "Team BBQ",
				Description: strings.Repeat("a", 5001),
				Organizer:   uuid.New().String(),
			},
			field: "description",
		},
		{
			name: "location too long",
			req: models.CreateEventRequest{
				Name:      "Team BBQ",
				Location:  strings.Repeat("a", 501),
				Organizer: uuid.New().String(),
			},
			field: "location",
		},
		{
			name:  "malformed organizer",
			req:   models.CreateEventRequest{Name: "Team BBQ", Organizer: "not-a-uuid"},
			field: "organizer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field error on %q, got %+v", tt.field, verr.Fields)
			}
		})
	}
}

func TestEventUpdate_AllowList(t *testing.T) {
	svc, _ := newEventService()
	organizer := uuid.New().String()

	event, err := svc.Create(context.Background(), validCreateRequest(organizer))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A payload trying to change the organizer only gets its allow-listed
	// fields through.
	raw := map[string]json.RawMessage{
		"name":      json.RawMessage(`"Summer BBQ"`),
		"organizer": json.RawMessage(`"` + uuid.New().String() + `"`),
		"items":     json.RawMessage(`[{"name":"sneaky"}]`),
	}
	patch, err := models.FilterEventUpdates(raw)
	if err != nil {
		t.Fatalf("FilterEventUpdates() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), event.ID, patch)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Summer BBQ" {
		t.Errorf("name = %q, want %q", updated.Name, "Summer BBQ")
	}
	if updated.Organizer != organizer {
		t.Errorf("organizer changed to %q, must stay %q", updated.Organizer, organizer)
	}
	if len(updated.Items) != 0 {
		t.Errorf("items changed through update payload: %+v", updated.Items)
	}
}

func TestEventUpdate_Revalidates(t *testing.T) {
	svc, _ := newEventService()

	event, err := svc.Create(context.Background(), validCreateRequest(uuid.New().String()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	short := "x"
	_, err = svc.Update(context.Background(), event.ID, models.EventPatch{Name: &short})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Update() error = %v, want ValidationError", err)
	}

	// The stored event is untouched.
	current, err := svc.Get(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if current.Name != "Team BBQ" {
		t.Errorf("failed update mutated name to %q", current.Name)
	}
}

func TestEventUpdate_NotFound(t *testing.T) {
	svc, _ := newEventService()

	_, err := svc.Update(context.Background(), uuid.New().String(), models.EventPatch{})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestEventDelete_OrganizerOnly(t *testing.T) {
	svc, _ := newEventService()
	organizer := uuid.New().String()

	event, err := svc.Create(context.Background(), validCreateRequest(organizer))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Another requester gets not-found even though the event exists.
	_, err = svc.Delete(context.Background(), event.ID, uuid.New().String())
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Delete() by non-organizer error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(context.Background(), event.ID); err != nil {
		t.Fatalf("event disappeared after denied delete: %v", err)
	}

	name, err := svc.Delete(context.Background(), event.ID, organizer)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if name != "Team BBQ" {
		t.Errorf("Delete() name = %q, want %q", name, "Team BBQ")
	}
	if _, err := svc.Get(context.Background(), event.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("event still present after delete, err = %v", err)
	}
}

func TestListForUser(t *testing.T) {
	svc, st := newEventService()
	ctx := context.Background()

	alice := uuid.New().String()
	bob := uuid.New().String()

	mine, err := svc.Create(ctx, validCreateRequest(alice))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	theirs, err := svc.Create(ctx, validCreateRequest(bob))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := st.AddMember(ctx, theirs.ID, alice); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	organizing, joined, err := svc.ListForUser(ctx, alice)
	if err != nil {
		t.Fatalf("ListForUser() error = %v", err)
	}

	if len(organizing) != 1 || organizing[0].ID != mine.ID {
		t.Errorf("organizing = %+v, want just %s", organizing, mine.ID)
	}
	// Alice joined both her own event and Bob's.
	joinedIDs := map[string]bool{}
	for _, e := range joined {
		joinedIDs[e.ID] = true
	}
	if !joinedIDs[theirs.ID] {
		t.Errorf("joined list missing %s: %+v", theirs.ID, joined)
	}
}

func TestApplyItemAction_InvalidAction(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()

	event, err := svc.Create(ctx, validCreateRequest(uuid.New().String()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = models.ParseItemAction("rename")
	if !errors.Is(err, models.ErrInvalidOperation) {
		t.Fatalf("ParseItemAction(rename) error = %v, want ErrInvalidOperation", err)
	}

	// An out-of-range action value reaching the dispatcher is rejected too,
	// with no mutation.
	_, err = svc.ApplyItemAction(ctx, event.ID, models.ItemAction(99), models.ItemActionRequest{Name: "milk"}, event.Organizer)
	if !errors.Is(err, models.ErrInvalidOperation) {
		t.Fatalf("ApplyItemAction() error = %v, want ErrInvalidOperation", err)
	}
	current, _ := svc.Get(ctx, event.ID)
	if len(current.Items) != 0 {
		t.Errorf("invalid action mutated items: %+v", current.Items)
	}
}

func TestApplyItemAction_Persists(t *testing.T) {
	svc, _ := newEventService()
	ctx := context.Background()
	organizer := uuid.New().String()

	event, err := svc.Create(ctx, validCreateRequest(organizer))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.ApplyItemAction(ctx, event.ID, models.ItemActionAdd, models.ItemActionRequest{Name: "milk"}, organizer); err != nil {
		t.Fatalf("add error = %v", err)
	}
	if _, err := svc.ApplyItemAction(ctx, event.ID, models.ItemActionPick, models.ItemActionRequest{Item: "milk"}, organizer); err != nil {
		t.Fatalf("pick error = %v", err)
	}

	current, err := svc.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(current.Items) != 1 || current.Items[0].AssignedTo != organizer {
		t.Errorf("persisted items = %+v, want milk assigned to organizer", current.Items)
	}
}
