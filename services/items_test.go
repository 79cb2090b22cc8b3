package services

import (
	"errors"
	"testing"

	"github.com/gatherhq/gather-api/models"
)

func testEvent(items ...models.Item) *models.Event {
	return &models.Event{
		ID:        "e1",
		Name:      "Team BBQ",
		Organizer: "u1",
		Members:   []string{"u1"},
		Items:     items,
	}
}

func TestAddItem(t *testing.T) {
	event := testEvent()

	if err := addItem(event, "milk"); err != nil {
		t.Fatalf("addItem() error = %v", err)
	}
	if len(event.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(event.Items))
	}
	if event.Items[0].Name != "milk" {
		t.Errorf("item name = %q, want %q", event.Items[0].Name, "milk")
	}
	if event.Items[0].AssignedTo != "" {
		t.Errorf("new item should be unassigned, got %q", event.Items[0].AssignedTo)
	}
	if event.Items[0].ID == "" {
		t.Error("new item should get an id")
	}
}

func TestAddItem_DuplicateName(t *testing.T) {
	event := testEvent(models.Item{ID: "i1", Name: "milk"})

	err := addItem(event, "milk")
	if !errors.Is(err, models.ErrDuplicateItem) {
		t.Fatalf("addItem() error = %v, want ErrDuplicateItem", err)
	}
	if len(event.Items) != 1 {
		t.Errorf("duplicate add must not mutate, got %d items", len(event.Items))
	}
}

func TestAddItem_MissingName(t *testing.T) {
	event := testEvent()

	var verr *models.ValidationError
	if err := addItem(event, ""); !errors.As(err, &verr) {
		t.Fatalf("addItem(\"\") error = %v, want ValidationError", err)
	}
}

func TestItemRoundTrip(t *testing.T) {
	event := testEvent(models.Item{ID: "i1", Name: "milk"})

	if err := pickItem(event, "milk", "u1"); err != nil {
		t.Fatalf("pickItem() error = %v", err)
	}
	if got := event.Items[0].AssignedTo; got != "u1" {
		t.Fatalf("after pick, assigned_to = %q, want %q", got, "u1")
	}

	// Someone else cannot release it: silent no-op.
	if err := unpickItem(event, "milk", "u2"); err != nil {
		t.Fatalf("unpickItem() error = %v", err)
	}
	if got := event.Items[0].AssignedTo; got != "u1" {
		t.Fatalf("unpick by non-assignee must not change assignment, got %q", got)
	}

	if err := unpickItem(event, "milk", "u1"); err != nil {
		t.Fatalf("unpickItem() error = %v", err)
	}
	if got := event.Items[0].AssignedTo; got != "" {
		t.Fatalf("after unpick by assignee, assigned_to = %q, want empty", got)
	}
}

func TestPickItem_Reassigns(t *testing.T) {
	event := testEvent(models.Item{ID: "i1", Name: "milk", AssignedTo: "u1"})

	if err := pickItem(event, "milk", "u2"); err != nil {
		t.Fatalf("pickItem() error = %v", err)
	}
	if got := event.Items[0].AssignedTo; got != "u2" {
		t.Errorf("re-pick should reassign, got %q", got)
	}
}

func TestPickItem_MissingName(t *testing.T) {
	event := testEvent(models.Item{ID: "i1", Name: "milk"})

	var verr *models.ValidationError
	if err := pickItem(event, "", "u1"); !errors.As(err, &verr) {
		t.Fatalf("pickItem(\"\") error = %v, want ValidationError", err)
	}
}

func TestPickItem_UnknownNameIsNoOp(t *testing.T) {
	event := testEvent(models.Item{ID: "i1", Name: "milk"})

	if err := pickItem(event, "cups", "u1"); err != nil {
		t.Fatalf("pickItem() error = %v", err)
	}
	if got := event.Items[0].AssignedTo; got != "" {
		t.Errorf("unrelated item mutated, assigned_to = %q", got)
	}
}

func TestDeleteItem(t *testing.T) {
	event := testEvent(
		models.Item{ID: "i1", Name: "milk"},
		models.Item{ID: "i2", Name: "cups"},
	)

	if err := deleteItem(event, "milk"); err != nil {
		t.Fatalf("deleteItem() error = %v", err)
	}
	if len(event.Items) != 1 || event.Items[0].Name != "cups" {
		t.Errorf("unexpected items after delete: %+v", event.Items)
	}

	// Deleting an unknown name is a silent no-op.
	if err := deleteItem(event, "napkins"); err != nil {
		t.Fatalf("deleteItem() error = %v", err)
	}
	if len(event.Items) != 1 {
		t.Errorf("delete of unknown name mutated the list: %+v", event.Items)
	}
}
