package services

import (
	"github.com/google/uuid"

	"github.com/gatherhq/gather-api/models"
)

// Checklist transitions. Item names are unique within an event, so pick,
// unpick and delete address exactly one entry. All of these mutate the event
// in place; persisting it is the caller's job.

func addItem(event *models.Event, name string) error {
	if name == "" {
		return models.NewValidationError("name", "item name must be specified")
	}
	for _, item := range event.Items {
		if item.Name == name {
			return models.ErrDuplicateItem
		}
	}
	event.Items = append(event.Items, models.Item{ID: uuid.New().String(), Name: name})
	return nil
}

// pickItem claims the named item for requesterID. An already-claimed item is
// reassigned without complaint; an unknown name is a silent no-op.
func pickItem(event *models.Event, name, requesterID string) error {
	if name == "" {
		return models.NewValidationError("item", "item name must be specified")
	}
	for i := range event.Items {
		if event.Items[i].Name == name {
			event.Items[i].AssignedTo = requesterID
		}
	}
	return nil
}

// unpickItem releases the named item, but only when requesterID is the
// current assignee. Items claimed by someone else are left untouched.
func unpickItem(event *models.Event, name, requesterID string) error {
	if name == "" {
		return models.NewValidationError("item", "item name must be specified")
	}
	for i := range event.Items {
		if event.Items[i].Name == name && event.Items[i].AssignedTo == requesterID {
			event.Items[i].AssignedTo = ""
		}
	}
	return nil
}

func deleteItem(event *models.Event, name string) error {
	if name == "" {
		return models.NewValidationError("item", "item name must be specified")
	}
	for i := range event.Items {
		if event.Items[i].Name == name {
			event.Items = append(event.Items[:i], event.Items[i+1:]...)
			return nil
		}
	}
	return nil
}
