package services

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
)

type EventService struct {
	store store.Store
}

func NewEventService(st store.Store) *EventService {
	return &EventService{store: st}
}

func validateEventFields(name, description, location string) []models.FieldError {
	var fields []models.FieldError
	if l := utf8.RuneCountInString(name); l < models.EventNameMinLen || l > models.EventNameMaxLen {
		fields = append(fields, models.FieldError{Field: "name", Message: "must be between 2 and 100 characters"})
	}
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		fields = append(fields, models.FieldError{Field: "description", Message: "must be at most 5000 characters"})
	}
	if utf8.RuneCountInString(location) > models.LocationMaxLen {
		fields = append(fields, models.FieldError{Field: "location", Message: "must be at most 500 characters"})
	}
	return fields
}

// Create validates the request and persists a fresh event. The organizer
// becomes the first member and the checklist starts empty.
func (s *EventService) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	fields := validateEventFields(req.Name, req.Description, req.Location)
	if _, err := uuid.Parse(req.Organizer); err != nil {
		fields = append(fields, models.FieldError{Field: "organizer", Message: "must be a valid user id"})
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}

	event := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		Organizer:   req.Organizer,
		Items:       []models.Item{},
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.store.EventByID(ctx, id)
}

// Update applies an allow-listed patch and re-validates the length bounds
// before persisting.
func (s *EventService) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	event, err := s.store.EventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		event.Name = *patch.Name
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.Date != nil {
		event.Date = *patch.Date
	}

	if fields := validateEventFields(event.Name, event.Description, event.Location); len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}

	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes the event when requesterID is its organizer and returns the
// deleted event's name for the confirmation message. Anyone else gets
// models.ErrNotFound, indistinguishable from a missing event.
func (s *EventService) Delete(ctx context.Context, id, requesterID string) (string, error) {
	event, err := s.store.DeleteEventOwnedBy(ctx, id, requesterID)
	if err != nil {
		return "", err
	}
	return event.Name, nil
}

// ListForUser returns the events the user organizes and the events they
// joined, as two independent queries.
func (s *EventService) ListForUser(ctx context.Context, userID string) (organizing, joined []models.Event, err error) {
	organizing, err = s.store.EventsByOrganizer(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	joined, err = s.store.EventsByMember(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return organizing, joined, nil
}

// ApplyItemAction runs one checklist transition against the event and
// persists the result.
func (s *EventService) ApplyItemAction(ctx context.Context, eventID string, action models.ItemAction, req models.ItemActionRequest, requesterID string) (*models.Event, error) {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch action {
	case models.ItemActionAdd:
		err = addItem(event, req.Name)
	case models.ItemActionPick:
		err = pickItem(event, req.Item, requesterID)
	case models.ItemActionUnpick:
		err = unpickItem(event, req.Item, requesterID)
	case models.ItemActionDelete:
		err = deleteItem(event, req.Item)
	default:
		err = models.ErrInvalidOperation
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}
