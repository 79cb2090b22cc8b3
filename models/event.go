package models

import (
	"encoding/json"
	"time"
)

const (
	EventNameMinLen   = 2
	EventNameMaxLen   = 100
	DescriptionMaxLen = 5000
	LocationMaxLen    = 500
)

type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Location       string    `json:"location,omitempty"`
	Date           time.Time `json:"date"`
	Organizer      string    `json:"organizer"`
	Members        []string  `json:"members"`
	PendingMembers []string  `json:"pending_members"`
	Items          []Item    `json:"items"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Item is one checklist entry on an event. AssignedTo is empty while the
// item is unclaimed.
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Organizer   string    `json:"organizer"`
}

// EventPatch holds the subset of event fields a PATCH may change. Nil means
// "leave as is".
type EventPatch struct {
	Name        *string
	Description *string
	Location    *string
	Date        *time.Time
}

// FilterEventUpdates builds an EventPatch from a raw JSON body, keeping only
// the updatable fields (name, description, date, location). Anything else in
// the payload is dropped without error, so callers never have to pre-filter.
func FilterEventUpdates(raw map[string]json.RawMessage) (EventPatch, error) {
	var patch EventPatch
	for field, value := range raw {
		switch field {
		case "name":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return EventPatch{}, NewValidationError(field, "must be a string")
			}
			patch.Name = &s
		case "description":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return EventPatch{}, NewValidationError(field, "must be a string")
			}
			patch.Description = &s
		case "location":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return EventPatch{}, NewValidationError(field, "must be a string")
			}
			patch.Location = &s
		case "date":
			var t time.Time
			if err := json.Unmarshal(value, &t); err != nil {
				return EventPatch{}, NewValidationError(field, "must be an RFC 3339 timestamp")
			}
			patch.Date = &t
		}
	}
	return patch, nil
}

// ItemAction is the closed set of checklist operations reachable through the
// item dispatch endpoint.
type ItemAction int

const (
	ItemActionAdd ItemAction = iota
	ItemActionPick
	ItemActionUnpick
	ItemActionDelete
)

func ParseItemAction(s string) (ItemAction, error) {
	switch s {
	case "add":
		return ItemActionAdd, nil
	case "pick":
		return ItemActionPick, nil
	case "unpick":
		return ItemActionUnpick, nil
	case "delete":
		return ItemActionDelete, nil
	default:
		return 0, ErrInvalidOperation
	}
}

// ItemActionRequest is the body of an item dispatch call. Add reads Name;
// pick/unpick/delete address an existing entry through Item.
type ItemActionRequest struct {
	Name string `json:"name"`
	Item string `json:"item"`
}

type EventListResponse struct {
	Organizing []Event `json:"organizing"`
	Joined     []Event `json:"joined"`
}
