package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherhq/gather-api/middleware"
	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/services"
)

type EventHandler struct {
	Events    *services.EventService
	Invites   *services.InvitationService
	Reminders *services.ReminderService
	WS        *WSHandler
}

// Create creates a new event with the requester-supplied organizer.
func (h *EventHandler) Create(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.Events.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// List returns the requester's events, split into organizing and joined.
func (h *EventHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	organizing, joined, err := h.Events.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.EventListResponse{
		Organizing: organizing,
		Joined:     joined,
	})
}

func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Update applies a PATCH restricted to name, description, date and location.
// Other fields in the payload are ignored.
func (h *EventHandler) Update(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch, err := models.FilterEventUpdates(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	event, err := h.Events.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(event.ID, "event_updated", middleware.GetUserID(c))
	c.JSON(http.StatusOK, event)
}

// Delete removes an event. Only the organizer can delete; anyone else gets a
// 404, same as a missing event.
func (h *EventHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	name, err := h.Events.Delete(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Event '%s' deleted", name)})
}

// Invite invites an email address to the event.
func (h *EventHandler) Invite(c *gin.Context) {
	var req models.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Invites.Invite(c.Request.Context(), req.Email, event); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation has been sent"})
}

// Remind notifies every member about items nobody has claimed yet.
func (h *EventHandler) Remind(c *gin.Context) {
	event, err := h.Events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	itemList, err := h.Reminders.Remind(c.Request.Context(), event)
	if err != nil {
		respondError(c, err)
		return
	}

	if itemList == "" {
		c.JSON(http.StatusOK, gin.H{"message": "There is no pending items for this event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder sent", "items": itemList})
}

// ItemAction dispatches one checklist operation (add, pick, unpick, delete)
// named by the route.
func (h *EventHandler) ItemAction(c *gin.Context) {
	action, err := models.ParseItemAction(c.Param("action"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.ItemActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	event, err := h.Events.ApplyItemAction(c.Request.Context(), c.Param("id"), action, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(event.ID, "items_updated", userID)
	c.JSON(http.StatusOK, event)
}
