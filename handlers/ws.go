package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive tuning for cloud hosting behind proxies.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		eventID, _ := s.Get("event_id")
		log.Printf("✅ Client connected to event: %v", eventID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		eventID, _ := s.Get("event_id")
		log.Printf("🔌 Client disconnected from event: %v", eventID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and subscribes the session to one event.
func (h *WSHandler) HandleWS(c *gin.Context) {
	keys := map[string]interface{}{"event_id": c.Param("id")}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate signals every client subscribed to the event.
func (h *WSHandler) BroadcastUpdate(eventID, updateType, userID string) {
	msg, err := json.Marshal(map[string]string{"type": updateType, "user": userID})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("event_id")
		return exists && id == eventID
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting to event %s: %v", eventID, err)
	}
}
