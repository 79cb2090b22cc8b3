package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gatherhq/gather-api/handlers"
	"github.com/gatherhq/gather-api/services"
	"github.com/gatherhq/gather-api/store"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, st store.Store) {
	authHandler := &handlers.AuthHandler{
		Store:    st,
		Features: services.NewFeatureServiceFromEnv(),
	}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
}

// SetupUserRoutes sets up protected user routes.
func SetupUserRoutes(rg *gin.RouterGroup, st store.Store) {
	userHandler := &handlers.UserHandler{Store: st}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)

	rg.GET("/user/pending", userHandler.ListPending)
	rg.POST("/user/pending/:id/accept", userHandler.AcceptPending)
	rg.POST("/user/pending/:id/decline", userHandler.DeclinePending)
}

// SetupEventRoutes sets up protected event, invitation and checklist routes.
func SetupEventRoutes(rg *gin.RouterGroup, st store.Store, ws *handlers.WSHandler) {
	mailer := services.NewEmailServiceFromEnv()
	gate := services.NewFeatureServiceFromEnv()

	h := &handlers.EventHandler{
		Events:    services.NewEventService(st),
		Invites:   services.NewInvitationService(st, mailer, gate),
		Reminders: services.NewReminderService(st, mailer, gate),
		WS:        ws,
	}

	rg.POST("/events", h.Create)
	rg.GET("/events", h.List)
	rg.GET("/events/:id", h.Get)
	rg.PATCH("/events/:id", h.Update)
	rg.DELETE("/events/:id", h.Delete)

	rg.POST("/events/:id/invite", h.Invite)
	rg.POST("/events/:id/reminder", h.Remind)

	// Checklist dispatch: action is one of add, pick, unpick, delete.
	rg.PATCH("/events/:id/:action/item", h.ItemAction)
}
