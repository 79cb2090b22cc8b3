package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherhq/gather-api/middleware"
	"github.com/gatherhq/gather-api/models"
	"github.com/gatherhq/gather-api/store"
	"github.com/gatherhq/gather-api/utils"
)

type UserHandler struct {
	Store store.Store
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.Store.UserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.UserByID(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	user.Name = req.Name
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetupTOTP generates a new TOTP secret for the user. 2FA stays disabled
// until VerifyTOTP confirms a valid code.
func (h *UserHandler) SetupTOTP(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.Store.UserByID(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	secret, qrURL, err := utils.GenerateTOTPSecret(user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate TOTP secret"})
		return
	}

	user.TOTPSecret = secret
	user.TOTPEnabled = false
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TOTPSetupResponse{Secret: secret, QRCode: qrURL})
}

func (h *UserHandler) VerifyTOTP(c *gin.Context) {
	var req models.VerifyTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Store.UserByID(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if user.TOTPSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "TOTP is not set up"})
		return
	}

	valid, _ := utils.VerifyTOTP(user.TOTPSecret, req.Code)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid TOTP code"})
		return
	}

	user.TOTPEnabled = true
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA enabled"})
}

func (h *UserHandler) DisableTOTP(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.Store.UserByID(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	user.TOTPSecret = ""
	user.TOTPEnabled = false
	if err := h.Store.UpdateUser(ctx, user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA disabled"})
}

// ListPending returns the events the user has been invited to but has not
// accepted yet.
func (h *UserHandler) ListPending(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := h.Store.PendingEventIDs(ctx, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	events, err := h.Store.EventsByIDs(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": events})
}

// AcceptPending turns a pending invitation into membership.
func (h *UserHandler) AcceptPending(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	eventID := c.Param("id")

	removed, err := h.Store.RemovePendingEvent(ctx, userID, eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}

	if err := h.Store.AddMember(ctx, eventID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation accepted"})
}

func (h *UserHandler) DeclinePending(c *gin.Context) {
	removed, err := h.Store.RemovePendingEvent(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation declined"})
}
