package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KP12130/KPCasinoAI/internal/middleware"
	"github.com/KP12130/KPCasinoAI/internal/services"
	"github.com/KP12130/KPCasinoAI/internal/storage"
)

func NewUserHandler(settlement *services.Settlement) *UserHandler {
	return &UserHandler{settlement: settlement}
}

type UserHandler struct {
	settlement *services.Settlement
}

func (h *UserHandler) Profile(c *gin.Context) {
	subjectID := c.GetString(middleware.ContextSubjectID)

	account, err := h.settlement.Profile(c.Request.Context(), subjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to get profile", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// Provision creates the caller's account on first login and returns the
// existing one afterwards. Body fields override token claims when present.
func (h *UserHandler) Provision(c *gin.Context) {
	identity := services.Identity{
		SubjectID: c.GetString(middleware.ContextSubjectID),
		Email:     c.GetString(middleware.ContextEmail),
		Name:      c.GetString(middleware.ContextName),
	}

	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		if body.Email != "" {
			identity.Email = body.Email
		}
		if body.DisplayName != "" {
			identity.Name = body.DisplayName
		}
	}

	account, err := h.settlement.Provision(c.Request.Context(), identity)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to provision account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *UserHandler) Stats(c *gin.Context) {
	subjectID := c.GetString(middleware.ContextSubjectID)

	stats, err := h.settlement.Stats(c.Request.Context(), subjectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to get stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
