package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KP12130/KPCasinoAI/internal/middleware"
	"github.com/KP12130/KPCasinoAI/internal/models"
	"github.com/KP12130/KPCasinoAI/internal/services"
	"github.com/KP12130/KPCasinoAI/internal/storage"
)

func NewGameHandler(settlement *services.Settlement) *GameHandler {
	return &GameHandler{settlement: settlement}
}

type GameHandler struct {
	settlement *services.Settlement
}

// SubmitResult settles one claimed game result for the authenticated caller.
func (h *GameHandler) SubmitResult(c *gin.Context) {
	subjectID := c.GetString(middleware.ContextSubjectID)

	var claim models.ClaimedResult
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid game data",
			"errors":  []string{err.Error()},
		})
		return
	}

	account, game, err := h.settlement.SettleGame(c.Request.Context(), subjectID, claim)
	if err != nil {
		h.respondSettleError(c, err)
		return
	}

	message := "Better luck next time!"
	if game.IsWin {
		message = "Congratulations!"
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"newBalance":    account.Balance,
		"historyRecord": game,
		"message":       message,
	})
}

func (h *GameHandler) respondSettleError(c *gin.Context, err error) {
	var malformed *services.MalformedRequestError
	var invalidOutcome *services.InvalidOutcomeError

	switch {
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid game data",
			"errors":  malformed.Violations,
		})
	case errors.As(err, &invalidOutcome):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Invalid game result",
			"reason":  invalidOutcome.Reason,
		})
	case errors.Is(err, services.ErrTooFrequent):
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many games too quickly"})
	case errors.Is(err, storage.ErrInsufficientBalance):
		c.JSON(http.StatusConflict, gin.H{"message": "Insufficient balance"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case storage.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Storage unavailable, retry later"})
	default:
		slog.ErrorContext(c.Request.Context(), "failed to settle game", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// History returns the caller's most recent settled games, newest first.
func (h *GameHandler) History(c *gin.Context) {
	subjectID := c.GetString(middleware.ContextSubjectID)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	games, err := h.settlement.History(c.Request.Context(), subjectID, limit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to get game history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if games == nil {
		games = []models.SettledGame{}
	}
	c.JSON(http.StatusOK, games)
}
