package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"airdine/internal/handler/httperr"
	"airdine/internal/handler/middleware"
	"airdine/internal/usecase/commands"
	"airdine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActivationHandler struct {
	cmds  commands.OfferCommands
	sweep commands.SweepCommands
	q     queries.OfferQueries
}

func NewActivationHandler(cmds commands.OfferCommands, sweep commands.SweepCommands, q queries.OfferQueries) *ActivationHandler {
	return &ActivationHandler{cmds: cmds, sweep: sweep, q: q}
}

// settleStaleActivations runs the expiration sweep before a read so codes
// past their TTL never show up as pending. A sweep failure only degrades
// freshness, so it is logged rather than surfaced.
func settleStaleActivations(ctx context.Context, sweep commands.SweepCommands) {
	if _, err := sweep.SweepExpired(ctx); err != nil {
		slog.Warn("failed to sweep expired activations", "error", err)
	}
}

// @Summary My activations
// @Description List the current user's activation codes, newest first
// @Tags activations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.ActivationView
// @Failure 401 {object} map[string]string
// @Router /activations [get]
func (h *ActivationHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	settleStaleActivations(c.Request.Context(), h.sweep)

	views, err := h.q.ListUserActivations(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list activations", nil)
		return
	}
	if views == nil {
		views = []*queries.ActivationView{}
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Cancel activation
// @Description Cancel one of the current user's pending activation codes
// @Tags activations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activation ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /activations/{id}/cancel [post]
func (h *ActivationHandler) Cancel(c *gin.Context) {
	activationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid activation ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	// Settle a stale code first so a lapsed activation still lands in the
	// usage ledger instead of being cancelled out of it. Cancel re-checks
	// state under lock either way.
	if _, err := h.sweep.CheckAndUpdateExpiration(c.Request.Context(), activationID); err != nil &&
		!errors.Is(err, commands.ErrActivationNotFound) {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	if err := h.cmds.Cancel(c.Request.Context(), activationID, userID); err != nil {
		switch {
		case errors.Is(err, commands.ErrActivationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Activation not found", nil)
		case errors.Is(err, commands.ErrCancelForbidden):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to cancel this activation", nil)
		case errors.Is(err, commands.ErrActivationNotPending):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Activation is no longer pending", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Activation cancelled"})
}
