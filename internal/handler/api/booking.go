package api

import (
	"errors"
	"net/http"

	reqdto "airdine/internal/handler/dto/request"
	"airdine/internal/handler/httperr"
	"airdine/internal/handler/middleware"
	"airdine/internal/usecase/commands"
	"airdine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Book a time slot at a restaurant
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} queries.BookingView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	bookingID, err := h.cmds.Create(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrRestaurantNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Restaurant not found", nil)
		case errors.Is(err, commands.ErrRestaurantInactive):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Restaurant is not accepting bookings", nil)
		case errors.Is(err, commands.ErrBookingValidation):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking request", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), userID, bookingID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load booking", nil)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// @Summary Get booking
// @Description Get one of the caller's bookings by ID
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.BookingView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrBookingNotFound), errors.Is(err, queries.ErrBookingAccess):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary My bookings
// @Description List the caller's bookings, newest slot first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.BookingView
// @Failure 401 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	views, err := h.q.ListByUser(c.Request.Context(), userID, 0)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list bookings", nil)
		return
	}
	if views == nil {
		views = []*queries.BookingView{}
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Cancel booking
// @Description Cancel one of the caller's confirmed bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	if err := h.cmds.Cancel(c.Request.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, commands.ErrBookingForbidden):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to cancel this booking", nil)
		case errors.Is(err, commands.ErrBookingNotCancelable):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Booking can no longer be cancelled", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled"})
}
