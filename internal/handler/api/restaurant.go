package api

import (
	"errors"
	"net/http"
	"strconv"

	"airdine/internal/domain/user"
	"airdine/internal/handler/httperr"
	"airdine/internal/handler/middleware"
	"airdine/internal/usecase/commands"
	"airdine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RestaurantHandler struct {
	q      queries.RestaurantQueries
	offerQ queries.OfferQueries
	userQ  queries.UserQueries
	favs   commands.FavoriteCommands
	sweep  commands.SweepCommands
}

func NewRestaurantHandler(
	q queries.RestaurantQueries,
	offerQ queries.OfferQueries,
	userQ queries.UserQueries,
	favs commands.FavoriteCommands,
	sweep commands.SweepCommands,
) *RestaurantHandler {
	return &RestaurantHandler{q: q, offerQ: offerQ, userQ: userQ, favs: favs, sweep: sweep}
}

// @Summary List restaurants
// @Description List active restaurants; favorites=true narrows to the caller's favorites
// @Tags restaurants
// @Produce json
// @Param cuisine query string false "Filter by cuisine"
// @Param favorites query bool false "Only the caller's favorites"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} queries.RestaurantView
// @Failure 401 {object} map[string]string
// @Router /restaurants [get]
func (h *RestaurantHandler) List(c *gin.Context) {
	var filter queries.RestaurantListFilter

	if raw := c.Query("cuisine"); raw != "" {
		filter.Cuisine = &raw
	}
	if raw := c.Query("favorites"); raw != "" {
		onlyFavs, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid favorites flag", nil)
			return
		}
		if onlyFavs {
			userID, ok := middleware.GetUserID(c)
			if !ok {
				httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "Login required to list favorites", nil)
				return
			}
			filter.FavoritesFor = &userID
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views, err := h.q.List(c.Request.Context(), filter, limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list restaurants", nil)
		return
	}
	if views == nil {
		views = []*queries.RestaurantView{}
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Get restaurant
// @Description Get restaurant details by ID
// @Tags restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} queries.RestaurantView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /restaurants/{id} [get]
func (h *RestaurantHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid restaurant ID format", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Restaurant not found", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Restaurant activations
// @Description List activation codes issued against a restaurant's offers (staff of that restaurant, or admin)
// @Tags restaurants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Param status query string false "Filter by activation status"
// @Success 200 {array} queries.RestaurantActivationView
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /restaurants/{id}/activations [get]
func (h *RestaurantHandler) ListActivations(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid restaurant ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)

	if !role.CanRedeemCodes() {
		httperr.AbortWithError(c, http.StatusForbidden, commands.ErrRedeemForbidden, "Staff access required", nil)
		return
	}
	if role != user.RoleAdmin {
		userView, err := h.userQ.GetCurrentUser(c.Request.Context(), userID)
		if err != nil {
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "User not found", nil)
			return
		}
		if userView.RestaurantID == nil || *userView.RestaurantID != restaurantID {
			httperr.AbortWithError(c, http.StatusForbidden, commands.ErrRedeemForbidden, "Not staff of this restaurant", nil)
			return
		}
	}

	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	settleStaleActivations(c.Request.Context(), h.sweep)

	views, err := h.offerQ.ListRestaurantActivations(c.Request.Context(), restaurantID, status)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list restaurant activations", nil)
		return
	}
	if views == nil {
		views = []*queries.RestaurantActivationView{}
	}
	c.JSON(http.StatusOK, views)
}

// @Summary Favorite restaurant
// @Description Add a restaurant to the caller's favorites
// @Tags restaurants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Success 201 {object} map[string]string
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /restaurants/{id}/favorite [put]
func (h *RestaurantHandler) Favorite(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid restaurant ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	added, err := h.favs.Add(c.Request.Context(), userID, restaurantID)
	if err != nil {
		if errors.Is(err, commands.ErrRestaurantNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Restaurant not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to add favorite", nil)
		return
	}

	if added {
		c.JSON(http.StatusCreated, gin.H{"message": "Restaurant added to favorites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant already in favorites"})
}

// @Summary Unfavorite restaurant
// @Description Remove a restaurant from the caller's favorites
// @Tags restaurants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Restaurant ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /restaurants/{id}/favorite [delete]
func (h *RestaurantHandler) Unfavorite(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid restaurant ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	removed, err := h.favs.Remove(c.Request.Context(), userID, restaurantID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to remove favorite", nil)
		return
	}
	if !removed {
		httperr.AbortWithError(c, http.StatusNotFound, commands.ErrRestaurantNotFound, "Favorite not found", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
