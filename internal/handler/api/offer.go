package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "airdine/internal/handler/dto/request"
	resdto "airdine/internal/handler/dto/response"
	"airdine/internal/handler/httperr"
	"airdine/internal/handler/middleware"
	"airdine/internal/pkg/config"
	"airdine/internal/usecase/commands"
	"airdine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OfferHandler struct {
	cmds  commands.OfferCommands
	sweep commands.SweepCommands
	userQ queries.UserQueries
	q     queries.OfferQueries
	cfg   config.OffersConfig
}

func NewOfferHandler(cmds commands.OfferCommands, sweep commands.SweepCommands, q queries.OfferQueries, userQ queries.UserQueries, cfg config.OffersConfig) *OfferHandler {
	return &OfferHandler{cmds: cmds, sweep: sweep, q: q, userQ: userQ, cfg: cfg}
}

// @Summary List offers
// @Description List currently valid offers; authenticated callers do not see offers they have used up
// @Tags offers
// @Produce json
// @Param restaurant_id query string false "Filter by restaurant"
// @Param offer_type query string false "Filter by offer type"
// @Param featured query bool false "Only featured offers"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} resdto.OfferListResponse
// @Failure 400 {object} map[string]string
// @Router /offers [get]
func (h *OfferHandler) List(c *gin.Context) {
	var filter queries.OfferListFilter

	if raw := c.Query("restaurant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid restaurant_id", nil)
			return
		}
		filter.RestaurantID = &id
	}
	if raw := c.Query("offer_type"); raw != "" {
		filter.OfferType = &raw
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid featured flag", nil)
			return
		}
		filter.FeaturedOnly = featured
	}
	if userID, ok := middleware.GetUserID(c); ok {
		filter.ExcludeUsedUpFor = &userID
		// The used-up filter counts ledger entries, so lapsed codes must be
		// settled first or they would not count against the caller yet.
		settleStaleActivations(c.Request.Context(), h.sweep)
	}

	var after *queries.Cursor
	if raw := c.Query("after"); raw != "" {
		after = &queries.Cursor{After: raw}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	items, next, err := h.q.List(c.Request.Context(), filter, after, limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Failed to list offers", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOfferList(items, next))
}

// @Summary Featured offers
// @Description Short list of featured, currently valid offers
// @Tags offers
// @Produce json
// @Success 200 {array} queries.OfferListItem
// @Router /offers/featured [get]
func (h *OfferHandler) Featured(c *gin.Context) {
	items, err := h.q.ListFeatured(c.Request.Context(), 0)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list featured offers", nil)
		return
	}
	if items == nil {
		items = []*queries.OfferListItem{}
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Trending offers
// @Description Offers ranked by redemption volume
// @Tags offers
// @Produce json
// @Success 200 {array} queries.TrendingOfferItem
// @Router /offers/trending [get]
func (h *OfferHandler) Trending(c *gin.Context) {
	items, err := h.q.ListTrending(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to list trending offers", nil)
		return
	}
	if items == nil {
		items = []*queries.TrendingOfferItem{}
	}
	c.JSON(http.StatusOK, items)
}

// @Summary Offer statistics
// @Description Aggregate offer counts by validity, featured flag and type
// @Tags offers
// @Produce json
// @Success 200 {object} queries.OfferStatsView
// @Router /offers/stats [get]
func (h *OfferHandler) Stats(c *gin.Context) {
	stats, err := h.q.Stats(c.Request.Context())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to collect offer stats", nil)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Get offer
// @Description Get offer details by ID
// @Tags offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} queries.OfferView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /offers/{id} [get]
func (h *OfferHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid offer ID format", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusNotFound, err, "Offer not found", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Activate offer
// @Description Generate a short-lived activation code for the offer
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 201 {object} resdto.ActivateResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /offers/{id}/activate [post]
func (h *OfferHandler) Activate(c *gin.Context) {
	offerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid offer ID format", nil)
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrActivationNotValid, "User not authenticated", nil)
		return
	}

	result, err := h.cmds.Activate(c.Request.Context(), offerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOfferNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Offer not found", nil)
		case errors.Is(err, commands.ErrOfferNotAvailable):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Offer is not currently valid", nil)
		case errors.Is(err, commands.ErrUsageLimitExceeded):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "You have already used this offer or exceeded usage limit", nil)
		case errors.Is(err, commands.ErrCodeGenerationFailed):
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Could not generate activation code", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromActivationResult(result, h.cfg.ActivationTTL))
}

// @Summary Redeem activation code
// @Description Redeem a customer's activation code (staff only)
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RedeemRequest true "Redeem request"
// @Success 200 {object} resdto.RedeemResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /offers/redeem [post]
func (h *OfferHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrRedeemForbidden, "User not authenticated", nil)
		return
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, commands.ErrRedeemForbidden, "User not authenticated", nil)
		return
	}

	var req reqdto.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	// The restaurant association drives the staff permission check.
	userView, err := h.userQ.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusUnauthorized, err, "User not found", nil)
		return
	}

	redeemer := commands.Redeemer{
		ID:           userID,
		Role:         role,
		RestaurantID: userView.RestaurantID,
	}

	result, err := h.cmds.Redeem(c.Request.Context(), req.NormalizedCode(), redeemer, req.OrderCents)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrActivationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Invalid activation code", nil)
		case errors.Is(err, commands.ErrRedeemForbidden):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Only restaurant staff can redeem offer codes", nil)
		case errors.Is(err, commands.ErrActivationExpired):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Activation code has expired", nil)
		case errors.Is(err, commands.ErrAlreadyRedeemed):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Activation code has already been redeemed", nil)
		case errors.Is(err, commands.ErrActivationNotValid),
			errors.Is(err, commands.ErrActivationNotPending):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Activation code is not valid", nil)
		case errors.Is(err, commands.ErrOfferNotAvailable),
			errors.Is(err, commands.ErrOfferExhausted):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Offer is not currently valid", nil)
		case errors.Is(err, commands.ErrUsageLimitExceeded):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "You have already used this offer or exceeded usage limit", nil)
		case errors.Is(err, commands.ErrMinimumOrderNotMet):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Order amount does not meet the offer minimum", nil)
		case errors.Is(err, commands.ErrUsageRecordingConflict):
			httperr.AbortWithError(c, http.StatusConflict, err, "Code is already being processed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromRedeemResult(result))
}

// @Summary My offer usage
// @Description Per-offer usage summary for the current user, newest activity first
// @Tags offers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.UsageSummaryItem
// @Failure 401 {object} map[string]string
// @Router /offers/usage [get]
func (h *OfferHandler) UsageSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, queries.ErrUserNotFound, "User not authenticated", nil)
		return
	}

	settleStaleActivations(c.Request.Context(), h.sweep)

	items, err := h.q.UsageSummary(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load usage summary", nil)
		return
	}
	if items == nil {
		items = []*queries.UsageSummaryItem{}
	}
	c.JSON(http.StatusOK, items)
}
