//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"airdine/internal/domain/user"
	"airdine/internal/handler/api"
	"airdine/internal/pkg/config"
	"airdine/internal/usecase/commands"
	"airdine/internal/usecase/queries"
	"airdine/tests/common/builder"
	"airdine/tests/common/httptest"
	"airdine/tests/common/testutil"
	commandsmock "airdine/tests/mock/commands"
	queriesmock "airdine/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OfferHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockOfferCommands
	mockSweep    *commandsmock.MockSweepCommands
	mockQueries  *queriesmock.MockOfferQueries
	mockUserQ    *queriesmock.MockUserQueries
	handler      *api.OfferHandler

	authedUserID uuid.UUID
	authedRole   user.Role
}

func (s *OfferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockOfferCommands(s.mockCtrl)
	s.mockSweep = commandsmock.NewMockSweepCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockOfferQueries(s.mockCtrl)
	s.mockUserQ = queriesmock.NewMockUserQueries(s.mockCtrl)
	s.handler = api.NewOfferHandler(s.mockCommands, s.mockSweep, s.mockQueries, s.mockUserQ, config.OffersConfig{
		ActivationTTL: 2 * time.Minute,
	})

	s.authedUserID = uuid.New()
	s.authedRole = user.RoleCustomer

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.authedUserID)
		c.Set("user_role", s.authedRole)
		c.Next()
	}

	// Setup routes
	s.router.GET("/offers", s.handler.List)
	s.router.GET("/offers/featured", s.handler.Featured)
	s.router.GET("/offers/trending", s.handler.Trending)
	s.router.GET("/offers/:id", s.handler.Get)
	s.router.POST("/offers/:id/activate", authMiddleware, s.handler.Activate)
	s.router.POST("/offers/redeem", authMiddleware, s.handler.Redeem)
	s.router.GET("/offers/usage", authMiddleware, s.handler.UsageSummary)
}

func (s *OfferHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOfferHandlerSuite(t *testing.T) {
	suite.Run(t, new(OfferHandlerTestSuite))
}

// ================================================================================
// TestActivate
// ================================================================================

func (s *OfferHandlerTestSuite) TestActivate() {
	offerID := uuid.New()
	url := "/offers/" + offerID.String() + "/activate"
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	freshResult := &commands.ActivationResult{
		ActivationID: uuid.New(),
		OfferID:      offerID,
		Code:         "A1B2C3",
		Status:       "pending",
		CreatedAt:    now,
		ExpiresAt:    now.Add(2 * time.Minute),
	}

	s.Run("success: returns 201 with a fresh code", func() {
		s.mockCommands.EXPECT().Activate(gomock.Any(), offerID, s.authedUserID).
			Return(freshResult, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Contains(body["message"], "Use this code within 2 minutes")
		activation := body["activation"].(map[string]any)
		s.Equal("A1B2C3", activation["activation_code"])
		s.Equal("pending", activation["status"])
	})

	s.Run("success: returns 200 when an active code is handed back", func() {
		reused := *freshResult
		reused.Reused = true
		s.mockCommands.EXPECT().Activate(gomock.Any(), offerID, s.authedUserID).
			Return(&reused, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("You already have an active code for this offer", body["message"])
	})

	s.Run("error: 400 Bad Request on malformed offer ID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/offers/not-a-uuid/activate", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid offer ID format")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "offer not found",
				commandsError:  commands.ErrOfferNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Offer not found",
			},
			{
				name:           "offer outside validity window",
				commandsError:  commands.ErrOfferNotAvailable,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Offer is not currently valid",
			},
			{
				name:           "per-user limit reached",
				commandsError:  commands.ErrUsageLimitExceeded,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "You have already used this offer or exceeded usage limit",
			},
			{
				name:           "code generation failed",
				commandsError:  commands.ErrCodeGenerationFailed,
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Could not generate activation code",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Activate(gomock.Any(), offerID, s.authedUserID).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestRedeem
// ================================================================================

func (s *OfferHandlerTestSuite) TestRedeem() {
	url := "/offers/redeem"
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	restaurantID := uuid.New()
	staffView := builder.NewUserBuilder().AsStaffOf(restaurantID).BuildReadModel()

	redeemResult := &commands.RedeemResult{
		ActivationID: uuid.New(),
		OfferID:      uuid.New(),
		UserID:       uuid.New(),
		DiscountText: "20% off",
		RedeemedAt:   now,
	}

	reqBody := map[string]any{"code": "A1B2C3"}

	s.Run("success: returns 200 with redemption details", func() {
		s.authedRole = user.RoleStaff
		s.mockUserQ.EXPECT().GetCurrentUser(gomock.Any(), s.authedUserID).
			Return(staffView, nil).Times(1)
		s.mockCommands.EXPECT().Redeem(gomock.Any(), "A1B2C3", gomock.Any(), int64(0)).
			DoAndReturn(func(_ any, code string, redeemer commands.Redeemer, _ int64) (*commands.RedeemResult, error) {
				s.Equal(s.authedUserID, redeemer.ID)
				s.Equal(user.RoleStaff, redeemer.Role)
				s.Require().NotNil(redeemer.RestaurantID)
				s.Equal(restaurantID, *redeemer.RestaurantID)
				return redeemResult, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("Offer code redeemed successfully!", body["message"])
		activation := body["activation"].(map[string]any)
		s.Equal("redeemed", activation["status"])
		s.Equal("20% off", activation["discount_text"])
	})

	s.Run("success: code is uppercased before lookup", func() {
		s.authedRole = user.RoleStaff
		s.mockUserQ.EXPECT().GetCurrentUser(gomock.Any(), s.authedUserID).
			Return(staffView, nil).Times(1)
		s.mockCommands.EXPECT().Redeem(gomock.Any(), "A1B2C3", gomock.Any(), int64(0)).
			Return(redeemResult, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"code": " a1b2c3 "}, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: order amount yields the applied discount", func() {
		s.authedRole = user.RoleStaff
		withDiscount := *redeemResult
		withDiscount.DiscountCents = 800
		s.mockUserQ.EXPECT().GetCurrentUser(gomock.Any(), s.authedUserID).
			Return(staffView, nil).Times(1)
		s.mockCommands.EXPECT().Redeem(gomock.Any(), "A1B2C3", gomock.Any(), int64(4000)).
			Return(&withDiscount, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"code": "A1B2C3", "order_cents": 4000}, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		activation := body["activation"].(map[string]any)
		s.Equal(float64(800), activation["discount_cents"])
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		validationCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing field: code (required)", mutate: testutil.Field("code", nil)},
			{name: "code too short (3 chars)", mutate: testutil.Field("code", "ABC")},
			{name: "code too long (13 chars)", mutate: testutil.Field("code", "ABCDEFGHIJKLM")},
		}

		for _, tc := range validationCases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "unknown code",
				commandsError:  commands.ErrActivationNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Invalid activation code",
			},
			{
				name:           "customer or wrong restaurant",
				commandsError:  commands.ErrRedeemForbidden,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "Only restaurant staff can redeem offer codes",
			},
			{
				name:           "expired code",
				commandsError:  commands.ErrActivationExpired,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Activation code has expired",
			},
			{
				name:           "already redeemed",
				commandsError:  commands.ErrAlreadyRedeemed,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Activation code has already been redeemed",
			},
			{
				name:           "cancelled code",
				commandsError:  commands.ErrActivationNotValid,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Activation code is not valid",
			},
			{
				name:           "offer exhausted",
				commandsError:  commands.ErrOfferExhausted,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Offer is not currently valid",
			},
			{
				name:           "offer lapsed since activation",
				commandsError:  commands.ErrOfferNotAvailable,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Offer is not currently valid",
			},
			{
				name:           "per-user limit reached",
				commandsError:  commands.ErrUsageLimitExceeded,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "You have already used this offer or exceeded usage limit",
			},
			{
				name:           "order below the offer minimum",
				commandsError:  commands.ErrMinimumOrderNotMet,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "Order amount does not meet the offer minimum",
			},
			{
				name:           "concurrent usage recording",
				commandsError:  commands.ErrUsageRecordingConflict,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "Code is already being processed",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockUserQ.EXPECT().GetCurrentUser(gomock.Any(), s.authedUserID).
					Return(staffView, nil).Times(1)
				s.mockCommands.EXPECT().Redeem(gomock.Any(), "A1B2C3", gomock.Any(), int64(0)).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestList
// ================================================================================

func (s *OfferHandlerTestSuite) TestList() {
	url := "/offers"

	items := []*queries.OfferListItem{
		{ID: uuid.New(), Title: "Weekday Lunch Deal"},
		{ID: uuid.New(), Title: "Happy Hour"},
	}

	s.Run("success: returns 200 with items and no cursor on last page", func() {
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), nil, 0).
			Return(items, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body["items"], 2)
		s.NotContains(body, "next_cursor")
	})

	s.Run("success: passes filters and cursor through", func() {
		restaurantID := uuid.New()
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), 10).
			DoAndReturn(func(_ any, filter queries.OfferListFilter, after *queries.Cursor, _ int) ([]*queries.OfferListItem, *queries.Cursor, error) {
				s.Require().NotNil(filter.RestaurantID)
				s.Equal(restaurantID, *filter.RestaurantID)
				s.True(filter.FeaturedOnly)
				s.Require().NotNil(after)
				s.Equal("abc123", after.After)
				return items, &queries.Cursor{After: "def456"}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			url+"?restaurant_id="+restaurantID.String()+"&featured=true&after=abc123&limit=10", nil, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("def456", body["next_cursor"])
	})

	s.Run("success: authenticated listing settles stale codes first", func() {
		authed := gin.New()
		authed.GET("/offers", func(c *gin.Context) {
			c.Set("user_id", s.authedUserID)
			c.Set("user_role", s.authedRole)
		}, s.handler.List)

		s.mockSweep.EXPECT().SweepExpired(gomock.Any()).
			Return(&commands.SweepReport{}, nil).Times(1)
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), nil, 0).
			DoAndReturn(func(_ any, filter queries.OfferListFilter, _ *queries.Cursor, _ int) ([]*queries.OfferListItem, *queries.Cursor, error) {
				s.Require().NotNil(filter.ExcludeUsedUpFor)
				s.Equal(s.authedUserID, *filter.ExcludeUsedUpFor)
				return items, nil, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), authed, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("success: a failed settlement does not break the listing", func() {
		authed := gin.New()
		authed.GET("/offers", func(c *gin.Context) {
			c.Set("user_id", s.authedUserID)
			c.Set("user_role", s.authedRole)
		}, s.handler.List)

		s.mockSweep.EXPECT().SweepExpired(gomock.Any()).
			Return(nil, errors.New("lock timeout")).Times(1)
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), nil, 0).
			Return(items, nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), authed, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request on malformed restaurant_id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?restaurant_id=oops", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid restaurant_id")
	})

	s.Run("error: 400 Bad Request on malformed featured flag", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?featured=maybe", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid featured flag")
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *OfferHandlerTestSuite) TestGet() {
	offerID := uuid.New()

	s.Run("success: returns 200 with the offer view", func() {
		view := &queries.OfferView{ID: offerID, Title: "Weekday Lunch Deal"}
		s.mockQueries.EXPECT().GetByID(gomock.Any(), offerID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/"+offerID.String(), nil, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(offerID.String(), body["id"])
	})

	s.Run("error: 404 Not Found for unknown offer", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), offerID).
			Return(nil, errors.New("no rows")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/"+offerID.String(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Offer not found")
	})
}

// ================================================================================
// TestFeatured / TestTrending / TestUsageSummary
// ================================================================================

func (s *OfferHandlerTestSuite) TestFeatured() {
	s.Run("success: empty result renders as an empty array", func() {
		s.mockQueries.EXPECT().ListFeatured(gomock.Any(), 0).Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/featured", nil, "")

		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq("[]", rec.Body.String())
	})
}

func (s *OfferHandlerTestSuite) TestTrending() {
	s.Run("success: returns ranked items", func() {
		items := []*queries.TrendingOfferItem{
			{
				OfferListItem:     queries.OfferListItem{ID: uuid.New(), Title: "Happy Hour"},
				RecentActivations: 42,
			},
		}
		s.mockQueries.EXPECT().ListTrending(gomock.Any()).Return(items, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/trending", nil, "")

		var body []map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
	})
}

func (s *OfferHandlerTestSuite) TestUsageSummary() {
	url := "/offers/usage"

	s.Run("success: returns per-offer usage for the current user", func() {
		items := []*queries.UsageSummaryItem{
			{OfferID: uuid.New(), UsedCount: 1},
		}
		s.mockSweep.EXPECT().SweepExpired(gomock.Any()).
			Return(&commands.SweepReport{}, nil).Times(1)
		s.mockQueries.EXPECT().UsageSummary(gomock.Any(), s.authedUserID).Return(items, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body []map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}
