//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

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

type AuthHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockAuthCommands
	mockQueries  *queriesmock.MockUserQueries
	handler      *api.AuthHandler

	authedUserID uuid.UUID
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockAuthCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockUserQueries(s.mockCtrl)
	s.handler = api.NewAuthHandler(s.mockCommands, s.mockQueries, config.NewTestConfig())

	s.authedUserID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.authedUserID)
		c.Next()
	}

	// Setup routes
	s.router.POST("/auth/login", s.handler.Login)
	s.router.POST("/auth/refresh", s.handler.Refresh)
	s.router.POST("/auth/logout", authMiddleware, s.handler.Logout)
	s.router.GET("/auth/me", authMiddleware, s.handler.Me)
}

func (s *AuthHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

// ================================================================================
// TestLogin
// ================================================================================

func (s *AuthHandlerTestSuite) TestLogin() {
	url := "/auth/login"

	reqBody := builder.NewAuthBuilder().BuildDTO()
	userView := builder.NewUserBuilder().BuildReadModel()
	loginResult := &commands.LoginResult{
		UserID: userView.ID,
		TokenPair: &commands.TokenPair{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
		},
	}

	s.Run("success: returns 200 with token and user, sets cookies", func() {
		s.mockCommands.EXPECT().Login(gomock.Any(), reqBody.Email, reqBody.Password).
			Return(loginResult, nil).Times(1)
		s.mockQueries.EXPECT().GetCurrentUser(gomock.Any(), userView.ID).
			Return(userView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("access-token", body["access_token"])
		s.NotNil(httptest.ExtractCookie(rec, "access_token"))
		s.NotNil(httptest.ExtractCookie(rec, "refresh_token"))
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		validationCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing field: email (required)", mutate: testutil.Field("email", nil)},
			{name: "missing field: password (required)", mutate: testutil.Field("password", nil)},
			{name: "invalid email format", mutate: testutil.Field("email", "not-an-email")},
			{name: "password too short (7 chars)", mutate: testutil.Field("password", strings.Repeat("a", 7))},
		}

		for _, tc := range validationCases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "wrong password",
				commandsError:  commands.ErrInvalidCredentials,
				expectedStatus: http.StatusUnauthorized,
				expectedMsg:    "Invalid email or password",
			},
			{
				name:           "unknown email",
				commandsError:  commands.ErrUserNotFound,
				expectedStatus: http.StatusUnauthorized,
				expectedMsg:    "Invalid email or password",
			},
			{
				name:           "inactive account",
				commandsError:  commands.ErrUserInactive,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "Account is inactive",
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
				s.mockCommands.EXPECT().Login(gomock.Any(), reqBody.Email, reqBody.Password).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestRefresh
// ================================================================================

func (s *AuthHandlerTestSuite) TestRefresh() {
	url := "/auth/refresh"

	pair := &commands.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
	}

	s.Run("success: refreshes from the request body", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "refresh-token").
			Return(pair, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"refresh_token": "refresh-token"}, "")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("new-access-token", body["access_token"])
	})

	s.Run("success: falls back to the refresh cookie", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "cookie-refresh-token").
			Return(pair, nil).Times(1)

		cookies := []*http.Cookie{{Name: "refresh_token", Value: "cookie-refresh-token"}}
		rec := httptest.PerformRequestWithCookies(s.T(), s.router, http.MethodPost, url, nil, cookies, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 401 Unauthorized without a token anywhere", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Refresh token required")
	})

	s.Run("error: 401 Unauthorized on an invalid token", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "bad-token").
			Return(nil, commands.ErrTokenValidation).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"refresh_token": "bad-token"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Invalid or expired refresh token")
	})

	s.Run("error: 403 Forbidden for a deactivated account", func() {
		s.mockCommands.EXPECT().RefreshToken(gomock.Any(), "refresh-token").
			Return(nil, commands.ErrUserInactive).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"refresh_token": "refresh-token"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Account is inactive")
	})
}

// ================================================================================
// TestLogout / TestMe
// ================================================================================

func (s *AuthHandlerTestSuite) TestLogout() {
	s.Run("success: returns 204 and clears cookies", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/auth/logout", nil, "bearer-token")

		s.Equal(http.StatusNoContent, rec.Code)
		access := httptest.ExtractCookie(rec, "access_token")
		s.Require().NotNil(access)
		s.Empty(access.Value)
	})
}

func (s *AuthHandlerTestSuite) TestMe() {
	url := "/auth/me"

	s.Run("success: returns the current user", func() {
		userView := builder.NewUserBuilder().With(func(b *builder.UserBuilder) {
			b.ID = s.authedUserID
		}).BuildReadModel()
		s.mockQueries.EXPECT().GetCurrentUser(gomock.Any(), s.authedUserID).
			Return(userView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var body map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(s.authedUserID.String(), body["id"])
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: 404 Not Found when the user vanished", func() {
		s.mockQueries.EXPECT().GetCurrentUser(gomock.Any(), s.authedUserID).
			Return(nil, queries.ErrUserNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "User not found")
	})
}
