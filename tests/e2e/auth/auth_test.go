//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"airdine/internal/domain/user"
	"airdine/internal/handler/dto/request"
	"airdine/tests/common/authtest"
	"airdine/tests/common/dbtest"
	"airdine/tests/common/httptest"
	"airdine/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL   = "/api/auth/login"
	logoutURL  = "/api/auth/logout"
	refreshURL = "/api/auth/refresh"
	meURL      = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	// テスト用ユーザーを作成
	dbtest.CreateTestUser(s.T(), s.DB, "diner@example.com", string(user.RoleCustomer))
	dbtest.CreateTestUser(s.T(), s.DB, "staff@example.com", string(user.RoleStaff))
	dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", string(user.RoleCustomer))

	// 非アクティブユーザーを作成
	ctx := s.T().Context()
	_, err := s.DB.Exec(ctx, "UPDATE users SET is_active = false WHERE email = 'inactive@example.com'")
	require.NoError(s.T(), err)
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
		description    string
	}{
		{
			name:           "正常なログイン",
			email:          "diner@example.com",
			password:       "password123",
			expectedStatus: http.StatusOK,
			description:    "有効な認証情報でログインできること",
		},
		{
			name:           "存在しないユーザー",
			email:          "nonexistent@example.com",
			password:       "password123",
			expectedStatus: http.StatusUnauthorized,
			description:    "存在しないユーザーでログインできないこと",
		},
		{
			name:           "間違ったパスワード",
			email:          "diner@example.com",
			password:       "wrongpassword",
			expectedStatus: http.StatusUnauthorized,
			description:    "間違ったパスワードでログインできないこと",
		},
		{
			name:           "非アクティブユーザー",
			email:          "inactive@example.com",
			password:       "password123",
			expectedStatus: http.StatusForbidden,
			description:    "非アクティブユーザーはログインできないこと",
		},
		{
			name:           "空のメールアドレス",
			email:          "",
			password:       "password123",
			expectedStatus: http.StatusBadRequest,
			description:    "空のメールアドレスは拒否されること",
		},
		{
			name:           "短すぎるパスワード",
			email:          "diner@example.com",
			password:       "short",
			expectedStatus: http.StatusBadRequest,
			description:    "短すぎるパスワードは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			reqBody := request.LoginRequest{
				Email:    tt.email,
				Password: tt.password,
			}

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL, reqBody, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				// 成功時のレスポンス形式チェック
				var loginRes struct {
					AccessToken string `json:"access_token"`
					User        struct {
						Email string `json:"email"`
					} `json:"user"`
				}
				httptest.AssertSuccessResponse(t, w, http.StatusOK, &loginRes)
				require.NotEmpty(t, loginRes.AccessToken, "アクセストークンが空")
				require.Equal(t, tt.email, loginRes.User.Email)

				// トークンはCookieにも設定される
				require.NotNil(t, httptest.ExtractCookie(w, "access_token"))
				require.NotNil(t, httptest.ExtractCookie(w, "refresh_token"))

				// last_loginが更新されることを確認
				var lastLogin any
				err := s.DB.QueryRow(s.T().Context(), "SELECT last_login FROM users WHERE email = $1", tt.email).Scan(&lastLogin)
				require.NoError(t, err)
				require.NotNil(t, lastLogin, "last_loginが更新されていない")
			}
		})
	}
}

func (s *authSuite) TestRefresh() {
	tests := []struct {
		name              string
		setupRefreshToken func() string
		expectedStatus    int
		description       string
	}{
		{
			name: "正常なリフレッシュ",
			setupRefreshToken: func() string {
				reqBody := request.LoginRequest{
					Email:    "diner@example.com",
					Password: "password123",
				}
				w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL, reqBody, "")
				cookie := httptest.ExtractCookie(w, "refresh_token")
				require.NotNil(s.T(), cookie)
				return cookie.Value
			},
			expectedStatus: http.StatusOK,
			description:    "有効なリフレッシュトークンでトークンが更新されること",
		},
		{
			name: "無効なリフレッシュトークン",
			setupRefreshToken: func() string {
				return "invalid-refresh-token"
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なリフレッシュトークンは拒否されること",
		},
		{
			name: "空のリフレッシュトークン",
			setupRefreshToken: func() string {
				return ""
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "リフレッシュトークンなしは拒否されること",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			refreshToken := tt.setupRefreshToken()
			var reqBody any
			if refreshToken != "" {
				reqBody = request.RefreshRequest{RefreshToken: refreshToken}
			}

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL, reqBody, "")
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusOK {
				var refreshRes struct {
					AccessToken string `json:"access_token"`
				}
				httptest.AssertSuccessResponse(t, w, http.StatusOK, &refreshRes)
				require.NotEmpty(t, refreshRes.AccessToken, "新しいアクセストークンが空")
			}
		})
	}
}

func (s *authSuite) TestLogout() {
	tests := []struct {
		name           string
		setupToken     func() string
		expectedStatus int
		description    string
	}{
		{
			name: "正常なログアウト",
			setupToken: func() string {
				return authtest.LoginUser(s.T(), s.Router, "diner@example.com", "password123")
			},
			expectedStatus: http.StatusNoContent,
			description:    "有効なトークンでログアウトできること",
		},
		{
			name: "無効なトークン",
			setupToken: func() string {
				return "invalid-token"
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "無効なトークンでログアウトできないこと",
		},
		{
			name: "トークンなし",
			setupToken: func() string {
				return ""
			},
			expectedStatus: http.StatusUnauthorized,
			description:    "トークンなしでログアウトできないこと",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			token := tt.setupToken()
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, logoutURL, nil, token)
			require.Equal(t, tt.expectedStatus, w.Code, tt.description)

			if tt.expectedStatus == http.StatusNoContent {
				// ログアウト後はCookieがクリアされること
				access := httptest.ExtractCookie(w, "access_token")
				require.NotNil(t, access)
				require.Empty(t, access.Value)
			}
		})
	}
}

func (s *authSuite) TestMe() {
	s.Run("正常なユーザー情報取得", func() {
		t := s.T()

		token := authtest.LoginUser(t, s.Router, "staff@example.com", "password123")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)

		var me struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &me)
		require.Equal(t, "staff@example.com", me.Email)
		require.Equal(t, string(user.RoleStaff), me.Role)
	})

	s.Run("認証なしは拒否", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	s.Run("期限切れトークンは拒否", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "expired@example.com", string(user.RoleCustomer))
		token := authtest.NewJWTHelper(s.Config.JWT).CreateExpiredToken(t, userID, user.RoleCustomer)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
