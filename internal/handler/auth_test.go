package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/authline/authline/internal/api"
	"github.com/authline/authline/internal/config"
	"github.com/authline/authline/internal/domain"
	internal_errors "github.com/authline/authline/internal/errors"
	mw "github.com/authline/authline/internal/middleware"
	"github.com/authline/authline/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	MockSignUp         func(name, email, password, confirmPassword string) (domain.User, error)
	MockSignIn         func(email, password string) (string, domain.User, error)
	MockUser           func(id domain.UserId) (domain.User, error)
	MockForgotPassword func(email string) (string, error)
	MockResetPassword  func(rawToken, password, confirmPassword string) error
}

func (m *MockAuthService) SignUp(name, email, password, confirmPassword string) (domain.User, error) {
	if m.MockSignUp != nil {
		return m.MockSignUp(name, email, password, confirmPassword)
	}
	return domain.User{Id: 1, Name: name, Email: email}, nil
}

func (m *MockAuthService) SignIn(email, password string) (string, domain.User, error) {
	if m.MockSignIn != nil {
		return m.MockSignIn(email, password)
	}
	return "", domain.User{}, nil
}

func (m *MockAuthService) User(id domain.UserId) (domain.User, error) {
	if m.MockUser != nil {
		return m.MockUser(id)
	}
	return domain.User{Id: id}, nil
}

func (m *MockAuthService) ForgotPassword(email string) (string, error) {
	if m.MockForgotPassword != nil {
		return m.MockForgotPassword(email)
	}
	return "", nil
}

func (m *MockAuthService) ResetPassword(rawToken, password, confirmPassword string) error {
	if m.MockResetPassword != nil {
		return m.MockResetPassword(rawToken, password, confirmPassword)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{JwtTTLSeconds: 3600}}
}

func createRequest(t *testing.T, method, target string, body []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestSignUpHandler(t *testing.T) {
	h := New(&MockAuthService{}, testConfig(), nil)

	router := chi.NewRouter()
	router.Post("/v1/auth/signup", h.SignUp)
	requestBody := []byte(`{"name": "A", "email": "a@x.com", "password": "Secret1", "confirm_password": "Secret1"}`)

	t.Run("successful request", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockSignUp: func(name, email, password, confirmPassword string) (domain.User, error) {
				return domain.User{Id: 1, Name: name, Email: "a@x.com"}, nil
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/signup", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp api.SignUpResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "a@x.com", resp.User.Email)
		assert.NotContains(t, rr.Body.String(), "password_hash")
	})

	t.Run("missing fields", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/auth/signup", []byte(`{"email": "a@x.com"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockSignUp: func(name, email, password, confirmPassword string) (domain.User, error) {
				return domain.User{}, internal_errors.Conflict("Account already exists with the provided email")
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/signup", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestSignInHandler(t *testing.T) {
	h := New(&MockAuthService{}, testConfig(), nil)

	router := chi.NewRouter()
	router.Post("/v1/auth/login", h.SignIn)
	requestBody := []byte(`{"email": "a@x.com", "password": "Secret1"}`)

	t.Run("successful request", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockSignIn: func(email, password string) (string, domain.User, error) {
				return "test_token", domain.User{Id: 1, Email: email}, nil
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/login", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "accessToken", cookies[0].Name)
		assert.Equal(t, "test_token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 3600, cookies[0].MaxAge)

		var resp api.SignInResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "test_token", resp.AccessToken)
	})

	t.Run("invalid request body", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/auth/login", []byte(`{invalid json::}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockSignIn: func(email, password string) (string, domain.User, error) {
				return "", domain.User{}, internal_errors.Unauthorized("Invalid credentials")
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/login", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, rr.Result().Cookies(), "no cookie on failed sign-in")
	})

	t.Run("service error", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockSignIn: func(email, password string) (string, domain.User, error) {
				return "", domain.User{}, errors.New("mock")
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/login", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestGetUserHandler(t *testing.T) {
	signer := token.NewSigner("test_secret", time.Hour)
	h := New(&MockAuthService{}, testConfig(), nil)

	router := chi.NewRouter()
	router.With(mw.NewAuth(signer).NeedAuth()).Get("/v1/auth/user", h.GetUser)

	t.Run("successful request", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockUser: func(id domain.UserId) (domain.User, error) {
				return domain.User{Id: id, Name: "A", Email: "a@x.com"}, nil
			},
		}
		accessToken, err := signer.Issue(domain.SessionClaims{Id: 7, Email: "a@x.com"})
		require.NoError(t, err)

		req := createRequest(t, http.MethodGet, "/v1/auth/user", nil, &http.Cookie{Name: "accessToken", Value: accessToken})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.UserResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.User.Id)
	})

	t.Run("no token", func(t *testing.T) {
		req := createRequest(t, http.MethodGet, "/v1/auth/user", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("user deleted since token was issued", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockUser: func(id domain.UserId) (domain.User, error) {
				return domain.User{}, internal_errors.NotFound("User not found")
			},
		}
		accessToken, err := signer.Issue(domain.SessionClaims{Id: 7, Email: "a@x.com"})
		require.NoError(t, err)

		req := createRequest(t, http.MethodGet, "/v1/auth/user", nil, &http.Cookie{Name: "accessToken", Value: accessToken})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestForgotPasswordHandler(t *testing.T) {
	h := New(&MockAuthService{}, testConfig(), nil)

	router := chi.NewRouter()
	router.Post("/v1/auth/forgot_password", h.ForgotPassword)

	t.Run("successful request returns raw token", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockForgotPassword: func(email string) (string, error) {
				return "raw_reset_token", nil
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/forgot_password", []byte(`{"email": "a@x.com"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp api.ForgotPasswordResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "raw_reset_token", resp.Token)
	})

	t.Run("unknown email", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockForgotPassword: func(email string) (string, error) {
				return "", internal_errors.NotFound("User not found")
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/forgot_password", []byte(`{"email": "a@x.com"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		req := createRequest(t, http.MethodPost, "/v1/auth/forgot_password", []byte(`{}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestResetPasswordHandler(t *testing.T) {
	h := New(&MockAuthService{}, testConfig(), nil)

	router := chi.NewRouter()
	router.Post("/v1/auth/reset_password/{token}", h.ResetPassword)
	requestBody := []byte(`{"password": "NewPass1", "confirm_password": "NewPass1"}`)

	t.Run("token from url is passed through", func(t *testing.T) {
		var gotToken string
		h.auth = &MockAuthService{
			MockResetPassword: func(rawToken, password, confirmPassword string) error {
				gotToken = rawToken
				return nil
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/reset_password/raw_reset_token", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "raw_reset_token", gotToken)
	})

	t.Run("invalid or expired token", func(t *testing.T) {
		h.auth = &MockAuthService{
			MockResetPassword: func(rawToken, password, confirmPassword string) error {
				return internal_errors.Validation("Invalid token or token is expired")
			},
		}

		req := createRequest(t, http.MethodPost, "/v1/auth/reset_password/bad_token", requestBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	h := New(&MockAuthService{}, testConfig(), nil)

	router := chi.NewRouter()
	router.Post("/v1/auth/logout", h.Logout)

	t.Run("successful request", func(t *testing.T) {
		cookie := &http.Cookie{
			Path:     "/",
			Name:     "accessToken",
			Value:    "abc",
			MaxAge:   9999,
			HttpOnly: true,
		}
		req := createRequest(t, http.MethodPost, "/v1/auth/logout", nil, cookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)

		assert.Equal(t, "accessToken", cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
	})
}
