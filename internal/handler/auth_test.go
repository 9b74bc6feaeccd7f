package handler_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/handler"
	"github.com/iliyamo/user-account-service/internal/media"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/router"
	"github.com/iliyamo/user-account-service/internal/service"
	"github.com/iliyamo/user-account-service/internal/utils"
)

type memStore struct {
	users map[string]model.User
}

func (f *memStore) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *memStore) GetByUsernameOrEmail(_ context.Context, username, email string) (model.User, error) {
	for _, u := range f.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (f *memStore) SetRefreshToken(_ context.Context, id string, token *string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if token == nil {
		u.RefreshToken = sql.NullString{}
	} else {
		u.RefreshToken = sql.NullString{String: *token, Valid: true}
	}
	f.users[id] = u
	return nil
}

func (f *memStore) Create(_ context.Context, p repository.CreateParams, cost int) (model.User, error) {
	for _, u := range f.users {
		if u.Username == p.Username || u.Email == p.Email {
			return model.User{}, repository.ErrUserExists
		}
	}
	hash, err := utils.HashPassword(p.Password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		ID:           "u" + strconv.Itoa(len(f.users)+1),
		Username:     p.Username,
		Email:        p.Email,
		FullName:     p.FullName,
		PasswordHash: hash,
		AvatarURL:    p.Avatar,
	}
	if p.Cover != nil {
		u.CoverURL = sql.NullString{String: *p.Cover, Valid: true}
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *memStore) UpdateAvatar(_ context.Context, id, url string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	u.AvatarURL = url
	f.users[id] = u
	return u, nil
}

func (f *memStore) UpdateCover(_ context.Context, id, url string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	u.CoverURL = sql.NullString{String: url, Valid: true}
	f.users[id] = u
	return u, nil
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func testCfg() config.Config {
	return config.Config{
		Env:            "test",
		AccessSecret:   "access-test-secret",
		RefreshSecret:  "refresh-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
}

// newTestServer wires the real router, session manager and error handler on
// top of an in-memory store seeded with one user.  mediaURL points the
// uploader at a test media host; empty disables uploads.
func newTestServer(t *testing.T, mediaURL string) (*echo.Echo, *memStore) {
	t.Helper()
	hash, err := utils.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	store := &memStore{users: map[string]model.User{
		"u1": {
			ID:           "u1",
			Username:     "alice",
			Email:        "alice@example.com",
			FullName:     "Alice A",
			PasswordHash: hash,
		},
	}}

	cfg := testCfg()
	sessions := service.NewSessionManager(cfg, store)
	uploader := media.NewUploader(mediaURL, "")

	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler
	router.RegisterRoutes(e)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, store, sessions, uploader),
		handler.NewUserHandler(cfg, store, uploader),
		cfg, nil)
	return e, store
}

func doJSON(e *echo.Echo, method, path, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLoginSetsCookiesAndEnvelope(t *testing.T) {
	e, store := newTestServer(t, "")

	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	require.Equal(t, http.StatusOK, env.StatusCode)
	require.Equal(t, "user logged in successfully", env.Message)

	var data struct {
		User         model.PublicUser `json:"user"`
		AccessToken  string           `json:"accessToken"`
		RefreshToken string           `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "u1", data.User.ID)
	require.NotEmpty(t, data.AccessToken)

	access := cookieByName(t, rec, "accessToken")
	refresh := cookieByName(t, rec, "refreshToken")
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, access.SameSite)
	require.False(t, access.Secure) // env=test, not prod
	require.Equal(t, data.RefreshToken, refresh.Value)
	require.Equal(t, refresh.Value, store.users["u1"].RefreshToken.String)
}

func TestLoginByEmailOnly(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"alice@example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginErrorEnvelopes(t *testing.T) {
	e, _ := newTestServer(t, "")

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"no identifiers", `{"password":"correct horse"}`, http.StatusBadRequest},
		{"no password", `{"username":"alice"}`, http.StatusBadRequest},
		{"unknown user", `{"username":"nobody","password":"x"}`, http.StatusNotFound},
		{"wrong password", `{"username":"alice","password":"nope"}`, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/v1/auth/login", tc.body, nil)
			require.Equal(t, tc.status, rec.Code)
			env := decodeEnvelope(t, rec)
			require.False(t, env.Success)
			require.Equal(t, tc.status, env.StatusCode)
			require.NotEmpty(t, env.Message)
		})
	}
}

func TestRefreshViaCookieRotates(t *testing.T) {
	e, store := newTestServer(t, "")

	login := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"correct horse"}`, nil)
	oldRefresh := cookieByName(t, login, "refreshToken").Value

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: oldRefresh})
	})
	require.Equal(t, http.StatusOK, rec.Code)

	newRefresh := cookieByName(t, rec, "refreshToken").Value
	require.NotEqual(t, oldRefresh, newRefresh)
	require.Equal(t, newRefresh, store.users["u1"].RefreshToken.String)

	// The rotated-out cookie value is now rejected.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: oldRefresh})
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshViaBodyFallback(t *testing.T) {
	e, _ := newTestServer(t, "")

	login := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"correct horse"}`, nil)
	refresh := cookieByName(t, login, "refreshToken").Value

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refreshToken":"`+refresh+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshWithoutTokenIsUnauthorized(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, decodeEnvelope(t, rec).Success)
}

func TestRefreshWithGarbageTokenIsBadRequest(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := doJSON(e, http.MethodPost, "/v1/auth/refresh",
		`{"refreshToken":"garbage"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookiesAndSlot(t *testing.T) {
	e, store := newTestServer(t, "")

	login := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"correct horse"}`, nil)
	access := cookieByName(t, login, "accessToken").Value
	refresh := cookieByName(t, login, "refreshToken").Value

	rec := doJSON(e, http.MethodPost, "/v1/auth/logout", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+access)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeEnvelope(t, rec).Success)

	// Both cookies are expired on the client.
	require.Less(t, cookieByName(t, rec, "accessToken").MaxAge, 0)
	require.Less(t, cookieByName(t, rec, "refreshToken").MaxAge, 0)

	// And the server-side slot is gone, so the old refresh token is dead.
	require.False(t, store.users["u1"].RefreshToken.Valid)
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutWithoutTokenIsUnauthorized(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := doJSON(e, http.MethodPost, "/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, decodeEnvelope(t, rec).Success)
}

func TestMeReturnsCurrentUser(t *testing.T) {
	e, _ := newTestServer(t, "")

	login := doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"username":"alice","password":"correct horse"}`, nil)
	access := cookieByName(t, login, "accessToken")

	rec := doJSON(e, http.MethodGet, "/v1/users/me", "", func(req *http.Request) {
		req.AddCookie(access)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var user model.PublicUser
	require.NoError(t, json.Unmarshal(env.Data, &user))
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "alice", user.Username)
	// Projection sanity: the raw body never carries credential fields.
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "refreshToken")
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	e, _ := newTestServer(t, "")

	rec := doJSON(e, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.Equal(t, http.StatusNotFound, env.StatusCode)
}
