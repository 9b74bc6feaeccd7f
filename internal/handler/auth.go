package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/media"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions *service.SessionManager
	Media    *media.Uploader
}

func NewAuthHandler(cfg config.Config, u UserStore, s *service.SessionManager, m *media.Uploader) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Media: m}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// Register: create user with uploaded avatar/cover, return public view.
// Multipart form: username, email, fullName, password, avatar (file,
// required), coverImage (file, optional).
func (h *AuthHandler) Register(c echo.Context) error {
	username := strings.ToLower(strings.TrimSpace(c.FormValue("username")))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	fullName := strings.TrimSpace(c.FormValue("fullName"))
	password := c.FormValue("password")

	if username == "" || email == "" || fullName == "" || password == "" {
		return service.BadRequest("all fields are required")
	}
	if !strings.Contains(email, "@") {
		return service.BadRequest("invalid email address")
	}

	avatarURL, err := h.uploadFormFile(c, "avatar")
	if err != nil {
		return service.BadRequest("avatar file is required")
	}
	if avatarURL == "" {
		return service.Internal("avatar upload failed")
	}

	// Cover image is optional and its upload failures degrade to no image.
	var cover *string
	if coverURL, err := h.uploadFormFile(c, "coverImage"); err == nil && coverURL != "" {
		cover = &coverURL
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.Create(ctx, repository.CreateParams{
		Username: username,
		Email:    email,
		FullName: fullName,
		Password: password,
		Avatar:   avatarURL,
		Cover:    cover,
	}, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return service.Conflict("user with email or username already exists")
		}
		return service.Internal("failed to register user")
	}

	h.publish(c, user.ID, user.Username, queue.ActionRegistered)
	return respond(c, http.StatusCreated, user.Public(), "user registered successfully")
}

// Login: verify credentials, set session cookies, return user and tokens.
// Tokens are echoed in the body as well so non-cookie clients can store
// them themselves.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return service.BadRequest("invalid request body")
	}
	if req.Password == "" {
		return service.BadRequest("password is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, err := h.Sessions.Login(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	setSessionCookies(c, h.Cfg, sess.AccessToken, sess.RefreshToken)
	h.publish(c, sess.User.ID, sess.User.Username, queue.ActionLoggedIn)
	return respond(c, http.StatusOK, echo.Map{
		"user":         sess.User,
		"accessToken":  sess.AccessToken,
		"refreshToken": sess.RefreshToken,
	}, "user logged in successfully")
}

// Refresh: rotate the token pair.  The refresh token is read from the
// cookie first, falling back to the JSON body for non-cookie clients.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := ""
	if ck, err := c.Cookie(refreshCookieName); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req refreshReq
		_ = c.Bind(&req)
		raw = strings.TrimSpace(req.RefreshToken)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, raw)
	if err != nil {
		return err
	}

	setSessionCookies(c, h.Cfg, pair.AccessToken, pair.RefreshToken)
	return respond(c, http.StatusOK, echo.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "access token refreshed")
}

// Logout: clear the stored refresh token and both cookies (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return service.Unauthorized("unauthorized request")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Logout(ctx, userID); err != nil {
		return err
	}

	clearSessionCookies(c, h.Cfg)
	h.publish(c, userID, "", queue.ActionLoggedOut)
	return respond(c, http.StatusOK, echo.Map{}, "user logged out successfully")
}

// uploadFormFile reads one multipart file and pushes it to the media host.
// The error reports a missing/unreadable form file; an empty URL with nil
// error means the upload itself failed.
func (h *AuthHandler) uploadFormFile(c echo.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Media.Upload(c.Request().Context(), fh.Filename, f), nil
}

// publish emits an account activity event; broker failures are ignored so
// they never fail the request.
func (h *AuthHandler) publish(c echo.Context, userID, username, action string) {
	_ = queue.PublishAccountActivity(c.Request().Context(), queue.AccountActivityEvent{
		UserID:     userID,
		Username:   username,
		Action:     action,
		RemoteIP:   c.RealIP(),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
