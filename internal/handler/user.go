package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/media"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/service"
)

// UserStore is the persistence surface the handlers need.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, p repository.CreateParams, cost int) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (model.User, error)
	UpdateCover(ctx context.Context, id, url string) (model.User, error)
}

// UserHandler serves the protected user endpoints.  All of them rely on the
// access-token middleware having placed the authenticated user id in the
// request context.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
	Media *media.Uploader
}

func NewUserHandler(cfg config.Config, u UserStore, m *media.Uploader) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Media: m}
}

// Me returns the authenticated user's public view.
func (h *UserHandler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return service.Unauthorized("unauthorized request")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return service.NotFound("user does not exist")
		}
		return service.Internal("failed to load user")
	}
	return respond(c, http.StatusOK, user.Public(), "current user fetched successfully")
}

// UpdateAvatar replaces the authenticated user's avatar image.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", h.Users.UpdateAvatar, "avatar updated successfully")
}

// UpdateCover replaces the authenticated user's cover image.
func (h *UserHandler) UpdateCover(c echo.Context) error {
	return h.updateImage(c, "coverImage", h.Users.UpdateCover, "cover image updated successfully")
}

func (h *UserHandler) updateImage(
	c echo.Context,
	field string,
	save func(ctx context.Context, id, url string) (model.User, error),
	message string,
) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return service.Unauthorized("unauthorized request")
	}

	fh, err := c.FormFile(field)
	if err != nil {
		return service.BadRequest(field + " file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return service.BadRequest(field + " file is required")
	}
	defer f.Close()

	url := h.Media.Upload(c.Request().Context(), fh.Filename, f)
	if url == "" {
		return service.Internal(field + " upload failed")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := save(ctx, userID, url)
	if err != nil {
		return service.Internal("failed to update " + field)
	}
	return respond(c, http.StatusOK, user.Public(), message)
}
