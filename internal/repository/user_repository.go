package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/utils"
)

const userColumns = "id,username,email,full_name,password_hash,refresh_token,avatar_url,cover_url,created_at,updated_at"

// UserRepo is the credential store adapter backed by the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreateParams carries the fields needed to insert a new user.  Password is
// the plaintext; hashing happens here so callers never handle hashes.
type CreateParams struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   string
	Cover    *string
}

// Create inserts a user and returns the stored record.
func (r *UserRepo) Create(ctx context.Context, p CreateParams, cost int) (model.User, error) {
	p.Username = strings.ToLower(strings.TrimSpace(p.Username))
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	hash, err := utils.HashPassword(p.Password, cost)
	if err != nil {
		return model.User{}, err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_url) VALUES (?,?,?,?,?,?,?)",
		id, p.Username, p.Email, p.FullName, hash, p.Avatar, p.Cover)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrUserExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsernameOrEmail fetches a user matching either identifier.  Empty
// identifiers never match; callers must pass at least one non-empty value.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "" && email == "":
		return model.User{}, ErrUserNotFound
	case username == "":
		return r.scanOne(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	case email == "":
		return r.scanOne(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
	default:
		return r.scanOne(r.DB.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1", username, email))
	}
}

// SetRefreshToken overwrites the stored refresh token, rotating the single
// session slot.  A nil token clears the slot (logout); clearing an already
// empty slot is not an error.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=?, updated_at=NOW() WHERE id=?", token, id)
	return err
}

// UpdateAvatar replaces the stored avatar URL and returns the fresh record.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id, url string) (model.User, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=?, updated_at=NOW() WHERE id=?", url, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateCover replaces the stored cover image URL and returns the fresh record.
func (r *UserRepo) UpdateCover(ctx context.Context, id, url string) (model.User, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET cover_url=?, updated_at=NOW() WHERE id=?", url, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.RefreshToken, &u.AvatarURL, &u.CoverURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}
