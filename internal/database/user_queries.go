package database

import (
	"context"
	"database/sql"

	"github.com/kyvexhq/kyvexserver/internal/models"
)

const userColumns = `
	id, username, display_name, password_hash, guilds, profile_img,
	status, status_text, pronouns, about_me, current_token,
	two_factor_enabled, two_factor_secret, last_ip, devices, last_seen,
	disabled, created_at, updated_at
`

// CreateUser inserts a new user. A duplicate username surfaces as
// ErrConflict.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, display_name, password_hash, guilds, profile_img, status, current_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at, last_seen
	`

	err := db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.DisplayName,
		user.PasswordHash,
		user.Guilds,
		user.ProfileImg,
		user.Status,
		user.CurrentToken,
	).Scan(&user.CreatedAt, &user.UpdatedAt, &user.LastSeen)

	if err != nil {
		return classify("create user", err)
	}

	return nil
}

// GetUserByID retrieves a user by id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return db.scanUser(db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by unique username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return db.scanUser(db.QueryRowContext(ctx, query, username))
}

// SetUserToken records the user's current bearer token; pass the empty
// string on logout.
func (db *DB) SetUserToken(ctx context.Context, id, token string) error {
	query := `UPDATE users SET current_token = $2, updated_at = NOW() WHERE id = $1`

	result, err := db.ExecContext(ctx, query, id, token)
	if err != nil {
		return classify("set user token", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("set user token", err)
	}
	if rows == 0 {
		return classify("set user token", sql.ErrNoRows)
	}

	return nil
}

// DeleteUser removes a user record. References to the user from guilds and
// messages are left dangling; readers treat unresolvable ids as absent.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return classify("delete user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete user", err)
	}
	if rows == 0 {
		return classify("delete user", sql.ErrNoRows)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.PasswordHash,
		&user.Guilds,
		&user.ProfileImg,
		&user.Status,
		&user.StatusText,
		&user.Pronouns,
		&user.AboutMe,
		&user.CurrentToken,
		&user.TwoFactorEnabled,
		&user.TwoFactorSecret,
		&user.LastIP,
		&user.Devices,
		&user.LastSeen,
		&user.Disabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, classify("get user", err)
	}
	return &user, nil
}
