package database

import (
	"context"
	"database/sql"

	"github.com/kyvexhq/kyvexserver/internal/models"
)

const guildColumns = `
	id, name, description, owner, members, channels, icon, created_at, updated_at
`

// CreateGuild inserts a new guild.
func (db *DB) CreateGuild(ctx context.Context, guild *models.Guild) error {
	query := `
		INSERT INTO guilds (id, name, description, owner, members, channels, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := db.QueryRowContext(
		ctx,
		query,
		guild.ID,
		guild.Name,
		guild.Description,
		guild.Owner,
		guild.Members,
		guild.Channels,
		guild.Icon,
	).Scan(&guild.CreatedAt, &guild.UpdatedAt)

	if err != nil {
		return classify("create guild", err)
	}

	return nil
}

// GetGuildByID retrieves a guild by id.
func (db *DB) GetGuildByID(ctx context.Context, id string) (*models.Guild, error) {
	query := `SELECT ` + guildColumns + ` FROM guilds WHERE id = $1`

	var guild models.Guild
	err := db.QueryRowContext(ctx, query, id).Scan(
		&guild.ID,
		&guild.Name,
		&guild.Description,
		&guild.Owner,
		&guild.Members,
		&guild.Channels,
		&guild.Icon,
		&guild.CreatedAt,
		&guild.UpdatedAt,
	)
	if err != nil {
		return nil, classify("get guild", err)
	}

	return &guild, nil
}

// DeleteGuild removes a guild record.
func (db *DB) DeleteGuild(ctx context.Context, id string) error {
	query := `DELETE FROM guilds WHERE id = $1`

	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return classify("delete guild", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete guild", err)
	}
	if rows == 0 {
		return classify("delete guild", sql.ErrNoRows)
	}

	return nil
}

// RemoveGuildFromMembers drops guildID from every user's guild-membership
// sequence. Used as cascade cleanup when a guild is deleted.
func (db *DB) RemoveGuildFromMembers(ctx context.Context, guildID string) error {
	query := `
		UPDATE users
		SET guilds = array_remove(guilds, $1), updated_at = NOW()
		WHERE $1 = ANY(guilds)
	`

	if _, err := db.ExecContext(ctx, query, guildID); err != nil {
		return classify("remove guild from members", err)
	}

	return nil
}
