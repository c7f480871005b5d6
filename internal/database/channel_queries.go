package database

import (
	"context"
	"database/sql"

	"github.com/kyvexhq/kyvexserver/internal/models"
)

const channelColumns = `
	id, name, description, guild, type, position, messages, deletable,
	created_by, created_at, updated_at
`

// CreateChannel inserts a new channel.
func (db *DB) CreateChannel(ctx context.Context, channel *models.Channel) error {
	query := `
		INSERT INTO channels (id, name, description, guild, type, position, messages, deletable, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := db.QueryRowContext(
		ctx,
		query,
		channel.ID,
		channel.Name,
		channel.Description,
		channel.Guild,
		channel.Type,
		channel.Position,
		channel.Messages,
		channel.Deletable,
		channel.CreatedBy,
	).Scan(&channel.CreatedAt, &channel.UpdatedAt)

	if err != nil {
		return classify("create channel", err)
	}

	return nil
}

// GetChannelByID retrieves a channel by id.
func (db *DB) GetChannelByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `SELECT ` + channelColumns + ` FROM channels WHERE id = $1`

	var channel models.Channel
	err := db.QueryRowContext(ctx, query, id).Scan(
		&channel.ID,
		&channel.Name,
		&channel.Description,
		&channel.Guild,
		&channel.Type,
		&channel.Position,
		&channel.Messages,
		&channel.Deletable,
		&channel.CreatedBy,
		&channel.CreatedAt,
		&channel.UpdatedAt,
	)
	if err != nil {
		return nil, classify("get channel", err)
	}

	return &channel, nil
}

// DeleteChannel removes a channel record.
func (db *DB) DeleteChannel(ctx context.Context, id string) error {
	query := `DELETE FROM channels WHERE id = $1`

	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return classify("delete channel", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete channel", err)
	}
	if rows == 0 {
		return classify("delete channel", sql.ErrNoRows)
	}

	return nil
}

// DeleteChannelMessages removes every message belonging to the channel.
// Cascade cleanup for channel deletion.
func (db *DB) DeleteChannelMessages(ctx context.Context, channelID string) error {
	query := `DELETE FROM messages WHERE channel = $1`

	if _, err := db.ExecContext(ctx, query, channelID); err != nil {
		return classify("delete channel messages", err)
	}

	return nil
}

// GetChannelMessages returns up to limit of the channel's newest messages,
// newest first.
func (db *DB) GetChannelMessages(ctx context.Context, channelID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, content, content_history, channel, author, created_at, updated_at
		FROM messages
		WHERE channel = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, classify("get channel messages", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*models.Message
	for rows.Next() {
		var message models.Message
		err := rows.Scan(
			&message.ID,
			&message.Content,
			&message.ContentHistory,
			&message.Channel,
			&message.Author,
			&message.CreatedAt,
			&message.UpdatedAt,
		)
		if err != nil {
			return nil, classify("scan message", err)
		}
		messages = append(messages, &message)
	}

	if err = rows.Err(); err != nil {
		return nil, classify("iterate messages", err)
	}

	return messages, nil
}
