package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/kyvexhq/kyvexserver/internal/models"
)

// CreateMessage inserts a new message.
func (db *DB) CreateMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, content, content_history, channel, author)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	history := message.ContentHistory
	if history == nil {
		history = pq.StringArray{}
	}

	err := db.QueryRowContext(
		ctx,
		query,
		message.ID,
		message.Content,
		history,
		message.Channel,
		message.Author,
	).Scan(&message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		return classify("create message", err)
	}

	return nil
}

// GetMessageByID retrieves a message by id.
func (db *DB) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, content, content_history, channel, author, created_at, updated_at
		FROM messages
		WHERE id = $1
	`

	var message models.Message
	err := db.QueryRowContext(ctx, query, id).Scan(
		&message.ID,
		&message.Content,
		&message.ContentHistory,
		&message.Channel,
		&message.Author,
		&message.CreatedAt,
		&message.UpdatedAt,
	)
	if err != nil {
		return nil, classify("get message", err)
	}

	return &message, nil
}

// DeleteMessage removes a message record.
func (db *DB) DeleteMessage(ctx context.Context, id string) error {
	query := `DELETE FROM messages WHERE id = $1`

	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return classify("delete message", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete message", err)
	}
	if rows == 0 {
		return classify("delete message", sql.ErrNoRows)
	}

	return nil
}
