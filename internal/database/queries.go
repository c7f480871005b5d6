package database

import (
	"context"
	"fmt"
)

// ChildField names a reference-sequence column on a parent table. Only the
// enumerated pairs are valid; the identifiers are interpolated into SQL and
// must never come from request input.
type ChildField struct {
	table string
	field string
}

var (
	// GuildMembers is the guild → member-user sequence.
	GuildMembers = ChildField{table: "guilds", field: "members"}
	// GuildChannels is the guild → channel sequence.
	GuildChannels = ChildField{table: "guilds", field: "channels"}
	// ChannelMessages is the channel → message sequence.
	ChannelMessages = ChildField{table: "channels", field: "messages"}
	// UserGuilds is the user → guild-membership sequence.
	UserGuilds = ChildField{table: "users", field: "guilds"}
)

// AppendChild appends childID to the named sequence field of the parent,
// persisting the result. Appending an id that is already present is a no-op,
// so retries are safe. Returns ErrNotFound if the parent does not exist.
func (db *DB) AppendChild(ctx context.Context, f ChildField, parentID, childID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = array_append(%s, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(%s))
	`, f.table, f.field, f.field, f.field)

	result, err := db.ExecContext(ctx, query, parentID, childID)
	if err != nil {
		return classify("append child", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("append child", err)
	}
	if rows > 0 {
		return nil
	}

	// Zero rows is either an idempotent re-append or a missing parent.
	return db.checkParentExists(ctx, f.table, parentID)
}

// RemoveChild removes childID from the named sequence field of the parent.
// Removing an absent id is a no-op. Returns ErrNotFound if the parent does
// not exist.
func (db *DB) RemoveChild(ctx context.Context, f ChildField, parentID, childID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = array_remove(%s, $2), updated_at = NOW()
		WHERE id = $1
	`, f.table, f.field, f.field)

	result, err := db.ExecContext(ctx, query, parentID, childID)
	if err != nil {
		return classify("remove child", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classify("remove child", err)
	}
	if rows == 0 {
		return fmt.Errorf("remove child: parent %s: %w", parentID, ErrNotFound)
	}

	return nil
}

// NextChannelPosition returns one more than the maximum position among the
// guild's channels, or 0 if the guild has none.
func (db *DB) NextChannelPosition(ctx context.Context, guildID string) (int, error) {
	query := `
		SELECT COALESCE(MAX(position) + 1, 0)
		FROM channels
		WHERE guild = $1
	`

	var position int
	if err := db.QueryRowContext(ctx, query, guildID).Scan(&position); err != nil {
		return 0, classify("next channel position", err)
	}

	return position, nil
}

func (db *DB) checkParentExists(ctx context.Context, table, parentID string) error {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table)

	var exists bool
	if err := db.QueryRowContext(ctx, query, parentID).Scan(&exists); err != nil {
		return classify("check parent", err)
	}
	if !exists {
		return fmt.Errorf("parent %s: %w", parentID, ErrNotFound)
	}
	return nil
}
