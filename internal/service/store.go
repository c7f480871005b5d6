// Package service implements the mutation pipeline of the containment graph:
// every create/delete runs validate → authorize → persist → cascade → notify.
// Authorization is re-derived from freshly loaded entities on every call and
// never cached across requests.
package service

import (
	"context"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
)

// GraphStore is the containment-graph storage contract consumed by the
// pipeline. *database.DB implements it; tests substitute an in-memory fake.
// Implementations report failures using the database package's sentinel
// errors (ErrNotFound, ErrConflict, ErrUnavailable).
type GraphStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetUserToken(ctx context.Context, id, token string) error
	DeleteUser(ctx context.Context, id string) error

	CreateGuild(ctx context.Context, guild *models.Guild) error
	GetGuildByID(ctx context.Context, id string) (*models.Guild, error)
	DeleteGuild(ctx context.Context, id string) error
	RemoveGuildFromMembers(ctx context.Context, guildID string) error

	CreateChannel(ctx context.Context, channel *models.Channel) error
	GetChannelByID(ctx context.Context, id string) (*models.Channel, error)
	DeleteChannel(ctx context.Context, id string) error
	DeleteChannelMessages(ctx context.Context, channelID string) error
	GetChannelMessages(ctx context.Context, channelID string, limit int) ([]*models.Message, error)
	NextChannelPosition(ctx context.Context, guildID string) (int, error)

	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id string) error

	AppendChild(ctx context.Context, f database.ChildField, parentID, childID string) error
	RemoveChild(ctx context.Context, f database.ChildField, parentID, childID string) error
}

// Broadcaster fans event notifications out to topic subscribers. Publish is
// fire-and-forget: delivery failures never surface to the pipeline.
type Broadcaster interface {
	Publish(topic, event string, payload any)
}

// AvatarGenerator produces identicon images for new users and guilds.
type AvatarGenerator interface {
	Generate(ctx context.Context, seed, style string) ([]byte, error)
}

// CredentialIssuer mints and resolves bearer credentials.
type CredentialIssuer interface {
	Issue(userID string) (string, error)
	Resolve(token string) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
