package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
)

// GuildService implements guild creation, reads and deletion, including the
// cascades that keep the containment graph consistent.
type GuildService struct {
	store   GraphStore
	avatars AvatarGenerator
	events  Broadcaster
	logger  *zap.Logger
}

// NewGuildService creates a guild service.
func NewGuildService(store GraphStore, avatars AvatarGenerator, events Broadcaster, logger *zap.Logger) *GuildService {
	return &GuildService{
		store:   store,
		avatars: avatars,
		events:  events,
		logger:  logger,
	}
}

// Create builds a new guild owned by actor. Every guild starts with the
// owner as its only member and a non-deletable default category channel at
// position zero. Icon generation is part of creation: if it fails, no guild
// is created.
func (s *GuildService) Create(ctx context.Context, actor *models.User, name, description string) (*models.Guild, error) {
	if name == "" {
		return nil, missingField("name")
	}

	icon, err := s.avatars.Generate(ctx, name, "")
	if err != nil {
		s.logger.Error("guild icon generation failed", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%w: guild icon generation failed", ErrInternal)
	}

	guild := &models.Guild{
		ID:          models.NewID(),
		Name:        name,
		Description: description,
		Owner:       actor.ID,
		Members:     []string{actor.ID},
		Channels:    []string{},
		Icon:        icon,
	}

	if err := s.store.CreateGuild(ctx, guild); err != nil {
		return nil, storeErr(err)
	}

	defaultChannel := &models.Channel{
		ID:        models.NewID(),
		Name:      models.DefaultChannelName,
		Guild:     guild.ID,
		Type:      models.ChannelTypeCategory,
		Position:  0,
		Messages:  []string{},
		Deletable: false,
		CreatedBy: actor.ID,
	}

	if err := s.store.CreateChannel(ctx, defaultChannel); err != nil {
		return nil, storeErr(err)
	}
	if err := s.store.AppendChild(ctx, database.GuildChannels, guild.ID, defaultChannel.ID); err != nil {
		return nil, storeErr(err)
	}
	guild.Channels = append(guild.Channels, defaultChannel.ID)

	if err := s.store.AppendChild(ctx, database.UserGuilds, actor.ID, guild.ID); err != nil {
		return nil, storeErr(err)
	}

	s.logger.Info("guild created",
		zap.String("guild_id", guild.ID),
		zap.String("owner", actor.ID),
	)

	return guild, nil
}

// Get returns a guild by id. Any authenticated user can read guild metadata.
func (s *GuildService) Get(ctx context.Context, guildID string) (*models.Guild, error) {
	if guildID == "" {
		return nil, missingField("guild_id")
	}

	guild, err := s.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, storeErr(err)
	}

	return guild, nil
}

// Delete removes a guild. Only the owner may delete it. The guild id is
// pruned from every member's guild list, and subscribers are told the guild
// is gone. Channels and messages under the guild become unreachable; readers
// treat unresolvable ids as absent.
func (s *GuildService) Delete(ctx context.Context, actor *models.User, guildID string) error {
	if guildID == "" {
		return missingField("guild_id")
	}

	guild, err := s.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return storeErr(err)
	}

	if !IsOwner(actor, guild) {
		return ErrNotGuildOwner
	}

	if err := s.store.DeleteGuild(ctx, guild.ID); err != nil {
		return storeErr(err)
	}
	if err := s.store.RemoveGuildFromMembers(ctx, guild.ID); err != nil {
		return storeErr(err)
	}

	s.events.Publish(guild.ID, models.EventGuildUpdate, models.DeletedRef{ID: guild.ID})

	s.logger.Info("guild deleted",
		zap.String("guild_id", guild.ID),
		zap.String("actor", actor.ID),
	)

	return nil
}
