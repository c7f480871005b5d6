package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
)

// recentMessageLimit caps how many messages a channel read returns.
const recentMessageLimit = 150

// ChannelService implements channel creation, reads and deletion within a
// guild. Position assignment is serialized per guild so concurrent
// creations never share a position.
type ChannelService struct {
	store      GraphStore
	events     Broadcaster
	guildLocks *parentLocks
	logger     *zap.Logger
}

// NewChannelService creates a channel service.
func NewChannelService(store GraphStore, events Broadcaster, logger *zap.Logger) *ChannelService {
	return &ChannelService{
		store:      store,
		events:     events,
		guildLocks: newParentLocks(),
		logger:     logger,
	}
}

// Create adds a channel to a guild. Only the guild owner may create
// channels. The channel takes the next free position in the guild and
// subscribers on the guild topic are notified.
func (s *ChannelService) Create(ctx context.Context, actor *models.User, guildID, name, description string, channelType models.ChannelType) (*models.Channel, error) {
	if guildID == "" {
		return nil, missingField("guild_id")
	}
	if name == "" {
		return nil, missingField("name")
	}
	if channelType == "" {
		channelType = models.ChannelTypeText
	}
	if !channelType.Valid() {
		return nil, ErrInvalidChannelType
	}

	guild, err := s.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, storeErr(err)
	}

	if !IsOwner(actor, guild) {
		return nil, ErrNotGuildOwner
	}

	unlock := s.guildLocks.Lock(guild.ID)
	defer unlock()

	position, err := s.store.NextChannelPosition(ctx, guild.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	channel := &models.Channel{
		ID:          models.NewID(),
		Name:        name,
		Description: description,
		Guild:       guild.ID,
		Type:        channelType,
		Position:    position,
		Messages:    []string{},
		Deletable:   true,
		CreatedBy:   actor.ID,
	}

	if err := s.store.CreateChannel(ctx, channel); err != nil {
		return nil, storeErr(err)
	}
	if err := s.store.AppendChild(ctx, database.GuildChannels, guild.ID, channel.ID); err != nil {
		return nil, storeErr(err)
	}

	s.events.Publish(guild.ID, models.EventChannelCreate, channel)

	s.logger.Info("channel created",
		zap.String("channel_id", channel.ID),
		zap.String("guild_id", guild.ID),
		zap.String("type", string(channel.Type)),
	)

	return channel, nil
}

// Get returns a channel with its newest messages, authors resolved to
// sanitized views. Only guild members may read channels. A channel not
// listed in the guild's channel sequence is treated as absent even if the
// row still exists.
func (s *ChannelService) Get(ctx context.Context, actor *models.User, guildID, channelID string) (*models.ChannelDetail, error) {
	if guildID == "" {
		return nil, missingField("guild_id")
	}
	if channelID == "" {
		return nil, missingField("channel_id")
	}

	guild, err := s.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return nil, storeErr(err)
	}

	if !IsMember(actor, guild) {
		return nil, ErrNotGuildMember
	}
	if !guild.HasChannel(channelID) {
		return nil, errNotInGuild("channel")
	}

	channel, err := s.store.GetChannelByID(ctx, channelID)
	if err != nil {
		return nil, storeErr(err)
	}

	messages, err := s.store.GetChannelMessages(ctx, channel.ID, recentMessageLimit)
	if err != nil {
		return nil, storeErr(err)
	}

	detail := &models.ChannelDetail{
		Channel:        channel,
		RecentMessages: make([]*models.MessageDetail, 0, len(messages)),
	}

	// Authors are resolved once per distinct id. A deleted author leaves
	// the message with a nil author rather than failing the read.
	authors := make(map[string]*models.User)
	for _, msg := range messages {
		author, seen := authors[msg.Author]
		if !seen {
			author, err = s.store.GetUserByID(ctx, msg.Author)
			if err != nil {
				if !errors.Is(err, database.ErrNotFound) {
					return nil, storeErr(err)
				}
				author = nil
			} else {
				author = author.Sanitized()
			}
			authors[msg.Author] = author
		}
		detail.RecentMessages = append(detail.RecentMessages, &models.MessageDetail{
			Message:    msg,
			AuthorUser: author,
		})
	}

	return detail, nil
}

// Delete removes a channel and all its messages. Only the guild owner may
// delete channels, and the guild's default channel is never deletable.
func (s *ChannelService) Delete(ctx context.Context, actor *models.User, guildID, channelID string) error {
	if guildID == "" {
		return missingField("guild_id")
	}
	if channelID == "" {
		return missingField("channel_id")
	}

	guild, err := s.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return storeErr(err)
	}

	if !IsOwner(actor, guild) {
		return ErrNotGuildOwner
	}
	if !guild.HasChannel(channelID) {
		return errNotInGuild("channel")
	}

	channel, err := s.store.GetChannelByID(ctx, channelID)
	if err != nil {
		return storeErr(err)
	}

	if !channel.Deletable {
		return ErrChannelNotDeletable
	}

	unlock := s.guildLocks.Lock(guild.ID)
	defer unlock()

	if err := s.store.RemoveChild(ctx, database.GuildChannels, guild.ID, channel.ID); err != nil {
		return storeErr(err)
	}
	if err := s.store.DeleteChannelMessages(ctx, channel.ID); err != nil {
		return storeErr(err)
	}
	if err := s.store.DeleteChannel(ctx, channel.ID); err != nil {
		return storeErr(err)
	}

	s.events.Publish(guild.ID, models.EventChannelDelete, models.DeletedRef{ID: channel.ID})

	s.logger.Info("channel deleted",
		zap.String("channel_id", channel.ID),
		zap.String("guild_id", guild.ID),
		zap.String("actor", actor.ID),
	)

	return nil
}
