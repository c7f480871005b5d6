package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
)

// maxMessageLength caps message content size.
const maxMessageLength = 4000

// MessageService implements message creation, reads and deletion within a
// channel.
type MessageService struct {
	store        GraphStore
	events       Broadcaster
	channelLocks *parentLocks
	logger       *zap.Logger
}

// NewMessageService creates a message service.
func NewMessageService(store GraphStore, events Broadcaster, logger *zap.Logger) *MessageService {
	return &MessageService{
		store:        store,
		events:       events,
		channelLocks: newParentLocks(),
		logger:       logger,
	}
}

// Create posts a message to a channel. Any guild member may post. The
// message is appended to the channel's sequence and broadcast to
// subscribers, author resolved, exactly once.
func (s *MessageService) Create(ctx context.Context, actor *models.User, guildID, channelID, content string) (*models.MessageDetail, error) {
	if guildID == "" {
		return nil, missingField("guild_id")
	}
	if channelID == "" {
		return nil, missingField("channel_id")
	}
	if strings.TrimSpace(content) == "" {
		return nil, missingField("content")
	}
	if len(content) > maxMessageLength {
		return nil, errContentTooLong
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

	message := &models.Message{
		ID:      models.NewID(),
		Content: content,
		Channel: channelID,
		Author:  actor.ID,
	}

	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, storeErr(err)
	}

	unlock := s.channelLocks.Lock(channelID)
	err = s.store.AppendChild(ctx, database.ChannelMessages, channelID, message.ID)
	unlock()
	if err != nil {
		return nil, storeErr(err)
	}

	detail := &models.MessageDetail{
		Message:    message,
		AuthorUser: actor.Sanitized(),
	}

	s.events.Publish(channelID, models.EventMessageCreate, detail)

	s.logger.Info("message created",
		zap.String("message_id", message.ID),
		zap.String("channel_id", channelID),
		zap.String("author", actor.ID),
	)

	return detail, nil
}

// Get returns a single message with its author resolved. Only guild members
// may read messages, and the message must belong to the named channel.
func (s *MessageService) Get(ctx context.Context, actor *models.User, guildID, channelID, messageID string) (*models.MessageDetail, error) {
	if guildID == "" {
		return nil, missingField("guild_id")
	}
	if channelID == "" {
		return nil, missingField("channel_id")
	}
	if messageID == "" {
		return nil, missingField("message_id")
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

	message, err := s.store.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, storeErr(err)
	}
	if message.Channel != channelID {
		return nil, errNotInGuild("message")
	}

	var author *models.User
	if u, err := s.store.GetUserByID(ctx, message.Author); err == nil {
		author = u.Sanitized()
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, storeErr(err)
	}

	return &models.MessageDetail{Message: message, AuthorUser: author}, nil
}

// Delete removes a message. Authors may delete their own messages; the
// guild owner may delete any message in the guild.
func (s *MessageService) Delete(ctx context.Context, actor *models.User, guildID, channelID, messageID string) error {
	if guildID == "" {
		return missingField("guild_id")
	}
	if channelID == "" {
		return missingField("channel_id")
	}
	if messageID == "" {
		return missingField("message_id")
	}

	guild, err := s.store.GetGuildByID(ctx, guildID)
	if err != nil {
		return storeErr(err)
	}

	if !IsMember(actor, guild) {
		return ErrNotGuildMember
	}
	if !guild.HasChannel(channelID) {
		return errNotInGuild("channel")
	}

	message, err := s.store.GetMessageByID(ctx, messageID)
	if err != nil {
		return storeErr(err)
	}
	if message.Channel != channelID {
		return errNotInGuild("message")
	}

	if !CanModerateMessage(actor, guild, message) {
		return ErrNotMessageModerator
	}

	if err := s.store.DeleteMessage(ctx, message.ID); err != nil {
		return storeErr(err)
	}

	unlock := s.channelLocks.Lock(channelID)
	err = s.store.RemoveChild(ctx, database.ChannelMessages, channelID, message.ID)
	unlock()
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return storeErr(err)
	}

	s.events.Publish(channelID, models.EventMessageDelete, models.DeletedRef{ID: message.ID})

	s.logger.Info("message deleted",
		zap.String("message_id", message.ID),
		zap.String("channel_id", channelID),
		zap.String("actor", actor.ID),
	)

	return nil
}
