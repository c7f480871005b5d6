// Package testutil provides in-memory doubles for the storage, broadcast
// and avatar dependencies of the service layer.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
)

// FakeStore is an in-memory GraphStore. It reports failures with the same
// sentinel errors as the real database package, so taxonomy mapping behaves
// identically under test.
type FakeStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	guilds   map[string]*models.Guild
	channels map[string]*models.Channel
	messages map[string]*models.Message

	// ForcedErr, when set, is returned by every operation. Used to drive
	// storage-failure paths.
	ForcedErr error
}

// NewFakeStore creates an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:    make(map[string]*models.User),
		guilds:   make(map[string]*models.Guild),
		channels: make(map[string]*models.Channel),
		messages: make(map[string]*models.Message),
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Guilds = append([]string(nil), u.Guilds...)
	return &c
}

func copyGuild(g *models.Guild) *models.Guild {
	c := *g
	c.Members = append([]string(nil), g.Members...)
	c.Channels = append([]string(nil), g.Channels...)
	return &c
}

func copyChannel(ch *models.Channel) *models.Channel {
	c := *ch
	c.Messages = append([]string(nil), ch.Messages...)
	return &c
}

func copyMessage(m *models.Message) *models.Message {
	c := *m
	c.ContentHistory = append([]string(nil), m.ContentHistory...)
	return &c
}

func (s *FakeStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return database.ErrConflict
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt, user.LastSeen = now, now, now
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *FakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *FakeStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	for _, user := range s.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *FakeStore) SetUserToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	user, ok := s.users[id]
	if !ok {
		return database.ErrNotFound
	}
	user.CurrentToken = token
	return nil
}

func (s *FakeStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	if _, ok := s.users[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *FakeStore) CreateGuild(_ context.Context, guild *models.Guild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	now := time.Now()
	guild.CreatedAt, guild.UpdatedAt = now, now
	s.guilds[guild.ID] = copyGuild(guild)
	return nil
}

func (s *FakeStore) GetGuildByID(_ context.Context, id string) (*models.Guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	guild, ok := s.guilds[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyGuild(guild), nil
}

func (s *FakeStore) DeleteGuild(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	if _, ok := s.guilds[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.guilds, id)
	return nil
}

func (s *FakeStore) RemoveGuildFromMembers(_ context.Context, guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	for _, user := range s.users {
		user.Guilds = removeString(user.Guilds, guildID)
	}
	return nil
}

func (s *FakeStore) CreateChannel(_ context.Context, channel *models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	now := time.Now()
	channel.CreatedAt, channel.UpdatedAt = now, now
	s.channels[channel.ID] = copyChannel(channel)
	return nil
}

func (s *FakeStore) GetChannelByID(_ context.Context, id string) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	channel, ok := s.channels[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyChannel(channel), nil
}

func (s *FakeStore) DeleteChannel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	if _, ok := s.channels[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.channels, id)
	return nil
}

func (s *FakeStore) DeleteChannelMessages(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	for id, msg := range s.messages {
		if msg.Channel == channelID {
			delete(s.messages, id)
		}
	}
	return nil
}

func (s *FakeStore) GetChannelMessages(_ context.Context, channelID string, limit int) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	var out []*models.Message
	for _, msg := range s.messages {
		if msg.Channel == channelID {
			out = append(out, copyMessage(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FakeStore) NextChannelPosition(_ context.Context, guildID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	next := 0
	for _, channel := range s.channels {
		if channel.Guild == guildID && channel.Position >= next {
			next = channel.Position + 1
		}
	}
	return next, nil
}

func (s *FakeStore) CreateMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	now := time.Now()
	message.CreatedAt, message.UpdatedAt = now, now
	s.messages[message.ID] = copyMessage(message)
	return nil
}

func (s *FakeStore) GetMessageByID(_ context.Context, id string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	message, ok := s.messages[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyMessage(message), nil
}

func (s *FakeStore) DeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	if _, ok := s.messages[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}

func (s *FakeStore) AppendChild(_ context.Context, f database.ChildField, parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	seq, err := s.childSeq(f, parentID)
	if err != nil {
		return err
	}
	for _, id := range *seq {
		if id == childID {
			return nil
		}
	}
	*seq = append(*seq, childID)
	return nil
}

func (s *FakeStore) RemoveChild(_ context.Context, f database.ChildField, parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	seq, err := s.childSeq(f, parentID)
	if err != nil {
		return err
	}
	*seq = removeString(*seq, childID)
	return nil
}

// childSeq resolves a ChildField to the parent's sequence. Caller holds the
// lock.
func (s *FakeStore) childSeq(f database.ChildField, parentID string) (*[]string, error) {
	switch f {
	case database.GuildMembers:
		if g, ok := s.guilds[parentID]; ok {
			return (*[]string)(&g.Members), nil
		}
	case database.GuildChannels:
		if g, ok := s.guilds[parentID]; ok {
			return (*[]string)(&g.Channels), nil
		}
	case database.ChannelMessages:
		if c, ok := s.channels[parentID]; ok {
			return (*[]string)(&c.Messages), nil
		}
	case database.UserGuilds:
		if u, ok := s.users[parentID]; ok {
			return (*[]string)(&u.Guilds), nil
		}
	}
	return nil, database.ErrNotFound
}

func removeString(in []string, target string) []string {
	out := in[:0]
	for _, v := range in {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

// Publication records one broadcast event.
type Publication struct {
	Topic   string
	Event   string
	Payload any
}

// FakeBroadcaster records publishes for assertion.
type FakeBroadcaster struct {
	mu         sync.Mutex
	Broadcasts []Publication
}

// Publish records the event.
func (b *FakeBroadcaster) Publish(topic, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Broadcasts = append(b.Broadcasts, Publication{Topic: topic, Event: event, Payload: payload})
}

// Published returns a snapshot of recorded events.
func (b *FakeBroadcaster) Published() []Publication {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Publication(nil), b.Broadcasts...)
}

// FakeAvatars is an AvatarGenerator returning fixed bytes, or Err when set.
type FakeAvatars struct {
	Err error
}

// Generate returns placeholder image bytes.
func (a *FakeAvatars) Generate(_ context.Context, seed, _ string) ([]byte, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return []byte("png:" + seed), nil
}
