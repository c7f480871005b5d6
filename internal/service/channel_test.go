package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
	"github.com/kyvexhq/kyvexserver/internal/testutil"
)

// channelFixture seeds an owner, a member, a non-member and a guild with its
// default channel.
type channelFixture struct {
	store    *testutil.FakeStore
	events   *testutil.FakeBroadcaster
	channels *ChannelService
	owner    *models.User
	member   *models.User
	outsider *models.User
	guild    *models.Guild
}

func newChannelFixture(t *testing.T) *channelFixture {
	t.Helper()
	ctx := context.Background()

	store := testutil.NewFakeStore()
	events := &testutil.FakeBroadcaster{}
	guilds := NewGuildService(store, &testutil.FakeAvatars{}, events, zap.NewNop())

	owner := seedUser(t, store, "alice")
	member := seedUser(t, store, "bob")
	outsider := seedUser(t, store, "carol")

	guild, err := guilds.Create(ctx, owner, "My Guild", "")
	require.NoError(t, err)
	require.NoError(t, store.AppendChild(ctx, database.GuildMembers, guild.ID, member.ID))

	return &channelFixture{
		store:    store,
		events:   events,
		channels: NewChannelService(store, events, zap.NewNop()),
		owner:    owner,
		member:   member,
		outsider: outsider,
		guild:    guild,
	}
}

func TestCreateChannel_TakesNextPositionAndBroadcasts(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	// The default channel holds position 0, so the first created channel
	// lands at 1.
	channel, err := f.channels.Create(ctx, f.owner, f.guild.ID, "general", "", models.ChannelTypeText)
	require.NoError(t, err)
	assert.Equal(t, 1, channel.Position)
	assert.True(t, channel.Deletable)
	assert.Equal(t, f.owner.ID, channel.CreatedBy)

	stored, err := f.store.GetGuildByID(ctx, f.guild.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasChannel(channel.ID))

	published := f.events.Published()
	require.Len(t, published, 1)
	assert.Equal(t, f.guild.ID, published[0].Topic)
	assert.Equal(t, models.EventChannelCreate, published[0].Event)
}

func TestCreateChannel_DefaultsToTextType(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	channel, err := f.channels.Create(ctx, f.owner, f.guild.ID, "general", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ChannelTypeText, channel.Type)

	_, err = f.channels.Create(ctx, f.owner, f.guild.ID, "weird", "", "carrier-pigeon")
	assert.ErrorIs(t, err, ErrInvalidChannelType)
}

func TestCreateChannel_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	_, err := f.channels.Create(ctx, f.member, f.guild.ID, "general", "", models.ChannelTypeText)
	assert.ErrorIs(t, err, ErrNotGuildOwner)

	_, err = f.channels.Create(ctx, f.outsider, f.guild.ID, "general", "", models.ChannelTypeText)
	assert.ErrorIs(t, err, ErrNotGuildOwner)
}

func TestCreateChannel_ConcurrentPositionsAreUnique(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	const n = 8
	created := make([]*models.Channel, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created[i], errs[i] = f.channels.Create(ctx, f.owner, f.guild.ID, "room", "", models.ChannelTypeText)
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i, channel := range created {
		require.NoError(t, errs[i])
		assert.False(t, seen[channel.Position], "position %d assigned twice", channel.Position)
		seen[channel.Position] = true
	}
}

func TestGetChannel_MemberOnlyWithRecentMessages(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	channel, err := f.channels.Create(ctx, f.owner, f.guild.ID, "general", "", models.ChannelTypeText)
	require.NoError(t, err)

	messages := NewMessageService(f.store, f.events, zap.NewNop())
	_, err = messages.Create(ctx, f.member, f.guild.ID, channel.ID, "hello")
	require.NoError(t, err)

	detail, err := f.channels.Get(ctx, f.member, f.guild.ID, channel.ID)
	require.NoError(t, err)
	assert.Equal(t, channel.ID, detail.ID)
	require.Len(t, detail.RecentMessages, 1)
	assert.Equal(t, "hello", detail.RecentMessages[0].Content)
	// Authors come back sanitized.
	require.NotNil(t, detail.RecentMessages[0].AuthorUser)
	assert.Equal(t, f.member.ID, detail.RecentMessages[0].AuthorUser.ID)
	assert.Empty(t, detail.RecentMessages[0].AuthorUser.PasswordHash)

	_, err = f.channels.Get(ctx, f.outsider, f.guild.ID, channel.ID)
	assert.ErrorIs(t, err, ErrNotGuildMember)
}

func TestGetChannel_UnlistedChannelIsAbsent(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	// A channel row that the guild does not list reads as not found.
	orphan := &models.Channel{
		ID:       models.NewID(),
		Name:     "orphan",
		Guild:    f.guild.ID,
		Type:     models.ChannelTypeText,
		Messages: []string{},
	}
	require.NoError(t, f.store.CreateChannel(ctx, orphan))

	_, err := f.channels.Get(ctx, f.member, f.guild.ID, orphan.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteChannel_CascadesAndBroadcasts(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	channel, err := f.channels.Create(ctx, f.owner, f.guild.ID, "general", "", models.ChannelTypeText)
	require.NoError(t, err)

	messages := NewMessageService(f.store, f.events, zap.NewNop())
	msg, err := messages.Create(ctx, f.member, f.guild.ID, channel.ID, "hello")
	require.NoError(t, err)

	before := len(f.events.Published())
	require.NoError(t, f.channels.Delete(ctx, f.owner, f.guild.ID, channel.ID))

	_, err = f.store.GetChannelByID(ctx, channel.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
	_, err = f.store.GetMessageByID(ctx, msg.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	stored, err := f.store.GetGuildByID(ctx, f.guild.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasChannel(channel.ID))

	published := f.events.Published()
	require.Len(t, published, before+1)
	last := published[len(published)-1]
	assert.Equal(t, models.EventChannelDelete, last.Event)
	assert.Equal(t, models.DeletedRef{ID: channel.ID}, last.Payload)
}

func TestDeleteChannel_DefaultChannelIsProtected(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	err := f.channels.Delete(ctx, f.owner, f.guild.ID, f.guild.Channels[0])
	assert.ErrorIs(t, err, ErrChannelNotDeletable)
	assert.ErrorIs(t, err, ErrForbidden)

	// Still there.
	_, err = f.store.GetChannelByID(ctx, f.guild.Channels[0])
	require.NoError(t, err)
}

func TestDeleteChannel_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newChannelFixture(t)

	channel, err := f.channels.Create(ctx, f.owner, f.guild.ID, "general", "", models.ChannelTypeText)
	require.NoError(t, err)

	err = f.channels.Delete(ctx, f.member, f.guild.ID, channel.ID)
	assert.ErrorIs(t, err, ErrNotGuildOwner)
}
