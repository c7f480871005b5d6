package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kyvexhq/kyvexserver/internal/auth"
	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/service"
	"github.com/kyvexhq/kyvexserver/internal/testutil"
)

type healthOK struct{}

func (healthOK) Health(context.Context) error { return nil }

type healthDown struct{}

func (healthDown) Health(context.Context) error { return fmt.Errorf("connection refused") }

// newTestServer wires the full HTTP surface over in-memory fakes.
func newTestServer(t *testing.T) (*httptest.Server, *testutil.FakeStore, *testutil.FakeBroadcaster) {
	t.Helper()

	store := testutil.NewFakeStore()
	events := &testutil.FakeBroadcaster{}
	avatars := &testutil.FakeAvatars{}
	log := zap.NewNop()

	users := service.NewUserService(store, avatars,
		auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour),
		auth.NewHasher(bcrypt.MinCost), log)
	guilds := service.NewGuildService(store, avatars, events, log)
	channels := service.NewChannelService(store, events, log)
	messages := service.NewMessageService(store, events, log)

	server := NewServer("127.0.0.1:0", Services{
		Users:    users,
		Guilds:   guilds,
		Channels: channels,
		Messages: messages,
	}, nil, healthOK{}, log)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, store, events
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerTestUser(t *testing.T, baseURL, username string) (userID, token string) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/user/register", "", map[string]string{
		"username":     username,
		"display_name": username,
		"password":     "hunter22password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func TestRegisterLoginFlow(t *testing.T) {
	ts, _, _ := newTestServer(t)

	_, token := registerTestUser(t, ts.URL, "alice")
	require.NotEmpty(t, token)

	// Duplicate username conflicts.
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/user/register", "", map[string]string{
		"username":     "alice",
		"display_name": "Other",
		"password":     "hunter22password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "username")

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/user/login", "", map[string]string{
		"username": "alice",
		"password": "hunter22password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/user/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthenticatedRoutesRejectMissingToken(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, ts.URL+"/guild/create", "", map[string]string{"name": "g"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/user/alice", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuildChannelMessageFlow(t *testing.T) {
	ts, store, _ := newTestServer(t)

	_, ownerToken := registerTestUser(t, ts.URL, "alice")
	memberID, memberToken := registerTestUser(t, ts.URL, "bob")

	// Create a guild.
	resp, guild := doJSON(t, http.MethodPost, ts.URL+"/guild/create", ownerToken, map[string]string{
		"name":        "My Guild",
		"description": "a place",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	guildID := guild["id"].(string)
	require.Len(t, guild["channels"], 1)

	// Non-owners cannot create channels.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/channel/"+guildID+"/create", memberToken, map[string]string{
		"name": "general",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, channel := doJSON(t, http.MethodPost, ts.URL+"/channel/"+guildID+"/create", ownerToken, map[string]string{
		"name": "general",
		"type": "text",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	channelID := channel["id"].(string)
	assert.Equal(t, float64(1), channel["position"])

	// Bob is not yet a member and cannot read or post.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/channel/"+guildID+"/"+channelID, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Add bob to the guild directly in the store, then post as bob.
	ctx := context.Background()
	require.NoError(t, store.AppendChild(ctx, database.GuildMembers, guildID, memberID))
	require.NoError(t, store.AppendChild(ctx, database.UserGuilds, memberID, guildID))

	resp, message := doJSON(t, http.MethodPost, ts.URL+"/message/"+guildID+"/"+channelID+"/create", memberToken, map[string]string{
		"content": "hello world",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	messageID := message["id"].(string)
	author := message["author"].(map[string]any)
	assert.Equal(t, memberID, author["id"])

	// Channel read returns the message, newest first.
	resp, detail := doJSON(t, http.MethodGet, ts.URL+"/channel/"+guildID+"/"+channelID, memberToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recent := detail["recent_messages"].([]any)
	require.Len(t, recent, 1)

	// Member cannot delete the guild.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/guild/"+guildID, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Author deletes their message.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/message/"+guildID+"/"+channelID+"/"+messageID+"/delete", memberToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Unknown ids read as 404.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/message/"+guildID+"/"+channelID+"/"+messageID, memberToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	log := zap.NewNop()
	healthy := NewServer("127.0.0.1:0", Services{}, nil, healthOK{}, log)
	ts := httptest.NewServer(healthy.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	unhealthy := NewServer("127.0.0.1:0", Services{}, nil, healthDown{}, log)
	ts2 := httptest.NewServer(unhealthy.Handler())
	defer ts2.Close()

	resp, err = http.Get(ts2.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
