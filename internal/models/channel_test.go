package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelTypeValid(t *testing.T) {
	for _, ct := range []ChannelType{
		ChannelTypeText, ChannelTypeForum, ChannelTypeAnnouncement,
		ChannelTypeMedia, ChannelTypeCategory,
	} {
		assert.True(t, ct.Valid(), "expected %q to be valid", ct)
	}

	assert.False(t, ChannelType("").Valid())
	assert.False(t, ChannelType("voice").Valid())
}

func TestGuildMembershipHelpers(t *testing.T) {
	g := &Guild{
		Members:  []string{"u1", "u2"},
		Channels: []string{"c1"},
	}

	assert.True(t, g.HasMember("u1"))
	assert.False(t, g.HasMember("u3"))
	assert.True(t, g.HasChannel("c1"))
	assert.False(t, g.HasChannel("c2"))
}

func TestMessageDetailJSON_AuthorObjectShadowsID(t *testing.T) {
	detail := &MessageDetail{
		Message: &Message{
			ID:      "m1",
			Content: "hello",
			Channel: "c1",
			Author:  "u1",
		},
		AuthorUser: &User{ID: "u1", Username: "alice"},
	}

	raw, err := json.Marshal(detail)
	require.NoError(t, err)

	var decoded struct {
		Author struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "u1", decoded.Author.ID)
	assert.Equal(t, "alice", decoded.Author.Username)
}
