package models

import (
	"time"

	"github.com/lib/pq"
)

// Guild is a community container. Members always includes Owner; Channels is
// the ordered sequence of channel ids belonging to the guild.
type Guild struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Owner       string         `json:"owner"`
	Members     pq.StringArray `json:"members"`
	Channels    pq.StringArray `json:"channels"`
	Icon        []byte         `json:"icon,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DefaultChannelName is the name of the non-deletable channel created with
// every guild.
const DefaultChannelName = "Uncategorised"

// HasMember reports whether userID appears in the guild's member set.
func (g *Guild) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// HasChannel reports whether channelID appears in the guild's channel
// sequence.
func (g *Guild) HasChannel(channelID string) bool {
	for _, id := range g.Channels {
		if id == channelID {
			return true
		}
	}
	return false
}
