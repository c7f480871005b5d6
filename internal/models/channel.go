package models

import (
	"time"

	"github.com/lib/pq"
)

// ChannelType is the kind of conversation stream a channel carries.
type ChannelType string

const (
	ChannelTypeText         ChannelType = "text"
	ChannelTypeForum        ChannelType = "forum"
	ChannelTypeAnnouncement ChannelType = "announcement"
	ChannelTypeMedia        ChannelType = "media"
	ChannelTypeCategory     ChannelType = "category"
)

// Valid reports whether t is a known channel type.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelTypeText, ChannelTypeForum, ChannelTypeAnnouncement,
		ChannelTypeMedia, ChannelTypeCategory:
		return true
	}
	return false
}

// Channel is a conversation stream within a guild. Messages is the ordered
// sequence of message ids; Position orders siblings within the guild.
type Channel struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Guild       string         `json:"guild"`
	Type        ChannelType    `json:"type"`
	Position    int            `json:"position"`
	Messages    pq.StringArray `json:"messages"`
	Deletable   bool           `json:"deletable"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ChannelDetail is a channel with its newest messages loaded and authors
// resolved, as returned by channel reads.
type ChannelDetail struct {
	*Channel
	RecentMessages []*MessageDetail `json:"recent_messages"`
}
