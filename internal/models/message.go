package models

import (
	"time"

	"github.com/lib/pq"
)

// Message is a single message in a channel. ContentHistory holds prior
// content values, append-only.
type Message struct {
	ID             string         `json:"id"`
	Content        string         `json:"content"`
	ContentHistory pq.StringArray `json:"content_history,omitempty"`
	Channel        string         `json:"channel"`
	Author         string         `json:"author"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// MessageDetail is a message with its author resolved to a sanitized user
// view. The named AuthorUser field shadows the embedded author id in JSON.
type MessageDetail struct {
	*Message
	AuthorUser *User `json:"author"`
}
