// Package models defines the entities of the containment graph: users,
// guilds, channels and messages, plus the event names broadcast when the
// graph changes.
package models

import (
	"time"

	"github.com/lib/pq"
)

// UserStatus is a user's presence status.
type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
	StatusIdle    UserStatus = "idle"
	StatusDND     UserStatus = "dnd"
)

// User represents a registered account. Guilds holds the ordered sequence of
// guild ids the user is a member of.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	DisplayName  string         `json:"display_name"`
	PasswordHash string         `json:"-"`
	Guilds       pq.StringArray `json:"guilds"`

	ProfileImg []byte     `json:"profile_img,omitempty"`
	Status     UserStatus `json:"status"`
	StatusText string     `json:"status_text,omitempty"`
	Pronouns   string     `json:"pronouns,omitempty"`
	AboutMe    string     `json:"about_me,omitempty"`

	// CurrentToken is the most recently issued bearer token; cleared on
	// logout. Token resolution is signature-based and does not consult it.
	CurrentToken string `json:"-"`

	TwoFactorEnabled bool           `json:"two_factor_enabled,omitempty"`
	TwoFactorSecret  string         `json:"two_factor_secret,omitempty"`
	LastIP           string         `json:"last_ip,omitempty"`
	Devices          pq.StringArray `json:"devices,omitempty"`
	LastSeen         time.Time      `json:"last_seen,omitempty"`

	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user with the sensitive field blacklist
// stripped: security flags, device list, last-seen and last-IP. The password
// hash and current token are never serialized regardless of viewer.
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	out.CurrentToken = ""
	out.TwoFactorEnabled = false
	out.TwoFactorSecret = ""
	out.LastIP = ""
	out.Devices = nil
	out.LastSeen = time.Time{}
	return &out
}

// View returns the user as visible to a viewer. Users see their own full
// record; everyone else gets the sanitized view.
func (u *User) View(viewerIsSelf bool) *User {
	if viewerIsSelf {
		return u
	}
	return u.Sanitized()
}
