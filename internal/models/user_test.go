package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullUser() *User {
	return &User{
		ID:               "u1",
		Username:         "alice",
		DisplayName:      "Alice",
		PasswordHash:     "$2a$10$hash",
		Guilds:           []string{"g1"},
		Status:           StatusOnline,
		CurrentToken:     "token",
		TwoFactorEnabled: true,
		TwoFactorSecret:  "otp-secret",
		LastIP:           "203.0.113.7",
		Devices:          []string{"phone"},
		LastSeen:         time.Now(),
	}
}

func TestSanitized_StripsSensitiveFields(t *testing.T) {
	u := fullUser()
	s := u.Sanitized()

	assert.Equal(t, u.ID, s.ID)
	assert.Equal(t, u.Username, s.Username)
	assert.Empty(t, s.PasswordHash)
	assert.Empty(t, s.CurrentToken)
	assert.False(t, s.TwoFactorEnabled)
	assert.Empty(t, s.TwoFactorSecret)
	assert.Empty(t, s.LastIP)
	assert.Empty(t, s.Devices)
	assert.True(t, s.LastSeen.IsZero())

	// The original is untouched.
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
}

func TestView(t *testing.T) {
	u := fullUser()

	assert.Equal(t, u, u.View(true))
	assert.Empty(t, u.View(false).CurrentToken)
}

func TestUserJSON_NeverLeaksCredentials(t *testing.T) {
	// Even the self view must not serialize the hash or token.
	raw, err := json.Marshal(fullUser())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.NotContains(t, string(raw), `"token"`)
}
