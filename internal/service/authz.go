package service

import "github.com/kyvexhq/kyvexserver/internal/models"

// Authorization predicates. Pure functions over already-loaded entities; no
// I/O. Callers must evaluate them against entities loaded within the current
// request, since membership can change between requests.

// IsOwner reports whether user owns the guild.
func IsOwner(user *models.User, guild *models.Guild) bool {
	return guild.Owner == user.ID
}

// IsMember reports whether user is in the guild's member set.
func IsMember(user *models.User, guild *models.Guild) bool {
	return guild.HasMember(user.ID)
}

// CanModerateMessage reports whether user may delete the message: authors
// moderate their own messages, guild owners moderate everything in their
// guild.
func CanModerateMessage(user *models.User, guild *models.Guild, message *models.Message) bool {
	return message.Author == user.ID || IsOwner(user, guild)
}
