package models

// Event names broadcast to topic subscribers when the containment graph
// changes. Creation events carry the created entity; deletion events carry
// only the deleted id.
const (
	EventMessageCreate = "message"
	EventMessageDelete = "messageDelete"
	EventChannelCreate = "channelCreate"
	EventChannelDelete = "channelDelete"
	EventGuildUpdate   = "guildUpdate"
)

// DeletedRef is the payload of a deletion event.
type DeletedRef struct {
	ID string `json:"id"`
}
