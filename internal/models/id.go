package models

import "github.com/google/uuid"

// NewID returns a new entity id. UUIDv7 ids are globally unique and sort by
// creation time, which keeps sequence fields in insertion order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
