package service

import (
	"errors"
	"fmt"

	"github.com/kyvexhq/kyvexserver/internal/database"
)

// Error taxonomy. Every failure leaving the service layer matches exactly one
// of these via errors.Is; handlers map them to response categories.
var (
	// ErrInvalidInput marks missing or malformed fields. Not retryable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated marks a missing or invalid credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden marks an authenticated identity that is not permitted
	// to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks an absent guild, channel, message or user.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a write rejected by a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrStorageUnavailable marks a transient infrastructure failure; the
	// whole operation is safe to retry from validation.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInternal marks an unexpected failure. Details are logged, never
	// returned to callers.
	ErrInternal = errors.New("internal error")
)

// Specific rejections, each wrapping its taxonomy member.
var (
	ErrUsernameTaken        = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least 8 characters long", ErrInvalidInput)
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid username or password", ErrInvalidInput)
	ErrNotGuildOwner        = fmt.Errorf("%w: you are not the owner of this guild", ErrForbidden)
	ErrNotGuildMember       = fmt.Errorf("%w: you are not a member of this guild", ErrForbidden)
	ErrNotMessageModerator  = fmt.Errorf("%w: you are not the author of this message or the owner of this guild", ErrForbidden)
	ErrNotAccountOwner      = fmt.Errorf("%w: you are not the owner of this account", ErrForbidden)
	ErrChannelNotDeletable  = fmt.Errorf("%w: channel is not deletable", ErrForbidden)
	ErrInvalidChannelType   = fmt.Errorf("%w: unknown channel type", ErrInvalidInput)

	errContentTooLong = fmt.Errorf("%w: message content exceeds maximum length", ErrInvalidInput)
)

// missingField builds the validation error for an absent required field.
func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", ErrInvalidInput, name)
}

// errNotInGuild builds the not-found error for a child the guild does not
// list. A row that exists but is missing from its parent's sequence is
// treated as absent.
func errNotInGuild(kind string) error {
	return fmt.Errorf("%w: %s does not belong to this guild", ErrNotFound, kind)
}

// storeErr maps storage failure modes onto the taxonomy. Unrecognized errors
// become ErrInternal; the original is kept in the chain for logging.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, database.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, database.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
