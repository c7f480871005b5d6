package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/database"
	"github.com/kyvexhq/kyvexserver/internal/models"
)

const minPasswordLength = 8

// UserService implements registration, login/logout and user reads, and
// resolves bearer credentials to identities.
type UserService struct {
	store   GraphStore
	avatars AvatarGenerator
	tokens  CredentialIssuer
	hasher  PasswordHasher
	logger  *zap.Logger
}

// NewUserService creates a user service.
func NewUserService(store GraphStore, avatars AvatarGenerator, tokens CredentialIssuer, hasher PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		store:   store,
		avatars: avatars,
		tokens:  tokens,
		hasher:  hasher,
		logger:  logger,
	}
}

// Register creates a new user and mints their first credential. Generating
// the profile image is part of creation: if it fails, no user is created.
func (s *UserService) Register(ctx context.Context, username, displayName, password string) (*models.User, string, error) {
	// Validate
	if username == "" {
		return nil, "", missingField("username")
	}
	if displayName == "" {
		return nil, "", missingField("display_name")
	}
	if password == "" {
		return nil, "", missingField("password")
	}
	if len(password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, "", storeErr(err)
	}

	profileImg, err := s.avatars.Generate(ctx, username, "")
	if err != nil {
		s.logger.Error("profile image generation failed", zap.String("username", username), zap.Error(err))
		return nil, "", fmt.Errorf("%w: profile image generation failed", ErrInternal)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user := &models.User{
		ID:           models.NewID(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Guilds:       []string{},
		ProfileImg:   profileImg,
		Status:       models.StatusOffline,
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	user.CurrentToken = token

	// Persist. The unique index on username closes the race left open by
	// the existence check above.
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", storeErr(err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

// Login verifies a username/password pair and mints a fresh credential.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", missingField("username or password")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", storeErr(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := s.store.SetUserToken(ctx, user.ID, token); err != nil {
		return nil, "", storeErr(err)
	}
	user.CurrentToken = token

	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return user, token, nil
}

// Logout clears the user's stored token. Outstanding tokens remain valid
// until expiry; resolution is signature-based.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return missingField("user_id")
	}

	if err := s.store.SetUserToken(ctx, userID, ""); err != nil {
		return storeErr(err)
	}

	s.logger.Info("user logged out", zap.String("user_id", userID))

	return nil
}

// Resolve maps a bearer credential to its user. Fails with
// ErrUnauthenticated if the signature is invalid, the token has expired, or
// the referenced user no longer exists.
func (s *UserService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing credential", ErrUnauthenticated)
	}

	userID, err := s.tokens.Resolve(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthenticated)
		}
		return nil, storeErr(err)
	}

	return user, nil
}

// GetByUsername returns a user by name, sanitized unless the viewer is the
// subject.
func (s *UserService) GetByUsername(ctx context.Context, viewer *models.User, username string) (*models.User, error) {
	if username == "" {
		return nil, missingField("username")
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err)
	}

	return user.View(viewer != nil && viewer.ID == user.ID), nil
}

// GetByID returns a user by id, sanitized unless the viewer is the subject.
func (s *UserService) GetByID(ctx context.Context, viewer *models.User, userID string) (*models.User, error) {
	if userID == "" {
		return nil, missingField("user_id")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	return user.View(viewer != nil && viewer.ID == user.ID), nil
}

// Delete removes a user account. Only the account owner may delete it.
// References from guilds and messages are left dangling; readers treat
// unresolvable ids as absent.
func (s *UserService) Delete(ctx context.Context, actor *models.User, userID string) error {
	if userID == "" {
		return missingField("user_id")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return storeErr(err)
	}

	if actor.ID != user.ID {
		return ErrNotAccountOwner
	}

	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return storeErr(err)
	}

	s.logger.Info("user deleted", zap.String("user_id", user.ID))

	return nil
}
