package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"halalai/cmd/identity"
	"halalai/cmd/internal/auth/token"
)

// PasswordHasher is the delegated one-way password hashing boundary.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Result is the outcome of a successful Register, Login or Refresh:
// a fresh token plus a summary of the account it was issued for.
type Result struct {
	Token string
	User  identity.User
}

// Service orchestrates the three auth operations over its collaborators.
// It never mutates user records except to trigger creation during
// registration.
type Service struct {
	store  identity.Store
	hasher PasswordHasher
	tokens *token.Service
	log    *slog.Logger
}

// NewService constructs an auth Service.
func NewService(log *slog.Logger, store identity.Store, hasher PasswordHasher, tokens *token.Service) (*Service, error) {
	if store == nil || hasher == nil || tokens == nil {
		return nil, fmt.Errorf("auth: nil collaborator")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, log: log}, nil
}

// Register creates a new enabled account and issues its first token.
//
// Uniqueness checks run before the write; a concurrent registration that
// slips between the check and Save surfaces as a ConflictError from the
// store and is mapped to the same duplicate errors (no partial write
// either way).
func (s *Service) Register(ctx context.Context, username, email, password string) (Result, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if taken, err := s.store.ExistsByUsername(ctx, username); err != nil {
		return Result{}, fmt.Errorf("auth.register: %w", err)
	} else if taken {
		return Result{}, ErrDuplicateUsername
	}
	if taken, err := s.store.ExistsByEmail(ctx, email); err != nil {
		return Result{}, fmt.Errorf("auth.register: %w", err)
	} else if taken {
		return Result{}, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Result{}, fmt.Errorf("auth.register: hash: %w", err)
	}

	user, err := s.store.Save(ctx, identity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
	})
	if err != nil {
		if mapped := mapConflict(err); mapped != nil {
			return Result{}, mapped
		}
		return Result{}, fmt.Errorf("auth.register: save: %w", err)
	}

	tok, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("auth.register: issue: %w", err)
	}

	s.log.Info("auth.register.ok", "user_id", user.ID, "username", user.Username)
	return Result{Token: tok, User: user}, nil
}

// Login verifies credentials and issues a token for an enabled account.
// The identifier may be a username or an email; username resolution is
// tried first.
func (s *Service) Login(ctx context.Context, usernameOrEmail, password string) (Result, error) {
	user, err := s.resolve(ctx, usernameOrEmail)
	if err != nil {
		return Result{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Info("auth.login.fail", "reason", "bad_password", "user_id", user.ID)
		return Result{}, ErrInvalidCredentials
	}
	if !user.Enabled {
		s.log.Info("auth.login.fail", "reason", "disabled", "user_id", user.ID)
		return Result{}, ErrAccountDisabled
	}

	tok, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("auth.login: issue: %w", err)
	}

	s.log.Info("auth.login.ok", "user_id", user.ID)
	return Result{Token: tok, User: user}, nil
}

// Refresh re-issues a token given an old one, without re-presenting a
// password. The old token's signature and structure must be intact, but it
// may be expired; the refresh accessors tolerate expiry.
//
// Deliberately permissive: an unexpired token also refreshes, so a client
// can eagerly extend its session. Refresh is "re-issue if the subject
// still resolves to an enabled account", not an expiry-driven protocol.
func (s *Service) Refresh(ctx context.Context, oldToken string) (Result, error) {
	username, ok := s.tokens.SubjectEvenIfExpired(oldToken)
	if !ok {
		return Result{}, ErrInvalidToken
	}
	// The user id claim may be absent in tokens from older builds;
	// that is "unknown", not fatal.
	claimedID, hasID := s.tokens.UserIDEvenIfExpired(oldToken)

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if identity.IsNotFound(err) {
			return Result{}, ErrUserNotFound
		}
		return Result{}, fmt.Errorf("auth.refresh: %w", err)
	}

	if !user.Enabled {
		s.log.Info("auth.refresh.fail", "reason", "disabled", "user_id", user.ID)
		return Result{}, ErrAccountDisabled
	}

	// A recovered id that disagrees with the stored record means the
	// embedded identifier was forged, or the username was recycled by a
	// different account. Either way the token does not refresh.
	if hasID && claimedID != user.ID {
		s.log.Info("auth.refresh.fail", "reason", "uid_mismatch", "user_id", user.ID)
		return Result{}, ErrInvalidToken
	}

	tok, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return Result{}, fmt.Errorf("auth.refresh: issue: %w", err)
	}

	s.log.Info("auth.refresh.ok", "user_id", user.ID)
	return Result{Token: tok, User: user}, nil
}

func (s *Service) resolve(ctx context.Context, usernameOrEmail string) (identity.User, error) {
	user, err := s.store.FindByUsername(ctx, usernameOrEmail)
	if err == nil {
		return user, nil
	}
	if !identity.IsNotFound(err) {
		return identity.User{}, fmt.Errorf("auth.login: %w", err)
	}

	user, err = s.store.FindByEmail(ctx, usernameOrEmail)
	if err == nil {
		return user, nil
	}
	if !identity.IsNotFound(err) {
		return identity.User{}, fmt.Errorf("auth.login: %w", err)
	}
	return identity.User{}, ErrUserNotFound
}

func mapConflict(err error) error {
	var ce identity.ConflictError
	if !errors.As(err, &ce) {
		return nil
	}
	switch ce.Field {
	case "username":
		return ErrDuplicateUsername
	case "email":
		return ErrDuplicateEmail
	default:
		return ErrDuplicateUsername
	}
}
