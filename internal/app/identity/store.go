package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/KYoiRyi/coLAN/internal/pkg/errs"
	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
	"github.com/KYoiRyi/coLAN/internal/pkg/randx"
)

// Store applies the account rules on top of a Repo.
type Store struct {
	repo   Repo
	logger zerolog.Logger
}

// NewStore constructs a Store backed by the given repository.
func NewStore(repo Repo) *Store {
	return &Store{
		repo:   repo,
		logger: logx.Logger().With().Str("component", "identity_store").Logger(),
	}
}

// CreateTemporary creates a device-bound temporary identity, or returns the
// existing one when the same device re-claims its username. A claim from a
// different device fails with a device conflict so the caller can trigger
// verification; a claim on a permanent username fails outright.
func (s *Store) CreateTemporary(ctx context.Context, username, deviceID string) (*Identity, *errs.CustomError) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to look up username.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	if existing != nil {
		if !existing.IsTemporary {
			return nil, errs.NewError(errs.ErrUsernameTaken)
		}

		if existing.DeviceID != deviceID {
			return nil, errs.NewError(errs.ErrDeviceConflict)
		}

		// Re-login from the same device reuses the identity and its token.
		now := time.Now()
		if err := s.repo.UpdateLastLogin(ctx, existing.ID, now); err != nil {
			s.logger.Error().Err(err).Str("user_id", existing.ID).Msg("Failed to update last login.")
		} else {
			existing.LastLogin = now
		}
		return existing, nil
	}

	if deviceID == "" {
		deviceID = uuid.New().String()
	}

	token := randx.AccessToken()

	// A random token stands in for a password on temporary accounts; it is
	// hashed at rest like any other credential.
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash temporary credential.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	now := time.Now()
	ident := &Identity{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(tokenHash),
		AccessToken:  token,
		IsTemporary:  true,
		DeviceID:     deviceID,
		LastLogin:    now,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, ident); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, errs.NewError(errs.ErrUsernameTaken)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to create temporary identity.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().Str("user_id", ident.ID).Str("username", username).Msg("Temporary identity created.")
	return ident, nil
}

// UsernameAvailable reports whether the username can be claimed from the
// given device. A permanent account always blocks the name; a temporary one
// blocks it only for other devices. Lookup failures report the name as
// available, so a degraded identity backend never locks users out of chatting.
func (s *Store) UsernameAvailable(ctx context.Context, username, deviceID string) bool {
	username = strings.TrimSpace(username)
	if username == "" {
		return false
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("username", username).Msg("Username lookup failed, reporting available.")
		}
		return true
	}

	if !existing.IsTemporary {
		return false
	}
	return existing.DeviceID == deviceID
}

// LoginOrCreatePermanent is the combined login/register for permanent
// accounts: an unknown username creates one, a known permanent username
// requires the password to verify, and a known temporary username is a
// conflict rather than a silent takeover.
func (s *Store) LoginOrCreatePermanent(ctx context.Context, username, password, email string) (*Identity, *errs.CustomError) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	email = strings.TrimSpace(email)

	if username == "" || password == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to look up username.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	if existing != nil {
		if existing.IsTemporary {
			return nil, errs.NewError(errs.ErrUsernameTaken)
		}

		if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
			s.logger.Warn().Str("username", username).Msg("Permanent login rejected: password mismatch.")
			return nil, errs.NewError(errs.ErrInvalidCredentials)
		}

		now := time.Now()
		token := randx.AccessToken()
		if err := s.repo.UpdateLogin(ctx, existing.ID, token, now); err != nil {
			s.logger.Error().Err(err).Str("user_id", existing.ID).Msg("Failed to rotate access token.")
			return nil, errs.NewError(errs.ErrUnknown)
		}

		existing.AccessToken = token
		existing.LastLogin = now
		return existing, nil
	}

	if email != "" {
		if _, err := s.repo.GetByEmail(ctx, email); err == nil {
			return nil, errs.NewError(errs.ErrEmailTaken)
		} else if !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Msg("Failed to look up email.")
			return nil, errs.NewError(errs.ErrUnknown)
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	now := time.Now()
	ident := &Identity{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		AccessToken:  randx.AccessToken(),
		IsTemporary:  false,
		LastLogin:    now,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, ident); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, errs.NewError(errs.ErrUsernameTaken)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to create permanent identity.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().Str("user_id", ident.ID).Str("username", username).Msg("Permanent identity created.")
	return ident, nil
}

// ConvertToPermanent upgrades a temporary identity in place: email and
// credentials are filled in, the temporary flag flips, and a fresh access
// token is issued.
func (s *Store) ConvertToPermanent(ctx context.Context, id, email, password string) (*Identity, *errs.CustomError) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if id == "" || email == "" || password == "" {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	ident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errs.NewError(errs.ErrIdentityNotFound)
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("Failed to look up identity.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	if !ident.IsTemporary {
		return nil, errs.NewError(errs.ErrAlreadyPermanent)
	}

	if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != id {
		return nil, errs.NewError(errs.ErrEmailTaken)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error().Err(err).Msg("Failed to look up email.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	updated, err := s.repo.MakePermanent(ctx, id, email, string(passwordHash), randx.AccessToken())
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, errs.NewError(errs.ErrEmailTaken)
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("Failed to convert identity.")
		return nil, errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().Str("user_id", id).Msg("Temporary identity converted to permanent.")
	return updated, nil
}

// Logout resolves the token and deletes the identity when it is temporary.
// Permanent identities are untouched; their logout is client-side token
// discard. The returned boolean reports whether the account was deleted.
func (s *Store) Logout(ctx context.Context, token string) (*Identity, bool, *errs.CustomError) {
	ident, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, errs.NewError(errs.ErrTokenInvalid)
		}
		s.logger.Error().Err(err).Msg("Failed to look up access token.")
		return nil, false, errs.NewError(errs.ErrUnknown)
	}

	if !ident.IsTemporary {
		return ident, false, nil
	}

	if err := s.repo.Delete(ctx, ident.ID); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error().Err(err).Str("user_id", ident.ID).Msg("Failed to delete temporary identity.")
		return nil, false, errs.NewError(errs.ErrUnknown)
	}

	s.logger.Info().Str("user_id", ident.ID).Str("username", ident.Username).Msg("Temporary identity deleted on logout.")
	return ident, true, nil
}
