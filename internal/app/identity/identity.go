/*
Package identity implements the Identity Store: durable permanent accounts and
ephemeral, device-bound temporary accounts, with opaque access tokens.

The Store holds the account rules (idempotent temp re-login, device conflicts,
one-way temp-to-permanent conversion, credential verification); the Repo
interface abstracts where identities live, with a PostgreSQL implementation
for installs that have a database and an in-memory one for zero-configuration
LAN use and tests. The rest of the system references identities only by
access token.
*/
package identity

import (
	"context"
	"errors"
	"time"
)

// Identity is one user account. PasswordHash never leaves the package in
// serialized form.
type Identity struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	AccessToken  string    `json:"access_token"`
	IsTemporary  bool      `json:"is_temporary"`
	DeviceID     string    `json:"device_id,omitempty"`
	LastLogin    time.Time `json:"last_login"`
	CreatedAt    time.Time `json:"created_at"`
}

// ErrNotFound is returned by repositories when no identity matches.
var ErrNotFound = errors.New("identity not found")

// ErrDuplicate is returned by repositories when a uniqueness constraint on
// username, email, or token would be violated.
var ErrDuplicate = errors.New("identity already exists")

// Repo is the storage contract for identities.
type Repo interface {
	// Create inserts a new identity.
	Create(ctx context.Context, ident *Identity) error

	// GetByUsername returns the identity with the exact username.
	GetByUsername(ctx context.Context, username string) (*Identity, error)

	// GetByEmail returns the identity with the given email.
	GetByEmail(ctx context.Context, email string) (*Identity, error)

	// GetByToken returns the identity holding the given access token.
	GetByToken(ctx context.Context, token string) (*Identity, error)

	// GetByID returns the identity with the given id.
	GetByID(ctx context.Context, id string) (*Identity, error)

	// UpdateLastLogin stamps the identity's last login time.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// UpdateLogin rotates the access token and stamps the login time.
	UpdateLogin(ctx context.Context, id, accessToken string, at time.Time) error

	// MakePermanent fills in email and credentials on a temporary identity
	// and flips it to permanent, in place.
	MakePermanent(ctx context.Context, id, email, passwordHash, accessToken string) (*Identity, error)

	// Delete removes the identity.
	Delete(ctx context.Context, id string) error
}
