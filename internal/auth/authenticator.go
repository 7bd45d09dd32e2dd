// Package auth provides account registration, credential verification and
// session token management.
package auth

import (
	"context"

	"github.com/fairsplit/fairsplit/internal/models"
)

// Authenticator abstracts the credential scheme so the HTTP layer does not
// care whether accounts use passwords or something else.
type Authenticator interface {
	// Register creates a new account from an email, display name and
	// credential. The credential format depends on the implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies a credential and returns the matching user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the scheme's
	// minimum requirements without touching storage.
	ValidateCredential(credential string) error
}
