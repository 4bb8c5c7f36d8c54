package repository

import (
	"context"

	"github.com/m-mizutani/journal/pkg/model"
)

// SecretStore reads per-user credentials
type SecretStore interface {
	// GetSecrets returns the secrets document of the user, or nil when the
	// user has none. Read failures wrap model.ErrCredentialFetch.
	GetSecrets(ctx context.Context, userID model.UserID) (*model.Secrets, error)
}
