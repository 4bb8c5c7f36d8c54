package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/model"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collectionSecrets = "secrets"

// Firestore reads secrets documents stored as secrets/{userID}
type Firestore struct {
	client *firestore.Client
}

// New creates a Firestore-backed SecretStore
func New(ctx context.Context, projectID, databaseID string, opts ...option.ClientOption) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) GetSecrets(ctx context.Context, userID model.UserID) (*model.Secrets, error) {
	if userID == "" {
		return nil, goerr.Wrap(model.ErrCredentialFetch, "user id is empty")
	}

	doc, err := r.client.Collection(collectionSecrets).Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(model.ErrCredentialFetch, "failed to get secrets",
			goerr.V("user_id", userID),
			goerr.V("cause", err.Error()))
	}

	var secrets model.Secrets
	if err := doc.DataTo(&secrets); err != nil {
		return nil, goerr.Wrap(model.ErrCredentialFetch, "failed to decode secrets",
			goerr.V("user_id", userID),
			goerr.V("cause", err.Error()))
	}

	return &secrets, nil
}
